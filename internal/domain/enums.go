package domain

// ReviewOutcome is the strength signal reported after reviewing a card,
// ordered by strength: AGAIN < HARD < GOOD < EASY.
type ReviewOutcome string

const (
	ReviewOutcomeAgain ReviewOutcome = "AGAIN"
	ReviewOutcomeHard  ReviewOutcome = "HARD"
	ReviewOutcomeGood  ReviewOutcome = "GOOD"
	ReviewOutcomeEasy  ReviewOutcome = "EASY"
)

func (o ReviewOutcome) String() string { return string(o) }

func (o ReviewOutcome) IsValid() bool {
	switch o {
	case ReviewOutcomeAgain, ReviewOutcomeHard, ReviewOutcomeGood, ReviewOutcomeEasy:
		return true
	}
	return false
}

// DeliveryState tracks a card's reminder through the sweep pipeline.
//
//	PENDING      → due card awaiting delivery
//	SENT         → reminder handed to the messaging channel
//	ACKNOWLEDGED → owner confirmed receipt
//
// A review resets the state to PENDING; the reconciliation pass reverts
// SENT cards stuck past the grace window.
type DeliveryState string

const (
	DeliveryStatePending      DeliveryState = "PENDING"
	DeliveryStateSent         DeliveryState = "SENT"
	DeliveryStateAcknowledged DeliveryState = "ACKNOWLEDGED"
)

func (s DeliveryState) String() string { return string(s) }

func (s DeliveryState) IsValid() bool {
	switch s {
	case DeliveryStatePending, DeliveryStateSent, DeliveryStateAcknowledged:
		return true
	}
	return false
}
