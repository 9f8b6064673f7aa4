package domain

import "testing"

func TestReviewOutcome_IsValid(t *testing.T) {
	t.Parallel()

	valid := []ReviewOutcome{ReviewOutcomeAgain, ReviewOutcomeHard, ReviewOutcomeGood, ReviewOutcomeEasy}
	for _, o := range valid {
		if !o.IsValid() {
			t.Errorf("%s should be valid", o)
		}
	}

	invalid := []ReviewOutcome{"", "again", "FAIL", "OK"}
	for _, o := range invalid {
		if o.IsValid() {
			t.Errorf("%q should be invalid", o)
		}
	}
}

func TestDeliveryState_IsValid(t *testing.T) {
	t.Parallel()

	valid := []DeliveryState{DeliveryStatePending, DeliveryStateSent, DeliveryStateAcknowledged}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}

	invalid := []DeliveryState{"", "pending", "DELIVERED"}
	for _, s := range invalid {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}
