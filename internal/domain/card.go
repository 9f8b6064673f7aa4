package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card is a unit of study content with its own review schedule.
type Card struct {
	ID               uuid.UUID
	OwnerID          int64
	Content          string
	Interval         time.Duration
	LastReviewedAt   *time.Time
	NextDueAt        time.Time
	LastOutcome      *ReviewOutcome
	DeliveryState    DeliveryState
	DeliveryAttempts int
	SentAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsDue returns true if the card's next review time has passed.
func (c *Card) IsDue(now time.Time) bool {
	return !c.NextDueAt.After(now)
}

// ReviewEvent records a single review outcome for a card.
// Events are append-only: written once on review, never mutated.
type ReviewEvent struct {
	ID                uuid.UUID
	CardID            uuid.UUID
	Outcome           ReviewOutcome
	ResultingInterval time.Duration
	ReviewedAt        time.Time
}

// Owner is the delivery target and partition key for cards.
// ID is the external chat identity of the messaging channel.
type Owner struct {
	ID                   int64
	NotificationsEnabled bool
	Suppressed           bool
	CreatedAt            time.Time
}

// Notifiable reports whether reminders may be delivered to the owner.
func (o *Owner) Notifiable() bool {
	return o.NotificationsEnabled && !o.Suppressed
}

// CardStats holds aggregate card counts for one owner.
type CardStats struct {
	Total   int
	Due     int
	Overdue int
}
