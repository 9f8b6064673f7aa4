package review

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/semenovdl/recallbot/internal/domain"
)

// maxContentLength bounds card text; Telegram messages cap at 4096
// characters and the reminder adds its own framing.
const maxContentLength = 4000

// RegisterCardInput holds the parameters for registering a card.
type RegisterCardInput struct {
	Content string
}

// Validate checks all fields and collects all errors.
func (i *RegisterCardInput) Validate() error {
	var errs []domain.FieldError

	if i.Content == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	}
	if utf8.RuneCountInString(i.Content) > maxContentLength {
		errs = append(errs, domain.FieldError{Field: "content", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ApplyReviewInput holds the parameters for recording a review outcome.
type ApplyReviewInput struct {
	CardID  uuid.UUID
	Outcome domain.ReviewOutcome
}

// Validate checks all fields and collects all errors.
func (i *ApplyReviewInput) Validate() error {
	var errs []domain.FieldError

	if i.CardID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "card_id", Message: "required"})
	}
	if !i.Outcome.IsValid() {
		errs = append(errs, domain.FieldError{Field: "outcome", Message: "must be AGAIN, HARD, GOOD, or EASY"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ListCardsInput holds the parameters for listing cards.
type ListCardsInput struct {
	State     *domain.DeliveryState
	DueBefore *time.Time
	SortBy    string
	SortDesc  bool
	Limit     int
	Offset    int
}

// Validate checks all fields and collects all errors.
func (i *ListCardsInput) Validate() error {
	var errs []domain.FieldError

	if i.State != nil && !i.State.IsValid() {
		errs = append(errs, domain.FieldError{Field: "state", Message: "must be PENDING, SENT, or ACKNOWLEDGED"})
	}
	if i.SortBy != "" && i.SortBy != "next_due_at" && i.SortBy != "created_at" {
		errs = append(errs, domain.FieldError{Field: "sort_by", Message: "must be next_due_at or created_at"})
	}
	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// AcknowledgeInput holds the parameters for acknowledging a reminder.
type AcknowledgeInput struct {
	CardID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i *AcknowledgeInput) Validate() error {
	var errs []domain.FieldError

	if i.CardID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "card_id", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CardHistoryInput holds the parameters for fetching a card's review history.
type CardHistoryInput struct {
	CardID uuid.UUID
	Limit  int
}

// Validate checks all fields and collects all errors.
func (i *CardHistoryInput) Validate() error {
	var errs []domain.FieldError

	if i.CardID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "card_id", Message: "required"})
	}
	if i.Limit < 0 || i.Limit > 500 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 500"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
