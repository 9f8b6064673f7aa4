package domain

import (
	"errors"
	"testing"
)

func TestValidationError_UnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := NewValidationError("outcome", "must be AGAIN, HARD, GOOD, or EASY")
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError should unwrap to ErrValidation")
	}
}

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	single := NewValidationError("card_id", "required")
	if single.Error() != "validation: card_id: required" {
		t.Errorf("unexpected message: %q", single.Error())
	}

	multi := NewValidationErrors([]FieldError{
		{Field: "card_id", Message: "required"},
		{Field: "outcome", Message: "invalid"},
	})
	if multi.Error() != "validation: 2 errors" {
		t.Errorf("unexpected message: %q", multi.Error())
	}
}
