package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/semenovdl/recallbot/internal/adapter/postgres/card"
	"github.com/semenovdl/recallbot/internal/domain"
	"github.com/semenovdl/recallbot/pkg/ctxutil"
)

// ApplyReview records a review outcome: computes the next schedule from the
// interval policy, writes it to the card and appends a review event, all in
// one transaction. The card returns to PENDING with a fresh retry budget.
func (s *Service) ApplyReview(ctx context.Context, input ApplyReviewInput) (domain.Card, error) {
	ownerID, ok := ctxutil.OwnerIDFromCtx(ctx)
	if !ok {
		return domain.Card{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return domain.Card{}, err
	}

	current, err := s.cards.Find(ctx, input.CardID)
	if err != nil {
		return domain.Card{}, fmt.Errorf("get card: %w", err)
	}
	if current.OwnerID != ownerID {
		return domain.Card{}, domain.ErrForbidden
	}

	now := s.now()
	schedule := NextSchedule(s.policy, current.Interval, input.Outcome, now)

	var updated domain.Card
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.cards.UpdateSchedule(txCtx, ownerID, input.CardID, card.ScheduleParams{
			Interval:       schedule.Interval,
			LastReviewedAt: now,
			NextDueAt:      schedule.NextDueAt,
			Outcome:        input.Outcome,
		})
		if updateErr != nil {
			return fmt.Errorf("update schedule: %w", updateErr)
		}

		if _, err := s.events.Create(txCtx, input.CardID, input.Outcome, schedule.Interval, now); err != nil {
			return fmt.Errorf("append review event: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Card{}, err
	}

	s.log.InfoContext(ctx, "review applied",
		slog.Int64("owner_id", ownerID),
		slog.String("card_id", input.CardID.String()),
		slog.String("outcome", string(input.Outcome)),
		slog.Duration("old_interval", current.Interval),
		slog.Duration("new_interval", updated.Interval),
		slog.Time("next_due_at", updated.NextDueAt),
	)

	return updated, nil
}

// Acknowledge confirms receipt of a sent reminder without reviewing it.
// The card stays on its current schedule.
func (s *Service) Acknowledge(ctx context.Context, input AcknowledgeInput) error {
	ownerID, ok := ctxutil.OwnerIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return err
	}

	if err := s.cards.MarkAcknowledged(ctx, ownerID, input.CardID); err != nil {
		return fmt.Errorf("acknowledge card: %w", err)
	}

	s.log.InfoContext(ctx, "reminder acknowledged",
		slog.Int64("owner_id", ownerID),
		slog.String("card_id", input.CardID.String()),
	)

	return nil
}
