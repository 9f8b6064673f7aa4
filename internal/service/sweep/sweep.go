package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/semenovdl/recallbot/internal/domain"
)

// SweepOnce runs one full pass: reconcile cards stuck in SENT, then deliver
// every due card in batches until the backlog is drained or the context is
// cancelled.
func (s *Service) SweepOnce(ctx context.Context) (Result, error) {
	var result Result

	now := s.nowFunc()

	reset, err := s.cards.ResetStale(ctx, now.Add(-s.cfg.ReconcileGrace))
	if err != nil {
		return result, fmt.Errorf("reset stale cards: %w", err)
	}
	result.Reset = reset

	// A transient failure reverts its card to PENDING, so a continuation
	// fetch can return the same card again within this pass. Each card gets
	// at most one delivery attempt per sweep; retries wait for a later tick.
	attempted := make(map[uuid.UUID]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := s.cards.FetchDue(ctx, now, s.cfg.BatchLimit)
		if err != nil {
			return result, fmt.Errorf("fetch due cards: %w", err)
		}
		if len(batch) == 0 {
			return result, nil
		}
		result.Fetched += len(batch)

		var progressed int
		for _, c := range batch {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if _, seen := attempted[c.ID]; seen {
				continue
			}
			attempted[c.ID] = struct{}{}
			if s.deliver(ctx, c, &result) {
				progressed++
			}
		}

		// A short batch means the backlog is drained. A full batch with no
		// state transitions means every remaining card is undeliverable;
		// looping again would fetch the same rows forever.
		if len(batch) < s.cfg.BatchLimit || progressed == 0 {
			return result, nil
		}
	}
}

// deliver pushes one card through the notifier and records the outcome.
// Returns true when the card changed delivery state.
func (s *Service) deliver(ctx context.Context, c domain.Card, result *Result) bool {
	if c.DeliveryAttempts >= s.cfg.RetryCap {
		result.Exhausted++
		s.log.WarnContext(ctx, "retry budget exhausted, skipping card",
			slog.String("card_id", c.ID.String()),
			slog.Int64("owner_id", c.OwnerID),
			slog.Int("attempts", c.DeliveryAttempts),
		)
		return false
	}

	// Claim the card first. Losing the race means another sweeper owns it.
	if err := s.cards.MarkSent(ctx, c.ID, domain.DeliveryStatePending); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			result.Conflicts++
			return false
		}
		s.log.ErrorContext(ctx, "mark sent failed",
			slog.String("card_id", c.ID.String()),
			slog.String("error", err.Error()),
		)
		return false
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.DeliveryTimeout)
	err := s.notifier.Send(sendCtx, c)
	cancel()

	switch {
	case err == nil:
		result.Delivered++
		return true

	case errors.Is(err, domain.ErrDeliveryPermanent):
		result.Permanent++
		s.log.WarnContext(ctx, "permanent delivery failure, suppressing owner",
			slog.Int64("owner_id", c.OwnerID),
			slog.String("card_id", c.ID.String()),
			slog.String("error", err.Error()),
		)
		if err := s.owners.SetSuppressed(ctx, c.OwnerID, true); err != nil {
			s.log.ErrorContext(ctx, "suppress owner failed",
				slog.Int64("owner_id", c.OwnerID),
				slog.String("error", err.Error()),
			)
		}
		// The card goes back to PENDING without charging the budget; the
		// suppression flag keeps it out of future fetches.
		s.revert(ctx, c, false)
		return true

	default:
		// Transient and unclassified failures retry on the next tick.
		result.Transient++
		s.log.WarnContext(ctx, "transient delivery failure",
			slog.String("card_id", c.ID.String()),
			slog.Int64("owner_id", c.OwnerID),
			slog.Int("attempts", c.DeliveryAttempts+1),
			slog.String("error", err.Error()),
		)
		s.revert(ctx, c, true)
		return true
	}
}

func (s *Service) revert(ctx context.Context, c domain.Card, chargeAttempt bool) {
	if err := s.cards.RevertPending(ctx, c.ID, chargeAttempt); err != nil {
		s.log.ErrorContext(ctx, "revert pending failed",
			slog.String("card_id", c.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}
