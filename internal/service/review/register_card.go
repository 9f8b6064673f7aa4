package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/semenovdl/recallbot/internal/domain"
	"github.com/semenovdl/recallbot/pkg/ctxutil"
)

// RegisterCard creates a new card for the calling owner. The owner row is
// ensured first so a brand-new chat id can register without a separate
// signup step.
func (s *Service) RegisterCard(ctx context.Context, input RegisterCardInput) (domain.Card, error) {
	ownerID, ok := ctxutil.OwnerIDFromCtx(ctx)
	if !ok {
		return domain.Card{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return domain.Card{}, err
	}

	now := s.now()
	schedule := InitialSchedule(s.policy, now)

	var created domain.Card
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.owners.Ensure(txCtx, ownerID); err != nil {
			return fmt.Errorf("ensure owner: %w", err)
		}

		var createErr error
		created, createErr = s.cards.Create(txCtx, ownerID, input.Content, schedule.Interval, schedule.NextDueAt)
		if createErr != nil {
			return fmt.Errorf("create card: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return domain.Card{}, err
	}

	s.log.InfoContext(ctx, "card registered",
		slog.Int64("owner_id", ownerID),
		slog.String("card_id", created.ID.String()),
		slog.Time("next_due_at", created.NextDueAt),
	)

	return created, nil
}
