package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/semenovdl/recallbot/internal/adapter/postgres/card"
	"github.com/semenovdl/recallbot/internal/domain"
	"github.com/semenovdl/recallbot/pkg/ctxutil"
)

const defaultHistoryLimit = 50

// GetCard returns a single card owned by the caller.
func (s *Service) GetCard(ctx context.Context, cardID uuid.UUID) (domain.Card, error) {
	ownerID, ok := ctxutil.OwnerIDFromCtx(ctx)
	if !ok {
		return domain.Card{}, domain.ErrUnauthorized
	}

	c, err := s.cards.GetByID(ctx, ownerID, cardID)
	if err != nil {
		return domain.Card{}, fmt.Errorf("get card: %w", err)
	}

	return c, nil
}

// ListCards returns the caller's cards matching the filter.
func (s *Service) ListCards(ctx context.Context, input ListCardsInput) ([]domain.Card, error) {
	ownerID, ok := ctxutil.OwnerIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	cards, err := s.cards.List(ctx, ownerID, card.Filter{
		State:     input.State,
		DueBefore: input.DueBefore,
		SortBy:    input.SortBy,
		SortDesc:  input.SortDesc,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	return cards, nil
}

// DeleteCard removes a card and, via cascade, its review history.
func (s *Service) DeleteCard(ctx context.Context, cardID uuid.UUID) error {
	ownerID, ok := ctxutil.OwnerIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.cards.Delete(ctx, ownerID, cardID); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}

	s.log.InfoContext(ctx, "card deleted",
		slog.Int64("owner_id", ownerID),
		slog.String("card_id", cardID.String()),
	)

	return nil
}

// CardHistory returns a card's review events, newest first. Ownership is
// checked against the card before the history is read.
func (s *Service) CardHistory(ctx context.Context, input CardHistoryInput) ([]domain.ReviewEvent, error) {
	ownerID, ok := ctxutil.OwnerIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.cards.GetByID(ctx, ownerID, input.CardID); err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}

	limit := input.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	events, err := s.events.ListByCard(ctx, input.CardID, limit)
	if err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}

	return events, nil
}

// Stats returns aggregate card counts for the caller.
func (s *Service) Stats(ctx context.Context) (domain.CardStats, error) {
	ownerID, ok := ctxutil.OwnerIDFromCtx(ctx)
	if !ok {
		return domain.CardStats{}, domain.ErrUnauthorized
	}

	now := s.now()
	stats, err := s.cards.CountStats(ctx, ownerID, now, now.Add(-overdueAfter))
	if err != nil {
		return domain.CardStats{}, fmt.Errorf("count stats: %w", err)
	}

	return stats, nil
}
