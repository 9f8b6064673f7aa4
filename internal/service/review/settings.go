package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/semenovdl/recallbot/internal/domain"
	"github.com/semenovdl/recallbot/pkg/ctxutil"
)

// GetSettings returns the caller's owner record, registering it if needed.
func (s *Service) GetSettings(ctx context.Context) (domain.Owner, error) {
	ownerID, ok := ctxutil.OwnerIDFromCtx(ctx)
	if !ok {
		return domain.Owner{}, domain.ErrUnauthorized
	}

	owner, err := s.owners.Ensure(ctx, ownerID)
	if err != nil {
		return domain.Owner{}, fmt.Errorf("ensure owner: %w", err)
	}

	return owner, nil
}

// SetNotifications toggles reminder delivery for the caller.
func (s *Service) SetNotifications(ctx context.Context, enabled bool) (domain.Owner, error) {
	ownerID, ok := ctxutil.OwnerIDFromCtx(ctx)
	if !ok {
		return domain.Owner{}, domain.ErrUnauthorized
	}

	if _, err := s.owners.Ensure(ctx, ownerID); err != nil {
		return domain.Owner{}, fmt.Errorf("ensure owner: %w", err)
	}
	if err := s.owners.SetNotifications(ctx, ownerID, enabled); err != nil {
		return domain.Owner{}, fmt.Errorf("set notifications: %w", err)
	}

	owner, err := s.owners.Get(ctx, ownerID)
	if err != nil {
		return domain.Owner{}, fmt.Errorf("get owner: %w", err)
	}

	s.log.InfoContext(ctx, "notifications toggled",
		slog.Int64("owner_id", ownerID),
		slog.Bool("enabled", enabled),
	)

	return owner, nil
}
