// Package owner implements the Owner repository using PostgreSQL.
package owner

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/semenovdl/recallbot/internal/adapter/postgres"
	"github.com/semenovdl/recallbot/internal/domain"
)

// Repo provides owner persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new owner repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const ownerColumns = `id, notifications_enabled, suppressed, created_at`

const getSQL = `
SELECT ` + ownerColumns + `
FROM owners
WHERE id = $1`

// ensureSQL registers an owner on first contact. A returning owner keeps
// their existing settings, but suppression lifts: reaching out again is the
// signal that the chat is live.
const ensureSQL = `
INSERT INTO owners (id, notifications_enabled, suppressed, created_at)
VALUES ($1, TRUE, FALSE, $2)
ON CONFLICT (id) DO UPDATE SET suppressed = FALSE
RETURNING ` + ownerColumns

const setNotificationsSQL = `
UPDATE owners
SET notifications_enabled = $2
WHERE id = $1`

const setSuppressedSQL = `
UPDATE owners
SET suppressed = $2
WHERE id = $1`

// Get returns an owner by chat id.
func (r *Repo) Get(ctx context.Context, id int64) (domain.Owner, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var o domain.Owner
	err := querier.QueryRow(ctx, getSQL, id).
		Scan(&o.ID, &o.NotificationsEnabled, &o.Suppressed, &o.CreatedAt)
	if err != nil {
		return domain.Owner{}, postgres.MapError(err, "owner", id)
	}

	return o, nil
}

// Ensure registers the owner if unknown and clears any suppression flag.
// Idempotent: safe to call on every request.
func (r *Repo) Ensure(ctx context.Context, id int64) (domain.Owner, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	var o domain.Owner
	err := querier.QueryRow(ctx, ensureSQL, id, now).
		Scan(&o.ID, &o.NotificationsEnabled, &o.Suppressed, &o.CreatedAt)
	if err != nil {
		return domain.Owner{}, postgres.MapError(err, "owner", id)
	}

	return o, nil
}

// SetNotifications toggles reminder delivery for the owner.
func (r *Repo) SetNotifications(ctx context.Context, id int64, enabled bool) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, setNotificationsSQL, id, enabled)
	if err != nil {
		return postgres.MapError(err, "owner", id)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("owner %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SetSuppressed marks or unmarks the owner as undeliverable. Set by the
// sweep after a permanent delivery failure, cleared by Ensure.
func (r *Repo) SetSuppressed(ctx context.Context, id int64, suppressed bool) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, setSuppressedSQL, id, suppressed)
	if err != nil {
		return postgres.MapError(err, "owner", id)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("owner %d: %w", id, domain.ErrNotFound)
	}

	return nil
}
