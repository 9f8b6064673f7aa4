// Package reviewevent implements the append-only review history repository.
package reviewevent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/semenovdl/recallbot/internal/adapter/postgres"
	"github.com/semenovdl/recallbot/internal/domain"
)

// Repo provides review event persistence backed by PostgreSQL.
// Events are never updated or deleted individually; rows go away only when
// their card is removed.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new review event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const createSQL = `
INSERT INTO review_events (id, card_id, outcome, resulting_interval_secs, reviewed_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, card_id, outcome, resulting_interval_secs, reviewed_at`

const listByCardSQL = `
SELECT id, card_id, outcome, resulting_interval_secs, reviewed_at
FROM review_events
WHERE card_id = $1
ORDER BY reviewed_at DESC
LIMIT $2`

// Create appends a review event for a card.
func (r *Repo) Create(ctx context.Context, cardID uuid.UUID, outcome domain.ReviewOutcome, resultingInterval time.Duration, reviewedAt time.Time) (domain.ReviewEvent, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := uuid.New()
	row := querier.QueryRow(ctx, createSQL,
		id, cardID, string(outcome), int64(resultingInterval.Seconds()), reviewedAt.UTC())

	ev, err := scanEvent(row)
	if err != nil {
		return domain.ReviewEvent{}, postgres.MapError(err, "review event", id)
	}

	return ev, nil
}

// ListByCard returns the most recent review events for a card, newest first.
func (r *Repo) ListByCard(ctx context.Context, cardID uuid.UUID, limit int) ([]domain.ReviewEvent, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByCardSQL, cardID, limit)
	if err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}
	defer rows.Close()

	events := []domain.ReviewEvent{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("list review events: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}

	return events, nil
}

func scanEvent(row pgx.Row) (domain.ReviewEvent, error) {
	var (
		ev           domain.ReviewEvent
		outcome      string
		intervalSecs int64
	)

	if err := row.Scan(&ev.ID, &ev.CardID, &outcome, &intervalSecs, &ev.ReviewedAt); err != nil {
		return domain.ReviewEvent{}, err
	}

	ev.Outcome = domain.ReviewOutcome(outcome)
	ev.ResultingInterval = time.Duration(intervalSecs) * time.Second

	return ev, nil
}
