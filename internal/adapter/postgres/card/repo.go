// Package card implements the Card repository using PostgreSQL.
// Fixed queries use raw SQL; the dynamic list query is built with squirrel.
package card

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

// ScheduleParams holds all scheduling fields written by a review.
// The delivery state is always reset to PENDING alongside: a reviewed
// card has a fresh due time and must be swept again.
type ScheduleParams struct {
	Interval       time.Duration
	LastReviewedAt time.Time
	NextDueAt      time.Time
	Outcome        domain.ReviewOutcome
}

// Repo provides card persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new card repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const cardColumns = `id, owner_id, content, interval_secs, last_reviewed_at, next_due_at,
       last_outcome, delivery_state, delivery_attempts, sent_at, created_at, updated_at`

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const getByIDSQL = `
SELECT ` + cardColumns + `
FROM cards
WHERE id = $1 AND owner_id = $2`

const findSQL = `
SELECT ` + cardColumns + `
FROM cards
WHERE id = $1`

// fetchDueSQL drives the sweep: pending cards past their due time, oldest
// first, owners that cannot be notified filtered out at the source.
const fetchDueSQL = `
SELECT c.id, c.owner_id, c.content, c.interval_secs, c.last_reviewed_at, c.next_due_at,
       c.last_outcome, c.delivery_state, c.delivery_attempts, c.sent_at, c.created_at, c.updated_at
FROM cards c
JOIN owners o ON c.owner_id = o.id
WHERE c.delivery_state = 'PENDING'
  AND c.next_due_at <= $1
  AND o.notifications_enabled
  AND NOT o.suppressed
ORDER BY c.next_due_at ASC
LIMIT $2`

const createSQL = `
INSERT INTO cards (id, owner_id, content, interval_secs, next_due_at,
                   delivery_state, delivery_attempts, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 'PENDING', 0, $6, $7)
RETURNING ` + cardColumns

const markSentSQL = `
UPDATE cards
SET delivery_state = 'SENT', sent_at = $3, updated_at = $3
WHERE id = $1 AND delivery_state = $2`

const revertPendingSQL = `
UPDATE cards
SET delivery_state = 'PENDING',
    sent_at = NULL,
    delivery_attempts = delivery_attempts + $2,
    updated_at = $3
WHERE id = $1 AND delivery_state = 'SENT'`

const markAcknowledgedSQL = `
UPDATE cards
SET delivery_state = 'ACKNOWLEDGED', updated_at = $3
WHERE id = $1 AND owner_id = $2 AND delivery_state = 'SENT'`

// resetStaleSQL is the reconciliation pass: cards handed to the channel but
// never confirmed within the grace window go back to PENDING for redelivery.
const resetStaleSQL = `
UPDATE cards
SET delivery_state = 'PENDING', sent_at = NULL, updated_at = $2
WHERE delivery_state = 'SENT' AND sent_at <= $1`

const updateScheduleSQL = `
UPDATE cards
SET interval_secs = $3,
    last_reviewed_at = $4,
    next_due_at = $5,
    last_outcome = $6,
    delivery_state = 'PENDING',
    delivery_attempts = 0,
    sent_at = NULL,
    updated_at = $7
WHERE id = $1 AND owner_id = $2
RETURNING ` + cardColumns

const deleteSQL = `DELETE FROM cards WHERE id = $1 AND owner_id = $2`

const countStatsSQL = `
SELECT count(*) AS total,
       count(*) FILTER (WHERE delivery_state = 'PENDING' AND next_due_at <= $2) AS due,
       count(*) FILTER (WHERE delivery_state = 'PENDING' AND next_due_at <= $3) AS overdue
FROM cards
WHERE owner_id = $1`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a card by primary key scoped to its owner.
// A card belonging to another owner maps to domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, ownerID int64, cardID uuid.UUID) (domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, cardID, ownerID)
	c, err := scanCard(row)
	if err != nil {
		return domain.Card{}, postgres.MapError(err, "card", cardID)
	}

	return c, nil
}

// Find returns a card by primary key regardless of owner. Callers that act
// on behalf of an owner must compare OwnerID themselves.
func (r *Repo) Find(ctx context.Context, cardID uuid.UUID) (domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, findSQL, cardID)
	c, err := scanCard(row)
	if err != nil {
		return domain.Card{}, postgres.MapError(err, "card", cardID)
	}

	return c, nil
}

// FetchDue returns pending cards with next_due_at <= before, ordered by
// next_due_at ascending (oldest-due first), bounded by limit. Cards of
// suppressed or muted owners are excluded.
func (r *Repo) FetchDue(ctx context.Context, before time.Time, limit int) ([]domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, fetchDueSQL, before, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch due cards: %w", err)
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		return nil, fmt.Errorf("fetch due cards: %w", err)
	}

	return cards, nil
}

// CountStats returns aggregate card counts for an owner. A card counts as
// due when pending and past now, as overdue when pending and past the
// overdueBefore threshold.
func (r *Repo) CountStats(ctx context.Context, ownerID int64, now, overdueBefore time.Time) (domain.CardStats, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var stats domain.CardStats
	err := querier.QueryRow(ctx, countStatsSQL, ownerID, now, overdueBefore).
		Scan(&stats.Total, &stats.Due, &stats.Overdue)
	if err != nil {
		return domain.CardStats{}, fmt.Errorf("count card stats: %w", err)
	}

	return stats, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new pending card and returns the persisted domain.Card.
func (r *Repo) Create(ctx context.Context, ownerID int64, content string, interval time.Duration, dueAt time.Time) (domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.New()

	row := querier.QueryRow(ctx, createSQL,
		id, ownerID, content, int64(interval.Seconds()), dueAt.UTC(), now, now)
	c, err := scanCard(row)
	if err != nil {
		return domain.Card{}, postgres.MapError(err, "card", id)
	}

	return c, nil
}

// MarkSent atomically transitions a card into SENT, but only from the
// expected delivery state. A concurrent sweep that already moved the card
// wins the race; the loser receives domain.ErrConflict.
func (r *Repo) MarkSent(ctx context.Context, cardID uuid.UUID, expected domain.DeliveryState) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	tag, err := querier.Exec(ctx, markSentSQL, cardID, string(expected), now)
	if err != nil {
		return postgres.MapError(err, "card", cardID)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %s: mark sent from %s: %w", cardID, expected, domain.ErrConflict)
	}

	return nil
}

// RevertPending returns a SENT card to PENDING so the next sweep retries it.
// incrementAttempt charges the persisted retry budget (used after a failed
// delivery; the reconciliation pass resets without charging).
func (r *Repo) RevertPending(ctx context.Context, cardID uuid.UUID, incrementAttempt bool) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	increment := 0
	if incrementAttempt {
		increment = 1
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	tag, err := querier.Exec(ctx, revertPendingSQL, cardID, increment, now)
	if err != nil {
		return postgres.MapError(err, "card", cardID)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %s: revert pending: %w", cardID, domain.ErrConflict)
	}

	return nil
}

// MarkAcknowledged transitions an owner's card from SENT to ACKNOWLEDGED.
func (r *Repo) MarkAcknowledged(ctx context.Context, ownerID int64, cardID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	tag, err := querier.Exec(ctx, markAcknowledgedSQL, cardID, ownerID, now)
	if err != nil {
		return postgres.MapError(err, "card", cardID)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %s: acknowledge: %w", cardID, domain.ErrConflict)
	}

	return nil
}

// ResetStale reverts cards stuck in SENT since before sentBefore back to
// PENDING and returns how many were reset.
func (r *Repo) ResetStale(ctx context.Context, sentBefore time.Time) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	tag, err := querier.Exec(ctx, resetStaleSQL, sentBefore, now)
	if err != nil {
		return 0, fmt.Errorf("reset stale cards: %w", err)
	}

	return tag.RowsAffected(), nil
}

// UpdateSchedule writes the scheduling fields computed from a review and
// resets the delivery pipeline (PENDING, zero attempts).
// Returns domain.ErrNotFound if the card does not exist or belongs to
// another owner.
func (r *Repo) UpdateSchedule(ctx context.Context, ownerID int64, cardID uuid.UUID, params ScheduleParams) (domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	row := querier.QueryRow(ctx, updateScheduleSQL,
		cardID, ownerID,
		int64(params.Interval.Seconds()),
		params.LastReviewedAt.UTC(),
		params.NextDueAt.UTC(),
		string(params.Outcome),
		now,
	)

	c, err := scanCard(row)
	if err != nil {
		return domain.Card{}, postgres.MapError(err, "card", cardID)
	}

	return c, nil
}

// Delete removes a card by ID scoped to its owner.
// Returns domain.ErrNotFound if 0 rows affected.
func (r *Repo) Delete(ctx context.Context, ownerID int64, cardID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, cardID, ownerID)
	if err != nil {
		return postgres.MapError(err, "card", cardID)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", cardID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanCards(rows pgx.Rows) ([]domain.Card, error) {
	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if cards == nil {
		cards = []domain.Card{}
	}

	return cards, nil
}

// scanCard scans a single card row from anything implementing pgx.Row.
func scanCard(row pgx.Row) (domain.Card, error) {
	var (
		c            domain.Card
		intervalSecs int64
		lastOutcome  *string
		state        string
	)

	if err := row.Scan(&c.ID, &c.OwnerID, &c.Content, &intervalSecs, &c.LastReviewedAt,
		&c.NextDueAt, &lastOutcome, &state, &c.DeliveryAttempts, &c.SentAt,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Card{}, err
	}

	c.Interval = time.Duration(intervalSecs) * time.Second
	c.DeliveryState = domain.DeliveryState(state)
	if lastOutcome != nil {
		o := domain.ReviewOutcome(*lastOutcome)
		c.LastOutcome = &o
	}

	return c, nil
}
