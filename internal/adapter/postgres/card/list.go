package card

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	postgres "github.com/semenovdl/recallbot/internal/adapter/postgres"
	"github.com/semenovdl/recallbot/internal/domain"
)

// Filter narrows and pages the card list query. Zero values mean "no
// constraint"; Normalize fills paging defaults.
type Filter struct {
	State     *domain.DeliveryState
	DueBefore *time.Time
	SortBy    string // "next_due_at" or "created_at"
	SortDesc  bool
	Limit     int
	Offset    int
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Normalize clamps paging and fills sort defaults.
func (f *Filter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.SortBy != "created_at" {
		f.SortBy = "next_due_at"
	}
}

// List returns an owner's cards matching the filter.
func (r *Repo) List(ctx context.Context, ownerID int64, filter Filter) ([]domain.Card, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	filter.Normalize()

	builder := sq.Select("id", "owner_id", "content", "interval_secs", "last_reviewed_at",
		"next_due_at", "last_outcome", "delivery_state", "delivery_attempts", "sent_at",
		"created_at", "updated_at").
		From("cards").
		Where(sq.Eq{"owner_id": ownerID}).
		PlaceholderFormat(sq.Dollar)

	if filter.State != nil {
		builder = builder.Where(sq.Eq{"delivery_state": string(*filter.State)})
	}
	if filter.DueBefore != nil {
		builder = builder.Where(sq.LtOrEq{"next_due_at": filter.DueBefore.UTC()})
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	builder = builder.
		OrderBy(filter.SortBy + " " + direction).
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list cards query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	return cards, nil
}
