// Package review implements the card lifecycle business logic: registering
// cards, applying review outcomes, acknowledgements, owner settings and the
// read side of the query API.
package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/semenovdl/recallbot/internal/adapter/postgres/card"
	"github.com/semenovdl/recallbot/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type cardRepo interface {
	Create(ctx context.Context, ownerID int64, content string, interval time.Duration, dueAt time.Time) (domain.Card, error)
	GetByID(ctx context.Context, ownerID int64, cardID uuid.UUID) (domain.Card, error)
	Find(ctx context.Context, cardID uuid.UUID) (domain.Card, error)
	List(ctx context.Context, ownerID int64, filter card.Filter) ([]domain.Card, error)
	UpdateSchedule(ctx context.Context, ownerID int64, cardID uuid.UUID, params card.ScheduleParams) (domain.Card, error)
	MarkAcknowledged(ctx context.Context, ownerID int64, cardID uuid.UUID) error
	Delete(ctx context.Context, ownerID int64, cardID uuid.UUID) error
	CountStats(ctx context.Context, ownerID int64, now, overdueBefore time.Time) (domain.CardStats, error)
}

type ownerRepo interface {
	Ensure(ctx context.Context, id int64) (domain.Owner, error)
	Get(ctx context.Context, id int64) (domain.Owner, error)
	SetNotifications(ctx context.Context, id int64, enabled bool) error
}

type reviewEventRepo interface {
	Create(ctx context.Context, cardID uuid.UUID, outcome domain.ReviewOutcome, resultingInterval time.Duration, reviewedAt time.Time) (domain.ReviewEvent, error)
	ListByCard(ctx context.Context, cardID uuid.UUID, limit int) ([]domain.ReviewEvent, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// overdueAfter is how far past due a card must be to count as overdue in
// the stats aggregate.
const overdueAfter = 24 * time.Hour

// Service implements the review business logic.
type Service struct {
	cards   cardRepo
	owners  ownerRepo
	events  reviewEventRepo
	tx      txManager
	log     *slog.Logger
	policy  Policy
	nowFunc func() time.Time
}

// NewService creates a new review service.
func NewService(
	log *slog.Logger,
	cards cardRepo,
	owners ownerRepo,
	events reviewEventRepo,
	tx txManager,
	policy Policy,
) *Service {
	return &Service{
		cards:   cards,
		owners:  owners,
		events:  events,
		tx:      tx,
		log:     log.With("service", "review"),
		policy:  policy,
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) now() time.Time {
	return s.nowFunc()
}
