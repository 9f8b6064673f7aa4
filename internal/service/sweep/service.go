// Package sweep implements the scheduler loop: it periodically collects due
// cards and pushes them through the notifier, tracking delivery state so
// that concurrent sweeps never double-send.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/semenovdl/recallbot/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type cardRepo interface {
	FetchDue(ctx context.Context, before time.Time, limit int) ([]domain.Card, error)
	MarkSent(ctx context.Context, cardID uuid.UUID, expected domain.DeliveryState) error
	RevertPending(ctx context.Context, cardID uuid.UUID, incrementAttempt bool) error
	ResetStale(ctx context.Context, sentBefore time.Time) (int64, error)
}

type ownerRepo interface {
	SetSuppressed(ctx context.Context, id int64, suppressed bool) error
}

// notifier delivers a reminder. Send classifies failures with
// domain.ErrDeliveryTransient / domain.ErrDeliveryPermanent.
type notifier interface {
	Send(ctx context.Context, card domain.Card) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds the sweep loop settings.
type Config struct {
	Interval        time.Duration
	BatchLimit      int
	RetryCap        int
	DeliveryTimeout time.Duration
	ReconcileGrace  time.Duration
}

// Result aggregates what one sweep pass did, for logging and tests.
type Result struct {
	Fetched   int
	Delivered int
	Transient int
	Permanent int
	Exhausted int // skipped: retry budget spent
	Conflicts int // lost the send race to another sweeper
	Reset     int64
}

// Service runs the periodic sweep.
type Service struct {
	cards    cardRepo
	owners   ownerRepo
	notifier notifier
	log      *slog.Logger
	cfg      Config
	nowFunc  func() time.Time
}

// NewService creates a new sweep service.
func NewService(
	log *slog.Logger,
	cards cardRepo,
	owners ownerRepo,
	n notifier,
	cfg Config,
) *Service {
	return &Service{
		cards:    cards,
		owners:   owners,
		notifier: n,
		log:      log.With("service", "sweep"),
		cfg:      cfg,
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// Run executes sweep passes on the configured interval until the context is
// cancelled. The first pass runs immediately.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.log.InfoContext(ctx, "sweep loop started",
		slog.Duration("interval", s.cfg.Interval),
		slog.Int("batch_limit", s.cfg.BatchLimit),
	)

	for {
		s.pass(ctx)

		select {
		case <-ctx.Done():
			s.log.InfoContext(ctx, "sweep loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// pass runs reconciliation followed by one full sweep and logs the outcome.
func (s *Service) pass(ctx context.Context) {
	result, err := s.SweepOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.ErrorContext(ctx, "sweep pass failed", slog.String("error", err.Error()))
		return
	}

	if result.Fetched == 0 && result.Reset == 0 {
		return
	}

	s.log.InfoContext(ctx, "sweep pass completed",
		slog.Int("fetched", result.Fetched),
		slog.Int("delivered", result.Delivered),
		slog.Int("transient", result.Transient),
		slog.Int("permanent", result.Permanent),
		slog.Int("exhausted", result.Exhausted),
		slog.Int("conflicts", result.Conflicts),
		slog.Int64("reset", result.Reset),
	)
}
