package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/semenovdl/recallbot/internal/adapter/postgres"
	cardrepo "github.com/semenovdl/recallbot/internal/adapter/postgres/card"
	ownerrepo "github.com/semenovdl/recallbot/internal/adapter/postgres/owner"
	eventrepo "github.com/semenovdl/recallbot/internal/adapter/postgres/reviewevent"
	"github.com/semenovdl/recallbot/internal/adapter/provider/telegram"
	"github.com/semenovdl/recallbot/internal/config"
	"github.com/semenovdl/recallbot/internal/service/review"
	"github.com/semenovdl/recallbot/internal/service/sweep"
	"github.com/semenovdl/recallbot/internal/transport/middleware"
	"github.com/semenovdl/recallbot/internal/transport/rest"
)

// RunServer starts the query API server and blocks until the context is
// cancelled, then shuts down gracefully.
func RunServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting api server",
		slog.String("version", BuildVersion()),
		slog.String("addr", cfg.Server.Addr()),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	svc := review.NewService(
		logger,
		cardrepo.New(pool),
		ownerrepo.New(pool),
		eventrepo.New(pool),
		postgres.NewTxManager(pool),
		policyFromConfig(cfg.Policy),
	)

	mux := rest.NewRouter(
		rest.NewCardsHandler(svc, logger),
		rest.NewSettingsHandler(svc, logger),
		rest.NewHealthHandler(pool, BuildVersion()),
	)

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		middleware.Owner(),
		limiter.Limit(cfg.Server.RateLimitPerMinute),
	)(mux)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}

// RunScheduler starts the sweep daemon and blocks until the context is
// cancelled.
func RunScheduler(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Telegram.BotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required for the scheduler")
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting scheduler",
		slog.String("version", BuildVersion()),
		slog.Duration("sweep_interval", cfg.Sweep.Interval),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	notifier := telegram.NewNotifierWithURL(logger, cfg.Telegram.BotToken, cfg.Telegram.BaseURL, cfg.Telegram.RequestTimeout)

	svc := sweep.NewService(
		logger,
		cardrepo.New(pool),
		ownerrepo.New(pool),
		notifier,
		sweep.Config{
			Interval:        cfg.Sweep.Interval,
			BatchLimit:      cfg.Sweep.BatchLimit,
			RetryCap:        cfg.Sweep.RetryCap,
			DeliveryTimeout: cfg.Sweep.DeliveryTimeout,
			ReconcileGrace:  cfg.Sweep.ReconcileGrace,
		},
	)

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("sweep loop: %w", err)
	}

	return nil
}

func policyFromConfig(cfg config.PolicyConfig) review.Policy {
	return review.Policy{
		MinInterval: cfg.MinInterval,
		MaxInterval: cfg.MaxInterval,
		HardFactor:  cfg.HardFactor,
		GoodFactor:  cfg.GoodFactor,
		EasyFactor:  cfg.EasyFactor,
	}
}
