// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// the operational modes:
//
//   - Serve mode: HTTP API plus the preview worker pool
//   - Digest mode: scheduled daily/weekly digest dispatch
//
// Each mode can be run independently or combined based on deployment needs.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/linkstash-app/linkstash/internal/api"
	"github.com/linkstash-app/linkstash/internal/core/domain"
	"github.com/linkstash-app/linkstash/internal/digest"
	"github.com/linkstash-app/linkstash/internal/email"
	"github.com/linkstash-app/linkstash/internal/platform/config"
	"github.com/linkstash-app/linkstash/internal/platform/observability"
	"github.com/linkstash-app/linkstash/internal/platform/worker"
	"github.com/linkstash-app/linkstash/internal/preview"
	db "github.com/linkstash-app/linkstash/internal/storage"
)

// App holds the application dependencies and provides methods to run
// different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger

	queue      *preview.Queue
	dispatcher *digest.Dispatcher
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	fetcher := preview.NewFetcher(
		preview.NewVideoClient(cfg.YouTubeAPIKey),
		preview.NewWebFetcher(cfg.FetchRPS, cfg.FetchTimeout, cfg.PreviewMaxBodyBytes),
		preview.RetryPolicy{
			MaxAttempts: cfg.FetchMaxAttempts,
			BackoffBase: cfg.FetchBackoffBase,
		},
		logger,
	)

	queue := preview.NewQueue(
		preview.QueueConfig{
			Workers:     cfg.PreviewWorkers,
			Size:        cfg.PreviewQueueSize,
			Backfill:    cfg.PreviewBackfill,
			BackfillMax: cfg.PreviewBackfillMax,
		},
		preview.NewPersister(fetcher, database, logger),
		database,
		logger,
	)

	sender := email.NewSender(email.Config{
		BaseURL:     cfg.EmailAPIBaseURL,
		APIKey:      cfg.EmailAPIKey,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		Timeout:     cfg.EmailTimeout,
	})

	builder := digest.NewBuilder(database, digest.NewNameCache(database), cfg.DigestLinksPerChan, logger)
	dispatcher := digest.NewDispatcher(database, builder, sender, cfg.DigestSendWorkers, logger)

	return &App{
		cfg:        cfg,
		database:   database,
		logger:     logger,
		queue:      queue,
		dispatcher: dispatcher,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	return observability.NewServer(a.database, a.cfg.HealthPort, a.logger).Start(ctx)
}

// RunServe runs the HTTP API alongside the preview worker pool.
func (a *App) RunServe(ctx context.Context) error {
	go func() {
		if err := a.queue.Run(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error().Err(err).Msg("preview queue stopped")
		}
	}()

	server := api.NewServer(a.database, a.cfg.APIPort, a.queue.Enqueue, a.logger)

	return server.Start(ctx)
}

// RunDigest runs the digest scheduler loop with the daily and weekly tasks.
func (a *App) RunDigest(ctx context.Context) error {
	scheduler := worker.NewScheduler(a.logger)

	scheduler.AddTask(&worker.ScheduledTask{
		Name: "daily-digest",
		Hour: a.cfg.DigestDailyHour,
		Run: func(ctx context.Context, _ *zerolog.Logger) error {
			return a.dispatcher.Dispatch(ctx, domain.FrequencyDaily, digest.DailyWindowDays)
		},
	})

	scheduler.AddTask(&worker.ScheduledTask{
		Name:   "weekly-digest",
		Weekly: true,
		Day:    a.cfg.DigestWeeklyDay,
		Hour:   a.cfg.DigestWeeklyHour,
		Run: func(ctx context.Context, _ *zerolog.Logger) error {
			return a.dispatcher.Dispatch(ctx, domain.FrequencyWeekly, digest.WeeklyWindowDays)
		},
	})

	return worker.Loop(ctx, worker.Config{
		Name:         "digest-scheduler",
		PollInterval: a.cfg.DigestTickInterval,
		Process: func(ctx context.Context) error {
			scheduler.CheckAndRun(ctx)
			return nil
		},
		Logger: a.logger,
	})
}

// RunDigestOnce dispatches a single digest run for the given frequency and
// exits. Used operationally to replay a missed tick.
func (a *App) RunDigestOnce(ctx context.Context, frequency string) error {
	f := domain.DigestFrequency(frequency)

	switch f {
	case domain.FrequencyDaily:
		return a.dispatcher.Dispatch(ctx, f, digest.DailyWindowDays)
	case domain.FrequencyWeekly:
		return a.dispatcher.Dispatch(ctx, f, digest.WeeklyWindowDays)
	default:
		return fmt.Errorf("unknown digest frequency %q", frequency)
	}
}
