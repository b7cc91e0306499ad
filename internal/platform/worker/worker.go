// Package worker provides a generic worker loop abstraction for background
// processing. It encapsulates common patterns like poll-based loops, periodic
// due checks, context cancellation, and panic recovery used by the preview
// pipeline and the digest scheduler.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	logFieldWorker = "worker"
	logFieldTask   = "task"
)

// ProcessFunc is called each iteration to process work items.
// It should return quickly if no work is available.
type ProcessFunc func(ctx context.Context) error

// Config configures the worker loop behavior.
type Config struct {
	// Name identifies the worker for logging.
	Name string

	// PollInterval is the time between process iterations.
	PollInterval time.Duration

	// Process is called each iteration to do the main work.
	Process ProcessFunc

	// OnStart is called once when the loop starts.
	OnStart func(ctx context.Context)

	// OnStop is called once when the loop exits.
	OnStop func()

	// OnError is called when Process returns an error.
	// Return true to continue, false to exit the loop.
	OnError func(err error) bool

	// Logger for the worker.
	Logger *zerolog.Logger
}

// Loop runs a worker loop with the given configuration.
// It handles context cancellation and error recovery.
// Returns ctx.Err() when the context is canceled, or the first fatal error.
func Loop(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	logger.Info().Str(logFieldWorker, cfg.Name).Msg("starting worker loop")

	if cfg.OnStart != nil {
		cfg.OnStart(ctx)
	}

	defer func() {
		if cfg.OnStop != nil {
			cfg.OnStop()
		}

		logger.Info().Str(logFieldWorker, cfg.Name).Msg("worker loop stopped")
	}()

	for {
		if err := checkCanceled(ctx, cfg.Name); err != nil {
			return err
		}

		if err := runProcessStep(ctx, cfg, logger); err != nil {
			return err
		}

		if err := Wait(ctx, cfg.PollInterval); err != nil {
			return err
		}
	}
}

func runProcessStep(ctx context.Context, cfg Config, logger *zerolog.Logger) error {
	if cfg.Process == nil {
		return nil
	}

	if err := cfg.Process(ctx); err != nil {
		if cfg.OnError != nil {
			if !cfg.OnError(err) {
				return err
			}

			return nil
		}

		logger.Error().Err(err).Str(logFieldWorker, cfg.Name).Msg("process error")
	}

	return nil
}

func checkCanceled(ctx context.Context, name string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("worker loop %s: %w", name, ctx.Err())
	default:
		return nil
	}
}

// Wait blocks until duration elapses or context is canceled.
// Returns a wrapped context error if context is canceled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-time.After(d):
		return nil
	}
}

// RecoverPanic recovers from panics and logs them.
// Use as: defer worker.RecoverPanic(logger, "operation name")
func RecoverPanic(logger *zerolog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error().
			Interface("panic", r).
			Str("operation", operation).
			Msg("recovered from panic")
	}
}
