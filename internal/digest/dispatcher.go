package digest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
	"github.com/linkstash-app/linkstash/internal/platform/observability"
	"github.com/linkstash-app/linkstash/internal/platform/worker"
)

// Window lengths for the two scheduled entry points.
const (
	DailyWindowDays  = 1
	WeeklyWindowDays = 7
)

// Dispatcher fans a digest run out over all users subscribed at one
// frequency tier.
type Dispatcher struct {
	repo    Repository
	builder *Builder
	sender  EmailSender
	workers int
	logger  *zerolog.Logger
}

// NewDispatcher creates a Dispatcher. workers bounds how many users are
// processed concurrently; user iterations share no state, so the pool only
// needs to preserve per-user failure isolation.
func NewDispatcher(repo Repository, builder *Builder, sender EmailSender, workers int, logger *zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}

	return &Dispatcher{
		repo:    repo,
		builder: builder,
		sender:  sender,
		workers: workers,
		logger:  logger,
	}
}

// Dispatch builds and emails digests for every user whose preference equals
// frequency. It fails only when the user set itself cannot be enumerated;
// per-user failures are logged and skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, frequency domain.DigestFrequency, windowDays int) error {
	start := time.Now()

	defer func() {
		observability.DigestDispatchDuration.WithLabelValues(string(frequency)).Observe(time.Since(start).Seconds())
	}()

	users, err := d.repo.ListUsersByFrequency(ctx, frequency)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrDigestEnumeration, err)
	}

	d.logger.Info().
		Str("frequency", string(frequency)).
		Int("users", len(users)).
		Msg("starting digest dispatch")

	sem := make(chan struct{}, d.workers)

	var wg sync.WaitGroup

	for _, user := range users {
		sem <- struct{}{}

		wg.Add(1)

		go func(user domain.User) {
			defer wg.Done()
			defer func() { <-sem }()
			defer worker.RecoverPanic(d.logger, "digest dispatch user")

			d.dispatchUser(ctx, user, frequency, windowDays)
		}(user)
	}

	wg.Wait()

	return nil
}

// dispatchUser builds and sends one user's digest. Failures are terminal for
// this user in this run only.
func (d *Dispatcher) dispatchUser(ctx context.Context, user domain.User, frequency domain.DigestFrequency, windowDays int) {
	logger := d.logger.With().Str("user_id", user.ID).Logger()

	fragment, err := d.builder.BuildUserDigest(ctx, user.ID, windowDays)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to build digest, skipping user")
		observability.DigestsBuilt.WithLabelValues("error").Inc()

		return
	}

	if fragment == "" {
		observability.DigestsBuilt.WithLabelValues("empty").Inc()
		return
	}

	observability.DigestsBuilt.WithLabelValues("ok").Inc()

	body, err := wrapDocument(frequency, fragment)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to render digest document, skipping user")
		return
	}

	if err := d.sender.Send(ctx, user.Email, user.DisplayName(), SubjectFor(frequency), body); err != nil {
		logger.Warn().Err(err).Msg("failed to send digest email, skipping user")
		observability.DigestEmailsSent.WithLabelValues(string(frequency), "error").Inc()

		return
	}

	observability.DigestEmailsSent.WithLabelValues(string(frequency), "sent").Inc()
	logger.Debug().Msg("digest sent")
}
