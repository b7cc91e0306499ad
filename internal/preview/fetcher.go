package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
	"github.com/linkstash-app/linkstash/internal/platform/observability"
	"github.com/linkstash-app/linkstash/internal/platform/worker"
)

const logKeyURL = "url"

// RetryPolicy bounds the generic-fetch retry loop. Sleep is injectable so
// tests run without wall-clock waits.
type RetryPolicy struct {
	// MaxAttempts is the total number of fetch attempts, including the first.
	MaxAttempts int

	// BackoffBase is the unit of exponential backoff: the wait before
	// attempt n+1 is BackoffBase * 2^n, with attempts numbered from 1.
	BackoffBase time.Duration

	// Sleep blocks for the given duration or until the context is canceled.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy matches the documented pipeline behavior: 3 total
// attempts with 2s then 4s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BackoffBase: time.Second,
		Sleep:       worker.Wait,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}

	if p.BackoffBase <= 0 {
		p.BackoffBase = time.Second
	}

	if p.Sleep == nil {
		p.Sleep = worker.Wait
	}

	return p
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	return p.BackoffBase << attempt
}

// Fetcher produces a normalized preview for a URL, dispatching between the
// video metadata API and a generic fetch-and-parse.
type Fetcher struct {
	videos *VideoClient
	web    *WebFetcher
	retry  RetryPolicy
	logger *zerolog.Logger
}

// NewFetcher wires a preview fetcher from its two collaborators.
func NewFetcher(videos *VideoClient, web *WebFetcher, retry RetryPolicy, logger *zerolog.Logger) *Fetcher {
	return &Fetcher{
		videos: videos,
		web:    web,
		retry:  retry.normalized(),
		logger: logger,
	}
}

// Fetch produces a preview for url.
//
// Video URLs get a single attempt against the metadata API; a missing id or
// an empty API result is a permanent error and never falls back to a generic
// fetch. Generic URLs are fetched with bounded retries; once retries are
// exhausted the minimal fallback preview is returned as a success, so the
// link is never reattempted.
func (f *Fetcher) Fetch(ctx context.Context, url string) (domain.Preview, error) {
	start := time.Now()

	c := Classify(url)
	if c.IsVideo {
		preview, err := f.fetchVideo(ctx, url, c.VideoID)
		observability.PreviewFetchDuration.WithLabelValues("video").Observe(time.Since(start).Seconds())

		return preview, err
	}

	preview, err := f.fetchGeneric(ctx, url)
	observability.PreviewFetchDuration.WithLabelValues("generic").Observe(time.Since(start).Seconds())

	return preview, err
}

func (f *Fetcher) fetchVideo(ctx context.Context, url, videoID string) (domain.Preview, error) {
	if videoID == "" {
		return domain.Preview{}, fmt.Errorf("%w: %s", apperrors.ErrNoVideoID, url)
	}

	preview, err := f.videos.FetchVideo(ctx, videoID)
	if err != nil {
		return domain.Preview{}, err
	}

	return preview, nil
}

func (f *Fetcher) fetchGeneric(ctx context.Context, url string) (domain.Preview, error) {
	for attempt := 1; attempt <= f.retry.MaxAttempts; attempt++ {
		res, err := f.web.Fetch(ctx, url)
		if err == nil {
			return ParseResult(res, url), nil
		}

		f.logger.Warn().Err(err).
			Str(logKeyURL, url).
			Int("attempt", attempt).
			Msg("preview fetch attempt failed")

		if attempt == f.retry.MaxAttempts {
			break
		}

		if err := f.retry.Sleep(ctx, f.retry.backoff(attempt)); err != nil {
			return domain.Preview{}, err
		}
	}

	// Exhausted retries: the fallback preview is a successful completion,
	// persisting it suppresses reattempts for a permanently broken link.
	return domain.NewFallbackPreview(url), nil
}
