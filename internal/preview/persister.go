package preview

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
	"github.com/linkstash-app/linkstash/internal/platform/observability"
)

// LinkStore is the slice of storage the persister needs.
type LinkStore interface {
	SaveLinkPreview(ctx context.Context, linkID string, preview domain.Preview) error
	AbandonLinkPreview(ctx context.Context, linkID string) error
}

// Persister runs the preview pipeline for one created link and writes the
// result onto the link record.
type Persister struct {
	fetcher *Fetcher
	store   LinkStore
	logger  *zerolog.Logger
}

// NewPersister creates a Persister.
func NewPersister(fetcher *Fetcher, store LinkStore, logger *zerolog.Logger) *Persister {
	return &Persister{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// OnLinkCreated acquires and persists the preview for a newly created link.
// Delivery is at-least-once: the preview write is a full overwrite, so a
// second delivery of the same link is harmless.
//
// Permanent video-classification failures write nothing; the link keeps a
// null preview indefinitely and is marked so the backfill pass skips it.
func (p *Persister) OnLinkCreated(ctx context.Context, link domain.Link) {
	logger := p.logger.With().Str("link_id", link.ID).Str(logKeyURL, link.URL).Logger()

	if link.URL == "" {
		logger.Info().Msg("link has no URL, skipping preview")
		return
	}

	preview, err := p.fetcher.Fetch(ctx, link.URL)
	if err != nil {
		p.handleFetchError(ctx, link, err, &logger)
		return
	}

	if err := p.store.SaveLinkPreview(ctx, link.ID, preview); err != nil {
		// Store failures are outside the fetch retry loop: log and stop,
		// the backfill pass picks the link up again.
		logger.Error().Err(err).Msg("failed to persist preview")
		return
	}

	observability.PreviewFetches.WithLabelValues(previewOutcome(link.URL, preview)).Inc()
	logger.Debug().Str("media_type", preview.MediaType).Msg("preview persisted")
}

func (p *Persister) handleFetchError(ctx context.Context, link domain.Link, err error, logger *zerolog.Logger) {
	if apperrors.Is(err, apperrors.ErrNoVideoID) || apperrors.Is(err, apperrors.ErrVideoNotFound) {
		logger.Warn().Err(err).Msg("permanent preview failure, link keeps null preview")
		observability.PreviewFetches.WithLabelValues(observability.OutcomePermanent).Inc()

		if err := p.store.AbandonLinkPreview(ctx, link.ID); err != nil {
			logger.Error().Err(err).Msg("failed to mark preview abandoned")
		}

		return
	}

	// Remaining errors are cancellation or transient video API trouble;
	// leave the link pending for a later pass.
	logger.Warn().Err(err).Msg("preview fetch did not complete")
}

func previewOutcome(url string, preview domain.Preview) string {
	switch {
	case preview.MediaType == domain.MediaTypeVideo:
		return observability.OutcomeVideo
	case preview.IsFallback(url):
		return observability.OutcomeFallback
	case preview.MediaType == domain.MediaTypeHTML:
		return observability.OutcomeHTML
	default:
		return observability.OutcomeOpaque
	}
}
