package digest

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
	"github.com/linkstash-app/linkstash/internal/platform/worker"
)

// DefaultLinksPerChannel caps how many recent links one channel contributes
// to a digest.
const DefaultLinksPerChannel = 5

// Builder renders the per-user digest fragment.
type Builder struct {
	repo            Repository
	names           *NameCache
	linksPerChannel int
	logger          *zerolog.Logger

	now func() time.Time
}

// NewBuilder creates a Builder.
func NewBuilder(repo Repository, names *NameCache, linksPerChannel int, logger *zerolog.Logger) *Builder {
	if linksPerChannel <= 0 {
		linksPerChannel = DefaultLinksPerChannel
	}

	return &Builder{
		repo:            repo,
		names:           names,
		linksPerChannel: linksPerChannel,
		logger:          logger,
		now:             time.Now,
	}
}

// BuildUserDigest walks the user's subscribed channels in subscription order
// and renders an HTML fragment of links created within the trailing window.
// A missing user or an empty subscription set yields an empty string. One
// channel's failure never aborts the whole digest.
func (b *Builder) BuildUserDigest(ctx context.Context, userID string, windowDays int) (string, error) {
	user, err := b.repo.GetUser(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			b.logger.Debug().Str("user_id", userID).Msg("digest requested for missing user")
			return "", nil
		}

		return "", err
	}

	if len(user.Subscriptions) == 0 {
		return "", nil
	}

	since := b.now().Add(-time.Duration(windowDays) * worker.HoursPerDay * time.Hour)

	var sb strings.Builder

	for _, channelID := range user.Subscriptions {
		block, ok := b.buildChannelBlock(ctx, channelID, since)
		if ok {
			sb.WriteString(block)
		}
	}

	return sb.String(), nil
}

// buildChannelBlock renders one channel's section. Empty channels and
// per-channel errors contribute nothing.
func (b *Builder) buildChannelBlock(ctx context.Context, channelID string, since time.Time) (string, bool) {
	logger := b.logger.With().Str("channel_id", channelID).Logger()

	channel, err := b.repo.GetChannel(ctx, channelID)
	if err != nil {
		logger.Warn().Err(err).Msg("skipping channel in digest")
		return "", false
	}

	links, err := b.repo.ListRecentChannelLinks(ctx, channelID, since, b.linksPerChannel)
	if err != nil {
		logger.Warn().Err(err).Msg("skipping channel in digest")
		return "", false
	}

	if len(links) == 0 {
		return "", false
	}

	block := channelBlock{
		ChannelName: channel.Name,
		Links:       make([]linkSnippet, 0, len(links)),
	}

	for _, link := range links {
		block.Links = append(block.Links, b.snippetFor(ctx, link))
	}

	rendered, err := renderChannelBlock(block)
	if err != nil {
		logger.Warn().Err(err).Msg("skipping channel in digest")
		return "", false
	}

	return rendered, true
}

func (b *Builder) snippetFor(ctx context.Context, link domain.Link) linkSnippet {
	snippet := linkSnippet{
		Title:    link.URL,
		URL:      link.URL,
		SharedBy: b.names.DisplayName(ctx, link.AuthorID),
	}

	if link.Preview == nil {
		return snippet
	}

	if link.Preview.Title != "" {
		snippet.Title = link.Preview.Title
	}

	snippet.Image = link.Preview.Image
	snippet.Description = link.Preview.Description

	return snippet
}
