// Package digest builds and dispatches periodic email digests of recent
// links across each user's subscribed channels.
package digest

import (
	"context"
	"time"

	"github.com/linkstash-app/linkstash/internal/core/domain"
)

// Repository is the slice of storage the digest pipeline reads. The pipeline
// never writes user or channel records.
type Repository interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetChannel(ctx context.Context, channelID string) (*domain.Channel, error)
	ListRecentChannelLinks(ctx context.Context, channelID string, since time.Time, limit int) ([]domain.Link, error)
	ListUsersByFrequency(ctx context.Context, frequency domain.DigestFrequency) ([]domain.User, error)
}

// EmailSender delivers one HTML email.
type EmailSender interface {
	Send(ctx context.Context, toAddress, toName, subject, htmlBody string) error
}
