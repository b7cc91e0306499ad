package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
)

// CreateLink inserts a new link with a null preview.
func (db *DB) CreateLink(ctx context.Context, channelID, authorID, url string) (*domain.Link, error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO links (channel_id, author_id, url)
		VALUES ($1, $2, $3)
		RETURNING id, channel_id, author_id, url, preview, created_at`,
		toUUID(channelID), toUUID(authorID), url)

	return scanLink(row)
}

// GetLink returns a link with its reactions.
func (db *DB) GetLink(ctx context.Context, linkID string) (*domain.Link, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, channel_id, author_id, url, preview, created_at
		FROM links WHERE id = $1`,
		toUUID(linkID))

	link, err := scanLink(row)
	if err != nil {
		return nil, err
	}

	byLink, err := db.reactionsForLinks(ctx, []string{link.ID})
	if err != nil {
		return nil, err
	}

	link.Reactions = byLink[link.ID]

	return link, nil
}

// ListChannelLinks returns a channel's links newest first, with reactions.
func (db *DB) ListChannelLinks(ctx context.Context, channelID string, limit int) ([]domain.Link, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, channel_id, author_id, url, preview, created_at
		FROM links
		WHERE channel_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		toUUID(channelID), limit)
	if err != nil {
		return nil, fmt.Errorf("list channel links: %w", err)
	}

	links, err := collectLinks(rows)
	if err != nil {
		return nil, err
	}

	return db.attachReactions(ctx, links)
}

// ListRecentChannelLinks returns the newest links in a channel created at or
// after since, capped at limit. Used by the digest builder; reactions are not
// loaded.
func (db *DB) ListRecentChannelLinks(ctx context.Context, channelID string, since time.Time, limit int) ([]domain.Link, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, channel_id, author_id, url, preview, created_at
		FROM links
		WHERE channel_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3`,
		toUUID(channelID), since, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent channel links: %w", err)
	}

	return collectLinks(rows)
}

// SaveLinkPreview overwrites the link's preview field. The write is a full
// replacement, so redelivered triggers are harmless.
func (db *DB) SaveLinkPreview(ctx context.Context, linkID string, preview domain.Preview) error {
	payload, err := json.Marshal(preview)
	if err != nil {
		return fmt.Errorf("marshal preview: %w", err)
	}

	tag, err := db.Pool.Exec(ctx, `
		UPDATE links SET preview = $2, preview_abandoned = FALSE WHERE id = $1`,
		toUUID(linkID), payload)
	if err != nil {
		return fmt.Errorf("save link preview: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrLinkNotFound
	}

	return nil
}

// AbandonLinkPreview marks a link whose preview acquisition failed
// permanently, so the backfill pass stops re-enqueueing it. The preview
// itself stays null.
func (db *DB) AbandonLinkPreview(ctx context.Context, linkID string) error {
	if _, err := db.Pool.Exec(ctx, `
		UPDATE links SET preview_abandoned = TRUE WHERE id = $1`,
		toUUID(linkID)); err != nil {
		return fmt.Errorf("abandon link preview: %w", err)
	}

	return nil
}

// ListPreviewPending returns links that still need a preview: null preview
// and never permanently abandoned. Oldest first so backlog drains in order.
func (db *DB) ListPreviewPending(ctx context.Context, limit int) ([]domain.Link, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, channel_id, author_id, url, preview, created_at
		FROM links
		WHERE preview IS NULL AND NOT preview_abandoned
		ORDER BY created_at
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("list preview pending: %w", err)
	}

	return collectLinks(rows)
}

// DeleteLink removes a link. Reactions cascade.
func (db *DB) DeleteLink(ctx context.Context, linkID string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, toUUID(linkID))
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrLinkNotFound
	}

	return nil
}

func collectLinks(rows pgx.Rows) ([]domain.Link, error) {
	defer rows.Close()

	var links []domain.Link

	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}

		links = append(links, *link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect links: %w", err)
	}

	return links, nil
}

func scanLink(row pgx.Row) (*domain.Link, error) {
	var (
		id, channelID, authorID pgtype.UUID
		url                     string
		previewJSON             []byte
		createdAt               pgtype.Timestamptz
	)

	if err := row.Scan(&id, &channelID, &authorID, &url, &previewJSON, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLinkNotFound
		}

		return nil, fmt.Errorf("scan link: %w", err)
	}

	link := &domain.Link{
		ID:        fromUUID(id),
		ChannelID: fromUUID(channelID),
		AuthorID:  fromUUID(authorID),
		URL:       url,
		CreatedAt: fromTimestamptz(createdAt),
	}

	if len(previewJSON) > 0 {
		var preview domain.Preview
		if err := json.Unmarshal(previewJSON, &preview); err != nil {
			return nil, fmt.Errorf("unmarshal preview: %w", err)
		}

		link.Preview = &preview
	}

	return link, nil
}
