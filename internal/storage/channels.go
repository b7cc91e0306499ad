package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
)

// CreateChannel inserts a new channel.
func (db *DB) CreateChannel(ctx context.Context, name, creatorID string) (*domain.Channel, error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO channels (name, creator_id)
		VALUES ($1, $2)
		RETURNING id, name, creator_id, created_at`,
		SanitizeUTF8(name), toUUID(creatorID))

	return scanChannel(row)
}

// GetChannel returns a channel by id.
func (db *DB) GetChannel(ctx context.Context, channelID string) (*domain.Channel, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, name, creator_id, created_at
		FROM channels WHERE id = $1`,
		toUUID(channelID))

	return scanChannel(row)
}

// ListChannels returns all channels, oldest first.
func (db *DB) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, creator_id, created_at
		FROM channels ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var channels []domain.Channel

	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}

		channels = append(channels, *channel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	return channels, nil
}

func scanChannel(row pgx.Row) (*domain.Channel, error) {
	var (
		id, creatorID pgtype.UUID
		name          string
		createdAt     pgtype.Timestamptz
	)

	if err := row.Scan(&id, &name, &creatorID, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrChannelNotFound
		}

		return nil, fmt.Errorf("scan channel: %w", err)
	}

	return &domain.Channel{
		ID:        fromUUID(id),
		Name:      name,
		CreatorID: fromUUID(creatorID),
		CreatedAt: fromTimestamptz(createdAt),
	}, nil
}
