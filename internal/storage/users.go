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

// CreateUser inserts a new user and returns it with defaults applied.
func (db *DB) CreateUser(ctx context.Context, username, email string) (*domain.User, error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, email)
		VALUES ($1, $2)
		RETURNING id, username, email, digest_frequency, email_notifications, created_at`,
		SanitizeUTF8(username), email)

	return scanUser(row)
}

// GetUser returns a user with their ordered channel subscriptions.
func (db *DB) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, username, email, digest_frequency, email_notifications, created_at
		FROM users WHERE id = $1`,
		toUUID(userID))

	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	subs, err := db.getSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Subscriptions = subs

	return user, nil
}

// ListUsersByFrequency returns all users whose digest preference equals
// frequency. Subscriptions are not loaded; callers that need them use GetUser.
func (db *DB) ListUsersByFrequency(ctx context.Context, frequency domain.DigestFrequency) ([]domain.User, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, username, email, digest_frequency, email_notifications, created_at
		FROM users
		WHERE digest_frequency = $1 AND email_notifications
		ORDER BY created_at`,
		string(frequency))
	if err != nil {
		return nil, fmt.Errorf("list users by frequency: %w", err)
	}
	defer rows.Close()

	var users []domain.User

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}

		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users by frequency: %w", err)
	}

	return users, nil
}

// UpdateUserProfile overwrites the user's digest preferences and subscription
// list. Subscription order is preserved via the position column.
func (db *DB) UpdateUserProfile(ctx context.Context, user *domain.User) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update profile: %w", err)
	}

	defer func() {
		//nolint:errcheck // rollback after commit is a no-op
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET username = $2, digest_frequency = $3, email_notifications = $4
		WHERE id = $1`,
		toUUID(user.ID), SanitizeUTF8(user.Username), string(user.DigestFrequency), user.EmailNotifications)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM subscriptions WHERE user_id = $1`, toUUID(user.ID)); err != nil {
		return fmt.Errorf("clear subscriptions: %w", err)
	}

	for i, channelID := range user.Subscriptions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO subscriptions (user_id, channel_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, channel_id) DO UPDATE SET position = EXCLUDED.position`,
			toUUID(user.ID), toUUID(channelID), i); err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update profile: %w", err)
	}

	return nil
}

func (db *DB) getSubscriptions(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT channel_id FROM subscriptions
		WHERE user_id = $1
		ORDER BY position`,
		toUUID(userID))
	if err != nil {
		return nil, fmt.Errorf("get subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []string

	for rows.Next() {
		var channelID pgtype.UUID
		if err := rows.Scan(&channelID); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}

		subs = append(subs, fromUUID(channelID))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get subscriptions: %w", err)
	}

	return subs, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		id                 pgtype.UUID
		username, email    string
		frequency          string
		emailNotifications bool
		createdAt          pgtype.Timestamptz
	)

	if err := row.Scan(&id, &username, &email, &frequency, &emailNotifications, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}

		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &domain.User{
		ID:                 fromUUID(id),
		Username:           username,
		Email:              email,
		DigestFrequency:    domain.DigestFrequency(frequency),
		EmailNotifications: emailNotifications,
		CreatedAt:          fromTimestamptz(createdAt),
	}, nil
}
