package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/linkstash-app/linkstash/internal/core/domain"
)

// AddReaction records a user's emoji reaction on a link. The primary key on
// (link_id, user_id, emoji) gives set semantics: re-adding is a no-op.
func (db *DB) AddReaction(ctx context.Context, linkID, userID, emoji string) error {
	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO reactions (link_id, user_id, emoji)
		VALUES ($1, $2, $3)
		ON CONFLICT (link_id, user_id, emoji) DO NOTHING`,
		toUUID(linkID), toUUID(userID), emoji); err != nil {
		return fmt.Errorf("add reaction: %w", err)
	}

	return nil
}

// RemoveReaction deletes a user's emoji reaction from a link.
// Removing an absent reaction is a no-op.
func (db *DB) RemoveReaction(ctx context.Context, linkID, userID, emoji string) error {
	if _, err := db.Pool.Exec(ctx, `
		DELETE FROM reactions
		WHERE link_id = $1 AND user_id = $2 AND emoji = $3`,
		toUUID(linkID), toUUID(userID), emoji); err != nil {
		return fmt.Errorf("remove reaction: %w", err)
	}

	return nil
}

// attachReactions loads reactions for the given links in one query.
func (db *DB) attachReactions(ctx context.Context, links []domain.Link) ([]domain.Link, error) {
	if len(links) == 0 {
		return links, nil
	}

	ids := make([]string, len(links))
	for i, link := range links {
		ids[i] = link.ID
	}

	byLink, err := db.reactionsForLinks(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range links {
		links[i].Reactions = byLink[links[i].ID]
	}

	return links, nil
}

func (db *DB) reactionsForLinks(ctx context.Context, linkIDs []string) (map[string][]domain.Reaction, error) {
	uuids := make([]pgtype.UUID, len(linkIDs))
	for i, id := range linkIDs {
		uuids[i] = toUUID(id)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT link_id, user_id, emoji, created_at
		FROM reactions
		WHERE link_id = ANY($1)
		ORDER BY created_at`,
		uuids)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	defer rows.Close()

	byLink := make(map[string][]domain.Reaction)

	for rows.Next() {
		var (
			linkID, userID pgtype.UUID
			emoji          string
			createdAt      pgtype.Timestamptz
		)

		if err := rows.Scan(&linkID, &userID, &emoji, &createdAt); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}

		id := fromUUID(linkID)
		byLink[id] = append(byLink[id], domain.Reaction{
			Emoji:     emoji,
			UserID:    fromUUID(userID),
			CreatedAt: fromTimestamptz(createdAt),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}

	return byLink, nil
}
