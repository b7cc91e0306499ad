package digest

import (
	"context"
	"sync"

	"github.com/linkstash-app/linkstash/internal/core/domain"
)

// UserGetter loads a user by id.
type UserGetter interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// NameCache memoizes username lookups for the lifetime of the process.
// It never evicts and never invalidates: usernames are treated as
// effectively immutable while a dispatch run is rendering.
type NameCache struct {
	users UserGetter
	mu    sync.RWMutex
	names map[string]string
}

// NewNameCache creates a NameCache backed by the given store.
func NewNameCache(users UserGetter) *NameCache {
	return &NameCache{
		users: users,
		names: make(map[string]string),
	}
}

// DisplayName returns the display name for a user id, falling back to
// "User" when the record is missing or the lookup fails.
func (c *NameCache) DisplayName(ctx context.Context, userID string) string {
	c.mu.RLock()
	name, ok := c.names[userID]
	c.mu.RUnlock()

	if ok {
		return name
	}

	name = "User"

	if user, err := c.users.GetUser(ctx, userID); err == nil {
		name = user.DisplayName()
	}

	c.mu.Lock()
	c.names[userID] = name
	c.mu.Unlock()

	return name
}
