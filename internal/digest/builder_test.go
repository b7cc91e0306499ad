package digest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)

	return &logger
}

// fakeRepo serves digest reads from in-memory maps. ListRecentChannelLinks
// mirrors the storage contract: newest first, since-filtered, limited.
type fakeRepo struct {
	users    map[string]*domain.User
	channels map[string]*domain.Channel
	links    map[string][]domain.Link

	channelErr map[string]error
	listErr    map[string]error
	usersErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      make(map[string]*domain.User),
		channels:   make(map[string]*domain.Channel),
		links:      make(map[string][]domain.Link),
		channelErr: make(map[string]error),
		listErr:    make(map[string]error),
	}
}

func (r *fakeRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUserNotFound, userID)
	}

	return user, nil
}

func (r *fakeRepo) GetChannel(_ context.Context, channelID string) (*domain.Channel, error) {
	if err := r.channelErr[channelID]; err != nil {
		return nil, err
	}

	channel, ok := r.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrChannelNotFound, channelID)
	}

	return channel, nil
}

func (r *fakeRepo) ListRecentChannelLinks(_ context.Context, channelID string, since time.Time, limit int) ([]domain.Link, error) {
	if err := r.listErr[channelID]; err != nil {
		return nil, err
	}

	var out []domain.Link

	for _, link := range r.links[channelID] {
		if link.CreatedAt.After(since) {
			out = append(out, link)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *fakeRepo) ListUsersByFrequency(_ context.Context, frequency domain.DigestFrequency) ([]domain.User, error) {
	if r.usersErr != nil {
		return nil, r.usersErr
	}

	var out []domain.User

	for _, user := range r.users {
		if user.DigestFrequency == frequency && user.EmailNotifications {
			out = append(out, *user)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func newTestBuilder(repo *fakeRepo, now time.Time) *Builder {
	b := NewBuilder(repo, NewNameCache(repo), DefaultLinksPerChannel, testLogger())
	b.now = func() time.Time { return now }

	return b
}

func TestBuildUserDigestMissingUser(t *testing.T) {
	b := newTestBuilder(newFakeRepo(), time.Now())

	fragment, err := b.BuildUserDigest(context.Background(), "nobody", DailyWindowDays)
	require.NoError(t, err)
	assert.Empty(t, fragment)
}

func TestBuildUserDigestNoSubscriptions(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = &domain.User{ID: "u1", Username: "alice"}

	b := newTestBuilder(repo, time.Now())

	fragment, err := b.BuildUserDigest(context.Background(), "u1", DailyWindowDays)
	require.NoError(t, err)
	assert.Empty(t, fragment)
}

func TestBuildUserDigestLimitsToNewestLinks(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	repo := newFakeRepo()
	repo.users["u1"] = &domain.User{ID: "u1", Username: "alice", Subscriptions: []string{"c1"}}
	repo.users["author"] = &domain.User{ID: "author", Username: "bob"}
	repo.channels["c1"] = &domain.Channel{ID: "c1", Name: "golang"}

	for i := 0; i < 6; i++ {
		repo.links["c1"] = append(repo.links["c1"], domain.Link{
			ID:        fmt.Sprintf("l%d", i),
			ChannelID: "c1",
			AuthorID:  "author",
			URL:       fmt.Sprintf("https://example.com/%d", i),
			CreatedAt: now.Add(-time.Duration(i+1) * time.Hour),
		})
	}

	b := newTestBuilder(repo, now)

	fragment, err := b.BuildUserDigest(context.Background(), "u1", DailyWindowDays)
	require.NoError(t, err)

	assert.Contains(t, fragment, "<h2>golang</h2>")
	assert.Contains(t, fragment, "shared by bob")

	for i := 0; i < 5; i++ {
		assert.Contains(t, fragment, fmt.Sprintf("https://example.com/%d", i))
	}

	// The sixth-newest link falls off the five-link cap.
	assert.NotContains(t, fragment, "https://example.com/5")
}

func TestBuildUserDigestWindowFiltersOldLinks(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	repo := newFakeRepo()
	repo.users["u1"] = &domain.User{ID: "u1", Username: "alice", Subscriptions: []string{"c1"}}
	repo.channels["c1"] = &domain.Channel{ID: "c1", Name: "golang"}
	repo.links["c1"] = []domain.Link{
		{ID: "fresh", AuthorID: "u1", URL: "https://example.com/fresh", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "stale", AuthorID: "u1", URL: "https://example.com/stale", CreatedAt: now.Add(-26 * time.Hour)},
	}

	b := newTestBuilder(repo, now)

	fragment, err := b.BuildUserDigest(context.Background(), "u1", DailyWindowDays)
	require.NoError(t, err)

	assert.Contains(t, fragment, "https://example.com/fresh")
	assert.NotContains(t, fragment, "https://example.com/stale")
}

func TestBuildUserDigestChannelOrderFollowsSubscriptions(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	repo := newFakeRepo()
	repo.users["u1"] = &domain.User{ID: "u1", Username: "alice", Subscriptions: []string{"c2", "c1"}}
	repo.channels["c1"] = &domain.Channel{ID: "c1", Name: "alpha"}
	repo.channels["c2"] = &domain.Channel{ID: "c2", Name: "zulu"}
	repo.links["c1"] = []domain.Link{{ID: "l1", AuthorID: "u1", URL: "https://example.com/a", CreatedAt: now.Add(-time.Hour)}}
	repo.links["c2"] = []domain.Link{{ID: "l2", AuthorID: "u1", URL: "https://example.com/z", CreatedAt: now.Add(-time.Hour)}}

	b := newTestBuilder(repo, now)

	fragment, err := b.BuildUserDigest(context.Background(), "u1", DailyWindowDays)
	require.NoError(t, err)

	// Subscription order wins over any name or recency ordering.
	assert.Less(t, strings.Index(fragment, "zulu"), strings.Index(fragment, "alpha"))
}

func TestBuildUserDigestSkipsFailingChannel(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	repo := newFakeRepo()
	repo.users["u1"] = &domain.User{ID: "u1", Username: "alice", Subscriptions: []string{"bad", "c1"}}
	repo.channels["c1"] = &domain.Channel{ID: "c1", Name: "golang"}
	repo.links["c1"] = []domain.Link{{ID: "l1", AuthorID: "u1", URL: "https://example.com/ok", CreatedAt: now.Add(-time.Hour)}}
	repo.listErr["bad"] = errors.New("connection reset")
	repo.channels["bad"] = &domain.Channel{ID: "bad", Name: "broken"}

	b := newTestBuilder(repo, now)

	fragment, err := b.BuildUserDigest(context.Background(), "u1", DailyWindowDays)
	require.NoError(t, err)

	assert.Contains(t, fragment, "https://example.com/ok")
	assert.NotContains(t, fragment, "broken")
}

func TestBuildUserDigestEmptyChannelsContributeNothing(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	repo := newFakeRepo()
	repo.users["u1"] = &domain.User{ID: "u1", Username: "alice", Subscriptions: []string{"quiet"}}
	repo.channels["quiet"] = &domain.Channel{ID: "quiet", Name: "quiet"}

	b := newTestBuilder(repo, now)

	fragment, err := b.BuildUserDigest(context.Background(), "u1", DailyWindowDays)
	require.NoError(t, err)
	assert.Empty(t, fragment)
}

func TestSnippetPrefersPreviewTitle(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	repo := newFakeRepo()
	repo.users["u1"] = &domain.User{ID: "u1", Username: "alice", Subscriptions: []string{"c1"}}
	repo.channels["c1"] = &domain.Channel{ID: "c1", Name: "golang"}
	repo.links["c1"] = []domain.Link{
		{
			ID:        "titled",
			AuthorID:  "ghost",
			URL:       "https://example.com/titled",
			CreatedAt: now.Add(-time.Hour),
			Preview: &domain.Preview{
				Title:       "A Fine Article",
				Description: "Worth reading.",
				Image:       "https://example.com/card.png",
				MediaType:   domain.MediaTypeHTML,
			},
		},
		{
			ID:        "bare",
			AuthorID:  "ghost",
			URL:       "https://example.com/bare",
			CreatedAt: now.Add(-2 * time.Hour),
		},
	}

	b := newTestBuilder(repo, now)

	fragment, err := b.BuildUserDigest(context.Background(), "u1", DailyWindowDays)
	require.NoError(t, err)

	assert.Contains(t, fragment, "A Fine Article")
	assert.Contains(t, fragment, "Worth reading.")
	assert.Contains(t, fragment, "https://example.com/card.png")

	// The preview-less link falls back to its URL for a title, and the
	// unknown author renders as the generic name.
	assert.Contains(t, fragment, ">https://example.com/bare</a>")
	assert.Contains(t, fragment, "shared by User")
}

func TestNameCacheMemoizes(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = &domain.User{ID: "u1", Username: "alice"}

	cache := NewNameCache(repo)

	assert.Equal(t, "alice", cache.DisplayName(context.Background(), "u1"))

	// Later lookups are served from the cache even if the record vanishes.
	delete(repo.users, "u1")
	assert.Equal(t, "alice", cache.DisplayName(context.Background(), "u1"))

	assert.Equal(t, "User", cache.DisplayName(context.Background(), "missing"))
}
