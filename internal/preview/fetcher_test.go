package preview

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)

	return &logger
}

// fakeSleep records requested backoff durations without waiting.
type fakeSleep struct {
	slept []time.Duration
}

func (s *fakeSleep) Sleep(_ context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)

	return nil
}

func newTestFetcher(videos *VideoClient, sleep *fakeSleep) *Fetcher {
	return NewFetcher(videos, newTestWebFetcher(), RetryPolicy{
		MaxAttempts: 3,
		BackoffBase: time.Second,
		Sleep:       sleep.Sleep,
	}, testLogger())
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<title>Recovered</title>"))
	}))
	defer srv.Close()

	sleep := &fakeSleep{}
	fetcher := newTestFetcher(nil, sleep)

	preview, err := fetcher.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Recovered", preview.Title)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleep.slept)
}

func TestFetchExhaustedRetriesReturnsFallback(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sleep := &fakeSleep{}
	fetcher := newTestFetcher(nil, sleep)

	preview, err := fetcher.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, sleep.slept, 2)
	assert.True(t, preview.IsFallback(srv.URL))
	assert.Equal(t, srv.URL, preview.Title)
}

func TestFetchVideoURLSingleAttempt(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sleep := &fakeSleep{}
	fetcher := newTestFetcher(NewVideoClientWithBaseURL("key", srv.URL), sleep)

	_, err := fetcher.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)

	// The video branch never retries and never falls through to a page fetch.
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, sleep.slept)
}

func TestFetchVideoURLWithoutID(t *testing.T) {
	sleep := &fakeSleep{}
	fetcher := newTestFetcher(NewVideoClientWithBaseURL("key", "http://unused.invalid"), sleep)

	_, err := fetcher.Fetch(context.Background(), "https://www.youtube.com/c/SomeChannel")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNoVideoID))
}

func TestFetchCanceledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())

	fetcher := NewFetcher(nil, newTestWebFetcher(), RetryPolicy{
		MaxAttempts: 3,
		BackoffBase: time.Second,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()

			return ctx.Err()
		},
	}, testLogger())

	_, err := fetcher.Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryPolicyNormalized(t *testing.T) {
	p := RetryPolicy{}.normalized()

	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.BackoffBase)
	assert.NotNil(t, p.Sleep)
}
