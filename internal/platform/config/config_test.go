package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/linkstash")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, 3, cfg.FetchMaxAttempts)
	assert.Equal(t, time.Second, cfg.FetchBackoffBase)
	assert.Equal(t, 5, cfg.DigestLinksPerChan)
	assert.Equal(t, time.Monday, cfg.DigestWeeklyDay)
	assert.Equal(t, "https://api.sendgrid.com", cfg.EmailAPIBaseURL)
	assert.True(t, cfg.PreviewBackfill)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/linkstash")
	t.Setenv("DIGEST_WEEKLY_DAY", "5")
	t.Setenv("PREVIEW_FETCH_MAX_ATTEMPTS", "5")
	t.Setenv("EMAIL_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Friday, cfg.DigestWeeklyDay)
	assert.Equal(t, 5, cfg.FetchMaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.EmailTimeout)
}

func TestLoadRequiresDSN(t *testing.T) {
	// t.Setenv registers the restore; the variable must be absent, not empty,
	// for the required check to trip.
	t.Setenv("POSTGRES_DSN", "unused")
	require.NoError(t, os.Unsetenv("POSTGRES_DSN"))

	_, err := Load()
	require.Error(t, err)
}
