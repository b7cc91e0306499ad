package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestFrequencyValid(t *testing.T) {
	assert.True(t, FrequencyDaily.Valid())
	assert.True(t, FrequencyWeekly.Valid())
	assert.True(t, FrequencyNone.Valid())
	assert.False(t, DigestFrequency("hourly").Valid())
	assert.False(t, DigestFrequency("").Valid())
}

func TestPreviewJSONOmitsEmptyFields(t *testing.T) {
	payload, err := json.Marshal(NewFallbackPreview("https://example.com"))
	require.NoError(t, err)

	// Optional fields that are empty must be absent, never null.
	assert.NotContains(t, string(payload), "description")
	assert.NotContains(t, string(payload), "image")
	assert.NotContains(t, string(payload), "favicon")
	assert.NotContains(t, string(payload), "null")
	assert.Contains(t, string(payload), `"mediaType":"text/html"`)
	assert.Contains(t, string(payload), `"contentType":"text/html"`)
}

func TestIsFallback(t *testing.T) {
	url := "https://example.com/broken"

	assert.True(t, NewFallbackPreview(url).IsFallback(url))
	assert.False(t, NewFallbackPreview(url).IsFallback("https://example.com/other"))
	assert.False(t, NewHTMLPreview("Title", "", "", "").IsFallback(url))
	assert.False(t, NewOpaquePreview(url, "", "image/png").IsFallback(url))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "alice", User{Username: "alice"}.DisplayName())
	assert.Equal(t, "User", User{}.DisplayName())
}
