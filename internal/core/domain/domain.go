// Package domain defines the core entities shared across the application:
// channels, links, previews, reactions and user profiles.
package domain

import "time"

// DigestFrequency is a user's digest delivery preference.
type DigestFrequency string

// Digest frequency values.
const (
	FrequencyDaily  DigestFrequency = "daily"
	FrequencyWeekly DigestFrequency = "weekly"
	FrequencyNone   DigestFrequency = "none"
)

// Valid reports whether f is one of the known frequency values.
func (f DigestFrequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyNone:
		return true
	default:
		return false
	}
}

// Media type values carried by a Preview.
const (
	MediaTypeVideo = "video"
	MediaTypeHTML  = "text/html"
)

// Channel is a named grouping of shared links.
type Channel struct {
	ID        string
	Name      string
	CreatorID string
	CreatedAt time.Time
}

// Link is a URL shared into a channel. Preview is nil until the preview
// pipeline has written it; it stays nil forever when acquisition fails
// permanently.
type Link struct {
	ID        string
	ChannelID string
	AuthorID  string
	URL       string
	CreatedAt time.Time
	Reactions []Reaction
	Preview   *Preview
}

// Preview is the normalized metadata extracted from a shared URL.
// Optional fields are omitted from the stored JSON when empty, never
// persisted as null.
type Preview struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
	MediaType   string `json:"mediaType"`
	ContentType string `json:"contentType"`
}

// NewVideoPreview builds a preview from video metadata API fields.
func NewVideoPreview(title, description, image string) Preview {
	return Preview{
		Title:       title,
		Description: description,
		Image:       image,
		MediaType:   MediaTypeVideo,
		ContentType: "text/html",
	}
}

// NewHTMLPreview builds a preview from parsed page metadata.
func NewHTMLPreview(title, description, image, favicon string) Preview {
	return Preview{
		Title:       title,
		Description: description,
		Image:       image,
		Favicon:     favicon,
		MediaType:   MediaTypeHTML,
		ContentType: "text/html",
	}
}

// NewOpaquePreview builds a preview for a non-HTML resource (image,
// audio, video file, binary). The resource URL stands in for the title.
func NewOpaquePreview(url, favicon, contentType string) Preview {
	return Preview{
		Title:       url,
		Favicon:     favicon,
		MediaType:   contentType,
		ContentType: contentType,
	}
}

// NewFallbackPreview is the minimal preview written after fetch retries
// are exhausted. Writing it suppresses further reattempts for the link.
func NewFallbackPreview(url string) Preview {
	return Preview{
		Title:       url,
		MediaType:   MediaTypeHTML,
		ContentType: "text/html",
	}
}

// IsFallback reports whether p is the minimal fallback preview for url.
func (p Preview) IsFallback(url string) bool {
	return p.Title == url && p.Description == "" && p.Image == "" &&
		p.Favicon == "" && p.MediaType == MediaTypeHTML
}

// Reaction is one user's emoji reaction on a link. The owning collection
// enforces set semantics: at most one live reaction per user and emoji.
type Reaction struct {
	Emoji     string
	UserID    string
	CreatedAt time.Time
}

// User is a registered account with digest preferences. The pipeline
// only ever reads user records.
type User struct {
	ID                 string
	Username           string
	Email              string
	DigestFrequency    DigestFrequency
	Subscriptions      []string
	EmailNotifications bool
	CreatedAt          time.Time
}

// DisplayName returns the name used when addressing the user in email.
func (u User) DisplayName() string {
	if u.Username == "" {
		return "User"
	}

	return u.Username
}
