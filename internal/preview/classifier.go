// Package preview implements link preview acquisition: classifying submitted
// URLs, fetching metadata from the YouTube Data API or the target page, and
// persisting the normalized preview onto the owning link.
package preview

import (
	"net/url"
	"regexp"
	"strings"
)

// videoIDPattern is the standard 11-character YouTube video id token.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Classification is the result of matching a URL against known video hosts.
type Classification struct {
	IsVideo bool
	// VideoID is empty when the host matched but no valid id token was
	// found. Callers must treat that as a terminal failure, not fall back
	// to a generic fetch.
	VideoID string
}

// Classify decides whether a submitted URL is a recognized video-hosting URL.
// Host matching is case-insensitive and covers the short-link form
// (youtu.be/<id>) and the canonical forms (youtube.com/watch?v=, /embed/<id>,
// /v/<id>).
func Classify(rawURL string) Classification {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Classification{}
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	switch host {
	case "youtu.be":
		return Classification{IsVideo: true, VideoID: validVideoID(firstPathSegment(u.Path))}
	case "youtube.com":
		return Classification{IsVideo: true, VideoID: canonicalVideoID(u)}
	default:
		return Classification{}
	}
}

// GetVideoID extracts the video id from a recognized video URL, or returns
// an empty string.
func GetVideoID(rawURL string) string {
	return Classify(rawURL).VideoID
}

func canonicalVideoID(u *url.URL) string {
	path := strings.ToLower(u.Path)

	switch {
	case path == "/watch":
		return validVideoID(u.Query().Get("v"))
	case strings.HasPrefix(path, "/embed/"):
		return validVideoID(strings.TrimPrefix(u.Path, "/embed/"))
	case strings.HasPrefix(path, "/v/"):
		return validVideoID(strings.TrimPrefix(u.Path, "/v/"))
	default:
		return ""
	}
}

func firstPathSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}

	return path
}

func validVideoID(candidate string) string {
	if videoIDPattern.MatchString(candidate) {
		return candidate
	}

	return ""
}
