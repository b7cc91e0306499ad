package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
)

const (
	defaultVideoAPIBaseURL = "https://www.googleapis.com/youtube/v3"
	videoAPITimeout        = 10 * time.Second
)

var errVideoAPIStatus = errors.New("video api status")

// VideoClient queries the YouTube Data API for video metadata.
type VideoClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewVideoClient creates a client for the public YouTube Data API.
func NewVideoClient(apiKey string) *VideoClient {
	return NewVideoClientWithBaseURL(apiKey, defaultVideoAPIBaseURL)
}

// NewVideoClientWithBaseURL creates a client against a custom endpoint.
// Tests point this at a fake server.
func NewVideoClientWithBaseURL(apiKey, baseURL string) *VideoClient {
	return &VideoClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: videoAPITimeout,
		},
	}
}

// FetchVideo looks up a video by id and builds its preview. An empty item
// list from the API is a valid response and maps to ErrVideoNotFound.
func (c *VideoClient) FetchVideo(ctx context.Context, videoID string) (domain.Preview, error) {
	endpoint, err := c.buildURL(videoID)
	if err != nil {
		return domain.Preview{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Preview{}, fmt.Errorf("build video request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Preview{}, fmt.Errorf("video api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Preview{}, fmt.Errorf("%w: %d", errVideoAPIStatus, resp.StatusCode)
	}

	var payload videoListResponse

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Preview{}, fmt.Errorf("decode video response: %w", err)
	}

	if len(payload.Items) == 0 {
		return domain.Preview{}, fmt.Errorf("%w: %s", apperrors.ErrVideoNotFound, videoID)
	}

	snippet := payload.Items[0].Snippet

	return domain.NewVideoPreview(snippet.Title, snippet.Description, bestThumbnail(snippet.Thumbnails)), nil
}

func (c *VideoClient) buildURL(videoID string) (string, error) {
	u, err := url.Parse(c.baseURL + "/videos")
	if err != nil {
		return "", fmt.Errorf("parse video api endpoint: %w", err)
	}

	values := url.Values{}
	values.Set("part", "snippet")
	values.Set("id", videoID)
	values.Set("key", c.apiKey)
	u.RawQuery = values.Encode()

	return u.String(), nil
}

type videoListResponse struct {
	Items []struct {
		Snippet struct {
			Title       string     `json:"title"`
			Description string     `json:"description"`
			Thumbnails  thumbnails `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type thumbnail struct {
	URL string `json:"url"`
}

type thumbnails struct {
	Default  thumbnail `json:"default"`
	Medium   thumbnail `json:"medium"`
	High     thumbnail `json:"high"`
	Standard thumbnail `json:"standard"`
	Maxres   thumbnail `json:"maxres"`
}

// bestThumbnail returns the highest-resolution thumbnail the API offered.
func bestThumbnail(t thumbnails) string {
	for _, candidate := range []thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if candidate.URL != "" {
			return candidate.URL
		}
	}

	return ""
}
