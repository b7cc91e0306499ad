package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	apperrors "github.com/linkstash-app/linkstash/internal/core/errors"
)

const defaultMaxBodyBytes = 5 * 1024 * 1024

var errHTTPStatus = errors.New("http status")

// FetchResult is the raw outcome of a successful page fetch.
type FetchResult struct {
	Body        []byte
	ContentType string
}

// WebFetcher performs rate-limited HTTP fetches of link targets.
// Redirects are treated as failures: the preview describes exactly the
// submitted URL, never a destination the server chose.
type WebFetcher struct {
	client         *http.Client
	globalLimiter  *rate.Limiter
	domainLimiters map[string]*rate.Limiter
	mu             sync.RWMutex
	userAgent      string
	maxBody        int64
}

// NewWebFetcher creates a fetcher with the given global requests-per-second
// limit, per-attempt timeout and response size cap.
func NewWebFetcher(rps float64, timeout time.Duration, maxBody int64) *WebFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	return &WebFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return apperrors.ErrRedirect
			},
		},
		globalLimiter:  rate.NewLimiter(rate.Limit(rps), 5),
		domainLimiters: make(map[string]*rate.Limiter),
		userAgent:      "Linkstash/1.0 (Link Preview)",
		maxBody:        maxBody,
	}
}

// Fetch performs a single GET attempt. Network errors, timeouts, redirects
// and non-2xx statuses are all returned as errors; retry policy lives in the
// caller.
func (f *WebFetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if err := f.globalLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	// Per-domain rate limit (1 req/sec per domain)
	domainLimiter := f.getDomainLimiter(f.extractDomain(rawURL))
	if err := domainLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d", errHTTPStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (f *WebFetcher) getDomainLimiter(domain string) *rate.Limiter {
	f.mu.RLock()
	limiter, exists := f.domainLimiters[domain]
	f.mu.RUnlock()

	if exists {
		return limiter
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double check
	if limiter, exists := f.domainLimiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(1, 2) // 1 req/sec per domain
	f.domainLimiters[domain] = limiter

	return limiter
}

func (f *WebFetcher) extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Host)
}

// ParseResult classifies a fetched resource into an HTML or opaque preview.
func ParseResult(res *FetchResult, rawURL string) domain.Preview {
	mediaType, _, err := mime.ParseMediaType(res.ContentType)
	if err != nil {
		mediaType = "text/html"
	}

	if mediaType == "text/html" || mediaType == "application/xhtml+xml" {
		return parseHTML(res.Body, rawURL)
	}

	return domain.NewOpaquePreview(rawURL, deriveFavicon(rawURL), mediaType)
}

// parseHTML extracts title, description, first image and first favicon from
// an HTML document. Every field is optional; relative image and favicon URLs
// are resolved against the page URL.
func parseHTML(body []byte, rawURL string) domain.Preview {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.NewHTMLPreview("", "", "", "")
	}

	base, _ := url.Parse(rawURL) //nolint:errcheck // URL was fetched already, it parses

	title := metaContent(doc, "og:title")
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	description := metaContent(doc, "og:description")
	if description == "" {
		description = metaContent(doc, "description")
	}

	image := metaContent(doc, "og:image")
	if image == "" {
		image, _ = doc.Find("img[src]").First().Attr("src")
	}

	favicon, _ := doc.Find(`link[rel~="icon"]`).First().Attr("href")

	return domain.NewHTMLPreview(
		title,
		description,
		resolveURL(base, image),
		resolveURL(base, favicon),
	)
}

func metaContent(doc *goquery.Document, name string) string {
	selector := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, name, name)

	content, _ := doc.Find(selector).First().Attr("content")

	return strings.TrimSpace(content)
}

func resolveURL(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	return base.ResolveReference(u).String()
}

// deriveFavicon points at the conventional favicon location for non-HTML
// resources, which carry no markup to extract one from.
func deriveFavicon(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host + "/favicon.ico"
}
