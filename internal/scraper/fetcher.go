package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Fetcher retrieves a page body as text. Errors are returned to the
// caller unretried.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// HTTPFetcher issues plain GET requests with a browser-like User-Agent.
// An optional limiter spaces out requests across all sites.
type HTTPFetcher struct {
	UserAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewHTTPFetcher constructs a fetcher. timeout <= 0 disables the client
// timeout; ratePerSecond <= 0 disables the limiter.
func NewHTTPFetcher(userAgent string, timeout time.Duration, ratePerSecond float64) *HTTPFetcher {
	f := &HTTPFetcher{
		UserAgent: userAgent,
		client:    &http.Client{Timeout: max(timeout, 0)},
	}
	if ratePerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}
	return f
}

// FetchText performs the GET and returns the body. Non-200 responses are
// errors.
func (f *HTTPFetcher) FetchText(ctx context.Context, url string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s returned %d", url, resp.StatusCode)
	}

	return string(body), nil
}
