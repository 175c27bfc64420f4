package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claimvalue/backend/internal/domain"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of a retailer page is read. Product pages are
// routinely multi-megabyte; the selectors only need the document itself.
const maxBodyBytes = 4 << 20

// Fetcher retrieves retailer pages with a browser-like request signature.
// Per-request deadlines come from the caller's context; the embedded client
// timeout is only a safety net.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

// NewFetcher creates a page fetcher. timeout bounds any single request even if
// the caller forgets a context deadline.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// browserHeaders applies a realistic browser signature. Several retailers
// return stub pages or 403 for default Go client headers.
func (f *Fetcher) browserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// Fetch retrieves a page. Non-2xx responses are returned as errors so the
// pipeline can drop the item; the body is capped at maxBodyBytes.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*domain.FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	f.browserHeaders(req)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d for %s", domain.ErrFetchFailed, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrFetchFailed, err)
	}

	return &domain.FetchedPage{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}

// Probe performs a HEAD-equivalent existence check and returns the status
// code. Used by the no-credentials search fallback against retailer search
// pages.
func (f *Fetcher) Probe(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	f.browserHeaders(req)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return resp.StatusCode, nil
}
