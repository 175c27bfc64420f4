package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/claimvalue/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client talks to a Custom Search-style keyword API. Credentials are optional;
// the aggregator checks Configured() and falls back to retailer probes when
// they are absent.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	engineID    string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// searchItem mirrors one item of the API response.
type searchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// searchResponse mirrors the API response envelope.
type searchResponse struct {
	Items []searchItem `json:"items"`
}

// NewClient creates a new search API client. requestsPerHour bounds outbound
// query volume against the provider's quota.
func NewClient(apiKey, engineID, baseURL string, requestsPerHour int) *Client {
	if requestsPerHour <= 0 {
		requestsPerHour = 100
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerHour)/3600.0), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		engineID:    engineID,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Configured reports whether both the API key and engine id are present.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.engineID != ""
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ClaimValue/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchAPIFailure, err)
	}

	return resp, nil
}

// exponentialBackoff returns the sleep before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(250<<uint(attempt)) * time.Millisecond
}

// Search issues one query and returns up to maxResults hits.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: missing credentials", domain.ErrSearchAPIFailure)
	}
	if maxResults <= 0 || maxResults > 10 {
		maxResults = 10
	}

	params := url.Values{}
	params.Add("key", c.apiKey)
	params.Add("cx", c.engineID)
	params.Add("q", query)
	params.Add("num", strconv.Itoa(maxResults))

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if c.debug {
				log.Printf("[SEARCH] request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[SEARCH] API error (attempt %d) - status: %d, body: %s", attempt, resp.StatusCode, string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrSearchAPIFailure, resp.StatusCode)
			// 4xx other than 429 will not recover on retry
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, lastErr
			}
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		var searchResp searchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		results := make([]domain.SearchResult, 0, len(searchResp.Items))
		for _, item := range searchResp.Items {
			results = append(results, domain.SearchResult{
				Title:   item.Title,
				Link:    item.Link,
				Snippet: item.Snippet,
			})
		}

		if c.debug {
			log.Printf("[SEARCH] %d results for query: %q", len(results), query)
		}
		return results, nil
	}

	return nil, lastErr
}
