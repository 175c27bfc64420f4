package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for result caching. Two in-process
// implementations exist: a TTL store with background cleanup and a bounded
// fallback map with insertion-order eviction. The implementation is chosen at
// construction time; call sites never branch on cache availability.
type CacheRepository interface {
	Get(ctx context.Context, key string) (*ValidationResponse, error)
	Set(ctx context.Context, key string, value *ValidationResponse, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SearchClient defines the interface to an external keyword-search service.
type SearchClient interface {
	// Search returns up to maxResults hits for the query.
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
	// Configured reports whether usable API credentials are present. When
	// false the aggregator falls back to direct retailer probes.
	Configured() bool
}

// FetchedPage is the raw outcome of fetching one URL.
type FetchedPage struct {
	StatusCode int
	Body       string
}

// PageFetcher defines the interface for retrieving retailer pages. Fetch
// honors the deadline on ctx; Probe is a lightweight existence check used by
// the no-credentials search fallback.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedPage, error)
	Probe(ctx context.Context, url string) (int, error)
}

// CategoryStore defines the interface to the depreciation category records.
// Read failures must be tolerated by callers (sentinel-only snapshot), never
// propagated to inference callers.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]CategoryRow, error)
}
