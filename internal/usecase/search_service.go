package usecase

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/claimvalue/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// retailerProbe is one entry of the no-credentials fallback: the retailer's
// search path with the description URL-encoded into it.
type retailerProbe struct {
	name     string
	searchFn func(encoded string) string
}

// probeTargets lists the retailer search pages tried when no search-API
// credentials are configured. Order determines output order.
var probeTargets = []retailerProbe{
	{"Amazon", func(q string) string { return "https://www.amazon.com/s?k=" + q }},
	{"Walmart", func(q string) string { return "https://www.walmart.com/search?q=" + q }},
	{"Target", func(q string) string { return "https://www.target.com/s?searchTerm=" + q }},
	{"Best Buy", func(q string) string { return "https://www.bestbuy.com/site/searchpage.jsp?st=" + q }},
	{"Home Depot", func(q string) string { return "https://www.homedepot.com/s/" + q }},
	{"Lowe's", func(q string) string { return "https://www.lowes.com/search?searchTerm=" + q }},
	{"Wayfair", func(q string) string { return "https://www.wayfair.com/keyword.php?keyword=" + q }},
}

// SearchAggregatorConfig holds aggregator tunables.
type SearchAggregatorConfig struct {
	MaxResultsPerQuery int
	ProbeTimeout       time.Duration
	DebugLogging       bool
}

// SearchAggregator turns an item description into a de-duplicated ordered list
// of search results, using the keyword-search API when credentials exist and
// direct retailer probes otherwise.
type SearchAggregator struct {
	client       domain.SearchClient
	fetcher      domain.PageFetcher
	maxPerQuery  int
	probeTimeout time.Duration
	debugLogging bool
}

// NewSearchAggregator creates a search aggregator.
func NewSearchAggregator(client domain.SearchClient, fetcher domain.PageFetcher, cfg SearchAggregatorConfig) *SearchAggregator {
	maxPerQuery := cfg.MaxResultsPerQuery
	if maxPerQuery <= 0 {
		maxPerQuery = 10
	}
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 6 * time.Second
	}
	return &SearchAggregator{
		client:       client,
		fetcher:      fetcher,
		maxPerQuery:  maxPerQuery,
		probeTimeout: probeTimeout,
		debugLogging: cfg.DebugLogging,
	}
}

// queryVariants builds the fixed query set issued in parallel against the
// search API.
func queryVariants(description string) []string {
	return []string{
		fmt.Sprintf("%s site:amazon.com OR site:walmart.com OR site:target.com OR site:bestbuy.com", description),
		fmt.Sprintf("%s model number", description),
		fmt.Sprintf("%s buy online price", description),
		fmt.Sprintf("%s official retailer", description),
		fmt.Sprintf("%s product specifications", description),
	}
}

// Search returns the merged, URL-de-duplicated result list for a description.
// It returns domain.ErrAllSourcesFailed only when no strategy produced
// anything at all; partial failures contribute empty lists silently.
func (a *SearchAggregator) Search(ctx context.Context, description string) ([]domain.SearchResult, error) {
	if a.client != nil && a.client.Configured() {
		return a.searchViaAPI(ctx, description)
	}
	return a.searchViaProbes(ctx, description)
}

// searchViaAPI runs the query variants in parallel. A variant's failure is
// captured per-query and never delays or cancels its siblings.
func (a *SearchAggregator) searchViaAPI(ctx context.Context, description string) ([]domain.SearchResult, error) {
	variants := queryVariants(description)
	perVariant := make([][]domain.SearchResult, len(variants))
	var failures int
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range variants {
		i, q := i, q
		g.Go(func() error {
			results, err := a.client.Search(gctx, q, a.maxPerQuery)
			if err != nil {
				if a.debugLogging {
					log.Printf("[SEARCH] variant %d failed: %v", i, err)
				}
				mu.Lock()
				failures++
				mu.Unlock()
				return nil // failed variants contribute an empty list
			}
			perVariant[i] = results
			return nil
		})
	}
	g.Wait()

	if failures == len(variants) {
		return nil, fmt.Errorf("%w: all %d query variants errored", domain.ErrAllSourcesFailed, len(variants))
	}

	// De-duplicate by URL only after all variants have resolved.
	merged := dedupeByURL(perVariant)
	if a.debugLogging {
		log.Printf("[SEARCH] %d unique results across %d variants for %q", len(merged), len(variants), description)
	}
	return merged, nil
}

// searchViaProbes checks each retailer's search page for the description.
// Retailers that error or return non-2xx are silently omitted.
func (a *SearchAggregator) searchViaProbes(ctx context.Context, description string) ([]domain.SearchResult, error) {
	encoded := url.QueryEscape(description)
	found := make([]*domain.SearchResult, len(probeTargets))

	g := new(errgroup.Group)
	for i, target := range probeTargets {
		i, target := i, target
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, a.probeTimeout)
			defer cancel()

			searchURL := target.searchFn(encoded)
			status, err := a.fetcher.Probe(probeCtx, searchURL)
			if err != nil || status < 200 || status > 299 {
				if a.debugLogging {
					log.Printf("[SEARCH] probe %s omitted (status=%d err=%v)", target.name, status, err)
				}
				return nil
			}
			found[i] = &domain.SearchResult{
				Title:   fmt.Sprintf("%s search results for %s", target.name, description),
				Link:    searchURL,
				Snippet: fmt.Sprintf("Search %s for %s", target.name, description),
			}
			return nil
		})
	}
	g.Wait()

	var results []domain.SearchResult
	for _, r := range found {
		if r != nil {
			results = append(results, *r)
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no retailer probe succeeded", domain.ErrAllSourcesFailed)
	}
	return results, nil
}

// dedupeByURL flattens per-variant results preserving variant order; the first
// occurrence of a URL wins.
func dedupeByURL(perVariant [][]domain.SearchResult) []domain.SearchResult {
	seen := make(map[string]bool)
	var merged []domain.SearchResult
	for _, results := range perVariant {
		for _, r := range results {
			if r.Link == "" || seen[r.Link] {
				continue
			}
			seen[r.Link] = true
			merged = append(merged, r)
		}
	}
	return merged
}
