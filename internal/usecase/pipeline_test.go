package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claimvalue/backend/internal/domain"
)

// instrumentedFetcher records the peak number of simultaneous Fetch calls and
// serves canned pages per URL.
type instrumentedFetcher struct {
	pages    map[string]string
	errs     map[string]error
	delay    time.Duration
	inflight int64
	peak     int64
	mu       sync.Mutex
}

func (f *instrumentedFetcher) Fetch(ctx context.Context, url string) (*domain.FetchedPage, error) {
	current := atomic.AddInt64(&f.inflight, 1)
	defer atomic.AddInt64(&f.inflight, -1)

	f.mu.Lock()
	if current > f.peak {
		f.peak = current
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, domain.ErrFetchFailed
	}
	return &domain.FetchedPage{StatusCode: 200, Body: body}, nil
}

func (f *instrumentedFetcher) Probe(ctx context.Context, url string) (int, error) {
	return 200, nil
}

func pricedPage(price string) string {
	return fmt.Sprintf(`<html><body><h1>Test Item</h1><span class="price">%s</span></body></html>`, price)
}

func TestPipeline_ConcurrencyNeverExceedsCap(t *testing.T) {
	fetcher := &instrumentedFetcher{
		pages: map[string]string{},
		delay: 20 * time.Millisecond,
	}
	var results []domain.SearchResult
	for i := 0; i < 30; i++ {
		url := fmt.Sprintf("https://www.walmart.com/ip/%d", i)
		fetcher.pages[url] = pricedPage("$10.00")
		results = append(results, domain.SearchResult{Link: url})
	}

	pipeline := NewExtractionPipeline(fetcher, PipelineConfig{Concurrency: 5, MaxURLs: 30})
	pipeline.Run(context.Background(), results)

	if fetcher.peak > 5 {
		t.Errorf("peak in-flight fetches = %d, want <= 5", fetcher.peak)
	}
	if fetcher.peak < 2 {
		t.Errorf("peak in-flight fetches = %d, expected parallel execution", fetcher.peak)
	}
}

func TestPipeline_TruncatesToMaxURLs(t *testing.T) {
	fetcher := &instrumentedFetcher{pages: map[string]string{}}
	var results []domain.SearchResult
	for i := 0; i < 25; i++ {
		url := fmt.Sprintf("https://www.target.com/p/%d", i)
		fetcher.pages[url] = pricedPage("$5.00")
		results = append(results, domain.SearchResult{Link: url})
	}

	pipeline := NewExtractionPipeline(fetcher, PipelineConfig{Concurrency: 5, MaxURLs: 10})
	products := pipeline.Run(context.Background(), results)

	if len(products) != 10 {
		t.Errorf("len(products) = %d, want 10 (first 10 URLs only)", len(products))
	}
}

func TestPipeline_FailureIsolation(t *testing.T) {
	fetcher := &instrumentedFetcher{
		pages: map[string]string{
			"https://www.amazon.com/dp/ok1":     pricedPage("$19.99"),
			"https://www.amazon.com/dp/noprice": `<html><body><h1>Sold out</h1></body></html>`,
			"https://www.amazon.com/dp/ok2":     pricedPage("$29.99"),
			"https://www.amazon.com/dp/badbody": strings.Repeat("garbage ", 3),
		},
		errs: map[string]error{
			"https://www.amazon.com/dp/neterr": domain.ErrFetchFailed,
		},
	}

	results := []domain.SearchResult{
		{Link: "https://www.amazon.com/dp/ok1"},
		{Link: "https://www.amazon.com/dp/neterr"},
		{Link: "https://www.amazon.com/dp/noprice"},
		{Link: "https://www.amazon.com/dp/ok2"},
		{Link: "https://www.amazon.com/dp/badbody"},
	}

	pipeline := NewExtractionPipeline(fetcher, PipelineConfig{Concurrency: 5, MaxURLs: 10})
	products := pipeline.Run(context.Background(), results)

	if len(products) != 2 {
		t.Fatalf("len(products) = %d, want 2 (failures dropped, siblings kept)", len(products))
	}
	// Relative input order preserved
	if products[0].URL != "https://www.amazon.com/dp/ok1" || products[1].URL != "https://www.amazon.com/dp/ok2" {
		t.Errorf("product order = [%s %s], want [ok1 ok2]", products[0].URL, products[1].URL)
	}
	for _, p := range products {
		if p.Price == nil {
			t.Errorf("product %s has nil price after pipeline filtering", p.URL)
		}
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	pipeline := NewExtractionPipeline(&instrumentedFetcher{}, PipelineConfig{})

	if products := pipeline.Run(context.Background(), nil); len(products) != 0 {
		t.Errorf("len(products) = %d, want 0", len(products))
	}
}
