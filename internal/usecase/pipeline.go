package usecase

import (
	"context"
	"log"
	"time"

	"github.com/claimvalue/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// PipelineConfig holds fetch/extract pipeline tunables.
type PipelineConfig struct {
	Concurrency  int
	MaxURLs      int
	FetchTimeout time.Duration
	DebugLogging bool
}

// ExtractionPipeline fetches and parses candidate URLs under a hard cap on
// simultaneous in-flight operations. Per-URL failures are logged and dropped;
// they never abort sibling work or the pipeline itself.
type ExtractionPipeline struct {
	fetcher      domain.PageFetcher
	concurrency  int
	maxURLs      int
	fetchTimeout time.Duration
	debugLogging bool
}

// NewExtractionPipeline creates a pipeline over the given fetcher.
func NewExtractionPipeline(fetcher domain.PageFetcher, cfg PipelineConfig) *ExtractionPipeline {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	maxURLs := cfg.MaxURLs
	if maxURLs <= 0 {
		maxURLs = 10
	}
	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &ExtractionPipeline{
		fetcher:      fetcher,
		concurrency:  concurrency,
		maxURLs:      maxURLs,
		fetchTimeout: fetchTimeout,
		debugLogging: cfg.DebugLogging,
	}
}

// Run extracts products from up to maxURLs of the given results. The output
// keeps the input's relative order and contains only items that fetched,
// parsed, and yielded a non-nil price.
func (p *ExtractionPipeline) Run(ctx context.Context, results []domain.SearchResult) []domain.ExtractedProduct {
	if len(results) > p.maxURLs {
		results = results[:p.maxURLs]
	}

	slots := make([]*domain.ExtractedProduct, len(results))

	// Counting-semaphore fan-out: once a slot's operation completes the next
	// queued URL is admitted immediately.
	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)
	for i, result := range results {
		i, result := i, result
		g.Go(func() error {
			slots[i] = p.extractOne(ctx, result)
			return nil
		})
	}
	g.Wait()

	var products []domain.ExtractedProduct
	for _, product := range slots {
		if product != nil {
			products = append(products, *product)
		}
	}
	if p.debugLogging {
		log.Printf("[PIPELINE] %d/%d candidates yielded a priced product", len(products), len(results))
	}
	return products
}

// extractOne fetches and parses a single URL. All failure modes (network,
// timeout, non-2xx, markup parse) are contained here and reported as nil.
func (p *ExtractionPipeline) extractOne(ctx context.Context, result domain.SearchResult) *domain.ExtractedProduct {
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	page, err := p.fetcher.Fetch(fetchCtx, result.Link)
	if err != nil {
		if p.debugLogging {
			log.Printf("[PIPELINE] dropped %s: %v", result.Link, err)
		}
		return nil
	}

	product, err := ExtractProduct(result.Link, page.Body)
	if err != nil {
		if p.debugLogging {
			log.Printf("[PIPELINE] parse failed for %s: %v", result.Link, err)
		}
		return nil
	}
	if product.Price == nil {
		if p.debugLogging {
			log.Printf("[PIPELINE] no price on %s", result.Link)
		}
		return nil
	}
	return product
}
