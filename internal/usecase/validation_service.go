package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/claimvalue/backend/internal/domain"
)

// IsPriceValid applies the criteria truth table:
//
//	less_than:    max absent or price <  max
//	greater_than: min absent or price >  min
//	between:      (min absent or price >= min) and (max absent or price <= max)
//
// Unknown operators pass everything; callers validate the operator upstream.
func IsPriceValid(price float64, criteria domain.PriceCriteria) bool {
	switch criteria.Operator {
	case domain.OperatorLessThan:
		return criteria.Max == nil || price < *criteria.Max
	case domain.OperatorGreaterThan:
		return criteria.Min == nil || price > *criteria.Min
	case domain.OperatorBetween, "":
		if criteria.Min != nil && price < *criteria.Min {
			return false
		}
		if criteria.Max != nil && price > *criteria.Max {
			return false
		}
		return true
	default:
		return true
	}
}

// ValidationServiceConfig holds validation service tunables.
type ValidationServiceConfig struct {
	CacheTTL     time.Duration
	DebugLogging bool
}

// ValidationService runs the full price-discovery flow: search, trusted-domain
// filter, bounded extraction, price validation, result caching.
type ValidationService struct {
	aggregator   *SearchAggregator
	pipeline     *ExtractionPipeline
	cache        domain.CacheRepository
	cacheTTL     time.Duration
	debugLogging bool
}

// NewValidationService creates a validation service with dependencies.
func NewValidationService(
	aggregator *SearchAggregator,
	pipeline *ExtractionPipeline,
	cache domain.CacheRepository,
	cfg ValidationServiceConfig,
) *ValidationService {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}
	return &ValidationService{
		aggregator:   aggregator,
		pipeline:     pipeline,
		cache:        cache,
		cacheTTL:     cacheTTL,
		debugLogging: cfg.DebugLogging,
	}
}

// ValidateProduct resolves a description to priced, source-attributed
// candidates satisfying the criteria.
// Flow: check cache -> search -> trusted filter -> extract -> validate ->
// cache -> return. An error is returned only when every search source failed.
func (s *ValidationService) ValidateProduct(
	ctx context.Context,
	query string,
	criteria domain.PriceCriteria,
) (*domain.ValidationResponse, error) {
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	cacheKey := s.cacheKey(query, criteria)

	// Cache hit returns the stored response unchanged (TTL fixed from first
	// write, no refresh).
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
		if s.debugLogging {
			log.Printf("[VALIDATE] cache hit for %q", query)
		}
		return cached, nil
	}

	start := time.Now()

	results, err := s.aggregator.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("validate %q: %w", query, err)
	}

	trusted := FilterTrusted(results)
	if s.debugLogging {
		log.Printf("[VALIDATE] %d/%d results on trusted domains for %q", len(trusted), len(results), query)
	}

	extracted := s.pipeline.Run(ctx, trusted)

	products := make([]domain.ExtractedProduct, 0, len(extracted))
	for _, product := range extracted {
		if IsPriceValid(ParsePrice(*product.Price), criteria) {
			products = append(products, product)
		}
	}

	response := &domain.ValidationResponse{
		Query:            query,
		PriceCriteria:    criteria,
		TotalFound:       len(products),
		Products:         products,
		Timestamp:        time.Now().UTC(),
		SearchTimeMarker: time.Since(start).Round(time.Millisecond).String(),
	}

	if err := s.cache.Set(ctx, cacheKey, response, s.cacheTTL); err != nil && s.debugLogging {
		log.Printf("[VALIDATE] cache write failed for %q: %v", query, err)
	}

	return response, nil
}

// cacheKey builds the composite key (query, min, max, operator).
func (s *ValidationService) cacheKey(query string, criteria domain.PriceCriteria) string {
	min := "nil"
	if criteria.Min != nil {
		min = fmt.Sprintf("%g", *criteria.Min)
	}
	max := "nil"
	if criteria.Max != nil {
		max = fmt.Sprintf("%g", *criteria.Max)
	}
	return fmt.Sprintf("validate:%s:%s:%s:%s", NormalizeText(query), min, max, criteria.Operator)
}
