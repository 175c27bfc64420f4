package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/claimvalue/backend/internal/domain"
	"github.com/claimvalue/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestIsPriceValid(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		min, max *float64
		operator string
		want     bool
	}{
		{"less_than below max", 50, nil, f64(100), "less_than", true},
		{"less_than at max", 100, nil, f64(100), "less_than", false},
		{"less_than absent max passes", 1e9, nil, nil, "less_than", true},
		{"less_than ignores min", 5, f64(10), f64(100), "less_than", true},

		{"greater_than above min", 150, f64(100), nil, "greater_than", true},
		{"greater_than at min", 100, f64(100), nil, "greater_than", false},
		{"greater_than absent min passes", 0, nil, nil, "greater_than", true},
		{"greater_than ignores max", 500, f64(100), f64(200), "greater_than", true},

		{"between inclusive low", 100, f64(100), f64(200), "between", true},
		{"between inclusive high", 200, f64(100), f64(200), "between", true},
		{"between below", 99.99, f64(100), f64(200), "between", false},
		{"between above", 200.01, f64(100), f64(200), "between", false},
		{"between absent min", 5, nil, f64(200), "between", true},
		{"between absent max", 1e9, f64(100), nil, "between", true},
		{"between both absent", 42, nil, nil, "between", true},

		{"empty operator defaults to between", 99, f64(100), nil, "", false},
		{"unknown operator passes everything", -1, f64(100), f64(200), "approximately", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria := domain.PriceCriteria{Min: tt.min, Max: tt.max, Operator: tt.operator}
			if got := IsPriceValid(tt.price, criteria); got != tt.want {
				t.Errorf("IsPriceValid(%v, %+v) = %v, want %v", tt.price, criteria, got, tt.want)
			}
		})
	}
}

// newTestValidationService wires a service over fakes: one trusted search
// result whose page carries the given price.
func newTestValidationService(t *testing.T, price string, cacheTTL time.Duration) (*ValidationService, *fakeSearchClient) {
	t.Helper()

	client := &fakeSearchClient{
		configured: true,
		byVariant: map[string][]domain.SearchResult{
			"site:amazon.com": {
				{Title: "hit", Link: "https://www.walmart.com/ip/100"},
				{Title: "untrusted", Link: "https://www.randomsite.biz/deal"},
			},
		},
	}
	fetcher := &instrumentedFetcher{
		pages: map[string]string{
			"https://www.walmart.com/ip/100": pricedPage(price),
		},
	}

	aggregator := NewSearchAggregator(client, fetcher, SearchAggregatorConfig{})
	pipeline := NewExtractionPipeline(fetcher, PipelineConfig{Concurrency: 5, MaxURLs: 10})
	service := NewValidationService(aggregator, pipeline, cache.NewTTLCache(), ValidationServiceConfig{CacheTTL: cacheTTL})
	return service, client
}

func TestValidateProduct_EndToEnd(t *testing.T) {
	service, _ := newTestValidationService(t, "$149.99", time.Minute)

	resp, err := service.ValidateProduct(context.Background(), "office chair", domain.PriceCriteria{
		Min:      f64(100),
		Max:      f64(200),
		Operator: "between",
	})

	require.NoError(t, err)
	assert.Equal(t, "office chair", resp.Query)
	require.Equal(t, 1, resp.TotalFound)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, resp.TotalFound, len(resp.Products), "totalFound must equal len(products)")
	require.NotNil(t, resp.Products[0].Price)
	assert.Equal(t, "$149.99", *resp.Products[0].Price)
	assert.Equal(t, "www.walmart.com", resp.Products[0].Source)
	assert.False(t, resp.Timestamp.IsZero())
	assert.NotEmpty(t, resp.SearchTimeMarker)
}

func TestValidateProduct_FiltersOutOfRangePrices(t *testing.T) {
	service, _ := newTestValidationService(t, "$350.00", time.Minute)

	resp, err := service.ValidateProduct(context.Background(), "office chair", domain.PriceCriteria{
		Max:      f64(200),
		Operator: "less_than",
	})

	require.NoError(t, err)
	assert.Zero(t, resp.TotalFound, "an extracted price outside the bound is not an error, just excluded")
	assert.Empty(t, resp.Products)
}

func TestValidateProduct_CacheIdempotence(t *testing.T) {
	service, client := newTestValidationService(t, "$149.99", time.Minute)
	ctx := context.Background()
	criteria := domain.PriceCriteria{Min: f64(100), Max: f64(200), Operator: "between"}

	first, err := service.ValidateProduct(ctx, "office chair", criteria)
	require.NoError(t, err)
	callsAfterFirst := client.calls

	second, err := service.ValidateProduct(ctx, "office chair", criteria)
	require.NoError(t, err)

	assert.Same(t, first, second, "cache hit returns the stored response unchanged")
	assert.Equal(t, first.Timestamp, second.Timestamp)
	assert.Equal(t, first.SearchTimeMarker, second.SearchTimeMarker)
	assert.Equal(t, callsAfterFirst, client.calls, "no new searches on cache hit")
}

func TestValidateProduct_CacheExpiry(t *testing.T) {
	service, client := newTestValidationService(t, "$149.99", 30*time.Millisecond)
	ctx := context.Background()
	criteria := domain.PriceCriteria{Operator: "between"}

	first, err := service.ValidateProduct(ctx, "office chair", criteria)
	require.NoError(t, err)
	callsAfterFirst := client.calls

	time.Sleep(50 * time.Millisecond)

	third, err := service.ValidateProduct(ctx, "office chair", criteria)
	require.NoError(t, err)

	assert.NotSame(t, first, third, "expired entry must trigger a fresh pipeline execution")
	assert.Greater(t, client.calls, callsAfterFirst)
}

func TestValidateProduct_DistinctCriteriaDistinctCacheKeys(t *testing.T) {
	service, _ := newTestValidationService(t, "$149.99", time.Minute)
	ctx := context.Background()

	between, err := service.ValidateProduct(ctx, "office chair", domain.PriceCriteria{Max: f64(200), Operator: "between"})
	require.NoError(t, err)

	lessThan, err := service.ValidateProduct(ctx, "office chair", domain.PriceCriteria{Max: f64(200), Operator: "less_than"})
	require.NoError(t, err)

	assert.NotSame(t, between, lessThan)
	assert.Equal(t, "between", between.PriceCriteria.Operator)
	assert.Equal(t, "less_than", lessThan.PriceCriteria.Operator)
}

func TestValidateProduct_AllSourcesFailed(t *testing.T) {
	client := &fakeSearchClient{configured: true, failAll: true}
	fetcher := &instrumentedFetcher{}
	aggregator := NewSearchAggregator(client, fetcher, SearchAggregatorConfig{})
	pipeline := NewExtractionPipeline(fetcher, PipelineConfig{})
	service := NewValidationService(aggregator, pipeline, cache.NewTTLCache(), ValidationServiceConfig{})

	_, err := service.ValidateProduct(context.Background(), "anything", domain.PriceCriteria{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAllSourcesFailed)
}

func TestValidateProduct_EmptyQuery(t *testing.T) {
	service, _ := newTestValidationService(t, "$1.00", time.Minute)

	_, err := service.ValidateProduct(context.Background(), "", domain.PriceCriteria{})

	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
