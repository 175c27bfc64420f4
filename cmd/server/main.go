package main

import (
	"fmt"
	"log"
	"os"

	"github.com/claimvalue/backend/config"
	httpDelivery "github.com/claimvalue/backend/internal/delivery/http"
	"github.com/claimvalue/backend/internal/domain"
	"github.com/claimvalue/backend/internal/infrastructure/cache"
	"github.com/claimvalue/backend/internal/infrastructure/categorystore"
	"github.com/claimvalue/backend/internal/infrastructure/fetch"
	"github.com/claimvalue/backend/internal/infrastructure/search"
	"github.com/claimvalue/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ClaimValue Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s (TTL: %s)", cfg.Cache.Type, cfg.Cache.TTL)

	// Result cache: TTL store with background cleanup, or the bounded
	// fallback map with insertion-order eviction
	var resultCache domain.CacheRepository
	if cfg.Cache.Type == "bounded" {
		resultCache = cache.NewBoundedCache(cfg.Cache.MaxEntries)
	} else {
		resultCache = cache.NewTTLCache()
	}

	searchClient := search.NewClient(cfg.Search.APIKey, cfg.Search.EngineID, cfg.Search.BaseURL, cfg.RateLimit.SearchAPI)
	if cfg.Server.Environment == "development" {
		searchClient.SetDebug(true)
	}

	if searchClient.Configured() {
		log.Printf("Search API configured: %s", cfg.Search.BaseURL)
	} else {
		log.Printf("WARNING: search API credentials missing - falling back to direct retailer probes")
	}

	fetcher := fetch.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)

	// Category store is optional: inference degrades to the default category
	// when the database cannot be opened
	var categoryStore domain.CategoryStore
	if store, err := categorystore.Open(cfg.Category.DBPath); err != nil {
		log.Printf("WARNING: category store unavailable (%v) - inference degrades to default", err)
	} else {
		categoryStore = store
		log.Printf("Category store: %s", cfg.Category.DBPath)
	}

	// Initialize usecase layer
	aggregator := usecase.NewSearchAggregator(searchClient, fetcher, usecase.SearchAggregatorConfig{
		MaxResultsPerQuery: cfg.Search.MaxResults,
		ProbeTimeout:       cfg.Search.ProbeTimeout,
	})

	pipeline := usecase.NewExtractionPipeline(fetcher, usecase.PipelineConfig{
		Concurrency:  cfg.Pipeline.Concurrency,
		MaxURLs:      cfg.Pipeline.MaxURLs,
		FetchTimeout: cfg.Fetch.Timeout,
	})

	validationService := usecase.NewValidationService(aggregator, pipeline, resultCache, usecase.ValidationServiceConfig{
		CacheTTL:     cfg.Cache.TTL,
		DebugLogging: cfg.Server.Environment == "development",
	})

	categoryService := usecase.NewCategoryService(categoryStore, usecase.CategoryServiceConfig{
		HintThreshold: cfg.Category.HintThreshold,
		DebugLogging:  cfg.Category.DebugLogging,
	})

	depreciationService := usecase.NewDepreciationService(categoryService)

	log.Printf("Pipeline: concurrency=%d, max_urls=%d", cfg.Pipeline.Concurrency, cfg.Pipeline.MaxURLs)
	log.Printf("Category inference: hint_threshold=%.2f", cfg.Category.HintThreshold)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(validationService, categoryService, depreciationService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
