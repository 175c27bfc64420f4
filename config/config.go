package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Search    SearchConfig
	Fetch     FetchConfig
	Pipeline  PipelineConfig
	Cache     CacheConfig
	Category  CategoryConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SearchConfig holds keyword-search API configuration. APIKey and EngineID are
// optional: when either is empty the aggregator probes retailer search pages
// directly instead of calling the API.
type SearchConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	EngineID     string        `mapstructure:"engine_id"`
	BaseURL      string        `mapstructure:"base_url"`
	MaxResults   int           `mapstructure:"max_results"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// FetchConfig holds retailer page fetch configuration
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// PipelineConfig holds fetch/extract pipeline tunables. Concurrency is the
// hard cap on simultaneous in-flight fetches; MaxURLs limits how many trusted
// results are attempted per request.
type PipelineConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxURLs     int `mapstructure:"max_urls"`
}

// CacheConfig holds result-cache configuration. Type selects the TTL store
// ("ttl") or the bounded fallback map ("bounded").
type CacheConfig struct {
	Type       string        `mapstructure:"type"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// CategoryConfig holds category store and inference configuration
type CategoryConfig struct {
	DBPath        string  `mapstructure:"db_path"`
	HintThreshold float64 `mapstructure:"hint_threshold"`
	DebugLogging  bool    `mapstructure:"debug_logging"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP     int `mapstructure:"per_ip"`
	SearchAPI int `mapstructure:"search_api"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/claimvalue/")

	// Environment variable settings
	v.SetEnvPrefix("CLAIMVALUE")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Search defaults
	v.SetDefault("search.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.probe_timeout", "6s")

	// Fetch defaults
	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")

	// Pipeline defaults: calibration of the cap is inherited from production
	// observation, not derived; keep it configurable.
	v.SetDefault("pipeline.concurrency", 5)
	v.SetDefault("pipeline.max_urls", 10)

	// Cache defaults
	v.SetDefault("cache.type", "ttl")
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.max_entries", 100)

	// Category defaults
	v.SetDefault("category.db_path", "claimvalue.db")
	v.SetDefault("category.hint_threshold", 0.6)
	v.SetDefault("category.debug_logging", false)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.search_api", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "ttl" && config.Cache.Type != "bounded" {
		return fmt.Errorf("cache type must be 'ttl' or 'bounded', got: %s", config.Cache.Type)
	}

	if config.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max_entries must be positive, got: %d", config.Cache.MaxEntries)
	}

	if config.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline concurrency must be positive, got: %d", config.Pipeline.Concurrency)
	}

	if config.Pipeline.MaxURLs <= 0 {
		return fmt.Errorf("pipeline max_urls must be positive, got: %d", config.Pipeline.MaxURLs)
	}

	if config.Category.HintThreshold <= 0 || config.Category.HintThreshold > 1 {
		return fmt.Errorf("category hint_threshold must be in (0, 1], got: %g", config.Category.HintThreshold)
	}

	return nil
}
