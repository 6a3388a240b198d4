package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Server struct {
		// Listen address of the HTTP API
		Addr string `env:"SERVER_ADDR" envDefault:":5250"`

		// Logrus level name (debug, info, warn, error)
		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

		// Origins allowed by the CORS middleware
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	}

	// PriceAPI configuration for the mandi price dataset
	PriceAPI struct {
		URL      string        `env:"PRICE_API_URL" envDefault:"https://api.data.gov.in/resource/9ef84268-d588-465a-a308-a864a43d0070"`
		Key      string        `env:"PRICE_API_KEY"`
		PageSize int           `env:"PRICE_API_PAGE_SIZE" envDefault:"1000"`
		Timeout  time.Duration `env:"PRICE_API_TIMEOUT" envDefault:"30s"`
	}

	// Geocoder configuration for the LocationIQ compatible geocoding API
	Geocoder struct {
		BaseURL         string        `env:"GEOCODER_BASE_URL" envDefault:"https://api.locationiq.com/v1"`
		Key             string        `env:"GEOCODER_API_KEY"`
		CountryCode     string        `env:"GEOCODER_COUNTRY_CODE" envDefault:"in"`
		SuggestionLimit int           `env:"GEOCODER_SUGGESTION_LIMIT" envDefault:"8"`
		Timeout         time.Duration `env:"GEOCODER_TIMEOUT" envDefault:"10s"`
	}

	// Gateway pacing and retry configuration
	Gateway struct {
		// Minimum time between two outbound geocoder calls
		MinInterval time.Duration `env:"GATEWAY_MIN_INTERVAL" envDefault:"1s"`

		// Retries on 429 and transport failures
		MaxRetries int `env:"GATEWAY_MAX_RETRIES" envDefault:"2"`

		// Rate limit backoff is min(base*attempt, cap)
		BackoffBase time.Duration `env:"GATEWAY_BACKOFF_BASE" envDefault:"2s"`
		BackoffCap  time.Duration `env:"GATEWAY_BACKOFF_CAP" envDefault:"5s"`

		// Delay before retrying a transport failure
		NetworkRetryDelay time.Duration `env:"GATEWAY_NETWORK_RETRY_DELAY" envDefault:"1s"`
	}

	// Search configuration for the smart search pipeline
	Search struct {
		Timeout       time.Duration `env:"SEARCH_TIMEOUT" envDefault:"45s"`
		BatchSize     int           `env:"SEARCH_BATCH_SIZE" envDefault:"3"`
		Stagger       time.Duration `env:"SEARCH_STAGGER" envDefault:"500ms"`
		BatchPause    time.Duration `env:"SEARCH_BATCH_PAUSE" envDefault:"1s"`
		TargetResults int           `env:"SEARCH_TARGET_RESULTS" envDefault:"25"`
		MaxCandidates int           `env:"SEARCH_MAX_CANDIDATES" envDefault:"50"`
		MaxRadiusKm   float64       `env:"SEARCH_MAX_RADIUS_KM" envDefault:"500"`
		TopN          int           `env:"SEARCH_TOP_N" envDefault:"15"`
	}

	// Session lifecycle configuration
	Session struct {
		// Idle time after which a session and its caches are dropped
		TTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

		// How often idle sessions are swept
		SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	}

	// Cache configuration for the session geocode cache
	Cache struct {
		// "memory" for a per session LRU, "sqlite" for the shared in-memory database
		Backend string `env:"GEOCODE_CACHE_BACKEND" envDefault:"memory"`

		// Maximum entries per session for the memory backend
		Size int `env:"GEOCODE_CACHE_SIZE" envDefault:"4096"`

		SQLiteDSN string `env:"GEOCODE_CACHE_SQLITE_DSN" envDefault:"file:geocache?mode=memory&cache=shared"`
	}
}

const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
)

// LoadConfig reads an optional .env file and parses the environment
func LoadConfig() (*Config, error) {
	// A missing .env file is fine, the process environment is used as is
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("invalid config defaults: %v", err))
	}
	return cfg
}

// Validate checks that sizes and limits are usable
func (c *Config) Validate() error {
	if c.PriceAPI.PageSize < 1 {
		return errors.New("PRICE_API_PAGE_SIZE must be >= 1")
	}
	if c.Gateway.MaxRetries < 0 {
		return errors.New("GATEWAY_MAX_RETRIES must be >= 0")
	}
	if c.Search.BatchSize < 1 {
		return errors.New("SEARCH_BATCH_SIZE must be >= 1")
	}
	if c.Search.TargetResults < 1 {
		return errors.New("SEARCH_TARGET_RESULTS must be >= 1")
	}
	if c.Search.MaxCandidates < 1 {
		return errors.New("SEARCH_MAX_CANDIDATES must be >= 1")
	}
	if c.Search.TopN < 1 {
		return errors.New("SEARCH_TOP_N must be >= 1")
	}
	if c.Search.MaxRadiusKm <= 0 {
		return errors.New("SEARCH_MAX_RADIUS_KM must be > 0")
	}
	if c.Search.Timeout <= 0 {
		return errors.New("SEARCH_TIMEOUT must be > 0")
	}
	switch c.Cache.Backend {
	case CacheBackendMemory:
		if c.Cache.Size < 1 {
			return errors.New("GEOCODE_CACHE_SIZE must be >= 1")
		}
	case CacheBackendSQLite:
	default:
		return fmt.Errorf("unknown GEOCODE_CACHE_BACKEND %q", c.Cache.Backend)
	}
	return nil
}
