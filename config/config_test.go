package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":5250", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 1000, cfg.PriceAPI.PageSize)
	assert.Equal(t, time.Second, cfg.Gateway.MinInterval)
	assert.Equal(t, 2, cfg.Gateway.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Gateway.BackoffBase)
	assert.Equal(t, 5*time.Second, cfg.Gateway.BackoffCap)
	assert.Equal(t, 45*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 3, cfg.Search.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Stagger)
	assert.Equal(t, 25, cfg.Search.TargetResults)
	assert.Equal(t, 50, cfg.Search.MaxCandidates)
	assert.Equal(t, 500.0, cfg.Search.MaxRadiusKm)
	assert.Equal(t, 15, cfg.Search.TopN)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":8080")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://example.com")
	t.Setenv("SEARCH_BATCH_SIZE", "5")
	t.Setenv("GATEWAY_MIN_INTERVAL", "250ms")
	t.Setenv("GEOCODE_CACHE_BACKEND", "sqlite")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "http://example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5, cfg.Search.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Gateway.MinInterval)
	assert.Equal(t, CacheBackendSQLite, cfg.Cache.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{
			name:   "zero batch size",
			modify: func(c *Config) { c.Search.BatchSize = 0 },
			errMsg: "SEARCH_BATCH_SIZE",
		},
		{
			name:   "negative retries",
			modify: func(c *Config) { c.Gateway.MaxRetries = -1 },
			errMsg: "GATEWAY_MAX_RETRIES",
		},
		{
			name:   "zero radius",
			modify: func(c *Config) { c.Search.MaxRadiusKm = 0 },
			errMsg: "SEARCH_MAX_RADIUS_KM",
		},
		{
			name:   "unknown cache backend",
			modify: func(c *Config) { c.Cache.Backend = "redis" },
			errMsg: "GEOCODE_CACHE_BACKEND",
		},
		{
			name:   "empty memory cache",
			modify: func(c *Config) { c.Cache.Size = 0 },
			errMsg: "GEOCODE_CACHE_SIZE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNearbyStates(t *testing.T) {
	assert.Equal(t, []string{"gujarat", "madhya pradesh", "karnataka", "telangana", "goa"}, NearbyStates("Maharashtra"))
	assert.Empty(t, NearbyStates("goa"))
	assert.Empty(t, NearbyStates(""))

	// Callers may reorder the result without touching the table
	nearby := NearbyStates("delhi")
	nearby[0] = "changed"
	assert.Equal(t, "haryana", NearbyStates("delhi")[0])
}
