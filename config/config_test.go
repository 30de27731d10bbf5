package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.PAAPI.Enabled {
			t.Error("PAAPI.Enabled = true, want false")
		}
		if cfg.PAAPI.Marketplace != "US" {
			t.Errorf("PAAPI.Marketplace = %s, want US", cfg.PAAPI.Marketplace)
		}
		if cfg.PAAPI.Timeout != 10*time.Second {
			t.Errorf("PAAPI.Timeout = %v, want 10s", cfg.PAAPI.Timeout)
		}
		if cfg.PAAPI.RequestsPerSecond != 1 {
			t.Errorf("PAAPI.RequestsPerSecond = %v, want 1", cfg.PAAPI.RequestsPerSecond)
		}
		if cfg.Affiliate.Domain != "amazon.com" {
			t.Errorf("Affiliate.Domain = %s, want amazon.com", cfg.Affiliate.Domain)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.RelatedTTL != 12*time.Hour {
			t.Errorf("Cache.RelatedTTL = %v, want 12h", cfg.Cache.RelatedTTL)
		}
		if cfg.Store.Path != "gifthub.db" {
			t.Errorf("Store.Path = %s, want gifthub.db", cfg.Store.Path)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.Log.Level != "info" {
			t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
		}
		if cfg.Related.Limit != 8 {
			t.Errorf("Related.Limit = %d, want 8", cfg.Related.Limit)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		t.Setenv("GIFTHUB_SERVER_PORT", "9090")
		t.Setenv("GIFTHUB_SERVER_BASE_URL", "https://gifts.example")
		t.Setenv("GIFTHUB_PAAPI_ENABLED", "true")
		t.Setenv("GIFTHUB_PAAPI_ACCESS_KEY", "AKIDEXAMPLE")
		t.Setenv("GIFTHUB_PAAPI_SECRET_KEY", "secret/key")
		t.Setenv("GIFTHUB_PAAPI_PARTNER_TAG", "gifthub-21")
		t.Setenv("GIFTHUB_PAAPI_MARKETPLACE", "uk")
		t.Setenv("GIFTHUB_PAAPI_TIMEOUT", "5s")
		t.Setenv("GIFTHUB_CACHE_TYPE", "badger")
		t.Setenv("GIFTHUB_CACHE_PATH", "/var/lib/gifthub/cache")
		t.Setenv("GIFTHUB_RATELIMIT_PER_IP", "20")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.BaseURL != "https://gifts.example" {
			t.Errorf("Server.BaseURL = %s, want https://gifts.example", cfg.Server.BaseURL)
		}
		if !cfg.PAAPI.Enabled {
			t.Error("PAAPI.Enabled = false, want true")
		}
		if cfg.PAAPI.Timeout != 5*time.Second {
			t.Errorf("PAAPI.Timeout = %v, want 5s", cfg.PAAPI.Timeout)
		}
		if cfg.Cache.Type != "badger" {
			t.Errorf("Cache.Type = %s, want badger", cfg.Cache.Type)
		}
		if cfg.RateLimit.PerIP != 20 {
			t.Errorf("RateLimit.PerIP = %d, want 20", cfg.RateLimit.PerIP)
		}

		catalog := cfg.CatalogConfig()
		if !catalog.Enabled || !catalog.Complete() {
			t.Errorf("CatalogConfig() = %+v, want enabled and complete", catalog)
		}
		if catalog.Marketplace != "UK" {
			t.Errorf("CatalogConfig().Marketplace = %s, want UK", catalog.Marketplace)
		}
	})

	t.Run("missing credentials are not an error", func(t *testing.T) {
		t.Setenv("GIFTHUB_PAAPI_ENABLED", "true")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.CatalogConfig().Complete() {
			t.Error("CatalogConfig().Complete() = true, want false")
		}
	})

	t.Run("returns error for invalid cache type", func(t *testing.T) {
		t.Setenv("GIFTHUB_CACHE_TYPE", "redis")

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("returns error for badger without path", func(t *testing.T) {
		t.Setenv("GIFTHUB_CACHE_TYPE", "badger")

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for badger without path")
		}
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gifthub.yaml")
	content := `
server:
  base_url: https://gifts.example/
affiliate:
  domain: amazon.de
  associate_tag: gifthub-de-21
paapi:
  enabled: true
  marketplace: de
related:
  limit: 4
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v, want nil", err)
	}
	if cfg.Related.Limit != 4 {
		t.Errorf("Related.Limit = %d, want 4", cfg.Related.Limit)
	}
	if cfg.CatalogConfig().Marketplace != "DE" {
		t.Errorf("Marketplace = %s, want DE", cfg.CatalogConfig().Marketplace)
	}

	affiliate := cfg.AffiliateSettings()
	if got := affiliate.BuildDefaultProductURL("b0ab12cd34"); got != "https://amazon.de/dp/B0AB12CD34/?tag=gifthub-de-21" {
		t.Errorf("BuildDefaultProductURL = %s", got)
	}

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if err == nil {
			t.Error("LoadFile() error = nil, want error")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Cache:     CacheConfig{Type: "memory"},
			Store:     StoreConfig{Path: "gifthub.db"},
			RateLimit: RateLimitConfig{PerIP: 100},
			Related:   RelatedConfig{Limit: 8},
			PAAPI:     PAAPIConfig{RequestsPerSecond: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid memory config", func(*Config) {}, false},
		{"valid badger config", func(c *Config) { c.Cache = CacheConfig{Type: "badger", Path: "/tmp/cache"} }, false},
		{"unknown cache type", func(c *Config) { c.Cache.Type = "redis" }, true},
		{"badger without path", func(c *Config) { c.Cache.Type = "badger" }, true},
		{"empty store path", func(c *Config) { c.Store.Path = "" }, true},
		{"zero per-ip limit", func(c *Config) { c.RateLimit.PerIP = 0 }, true},
		{"negative related limit", func(c *Config) { c.Related.Limit = -1 }, true},
		{"zero request rate", func(c *Config) { c.PAAPI.RequestsPerSecond = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
