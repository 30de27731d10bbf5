package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gifthub/engine/internal/domain"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	PAAPI     PAAPIConfig     `mapstructure:"paapi"`
	Affiliate AffiliateConfig `mapstructure:"affiliate"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Store     StoreConfig     `mapstructure:"store"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	Related   RelatedConfig   `mapstructure:"related"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	BaseURL        string   `mapstructure:"base_url"`
}

// PAAPIConfig holds product catalog API configuration.
// Missing credentials leave enrichment switched off rather than failing startup.
type PAAPIConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	AccessKey         string        `mapstructure:"access_key"`
	SecretKey         string        `mapstructure:"secret_key"`
	PartnerTag        string        `mapstructure:"partner_tag"`
	Marketplace       string        `mapstructure:"marketplace"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// AffiliateConfig holds storefront link defaults
type AffiliateConfig struct {
	Domain       string `mapstructure:"domain"`
	AssociateTag string `mapstructure:"associate_tag"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "memory" or "badger"
	Path       string        `mapstructure:"path"`
	RelatedTTL time.Duration `mapstructure:"related_ttl"`
}

// StoreConfig holds page database configuration
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RelatedConfig holds related-content configuration
type RelatedConfig struct {
	Limit int `mapstructure:"limit"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from an explicit file when path is set,
// otherwise from the default search paths
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/gifthub/")
	}

	// GIFTHUB_PAAPI_ACCESS_KEY -> paapi.access_key
	v.SetEnvPrefix("GIFTHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key gets a default so
// AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.base_url", "http://localhost:8080")

	// Catalog API defaults
	v.SetDefault("paapi.enabled", false)
	v.SetDefault("paapi.access_key", "")
	v.SetDefault("paapi.secret_key", "")
	v.SetDefault("paapi.partner_tag", "")
	v.SetDefault("paapi.marketplace", "US")
	v.SetDefault("paapi.timeout", "10s")
	v.SetDefault("paapi.requests_per_second", 1.0)

	// Affiliate defaults
	v.SetDefault("affiliate.domain", domain.DefaultAffiliateDomain)
	v.SetDefault("affiliate.associate_tag", "")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.related_ttl", "12h")

	// Store defaults
	v.SetDefault("store.path", "gifthub.db")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Related defaults
	v.SetDefault("related.limit", 8)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "badger" {
		return fmt.Errorf("cache type must be 'memory' or 'badger', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "badger" && config.Cache.Path == "" {
		return fmt.Errorf("cache path is required when cache type is 'badger'")
	}

	if config.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit per_ip must be positive, got: %d", config.RateLimit.PerIP)
	}

	if config.Related.Limit <= 0 {
		return fmt.Errorf("related limit must be positive, got: %d", config.Related.Limit)
	}

	if config.PAAPI.RequestsPerSecond <= 0 {
		return fmt.Errorf("paapi requests_per_second must be positive, got: %v", config.PAAPI.RequestsPerSecond)
	}

	return nil
}

// CatalogConfig projects the immutable enrichment settings
func (c *Config) CatalogConfig() domain.CatalogConfig {
	return domain.CatalogConfig{
		Enabled:     c.PAAPI.Enabled,
		AccessKey:   strings.TrimSpace(c.PAAPI.AccessKey),
		SecretKey:   strings.TrimSpace(c.PAAPI.SecretKey),
		PartnerTag:  strings.TrimSpace(c.PAAPI.PartnerTag),
		Marketplace: strings.ToUpper(strings.TrimSpace(c.PAAPI.Marketplace)),
	}
}

// AffiliateSettings projects the storefront link defaults
func (c *Config) AffiliateSettings() domain.AffiliateSettings {
	return domain.AffiliateSettings{
		Domain:       c.Affiliate.Domain,
		AssociateTag: c.Affiliate.AssociateTag,
	}
}
