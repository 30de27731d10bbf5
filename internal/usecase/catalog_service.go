package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gifthub/engine/internal/domain"
	"github.com/gifthub/engine/internal/infrastructure/paapi"
	"github.com/gifthub/engine/internal/logging"
	"github.com/gifthub/engine/internal/metrics"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Catalog cache policy
const (
	CatalogCacheTTL    = 7 * 24 * time.Hour
	backoffBase        = 60 * time.Second
	backoffCap         = 24 * time.Hour
	maxBackoffExponent = 10
	catalogKeyPrefix   = "paapi:"
)

// CatalogService serves product enrichment with caching and failure backoff.
// Flow: normalize -> cache (fresh or backoff) -> live request -> cache -> return
type CatalogService struct {
	cache       domain.CacheStore
	client      domain.CatalogClient
	config      domain.CatalogConfig
	marketplace string
	now         func() time.Time
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalog service with dependencies
func NewCatalogService(
	cache domain.CacheStore,
	client domain.CatalogClient,
	config domain.CatalogConfig,
) *CatalogService {
	return &CatalogService{
		cache:       cache,
		client:      client,
		config:      config,
		marketplace: paapi.LookupMarketplace(config.Marketplace).Code,
		now:         time.Now,
		logger:      logging.Component("catalog"),
	}
}

// SetClock replaces the time source
func (s *CatalogService) SetClock(now func() time.Time) {
	s.now = now
}

// Enabled reports whether enrichment is administratively switched on
func (s *CatalogService) Enabled() bool {
	return s.config.Enabled
}

// CatalogCacheKey builds the cache key for one (marketplace, identifier) pair
func CatalogCacheKey(marketplace, identifier string) string {
	return strings.ToLower(marketplace) + ":" + identifier
}

// BackoffDuration is 60s doubled per consecutive failure, exponent capped at 10, total capped at 24h
func BackoffDuration(errorCount int) time.Duration {
	n := min(max(errorCount, 0), maxBackoffExponent)
	return min(backoffCap, backoffBase*time.Duration(1<<n))
}

// Lookup returns enrichment for a product identifier. Ordinary failures
// (disabled, incomplete credentials, provider errors, cache outages) produce
// a NotAvailable or stale result with a nil error; only request signing
// failures are returned as errors.
func (s *CatalogService) Lookup(ctx context.Context, identifier string) (domain.EnrichmentResult, error) {
	id := domain.NormalizeIdentifier(identifier)
	if id == "" || !s.config.Enabled || !s.config.Complete() {
		metrics.CatalogLookupsTotal.WithLabelValues("disabled").Inc()
		return domain.NotAvailable(), nil
	}

	key := catalogKeyPrefix + CatalogCacheKey(s.marketplace, id)
	now := s.now()

	entry := s.loadEntry(ctx, key)
	if entry.IsFresh(now) {
		metrics.CatalogLookupsTotal.WithLabelValues("cache_hit").Inc()
		return domain.EnrichmentResult{Enrichment: sanitizeEnrichment(*entry.Data), Source: domain.SourceCache}, nil
	}
	if entry.InBackoff(now) {
		metrics.CatalogLookupsTotal.WithLabelValues("backoff").Inc()
		return domain.NotAvailable(), nil
	}

	fresh, err := s.client.GetItem(ctx, id, s.marketplace)
	if errors.Is(err, domain.ErrInvalidSigningInput) {
		s.logger.Error().Err(err).Str("asin", id).Msg("catalog request could not be signed")
		return domain.NotAvailable(), err
	}

	if err == nil && fresh != nil {
		clean := sanitizeEnrichment(*fresh)
		if !clean.IsEmpty() {
			s.saveEntry(ctx, key, &domain.CatalogCacheEntry{
				Data:         &clean,
				ExpiresAt:    now.Add(CatalogCacheTTL).Unix(),
				BackoffUntil: 0,
				ErrorCount:   0,
				UpdatedAt:    now.Unix(),
			})
			metrics.CatalogLookupsTotal.WithLabelValues("live").Inc()
			return domain.EnrichmentResult{Enrichment: clean, Source: domain.SourceLive}, nil
		}
	}

	// A cancelled caller is not a provider failure; nothing is persisted.
	if ctx.Err() != nil {
		s.logger.Debug().Err(ctx.Err()).Str("asin", id).Msg("catalog lookup cancelled")
		metrics.CatalogLookupsTotal.WithLabelValues("cancelled").Inc()
		if entry.HasData() {
			return domain.EnrichmentResult{Enrichment: sanitizeEnrichment(*entry.Data), Source: domain.SourceStale}, nil
		}
		return domain.NotAvailable(), nil
	}

	return s.recordFailure(ctx, key, id, entry, now, err), nil
}

// recordFailure extends the backoff window and serves any previously cached payload
func (s *CatalogService) recordFailure(
	ctx context.Context,
	key, id string,
	existing *domain.CatalogCacheEntry,
	now time.Time,
	cause error,
) domain.EnrichmentResult {
	errorCount := 1
	if existing != nil {
		errorCount = max(1, existing.ErrorCount+1)
	}

	updated := &domain.CatalogCacheEntry{
		BackoffUntil: now.Add(BackoffDuration(errorCount)).Unix(),
		ErrorCount:   errorCount,
		UpdatedAt:    now.Unix(),
	}
	if existing != nil {
		updated.Data = existing.Data
		updated.ExpiresAt = existing.ExpiresAt
	}
	s.saveEntry(ctx, key, updated)

	s.logger.Warn().Err(cause).Str("asin", id).Int("error_count", errorCount).
		Time("backoff_until", time.Unix(updated.BackoffUntil, 0)).Msg("catalog lookup failed")

	if updated.HasData() {
		metrics.CatalogLookupsTotal.WithLabelValues("stale").Inc()
		return domain.EnrichmentResult{Enrichment: sanitizeEnrichment(*updated.Data), Source: domain.SourceStale}
	}

	metrics.CatalogLookupsTotal.WithLabelValues("miss").Inc()
	return domain.NotAvailable()
}

// loadEntry returns nil on a miss; an unreadable store or entry is treated as a miss
func (s *CatalogService) loadEntry(ctx context.Context, key string) *domain.CatalogCacheEntry {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
		return nil
	}

	var entry domain.CatalogCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable catalog cache entry")
		return nil
	}
	return &entry
}

// saveEntry writes the whole entry under one key so expiry and backoff never tear
func (s *CatalogService) saveEntry(ctx context.Context, key string, entry *domain.CatalogCacheEntry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to encode catalog cache entry")
		return
	}
	if err := s.cache.Set(ctx, key, raw, 0); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}
