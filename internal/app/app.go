// Package app wires configuration, storage and use cases into one running engine.
package app

import (
	"errors"
	"fmt"

	"github.com/gifthub/engine/config"
	"github.com/gifthub/engine/internal/domain"
	"github.com/gifthub/engine/internal/infrastructure/cache"
	"github.com/gifthub/engine/internal/infrastructure/paapi"
	"github.com/gifthub/engine/internal/infrastructure/store"
	"github.com/gifthub/engine/internal/logging"
	"github.com/gifthub/engine/internal/usecase"
)

// App holds the long-lived components shared by the server and the sync CLI
type App struct {
	Config   *config.Config
	Store    *store.Store
	Cache    domain.CacheStore
	Catalog  *usecase.CatalogService
	Related  *usecase.RelatedService
	Pages    *usecase.PageService
	Warmer   *usecase.Warmer
	Importer *usecase.Importer

	closers []func() error
}

// New opens storage and builds every use case from cfg
func New(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	cacheStore, closeCache, err := openCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	a.Cache = cacheStore
	a.closers = append(a.closers, closeCache)

	pageStore, err := store.Open(cfg.Store.Path, cfg.Server.BaseURL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open page store: %w", err)
	}
	a.Store = pageStore
	a.closers = append(a.closers, pageStore.Close)

	catalogCfg := cfg.CatalogConfig()
	client := paapi.NewClient(paapi.ClientConfig{
		AccessKey:         catalogCfg.AccessKey,
		SecretKey:         catalogCfg.SecretKey,
		PartnerTag:        catalogCfg.PartnerTag,
		Timeout:           cfg.PAAPI.Timeout,
		RequestsPerSecond: cfg.PAAPI.RequestsPerSecond,
	})

	a.Catalog = usecase.NewCatalogService(cacheStore, client, catalogCfg)
	a.Related = usecase.NewRelatedService(cacheStore, pageStore, pageStore, usecase.RelatedConfig{
		CacheTTL: cfg.Cache.RelatedTTL,
	})
	a.Pages = usecase.NewPageService(pageStore, pageStore, a.Catalog, a.Related, usecase.PageServiceConfig{
		Affiliate:    cfg.AffiliateSettings(),
		BaseURL:      cfg.Server.BaseURL,
		RelatedLimit: cfg.Related.Limit,
	})
	a.Warmer = usecase.NewWarmer(a.Catalog)
	a.Importer = usecase.NewImporter(pageStore, pageStore, a.Related, a.Pages)

	switch {
	case !catalogCfg.Enabled:
		logging.Info().Msg("catalog enrichment disabled")
	case !catalogCfg.Complete():
		logging.Warn().Msg("catalog enrichment enabled but credentials are incomplete; lookups will return nothing")
	default:
		logging.Info().
			Str("marketplace", paapi.LookupMarketplace(catalogCfg.Marketplace).Code).
			Str("access_key", maskKey(catalogCfg.AccessKey)).
			Msg("catalog enrichment configured")
	}

	return a, nil
}

// Close releases storage in reverse order of opening
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openCache(cfg config.CacheConfig) (domain.CacheStore, func() error, error) {
	switch cfg.Type {
	case "badger":
		s, err := cache.OpenBadgerStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open badger cache: %w", err)
		}
		logging.Info().Str("path", cfg.Path).Msg("using badger cache")
		return s, s.Close, nil
	case "memory", "":
		m := cache.NewMemoryCache()
		logging.Info().Msg("using in-memory cache")
		return m, m.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown cache type %q", cfg.Type)
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
