package domain

import (
	"context"
	"time"
)

// CacheStore defines the interface for the process-wide key-value cache.
// Get returns ErrCacheMiss for absent or expired keys; any other error means
// the store itself is unavailable. A zero ttl stores the value without expiry.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogClient defines the interface for the live product catalog lookup
type CatalogClient interface {
	GetItem(ctx context.Context, identifier string, marketplace string) (*Enrichment, error)
}

// TermLookup answers taxonomy questions about gift pages
type TermLookup interface {
	// TermIDs returns the term ids assigned to a page in one taxonomy
	TermIDs(ctx context.Context, pageID int64, taxonomy string) ([]int64, error)
	// PageTerms returns every term assigned to a page in a recognized taxonomy
	PageTerms(ctx context.Context, pageID int64) ([]Term, error)
	// TermBySlug resolves a term by slug, then by name. Returns nil when absent.
	TermBySlug(ctx context.Context, taxonomy, slugOrName string) (*Term, error)
}

// PageStore is the read side of the content host
type PageStore interface {
	// FindPublishedByTerms returns published page ids that carry at least one of
	// the given term ids in any of the given taxonomies, excluding one page.
	FindPublishedByTerms(ctx context.Context, terms map[string][]int64, excludeID int64, limit int) ([]int64, error)
	// ListPublishedByTerm returns published pages with one term, title then id ascending
	ListPublishedByTerm(ctx context.Context, termID int64, limit int) ([]PageSummary, error)
	Summary(ctx context.Context, pageID int64) (*PageSummary, error)
	PageBySlug(ctx context.Context, slug string) (*Page, error)
	PageByID(ctx context.Context, pageID int64) (*Page, error)
}

// PageRepository is the write side of the content host used by the importer
type PageRepository interface {
	// UpsertPage inserts or updates a page keyed by slug and reports whether it was created
	UpsertPage(ctx context.Context, page *Page) (int64, bool, error)
	// SetTerms replaces the page's terms in one taxonomy, creating terms by name as needed
	SetTerms(ctx context.Context, pageID int64, taxonomy string, names []string) error
}

// RelatedInvalidator is the hook the content host calls on page saves and term changes
type RelatedInvalidator interface {
	InvalidatePage(ctx context.Context, pageID int64) error
	InvalidateOnTermsSet(ctx context.Context, pageID int64, taxonomy string) error
}
