package domain

import (
	"regexp"
	"strings"
	"time"
)

var nonIdentifierRegex = regexp.MustCompile(`[^A-Za-z0-9]`)

// NormalizeIdentifier strips every character outside [A-Za-z0-9] and
// uppercases the rest. An empty result means the identifier is unusable.
func NormalizeIdentifier(id string) string {
	return strings.ToUpper(nonIdentifierRegex.ReplaceAllString(id, ""))
}

// Enrichment is the live catalog data that overrides dataset placeholders
type Enrichment struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	URL      string `json:"url"`
}

// IsEmpty reports whether no field carries data
func (e Enrichment) IsEmpty() bool {
	return e.Title == "" && e.ImageURL == "" && e.URL == ""
}

// EnrichmentSource describes where a lookup result came from
type EnrichmentSource string

const (
	SourceNone  EnrichmentSource = "none"
	SourceCache EnrichmentSource = "cache"
	SourceLive  EnrichmentSource = "live"
	SourceStale EnrichmentSource = "stale"
)

// EnrichmentResult is the outcome of a catalog lookup. Source is SourceNone
// when enrichment is not available for any reason.
type EnrichmentResult struct {
	Enrichment Enrichment       `json:"enrichment"`
	Source     EnrichmentSource `json:"source"`
}

// NotAvailable is the absent lookup result
func NotAvailable() EnrichmentResult {
	return EnrichmentResult{Source: SourceNone}
}

// Found reports whether the result carries enrichment
func (r EnrichmentResult) Found() bool {
	return r.Source != SourceNone && r.Source != ""
}

// CatalogCacheEntry is the persisted lookup state for one (marketplace, identifier) pair.
// Timestamps are unix seconds; zero means unset.
type CatalogCacheEntry struct {
	Data         *Enrichment `json:"data,omitempty"`
	ExpiresAt    int64       `json:"expires_at"`
	BackoffUntil int64       `json:"backoff_until"`
	ErrorCount   int         `json:"error_count"`
	UpdatedAt    int64       `json:"updated_at"`
}

// HasData reports whether the entry holds a usable payload
func (e *CatalogCacheEntry) HasData() bool {
	return e != nil && e.Data != nil && !e.Data.IsEmpty()
}

// IsFresh reports whether the payload is usable without a live request
func (e *CatalogCacheEntry) IsFresh(now time.Time) bool {
	return e.HasData() && e.ExpiresAt > now.Unix()
}

// InBackoff reports whether live requests are currently suppressed
func (e *CatalogCacheEntry) InBackoff(now time.Time) bool {
	return e != nil && e.BackoffUntil > now.Unix()
}

// CatalogConfig is the immutable enrichment configuration injected at construction
type CatalogConfig struct {
	Enabled     bool
	AccessKey   string
	SecretKey   string
	PartnerTag  string
	Marketplace string
}

// Complete reports whether every credential needed for a signed request is present
func (c CatalogConfig) Complete() bool {
	return c.AccessKey != "" && c.SecretKey != "" && c.PartnerTag != ""
}

// WarmSummary reports the outcome of a batch warm pass
type WarmSummary struct {
	Attempted int `json:"attempted"`
	Warmed    int `json:"warmed"`
	Missing   int `json:"missing"`
}
