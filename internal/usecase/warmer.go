package usecase

import (
	"context"
	"time"

	"github.com/gifthub/engine/internal/domain"
	"github.com/gifthub/engine/internal/logging"
	"github.com/gifthub/engine/internal/metrics"
	"github.com/rs/zerolog"
)

// Warm pass limits
const (
	DefaultWarmBatchSize = 5
	DefaultWarmDelayMs   = 500
	maxWarmBatchSize     = 10
	maxWarmDelayMs       = 5000
)

// EnrichmentLookup is the part of CatalogService the warmer and page assembly depend on
type EnrichmentLookup interface {
	Enabled() bool
	Lookup(ctx context.Context, identifier string) (domain.EnrichmentResult, error)
}

// Warmer pre-populates the catalog cache in throttled batches
type Warmer struct {
	catalog EnrichmentLookup
	sleep   func(ctx context.Context, d time.Duration)
	logger  zerolog.Logger
}

// NewWarmer creates a warmer backed by the given lookup
func NewWarmer(catalog EnrichmentLookup) *Warmer {
	return &Warmer{
		catalog: catalog,
		sleep:   sleepContext,
		logger:  logging.Component("warmer"),
	}
}

// SetSleeper replaces the inter-batch pause
func (w *Warmer) SetSleeper(sleep func(ctx context.Context, d time.Duration)) {
	w.sleep = sleep
}

// Warm looks up every distinct usable identifier once. Batch size is clamped
// to [1,10] and the delay to [0,5000] ms; the delay only runs between batches.
// Lookups that fail with an error are logged and counted as missing.
func (w *Warmer) Warm(ctx context.Context, identifiers []string, batchSize, delayMs int) domain.WarmSummary {
	var summary domain.WarmSummary
	if !w.catalog.Enabled() {
		return summary
	}

	ids := uniqueIdentifiers(identifiers)
	batchSize = min(max(batchSize, 1), maxWarmBatchSize)
	delay := time.Duration(min(max(delayMs, 0), maxWarmDelayMs)) * time.Millisecond

	for start := 0; start < len(ids); start += batchSize {
		if ctx.Err() != nil {
			w.logger.Warn().Err(ctx.Err()).Int("remaining", len(ids)-start).Msg("warm pass interrupted")
			break
		}

		end := min(start+batchSize, len(ids))
		for _, id := range ids[start:end] {
			if ctx.Err() != nil {
				break
			}
			summary.Attempted++
			result, err := w.catalog.Lookup(ctx, id)
			if err != nil {
				w.logger.Error().Err(err).Str("asin", id).Msg("warm lookup failed")
			}
			if result.Found() {
				summary.Warmed++
			} else {
				summary.Missing++
			}
		}
		metrics.WarmBatchesTotal.Inc()

		if end < len(ids) && delay > 0 {
			w.sleep(ctx, delay)
		}
	}

	w.logger.Info().
		Int("attempted", summary.Attempted).
		Int("warmed", summary.Warmed).
		Int("missing", summary.Missing).
		Msg("warm pass finished")

	return summary
}

// uniqueIdentifiers normalizes, drops unusable values and keeps first occurrences in order
func uniqueIdentifiers(identifiers []string) []string {
	seen := make(map[string]struct{}, len(identifiers))
	ids := make([]string, 0, len(identifiers))
	for _, raw := range identifiers {
		id := domain.NormalizeIdentifier(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
