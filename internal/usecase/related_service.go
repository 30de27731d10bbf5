package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gifthub/engine/internal/domain"
	"github.com/gifthub/engine/internal/logging"
	"github.com/gifthub/engine/internal/metrics"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Related-list defaults
const (
	DefaultRelatedLimit        = 8
	defaultRelatedCacheTTL     = 12 * time.Hour
	defaultRelatedCandidateCap = 64
	relatedKeyPrefix           = "related:"
)

// RelatedConfig holds configuration for the related-page ranker
type RelatedConfig struct {
	Weights      []domain.TaxonomyWeight
	CacheTTL     time.Duration
	CandidateCap int
}

// RelatedService ranks other published pages by weighted taxonomy overlap
type RelatedService struct {
	cache        domain.CacheStore
	terms        domain.TermLookup
	pages        domain.PageStore
	weights      []domain.TaxonomyWeight
	cacheTTL     time.Duration
	candidateCap int
	logger       zerolog.Logger
}

type scoredPage struct {
	id    int64
	title string
	score int
}

// NewRelatedService creates a ranker. Weights for unrecognized taxonomies are dropped.
func NewRelatedService(
	cache domain.CacheStore,
	terms domain.TermLookup,
	pages domain.PageStore,
	config RelatedConfig,
) *RelatedService {
	weights := config.Weights
	if len(weights) == 0 {
		weights = domain.DefaultTaxonomyWeights
	}
	weights = slices.DeleteFunc(slices.Clone(weights), func(w domain.TaxonomyWeight) bool {
		return !domain.IsRecognizedTaxonomy(w.Taxonomy)
	})

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultRelatedCacheTTL
	}

	candidateCap := config.CandidateCap
	if candidateCap <= 0 {
		candidateCap = defaultRelatedCandidateCap
	}

	return &RelatedService{
		cache:        cache,
		terms:        terms,
		pages:        pages,
		weights:      weights,
		cacheTTL:     cacheTTL,
		candidateCap: candidateCap,
		logger:       logging.Component("related"),
	}
}

// RelatedPages returns up to limit page ids ordered by score descending, then
// title ascending, then id ascending. A non-positive limit means DefaultRelatedLimit.
// Cached lists are served as stored, truncated to limit.
func (s *RelatedService) RelatedPages(ctx context.Context, pageID int64, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	key := relatedCacheKey(pageID)

	if cached, ok := s.loadList(ctx, key); ok {
		metrics.RelatedListsTotal.WithLabelValues("cache_hit").Inc()
		return cached[:min(limit, len(cached))], nil
	}

	ids, err := s.compute(ctx, pageID, limit)
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		metrics.RelatedListsTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.RelatedListsTotal.WithLabelValues("computed").Inc()
	}
	s.storeList(ctx, key, ids)
	return ids, nil
}

func (s *RelatedService) compute(ctx context.Context, pageID int64, limit int) ([]int64, error) {
	sourceTerms := make(map[string][]int64, len(s.weights))
	for _, w := range s.weights {
		ids, err := s.terms.TermIDs(ctx, pageID, w.Taxonomy)
		if err != nil {
			return nil, fmt.Errorf("load %s terms for page %d: %w", w.Taxonomy, pageID, err)
		}
		if ids = uniqueIDs(ids); len(ids) > 0 {
			sourceTerms[w.Taxonomy] = ids
		}
	}
	if len(sourceTerms) == 0 {
		return []int64{}, nil
	}

	candidates, err := s.pages.FindPublishedByTerms(ctx, sourceTerms, pageID, s.candidateCap)
	if err != nil {
		return nil, fmt.Errorf("find candidates for page %d: %w", pageID, err)
	}

	scored := make([]scoredPage, 0, len(candidates))
	for _, candidateID := range candidates {
		if candidateID == pageID {
			continue
		}

		score, err := s.score(ctx, candidateID, sourceTerms)
		if err != nil {
			return nil, err
		}

		summary, err := s.pages.Summary(ctx, candidateID)
		if errors.Is(err, domain.ErrPageNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load candidate %d: %w", candidateID, err)
		}

		scored = append(scored, scoredPage{id: candidateID, title: summary.Title, score: score})
	}

	slices.SortFunc(scored, func(a, b scoredPage) int {
		return cmp.Or(
			cmp.Compare(b.score, a.score),
			strings.Compare(a.title, b.title),
			cmp.Compare(a.id, b.id),
		)
	})

	ids := make([]int64, 0, min(limit, len(scored)))
	for _, p := range scored[:min(limit, len(scored))] {
		ids = append(ids, p.id)
	}
	return ids, nil
}

// score adds weight + overlap for every taxonomy the candidate shares with the source
func (s *RelatedService) score(ctx context.Context, candidateID int64, sourceTerms map[string][]int64) (int, error) {
	total := 0
	for _, w := range s.weights {
		source := sourceTerms[w.Taxonomy]
		if len(source) == 0 {
			continue
		}

		candidateTerms, err := s.terms.TermIDs(ctx, candidateID, w.Taxonomy)
		if err != nil {
			return 0, fmt.Errorf("load %s terms for page %d: %w", w.Taxonomy, candidateID, err)
		}

		overlap := 0
		for _, id := range uniqueIDs(candidateTerms) {
			if slices.Contains(source, id) {
				overlap++
			}
		}
		if overlap > 0 {
			total += w.Weight + overlap
		}
	}
	return total, nil
}

// InvalidatePage drops the cached related list of one page
func (s *RelatedService) InvalidatePage(ctx context.Context, pageID int64) error {
	metrics.RelatedInvalidationsTotal.Inc()
	if err := s.cache.Delete(ctx, relatedCacheKey(pageID)); err != nil {
		return fmt.Errorf("invalidate related list for page %d: %w", pageID, err)
	}
	return nil
}

// InvalidateOnTermsSet invalidates a page when terms change in a recognized taxonomy
func (s *RelatedService) InvalidateOnTermsSet(ctx context.Context, pageID int64, taxonomy string) error {
	if !domain.IsRecognizedTaxonomy(taxonomy) {
		return nil
	}
	return s.InvalidatePage(ctx, pageID)
}

func (s *RelatedService) loadList(ctx context.Context, key string) ([]int64, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("related cache read failed")
		}
		return nil, false
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable related list")
		return nil, false
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, true
}

func (s *RelatedService) storeList(ctx context.Context, key string, ids []int64) {
	raw, err := json.Marshal(ids)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to encode related list")
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("related cache write failed")
	}
}

func relatedCacheKey(pageID int64) string {
	return relatedKeyPrefix + strconv.FormatInt(pageID, 10)
}

func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
