package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gifthub/engine/internal/domain"
	"github.com/gifthub/engine/internal/logging"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Hub listing bounds
const (
	DefaultHubLimit = 24
	maxHubLimit     = 100
)

// RelatedPager is the part of RelatedService page assembly depends on
type RelatedPager interface {
	RelatedPages(ctx context.Context, pageID int64, limit int) ([]int64, error)
}

// PageServiceConfig holds presentation settings for page assembly
type PageServiceConfig struct {
	Affiliate    domain.AffiliateSettings
	BaseURL      string
	RelatedLimit int
}

// PageService assembles everything a template needs to render a gift page
type PageService struct {
	pages        domain.PageStore
	terms        domain.TermLookup
	catalog      EnrichmentLookup
	related      RelatedPager
	affiliate    domain.AffiliateSettings
	baseURL      string
	relatedLimit int
	logger       zerolog.Logger
}

// NewPageService creates a page assembler
func NewPageService(
	pages domain.PageStore,
	terms domain.TermLookup,
	catalog EnrichmentLookup,
	related RelatedPager,
	config PageServiceConfig,
) *PageService {
	relatedLimit := config.RelatedLimit
	if relatedLimit <= 0 {
		relatedLimit = DefaultRelatedLimit
	}

	return &PageService{
		pages:        pages,
		terms:        terms,
		catalog:      catalog,
		related:      related,
		affiliate:    config.Affiliate,
		baseURL:      strings.TrimRight(config.BaseURL, "/"),
		relatedLimit: relatedLimit,
		logger:       logging.Component("pages"),
	}
}

// BuildView assembles the view of a published page by slug
func (s *PageService) BuildView(ctx context.Context, slug string) (*domain.PageView, error) {
	page, err := s.pages.PageBySlug(ctx, domain.Slugify(slug))
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, page)
}

// BuildViewByID assembles the view of a page by id
func (s *PageService) BuildViewByID(ctx context.Context, pageID int64) (*domain.PageView, error) {
	page, err := s.pages.PageByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, page)
}

func (s *PageService) assemble(ctx context.Context, page *domain.Page) (*domain.PageView, error) {
	if page.Status != domain.PageStatusPublished {
		return nil, domain.ErrPageNotFound
	}

	summary, err := s.pages.Summary(ctx, page.ID)
	if err != nil {
		return nil, err
	}

	view := &domain.PageView{
		ID:        page.ID,
		Slug:      page.Slug,
		Title:     page.Title,
		Permalink: summary.Permalink,
		Intro:     page.Intro,
		Sections:  nonEmptyTexts(page.SectionHeadings),
		FAQ:       cleanFAQ(page.FAQ),
	}

	if view.FAQSchema, err = faqSchema(view.FAQ); err != nil {
		return nil, err
	}

	if view.TermLinks, err = s.termLinks(ctx, page.ID); err != nil {
		return nil, err
	}

	view.TopPicks = s.TopPicks(ctx, page)
	view.TopPicksCount = len(view.TopPicks)
	if view.TopPicksCount == 0 {
		view.TopPicksCount = max(1, page.TopPicksCount)
	}

	view.Related = s.relatedSummaries(ctx, page.ID, s.relatedLimit)
	return view, nil
}

// TopPicks merges catalog enrichment into a page's dataset product slots.
// Slots without a usable identifier are dropped.
func (s *PageService) TopPicks(ctx context.Context, page *domain.Page) []domain.ProductView {
	picks := make([]domain.ProductView, 0, len(page.TopPicks))
	for _, ref := range page.TopPicks {
		id := domain.NormalizeIdentifier(ref.ASIN)
		if id == "" {
			continue
		}

		product := domain.ProductView{
			ASIN:     id,
			Label:    sanitizeText(ref.Label),
			Notes:    sanitizeMultiline(ref.Notes),
			URL:      sanitizeURL(ref.URL),
			ImageURL: sanitizeURL(ref.ImageURL),
			Source:   domain.SourceNone,
		}
		if product.URL == "" {
			product.URL = s.affiliate.BuildDefaultProductURL(id)
		}
		if !isAllowedCustomImageURL(product.ImageURL) {
			product.ImageURL = ""
		}

		result, err := s.catalog.Lookup(ctx, id)
		if err != nil {
			s.logger.Error().Err(err).Str("asin", id).Int64("page_id", page.ID).Msg("enrichment unavailable")
		}
		if result.Found() {
			if result.Enrichment.Title != "" {
				product.Label = result.Enrichment.Title
			}
			if result.Enrichment.ImageURL != "" {
				product.ImageURL = result.Enrichment.ImageURL
			}
			if result.Enrichment.URL != "" {
				product.URL = result.Enrichment.URL
			}
			product.Source = result.Source
		}

		picks = append(picks, product)
	}
	return picks
}

// TopPick returns one enriched product slot by 1-based index; indexes below 1 select the first pick
func (s *PageService) TopPick(ctx context.Context, slug string, index int) (*domain.ProductView, error) {
	page, err := s.pages.PageBySlug(ctx, domain.Slugify(slug))
	if err != nil {
		return nil, err
	}
	if page.Status != domain.PageStatusPublished {
		return nil, domain.ErrPageNotFound
	}

	picks := s.TopPicks(ctx, page)
	idx := max(1, index) - 1
	if idx >= len(picks) {
		return nil, fmt.Errorf("%w: no top pick at index %d", domain.ErrItemNotFound, index)
	}
	return &picks[idx], nil
}

// Related returns summaries of the ranked related pages
func (s *PageService) Related(ctx context.Context, slug string, limit int) ([]domain.PageSummary, error) {
	page, err := s.pages.PageBySlug(ctx, domain.Slugify(slug))
	if err != nil {
		return nil, err
	}
	ids, err := s.related.RelatedPages(ctx, page.ID, limit)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, ids)
}

// HubList returns published pages with a term, title then id ascending.
// An unknown taxonomy or term yields an empty list.
func (s *PageService) HubList(ctx context.Context, taxonomy, term string, limit int) ([]domain.PageSummary, error) {
	if limit <= 0 {
		limit = DefaultHubLimit
	}
	limit = min(limit, maxHubLimit)

	taxonomy = strings.ToLower(strings.TrimSpace(taxonomy))
	term = strings.TrimSpace(term)
	if !domain.IsRecognizedTaxonomy(taxonomy) || term == "" {
		return []domain.PageSummary{}, nil
	}

	found, err := s.terms.TermBySlug(ctx, taxonomy, term)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return []domain.PageSummary{}, nil
	}
	return s.pages.ListPublishedByTerm(ctx, found.ID, limit)
}

func (s *PageService) relatedSummaries(ctx context.Context, pageID int64, limit int) []domain.PageSummary {
	ids, err := s.related.RelatedPages(ctx, pageID, limit)
	if err != nil {
		s.logger.Warn().Err(err).Int64("page_id", pageID).Msg("related pages unavailable")
		return []domain.PageSummary{}
	}

	summaries, err := s.summaries(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Int64("page_id", pageID).Msg("related summaries unavailable")
		return []domain.PageSummary{}
	}
	return summaries
}

func (s *PageService) summaries(ctx context.Context, ids []int64) ([]domain.PageSummary, error) {
	out := make([]domain.PageSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := s.pages.Summary(ctx, id)
		if errors.Is(err, domain.ErrPageNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *summary)
	}
	return out, nil
}

// termLinks builds "explore more" links ordered by taxonomy:id key
func (s *PageService) termLinks(ctx context.Context, pageID int64) ([]domain.TermLink, error) {
	terms, err := s.terms.PageTerms(ctx, pageID)
	if err != nil {
		return nil, err
	}

	titler := cases.Title(language.English)
	links := make([]domain.TermLink, 0, len(terms))
	for _, t := range terms {
		if !domain.IsRecognizedTaxonomy(t.Taxonomy) {
			continue
		}
		links = append(links, domain.TermLink{
			Key:   fmt.Sprintf("%s:%d", t.Taxonomy, t.ID),
			Label: titler.String(t.Taxonomy) + ": " + t.Name,
			URL:   s.baseURL + "/" + t.Taxonomy + "/" + t.Slug + "/",
		})
	}

	slices.SortFunc(links, func(a, b domain.TermLink) int {
		return strings.Compare(a.Key, b.Key)
	})
	return links, nil
}

type faqAnswer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

type faqQuestion struct {
	Type           string    `json:"@type"`
	Name           string    `json:"name"`
	AcceptedAnswer faqAnswer `json:"acceptedAnswer"`
}

type faqPage struct {
	Context    string        `json:"@context"`
	Type       string        `json:"@type"`
	MainEntity []faqQuestion `json:"mainEntity"`
}

// faqSchema renders FAQPage JSON-LD, or "" when there are no questions
func faqSchema(items []domain.FAQItem) (string, error) {
	if len(items) == 0 {
		return "", nil
	}

	schema := faqPage{
		Context:    "https://schema.org",
		Type:       "FAQPage",
		MainEntity: make([]faqQuestion, 0, len(items)),
	}
	for _, item := range items {
		schema.MainEntity = append(schema.MainEntity, faqQuestion{
			Type:           "Question",
			Name:           item.Question,
			AcceptedAnswer: faqAnswer{Type: "Answer", Text: item.Answer},
		})
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("encode faq schema: %w", err)
	}
	return string(raw), nil
}

// cleanFAQ keeps only items with both a question and an answer
func cleanFAQ(items []domain.FAQItem) []domain.FAQItem {
	out := make([]domain.FAQItem, 0, len(items))
	for _, item := range items {
		q := sanitizeText(item.Question)
		a := sanitizeText(item.Answer)
		if q == "" || a == "" {
			continue
		}
		out = append(out, domain.FAQItem{Question: q, Answer: a})
	}
	return out
}

func nonEmptyTexts(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = sanitizeText(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
