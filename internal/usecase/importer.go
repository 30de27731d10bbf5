package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/gifthub/engine/internal/domain"
	"github.com/gifthub/engine/internal/logging"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const defaultTopPicksCount = 6

var errMissingSlugTitle = errors.New("missing slug/title in dataset page row")

// ViewBuilder renders a page view; the importer uses it to validate imported pages
type ViewBuilder interface {
	BuildViewByID(ctx context.Context, pageID int64) (*domain.PageView, error)
}

// Importer creates or updates gift pages from a JSON dataset
type Importer struct {
	repo      domain.PageRepository
	pages     domain.PageStore
	hooks     domain.RelatedInvalidator
	validator ViewBuilder
	logger    zerolog.Logger
}

type dataset struct {
	Pages []json.RawMessage `json:"pages"`
}

type datasetPage struct {
	Slug            string            `json:"slug"`
	Title           string            `json:"title"`
	Intro           string            `json:"intro"`
	SectionHeadings []string          `json:"section_headings"`
	FAQ             []json.RawMessage `json:"faq"`
	TopPicksCount   *int              `json:"top_picks_count"`
	TopPicks        []json.RawMessage `json:"top_picks"`
	Audience        []string          `json:"audience"`
	Occasion        []string          `json:"occasion"`
	Budget          []string          `json:"budget"`
	Interest        []string          `json:"interest"`
}

func (p *datasetPage) termNames(taxonomy string) []string {
	switch taxonomy {
	case domain.TaxonomyAudience:
		return p.Audience
	case domain.TaxonomyOccasion:
		return p.Occasion
	case domain.TaxonomyBudget:
		return p.Budget
	case domain.TaxonomyInterest:
		return p.Interest
	}
	return nil
}

// NewImporter creates a dataset importer
func NewImporter(
	repo domain.PageRepository,
	pages domain.PageStore,
	hooks domain.RelatedInvalidator,
	validator ViewBuilder,
) *Importer {
	return &Importer{
		repo:      repo,
		pages:     pages,
		hooks:     hooks,
		validator: validator,
		logger:    logging.Component("importer"),
	}
}

// Sync imports the dataset file at path
func (i *Importer) Sync(ctx context.Context, path string) (*domain.SyncReport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatasetInvalid, err)
	}
	return i.SyncBytes(ctx, raw)
}

// SyncBytes imports a JSON dataset. Rows that are not objects or lack a slug
// or title are skipped; every imported page is then validated by rendering it.
func (i *Importer) SyncBytes(ctx context.Context, raw []byte) (*domain.SyncReport, error) {
	var data dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatasetInvalid, err)
	}

	report := &domain.SyncReport{Errors: []string{}, PageIDs: []int64{}}
	if len(data.Pages) == 0 {
		report.Errors = append(report.Errors, "dataset is empty or missing pages")
		return report, nil
	}

	for n, row := range data.Pages {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var page datasetPage
		if err := json.Unmarshal(row, &page); err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d is not a page object", n))
			continue
		}

		id, created, err := i.upsert(ctx, &page)
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, err.Error())
			i.logger.Warn().Err(err).Int("row", n).Msg("dataset row skipped")
			continue
		}

		if created {
			report.Created++
		} else {
			report.Updated++
		}
		if !slices.Contains(report.PageIDs, id) {
			report.PageIDs = append(report.PageIDs, id)
		}
	}

	for _, id := range report.PageIDs {
		report.Validated++
		view, err := i.validator.BuildViewByID(ctx, id)
		if err != nil || view == nil || view.Title == "" {
			report.ValidationFailures++
			i.logger.Warn().Err(err).Int64("page_id", id).Msg("page failed render validation")
		}
	}

	i.logger.Info().
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Int("validation_failures", report.ValidationFailures).
		Msg("dataset sync finished")

	return report, nil
}

func (i *Importer) upsert(ctx context.Context, row *datasetPage) (int64, bool, error) {
	slug := domain.Slugify(row.Slug)
	title := sanitizeText(row.Title)
	if slug == "" || title == "" {
		return 0, false, errMissingSlugTitle
	}

	topPicksCount := defaultTopPicksCount
	if row.TopPicksCount != nil {
		topPicksCount = max(1, *row.TopPicksCount)
	}

	page := &domain.Page{
		Slug:            slug,
		Title:           title,
		Intro:           sanitizeMultiline(row.Intro),
		Status:          domain.PageStatusPublished,
		SectionHeadings: nonEmptyTexts(row.SectionHeadings),
		FAQ:             cleanFAQ(decodeObjects[domain.FAQItem](row.FAQ)),
		TopPicksCount:   topPicksCount,
		TopPicks:        cleanProductReferences(decodeObjects[domain.ProductReference](row.TopPicks)),
	}

	id, created, err := i.repo.UpsertPage(ctx, page)
	if err != nil {
		return 0, false, fmt.Errorf("save page %q: %w", slug, err)
	}
	if err := i.hooks.InvalidatePage(ctx, id); err != nil {
		i.logger.Warn().Err(err).Int64("page_id", id).Msg("related invalidation failed")
	}

	for _, taxonomy := range domain.Taxonomies {
		names := nonEmptyTexts(row.termNames(taxonomy))
		if len(names) == 0 {
			continue
		}
		if err := i.repo.SetTerms(ctx, id, taxonomy, names); err != nil {
			return 0, false, fmt.Errorf("set %s terms on %q: %w", taxonomy, slug, err)
		}
		if err := i.hooks.InvalidateOnTermsSet(ctx, id, taxonomy); err != nil {
			i.logger.Warn().Err(err).Int64("page_id", id).Str("taxonomy", taxonomy).Msg("related invalidation failed")
		}
	}

	return id, created, nil
}

// CollectIdentifiers gathers the distinct normalized top-pick identifiers of the given pages, in page order
func (i *Importer) CollectIdentifiers(ctx context.Context, pageIDs []int64) []string {
	var raw []string
	for _, id := range pageIDs {
		page, err := i.pages.PageByID(ctx, id)
		if err != nil {
			i.logger.Warn().Err(err).Int64("page_id", id).Msg("cannot collect identifiers")
			continue
		}
		for _, ref := range page.TopPicks {
			raw = append(raw, ref.ASIN)
		}
	}
	return uniqueIdentifiers(raw)
}

// decodeObjects keeps the rows that decode into T and drops the rest
func decodeObjects[T any](rows []json.RawMessage) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var v T
		if err := json.Unmarshal(row, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func cleanProductReferences(refs []domain.ProductReference) []domain.ProductReference {
	out := make([]domain.ProductReference, 0, len(refs))
	for _, ref := range refs {
		id := domain.NormalizeIdentifier(ref.ASIN)
		if id == "" {
			continue
		}
		out = append(out, domain.ProductReference{
			ASIN:     id,
			Label:    sanitizeText(ref.Label),
			Notes:    sanitizeMultiline(ref.Notes),
			URL:      sanitizeURL(ref.URL),
			ImageURL: sanitizeURL(ref.ImageURL),
		})
	}
	return out
}
