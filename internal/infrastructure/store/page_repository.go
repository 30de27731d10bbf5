package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gifthub/engine/internal/domain"
	"github.com/goccy/go-json"
)

const pageColumns = `id, slug, title, intro, status, section_headings, faq, top_picks_count, top_picks, created_at, updated_at`

// UpsertPage inserts or updates a page keyed by slug
func (s *Store) UpsertPage(ctx context.Context, page *domain.Page) (int64, bool, error) {
	headings, err := json.Marshal(nonNil(page.SectionHeadings))
	if err != nil {
		return 0, false, fmt.Errorf("failed to encode section headings: %w", err)
	}
	faq, err := json.Marshal(nonNil(page.FAQ))
	if err != nil {
		return 0, false, fmt.Errorf("failed to encode faq: %w", err)
	}
	picks, err := json.Marshal(nonNil(page.TopPicks))
	if err != nil {
		return 0, false, fmt.Errorf("failed to encode top picks: %w", err)
	}

	status := page.Status
	if status == "" {
		status = domain.PageStatusPublished
	}
	now := s.now().Unix()

	var id int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM pages WHERE slug = ?`, page.Slug).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO pages (slug, title, intro, status, section_headings, faq, top_picks_count, top_picks, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, page.Slug, page.Title, page.Intro, status, string(headings), string(faq), page.TopPicksCount, string(picks), now, now)
		if err != nil {
			return 0, false, fmt.Errorf("failed to insert page: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("failed to read page id: %w", err)
		}
		return id, true, nil

	case err != nil:
		return 0, false, fmt.Errorf("failed to check existing page: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE pages
		SET title = ?, intro = ?, status = ?, section_headings = ?, faq = ?, top_picks_count = ?, top_picks = ?, updated_at = ?
		WHERE id = ?
	`, page.Title, page.Intro, status, string(headings), string(faq), page.TopPicksCount, string(picks), now, id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to update page: %w", err)
	}
	return id, false, nil
}

// PageBySlug returns a page by slug regardless of status
func (s *Store) PageBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE slug = ?`, slug)
	return scanPage(row)
}

// PageByID returns a page by id regardless of status
func (s *Store) PageByID(ctx context.Context, pageID int64) (*domain.Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, pageID)
	return scanPage(row)
}

// Summary returns the title and permalink of a page
func (s *Store) Summary(ctx context.Context, pageID int64) (*domain.PageSummary, error) {
	var summary domain.PageSummary
	var slug string
	err := s.db.QueryRowContext(ctx, `SELECT id, title, slug FROM pages WHERE id = ?`, pageID).
		Scan(&summary.ID, &summary.Title, &slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load page summary: %w", err)
	}
	summary.Permalink = s.Permalink(slug)
	return &summary, nil
}

// FindPublishedByTerms returns published pages sharing any listed term, newest first
func (s *Store) FindPublishedByTerms(ctx context.Context, terms map[string][]int64, excludeID int64, limit int) ([]int64, error) {
	taxonomies := make([]string, 0, len(terms))
	for taxonomy, ids := range terms {
		if len(ids) > 0 {
			taxonomies = append(taxonomies, taxonomy)
		}
	}
	if len(taxonomies) == 0 || limit <= 0 {
		return []int64{}, nil
	}
	slices.Sort(taxonomies)

	var clauses []string
	args := []any{domain.PageStatusPublished, excludeID}
	for _, taxonomy := range taxonomies {
		ids := terms[taxonomy]
		clauses = append(clauses, "(t.taxonomy = ? AND t.id IN ("+placeholders(len(ids))+"))")
		args = append(args, taxonomy)
		for _, id := range ids {
			args = append(args, id)
		}
	}
	args = append(args, limit)

	query := `
		SELECT p.id FROM pages p
		WHERE p.status = ? AND p.id != ? AND EXISTS (
			SELECT 1 FROM page_terms pt
			JOIN terms t ON t.id = pt.term_id
			WHERE pt.page_id = p.id AND (` + strings.Join(clauses, " OR ") + `)
		)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find related candidates: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListPublishedByTerm returns published pages carrying a term, title then id ascending
func (s *Store) ListPublishedByTerm(ctx context.Context, termID int64, limit int) ([]domain.PageSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.slug FROM pages p
		JOIN page_terms pt ON pt.page_id = p.id
		WHERE pt.term_id = ? AND p.status = ?
		ORDER BY p.title ASC, p.id ASC
		LIMIT ?
	`, termID, domain.PageStatusPublished, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages by term: %w", err)
	}
	defer rows.Close()

	summaries := []domain.PageSummary{}
	for rows.Next() {
		var summary domain.PageSummary
		var slug string
		if err := rows.Scan(&summary.ID, &summary.Title, &slug); err != nil {
			return nil, fmt.Errorf("failed to scan page summary: %w", err)
		}
		summary.Permalink = s.Permalink(slug)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func scanPage(row *sql.Row) (*domain.Page, error) {
	var page domain.Page
	var headings, faq, picks string
	var createdAt, updatedAt int64

	err := row.Scan(&page.ID, &page.Slug, &page.Title, &page.Intro, &page.Status,
		&headings, &faq, &page.TopPicksCount, &picks, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}

	if err := json.Unmarshal([]byte(headings), &page.SectionHeadings); err != nil {
		return nil, fmt.Errorf("failed to decode section headings of page %d: %w", page.ID, err)
	}
	if err := json.Unmarshal([]byte(faq), &page.FAQ); err != nil {
		return nil, fmt.Errorf("failed to decode faq of page %d: %w", page.ID, err)
	}
	if err := json.Unmarshal([]byte(picks), &page.TopPicks); err != nil {
		return nil, fmt.Errorf("failed to decode top picks of page %d: %w", page.ID, err)
	}
	page.CreatedAt = time.Unix(createdAt, 0).UTC()
	page.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &page, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
