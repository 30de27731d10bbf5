package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gifthub/engine/internal/domain"
)

// TermIDs returns the ids of a page's terms in one taxonomy
func (s *Store) TermIDs(ctx context.Context, pageID int64, taxonomy string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id FROM terms t
		JOIN page_terms pt ON pt.term_id = t.id
		WHERE pt.page_id = ? AND t.taxonomy = ?
		ORDER BY t.id
	`, pageID, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("failed to load term ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan term id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PageTerms returns every term of a page, by taxonomy then name
func (s *Store) PageTerms(ctx context.Context, pageID int64) ([]domain.Term, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.taxonomy, t.name, t.slug FROM terms t
		JOIN page_terms pt ON pt.term_id = t.id
		WHERE pt.page_id = ?
		ORDER BY t.taxonomy, t.name
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load page terms: %w", err)
	}
	defer rows.Close()

	terms := []domain.Term{}
	for rows.Next() {
		var t domain.Term
		if err := rows.Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		if domain.IsRecognizedTaxonomy(t.Taxonomy) {
			terms = append(terms, t)
		}
	}
	return terms, rows.Err()
}

// TermBySlug resolves a term by slug first, then by exact name. Returns nil when absent.
func (s *Store) TermBySlug(ctx context.Context, taxonomy, slugOrName string) (*domain.Term, error) {
	var t domain.Term
	err := s.db.QueryRowContext(ctx, `
		SELECT id, taxonomy, name, slug FROM terms
		WHERE taxonomy = ? AND (slug = ? OR name = ?)
		ORDER BY slug = ? DESC, id
		LIMIT 1
	`, taxonomy, domain.Slugify(slugOrName), slugOrName, domain.Slugify(slugOrName)).
		Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve term: %w", err)
	}
	return &t, nil
}

// SetTerms replaces a page's terms in one taxonomy, creating missing terms by name
func (s *Store) SetTerms(ctx context.Context, pageID int64, taxonomy string, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM page_terms
		WHERE page_id = ? AND term_id IN (SELECT id FROM terms WHERE taxonomy = ?)
	`, pageID, taxonomy)
	if err != nil {
		return fmt.Errorf("failed to clear %s terms: %w", taxonomy, err)
	}

	for _, name := range names {
		slug := domain.Slugify(name)
		if slug == "" {
			continue
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO terms (taxonomy, name, slug) VALUES (?, ?, ?)
			ON CONFLICT (taxonomy, slug) DO NOTHING
		`, taxonomy, name, slug)
		if err != nil {
			return fmt.Errorf("failed to create term %q: %w", name, err)
		}

		var termID int64
		err = tx.QueryRowContext(ctx, `SELECT id FROM terms WHERE taxonomy = ? AND slug = ?`, taxonomy, slug).Scan(&termID)
		if err != nil {
			return fmt.Errorf("failed to resolve term %q: %w", name, err)
		}

		_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO page_terms (page_id, term_id) VALUES (?, ?)`, pageID, termID)
		if err != nil {
			return fmt.Errorf("failed to assign term %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit terms: %w", err)
	}
	return nil
}
