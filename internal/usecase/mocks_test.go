package usecase

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gifthub/engine/internal/domain"
)

// MockCacheStore is a mock implementation of domain.CacheStore
type MockCacheStore struct {
	data     map[string][]byte
	ttls     map[string]time.Duration
	getError error
	setError error
	getCalls int
	setCalls int
	deleted  []string
}

func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockCacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.getCalls++
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.setCalls++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MockCacheStore) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.data, key)
	return nil
}

func (m *MockCacheStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockCatalogClient is a mock implementation of domain.CatalogClient
type MockCatalogClient struct {
	result       *domain.Enrichment
	err          error
	calls        int
	identifiers  []string
	marketplaces []string
	// cancelDuringCall simulates the caller going away mid-request
	cancelDuringCall func()
}

func NewMockCatalogClient() *MockCatalogClient {
	return &MockCatalogClient{}
}

func (m *MockCatalogClient) GetItem(ctx context.Context, identifier, marketplace string) (*domain.Enrichment, error) {
	m.calls++
	m.identifiers = append(m.identifiers, identifier)
	m.marketplaces = append(m.marketplaces, marketplace)
	if m.cancelDuringCall != nil {
		m.cancelDuringCall()
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(domain.ErrCatalogAPIFailure, err)
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return nil, nil
	}
	copied := *m.result
	return &copied, nil
}

// testClock is a manually advanced time source
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// fakeContent is an in-memory content host implementing the page and term interfaces
type fakeContent struct {
	pages      map[int64]*domain.Page
	terms      map[int64]domain.Term
	pageTerms  map[int64][]int64
	nextPageID int64
	nextTermID int64
	termErr    error
	termCalls  int
	findCalls  int
}

func newFakeContent() *fakeContent {
	return &fakeContent{
		pages:     make(map[int64]*domain.Page),
		terms:     make(map[int64]domain.Term),
		pageTerms: make(map[int64][]int64),
	}
}

// addPage stores a published page and assigns terms by name per taxonomy
func (f *fakeContent) addPage(title string, terms map[string][]string) int64 {
	id, _, _ := f.UpsertPage(context.Background(), &domain.Page{
		Slug:   domain.Slugify(title),
		Title:  title,
		Status: domain.PageStatusPublished,
	})
	for taxonomy, names := range terms {
		_ = f.SetTerms(context.Background(), id, taxonomy, names)
	}
	return id
}

func (f *fakeContent) sortedPageIDs() []int64 {
	ids := make([]int64, 0, len(f.pages))
	for id := range f.pages {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (f *fakeContent) TermIDs(ctx context.Context, pageID int64, taxonomy string) ([]int64, error) {
	f.termCalls++
	if f.termErr != nil {
		return nil, f.termErr
	}
	var ids []int64
	for _, id := range f.pageTerms[pageID] {
		if f.terms[id].Taxonomy == taxonomy {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeContent) PageTerms(ctx context.Context, pageID int64) ([]domain.Term, error) {
	var terms []domain.Term
	for _, id := range f.pageTerms[pageID] {
		terms = append(terms, f.terms[id])
	}
	return terms, nil
}

func (f *fakeContent) TermBySlug(ctx context.Context, taxonomy, slugOrName string) (*domain.Term, error) {
	slug := domain.Slugify(slugOrName)
	for _, t := range f.terms {
		if t.Taxonomy == taxonomy && (t.Slug == slug || t.Name == slugOrName) {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeContent) FindPublishedByTerms(ctx context.Context, terms map[string][]int64, excludeID int64, limit int) ([]int64, error) {
	f.findCalls++
	var ids []int64
	for _, id := range f.sortedPageIDs() {
		page := f.pages[id]
		if id == excludeID || page.Status != domain.PageStatusPublished {
			continue
		}
		for _, termID := range f.pageTerms[id] {
			if slices.Contains(terms[f.terms[termID].Taxonomy], termID) {
				ids = append(ids, id)
				break
			}
		}
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

func (f *fakeContent) ListPublishedByTerm(ctx context.Context, termID int64, limit int) ([]domain.PageSummary, error) {
	var out []domain.PageSummary
	for _, id := range f.sortedPageIDs() {
		page := f.pages[id]
		if page.Status == domain.PageStatusPublished && slices.Contains(f.pageTerms[id], termID) {
			out = append(out, f.summary(page))
		}
	}
	slices.SortFunc(out, func(a, b domain.PageSummary) int {
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return out[:min(limit, len(out))], nil
}

func (f *fakeContent) Summary(ctx context.Context, pageID int64) (*domain.PageSummary, error) {
	page, ok := f.pages[pageID]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	summary := f.summary(page)
	return &summary, nil
}

func (f *fakeContent) summary(page *domain.Page) domain.PageSummary {
	return domain.PageSummary{
		ID:        page.ID,
		Title:     page.Title,
		Permalink: "https://gifts.test/gift-ideas/" + page.Slug + "/",
	}
}

func (f *fakeContent) PageBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	for _, page := range f.pages {
		if page.Slug == slug {
			return page, nil
		}
	}
	return nil, domain.ErrPageNotFound
}

func (f *fakeContent) PageByID(ctx context.Context, pageID int64) (*domain.Page, error) {
	page, ok := f.pages[pageID]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	return page, nil
}

func (f *fakeContent) UpsertPage(ctx context.Context, page *domain.Page) (int64, bool, error) {
	for id, existing := range f.pages {
		if existing.Slug == page.Slug {
			stored := *page
			stored.ID = id
			f.pages[id] = &stored
			return id, false, nil
		}
	}
	f.nextPageID++
	stored := *page
	stored.ID = f.nextPageID
	f.pages[stored.ID] = &stored
	return stored.ID, true, nil
}

func (f *fakeContent) SetTerms(ctx context.Context, pageID int64, taxonomy string, names []string) error {
	kept := slices.DeleteFunc(slices.Clone(f.pageTerms[pageID]), func(id int64) bool {
		return f.terms[id].Taxonomy == taxonomy
	})
	for _, name := range names {
		kept = append(kept, f.termID(taxonomy, name))
	}
	f.pageTerms[pageID] = kept
	return nil
}

func (f *fakeContent) termID(taxonomy, name string) int64 {
	slug := domain.Slugify(name)
	for id, t := range f.terms {
		if t.Taxonomy == taxonomy && t.Slug == slug {
			return id
		}
	}
	f.nextTermID++
	f.terms[f.nextTermID] = domain.Term{ID: f.nextTermID, Taxonomy: taxonomy, Name: name, Slug: slug}
	return f.nextTermID
}

// recordingInvalidator records the hooks fired by the importer
type recordingInvalidator struct {
	pages []int64
	terms []string
}

func (r *recordingInvalidator) InvalidatePage(ctx context.Context, pageID int64) error {
	r.pages = append(r.pages, pageID)
	return nil
}

func (r *recordingInvalidator) InvalidateOnTermsSet(ctx context.Context, pageID int64, taxonomy string) error {
	r.terms = append(r.terms, taxonomy)
	return nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
