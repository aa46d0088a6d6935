package pages

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-pagetree/internal/domain"
	"github.com/google/uuid"
)

// MemoryRepository is an in-memory page store for scaffolding/tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	pages map[uuid.UUID]*Page
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		pages: make(map[uuid.UUID]*Page),
	}
}

// Create inserts the supplied page.
func (m *MemoryRepository) Create(_ context.Context, record *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := clonePage(record)
	m.pages[copied.ID] = copied
	return clonePage(copied), nil
}

// GetByID retrieves a page by identifier.
func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok {
		return nil, &PageNotFoundError{Key: id.String()}
	}
	return clonePage(page), nil
}

// GetBySlug retrieves a page by its sibling-group coordinates.
func (m *MemoryRepository) GetBySlug(_ context.Context, locale string, parentID *uuid.UUID, slug string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, page := range m.pages {
		if page.Locale == locale && sameParentID(page.ParentID, parentID) && page.Slug == slug {
			return clonePage(page), nil
		}
	}
	return nil, &PageNotFoundError{Key: slug}
}

// GetByPath retrieves a page by its locale-scoped materialized path.
func (m *MemoryRepository) GetByPath(_ context.Context, locale, path string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, page := range m.pages {
		if page.Locale == locale && page.Path == path {
			return clonePage(page), nil
		}
	}
	return nil, &PageNotFoundError{Key: path}
}

// List returns every page in the locale.
func (m *MemoryRepository) List(_ context.Context, locale string) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Page, 0, len(m.pages))
	for _, page := range m.pages {
		if locale == "" || page.Locale == locale {
			out = append(out, clonePage(page))
		}
	}
	sortByPath(out)
	return out, nil
}

// ListChildren returns the direct children of parentID within the locale,
// including the root group when parentID is nil.
func (m *MemoryRepository) ListChildren(_ context.Context, locale string, parentID *uuid.UUID) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Page
	for _, page := range m.pages {
		if page.Locale == locale && sameParentID(page.ParentID, parentID) {
			out = append(out, clonePage(page))
		}
	}
	sortByPath(out)
	return out, nil
}

// ListSubtree returns every page strictly below the supplied path.
func (m *MemoryRepository) ListSubtree(_ context.Context, locale, path string) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := ChildPathPrefix(path)
	var out []*Page
	for _, page := range m.pages {
		if page.Locale == locale && strings.HasPrefix(page.Path, prefix) {
			out = append(out, clonePage(page))
		}
	}
	sortByPath(out)
	return out, nil
}

// Update persists changes for a page.
func (m *MemoryRepository) Update(_ context.Context, record *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pages[record.ID]; !ok {
		return nil, &PageNotFoundError{Key: record.ID.String()}
	}
	copied := clonePage(record)
	m.pages[record.ID] = copied
	return clonePage(copied), nil
}

// SaveTree persists structural changes for the supplied records atomically:
// every record must exist or nothing is written.
func (m *MemoryRepository) SaveTree(_ context.Context, records []*Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range records {
		if _, ok := m.pages[record.ID]; !ok {
			return &PageNotFoundError{Key: record.ID.String()}
		}
	}
	for _, record := range records {
		m.pages[record.ID] = clonePage(record)
	}
	return nil
}

// SaveSubtree persists a relocation cascade and verifies the subtree below
// vacatedPath really emptied out. A row under the vacated prefix that is not
// part of the batch was created or re-pathed concurrently and fails the whole
// write with ErrConcurrentUpdate.
func (m *MemoryRepository) SaveSubtree(_ context.Context, locale, vacatedPath string, records []*Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	batch := make(map[uuid.UUID]struct{}, len(records))
	for _, record := range records {
		if _, ok := m.pages[record.ID]; !ok {
			return &PageNotFoundError{Key: record.ID.String()}
		}
		batch[record.ID] = struct{}{}
	}

	prefix := ChildPathPrefix(vacatedPath)
	for _, page := range m.pages {
		if _, ok := batch[page.ID]; ok {
			continue
		}
		if page.Locale == locale && strings.HasPrefix(page.Path, prefix) {
			return fmt.Errorf("page %s: %w", page.ID, ErrConcurrentUpdate)
		}
	}

	for _, record := range records {
		m.pages[record.ID] = clonePage(record)
	}
	return nil
}

// DeletePages removes the supplied pages atomically.
func (m *MemoryRepository) DeletePages(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if _, ok := m.pages[id]; !ok {
			return &PageNotFoundError{Key: id.String()}
		}
	}
	for _, id := range ids {
		delete(m.pages, id)
	}
	return nil
}

// ListDuePublish returns scheduled pages whose publish window has arrived.
func (m *MemoryRepository) ListDuePublish(_ context.Context, until time.Time, limit int) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Page
	for _, page := range m.pages {
		if page.Status != string(domain.StatusScheduled) || page.PublishAt == nil {
			continue
		}
		if page.PublishAt.After(until) {
			continue
		}
		out = append(out, clonePage(page))
	}
	sortByDue(out, func(p *Page) *time.Time { return p.PublishAt })
	return truncatePages(out, limit), nil
}

// ListDueUnpublish returns published pages whose unpublish window has arrived.
func (m *MemoryRepository) ListDueUnpublish(_ context.Context, until time.Time, limit int) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Page
	for _, page := range m.pages {
		if page.Status != string(domain.StatusPublished) || page.UnpublishAt == nil {
			continue
		}
		if page.UnpublishAt.After(until) {
			continue
		}
		out = append(out, clonePage(page))
	}
	sortByDue(out, func(p *Page) *time.Time { return p.UnpublishAt })
	return truncatePages(out, limit), nil
}

// MemoryLocaleRepository stores locales in memory for scaffolding/tests.
type MemoryLocaleRepository struct {
	mu      sync.RWMutex
	locales map[string]*Locale
}

// NewMemoryLocaleRepository constructs the repository.
func NewMemoryLocaleRepository() *MemoryLocaleRepository {
	return &MemoryLocaleRepository{locales: make(map[string]*Locale)}
}

// Add registers a locale.
func (m *MemoryLocaleRepository) Add(locale *Locale) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *locale
	m.locales[locale.Code] = &copied
}

// GetByCode resolves a locale by its code.
func (m *MemoryLocaleRepository) GetByCode(_ context.Context, code string) (*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	locale, ok := m.locales[code]
	if !ok {
		return nil, ErrUnknownLocale
	}
	copied := *locale
	return &copied, nil
}

func sameParentID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sortByPath(records []*Page) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
}

func sortByDue(records []*Page, due func(*Page) *time.Time) {
	sort.SliceStable(records, func(i, j int) bool {
		left, right := due(records[i]), due(records[j])
		if left.Equal(*right) {
			return records[i].ID.String() < records[j].ID.String()
		}
		return left.Before(*right)
	})
}

func truncatePages(records []*Page, limit int) []*Page {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

func clonePage(page *Page) *Page {
	if page == nil {
		return nil
	}
	copied := *page
	copied.ParentID = cloneUUIDPointer(page.ParentID)
	copied.PublishAt = cloneTimePointer(page.PublishAt)
	copied.UnpublishAt = cloneTimePointer(page.UnpublishAt)
	copied.PublishedAt = cloneTimePointer(page.PublishedAt)
	copied.PublishedBy = cloneUUIDPointer(page.PublishedBy)
	copied.SubmittedForReviewAt = cloneTimePointer(page.SubmittedForReviewAt)
	copied.ReviewedBy = cloneUUIDPointer(page.ReviewedBy)
	copied.ReviewNotes = cloneStringPointer(page.ReviewNotes)
	copied.Blocks = cloneMap(page.Blocks)
	copied.SEO = cloneMap(page.SEO)
	return &copied
}

func cloneUUIDPointer(value *uuid.UUID) *uuid.UUID {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneTimePointer(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneStringPointer(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
