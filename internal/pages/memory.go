package pages

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository stores pages in process. It is used by tests and by the
// facade when no database is configured.
type MemoryRepository struct {
	mu        sync.RWMutex
	pages     map[uuid.UUID]*Page
	slugIndex map[string]uuid.UUID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		pages:     make(map[uuid.UUID]*Page),
		slugIndex: make(map[string]uuid.UUID),
	}
}

func (m *MemoryRepository) Create(_ context.Context, page *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.slugIndex[page.Slug]; exists {
		return nil, ErrSlugExists
	}
	copied := clonePage(page)
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	now := time.Now().UTC()
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = now
	}
	copied.UpdatedAt = now
	for _, tr := range copied.Translations {
		tr.PageID = copied.ID
		if tr.ID == uuid.Nil {
			tr.ID = uuid.New()
		}
	}

	m.pages[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return clonePage(copied), nil
}

func (m *MemoryRepository) Update(_ context.Context, page *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.pages[page.ID]
	if !ok {
		return nil, &NotFoundError{Key: page.ID.String()}
	}
	if owner, taken := m.slugIndex[page.Slug]; taken && owner != page.ID {
		return nil, ErrSlugExists
	}

	updated := clonePage(page)
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	if updated.Translations == nil {
		updated.Translations = clonePage(current).Translations
	}
	for _, tr := range updated.Translations {
		tr.PageID = updated.ID
		if tr.ID == uuid.Nil {
			tr.ID = uuid.New()
		}
	}

	delete(m.slugIndex, current.Slug)
	m.pages[updated.ID] = updated
	m.slugIndex[updated.Slug] = updated.ID
	return clonePage(updated), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, ok := m.pages[id]
	if !ok {
		return &NotFoundError{Key: id.String()}
	}
	delete(m.slugIndex, page.Slug)
	delete(m.pages, id)
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return clonePage(page), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, slug string) (*Page, error) {
	slug = strings.TrimSpace(slug)
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &NotFoundError{Key: slug}
	}
	return clonePage(m.pages[id]), nil
}

func (m *MemoryRepository) ListChildren(_ context.Context, parentID uuid.UUID, query ChildQuery) ([]*Page, error) {
	m.mu.RLock()
	candidates := make([]*Page, 0)
	for _, page := range m.pages {
		if page.ParentID != nil && *page.ParentID == parentID {
			candidates = append(candidates, clonePage(page))
		}
	}
	m.mu.RUnlock()
	return filterChildren(candidates, query), nil
}
