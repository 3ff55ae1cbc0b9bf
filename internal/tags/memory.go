package tags

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu       sync.RWMutex
	tags     map[uuid.UUID]*Tag
	taggings map[uuid.UUID]map[uuid.UUID]struct{} // tag -> pages
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tags:     make(map[uuid.UUID]*Tag),
		taggings: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

func (m *MemoryRepository) Create(_ context.Context, tag *Tag) (*Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tags {
		if existing.Set == tag.Set && existing.Slug == tag.Slug {
			return nil, ErrSlugExists
		}
	}
	stored := cloneTag(tag)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	m.tags[stored.ID] = stored
	return cloneTag(stored), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tags[id]; !ok {
		return &NotFoundError{Key: id.String()}
	}
	delete(m.tags, id)
	delete(m.taggings, id)
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tag, ok := m.tags[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return cloneTag(tag), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, set, slug string) (*Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, tag := range m.tags {
		if tag.Set == set && tag.Slug == slug {
			return cloneTag(tag), nil
		}
	}
	return nil, &NotFoundError{Key: set + "/" + slug}
}

func (m *MemoryRepository) ListBySlugs(_ context.Context, set string, slugs []string) ([]*Tag, error) {
	want := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		want[s] = struct{}{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Tag
	for _, tag := range m.tags {
		if _, ok := want[tag.Slug]; ok && tag.Set == set {
			out = append(out, cloneTag(tag))
		}
	}
	sortTags(out)
	return out, nil
}

func (m *MemoryRepository) ListInUse(_ context.Context, set string, typ *Type) ([]*Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Tag
	for id, tag := range m.tags {
		if tag.Set != set || len(m.taggings[id]) == 0 {
			continue
		}
		if typ != nil && tag.Type != *typ {
			continue
		}
		out = append(out, cloneTag(tag))
	}
	sortTags(out)
	return out, nil
}

func (m *MemoryRepository) Assign(_ context.Context, pageID uuid.UUID, tagIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range tagIDs {
		if _, ok := m.tags[id]; !ok {
			return &NotFoundError{Key: id.String()}
		}
	}
	for _, id := range tagIDs {
		pages := m.taggings[id]
		if pages == nil {
			pages = make(map[uuid.UUID]struct{})
			m.taggings[id] = pages
		}
		pages[pageID] = struct{}{}
	}
	return nil
}

func (m *MemoryRepository) Unassign(_ context.Context, pageID uuid.UUID, tagIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range tagIDs {
		delete(m.taggings[id], pageID)
	}
	return nil
}

func (m *MemoryRepository) UnassignPage(_ context.Context, pageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pages := range m.taggings {
		delete(pages, pageID)
	}
	return nil
}

func (m *MemoryRepository) MatchCounts(_ context.Context, tagIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[uuid.UUID]int)
	for _, id := range tagIDs {
		for pageID := range m.taggings[id] {
			counts[pageID]++
		}
	}
	return counts, nil
}

func (m *MemoryRepository) DeleteUnused(_ context.Context, set string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, tag := range m.tags {
		if tag.Set == set && len(m.taggings[id]) == 0 {
			delete(m.tags, id)
			delete(m.taggings, id)
			removed++
		}
	}
	return removed, nil
}
