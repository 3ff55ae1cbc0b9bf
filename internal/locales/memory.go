package locales

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/internal/identity"
)

// MemoryRepository keeps locales keyed by code.
type MemoryRepository struct {
	mu      sync.RWMutex
	locales map[string]*Locale
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{locales: make(map[string]*Locale)}
}

func (m *MemoryRepository) Create(_ context.Context, locale *Locale) (*Locale, error) {
	if locale == nil {
		return nil, nil
	}
	copied := *locale
	copied.Code = Normalize(copied.Code)
	if copied.ID == uuid.Nil {
		copied.ID = identity.LocaleID(copied.Code)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.locales[copied.Code] = &copied
	out := copied
	return &out, nil
}

func (m *MemoryRepository) GetByCode(_ context.Context, code string) (*Locale, error) {
	code = Normalize(code)
	m.mu.RLock()
	defer m.mu.RUnlock()
	locale, ok := m.locales[code]
	if !ok {
		return nil, &NotFoundError{Code: code}
	}
	out := *locale
	return &out, nil
}

func (m *MemoryRepository) List(context.Context) ([]*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Locale, 0, len(m.locales))
	for _, locale := range m.locales {
		copied := *locale
		out = append(out, &copied)
	}
	slices.SortFunc(out, func(a, b *Locale) int { return strings.Compare(a.Code, b.Code) })
	return out, nil
}
