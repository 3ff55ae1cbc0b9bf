package menus

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryMenuRepository keeps menus in process.
type MemoryMenuRepository struct {
	mu    sync.RWMutex
	menus map[uuid.UUID]*Menu
	codes map[string]uuid.UUID
}

func NewMemoryMenuRepository() *MemoryMenuRepository {
	return &MemoryMenuRepository{
		menus: make(map[uuid.UUID]*Menu),
		codes: make(map[string]uuid.UUID),
	}
}

func (m *MemoryMenuRepository) Create(_ context.Context, menu *Menu) (*Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.codes[menu.Code]; exists {
		return nil, ErrMenuCodeExists
	}
	if _, exists := m.menus[menu.ID]; exists {
		return nil, ErrMenuCodeExists
	}
	stored := cloneMenu(menu)
	m.menus[stored.ID] = stored
	m.codes[stored.Code] = stored.ID
	return cloneMenu(stored), nil
}

func (m *MemoryMenuRepository) Update(_ context.Context, menu *Menu) (*Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.menus[menu.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: menu.ID.String()}
	}
	if owner, taken := m.codes[menu.Code]; taken && owner != menu.ID {
		return nil, ErrMenuCodeExists
	}
	delete(m.codes, current.Code)
	stored := cloneMenu(menu)
	m.menus[stored.ID] = stored
	m.codes[stored.Code] = stored.ID
	return cloneMenu(stored), nil
}

func (m *MemoryMenuRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.menus[id]
	if !ok {
		return &NotFoundError{Resource: "menu", Key: id.String()}
	}
	delete(m.codes, current.Code)
	delete(m.menus, id)
	return nil
}

func (m *MemoryMenuRepository) GetByID(_ context.Context, id uuid.UUID) (*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	menu, ok := m.menus[id]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: id.String()}
	}
	return cloneMenu(menu), nil
}

func (m *MemoryMenuRepository) GetByCode(ctx context.Context, code string) (*Menu, error) {
	m.mu.RLock()
	id, ok := m.codes[strings.TrimSpace(code)]
	m.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: code}
	}
	return m.GetByID(ctx, id)
}

// GetByTitle matches titles case-insensitively. With duplicate titles the
// menu with the lowest code wins.
func (m *MemoryMenuRepository) GetByTitle(_ context.Context, title string) (*Menu, error) {
	title = strings.TrimSpace(title)
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *Menu
	for _, menu := range m.menus {
		if !strings.EqualFold(menu.Title, title) {
			continue
		}
		if found == nil || menu.Code < found.Code {
			found = menu
		}
	}
	if found == nil {
		return nil, &NotFoundError{Resource: "menu", Key: title}
	}
	return cloneMenu(found), nil
}

func (m *MemoryMenuRepository) List(context.Context) ([]*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Menu, 0, len(m.menus))
	for _, menu := range m.menus {
		out = append(out, cloneMenu(menu))
	}
	slices.SortFunc(out, func(a, b *Menu) int { return strings.Compare(a.Code, b.Code) })
	return out, nil
}

func (m *MemoryMenuRepository) InvalidateCache(context.Context) error {
	return nil
}
