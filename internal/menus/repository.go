package menus

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MenuRepository persists menus together with their items. Create and
// Update write the full item set; GetBy* return menus with items loaded.
type MenuRepository interface {
	Create(ctx context.Context, menu *Menu) (*Menu, error)
	Update(ctx context.Context, menu *Menu) (*Menu, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Menu, error)
	GetByCode(ctx context.Context, code string) (*Menu, error)
	GetByTitle(ctx context.Context, title string) (*Menu, error)
	List(ctx context.Context) ([]*Menu, error)
	InvalidateCache(ctx context.Context) error
}

func NewMenuRepository(db *bun.DB) repository.Repository[*Menu] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Menu]{
		NewRecord: func() *Menu { return &Menu{} },
		GetID: func(m *Menu) uuid.UUID {
			return m.ID
		},
		SetID: func(m *Menu, id uuid.UUID) {
			m.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(m *Menu) string {
			return m.Code
		},
	})
}

func NewLinkItemRepository(db *bun.DB) repository.Repository[*LinkItem] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*LinkItem]{
		NewRecord: func() *LinkItem { return &LinkItem{} },
		GetID: func(item *LinkItem) uuid.UUID {
			return item.ID
		},
		SetID: func(item *LinkItem, id uuid.UUID) {
			item.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(item *LinkItem) string {
			return item.ID.String()
		},
	})
}

func NewSubMenuItemRepository(db *bun.DB) repository.Repository[*SubMenuItem] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*SubMenuItem]{
		NewRecord: func() *SubMenuItem { return &SubMenuItem{} },
		GetID: func(item *SubMenuItem) uuid.UUID {
			return item.ID
		},
		SetID: func(item *SubMenuItem, id uuid.UUID) {
			item.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(item *SubMenuItem) string {
			return item.ID.String()
		},
	})
}

func NewAutoFillItemRepository(db *bun.DB) repository.Repository[*AutoFillItem] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*AutoFillItem]{
		NewRecord: func() *AutoFillItem { return &AutoFillItem{} },
		GetID: func(item *AutoFillItem) uuid.UUID {
			return item.ID
		},
		SetID: func(item *AutoFillItem, id uuid.UUID) {
			item.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(item *AutoFillItem) string {
			return item.ID.String()
		},
	})
}
