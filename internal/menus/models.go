package menus

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/enzedonline/enzedonline-sub000/internal/pages"
)

// Menu is a named navigation list. It owns its items; sub-menu items point
// at other menus by id only, so reference cycles are possible.
type Menu struct {
	bun.BaseModel `bun:"table:menus,alias:m"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Code      string    `bun:"code,notnull,unique" json:"code"`
	Title     string    `bun:"title,notnull" json:"title"`
	Icon      string    `bun:"icon" json:"icon,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	LinkItems     []*LinkItem     `bun:"rel:has-many,join:id=menu_id" json:"link_items,omitempty"`
	SubMenuItems  []*SubMenuItem  `bun:"rel:has-many,join:id=menu_id" json:"submenu_items,omitempty"`
	AutoFillItems []*AutoFillItem `bun:"rel:has-many,join:id=menu_id" json:"autofill_items,omitempty"`
}

// ItemBase holds the visibility and ordering shared by every item kind.
type ItemBase struct {
	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	MenuID       uuid.UUID `bun:"menu_id,notnull,type:uuid" json:"menu_id"`
	ShowWhen     ShowWhen  `bun:"show_when,notnull" json:"show_when"`
	DividerAfter bool      `bun:"divider_after,notnull,default:false" json:"divider_after"`
	DisplayOrder int       `bun:"display_order,notnull,default:200" json:"display_order"`
}

func (b *ItemBase) Base() *ItemBase { return b }

// Item is implemented by *LinkItem, *SubMenuItem and *AutoFillItem.
type Item interface {
	Base() *ItemBase
	Kind() ItemKind
}

// LinkItem is a static link to a page or a raw URL. Suffix is appended to
// page URLs for routable sub-paths or query strings.
type LinkItem struct {
	bun.BaseModel `bun:"table:menu_link_items,alias:mli"`
	ItemBase

	Title  string     `bun:"title" json:"title,omitempty"`
	Icon   string     `bun:"icon" json:"icon,omitempty"`
	PageID *uuid.UUID `bun:"link_page_id,type:uuid" json:"link_page,omitempty"`
	URL    string     `bun:"link_url" json:"link_url,omitempty"`
	Suffix string     `bun:"suffix" json:"suffix,omitempty"`
}

func (*LinkItem) Kind() ItemKind { return KindLink }

// SubMenuItem references another menu, rendered lazily as a dropdown.
type SubMenuItem struct {
	bun.BaseModel `bun:"table:menu_submenu_items,alias:msi"`
	ItemBase

	TargetMenuID  uuid.UUID     `bun:"submenu_id,notnull,type:uuid" json:"submenu_id"`
	DisplayOption DisplayOption `bun:"display_option,notnull" json:"display_option"`
}

func (*SubMenuItem) Kind() ItemKind { return KindSubMenu }

// AutoFillItem expands into links to the live children of SourcePageID.
type AutoFillItem struct {
	bun.BaseModel `bun:"table:menu_autofill_items,alias:mai"`
	ItemBase

	Description       string        `bun:"description" json:"description,omitempty"`
	SourcePageID      uuid.UUID     `bun:"link_page_id,notnull,type:uuid" json:"link_page"`
	IncludeSourcePage bool          `bun:"include_linked_page,notnull,default:false" json:"include_linked_page"`
	OnlyMenuVisible   bool          `bun:"only_show_in_menus,notnull,default:false" json:"only_show_in_menus"`
	MaxItems          int           `bun:"max_items,notnull,default:4" json:"max_items"`
	OrderBy           pages.OrderBy `bun:"order_by,notnull" json:"order_by"`
}

func (*AutoFillItem) Kind() ItemKind { return KindAutoFill }

// Items returns every item of the menu, sub-menus first, then links, then
// auto-fill items.
func (m *Menu) Items() []Item {
	if m == nil {
		return nil
	}
	out := make([]Item, 0, len(m.SubMenuItems)+len(m.LinkItems)+len(m.AutoFillItems))
	for _, item := range m.SubMenuItems {
		out = append(out, item)
	}
	for _, item := range m.LinkItems {
		out = append(out, item)
	}
	for _, item := range m.AutoFillItems {
		out = append(out, item)
	}
	return out
}

func cloneMenu(m *Menu) *Menu {
	if m == nil {
		return nil
	}
	out := *m
	out.LinkItems = make([]*LinkItem, 0, len(m.LinkItems))
	for _, item := range m.LinkItems {
		copied := *item
		if item.PageID != nil {
			id := *item.PageID
			copied.PageID = &id
		}
		out.LinkItems = append(out.LinkItems, &copied)
	}
	out.SubMenuItems = make([]*SubMenuItem, 0, len(m.SubMenuItems))
	for _, item := range m.SubMenuItems {
		copied := *item
		out.SubMenuItems = append(out.SubMenuItems, &copied)
	}
	out.AutoFillItems = make([]*AutoFillItem, 0, len(m.AutoFillItems))
	for _, item := range m.AutoFillItems {
		copied := *item
		out.AutoFillItems = append(out.AutoFillItems, &copied)
	}
	return &out
}
