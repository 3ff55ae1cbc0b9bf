package menus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/internal/links"
	"github.com/enzedonline/enzedonline-sub000/internal/logging"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

// Entry is one resolved navigation row handed to the renderer.
type Entry struct {
	Kind          EntryKind     `json:"kind"`
	ItemID        uuid.UUID     `json:"item_id"`
	Order         float64       `json:"order"`
	Title         string        `json:"title,omitempty"`
	URL           string        `json:"url,omitempty"`
	Icon          string        `json:"icon,omitempty"`
	IsSubMenu     bool          `json:"is_submenu"`
	SubMenuID     uuid.UUID     `json:"submenu_id,omitempty"`
	DisplayOption DisplayOption `json:"display_option,omitempty"`
	Divider       bool          `json:"divider"`
	PageID        *uuid.UUID    `json:"page_id,omitempty"`
}

// IsActive reports whether the entry points at currentPath. Query strings
// and fragments are ignored and trailing slashes are insignificant.
func (e Entry) IsActive(currentPath string) bool {
	if e.IsSubMenu || e.URL == "" || currentPath == "" {
		return false
	}
	return comparablePath(e.URL) == comparablePath(currentPath)
}

func comparablePath(v string) string {
	if i := strings.IndexAny(v, "?#"); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimRight(v, "/")
	if v == "" {
		return "/"
	}
	return v
}

// PageLinker resolves link targets and page URLs. *links.Resolver satisfies
// it.
type PageLinker interface {
	Resolve(ctx context.Context, target links.Target, locale string) (string, error)
	ResolvePage(ctx context.Context, page *pages.Page, locale string) (string, error)
	Page(ctx context.Context, id uuid.UUID) (*pages.Page, error)
}

// ChildLister lists the children of a page.
type ChildLister interface {
	ListChildren(ctx context.Context, parentID uuid.UUID, query pages.ChildQuery) ([]*pages.Page, error)
}

// MenuLookup loads sub-menu targets for their title and icon.
type MenuLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Menu, error)
}

// Resolver merges a menu's items into one ordered entry list.
type Resolver struct {
	linker   PageLinker
	children ChildLister
	menus    MenuLookup
	fallback string
	logger   interfaces.Logger
}

type ResolverOption func(*Resolver)

func WithResolverLogger(logger interfaces.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMenuLookup lets sub-menu entries carry their target's title and icon
// and drops entries whose target was deleted.
func WithMenuLookup(lookup MenuLookup) ResolverOption {
	return func(r *Resolver) {
		r.menus = lookup
	}
}

// WithResolverFallbackLocale sets the locale used for page titles when a
// translation is missing.
func WithResolverFallbackLocale(code string) ResolverOption {
	return func(r *Resolver) {
		if code = strings.TrimSpace(code); code != "" {
			r.fallback = code
		}
	}
}

func NewResolver(linker PageLinker, children ChildLister, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		linker:   linker,
		children: children,
		fallback: "en",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the visible entries of menu for the request, sorted by
// order. It returns nil when nothing is visible. Broken items are skipped;
// any other failure is logged and yields nil so navigation never breaks a
// page render.
func (r *Resolver) Resolve(ctx context.Context, menu *Menu, rc interfaces.RequestContext) (entries []Entry) {
	if menu == nil {
		return nil
	}
	logger := logging.WithMenuContext(r.logger, menu.ID.String(), rc.Locale)
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("menu.resolve.panic", "panic", fmt.Sprint(rec))
			entries = nil
		}
	}()

	out, err := r.resolve(ctx, menu, rc, logger)
	if err != nil {
		logger.Error("menu.resolve.failed", "error", err)
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	logger.Debug("menu.resolved", "entries", len(out))
	return out
}

func (r *Resolver) resolve(ctx context.Context, menu *Menu, rc interfaces.RequestContext, logger interfaces.Logger) ([]Entry, error) {
	var out []Entry

	for _, item := range menu.SubMenuItems {
		if item == nil || !normalizeShowWhen(item.ShowWhen).Allows(rc.Authenticated) {
			continue
		}
		entry, ok, err := r.subMenuEntry(ctx, item)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Warn("menu.item.skipped", "item_id", item.ID, "reason", "submenu target missing", "submenu_id", item.TargetMenuID)
			continue
		}
		out = append(out, entry)
	}

	for _, item := range menu.LinkItems {
		if item == nil || !normalizeShowWhen(item.ShowWhen).Allows(rc.Authenticated) {
			continue
		}
		entry, ok, err := r.linkEntry(ctx, item, rc.Locale)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Warn("menu.item.skipped", "item_id", item.ID, "reason", "linked page missing")
			continue
		}
		out = append(out, entry)
	}

	for _, item := range menu.AutoFillItems {
		if item == nil || !normalizeShowWhen(item.ShowWhen).Allows(rc.Authenticated) {
			continue
		}
		expanded, ok, err := r.autoFillEntries(ctx, item, rc)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Warn("menu.item.skipped", "item_id", item.ID, "reason", "source page missing", "page_id", item.SourcePageID)
			continue
		}
		out = append(out, expanded...)
	}

	slices.SortStableFunc(out, func(a, b Entry) int {
		switch {
		case a.Order < b.Order:
			return -1
		case a.Order > b.Order:
			return 1
		}
		return 0
	})
	return out, nil
}

func (r *Resolver) subMenuEntry(ctx context.Context, item *SubMenuItem) (Entry, bool, error) {
	entry := Entry{
		Kind:          EntrySubMenu,
		ItemID:        item.ID,
		Order:         float64(item.DisplayOrder),
		IsSubMenu:     true,
		SubMenuID:     item.TargetMenuID,
		DisplayOption: normalizeDisplayOption(item.DisplayOption),
		Divider:       item.DividerAfter,
	}
	if r.menus == nil {
		return entry, true, nil
	}
	target, err := r.menus.GetByID(ctx, item.TargetMenuID)
	if err != nil {
		if errors.Is(err, ErrMenuNotFound) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	entry.Title = target.Title
	entry.Icon = target.Icon
	return entry, true, nil
}

func (r *Resolver) linkEntry(ctx context.Context, item *LinkItem, locale string) (Entry, bool, error) {
	target := links.Target{PageID: item.PageID, URL: item.URL, Suffix: item.Suffix}
	url, err := r.linker.Resolve(ctx, target, locale)
	if err != nil {
		if errors.Is(err, links.ErrPageNotFound) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("resolve link item %s: %w", item.ID, err)
	}

	entry := Entry{
		Kind:    EntryLink,
		ItemID:  item.ID,
		Order:   float64(item.DisplayOrder),
		Title:   strings.TrimSpace(item.Title),
		URL:     url,
		Icon:    item.Icon,
		Divider: item.DividerAfter,
	}
	if target.HasPage() {
		id := *item.PageID
		entry.PageID = &id
		if entry.Title == "" {
			page, err := r.linker.Page(ctx, id)
			if err != nil {
				if errors.Is(err, links.ErrPageNotFound) {
					return Entry{}, false, nil
				}
				return Entry{}, false, err
			}
			entry.Title = page.Title(locale, r.fallback)
		}
	}
	return entry, true, nil
}

// autoFillEntries expands an auto-fill item. Child i of the kept children
// is placed at base+(i+1)/(max+1) so every child sorts strictly between
// base and base+1, after the optional source page entry at base.
func (r *Resolver) autoFillEntries(ctx context.Context, item *AutoFillItem, rc interfaces.RequestContext) ([]Entry, bool, error) {
	source, err := r.linker.Page(ctx, item.SourcePageID)
	if err != nil {
		if errors.Is(err, links.ErrPageNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	maxItems := item.MaxItems
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	order := item.OrderBy
	if !order.Valid() {
		order = pages.DefaultOrder
	}

	children, err := r.children.ListChildren(ctx, source.ID, pages.ChildQuery{
		LiveOnly:        true,
		PublicOnly:      !rc.Authenticated,
		MenuVisibleOnly: item.OnlyMenuVisible,
		OrderBy:         order,
		Limit:           maxItems,
	})
	if err != nil {
		return nil, false, fmt.Errorf("list children of %s: %w", source.ID, err)
	}
	if len(children) > maxItems {
		children = children[:maxItems]
	}

	base := float64(item.DisplayOrder)
	out := make([]Entry, 0, len(children)+1)
	if item.IncludeSourcePage {
		url, err := r.linker.ResolvePage(ctx, source, rc.Locale)
		if err != nil {
			return nil, false, err
		}
		id := source.ID
		out = append(out, Entry{
			Kind:    EntryAutoFillSource,
			ItemID:  item.ID,
			Order:   base,
			Title:   source.Title(rc.Locale, r.fallback),
			URL:     url,
			Divider: true,
			PageID:  &id,
		})
	}

	step := 1 / float64(maxItems+1)
	for i, child := range children {
		url, err := r.linker.ResolvePage(ctx, child, rc.Locale)
		if err != nil {
			return nil, false, err
		}
		id := child.ID
		out = append(out, Entry{
			Kind:   EntryAutoFillChild,
			ItemID: item.ID,
			Order:  base + float64(i+1)*step,
			Title:  child.Title(rc.Locale, r.fallback),
			URL:    url,
			PageID: &id,
		})
	}
	if item.DividerAfter && len(out) > 0 {
		out[len(out)-1].Divider = true
	}
	return out, true, nil
}
