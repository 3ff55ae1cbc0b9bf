package menus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/internal/identity"
	"github.com/enzedonline/enzedonline-sub000/internal/logging"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

// Service manages menus and resolves them for requests.
type Service interface {
	CreateMenu(ctx context.Context, req SaveMenuRequest) (*Menu, error)
	UpdateMenu(ctx context.Context, id uuid.UUID, req SaveMenuRequest) (*Menu, error)
	DeleteMenu(ctx context.Context, id uuid.UUID) error
	GetMenu(ctx context.Context, id uuid.UUID) (*Menu, error)
	GetMenuByCode(ctx context.Context, code string) (*Menu, error)
	GetMenuByTitle(ctx context.Context, title string) (*Menu, error)
	LookupMenu(ctx context.Context, ref MenuRef) (*Menu, error)
	ListMenus(ctx context.Context) ([]*Menu, error)

	ResolveMenu(ctx context.Context, ref MenuRef, rc interfaces.RequestContext) ([]Entry, error)
	Navigation(ctx context.Context, ref MenuRef, rc interfaces.RequestContext) []Entry
	RenderTree(ctx context.Context, ref MenuRef, rc interfaces.RequestContext) ([]Node, error)
	InvalidateCache(ctx context.Context) error
}

// MenuRef names a menu by instance, id, code or title, checked in that
// order. A ref with only Code set also matches by title.
type MenuRef struct {
	Menu  *Menu
	ID    uuid.UUID
	Code  string
	Title string
}

func RefID(id uuid.UUID) MenuRef    { return MenuRef{ID: id} }
func RefCode(code string) MenuRef   { return MenuRef{Code: code} }
func RefTitle(title string) MenuRef { return MenuRef{Title: title} }
func RefMenu(menu *Menu) MenuRef    { return MenuRef{Menu: menu} }

func (r MenuRef) String() string {
	switch {
	case r.Menu != nil:
		return r.Menu.ID.String()
	case r.ID != uuid.Nil:
		return r.ID.String()
	case r.Code != "":
		return r.Code
	}
	return r.Title
}

// ParseMenuRef interprets a path or template argument: a UUID selects by
// id, anything else by code and then title.
func ParseMenuRef(value string) MenuRef {
	value = strings.TrimSpace(value)
	if id, err := uuid.Parse(value); err == nil {
		return RefID(id)
	}
	return MenuRef{Code: value, Title: value}
}

// ItemInput holds the fields shared by every item input.
type ItemInput struct {
	ShowWhen     ShowWhen
	DividerAfter bool
	DisplayOrder *int
}

// LinkItemInput targets a page by id or slug, or a raw URL.
type LinkItemInput struct {
	ItemInput
	Title    string
	Icon     string
	PageID   *uuid.UUID
	PageSlug string
	URL      string
	Suffix   string
}

// SubMenuItemInput targets another menu by id or code. A code that does
// not exist yet resolves to the id the menu will get when created.
type SubMenuItemInput struct {
	ItemInput
	MenuID        uuid.UUID
	MenuCode      string
	DisplayOption DisplayOption
}

type AutoFillItemInput struct {
	ItemInput
	Description       string
	PageID            uuid.UUID
	PageSlug          string
	IncludeSourcePage bool
	OnlyMenuVisible   bool
	MaxItems          *int
	OrderBy           pages.OrderBy
}

// SaveMenuRequest replaces a menu and its full item set.
type SaveMenuRequest struct {
	Code      string
	Title     string
	Icon      string
	Links     []LinkItemInput
	SubMenus  []SubMenuItemInput
	AutoFills []AutoFillItemInput
}

// PageBySlug resolves page slugs in item inputs.
type PageBySlug interface {
	GetBySlug(ctx context.Context, slug string) (*pages.Page, error)
}

// FragmentPurger drops cached navigation fragments after menu writes.
type FragmentPurger interface {
	PurgeMenus(ctx context.Context) error
}

type ServiceOption func(*service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithPageLookup(lookup PageBySlug) ServiceOption {
	return func(s *service) {
		s.pages = lookup
	}
}

func WithFragmentPurger(purger FragmentPurger) ServiceOption {
	return func(s *service) {
		s.purger = purger
	}
}

// WithMaxDepth caps sub-menu expansion in RenderTree.
func WithMaxDepth(depth int) ServiceOption {
	return func(s *service) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type service struct {
	repo     MenuRepository
	resolver *Resolver
	pages    PageBySlug
	purger   FragmentPurger
	logger   interfaces.Logger
	maxDepth int
	now      func() time.Time
}

func NewService(repo MenuRepository, resolver *Resolver, opts ...ServiceOption) Service {
	s := &service{
		repo:     repo,
		resolver: resolver,
		logger:   logging.NoOp(),
		maxDepth: DefaultMaxDepth,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateMenu(ctx context.Context, req SaveMenuRequest) (*Menu, error) {
	if s.repo == nil {
		return nil, ErrRepository
	}
	code, err := menuCode(req.Code, req.Title)
	if err != nil {
		return nil, err
	}
	menu, err := s.buildMenu(ctx, s.newMenuID(ctx, code), code, req)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	menu.CreatedAt = now
	menu.UpdatedAt = now

	created, err := s.repo.Create(ctx, menu)
	if err != nil {
		return nil, err
	}
	s.logger.Info("menu.created", "menu_id", created.ID, "code", created.Code)
	s.purge(ctx)
	return created, nil
}

// newMenuID derives the id from the code so seeded menus keep stable ids.
// A renamed menu keeps the id of its old code, so a derived id that is
// already taken falls back to a random one.
func (s *service) newMenuID(ctx context.Context, code string) uuid.UUID {
	id := identity.MenuID(code)
	if _, err := s.repo.GetByID(ctx, id); err == nil {
		return uuid.New()
	}
	return id
}

func (s *service) UpdateMenu(ctx context.Context, id uuid.UUID, req SaveMenuRequest) (*Menu, error) {
	if s.repo == nil {
		return nil, ErrRepository
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	code := current.Code
	if strings.TrimSpace(req.Code) != "" {
		if code, err = menuCode(req.Code, req.Title); err != nil {
			return nil, err
		}
	}
	menu, err := s.buildMenu(ctx, id, code, req)
	if err != nil {
		return nil, err
	}
	menu.CreatedAt = current.CreatedAt
	menu.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, menu)
	if err != nil {
		return nil, err
	}
	s.logger.Info("menu.updated", "menu_id", updated.ID, "code", updated.Code)
	s.purge(ctx)
	return updated, nil
}

func (s *service) DeleteMenu(ctx context.Context, id uuid.UUID) error {
	if s.repo == nil {
		return ErrRepository
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("menu.deleted", "menu_id", id)
	s.purge(ctx)
	return nil
}

func (s *service) GetMenu(ctx context.Context, id uuid.UUID) (*Menu, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetMenuByCode(ctx context.Context, code string) (*Menu, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *service) GetMenuByTitle(ctx context.Context, title string) (*Menu, error) {
	return s.repo.GetByTitle(ctx, title)
}

func (s *service) LookupMenu(ctx context.Context, ref MenuRef) (*Menu, error) {
	switch {
	case ref.Menu != nil:
		return ref.Menu, nil
	case ref.ID != uuid.Nil:
		return s.repo.GetByID(ctx, ref.ID)
	case strings.TrimSpace(ref.Code) != "":
		menu, err := s.repo.GetByCode(ctx, ref.Code)
		if err == nil || !errors.Is(err, ErrMenuNotFound) || strings.TrimSpace(ref.Title) == "" {
			return menu, err
		}
		return s.repo.GetByTitle(ctx, ref.Title)
	case strings.TrimSpace(ref.Title) != "":
		return s.repo.GetByTitle(ctx, ref.Title)
	}
	return nil, &NotFoundError{Resource: "menu", Key: ""}
}

func (s *service) ListMenus(ctx context.Context) ([]*Menu, error) {
	return s.repo.List(ctx)
}

// ResolveMenu returns ErrMenuNotFound for an unknown menu and nil entries
// for a menu with nothing visible to the caller.
func (s *service) ResolveMenu(ctx context.Context, ref MenuRef, rc interfaces.RequestContext) ([]Entry, error) {
	menu, err := s.LookupMenu(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, menu, rc), nil
}

// Navigation is the template-facing form of ResolveMenu: every failure,
// including a missing menu, degrades to no entries.
func (s *service) Navigation(ctx context.Context, ref MenuRef, rc interfaces.RequestContext) []Entry {
	entries, err := s.ResolveMenu(ctx, ref, rc)
	if err != nil {
		level := s.logger.Error
		if errors.Is(err, ErrMenuNotFound) {
			level = s.logger.Warn
		}
		level("menu.navigation.unavailable", "menu", ref.String(), "locale", rc.Locale, "error", err)
		return nil
	}
	return entries
}

func (s *service) RenderTree(ctx context.Context, ref MenuRef, rc interfaces.RequestContext) ([]Node, error) {
	menu, err := s.LookupMenu(ctx, ref)
	if err != nil {
		return nil, err
	}
	return renderTree(ctx, menu, s.repo, s.resolver, rc, s.maxDepth), nil
}

func (s *service) InvalidateCache(ctx context.Context) error {
	if err := s.repo.InvalidateCache(ctx); err != nil {
		return err
	}
	s.purgeFragments(ctx)
	return nil
}

// purge runs after a successful write; failures only leave stale reads
// behind, so they are logged.
func (s *service) purge(ctx context.Context) {
	if err := s.repo.InvalidateCache(ctx); err != nil {
		s.logger.Warn("menu.cache.invalidate_failed", "error", err)
	}
	s.purgeFragments(ctx)
}

func (s *service) purgeFragments(ctx context.Context) {
	if s.purger == nil {
		return
	}
	if err := s.purger.PurgeMenus(ctx); err != nil {
		s.logger.Warn("menu.fragments.purge_failed", "error", err)
	}
}

func menuCode(code, title string) (string, error) {
	source := strings.TrimSpace(code)
	if source == "" {
		source = strings.TrimSpace(title)
	}
	if source == "" {
		return "", ErrMenuTitleRequired
	}
	normalized, err := slug.Normalize(source)
	if err != nil || normalized == "" {
		return "", &ValidationError{Fields: validation.Errors{
			"code": validation.NewError("validation_slug_invalid", "must contain letters or digits"),
		}}
	}
	return normalized, nil
}

func (s *service) buildMenu(ctx context.Context, id uuid.UUID, code string, req SaveMenuRequest) (*Menu, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrMenuTitleRequired
	}
	menu := &Menu{
		ID:    id,
		Code:  code,
		Title: strings.TrimSpace(req.Title),
		Icon:  strings.TrimSpace(req.Icon),
	}
	lookupErrs := validation.Errors{}

	for i, in := range req.SubMenus {
		target := in.MenuID
		if target == uuid.Nil && strings.TrimSpace(in.MenuCode) != "" {
			target = s.menuIDForCode(ctx, in.MenuCode)
		}
		menu.SubMenuItems = append(menu.SubMenuItems, &SubMenuItem{
			ItemBase:      itemBase(id, KindSubMenu, i, in.ItemInput),
			TargetMenuID:  target,
			DisplayOption: normalizeDisplayOption(in.DisplayOption),
		})
	}

	for i, in := range req.Links {
		pageID, err := s.pageRef(ctx, in.PageID, in.PageSlug)
		if err != nil {
			addLookupError(lookupErrs, CollectionLinks, i, err)
		}
		menu.LinkItems = append(menu.LinkItems, &LinkItem{
			ItemBase: itemBase(id, KindLink, i, in.ItemInput),
			Title:    strings.TrimSpace(in.Title),
			Icon:     strings.TrimSpace(in.Icon),
			PageID:   pageID,
			URL:      strings.TrimSpace(in.URL),
			Suffix:   strings.TrimSpace(in.Suffix),
		})
	}

	for i, in := range req.AutoFills {
		var source uuid.UUID
		ref := &in.PageID
		if in.PageID == uuid.Nil {
			ref = nil
		}
		pageID, err := s.pageRef(ctx, ref, in.PageSlug)
		if err != nil {
			addLookupError(lookupErrs, CollectionAutoFills, i, err)
		}
		if pageID != nil {
			source = *pageID
		}
		maxItems := DefaultMaxItems
		if in.MaxItems != nil {
			maxItems = *in.MaxItems
		}
		order := in.OrderBy
		if strings.TrimSpace(string(order)) == "" {
			order = pages.DefaultOrder
		}
		menu.AutoFillItems = append(menu.AutoFillItems, &AutoFillItem{
			ItemBase:          itemBase(id, KindAutoFill, i, in.ItemInput),
			Description:       strings.TrimSpace(in.Description),
			SourcePageID:      source,
			IncludeSourcePage: in.IncludeSourcePage,
			OnlyMenuVisible:   in.OnlyMenuVisible,
			MaxItems:          maxItems,
			OrderBy:           order,
		})
	}

	if len(lookupErrs) > 0 {
		return nil, &ValidationError{Fields: lookupErrs}
	}
	if err := Validate(menu); err != nil {
		return nil, err
	}
	return menu, nil
}

func itemBase(menuID uuid.UUID, kind ItemKind, index int, in ItemInput) ItemBase {
	order := DefaultDisplayOrder
	if in.DisplayOrder != nil {
		order = *in.DisplayOrder
	}
	return ItemBase{
		ID:           identity.MenuItemID(menuID, string(kind), index),
		MenuID:       menuID,
		ShowWhen:     normalizeShowWhen(in.ShowWhen),
		DividerAfter: in.DividerAfter,
		DisplayOrder: order,
	}
}

func (s *service) menuIDForCode(ctx context.Context, code string) uuid.UUID {
	if existing, err := s.repo.GetByCode(ctx, code); err == nil {
		return existing.ID
	}
	normalized, err := slug.Normalize(code)
	if err != nil || normalized == "" {
		normalized = strings.TrimSpace(code)
	}
	return identity.MenuID(normalized)
}

func (s *service) pageRef(ctx context.Context, id *uuid.UUID, pageSlug string) (*uuid.UUID, error) {
	if id != nil && *id != uuid.Nil {
		out := *id
		return &out, nil
	}
	pageSlug = strings.TrimSpace(pageSlug)
	if pageSlug == "" {
		return nil, nil
	}
	if s.pages == nil {
		return nil, fmt.Errorf("page %q cannot be resolved without a page lookup", pageSlug)
	}
	page, err := s.pages.GetBySlug(ctx, pageSlug)
	if err != nil {
		return nil, err
	}
	out := page.ID
	return &out, nil
}

func addLookupError(errs validation.Errors, collection string, index int, err error) {
	items, _ := errs[collection].(validation.Errors)
	if items == nil {
		items = validation.Errors{}
		errs[collection] = items
	}
	items[fmt.Sprint(index)] = validation.Errors{
		"link_page": validation.NewError("validation_page_not_found", err.Error()),
	}
}
