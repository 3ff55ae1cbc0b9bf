package menus

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	menuNamespace         = "menu"
	linkItemNamespace     = "menu_link_item"
	subMenuItemNamespace  = "menu_submenu_item"
	autoFillItemNamespace = "menu_autofill_item"
)

// BunMenuRepository implements MenuRepository with go-repository-bun reads
// and transactional item writes.
type BunMenuRepository struct {
	db        *bun.DB
	menus     repository.Repository[*Menu]
	links     repository.Repository[*LinkItem]
	subMenus  repository.Repository[*SubMenuItem]
	autoFills repository.Repository[*AutoFillItem]

	cacheService cache.CacheService
}

func NewBunMenuRepository(db *bun.DB) *BunMenuRepository {
	return NewBunMenuRepositoryWithCache(db, nil, nil)
}

func NewBunMenuRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunMenuRepository {
	r := &BunMenuRepository{
		db:        db,
		menus:     NewMenuRepository(db),
		links:     NewLinkItemRepository(db),
		subMenus:  NewSubMenuItemRepository(db),
		autoFills: NewAutoFillItemRepository(db),
	}
	if cacheService != nil && serializer != nil {
		r.menus = repositorycache.New(r.menus, cacheService, serializer)
		r.links = repositorycache.New(r.links, cacheService, serializer)
		r.subMenus = repositorycache.New(r.subMenus, cacheService, serializer)
		r.autoFills = repositorycache.New(r.autoFills, cacheService, serializer)
		r.cacheService = cacheService
	}
	return r
}

func (r *BunMenuRepository) Create(ctx context.Context, menu *Menu) (*Menu, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(menu).Exec(ctx); err != nil {
			return fmt.Errorf("insert menu: %w", err)
		}
		return insertItems(ctx, tx, menu)
	})
	if err != nil {
		return nil, r.mapWriteError(err)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, menu.ID)
}

func (r *BunMenuRepository) Update(ctx context.Context, menu *Menu) (*Menu, error) {
	if _, err := r.menus.GetByID(ctx, menu.ID.String()); err != nil {
		return nil, mapRepositoryError(err, "menu", menu.ID.String())
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model(menu).
			Column("code", "title", "icon", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("update menu: %w", err)
		}
		if err := deleteItems(ctx, tx, menu.ID); err != nil {
			return err
		}
		return insertItems(ctx, tx, menu)
	})
	if err != nil {
		return nil, r.mapWriteError(err)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, menu.ID)
}

func (r *BunMenuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.menus.GetByID(ctx, id.String()); err != nil {
		return mapRepositoryError(err, "menu", id.String())
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := deleteItems(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*Menu)(nil)).Where("?TableAlias.id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete menu: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.InvalidateCache(ctx)
}

func (r *BunMenuRepository) GetByID(ctx context.Context, id uuid.UUID) (*Menu, error) {
	record, err := r.menus.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "menu", id.String())
	}
	return r.hydrate(ctx, record)
}

func (r *BunMenuRepository) GetByCode(ctx context.Context, code string) (*Menu, error) {
	record, err := r.menus.GetByIdentifier(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, mapRepositoryError(err, "menu", code)
	}
	return r.hydrate(ctx, record)
}

func (r *BunMenuRepository) GetByTitle(ctx context.Context, title string) (*Menu, error) {
	title = strings.TrimSpace(title)
	records, _, err := r.menus.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(?TableAlias.title) = LOWER(?)", title).
				OrderExpr("?TableAlias.code ASC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("menu repository error: %w", err)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "menu", Key: title}
	}
	return r.hydrate(ctx, records[0])
}

func (r *BunMenuRepository) List(ctx context.Context) ([]*Menu, error) {
	records, _, err := r.menus.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.code ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	out := make([]*Menu, 0, len(records))
	for _, record := range records {
		menu, err := r.hydrate(ctx, record)
		if err != nil {
			return nil, err
		}
		out = append(out, menu)
	}
	return out, nil
}

func (r *BunMenuRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil {
		return nil
	}
	for _, ns := range []string{menuNamespace, linkItemNamespace, subMenuItemNamespace, autoFillItemNamespace} {
		if err := r.cacheService.DeleteByPrefix(ctx, cachePrefix(ns)); err != nil {
			return err
		}
	}
	return nil
}

func (r *BunMenuRepository) hydrate(ctx context.Context, record *Menu) (*Menu, error) {
	menu := cloneMenu(record)
	byMenu := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.menu_id = ?", menu.ID).
			OrderExpr("?TableAlias.display_order ASC")
	})

	var err error
	if menu.LinkItems, _, err = r.links.List(ctx, byMenu); err != nil {
		return nil, fmt.Errorf("menu repository: link items for %s: %w", menu.ID, err)
	}
	if menu.SubMenuItems, _, err = r.subMenus.List(ctx, byMenu); err != nil {
		return nil, fmt.Errorf("menu repository: submenu items for %s: %w", menu.ID, err)
	}
	if menu.AutoFillItems, _, err = r.autoFills.List(ctx, byMenu); err != nil {
		return nil, fmt.Errorf("menu repository: autofill items for %s: %w", menu.ID, err)
	}
	return menu, nil
}

func insertItems(ctx context.Context, tx bun.Tx, menu *Menu) error {
	if len(menu.LinkItems) > 0 {
		if _, err := tx.NewInsert().Model(&menu.LinkItems).Exec(ctx); err != nil {
			return fmt.Errorf("insert link items: %w", err)
		}
	}
	if len(menu.SubMenuItems) > 0 {
		if _, err := tx.NewInsert().Model(&menu.SubMenuItems).Exec(ctx); err != nil {
			return fmt.Errorf("insert submenu items: %w", err)
		}
	}
	if len(menu.AutoFillItems) > 0 {
		if _, err := tx.NewInsert().Model(&menu.AutoFillItems).Exec(ctx); err != nil {
			return fmt.Errorf("insert autofill items: %w", err)
		}
	}
	return nil
}

func deleteItems(ctx context.Context, tx bun.Tx, menuID uuid.UUID) error {
	for _, model := range []any{(*LinkItem)(nil), (*SubMenuItem)(nil), (*AutoFillItem)(nil)} {
		if _, err := tx.NewDelete().
			Model(model).
			Where("?TableAlias.menu_id = ?", menuID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete menu items: %w", err)
		}
	}
	return nil
}

// mapWriteError turns unique-constraint failures on code into
// ErrMenuCodeExists; both sqlite and postgres name the column.
func (r *BunMenuRepository) mapWriteError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") && strings.Contains(msg, "code") {
		return fmt.Errorf("%w: %v", ErrMenuCodeExists, err)
	}
	return err
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func cachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}
