package pages

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	pageNamespace        = "page"
	translationNamespace = "page_translation"
)

// BunRepository implements Repository on bun. Translations are written in
// the same transaction as their page.
type BunRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Page]
	translations repository.Repository[*PageTranslation]
	cacheService cache.CacheService
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	r := &BunRepository{
		db:           db,
		repo:         NewPageRepository(db),
		translations: NewPageTranslationRepository(db),
	}
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.New(r.repo, cacheService, serializer)
		r.translations = repositorycache.New(r.translations, cacheService, serializer)
		r.cacheService = cacheService
	}
	return r
}

func (r *BunRepository) Create(ctx context.Context, page *Page) (*Page, error) {
	if page.ID == uuid.Nil {
		page.ID = uuid.New()
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := r.repo.CreateTx(ctx, tx, page)
		if err != nil {
			return fmt.Errorf("page repository: create %s: %w", page.Slug, err)
		}
		return replaceTranslations(ctx, tx, created.ID, page.Translations)
	})
	if err != nil {
		return nil, err
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, page.ID)
}

func (r *BunRepository) Update(ctx context.Context, page *Page) (*Page, error) {
	page.UpdatedAt = time.Now().UTC()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := r.repo.UpdateTx(ctx, tx, page,
			repository.UpdateByID(page.ID.String()),
			repository.UpdateColumns(
				"parent_id",
				"slug",
				"live",
				"public",
				"show_in_menus",
				"first_published_at",
				"last_published_at",
				"updated_at",
			),
		)
		if err != nil {
			return mapRepositoryError(err, page.ID.String())
		}
		if page.Translations == nil {
			return nil
		}
		return replaceTranslations(ctx, tx, page.ID, page.Translations)
	})
	if err != nil {
		return nil, err
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, page.ID)
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.repo.GetByID(ctx, id.String()); err != nil {
		return mapRepositoryError(err, id.String())
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*PageTranslation)(nil)).
			Where("?TableAlias.page_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete page translations: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*Page)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete page: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.InvalidateCache(ctx)
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	page, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return r.attachTranslations(ctx, page)
}

func (r *BunRepository) GetBySlug(ctx context.Context, slug string) (*Page, error) {
	page, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, slug)
	}
	return r.attachTranslations(ctx, page)
}

func (r *BunRepository) ListChildren(ctx context.Context, parentID uuid.UUID, query ChildQuery) ([]*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("?TableAlias.parent_id = ?", parentID)
			if query.LiveOnly {
				q = q.Where("?TableAlias.live = ?", true)
			}
			if query.PublicOnly {
				q = q.Where("?TableAlias.public = ?", true)
			}
			if query.MenuVisibleOnly {
				q = q.Where("?TableAlias.show_in_menus = ?", true)
			}
			if query.Limit > 0 {
				q = q.Limit(query.Limit)
			}
			return orderChildren(q, query.OrderBy)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("page repository: list children of %s: %w", parentID, err)
	}
	for i, page := range records {
		if records[i], err = r.attachTranslations(ctx, page); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// InvalidateCache drops cached page and translation reads.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil {
		return nil
	}
	for _, ns := range []string{pageNamespace, translationNamespace} {
		if err := r.cacheService.DeleteByPrefix(ctx, ns+cache.KeySeparator); err != nil {
			return err
		}
	}
	return nil
}

func orderChildren(q *bun.SelectQuery, order OrderBy) *bun.SelectQuery {
	switch order {
	case OrderLastPublishedDesc:
		q = q.OrderExpr("?TableAlias.last_published_at IS NULL").
			OrderExpr("?TableAlias.last_published_at DESC")
	case OrderFirstPublishedAsc:
		q = q.OrderExpr("?TableAlias.first_published_at IS NULL").
			OrderExpr("?TableAlias.first_published_at ASC")
	default:
		q = q.OrderExpr("?TableAlias.first_published_at IS NULL").
			OrderExpr("?TableAlias.first_published_at DESC")
	}
	return q.OrderExpr("?TableAlias.slug ASC")
}

func (r *BunRepository) attachTranslations(ctx context.Context, page *Page) (*Page, error) {
	records, _, err := r.translations.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", page.ID).
				OrderExpr("?TableAlias.locale ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("page repository: translations for %s: %w", page.ID, err)
	}
	out := clonePage(page)
	out.Translations = records
	return out, nil
}

// replaceTranslations swaps the stored translations of a page inside tx.
func replaceTranslations(ctx context.Context, tx bun.IDB, pageID uuid.UUID, translations []*PageTranslation) error {
	if _, err := tx.NewDelete().
		Model((*PageTranslation)(nil)).
		Where("?TableAlias.page_id = ?", pageID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete page translations: %w", err)
	}

	rows := make([]*PageTranslation, 0, len(translations))
	for _, tr := range translations {
		if tr == nil {
			continue
		}
		copied := *tr
		copied.PageID = pageID
		if copied.ID == uuid.Nil {
			copied.ID = uuid.New()
		}
		rows = append(rows, &copied)
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert page translations: %w", err)
	}
	return nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("page repository error: %w", err)
}
