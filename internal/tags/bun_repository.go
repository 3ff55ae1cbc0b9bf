package tags

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

const tagNamespace = "tag"

// BunRepository reads tags through go-repository-bun (optionally cached)
// and writes taggings with plain bun queries.
type BunRepository struct {
	db           *bun.DB
	tags         repository.Repository[*Tag]
	cacheService cache.CacheService
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	r := &BunRepository{db: db, tags: NewTagRepository(db)}
	if cacheService != nil && serializer != nil {
		r.tags = repositorycache.New(r.tags, cacheService, serializer)
		r.cacheService = cacheService
	}
	return r
}

func (r *BunRepository) Create(ctx context.Context, tag *Tag) (*Tag, error) {
	created, err := r.tags.Create(ctx, tag)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "unique") {
			return nil, fmt.Errorf("%w: %v", ErrSlugExists, err)
		}
		return nil, err
	}
	return created, r.invalidate(ctx)
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*Tagging)(nil)).Where("tag_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model((*Tag)(nil)).Where("id = ?", id).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("tag repository: delete %s: %w", id, err)
	}
	return r.invalidate(ctx)
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Tag, error) {
	tag, err := r.tags.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return tag, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, set, slug string) (*Tag, error) {
	records, _, err := r.tags.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.tag_set = ?", set).Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, set+"/"+slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Key: set + "/" + slug}
	}
	return records[0], nil
}

func (r *BunRepository) ListBySlugs(ctx context.Context, set string, slugs []string) ([]*Tag, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	records, _, err := r.tags.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.tag_set = ?", set).
				Where("?TableAlias.slug IN (?)", bun.In(slugs)).
				OrderExpr("?TableAlias.tag_type ASC, ?TableAlias.name ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) ListInUse(ctx context.Context, set string, typ *Type) ([]*Tag, error) {
	records, _, err := r.tags.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("?TableAlias.tag_set = ?", set).
				Where("EXISTS (SELECT 1 FROM taggings AS tgu WHERE tgu.tag_id = ?TableAlias.id)")
			if typ != nil {
				q = q.Where("?TableAlias.tag_type = ?", int(*typ))
			}
			return q.OrderExpr("?TableAlias.tag_type ASC, ?TableAlias.name ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) Assign(ctx context.Context, pageID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	for _, id := range tagIDs {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	rows := make([]*Tagging, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, &Tagging{TagID: id, PageID: pageID})
	}
	if _, err := r.db.NewInsert().Model(&rows).Ignore().Exec(ctx); err != nil {
		return fmt.Errorf("tag repository: assign: %w", err)
	}
	return r.invalidate(ctx)
}

func (r *BunRepository) Unassign(ctx context.Context, pageID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := r.db.NewDelete().
		Model((*Tagging)(nil)).
		Where("page_id = ?", pageID).
		Where("tag_id IN (?)", bun.In(tagIDs)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tag repository: unassign: %w", err)
	}
	return r.invalidate(ctx)
}

func (r *BunRepository) UnassignPage(ctx context.Context, pageID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Tagging)(nil)).
		Where("page_id = ?", pageID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tag repository: unassign page: %w", err)
	}
	return r.invalidate(ctx)
}

func (r *BunRepository) MatchCounts(ctx context.Context, tagIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int)
	if len(tagIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		PageID  uuid.UUID `bun:"page_id"`
		Matches int       `bun:"matches"`
	}
	err := r.db.NewSelect().
		Model((*Tagging)(nil)).
		Column("page_id").
		ColumnExpr("COUNT(*) AS matches").
		Where("tag_id IN (?)", bun.In(tagIDs)).
		Group("page_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("tag repository: match counts: %w", err)
	}
	for _, row := range rows {
		counts[row.PageID] = row.Matches
	}
	return counts, nil
}

func (r *BunRepository) DeleteUnused(ctx context.Context, set string) (int, error) {
	res, err := r.db.NewDelete().
		Model((*Tag)(nil)).
		Where("tag_set = ?", set).
		Where("id NOT IN (SELECT tag_id FROM taggings)").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("tag repository: delete unused: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		if err := r.invalidate(ctx); err != nil {
			return int(n), err
		}
	}
	return int(n), nil
}

func (r *BunRepository) invalidate(ctx context.Context) error {
	if r.cacheService == nil {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, tagNamespace+cache.KeySeparator)
}

func mapRepositoryError(err error, key string) error {
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("tag repository error: %w", err)
}
