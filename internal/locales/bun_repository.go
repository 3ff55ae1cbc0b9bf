package locales

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/enzedonline/enzedonline-sub000/internal/identity"
)

// BunRepository implements Repository on bun with an optional read cache.
type BunRepository struct {
	repo repository.Repository[*Locale]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewLocaleRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunRepository{repo: base}
}

func (r *BunRepository) Create(ctx context.Context, locale *Locale) (*Locale, error) {
	locale.Code = Normalize(locale.Code)
	if locale.ID == uuid.Nil {
		locale.ID = identity.LocaleID(locale.Code)
	}
	return r.repo.Create(ctx, locale)
}

func (r *BunRepository) GetByCode(ctx context.Context, code string) (*Locale, error) {
	code = Normalize(code)
	record, err := r.repo.GetByIdentifier(ctx, code)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, &NotFoundError{Code: code}
		}
		return nil, fmt.Errorf("locale repository error: %w", err)
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Locale, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.code ASC")
		}),
	)
	return records, err
}
