package pages

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrPageNotFound = errors.New("pages: page not found")
	ErrSlugRequired = errors.New("pages: slug is required")
	ErrSlugExists   = errors.New("pages: slug already exists")
	ErrParentSelf   = errors.New("pages: page cannot be its own parent")
)

// Repository is the page store navigation reads from.
type Repository interface {
	Create(ctx context.Context, page *Page) (*Page, error)
	Update(ctx context.Context, page *Page) (*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	ListChildren(ctx context.Context, parentID uuid.UUID, query ChildQuery) ([]*Page, error)
}

// NotFoundError reports a missing page by id or slug.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("page %q not found", e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrPageNotFound
}

func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Page) string {
			return p.Slug
		},
	})
}

func NewPageTranslationRepository(db *bun.DB) repository.Repository[*PageTranslation] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PageTranslation]{
		NewRecord: func() *PageTranslation { return &PageTranslation{} },
		GetID: func(tr *PageTranslation) uuid.UUID {
			return tr.ID
		},
		SetID: func(tr *PageTranslation, id uuid.UUID) {
			tr.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(tr *PageTranslation) string {
			return tr.ID.String()
		},
	})
}

// filterChildren applies query to candidates in memory. Unpublished
// timestamps sort after published ones; slug breaks ties.
func filterChildren(candidates []*Page, query ChildQuery) []*Page {
	out := make([]*Page, 0, len(candidates))
	for _, p := range candidates {
		if query.LiveOnly && !p.Live {
			continue
		}
		if query.PublicOnly && !p.Public {
			continue
		}
		if query.MenuVisibleOnly && !p.ShowInMenus {
			continue
		}
		out = append(out, p)
	}

	order := query.OrderBy
	if !order.Valid() {
		order = DefaultOrder
	}
	slices.SortStableFunc(out, func(a, b *Page) int {
		var c int
		switch order {
		case OrderLastPublishedDesc:
			c = compareTimes(b.LastPublishedAt, a.LastPublishedAt, true)
		case OrderFirstPublishedAsc:
			c = compareTimes(a.FirstPublishedAt, b.FirstPublishedAt, false)
		default:
			c = compareTimes(b.FirstPublishedAt, a.FirstPublishedAt, true)
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.Slug, b.Slug)
	})

	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out
}

// compareTimes orders x before y; nil values always sort last. swapped
// tells it the arguments were reversed for a descending sort.
func compareTimes(x, y *time.Time, swapped bool) int {
	switch {
	case x == nil && y == nil:
		return 0
	case x == nil:
		if swapped {
			return -1
		}
		return 1
	case y == nil:
		if swapped {
			return 1
		}
		return -1
	}
	return x.Compare(*y)
}
