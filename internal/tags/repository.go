package tags

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrTagNotFound  = errors.New("tags: tag not found")
	ErrSlugExists   = errors.New("tags: slug already exists in set")
	ErrSlugInvalid  = errors.New("tags: slug may only contain letters, digits, hyphens and underscores")
	ErrNameRequired = errors.New("tags: name is required")
	ErrSetRequired  = errors.New("tags: set is required")
	ErrTypeInvalid  = errors.New("tags: unknown tag type")
)

type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tag %q not found", e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrTagNotFound
}

// Repository stores tags and page taggings.
type Repository interface {
	Create(ctx context.Context, tag *Tag) (*Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tag, error)
	GetBySlug(ctx context.Context, set, slug string) (*Tag, error)
	ListBySlugs(ctx context.Context, set string, slugs []string) ([]*Tag, error)
	// ListInUse returns tags of set with at least one tagging, optionally
	// restricted to one type, ordered by type then name.
	ListInUse(ctx context.Context, set string, typ *Type) ([]*Tag, error)

	Assign(ctx context.Context, pageID uuid.UUID, tagIDs []uuid.UUID) error
	Unassign(ctx context.Context, pageID uuid.UUID, tagIDs []uuid.UUID) error
	// UnassignPage drops every tagging of pageID.
	UnassignPage(ctx context.Context, pageID uuid.UUID) error
	// MatchCounts maps page ids to how many of tagIDs they carry.
	MatchCounts(ctx context.Context, tagIDs []uuid.UUID) (map[uuid.UUID]int, error)
	DeleteUnused(ctx context.Context, set string) (int, error)
}

func NewTagRepository(db *bun.DB) repository.Repository[*Tag] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Tag]{
		NewRecord: func() *Tag { return &Tag{} },
		GetID: func(t *Tag) uuid.UUID {
			return t.ID
		},
		SetID: func(t *Tag, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(t *Tag) string {
			return t.ID.String()
		},
	})
}

func sortTags(tags []*Tag) {
	slices.SortFunc(tags, func(a, b *Tag) int {
		if a.Type != b.Type {
			return int(a.Type) - int(b.Type)
		}
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Slug, b.Slug)
	})
}
