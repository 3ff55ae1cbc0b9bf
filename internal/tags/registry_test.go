package tags

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/internal/pages"
)

func newRegistry() *Registry {
	return NewRegistry(NewMemoryRepository())
}

func mustCreate(t *testing.T, r *Registry, req CreateTagRequest) *Tag {
	t.Helper()
	tag, err := r.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create %+v: %v", req, err)
	}
	return tag
}

func TestCreateTag(t *testing.T) {
	r := newRegistry()
	ctx := context.Background()

	tag := mustCreate(t, r, CreateTagRequest{Set: "travel", Name: "South Island"})
	if tag.Slug != "south-island" || tag.Type != TypeKeyword {
		t.Fatalf("unexpected tag %+v", tag)
	}
	unicodeTag := mustCreate(t, r, CreateTagRequest{Set: "travel", Name: "Aotearoa", Slug: "āotearoa_北島"})
	if unicodeTag.Slug != "āotearoa_北島" {
		t.Fatalf("unicode slug not kept: %q", unicodeTag.Slug)
	}

	if _, err := r.Create(ctx, CreateTagRequest{Set: "travel", Name: "Dup", Slug: "south-island"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}
	if _, err := r.Create(ctx, CreateTagRequest{Set: "recipes", Name: "South Island"}); err != nil {
		t.Fatalf("same slug in another set should be allowed: %v", err)
	}
	if _, err := r.Create(ctx, CreateTagRequest{Set: "travel", Name: "Bad", Slug: "no spaces"}); !errors.Is(err, ErrSlugInvalid) {
		t.Fatalf("expected ErrSlugInvalid, got %v", err)
	}
	if _, err := r.Create(ctx, CreateTagRequest{Set: "travel", Name: "Odd", Type: 99}); !errors.Is(err, ErrTypeInvalid) {
		t.Fatalf("expected ErrTypeInvalid, got %v", err)
	}
	if _, err := r.Create(ctx, CreateTagRequest{Set: "travel"}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestInUseAndCleanup(t *testing.T) {
	r := newRegistry()
	ctx := context.Background()
	keyword := mustCreate(t, r, CreateTagRequest{Set: "recipes", Name: "Quick"})
	category := mustCreate(t, r, CreateTagRequest{Set: "recipes", Name: "Dessert", Type: TypeCategory})
	cuisine := mustCreate(t, r, CreateTagRequest{Set: "recipes", Name: "Thai", Type: TypeCuisine})
	unused := mustCreate(t, r, CreateTagRequest{Set: "recipes", Name: "Abandoned"})

	page := uuid.New()
	if err := r.Assign(ctx, page, keyword.ID, category.ID, cuisine.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	inUse, err := r.InUse(ctx, "recipes")
	if err != nil {
		t.Fatalf("in use: %v", err)
	}
	var names []string
	for _, tag := range inUse {
		names = append(names, tag.Name)
	}
	if len(names) != 3 || names[0] != "Thai" || names[1] != "Dessert" || names[2] != "Quick" {
		t.Fatalf("expected type then name ordering, got %v", names)
	}

	cats, err := r.TypeInUse(ctx, "recipes", TypeCategory)
	if err != nil || len(cats) != 1 || cats[0].ID != category.ID {
		t.Fatalf("unexpected categories %v %v", cats, err)
	}

	if err := r.Unassign(ctx, page, cuisine.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	removed, err := r.CleanupUnused(ctx, "recipes")
	if err != nil || removed != 2 {
		t.Fatalf("expected 2 removed, got %d %v", removed, err)
	}
	if _, err := r.Get(ctx, unused.ID); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected unused tag gone, got %v", err)
	}
	if _, err := r.Get(ctx, keyword.ID); err != nil {
		t.Fatalf("used tag removed: %v", err)
	}
}

func TestDictsForSlugs(t *testing.T) {
	r := newRegistry()
	mustCreate(t, r, CreateTagRequest{Set: "travel", Name: "Hiking"})
	mustCreate(t, r, CreateTagRequest{Set: "travel", Name: "Coast"})

	got, err := r.DictsForSlugs(context.Background(), "travel", []string{"coast", "", "missing", "hiking", "coast"})
	if err != nil {
		t.Fatalf("dicts: %v", err)
	}
	want := []TagRef{{Name: "Coast", Slug: "coast"}, {Name: "Hiking", Slug: "hiking"}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got, _ := r.DictsForSlugs(context.Background(), "travel", nil); len(got) != 0 {
		t.Fatalf("expected empty result")
	}
}

func TestFilterPages(t *testing.T) {
	r := newRegistry()
	ctx := context.Background()
	hiking := mustCreate(t, r, CreateTagRequest{Set: "travel", Name: "Hiking"})
	coast := mustCreate(t, r, CreateTagRequest{Set: "travel", Name: "Coast"})

	at := func(day int) *time.Time {
		v := time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC)
		return &v
	}
	both := &pages.Page{ID: uuid.New(), Slug: "both", FirstPublishedAt: at(1)}
	newer := &pages.Page{ID: uuid.New(), Slug: "newer", FirstPublishedAt: at(9)}
	older := &pages.Page{ID: uuid.New(), Slug: "older", FirstPublishedAt: at(2)}
	none := &pages.Page{ID: uuid.New(), Slug: "none", FirstPublishedAt: at(5)}

	for page, tags := range map[*pages.Page][]uuid.UUID{
		both:  {hiking.ID, coast.ID},
		newer: {coast.ID},
		older: {hiking.ID},
	} {
		if err := r.Assign(ctx, page.ID, tags...); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	got, err := r.FilterPages(ctx, "travel", SplitSlugs("hiking,coast"), []*pages.Page{none, older, newer, both})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	var slugs []string
	for _, p := range got {
		slugs = append(slugs, p.Slug)
	}
	if len(slugs) != 3 || slugs[0] != "both" || slugs[1] != "newer" || slugs[2] != "older" {
		t.Fatalf("unexpected order %v", slugs)
	}
}
