package navigationcmd

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/internal/fragments"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/internal/tags"
)

type countingMenus struct {
	calls int
}

func (c *countingMenus) InvalidateCache(context.Context) error {
	c.calls++
	return nil
}

func TestHandlersExecute(t *testing.T) {
	ctx := context.Background()
	store, err := fragments.NewMemoryStore(16)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	_ = store.Set(ctx, fragments.Key(fragments.NamePage, "about", "en"), []byte("x"), 0)
	_ = store.Set(ctx, fragments.Key(fragments.NamePage, "contact", "en"), []byte("x"), 0)

	registry := tags.NewRegistry(tags.NewMemoryRepository())
	if _, err := registry.Create(ctx, tags.CreateTagRequest{Set: "blog", Name: "Orphan"}); err != nil {
		t.Fatalf("create tag: %v", err)
	}

	menus := &countingMenus{}
	h := NewHandlers(Deps{Menus: menus, Pages: fragments.NewPurger(store), Tags: registry})

	if err := h.InvalidateMenuCache.Execute(ctx, InvalidateMenuCache{}); err != nil || menus.calls != 1 {
		t.Fatalf("invalidate: %v (calls %d)", err, menus.calls)
	}
	if err := h.PurgePageFragments.Execute(ctx, PurgePageFragments{Slug: "about"}); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one fragment left, got %d", store.Len())
	}
	if err := h.CleanupTags.Execute(ctx, CleanupTags{Set: "blog"}); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if inUse, _ := registry.InUse(ctx, "blog"); len(inUse) != 0 {
		t.Fatalf("unexpected tags %v", inUse)
	}
	if _, err := registry.GetBySlug(ctx, "blog", "orphan"); !errors.Is(err, tags.ErrTagNotFound) {
		t.Fatalf("expected orphan removed, got %v", err)
	}
}

func TestHandlersValidateMessages(t *testing.T) {
	h := NewHandlers(Deps{})
	err := h.PurgePageFragments.Execute(context.Background(), PurgePageFragments{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	err = h.CleanupTags.Execute(context.Background(), CleanupTags{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestHandlersMissingDependency(t *testing.T) {
	h := NewHandlers(Deps{})
	err := h.InvalidateMenuCache.Execute(context.Background(), InvalidateMenuCache{})
	if !errors.Is(err, ErrDependencyMissing) {
		t.Fatalf("expected ErrDependencyMissing, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestPageChangeHookDispatchesOnSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	registry := tags.NewRegistry(tags.NewMemoryRepository())
	menus := &countingMenus{}
	h := NewHandlers(Deps{Menus: menus, Tags: registry})
	t.Cleanup(h.Subscribe(0))

	svc := pages.NewService(pages.NewMemoryRepository(), pages.WithChangeHook(h.PageChangeHook("blog")))
	page, err := svc.Create(ctx, pages.SavePageRequest{Slug: "post", Live: true})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	if menus.calls != 1 {
		t.Fatalf("expected menus invalidated on create, got %d", menus.calls)
	}

	dropped, err := registry.Create(ctx, tags.CreateTagRequest{Set: "blog", Name: "Go"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	kept, err := registry.Create(ctx, tags.CreateTagRequest{Set: "blog", Name: "Travel"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if err := registry.Assign(ctx, page.ID, dropped.ID, kept.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := registry.Unassign(ctx, page.ID, dropped.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}

	if _, err := svc.Update(ctx, page.ID, pages.SavePageRequest{Slug: "post", Live: true}); err != nil {
		t.Fatalf("update page: %v", err)
	}
	if _, err := registry.Get(ctx, dropped.ID); !errors.Is(err, tags.ErrTagNotFound) {
		t.Fatalf("expected tag dropped by the save to be cleaned up, got %v", err)
	}
	if _, err := registry.Get(ctx, kept.ID); err != nil {
		t.Fatalf("tag still in use was removed: %v", err)
	}

	if err := svc.Delete(ctx, page.ID); err != nil {
		t.Fatalf("delete page: %v", err)
	}
	if _, err := registry.Get(ctx, kept.ID); !errors.Is(err, tags.ErrTagNotFound) {
		t.Fatalf("expected tag cleaned up after delete, got %v", err)
	}
	if menus.calls != 3 {
		t.Fatalf("expected one invalidation per page write, got %d", menus.calls)
	}
}

func TestPageChangeHookReportsMissingSubscription(t *testing.T) {
	hook := NewHandlers(Deps{}).PageChangeHook("blog")
	if err := hook(context.Background(), pages.ChangeEvent{Kind: pages.ChangeSaved, PageID: uuid.New()}); err == nil {
		t.Fatal("expected dispatch without subscribers to fail")
	}
}

func TestSubscribeDispatches(t *testing.T) {
	menus := &countingMenus{}
	unsubscribe := NewHandlers(Deps{Menus: menus}).Subscribe(0)
	t.Cleanup(unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), InvalidateMenuCache{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if menus.calls != 1 {
		t.Fatalf("expected one invalidation, got %d", menus.calls)
	}
}
