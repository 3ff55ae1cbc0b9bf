package di

import (
	"context"
	"errors"
	"testing"

	"github.com/enzedonline/enzedonline-sub000/internal/fragments"
	"github.com/enzedonline/enzedonline-sub000/internal/logging/gologger"
	"github.com/enzedonline/enzedonline-sub000/internal/menus"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/internal/runtimeconfig"
	"github.com/enzedonline/enzedonline-sub000/internal/tags"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
	"github.com/enzedonline/enzedonline-sub000/pkg/testsupport"
)

func newContainer(t *testing.T, cfg runtimeconfig.Config, opts ...Option) *Container {
	t.Helper()
	container, err := NewContainer(cfg, opts...)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	return container
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.DefaultLocale = ""
	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrDefaultLocaleRequired) {
		t.Fatalf("expected ErrDefaultLocaleRequired, got %v", err)
	}
}

func TestNewContainerRequiresDBForSQLDrivers(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = runtimeconfig.StorageSQLite
	cfg.Storage.DSN = "file::memory:"
	if _, err := NewContainer(cfg); !errors.Is(err, ErrSQLStorageRequiresDB) {
		t.Fatalf("expected ErrSQLStorageRequiresDB, got %v", err)
	}
}

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container := newContainer(t, cfg)

	provider, ok := container.loggerProvider.(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.loggerProvider)
	}
	if logger := provider.GetLogger("site.test"); logger == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}

func TestConfigureLoggerProviderDefaultsToConsole(t *testing.T) {
	container := newContainer(t, runtimeconfig.DefaultConfig(), WithLoggerProvider(nil))
	if container.loggerProvider == nil {
		t.Fatal("expected console provider")
	}
	if _, ok := container.loggerProvider.(*gologger.Provider); ok {
		t.Fatal("console config must not build the go-logger provider")
	}
}

func TestMemoryWiringSharesFragmentStore(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Locales = []string{"en", "es"}
	container := newContainer(t, cfg)
	ctx := context.Background()

	if got := container.Locales().Codes(); len(got) != 2 || got[0] != "en" {
		t.Fatalf("unexpected locales %v", got)
	}

	store, ok := container.FragmentStore().(*fragments.MemoryStore)
	if !ok {
		t.Fatalf("expected memory fragment store, got %T", container.FragmentStore())
	}
	if err := store.Set(ctx, fragments.Key(fragments.NameMenu, "main", "en"), []byte("[]"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, err := container.MenuService().CreateMenu(ctx, menus.SaveMenuRequest{Title: "Main"}); err != nil {
		t.Fatalf("create menu: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("menu write must purge cached menu fragments, %d left", store.Len())
	}
}

func TestCacheDisabledSkipsFragments(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = false
	container := newContainer(t, cfg)
	if container.FragmentStore() != nil {
		t.Fatalf("expected no fragment store, got %T", container.FragmentStore())
	}
	if _, err := container.MenuService().CreateMenu(context.Background(), menus.SaveMenuRequest{Title: "Main"}); err != nil {
		t.Fatalf("create menu without cache: %v", err)
	}
}

func TestPageDeleteCleansConfiguredTagSets(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Tags.Sets = []string{"blog"}
	container := newContainer(t, cfg)
	ctx := context.Background()

	page, err := container.PageService().Create(ctx, pages.SavePageRequest{Slug: "post", Live: true})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	registry := container.TagRegistry()
	tag, err := registry.Create(ctx, tags.CreateTagRequest{Set: "blog", Name: "Travel"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if err := registry.Assign(ctx, page.ID, tag.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := registry.Create(ctx, tags.CreateTagRequest{Set: "blog", Name: "Unused"}); err != nil {
		t.Fatalf("create unused tag: %v", err)
	}

	if err := container.PageService().Delete(ctx, page.ID); err != nil {
		t.Fatalf("delete page: %v", err)
	}
	for _, slug := range []string{"unused", "travel"} {
		if _, err := registry.GetBySlug(ctx, "blog", slug); !errors.Is(err, tags.ErrTagNotFound) {
			t.Fatalf("expected tag %s to be cleaned up, got %v", slug, err)
		}
	}
}

func TestBunWiringResolvesMenus(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = runtimeconfig.StorageSQLite
	cfg.Storage.DSN = "file::memory:"
	cfg.Locales = []string{"en", "es"}
	container := newContainer(t, cfg, WithBunDB(testsupport.NewMigratedDB(t)))
	ctx := context.Background()

	if _, err := container.PageService().Create(ctx, pages.SavePageRequest{
		Slug:   "about",
		Live:   true,
		Public: true,
		Translations: []pages.TranslationInput{
			{Locale: "en", Title: "About", Path: "/about/"},
		},
	}); err != nil {
		t.Fatalf("create page: %v", err)
	}
	if _, err := container.MenuService().CreateMenu(ctx, menus.SaveMenuRequest{
		Title: "Main",
		Links: []menus.LinkItemInput{{PageSlug: "about"}},
	}); err != nil {
		t.Fatalf("create menu: %v", err)
	}

	entries, err := container.MenuService().ResolveMenu(ctx, menus.RefCode("main"), interfaces.RequestContext{Locale: "es", Path: "/"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(entries) != 1 || entries[0].URL != "/en/about/" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}
