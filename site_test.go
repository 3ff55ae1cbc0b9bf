package site_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	site "github.com/enzedonline/enzedonline-sub000"
	"github.com/enzedonline/enzedonline-sub000/internal/menus"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/pkg/testsupport"
)

func newModule(t *testing.T, opts ...site.Option) *site.Module {
	t.Helper()
	cfg := site.DefaultConfig()
	cfg.Locales = []string{"en", "es"}
	module, err := site.New(cfg, opts...)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func seedPages(t *testing.T, module *site.Module) {
	t.Helper()
	ctx := context.Background()
	services, err := module.Pages().Create(ctx, pages.SavePageRequest{
		Slug:        "services",
		Live:        true,
		Public:      true,
		ShowInMenus: true,
		Translations: []pages.TranslationInput{
			{Locale: "en", Title: "Services", Path: "/services/"},
			{Locale: "es", Title: "Servicios", Path: "/servicios/"},
		},
	})
	if err != nil {
		t.Fatalf("create services: %v", err)
	}
	if _, err := module.Pages().Create(ctx, pages.SavePageRequest{
		ParentID:    &services.ID,
		Slug:        "consulting",
		Live:        true,
		Public:      true,
		ShowInMenus: true,
		Translations: []pages.TranslationInput{
			{Locale: "en", Title: "Consulting", Path: "/services/consulting/"},
		},
	}); err != nil {
		t.Fatalf("create consulting: %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := site.DefaultConfig()
	cfg.Storage.Driver = "mongo"
	if _, err := site.New(cfg); !errors.Is(err, site.ErrStorageDriverInvalid) {
		t.Fatalf("expected ErrStorageDriverInvalid, got %v", err)
	}
}

func TestSeedMenusFromDocuments(t *testing.T) {
	module := newModule(t)
	seedPages(t, module)
	ctx := context.Background()

	docs, err := site.LoadMenuDocuments(ctx, os.DirFS("testdata"), "menus")
	if err != nil {
		t.Fatalf("load documents: %v", err)
	}
	// footer.md sorts first; main.md refers to it by code either way.
	if err := site.SeedMenus(ctx, module, docs); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := site.SeedMenus(ctx, module, docs); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	all, err := module.Menus().ListMenus(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("reseeding must not duplicate menus, got %d", len(all))
	}

	entries, err := module.Menus().ResolveMenu(ctx, menus.RefCode("main"), site.RequestContext{Locale: "es"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"/es/", "/es/servicios/", "/en/services/consulting/", ""}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), entries)
	}
	for i, entry := range entries {
		if entry.URL != want[i] {
			t.Fatalf("entry %d (%s): expected url %q, got %q", i, entry.Title, want[i], entry.URL)
		}
	}
	if !entries[3].IsSubMenu || entries[3].Title != "Footer" {
		t.Fatalf("expected footer sub-menu last, got %+v", entries[3])
	}
}

func TestSeedMenusRequiresModule(t *testing.T) {
	if err := site.SeedMenus(context.Background(), nil, nil); !errors.Is(err, site.ErrSeedModuleRequired) {
		t.Fatalf("expected ErrSeedModuleRequired, got %v", err)
	}
}

func TestRouterServesNavigation(t *testing.T) {
	module := newModule(t, site.WithAuthenticator(func(r *http.Request) bool {
		return r.Header.Get("Authorization") != ""
	}))
	ctx := context.Background()
	doc, err := site.ParseMenuDocument([]byte("---\ncode: footer\ntitle: Footer\nitems:\n  - title: Contact\n    url: /contact/\n  - title: Members\n    url: /members/\n    show_when: logged_in\n---\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := site.SeedMenus(ctx, module, []*site.MenuDocument{doc}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	router := module.Router()
	anon := httptest.NewRecorder()
	router.ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/navigation/footer", nil))
	if anon.Code != http.StatusOK {
		t.Fatalf("anonymous request: %d %s", anon.Code, anon.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/navigation/footer", nil)
	req.Header.Set("Authorization", "Bearer x")
	authed := httptest.NewRecorder()
	router.ServeHTTP(authed, req)
	if authed.Code != http.StatusOK {
		t.Fatalf("authenticated request: %d %s", authed.Code, authed.Body.String())
	}
	if authed.Body.Len() <= anon.Body.Len() {
		t.Fatalf("authenticated navigation should include the members link:\nanon=%s\nauthed=%s", anon.Body.String(), authed.Body.String())
	}
}

func TestSQLiteModule(t *testing.T) {
	cfg := site.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = testsupport.MemoryDSN(t)
	module, err := site.New(cfg, site.WithBunDB(testsupport.NewMigratedDB(t)))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })

	seedPages(t, module)
	if _, err := module.Menus().CreateMenu(context.Background(), menus.SaveMenuRequest{
		Title: "Main",
		Links: []menus.LinkItemInput{{PageSlug: "services"}},
	}); err != nil {
		t.Fatalf("create menu: %v", err)
	}
	entries := module.Menus().Navigation(context.Background(), menus.RefCode("main"), site.RequestContext{Locale: "en"})
	if len(entries) != 1 || entries[0].URL != "/en/services/" || entries[0].Title != "Services" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}
