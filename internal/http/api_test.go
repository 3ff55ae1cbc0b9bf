package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/internal/fragments"
	"github.com/enzedonline/enzedonline-sub000/internal/layout"
	"github.com/enzedonline/enzedonline-sub000/internal/links"
	"github.com/enzedonline/enzedonline-sub000/internal/locales"
	"github.com/enzedonline/enzedonline-sub000/internal/menus"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/internal/tags"
	"github.com/enzedonline/enzedonline-sub000/pkg/testsupport"
)

type testEnv struct {
	handler http.Handler
	menus   menus.Service
	tags    *tags.Registry
	pages   *pages.MemoryRepository
	store   *fragments.MemoryStore
}

func setupAPI(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	registry := locales.NewRegistry("en", "en", "es")
	pageRepo := pages.NewMemoryRepository()

	day := func(n int) *time.Time {
		v := time.Date(2024, 3, n, 0, 0, 0, 0, time.UTC)
		return &v
	}
	create := func(slug string, parent *uuid.UUID, published int) *pages.Page {
		p, err := pageRepo.Create(ctx, &pages.Page{
			ID:               uuid.New(),
			ParentID:         parent,
			Slug:             slug,
			Live:             true,
			Public:           true,
			ShowInMenus:      true,
			FirstPublishedAt: day(published),
			Translations: []*pages.PageTranslation{
				{Locale: "en", Title: "EN " + slug, Path: "/" + slug + "/"},
				{Locale: "es", Title: "ES " + slug, Path: "/" + slug + "-es/"},
			},
		})
		if err != nil {
			t.Fatalf("create page: %v", err)
		}
		return p
	}
	source := create("services", nil, 1)
	create("consulting", &source.ID, 5)
	create("training", &source.ID, 3)
	create("archive", &source.ID, 2)

	store, err := fragments.NewMemoryStore(64)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	menuRepo := menus.NewMemoryMenuRepository()
	linker := links.NewResolver(pageRepo, links.WithLocalePrefixes(registry))
	resolver := menus.NewResolver(linker, pageRepo, menus.WithMenuLookup(menuRepo))
	menuSvc := menus.NewService(menuRepo, resolver,
		menus.WithPageLookup(pageRepo),
		menus.WithFragmentPurger(fragments.NewPurger(store)),
	)

	order := func(v int) *int { return &v }
	if _, err := menuSvc.CreateMenu(ctx, menus.SaveMenuRequest{
		Title: "Main",
		Links: []menus.LinkItemInput{
			{ItemInput: menus.ItemInput{DisplayOrder: order(10)}, Title: "Home", URL: "/"},
			{ItemInput: menus.ItemInput{DisplayOrder: order(30), ShowWhen: menus.ShowLoggedIn}, Title: "Account", URL: "/account/"},
		},
		SubMenus: []menus.SubMenuItemInput{
			{ItemInput: menus.ItemInput{DisplayOrder: order(40)}, MenuCode: "footer"},
		},
		AutoFills: []menus.AutoFillItemInput{
			{ItemInput: menus.ItemInput{DisplayOrder: order(20)}, PageSlug: "services", IncludeSourcePage: true, MaxItems: order(2)},
		},
	}); err != nil {
		t.Fatalf("create main menu: %v", err)
	}
	if _, err := menuSvc.CreateMenu(ctx, menus.SaveMenuRequest{
		Title: "Footer",
		Links: []menus.LinkItemInput{{Title: "Contact", URL: "/contact/"}},
	}); err != nil {
		t.Fatalf("create footer menu: %v", err)
	}

	tagRegistry := tags.NewRegistry(tags.NewMemoryRepository())
	api := NewAPI(menuSvc, tagRegistry, layout.NewValidator(), registry,
		WithAuthenticator(func(r *http.Request) bool { return r.Header.Get("X-User") != "" }),
		WithFragmentStore(store, time.Minute),
		WithPagination(Pagination{PerPage: 2, OnEachSide: 2, OnEnds: 1}),
		WithAlternates(pageRepo, linker),
	)
	return &testEnv{handler: api.Router(), menus: menuSvc, tags: tagRegistry, pages: pageRepo, store: store}
}

func doRequest(t *testing.T, h http.Handler, req *http.Request, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s", req.Method, req.URL, wantStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode body: %v\n%s", err, rec.Body.String())
	}
}

func TestNavigationEndpoint(t *testing.T) {
	env := setupAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/navigation/main?path=/en/services/", nil)
	rec := doRequest(t, env.handler, req, http.StatusOK)
	var resp navigationResponse
	decodeBody(t, rec, &resp)

	var want []string
	testsupport.Golden(t, "navigation_main.json", &want)
	want = append(want, "Footer")
	if len(resp.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), resp.Entries)
	}
	for i, entry := range resp.Entries {
		if entry.Title != want[i] {
			t.Fatalf("entry %d: expected %q, got %q", i, want[i], entry.Title)
		}
		if entry.Active != (entry.URL == "/en/services/") {
			t.Fatalf("unexpected active flag on %+v", entry)
		}
	}
	if resp.Locale != "en" {
		t.Fatalf("expected en locale, got %q", resp.Locale)
	}
	if env.store.Len() != 1 {
		t.Fatalf("expected cached navigation fragment, got %d", env.store.Len())
	}
}

func TestNavigationLocaleAndAuth(t *testing.T) {
	env := setupAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/navigation/main", nil)
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.5")
	req.Header.Set("X-User", "kiri")
	rec := doRequest(t, env.handler, req, http.StatusOK)
	var resp navigationResponse
	decodeBody(t, rec, &resp)
	if resp.Locale != "es" {
		t.Fatalf("expected negotiated es, got %q", resp.Locale)
	}
	var titles []string
	for _, e := range resp.Entries {
		titles = append(titles, e.Title)
	}
	if len(titles) != 6 || titles[1] != "ES services" || titles[4] != "Account" {
		t.Fatalf("unexpected entries %v", titles)
	}

	// Unknown ?locale= falls back to negotiation; known wins.
	req = httptest.NewRequest(http.MethodGet, "/navigation/main?locale=en", nil)
	req.Header.Set("Accept-Language", "es")
	decodeBody(t, doRequest(t, env.handler, req, http.StatusOK), &resp)
	if resp.Locale != "en" {
		t.Fatalf("expected explicit en, got %q", resp.Locale)
	}
}

func TestNavigationCachePurgedOnMenuWrite(t *testing.T) {
	env := setupAPI(t)
	doRequest(t, env.handler, httptest.NewRequest(http.MethodGet, "/navigation/footer", nil), http.StatusOK)
	if env.store.Len() != 1 {
		t.Fatalf("expected cached fragment")
	}

	footer, err := env.menus.GetMenuByCode(context.Background(), "footer")
	if err != nil {
		t.Fatalf("footer: %v", err)
	}
	if _, err := env.menus.UpdateMenu(context.Background(), footer.ID, menus.SaveMenuRequest{
		Title: "Footer",
		Links: []menus.LinkItemInput{{Title: "Imprint", URL: "/imprint/"}},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if env.store.Len() != 0 {
		t.Fatalf("expected purge after write, got %d", env.store.Len())
	}

	var resp navigationResponse
	decodeBody(t, doRequest(t, env.handler, httptest.NewRequest(http.MethodGet, "/navigation/footer", nil), http.StatusOK), &resp)
	if len(resp.Entries) != 1 || resp.Entries[0].Title != "Imprint" {
		t.Fatalf("expected fresh entries, got %+v", resp.Entries)
	}
}

func TestNavigationNotFoundAndTree(t *testing.T) {
	env := setupAPI(t)
	doRequest(t, env.handler, httptest.NewRequest(http.MethodGet, "/navigation/missing", nil), http.StatusNotFound)
	doRequest(t, env.handler, httptest.NewRequest(http.MethodGet, "/navigation/missing/tree", nil), http.StatusNotFound)

	rec := doRequest(t, env.handler, httptest.NewRequest(http.MethodGet, "/navigation/Main/tree", nil), http.StatusOK)
	var resp struct {
		Nodes []menus.Node `json:"nodes"`
	}
	decodeBody(t, rec, &resp)
	last := resp.Nodes[len(resp.Nodes)-1]
	if !last.IsSubMenu || len(last.Children) != 1 || last.Children[0].Title != "Contact" {
		t.Fatalf("expected expanded footer submenu, got %+v", last)
	}
}

func TestTagsEndpoint(t *testing.T) {
	env := setupAPI(t)
	ctx := context.Background()
	page := uuid.New()
	for _, req := range []tags.CreateTagRequest{
		{Set: "recipes", Name: "Thai", Type: tags.TypeCuisine},
		{Set: "recipes", Name: "Dessert", Type: tags.TypeCategory},
		{Set: "recipes", Name: "Quick"},
	} {
		tag, err := env.tags.Create(ctx, req)
		if err != nil {
			t.Fatalf("create tag: %v", err)
		}
		if err := env.tags.Assign(ctx, page, tag.ID); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	var resp tagsResponse
	decodeBody(t, doRequest(t, env.handler, httptest.NewRequest(http.MethodGet, "/tags/recipes?page=2", nil), http.StatusOK), &resp)
	if len(resp.Tags) != 1 || resp.Tags[0].Slug != "quick" || resp.Page.Number != 2 || resp.Page.NumPages != 2 {
		t.Fatalf("unexpected page %+v", resp)
	}

	decodeBody(t, doRequest(t, env.handler, httptest.NewRequest(http.MethodGet, "/tags/recipes?type=cuisine", nil), http.StatusOK), &resp)
	if len(resp.Tags) != 1 || resp.Tags[0].Name != "Thai" {
		t.Fatalf("unexpected cuisine tags %+v", resp.Tags)
	}

	doRequest(t, env.handler, httptest.NewRequest(http.MethodGet, "/tags/recipes?type=flavour", nil), http.StatusBadRequest)
}

func TestLayoutValidateEndpoint(t *testing.T) {
	env := setupAPI(t)

	valid := `{"body": [{"type": "two_column", "value": {"column_layout": "6-6"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/layout/validate", strings.NewReader(valid))
	doRequest(t, env.handler, req, http.StatusOK)

	raw := testsupport.Fixture(t, "layout_bounds.json")
	req = httptest.NewRequest(http.MethodPost, "/layout/validate", bytes.NewReader(raw))
	rec := doRequest(t, env.handler, req, http.StatusUnprocessableEntity)
	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rec, &resp)
	if resp.Error != "validation_failed" || resp.Fields["body.0.left_min"] == "" || resp.Fields["body.0.left_max"] == "" {
		t.Fatalf("unexpected response %+v", resp)
	}

	req = httptest.NewRequest(http.MethodPost, "/layout/validate", strings.NewReader(`{"body": [{"type": "two_column", "value": {"breakpoint": "xl"}}]}`))
	decodeBody(t, doRequest(t, env.handler, req, http.StatusUnprocessableEntity), &resp)
	if resp.Error != "schema_invalid" {
		t.Fatalf("expected schema_invalid, got %q", resp.Error)
	}
}

func TestAlternatesEndpoint(t *testing.T) {
	env := setupAPI(t)
	if _, err := env.pages.Create(context.Background(), &pages.Page{
		Slug:         "legal",
		Live:         true,
		Translations: []*pages.PageTranslation{{Locale: "en", Title: "Legal", Path: "/legal/"}},
	}); err != nil {
		t.Fatalf("create page: %v", err)
	}

	cases := []struct {
		slug string
		want []links.Alternate
	}{
		{"training", []links.Alternate{
			{Locale: "en", URL: "/en/training/", Translated: true},
			{Locale: "es", URL: "/es/training-es/", Active: true, Translated: true},
		}},
		{"legal", []links.Alternate{
			{Locale: "en", URL: "/en/legal/", Translated: true},
			{Locale: "es", URL: "/en/legal/", Active: true},
		}},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/pages/"+tc.slug+"/alternates?locale=es", nil)
		rec := doRequest(t, env.handler, req, http.StatusOK)
		var resp alternatesResponse
		decodeBody(t, rec, &resp)
		if resp.Page != tc.slug || resp.Locale != "es" || len(resp.Alternates) != len(tc.want) {
			t.Fatalf("%s: unexpected response %+v", tc.slug, resp)
		}
		for i, want := range tc.want {
			if resp.Alternates[i] != want {
				t.Errorf("%s alternate %d: got %+v, want %+v", tc.slug, i, resp.Alternates[i], want)
			}
		}
	}
	if env.store.Len() == 0 {
		t.Fatal("expected alternates to be cached as page fragments")
	}

	req := httptest.NewRequest(http.MethodGet, "/pages/missing/alternates", nil)
	doRequest(t, env.handler, req, http.StatusNotFound)
}
