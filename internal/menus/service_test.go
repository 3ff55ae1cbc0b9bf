package menus

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/internal/identity"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

type countingPurger struct {
	calls int
}

func (p *countingPurger) PurgeMenus(context.Context) error {
	p.calls++
	return nil
}

func intPtr(v int) *int { return &v }

func newTestService(t *testing.T) (Service, *fixture, *countingPurger) {
	t.Helper()
	f := newFixture(t)
	purger := &countingPurger{}
	svc := NewService(f.menus, f.resolver, WithPageLookup(f.pages), WithFragmentPurger(purger))
	return svc, f, purger
}

func TestCreateMenuDerivesCodeAndPurges(t *testing.T) {
	svc, f, purger := newTestService(t)
	f.page(t, "about", nil, nil)
	ctx := context.Background()

	menu, err := svc.CreateMenu(ctx, SaveMenuRequest{
		Title: "Main Menu",
		Links: []LinkItemInput{
			{ItemInput: ItemInput{DisplayOrder: intPtr(10)}, PageSlug: "about"},
			{Title: "Blog", URL: "/blog/"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if menu.Code != "main-menu" {
		t.Fatalf("expected code main-menu, got %q", menu.Code)
	}
	if menu.ID != identity.MenuID("main-menu") {
		t.Fatalf("expected deterministic id")
	}
	if menu.LinkItems[1].DisplayOrder != DefaultDisplayOrder || menu.LinkItems[1].ShowWhen != ShowAlways {
		t.Fatalf("expected defaults on second link, got %+v", menu.LinkItems[1].ItemBase)
	}
	if purger.calls != 1 {
		t.Fatalf("expected one purge, got %d", purger.calls)
	}

	if _, err := svc.CreateMenu(ctx, SaveMenuRequest{Title: "Main menu"}); !errors.Is(err, ErrMenuCodeExists) {
		t.Fatalf("expected ErrMenuCodeExists, got %v", err)
	}
}

func TestRenamedMenuFreesItsCode(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateMenu(ctx, SaveMenuRequest{Title: "Main"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	renamed, err := svc.UpdateMenu(ctx, first.ID, SaveMenuRequest{Title: "Main", Code: "primary"})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Code != "primary" || renamed.ID != first.ID {
		t.Fatalf("rename must keep the id, got %+v", renamed)
	}

	second, err := svc.CreateMenu(ctx, SaveMenuRequest{Title: "Main"})
	if err != nil {
		t.Fatalf("create with freed code: %v", err)
	}
	if second.Code != "main" || second.ID == first.ID {
		t.Fatalf("expected a new menu under code main, got %+v", second)
	}
	if got, err := svc.GetMenuByCode(ctx, "primary"); err != nil || got.ID != first.ID {
		t.Fatalf("renamed menu lost: %v", err)
	}
}

func TestCreateMenuValidation(t *testing.T) {
	svc, f, _ := newTestService(t)
	page := f.page(t, "home", nil, nil)
	ctx := context.Background()

	if _, err := svc.CreateMenu(ctx, SaveMenuRequest{}); !errors.Is(err, ErrMenuTitleRequired) {
		t.Fatalf("expected ErrMenuTitleRequired, got %v", err)
	}

	_, err := svc.CreateMenu(ctx, SaveMenuRequest{
		Title: "Broken",
		Links: []LinkItemInput{
			{Title: "Both", PageID: &page.ID, URL: "/x/"},
			{Title: "Neither"},
			{URL: "/only-url/"},
		},
		SubMenus:  []SubMenuItemInput{{MenuCode: "broken"}},
		AutoFills: []AutoFillItemInput{{PageID: page.ID, MaxItems: intPtr(0)}},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected error to unwrap to ErrValidation")
	}

	checks := []struct {
		collection string
		index      int
		field      string
	}{
		{CollectionLinks, 0, "link_url"},
		{CollectionLinks, 0, "link_page"},
		{CollectionLinks, 1, "link_url"},
		{CollectionLinks, 1, "link_page"},
		{CollectionLinks, 2, "title"},
		{CollectionLinks, 2, "icon"},
		{CollectionLinks, 2, "link_page"},
		{CollectionSubMenus, 0, "submenu_id"},
		{CollectionAutoFills, 0, "max_items"},
	}
	for _, c := range checks {
		if verr.Field(c.collection, c.index, c.field) == nil {
			t.Errorf("expected error on %s[%d].%s: %v", c.collection, c.index, c.field, verr)
		}
	}
}

func TestCreateMenuUnknownPageSlug(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateMenu(context.Background(), SaveMenuRequest{
		Title:     "Docs",
		AutoFills: []AutoFillItemInput{{PageSlug: "missing"}},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field(CollectionAutoFills, 0, "link_page") == nil {
		t.Fatalf("expected link_page error, got %v", err)
	}
}

func TestLookupMenuByIDCodeAndTitle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.CreateMenu(ctx, SaveMenuRequest{Code: "footer", Title: "Site Footer", Links: []LinkItemInput{{Title: "Home", URL: "/"}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for name, ref := range map[string]MenuRef{
		"id":       RefID(created.ID),
		"code":     RefCode("footer"),
		"title":    RefTitle("site footer"),
		"parsed":   ParseMenuRef("Site Footer"),
		"parsedID": ParseMenuRef(created.ID.String()),
		"instance": RefMenu(created),
	} {
		got, err := svc.LookupMenu(ctx, ref)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got.ID != created.ID {
			t.Fatalf("%s: got %s", name, got.ID)
		}
	}
}

func TestResolveMenuDistinguishesMissingFromEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.CreateMenu(ctx, SaveMenuRequest{
		Title: "Members",
		Links: []LinkItemInput{{ItemInput: ItemInput{ShowWhen: ShowLoggedIn}, Title: "Dashboard", URL: "/dash/"}},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	entries, err := svc.ResolveMenu(ctx, RefCode("members"), interfaces.RequestContext{})
	if err != nil || entries != nil {
		t.Fatalf("expected nil entries and nil error, got %v %v", entries, err)
	}
	if _, err := svc.ResolveMenu(ctx, RefCode("nope"), interfaces.RequestContext{}); !errors.Is(err, ErrMenuNotFound) {
		t.Fatalf("expected ErrMenuNotFound, got %v", err)
	}
	if got := svc.Navigation(ctx, RefCode("nope"), interfaces.RequestContext{}); got != nil {
		t.Fatalf("expected Navigation to swallow missing menu, got %v", got)
	}
	if got := svc.Navigation(ctx, RefCode("members"), interfaces.RequestContext{Authenticated: true}); len(got) != 1 {
		t.Fatalf("expected 1 entry for members, got %v", got)
	}
}

func TestSubMenuCycleTerminates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateMenu(ctx, SaveMenuRequest{
		Code:     "a",
		Title:    "A",
		Links:    []LinkItemInput{{ItemInput: ItemInput{DisplayOrder: intPtr(1)}, Title: "A home", URL: "/a/"}},
		SubMenus: []SubMenuItemInput{{ItemInput: ItemInput{DisplayOrder: intPtr(2)}, MenuCode: "b"}},
	})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := svc.CreateMenu(ctx, SaveMenuRequest{
		Code:     "b",
		Title:    "B",
		SubMenus: []SubMenuItemInput{{MenuID: a.ID}},
	})
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if a.SubMenuItems[0].TargetMenuID != b.ID {
		t.Fatalf("forward code reference did not resolve to b's id")
	}

	entries, err := svc.ResolveMenu(ctx, RefID(a.ID), interfaces.RequestContext{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(entries) != 2 || !entries[1].IsSubMenu || entries[1].Title != "B" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	tree, err := svc.RenderTree(ctx, RefID(a.ID), interfaces.RequestContext{Path: "/en/a/"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(tree) != 2 || !tree[0].Active {
		t.Fatalf("unexpected root nodes %+v", tree)
	}
	bNode := tree[1]
	if len(bNode.Children) != 1 || bNode.Children[0].SubMenuID != a.ID {
		t.Fatalf("expected b to list a, got %+v", bNode.Children)
	}
	if len(bNode.Children[0].Children) != 0 {
		t.Fatalf("revisited menu must render without children")
	}
}

func TestRenderTreeRespectsMaxDepth(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.menus, f.resolver, WithMaxDepth(2))
	ctx := context.Background()

	for _, code := range []string{"level-3", "level-2", "level-1"} {
		req := SaveMenuRequest{Code: code, Title: code, Links: []LinkItemInput{{Title: code, URL: "/" + code + "/"}}}
		switch code {
		case "level-2":
			req.SubMenus = []SubMenuItemInput{{MenuCode: "level-3"}}
		case "level-1":
			req.SubMenus = []SubMenuItemInput{{MenuCode: "level-2"}}
		}
		if _, err := svc.CreateMenu(ctx, req); err != nil {
			t.Fatalf("create %s: %v", code, err)
		}
	}

	tree, err := svc.RenderTree(ctx, RefCode("level-1"), interfaces.RequestContext{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var sub *Node
	for i := range tree {
		if tree[i].IsSubMenu {
			sub = &tree[i]
		}
	}
	if sub == nil || len(sub.Children) == 0 {
		t.Fatalf("expected level-2 expanded, got %+v", tree)
	}
	for _, child := range sub.Children {
		if child.IsSubMenu && len(child.Children) != 0 {
			t.Fatalf("expected expansion to stop at depth 2")
		}
	}
}

func TestUpdateAndDeleteMenu(t *testing.T) {
	svc, _, purger := newTestService(t)
	ctx := context.Background()
	created, err := svc.CreateMenu(ctx, SaveMenuRequest{Title: "Main", Links: []LinkItemInput{{Title: "Home", URL: "/"}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateMenu(ctx, created.ID, SaveMenuRequest{
		Title: "Main navigation",
		Links: []LinkItemInput{{Title: "Home", URL: "/"}, {Title: "Shop", URL: "https://shop.example.com"}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Code != "main" || updated.Title != "Main navigation" || len(updated.LinkItems) != 2 {
		t.Fatalf("unexpected update result %+v", updated)
	}

	if err := svc.DeleteMenu(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetMenu(ctx, created.ID); !errors.Is(err, ErrMenuNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if purger.calls != 3 {
		t.Fatalf("expected 3 purges, got %d", purger.calls)
	}
	if err := svc.DeleteMenu(ctx, uuid.New()); !errors.Is(err, ErrMenuNotFound) {
		t.Fatalf("expected not found deleting unknown menu, got %v", err)
	}
}
