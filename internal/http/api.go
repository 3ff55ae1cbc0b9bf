package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/enzedonline/enzedonline-sub000/internal/fragments"
	"github.com/enzedonline/enzedonline-sub000/internal/layout"
	"github.com/enzedonline/enzedonline-sub000/internal/links"
	"github.com/enzedonline/enzedonline-sub000/internal/locales"
	"github.com/enzedonline/enzedonline-sub000/internal/logging"
	"github.com/enzedonline/enzedonline-sub000/internal/menus"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/internal/tags"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

const maxLayoutBody = 1 << 20

// Authenticator reports whether the request comes from a signed-in user.
type Authenticator func(r *http.Request) bool

// Pagination mirrors the tag listing settings of the runtime config.
type Pagination struct {
	PerPage    int
	OnEachSide int
	OnEnds     int
}

// PageFinder looks pages up by slug for the language switcher.
type PageFinder interface {
	GetBySlug(ctx context.Context, slug string) (*pages.Page, error)
}

// API serves the public navigation endpoints.
type API struct {
	menus      menus.Service
	pages      PageFinder
	linker     *links.Resolver
	tags       *tags.Registry
	layout     *layout.Validator
	locales    *locales.Registry
	auth       Authenticator
	store      interfaces.FragmentStore
	ttl        time.Duration
	pagination Pagination
	logger     interfaces.Logger
}

type Option func(*API)

func WithLogger(logger interfaces.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithAuthenticator(auth Authenticator) Option {
	return func(a *API) {
		if auth != nil {
			a.auth = auth
		}
	}
}

// WithFragmentStore caches resolved menus under fragments.NameMenu keys,
// which menu writes purge.
func WithFragmentStore(store interfaces.FragmentStore, ttl time.Duration) Option {
	return func(a *API) {
		a.store = store
		a.ttl = ttl
	}
}

// WithAlternates enables the language switcher route.
func WithAlternates(finder PageFinder, linker *links.Resolver) Option {
	return func(a *API) {
		a.pages = finder
		a.linker = linker
	}
}

func WithPagination(p Pagination) Option {
	return func(a *API) {
		if p.PerPage > 0 {
			a.pagination.PerPage = p.PerPage
		}
		if p.OnEachSide >= 0 {
			a.pagination.OnEachSide = p.OnEachSide
		}
		if p.OnEnds >= 0 {
			a.pagination.OnEnds = p.OnEnds
		}
	}
}

func NewAPI(menuSvc menus.Service, tagRegistry *tags.Registry, validator *layout.Validator, registry *locales.Registry, opts ...Option) *API {
	if validator == nil {
		validator = layout.NewValidator()
	}
	if registry == nil {
		registry = locales.NewRegistry("en")
	}
	a := &API{
		menus:   menuSvc,
		tags:    tagRegistry,
		layout:  validator,
		locales: registry,
		auth:    func(*http.Request) bool { return false },
		pagination: Pagination{
			PerPage:    tags.DefaultPerPage,
			OnEachSide: tags.DefaultOnEachSide,
			OnEnds:     tags.DefaultOnEnds,
		},
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns a standalone chi router carrying the API routes.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	a.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API on an existing router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/navigation/{menu}", func(r chi.Router) {
		r.Get("/", a.handleNavigation)
		r.Get("/tree", a.handleTree)
	})
	r.Get("/pages/{slug}/alternates", a.handleAlternates)
	r.Get("/tags/{set}", a.handleTags)
	r.Post("/layout/validate", a.handleLayoutValidate)
}

func (a *API) requestContext(r *http.Request) interfaces.RequestContext {
	locale := strings.TrimSpace(r.URL.Query().Get("locale"))
	if locale == "" || !a.locales.IsKnown(locale) {
		locale = a.locales.Negotiate(r.Header.Get("Accept-Language"))
	}
	return interfaces.RequestContext{
		Locale:        locales.Normalize(locale),
		Authenticated: a.auth(r),
		Path:          r.URL.Query().Get("path"),
	}
}

type navigationEntry struct {
	menus.Entry
	Active bool `json:"active"`
}

type navigationResponse struct {
	Menu    string            `json:"menu"`
	Locale  string            `json:"locale"`
	Entries []navigationEntry `json:"entries"`
}

func (a *API) handleNavigation(w http.ResponseWriter, r *http.Request) {
	ref := menus.ParseMenuRef(chi.URLParam(r, "menu"))
	rc := a.requestContext(r)

	entries, err := a.cachedEntries(r.Context(), ref, rc)
	if err != nil {
		writeError(w, err)
		return
	}
	out := navigationResponse{Menu: ref.String(), Locale: rc.Locale, Entries: make([]navigationEntry, 0, len(entries))}
	for _, entry := range entries {
		out.Entries = append(out.Entries, navigationEntry{Entry: entry, Active: entry.IsActive(rc.Path)})
	}
	writeJSON(w, http.StatusOK, out)
}

// cachedEntries keeps the path independent part of a navigation response
// in the fragment store; active flags are computed per request.
func (a *API) cachedEntries(ctx context.Context, ref menus.MenuRef, rc interfaces.RequestContext) ([]menus.Entry, error) {
	audience := "anon"
	if rc.Authenticated {
		audience = "auth"
	}
	key := fragments.Key(fragments.NameMenu, ref.String(), rc.Locale, audience)
	body, err := fragments.Cached(ctx, a.store, key, a.ttl, func() ([]byte, error) {
		entries, err := a.menus.ResolveMenu(ctx, ref, rc)
		if err != nil {
			return nil, err
		}
		return json.Marshal(entries)
	})
	if err != nil {
		return nil, err
	}
	var entries []menus.Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (a *API) handleTree(w http.ResponseWriter, r *http.Request) {
	ref := menus.ParseMenuRef(chi.URLParam(r, "menu"))
	rc := a.requestContext(r)
	nodes, err := a.menus.RenderTree(r.Context(), ref, rc)
	if err != nil {
		writeError(w, err)
		return
	}
	if nodes == nil {
		nodes = []menus.Node{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"menu":   ref.String(),
		"locale": rc.Locale,
		"nodes":  nodes,
	})
}

type alternatesResponse struct {
	Page       string            `json:"page"`
	Locale     string            `json:"locale"`
	Alternates []links.Alternate `json:"alternates"`
}

// handleAlternates lists the page in every site locale. The body is cached
// under the page's fragments, which page writes purge.
func (a *API) handleAlternates(w http.ResponseWriter, r *http.Request) {
	if a.pages == nil || a.linker == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	slug := chi.URLParam(r, "slug")
	rc := a.requestContext(r)

	key := fragments.Key(fragments.NamePage, slug, "alternates", rc.Locale)
	body, err := fragments.Cached(r.Context(), a.store, key, a.ttl, func() ([]byte, error) {
		page, err := a.pages.GetBySlug(r.Context(), slug)
		if err != nil {
			return nil, err
		}
		alternates, err := a.linker.Alternates(r.Context(), page, rc.Locale, a.locales.Codes())
		if err != nil {
			return nil, err
		}
		return json.Marshal(alternatesResponse{Page: page.Slug, Locale: rc.Locale, Alternates: alternates})
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, body)
}

type tagsResponse struct {
	Set   string           `json:"set"`
	Tags  []*tags.Tag      `json:"tags"`
	Page  tags.Page        `json:"page"`
	Range []tags.RangeItem `json:"range"`
}

func (a *API) handleTags(w http.ResponseWriter, r *http.Request) {
	if a.tags == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	set := chi.URLParam(r, "set")
	query := r.URL.Query()

	var (
		list []*tags.Tag
		err  error
	)
	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		typ, ok := tags.ParseType(strings.ToLower(raw))
		if !ok {
			writeError(w, fmt.Errorf("%w: unknown tag type %q", errBadRequest, raw))
			return
		}
		list, err = a.tags.TypeInUse(r.Context(), set, typ)
	} else {
		list, err = a.tags.InUse(r.Context(), set)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	perPage := a.pagination.PerPage
	if v, err := strconv.Atoi(query.Get("per_page")); err == nil && v > 0 {
		perPage = v
	}
	page := tags.Paginate(len(list), perPage, tags.ParsePage(query.Get("page")))
	end := min(page.Offset+page.PerPage, len(list))
	writeJSON(w, http.StatusOK, tagsResponse{
		Set:   set,
		Tags:  append([]*tags.Tag{}, list[page.Offset:end]...),
		Page:  page,
		Range: tags.ElidedRange(page.Number, page.NumPages, a.pagination.OnEachSide, a.pagination.OnEnds),
	})
}

func (a *API) handleLayoutValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxLayoutBody))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	doc, err := layout.Decode(body)
	if err != nil {
		a.logger.Debug("layout.validate.schema_failed", "error", err)
		writeError(w, err)
		return
	}
	if err := a.layout.Validate(doc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "document": doc})
}
