package links

import (
	"context"
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/enzedonline/enzedonline-sub000/internal/pages"
)

// PathBuilder renders "/<locale><path>" from the page translation. When the
// page has no translation in the requested locale the fallback translation
// is used, and the URL carries that translation's locale.
type PathBuilder struct {
	Fallback string
	// BareLocale, when set, is served without a locale segment.
	BareLocale string
}

func (b PathBuilder) PageURL(_ context.Context, page *pages.Page, locale string) (string, error) {
	if page == nil {
		return "", ErrPageNotFound
	}
	tr := page.Translation(locale, b.Fallback)
	if tr == nil {
		return b.prefix(locale) + "/" + strings.Trim(page.Slug, "/") + "/", nil
	}
	code := tr.Locale
	if code == "" {
		code = locale
	}
	return b.prefix(code) + ensureLeadingSlash(tr.Path), nil
}

func (b PathBuilder) prefix(code string) string {
	if b.BareLocale != "" && code == b.BareLocale {
		return ""
	}
	return "/" + code
}

func ensureLeadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

// URLKitOptions configures a URLKitBuilder.
type URLKitOptions struct {
	Manager      *urlkit.RouteManager
	DefaultGroup string
	// LocaleGroups maps a locale code to a dotted group path, e.g.
	// "es" -> "frontend.es".
	LocaleGroups map[string]string
	Route        string
	// PathParam receives the localized translation path. Nested paths are
	// passed as segments, so the route must declare a repeating parameter
	// (":path+") to render them.
	PathParam   string
	LocaleParam string
	// FallbackLocale picks the translation when the page has none in the
	// requested locale.
	FallbackLocale string
	// Fallback builds the URL when the route manager cannot.
	Fallback PageURLBuilder
}

// URLKitBuilder renders page URLs through go-urlkit route groups so sites
// with per-locale route tables (translated path segments, base URLs) can
// drive navigation from the same configuration as their router.
type URLKitBuilder struct {
	opts URLKitOptions

	mu     sync.RWMutex
	groups map[string]*urlkit.Group
}

func NewURLKitBuilder(opts URLKitOptions) *URLKitBuilder {
	if strings.TrimSpace(opts.Route) == "" {
		opts.Route = "page"
	}
	if strings.TrimSpace(opts.PathParam) == "" {
		opts.PathParam = "path"
	}
	return &URLKitBuilder{opts: opts, groups: map[string]*urlkit.Group{}}
}

func (b *URLKitBuilder) PageURL(ctx context.Context, page *pages.Page, locale string) (string, error) {
	url, err := b.build(page, locale)
	if err == nil && url != "" {
		return url, nil
	}
	if b.opts.Fallback != nil {
		return b.opts.Fallback.PageURL(ctx, page, locale)
	}
	if err == nil {
		err = ErrRouteGroupEmpty
	}
	return "", err
}

func (b *URLKitBuilder) build(page *pages.Page, locale string) (string, error) {
	if page == nil {
		return "", ErrPageNotFound
	}
	segments := strings.Split(strings.Trim(page.Slug, "/"), "/")
	if tr := page.Translation(locale, b.opts.FallbackLocale); tr != nil {
		if tr.Locale != "" {
			locale = tr.Locale
		}
		segments = strings.Split(strings.Trim(tr.Path, "/"), "/")
	}

	path := b.opts.DefaultGroup
	if mapped, ok := b.opts.LocaleGroups[strings.ToLower(locale)]; ok && strings.TrimSpace(mapped) != "" {
		path = mapped
	}
	path = strings.TrimSpace(path)
	if path == "" || b.opts.Manager == nil {
		return "", ErrRouteGroupEmpty
	}

	group, err := b.group(path)
	if err != nil {
		return "", err
	}
	if len(segments) > 1 {
		// Builder params are stringified, so repeating segments go through
		// Render directly.
		params := urlkit.Params{b.opts.PathParam: segments}
		if b.opts.LocaleParam != "" {
			params[b.opts.LocaleParam] = locale
		}
		return group.Render(b.opts.Route, params)
	}
	builder, err := safeBuilder(group, b.opts.Route)
	if err != nil {
		return "", err
	}
	builder.WithParam(b.opts.PathParam, segments[0])
	if b.opts.LocaleParam != "" {
		builder.WithParam(b.opts.LocaleParam, locale)
	}
	return builder.Build()
}

func (b *URLKitBuilder) group(path string) (*urlkit.Group, error) {
	b.mu.RLock()
	group, ok := b.groups[path]
	b.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(path, ".")
	group, err := rootGroup(b.opts.Manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, name := range parts[1:] {
		if group, err = childGroup(group, name); err != nil {
			return nil, err
		}
	}

	b.mu.Lock()
	b.groups[path] = group
	b.mu.Unlock()
	return group, nil
}

// go-urlkit panics on unknown groups and routes; these helpers turn that
// into errors.

func rootGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("links: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	if group == nil {
		return nil, fmt.Errorf("links: route group %q not found", name)
	}
	return group, nil
}

func childGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("links: route group %q not found", name)
		}
	}()
	group = parent.Group(name)
	if group == nil {
		return nil, fmt.Errorf("links: route group %q not found", name)
	}
	return group, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			builder, err = nil, fmt.Errorf("links: route %q not available: %v", route, rec)
		}
	}()
	return group.Builder(route), nil
}
