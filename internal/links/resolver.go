package links

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/internal/locales"
	"github.com/enzedonline/enzedonline-sub000/internal/logging"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

// PageSource looks pages up by id.
type PageSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*pages.Page, error)
}

// LocalePrefixes reports whether a path already starts with a locale
// segment. *locales.Registry satisfies it.
type LocalePrefixes interface {
	HasLocalePrefix(path string) bool
}

// PageURLBuilder renders the public URL of a page in a locale.
type PageURLBuilder interface {
	PageURL(ctx context.Context, page *pages.Page, locale string) (string, error)
}

// Resolver turns stored link targets into navigable URLs for the active
// locale.
type Resolver struct {
	pages    PageSource
	prefixes LocalePrefixes
	builder  PageURLBuilder
	fallback string
	bare     string
	logger   interfaces.Logger
}

type Option func(*Resolver)

func WithLocalePrefixes(prefixes LocalePrefixes) Option {
	return func(r *Resolver) {
		r.prefixes = prefixes
	}
}

func WithPageURLBuilder(builder PageURLBuilder) Option {
	return func(r *Resolver) {
		if builder != nil {
			r.builder = builder
		}
	}
}

// WithFallbackLocale sets the locale used when neither the caller nor the
// context names one.
func WithFallbackLocale(code string) Option {
	return func(r *Resolver) {
		if code = locales.Normalize(code); code != "" {
			r.fallback = code
		}
	}
}

// WithBareLocale serves code without a locale segment, for sites that keep
// the default language at the root.
func WithBareLocale(code string) Option {
	return func(r *Resolver) {
		r.bare = locales.Normalize(code)
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewResolver(source PageSource, opts ...Option) *Resolver {
	r := &Resolver{
		pages:    source,
		fallback: "en",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.builder == nil {
		r.builder = PathBuilder{Fallback: r.fallback, BareLocale: r.bare}
	}
	return r
}

// Resolve returns the URL for target in locale. An empty locale falls back
// to the context's active locale, then to the resolver default.
func (r *Resolver) Resolve(ctx context.Context, target Target, locale string) (string, error) {
	locale = r.locale(ctx, locale)

	switch {
	case target.HasPage():
		page, err := r.page(ctx, *target.PageID)
		if err != nil {
			return "", err
		}
		url, err := r.builder.PageURL(ctx, page, locale)
		if err != nil {
			return "", fmt.Errorf("links: build url for page %s: %w", page.ID, err)
		}
		return joinSuffix(url, target.Suffix), nil
	case target.HasURL():
		return r.prefixRaw(strings.TrimSpace(target.URL), locale), nil
	}
	return "", ErrNoTarget
}

// ResolvePage returns the localized URL of an already loaded page.
func (r *Resolver) ResolvePage(ctx context.Context, page *pages.Page, locale string) (string, error) {
	if page == nil {
		return "", ErrPageNotFound
	}
	return r.builder.PageURL(ctx, page, r.locale(ctx, locale))
}

// PageTitle returns the localized title of the referenced page.
func (r *Resolver) PageTitle(ctx context.Context, id uuid.UUID, locale string) (string, error) {
	page, err := r.page(ctx, id)
	if err != nil {
		return "", err
	}
	return page.Title(r.locale(ctx, locale), r.fallback), nil
}

// Page loads a page through the resolver's source, mapping missing pages to
// ErrPageNotFound.
func (r *Resolver) Page(ctx context.Context, id uuid.UUID) (*pages.Page, error) {
	return r.page(ctx, id)
}

func (r *Resolver) page(ctx context.Context, id uuid.UUID) (*pages.Page, error) {
	if r.pages == nil {
		return nil, ErrPageNotFound
	}
	page, err := r.pages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pages.ErrPageNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
		}
		return nil, err
	}
	return page, nil
}

func (r *Resolver) locale(ctx context.Context, locale string) string {
	if code := locales.Normalize(locale); code != "" {
		return code
	}
	if code, ok := locales.Active(ctx); ok {
		return code
	}
	return r.fallback
}

// prefixRaw adds the locale segment to site-relative URLs. Protocol
// relative ("//host") and already prefixed paths are left alone.
func (r *Resolver) prefixRaw(raw, locale string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return raw
	}
	if locale == r.bare || r.hasLocalePrefix(raw, locale) {
		return raw
	}
	return "/" + locale + raw
}

func (r *Resolver) hasLocalePrefix(path, locale string) bool {
	if r.prefixes != nil {
		return r.prefixes.HasLocalePrefix(path)
	}
	segment, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return segment != "" && strings.EqualFold(segment, locale)
}

func joinSuffix(base, suffix string) string {
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		return base
	}
	if strings.HasPrefix(suffix, "#") || strings.HasPrefix(suffix, "?") {
		return base + suffix
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(suffix, "/")
}
