package site

import (
	"net/http"

	"github.com/enzedonline/enzedonline-sub000/internal/di"
	"github.com/enzedonline/enzedonline-sub000/internal/layout"
	"github.com/enzedonline/enzedonline-sub000/internal/links"
	"github.com/enzedonline/enzedonline-sub000/internal/locales"
	"github.com/enzedonline/enzedonline-sub000/internal/menus"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/internal/tags"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

// MenuService exports the menu service contract for consumers of the site package.
type MenuService = menus.Service

// PageService exports the pages service contract.
type PageService = pages.Service

// TagRegistry exports the tag registry.
type TagRegistry = *tags.Registry

// LinkResolver exports the link resolver.
type LinkResolver = *links.Resolver

// LayoutValidator exports the layout document validator.
type LayoutValidator = *layout.Validator

// LocaleRegistry exports the active locale set.
type LocaleRegistry = *locales.Registry

// RequestContext carries the locale, authentication state and path of a
// navigation request.
type RequestContext = interfaces.RequestContext

// Option customises the wiring done by New.
type Option = di.Option

var (
	WithBunDB          = di.WithBunDB
	WithCache          = di.WithCache
	WithFragmentStore  = di.WithFragmentStore
	WithLoggerProvider = di.WithLoggerProvider
	WithRouteManager   = di.WithRouteManager
	WithAuthenticator  = di.WithAuthenticator
	WithCommandRetries = di.WithCommandRetries
)

// Module represents the top level navigation runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional
// wiring overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Menus returns the configured menu service.
func (m *Module) Menus() MenuService {
	return m.container.MenuService()
}

// Pages returns the configured page service.
func (m *Module) Pages() PageService {
	return m.container.PageService()
}

// Tags returns the tag registry.
func (m *Module) Tags() TagRegistry {
	return m.container.TagRegistry()
}

// Links returns the resolver used for every menu link.
func (m *Module) Links() LinkResolver {
	return m.container.LinkResolver()
}

// Layout returns the layout document validator.
func (m *Module) Layout() LayoutValidator {
	return m.container.LayoutValidator()
}

// Locales returns the locales the module serves.
func (m *Module) Locales() LocaleRegistry {
	return m.container.Locales()
}

// Logger returns a logger for module under the configured provider.
func (m *Module) Logger(module string) interfaces.Logger {
	return m.container.LoggerProvider().GetLogger(module)
}

// Router returns the navigation, tag and layout HTTP API.
func (m *Module) Router() http.Handler {
	return m.container.API().Router()
}

// Close releases caches and command subscriptions. The bun database passed
// with WithBunDB stays open.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
