package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"

	"github.com/enzedonline/enzedonline-sub000/internal/commands"
	navigationcmd "github.com/enzedonline/enzedonline-sub000/internal/commands/navigation"
	"github.com/enzedonline/enzedonline-sub000/internal/fragments"
	sitehttp "github.com/enzedonline/enzedonline-sub000/internal/http"
	"github.com/enzedonline/enzedonline-sub000/internal/identity"
	"github.com/enzedonline/enzedonline-sub000/internal/layout"
	"github.com/enzedonline/enzedonline-sub000/internal/links"
	"github.com/enzedonline/enzedonline-sub000/internal/locales"
	"github.com/enzedonline/enzedonline-sub000/internal/logging"
	"github.com/enzedonline/enzedonline-sub000/internal/logging/console"
	"github.com/enzedonline/enzedonline-sub000/internal/logging/gologger"
	"github.com/enzedonline/enzedonline-sub000/internal/menus"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/internal/runtimeconfig"
	"github.com/enzedonline/enzedonline-sub000/internal/tags"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

// DefaultTimeout bounds the bootstrap work done against external stores.
const DefaultTimeout = 10 * time.Second

// ErrSQLStorageRequiresDB is returned when the config selects a SQL driver
// but no *bun.DB was supplied.
var ErrSQLStorageRequiresDB = errors.New("di: sql storage selected but no bun db provided")

// Container wires module dependencies. Repositories are in-memory unless a
// bun database is supplied.
type Container struct {
	Config runtimeconfig.Config

	bunDB          *bun.DB
	cacheService   repocache.CacheService
	keySerializer  repocache.KeySerializer
	fragmentStore  interfaces.FragmentStore
	loggerProvider interfaces.LoggerProvider
	routeManager   *urlkit.RouteManager
	authenticator  sitehttp.Authenticator
	maxRetries     int

	localeRepo locales.Repository
	pageRepo   pages.Repository
	menuRepo   menus.MenuRepository
	tagRepo    tags.Repository

	locales   *locales.Registry
	purger    *fragments.Purger
	linker    *links.Resolver
	menuSvc   menus.Service
	pageSvc   pages.Service
	tagSvc    *tags.Registry
	validator *layout.Validator
	handlers  *navigationcmd.Handlers
	api       *sitehttp.API

	closers []func() error
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB backs every repository with db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithFragmentStore overrides the configured fragment store.
func WithFragmentStore(store interfaces.FragmentStore) Option {
	return func(c *Container) {
		c.fragmentStore = store
	}
}

// WithLoggerProvider overrides the configured logging provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithRouteManager renders page URLs through an existing go-urlkit manager
// instead of one built from Navigation.URLKit.
func WithRouteManager(manager *urlkit.RouteManager) Option {
	return func(c *Container) {
		c.routeManager = manager
	}
}

// WithAuthenticator decides which requests see logged-in menu items.
func WithAuthenticator(auth func(*http.Request) bool) Option {
	return func(c *Container) {
		c.authenticator = auth
	}
}

// WithCommandRetries sets how often dispatched commands are retried.
func WithCommandRetries(n int) Option {
	return func(c *Container) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, maxRetries: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	steps := []func(context.Context) error{
		c.configureLogger,
		c.configureCacheDefaults,
		c.configureRepositories,
		c.configureLocales,
		c.configureFragments,
		c.configureServices,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLogger(context.Context) error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureCacheDefaults(context.Context) error {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return nil
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cfg.TTL = c.Config.Cache.TTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("di: repository cache: %w", err)
		}
		c.cacheService = service
	}

	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureRepositories(context.Context) error {
	if c.bunDB == nil {
		if c.Config.UsesSQL() {
			return ErrSQLStorageRequiresDB
		}
		c.localeRepo = locales.NewMemoryRepository()
		c.pageRepo = pages.NewMemoryRepository()
		c.menuRepo = menus.NewMemoryMenuRepository()
		c.tagRepo = tags.NewMemoryRepository()
		return nil
	}

	c.localeRepo = locales.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.pageRepo = pages.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.menuRepo = menus.NewBunMenuRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.tagRepo = tags.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	return nil
}

// configureLocales stores the configured locales that are missing and loads
// the registry from the repository, so locales added directly to storage
// are served as well.
func (c *Container) configureLocales(ctx context.Context) error {
	codes := c.Config.Locales
	if len(codes) == 0 {
		codes = []string{c.Config.DefaultLocale}
	}
	def := locales.Normalize(c.Config.DefaultLocale)
	for _, code := range codes {
		code = locales.Normalize(code)
		if code == "" {
			continue
		}
		_, err := c.localeRepo.GetByCode(ctx, code)
		if err == nil {
			continue
		}
		if !errors.Is(err, locales.ErrLocaleNotFound) {
			return fmt.Errorf("di: lookup locale %s: %w", code, err)
		}
		if _, err := c.localeRepo.Create(ctx, &locales.Locale{
			ID:        identity.LocaleID(code),
			Code:      code,
			Display:   code,
			IsActive:  true,
			IsDefault: code == def,
		}); err != nil {
			return fmt.Errorf("di: seed locale %s: %w", code, err)
		}
	}

	registry, err := locales.LoadRegistry(ctx, c.localeRepo, def)
	if err != nil {
		return err
	}
	c.locales = registry
	return nil
}

func (c *Container) configureFragments(ctx context.Context) error {
	cfg := c.Config.Cache
	if c.fragmentStore == nil && cfg.Enabled {
		switch cfg.Provider {
		case runtimeconfig.CacheRedis:
			store, err := fragments.NewRedisStoreFromURL(ctx, cfg.RedisURL, fragments.WithKeyPrefix(cfg.KeyPrefix))
			if err != nil {
				return err
			}
			c.fragmentStore = store
			c.closers = append(c.closers, store.Close)
		default:
			store, err := fragments.NewMemoryStore(cfg.MaxEntries)
			if err != nil {
				return err
			}
			c.fragmentStore = store
		}
	}
	if c.fragmentStore != nil {
		c.purger = fragments.NewPurger(c.fragmentStore,
			fragments.WithLogger(logging.ModuleLogger(c.loggerProvider, "site.fragments")),
		)
	}
	return nil
}

func (c *Container) configureServices(context.Context) error {
	cfg := c.Config

	linkOpts := []links.Option{
		links.WithFallbackLocale(c.locales.Default()),
		links.WithLocalePrefixes(c.locales),
		links.WithLogger(logging.ModuleLogger(c.loggerProvider, "site.links")),
	}
	bare := ""
	if !cfg.I18N.PrefixDefault {
		bare = c.locales.Default()
		linkOpts = append(linkOpts, links.WithBareLocale(bare))
	}
	if builder := c.urlBuilder(bare); builder != nil {
		linkOpts = append(linkOpts, links.WithPageURLBuilder(builder))
	}
	c.linker = links.NewResolver(c.pageRepo, linkOpts...)

	resolver := menus.NewResolver(c.linker, c.pageRepo,
		menus.WithMenuLookup(c.menuRepo),
		menus.WithResolverFallbackLocale(c.locales.Default()),
		menus.WithResolverLogger(logging.ModuleLogger(c.loggerProvider, "site.menus.resolver")),
	)
	menuOpts := []menus.ServiceOption{
		menus.WithPageLookup(c.pageRepo),
		menus.WithMaxDepth(cfg.Navigation.MaxDepth),
		menus.WithLogger(logging.ModuleLogger(c.loggerProvider, "site.menus")),
	}
	if c.purger != nil {
		menuOpts = append(menuOpts, menus.WithFragmentPurger(c.purger))
	}
	c.menuSvc = menus.NewService(c.menuRepo, resolver, menuOpts...)

	c.tagSvc = tags.NewRegistry(c.tagRepo, tags.WithLogger(logging.ModuleLogger(c.loggerProvider, "site.tags")))

	deps := navigationcmd.Deps{
		Menus:  c.menuSvc,
		Tags:   c.tagSvc,
		Logger: commands.CommandLogger(c.loggerProvider, "navigation"),
	}
	if c.purger != nil {
		deps.Pages = c.purger
	}
	c.handlers = navigationcmd.NewHandlers(deps)
	unsubscribe := c.handlers.Subscribe(c.maxRetries)
	c.closers = append(c.closers, func() error {
		unsubscribe()
		return nil
	})

	pageOpts := []pages.ServiceOption{
		pages.WithLogger(logging.ModuleLogger(c.loggerProvider, "site.pages")),
		pages.WithChangeHook(c.handlers.PageChangeHook(cfg.Tags.Sets...)),
	}
	if c.purger != nil {
		pageOpts = append(pageOpts, pages.WithFragmentPurger(c.purger))
	}
	c.pageSvc = pages.NewService(c.pageRepo, pageOpts...)

	c.validator = layout.NewValidator()

	apiOpts := []sitehttp.Option{
		sitehttp.WithLogger(logging.ModuleLogger(c.loggerProvider, "site.http")),
		sitehttp.WithPagination(sitehttp.Pagination{
			PerPage:    cfg.Tags.PerPage,
			OnEachSide: cfg.Tags.OnEachSide,
			OnEnds:     cfg.Tags.OnEnds,
		}),
	}
	if c.authenticator != nil {
		apiOpts = append(apiOpts, sitehttp.WithAuthenticator(c.authenticator))
	}
	if c.fragmentStore != nil {
		apiOpts = append(apiOpts, sitehttp.WithFragmentStore(c.fragmentStore, cfg.Cache.TTL))
	}
	apiOpts = append(apiOpts, sitehttp.WithAlternates(c.pageRepo, c.linker))
	c.api = sitehttp.NewAPI(c.menuSvc, c.tagSvc, c.validator, c.locales, apiOpts...)
	return nil
}

func (c *Container) urlBuilder(bare string) links.PageURLBuilder {
	navCfg := c.Config.Navigation
	manager := c.routeManager
	if manager == nil {
		if navCfg.URLKit == nil {
			return nil
		}
		manager = urlkit.NewRouteManager(navCfg.URLKit)
		c.routeManager = manager
	}
	return links.NewURLKitBuilder(links.URLKitOptions{
		Manager:        manager,
		DefaultGroup:   strings.TrimSpace(navCfg.RouteGroup),
		LocaleGroups:   navCfg.LocaleGroups,
		FallbackLocale: c.locales.Default(),
		Fallback:       links.PathBuilder{Fallback: c.locales.Default(), BareLocale: bare},
	})
}

// Close releases external connections and command subscriptions. The bun
// database belongs to the caller and stays open.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) Locales() *locales.Registry              { return c.locales }
func (c *Container) LinkResolver() *links.Resolver           { return c.linker }
func (c *Container) MenuService() menus.Service              { return c.menuSvc }
func (c *Container) PageService() pages.Service              { return c.pageSvc }
func (c *Container) PageRepository() pages.Repository        { return c.pageRepo }
func (c *Container) TagRegistry() *tags.Registry             { return c.tagSvc }
func (c *Container) LayoutValidator() *layout.Validator      { return c.validator }
func (c *Container) Commands() *navigationcmd.Handlers       { return c.handlers }
func (c *Container) FragmentStore() interfaces.FragmentStore { return c.fragmentStore }
func (c *Container) API() *sitehttp.API                      { return c.api }

// LoggerProvider exposes the provider so callers can log under the same
// configuration.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }
