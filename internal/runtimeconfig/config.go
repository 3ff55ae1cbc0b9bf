package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	urlkit "github.com/goliatone/go-urlkit"
)

// EnvPrefix namespaces every environment variable read by FromEnv.
const EnvPrefix = "SITE_"

var (
	ErrDefaultLocaleRequired     = errors.New("site config: default locale is required")
	ErrDefaultLocaleNotListed    = errors.New("site config: default locale must be one of the configured locales")
	ErrStorageDriverInvalid      = errors.New("site config: storage driver is invalid")
	ErrStorageDSNRequired        = errors.New("site config: storage dsn is required for sql drivers")
	ErrCacheProviderInvalid      = errors.New("site config: cache provider is invalid")
	ErrCacheRedisURLRequired     = errors.New("site config: redis url is required when the redis cache provider is selected")
	ErrCacheTTLInvalid           = errors.New("site config: cache ttl must be zero or positive")
	ErrNavigationMaxDepthInvalid = errors.New("site config: navigation max depth must be positive")
	ErrTagsPaginationInvalid     = errors.New("site config: tag pagination values must be positive")
	ErrLoggingProviderRequired   = errors.New("site config: logging provider is required")
	ErrLoggingProviderInvalid    = errors.New("site config: logging provider is invalid")
	ErrLoggingLevelInvalid       = errors.New("site config: logging level is invalid")
	ErrLoggingFormatInvalid      = errors.New("site config: logging format is invalid")
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config aggregates the settings of the navigation site module. Every field
// can be overridden from SITE_* environment variables through FromEnv.
type Config struct {
	DefaultLocale string           `env:"DEFAULT_LOCALE"`
	Locales       []string         `env:"LOCALES" envSeparator:","`
	I18N          I18NConfig       `envPrefix:"I18N_"`
	Storage       StorageConfig    `envPrefix:"STORAGE_"`
	Cache         CacheConfig      `envPrefix:"CACHE_"`
	Navigation    NavigationConfig `envPrefix:"NAVIGATION_"`
	Tags          TagsConfig       `envPrefix:"TAGS_"`
	Logging       LoggingConfig    `envPrefix:"LOG_"`
	HTTP          HTTPConfig       `envPrefix:"HTTP_"`
}

// I18NConfig controls localized URL prefixes.
type I18NConfig struct {
	// PrefixDefault prefixes default-locale URLs too ("/en/about/").
	PrefixDefault bool `env:"PREFIX_DEFAULT"`
}

type StorageConfig struct {
	Driver  string `env:"DRIVER"`
	DSN     string `env:"DSN"`
	Migrate bool   `env:"MIGRATE"`
}

// CacheConfig covers both repository caching and rendered fragments.
type CacheConfig struct {
	Enabled    bool          `env:"ENABLED"`
	TTL        time.Duration `env:"TTL"`
	Provider   string        `env:"PROVIDER"`
	RedisURL   string        `env:"REDIS_URL"`
	KeyPrefix  string        `env:"KEY_PREFIX"`
	MaxEntries int           `env:"MAX_ENTRIES"`
}

// NavigationConfig captures menu rendering and URL building options.
type NavigationConfig struct {
	RouteGroup   string            `env:"ROUTE_GROUP"`
	LocaleGroups map[string]string `env:"LOCALE_GROUPS"`
	MaxDepth     int               `env:"MAX_DEPTH"`
	SeedDir      string            `env:"SEED_DIR"`
	URLKit       *urlkit.Config    `env:"-"`
}

type TagsConfig struct {
	// Sets are swept for unused tags after a page is deleted.
	Sets       []string `env:"SETS" envSeparator:","`
	PerPage    int      `env:"PER_PAGE"`
	OnEachSide int      `env:"ON_EACH_SIDE"`
	OnEnds     int      `env:"ON_ENDS"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `env:"PROVIDER"`
	Level     string   `env:"LEVEL"`
	Format    string   `env:"FORMAT"`
	AddSource bool     `env:"ADD_SOURCE"`
	Focus     []string `env:"FOCUS" envSeparator:","`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// DefaultConfig returns an in-memory, single locale setup suitable for
// tests and local development.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		Locales:       []string{"en"},
		I18N: I18NConfig{
			PrefixDefault: true,
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        time.Minute,
			Provider:   CacheMemory,
			KeyPrefix:  "site:",
			MaxEntries: 1024,
		},
		Navigation: NavigationConfig{
			MaxDepth: 4,
		},
		Tags: TagsConfig{
			PerPage:    20,
			OnEachSide: 2,
			OnEnds:     1,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// FromEnv overlays SITE_* environment variables on DefaultConfig. Unset
// variables keep their defaults.
func FromEnv() (Config, error) {
	return FromEnvironment(nil)
}

// FromEnvironment is FromEnv reading from environ instead of the process
// environment when environ is non-nil.
func FromEnvironment(environ map[string]string) (Config, error) {
	cfg := DefaultConfig()
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("site config: parsing environment: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (cfg *Config) normalize() {
	cfg.DefaultLocale = strings.ToLower(strings.TrimSpace(cfg.DefaultLocale))
	locales := make([]string, 0, len(cfg.Locales))
	for _, code := range cfg.Locales {
		code = strings.ToLower(strings.TrimSpace(code))
		if code != "" && !slices.Contains(locales, code) {
			locales = append(locales, code)
		}
	}
	cfg.Locales = locales
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	cfg.Cache.Provider = strings.ToLower(strings.TrimSpace(cfg.Cache.Provider))
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	defaultLocale := strings.ToLower(strings.TrimSpace(cfg.DefaultLocale))
	if defaultLocale == "" {
		return ErrDefaultLocaleRequired
	}
	if len(cfg.Locales) > 0 && !slices.ContainsFunc(cfg.Locales, func(code string) bool {
		return strings.EqualFold(strings.TrimSpace(code), defaultLocale)
	}) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleNotListed, defaultLocale)
	}

	switch driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)); driver {
	case StorageMemory:
	case StorageSQLite, StoragePostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, driver)
		}
	default:
		return fmt.Errorf("%w: %q", ErrStorageDriverInvalid, cfg.Storage.Driver)
	}

	if cfg.Cache.Enabled {
		switch provider := strings.ToLower(strings.TrimSpace(cfg.Cache.Provider)); provider {
		case CacheMemory:
		case CacheRedis:
			if strings.TrimSpace(cfg.Cache.RedisURL) == "" {
				return ErrCacheRedisURLRequired
			}
		default:
			return fmt.Errorf("%w: %q", ErrCacheProviderInvalid, cfg.Cache.Provider)
		}
		if cfg.Cache.TTL < 0 {
			return ErrCacheTTLInvalid
		}
	}

	if cfg.Navigation.MaxDepth <= 0 {
		return ErrNavigationMaxDepthInvalid
	}
	if cfg.Tags.PerPage <= 0 || cfg.Tags.OnEachSide < 0 || cfg.Tags.OnEnds < 0 {
		return ErrTagsPaginationInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderInvalid, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// UsesSQL reports whether repositories are backed by bun.
func (cfg Config) UsesSQL() bool {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	return driver == StorageSQLite || driver == StoragePostgres
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
