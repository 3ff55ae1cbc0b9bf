package site

import "github.com/enzedonline/enzedonline-sub000/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired     = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleNotListed    = runtimeconfig.ErrDefaultLocaleNotListed
	ErrStorageDriverInvalid      = runtimeconfig.ErrStorageDriverInvalid
	ErrStorageDSNRequired        = runtimeconfig.ErrStorageDSNRequired
	ErrCacheProviderInvalid      = runtimeconfig.ErrCacheProviderInvalid
	ErrCacheRedisURLRequired     = runtimeconfig.ErrCacheRedisURLRequired
	ErrNavigationMaxDepthInvalid = runtimeconfig.ErrNavigationMaxDepthInvalid
	ErrLoggingProviderRequired   = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderInvalid    = runtimeconfig.ErrLoggingProviderInvalid
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	I18NConfig       = runtimeconfig.I18NConfig
	StorageConfig    = runtimeconfig.StorageConfig
	CacheConfig      = runtimeconfig.CacheConfig
	NavigationConfig = runtimeconfig.NavigationConfig
	TagsConfig       = runtimeconfig.TagsConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
	HTTPConfig       = runtimeconfig.HTTPConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// ConfigFromEnv reads SITE_* variables over the defaults.
func ConfigFromEnv() (Config, error) {
	return runtimeconfig.FromEnv()
}
