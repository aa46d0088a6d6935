package pagetree

import "github.com/goliatone/go-pagetree/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired       = runtimeconfig.ErrDefaultLocaleRequired
	ErrSchedulerIntervalInvalid    = runtimeconfig.ErrSchedulerIntervalInvalid
	ErrSchedulerBatchSizeInvalid   = runtimeconfig.ErrSchedulerBatchSizeInvalid
	ErrSchedulerRequiresScheduling = runtimeconfig.ErrSchedulerRequiresScheduling
	ErrCacheTTLInvalid             = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderRequired     = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown      = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid         = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid        = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
	SchedulerConfig = runtimeconfig.SchedulerConfig
	Features        = runtimeconfig.Features
	CommandsConfig  = runtimeconfig.CommandsConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
