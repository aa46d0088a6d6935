package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrDefaultLocaleRequired = errors.New("pagetree config: default locale is required")
var ErrSchedulerIntervalInvalid = errors.New("pagetree config: scheduler interval must be positive")
var ErrSchedulerBatchSizeInvalid = errors.New("pagetree config: scheduler batch size must be positive")
var ErrSchedulerRequiresScheduling = errors.New("pagetree config: scheduler auto-start requires scheduling to be enabled")
var ErrCacheTTLInvalid = errors.New("pagetree config: cache ttl must be zero or positive")
var ErrLoggingProviderRequired = errors.New("pagetree config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("pagetree config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("pagetree config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("pagetree config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the page tree module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled       bool
	DefaultLocale string
	Storage       StorageConfig
	Cache         CacheConfig
	Scheduler     SchedulerConfig
	Features      Features
	Commands      CommandsConfig
	Logging       LoggingConfig
}

// StorageConfig lists identifiers for storage-related dependencies.
type StorageConfig struct {
	Provider string
}

// CacheConfig captures repository cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// SchedulerConfig controls the scheduled publish sweep.
type SchedulerConfig struct {
	// AutoStart launches the sweep runner when the module boots.
	AutoStart bool
	Interval  time.Duration
	BatchSize int
}

// Features toggles module functionality.
type Features struct {
	Scheduling bool
	Workflow   bool
	Activity   bool
	Logger     bool
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool
	Timeout time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for embedding hosts.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		DefaultLocale: "en",
		Storage: StorageConfig{
			Provider: "bun",
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Scheduler: SchedulerConfig{
			AutoStart: false,
			Interval:  time.Minute,
			BatchSize: 50,
		},
		Features: Features{
			Scheduling: true,
			Workflow:   true,
			Activity:   false,
		},
		Commands: CommandsConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		return ErrDefaultLocaleRequired
	}
	if cfg.Scheduler.AutoStart && !cfg.Features.Scheduling {
		return ErrSchedulerRequiresScheduling
	}
	if cfg.Scheduler.Interval <= 0 {
		return ErrSchedulerIntervalInvalid
	}
	if cfg.Scheduler.BatchSize <= 0 {
		return ErrSchedulerBatchSizeInvalid
	}
	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
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
