package pagetree

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-pagetree/internal/commands"
	pagescmd "github.com/goliatone/go-pagetree/internal/commands/pages"
	"github.com/goliatone/go-pagetree/internal/jobs"
	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/internal/logging/gologger"
	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/goliatone/go-pagetree/internal/workflow"
	"github.com/goliatone/go-pagetree/pkg/activity"
	"github.com/goliatone/go-pagetree/pkg/activity/usersink"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// PageService exports the page service contract for consumers of the module.
type PageService = pages.Service

// PageRepository exports the page repository contract.
type PageRepository = pages.Repository

// LocaleRepository exports the locale repository contract.
type LocaleRepository = pages.LocaleRepository

// ErrDatabaseRequired indicates the configured storage provider needs a bun DB handle.
var ErrDatabaseRequired = errors.New("pagetree: bun storage requires a database; use WithDB or the memory provider")

// Module is the top level page tree runtime facade. It owns the service
// wiring; hosts interact through the exported accessors.
type Module struct {
	cfg          Config
	db           *bun.DB
	provider     interfaces.LoggerProvider
	cacheService cache.CacheService
	cacheKeys    cache.KeySerializer

	repo    pages.Repository
	locales pages.LocaleRepository
	engine  *workflow.Engine
	service pages.Service
	emitter *activity.Emitter
	worker  *jobs.Worker
	runner  *jobs.Runner
	audit   jobs.AuditRecorder
}

// Option overrides module wiring before services are constructed.
type Option func(*Module)

// WithDB supplies the bun database handle used by the bun-backed repositories.
func WithDB(db *bun.DB) Option {
	return func(m *Module) {
		m.db = db
	}
}

// WithLoggerProvider wires a logger provider; every internal component derives
// its namespaced logger from it.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.provider = provider
	}
}

// WithPageRepository overrides the default page repository, typically with the
// in-memory implementation for tests.
func WithPageRepository(repo pages.Repository) Option {
	return func(m *Module) {
		m.repo = repo
	}
}

// WithLocaleRepository overrides the default locale repository.
func WithLocaleRepository(repo pages.LocaleRepository) Option {
	return func(m *Module) {
		m.locales = repo
	}
}

// WithWorkflowEngine replaces the default page workflow definition.
func WithWorkflowEngine(engine *workflow.Engine) Option {
	return func(m *Module) {
		m.engine = engine
	}
}

// WithActivitySink forwards service activity events to the supplied sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(m *Module) {
		if sink == nil {
			return
		}
		m.emitter = activity.NewEmitter(&usersink.Hook{Sink: sink})
	}
}

// WithActivityEmitter wires a pre-built emitter, bypassing the sink adapter.
func WithActivityEmitter(emitter *activity.Emitter) Option {
	return func(m *Module) {
		m.emitter = emitter
	}
}

// WithAuditRecorder captures sweep outcomes for observability.
func WithAuditRecorder(recorder jobs.AuditRecorder) Option {
	return func(m *Module) {
		m.audit = recorder
	}
}

// WithRepositoryCache enables read-through caching on the bun repositories.
func WithRepositoryCache(service cache.CacheService, keys cache.KeySerializer) Option {
	return func(m *Module) {
		m.cacheService = service
		m.cacheKeys = keys
	}
}

// New constructs a page tree module using the provided configuration.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil && cfg.Features.Logger && runtimeLoggingProvider(cfg) == "gologger" {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	if m.repo == nil || m.locales == nil {
		switch cfg.Storage.Provider {
		case "memory":
			if m.repo == nil {
				m.repo = pages.NewMemoryRepository()
			}
			if m.locales == nil {
				m.locales = pages.NewMemoryLocaleRepository()
			}
		default:
			if m.db == nil {
				return nil, ErrDatabaseRequired
			}
			if m.repo == nil {
				if cfg.Cache.Enabled {
					m.repo = pages.NewBunRepositoryWithCache(m.db, m.cacheService, m.cacheKeys)
				} else {
					m.repo = pages.NewBunRepository(m.db)
				}
			}
			if m.locales == nil {
				m.locales = pages.NewBunLocaleRepository(m.db)
			}
		}
	}

	if m.engine == nil {
		m.engine = workflow.New()
	}

	serviceOpts := []pages.ServiceOption{
		pages.WithEngine(m.engine),
		pages.WithLogger(logging.PagesLogger(m.provider)),
		pages.WithSchedulingEnabled(cfg.Features.Scheduling),
	}
	if m.emitter != nil && cfg.Features.Activity {
		serviceOpts = append(serviceOpts, pages.WithActivityEmitter(m.emitter))
	}
	m.service = pages.NewService(m.repo, m.locales, serviceOpts...)

	if cfg.Features.Scheduling {
		workerOpts := []jobs.Option{
			jobs.WithLogger(logging.SchedulerLogger(m.provider)),
			jobs.WithBatchSize(cfg.Scheduler.BatchSize),
		}
		if m.audit != nil {
			workerOpts = append(workerOpts, jobs.WithAuditRecorder(m.audit))
		}
		m.worker = jobs.NewWorker(m.service, m.repo, workerOpts...)
		m.runner = jobs.NewRunner(m.worker,
			jobs.WithInterval(cfg.Scheduler.Interval),
			jobs.WithRunnerLogger(logging.SchedulerLogger(m.provider)),
		)
	}

	return m, nil
}

// Pages returns the configured page service.
func (m *Module) Pages() PageService {
	return m.service
}

// Repository exposes the page repository for host-level integrations.
func (m *Module) Repository() PageRepository {
	return m.repo
}

// Locales exposes the locale repository.
func (m *Module) Locales() LocaleRepository {
	return m.locales
}

// WorkflowEngine returns the engine driving page status transitions.
func (m *Module) WorkflowEngine() *workflow.Engine {
	return m.engine
}

// SweepWorker returns the scheduled publish worker, or nil when scheduling is
// disabled. Hosts with their own job system call Process from their loop.
func (m *Module) SweepWorker() *jobs.Worker {
	return m.worker
}

// StartScheduler blocks running the sweep until ctx is cancelled. It returns
// immediately when scheduling is disabled.
func (m *Module) StartScheduler(ctx context.Context) error {
	if m.runner == nil {
		return nil
	}
	return m.runner.Run(ctx)
}

func runtimeLoggingProvider(cfg Config) string {
	return strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
}

// CommandHandlers bundles the message handlers exposed to dispatchers.
type CommandHandlers struct {
	Move     *pagescmd.MovePageHandler
	Publish  *pagescmd.PublishPageHandler
	Schedule *pagescmd.SchedulePageHandler
}

// Commands builds command handlers bound to this module's page service.
func (m *Module) Commands() CommandHandlers {
	logger := commands.CommandLogger(m.provider, "pages")
	gates := pagescmd.FeatureGates{
		SchedulingEnabled: func() bool { return m.cfg.Features.Scheduling },
		WorkflowEnabled:   func() bool { return m.cfg.Features.Workflow },
	}
	var timeout time.Duration
	if m.cfg.Commands.Timeout > 0 {
		timeout = m.cfg.Commands.Timeout
	}

	moveOpts := []commands.HandlerOption[pagescmd.MovePageCommand]{}
	publishOpts := []commands.HandlerOption[pagescmd.PublishPageCommand]{}
	scheduleOpts := []commands.HandlerOption[pagescmd.SchedulePageCommand]{}
	if timeout > 0 {
		moveOpts = append(moveOpts, commands.WithTimeout[pagescmd.MovePageCommand](timeout))
		publishOpts = append(publishOpts, commands.WithTimeout[pagescmd.PublishPageCommand](timeout))
		scheduleOpts = append(scheduleOpts, commands.WithTimeout[pagescmd.SchedulePageCommand](timeout))
	}

	return CommandHandlers{
		Move:     pagescmd.NewMovePageHandler(m.service, logger, moveOpts...),
		Publish:  pagescmd.NewPublishPageHandler(m.service, logger, gates, publishOpts...),
		Schedule: pagescmd.NewSchedulePageHandler(m.service, logger, gates, scheduleOpts...),
	}
}
