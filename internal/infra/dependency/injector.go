// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/finance-tracker/ledger/config"
	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/application/usecase/installment"
	"github.com/finance-tracker/ledger/internal/application/usecase/recurrence"
	"github.com/finance-tracker/ledger/internal/application/usecase/transaction"
	"github.com/finance-tracker/ledger/internal/infra/server/router"
	"github.com/finance-tracker/ledger/internal/integration/adapters"
	"github.com/finance-tracker/ledger/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/ledger/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/ledger/internal/integration/metrics"
	"github.com/finance-tracker/ledger/internal/integration/persistence"
	"github.com/finance-tracker/ledger/internal/integration/scheduler"
)

// Injector holds all application dependencies.
type Injector struct {
	Config    *config.Config
	DB        *gorm.DB
	Router    *router.Router
	Processor *recurrence.ProcessDueUseCase
	// Scheduler is nil when background processing is disabled.
	Scheduler *scheduler.RecurrenceScheduler

	redis *redis.Client
}

// Options overrides infrastructure that tests replace.
type Options struct {
	Clock    adapter.Clock
	Locker   adapter.Locker
	Registry *prometheus.Registry
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(ctx context.Context, cfg *config.Config, db *gorm.DB, opts Options) (*Injector, error) {
	inj := &Injector{Config: cfg, DB: db}

	// Create repositories
	dashboardRepo := persistence.NewDashboardRepository(db)
	recurrenceRepo := persistence.NewRecurrenceRepository(db)
	transactionRepo := persistence.NewTransactionRepository(db)

	// Create adapters/services
	clock := opts.Clock
	if clock == nil {
		clock = adapters.NewSystemClock()
	}
	locker := opts.Locker
	if locker == nil {
		locker = inj.newLocker(ctx, &cfg.Redis)
	}
	permissions := adapters.NewPermissionGate(dashboardRepo)
	tokenService := adapters.NewTokenService(cfg.JWT.Secret)

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	appMetrics, err := metrics.NewPrometheusMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	processorCfg := cfg.Processor
	definitionLocks := recurrence.DefinitionLocks{
		Locker:        locker,
		TTL:           processorCfg.LockTTL,
		MaxRetries:    processorCfg.MaxRetries,
		RetryInterval: processorCfg.RetryInterval,
	}
	groupLocks := installment.GroupLocks{
		Locker:        locker,
		TTL:           processorCfg.LockTTL,
		MaxRetries:    processorCfg.MaxRetries,
		RetryInterval: processorCfg.RetryInterval,
	}

	// Create recurrence use cases
	createRecurrenceUseCase := recurrence.NewCreateUseCase(recurrenceRepo, permissions)
	listRecurrencesUseCase := recurrence.NewListUseCase(recurrenceRepo, permissions)
	getRecurrenceUseCase := recurrence.NewGetUseCase(recurrenceRepo, permissions)
	updateRecurrenceUseCase := recurrence.NewUpdateUseCase(recurrenceRepo, permissions, definitionLocks, clock)
	deleteRecurrenceUseCase := recurrence.NewDeleteUseCase(recurrenceRepo, transactionRepo, permissions, definitionLocks, clock)
	inj.Processor = recurrence.NewProcessDueUseCase(
		recurrenceRepo,
		permissions,
		definitionLocks,
		clock,
		appMetrics,
		recurrence.ProcessorSettings{
			Workers:    processorCfg.Workers,
			MaxCatchUp: processorCfg.MaxCatchUp,
		},
	)

	// Create installment use cases
	createPlanUseCase := installment.NewCreatePlanUseCase(transactionRepo, permissions)
	getGroupUseCase := installment.NewGetGroupUseCase(transactionRepo, permissions)
	updateGroupUseCase := installment.NewUpdateGroupUseCase(transactionRepo, permissions, groupLocks, appMetrics)
	deleteGroupUseCase := installment.NewDeleteGroupUseCase(transactionRepo, permissions, groupLocks, appMetrics)

	// Create transaction use cases
	bulkDeleteTransactionsUseCase := transaction.NewBulkDeleteTransactionsUseCase(transactionRepo, permissions, groupLocks, appMetrics)

	// Create the background scheduler
	var notifier controller.ProcessNotifier
	if processorCfg.Enabled {
		recurrenceScheduler, err := scheduler.NewRecurrenceScheduler(inj.Processor, scheduler.Config{
			Schedule:   processorCfg.Schedule,
			RunTimeout: processorCfg.RunTimeout,
		})
		if err != nil {
			return nil, err
		}
		inj.Scheduler = recurrenceScheduler
		notifier = recurrenceScheduler
	}

	// Create controllers
	healthController := controller.NewHealthController(func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})

	recurrenceController := controller.NewRecurrenceController(
		createRecurrenceUseCase,
		listRecurrencesUseCase,
		getRecurrenceUseCase,
		updateRecurrenceUseCase,
		deleteRecurrenceUseCase,
		inj.Processor,
		notifier,
	)

	installmentController := controller.NewInstallmentController(
		createPlanUseCase,
		getGroupUseCase,
		updateGroupUseCase,
		deleteGroupUseCase,
	)

	transactionController := controller.NewTransactionController(bulkDeleteTransactionsUseCase)

	// Create middleware
	// Use higher rate limits for E2E/test environments to prevent flaky tests
	var triggerRateLimiter *middleware.RateLimiter
	if cfg.Server.Environment == "e2e" || cfg.Server.Environment == "test" {
		triggerRateLimiter = middleware.NewRateLimiter(1000, processorCfg.TriggerWindow)
	} else {
		triggerRateLimiter = middleware.NewRateLimiter(processorCfg.TriggerLimit, processorCfg.TriggerWindow)
	}
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Create router
	inj.Router = router.NewRouter(
		healthController,
		recurrenceController,
		installmentController,
		transactionController,
		triggerRateLimiter,
		authMiddleware,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	)

	return inj, nil
}

// newLocker connects to Redis and falls back to an in-process locker when it
// is unreachable. The fallback only serialises work inside this process.
func (inj *Injector) newLocker(ctx context.Context, cfg *config.RedisConfig) adapter.Locker {
	if cfg.URL == "" {
		slog.Warn("Redis not configured, using in-process locks")
		return adapters.NewMemoryLocker()
	}

	client, err := adapters.NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Warn("Redis unavailable, using in-process locks", "error", err)
		return adapters.NewMemoryLocker()
	}

	inj.redis = client
	slog.Info("Redis locker initialized", "prefix", cfg.KeyPrefix)
	return adapters.NewRedisLocker(client, cfg.KeyPrefix)
}

// Close releases connections opened by the injector.
func (inj *Injector) Close() error {
	if inj.redis == nil {
		return nil
	}
	return inj.redis.Close()
}
