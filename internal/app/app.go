package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/handlers"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/marketdata"
	"github.com/ternarybob/tradedeck/internal/services/alerts"
	"github.com/ternarybob/tradedeck/internal/services/assistant"
	"github.com/ternarybob/tradedeck/internal/services/credentials"
	"github.com/ternarybob/tradedeck/internal/services/events"
	"github.com/ternarybob/tradedeck/internal/services/goals"
	"github.com/ternarybob/tradedeck/internal/services/layouts"
	"github.com/ternarybob/tradedeck/internal/services/mailer"
	"github.com/ternarybob/tradedeck/internal/services/monitor"
	"github.com/ternarybob/tradedeck/internal/services/reports"
	"github.com/ternarybob/tradedeck/internal/services/scheduler"
	"github.com/ternarybob/tradedeck/internal/services/settings"
	"github.com/ternarybob/tradedeck/internal/services/wallets"
	"github.com/ternarybob/tradedeck/internal/storage"
	"github.com/ternarybob/tradedeck/internal/upstream"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	ctx            context.Context
	cancelCtx      context.CancelFunc
	StorageManager interfaces.StorageManager

	// Upstream clients
	UpstreamClient   *upstream.Client
	MarketDataClient *marketdata.Client

	// Event bus and background services
	EventService     interfaces.EventService
	SchedulerService interfaces.SchedulerService
	MonitorService   interfaces.MonitorService

	// Domain services
	LayoutService     interfaces.LayoutService
	WalletService     interfaces.WalletService
	GoalService       interfaces.GoalService
	AlertService      interfaces.AlertService
	CredentialService interfaces.CredentialService
	SettingsService   interfaces.SettingsService
	AssistantService  interfaces.AssistantService
	ReportService     interfaces.ReportService
	MailerService     *mailer.Service

	// HTTP handlers
	APIHandler        *handlers.APIHandler
	QueueHandler      *handlers.QueueHandler
	LayoutHandler     *handlers.LayoutHandler
	WalletHandler     *handlers.WalletHandler
	AlertHandler      *handlers.AlertHandler
	GoalHandler       *handlers.GoalHandler
	CredentialHandler *handlers.CredentialHandler
	SettingsHandler   *handlers.SettingsHandler
	AssistantHandler  *handlers.AssistantHandler
	ReportHandler     *handlers.ReportHandler
	StatusHandler     *handlers.StatusHandler
	WSHandler         *handlers.WebSocketHandler

	wsWriter *handlers.WebSocketWriter
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	app.ctx, app.cancelCtx = context.WithCancel(context.Background())

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Event bus and WebSocket handler come up before the services that
	// publish through them
	app.EventService = events.NewService(app.Logger)
	app.WSHandler = handlers.NewWebSocketHandler(app.EventService, app.Logger, &app.Config.WebSocket)

	// Route log output to connected dashboard clients
	wsWriter, err := handlers.NewWebSocketWriter(app.WSHandler, arbormodels.WriterConfiguration{}, &app.Config.WebSocket)
	if err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to create WebSocket log writer - log streaming disabled")
	} else {
		app.wsWriter = wsWriter
	}

	if err := app.initClients(); err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	if err := app.initScheduledJobs(); err != nil {
		return nil, fmt.Errorf("failed to initialize scheduled jobs: %w", err)
	}

	// Start the queue poll loop after everything is wired so the first
	// snapshot can broadcast to the WebSocket hub
	if err := app.MonitorService.Start(app.ctx); err != nil {
		return nil, fmt.Errorf("failed to start queue monitor: %w", err)
	}

	logger.Info().
		Bool("alerts_enabled", cfg.Alerts.Enabled).
		Bool("reports_enabled", cfg.Reports.Enabled).
		Str("assistant_provider", app.AssistantService.Provider()).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initClients builds the upstream HTTP clients from config
func (a *App) initClients() error {
	a.UpstreamClient = upstream.NewClient(
		upstream.WithBaseURL(a.Config.Upstream.BaseURL),
		upstream.WithLogger(a.Logger),
		upstream.WithRateLimit(a.Config.Upstream.RateLimit),
	)

	a.MarketDataClient = marketdata.NewClient(
		marketdata.WithBaseURL(a.Config.MarketData.BaseURL),
		marketdata.WithLogger(a.Logger),
		marketdata.WithRateLimit(a.Config.MarketData.RateLimit),
		marketdata.WithCacheTTL(a.Config.MarketData.CacheTTL),
	)

	a.Logger.Debug().
		Str("upstream", a.Config.Upstream.BaseURL).
		Str("marketdata", a.Config.MarketData.BaseURL).
		Msg("Upstream clients initialized")

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	ctx := context.Background()

	a.MonitorService = monitor.NewService(
		a.UpstreamClient,
		a.StorageManager.SnapshotStorage(),
		a.EventService,
		a.Logger,
		&a.Config.Queue,
	)

	catalog, err := layouts.LoadCatalog(a.Config.Widgets.CatalogPath, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to load widget catalog: %w", err)
	}
	layoutService := layouts.NewService(
		a.StorageManager.LayoutStorage(),
		a.EventService,
		catalog,
		a.Logger,
	)
	if err := layoutService.EnsureBuiltin(ctx, handlers.DefaultUserID); err != nil {
		return fmt.Errorf("failed to seed built-in layout: %w", err)
	}
	a.LayoutService = layoutService

	a.WalletService = wallets.NewService(
		a.StorageManager.WalletStorage(),
		a.StorageManager.TransactionStorage(),
		a.MarketDataClient,
		a.Logger,
		a.Config.MarketData.VsCurrency,
	)

	a.GoalService = goals.NewService(
		a.StorageManager.GoalStorage(),
		a.WalletService,
		a.Logger,
	)

	settingsService := settings.NewService(a.StorageManager.KVStorage(), a.Logger)
	if err := settingsService.SeedDefaults(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to seed default settings")
	}
	a.SettingsService = settingsService

	a.MailerService = mailer.NewService(a.SettingsService, a.Logger)

	a.AlertService = alerts.NewService(
		a.StorageManager.AlertStorage(),
		a.MarketDataClient,
		a.EventService,
		a.SettingsService,
		a.MailerService,
		a.Logger,
		a.Config.MarketData.VsCurrency,
	)

	a.CredentialService = credentials.NewService(
		a.StorageManager.CredentialStorage(),
		a.Config.Exchanges,
		a.Logger,
	)

	a.AssistantService = assistant.NewService(
		a.Config,
		a.StorageManager.KVStorage(),
		a.MonitorService,
		a.WalletService,
		a.Logger,
	)

	a.ReportService = reports.NewService(
		a.MonitorService,
		a.WalletService,
		a.GoalService,
		a.MailerService,
		a.Logger,
		a.Config.MarketData.VsCurrency,
	)

	a.SchedulerService = scheduler.NewService(a.Logger)

	a.Logger.Debug().Msg("Services initialized")
	return nil
}

// initHandlers wires services into their HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler()
	a.QueueHandler = handlers.NewQueueHandler(a.MonitorService, a.Logger)
	a.LayoutHandler = handlers.NewLayoutHandler(a.LayoutService, a.Logger)
	a.WalletHandler = handlers.NewWalletHandler(a.WalletService, a.Logger)
	a.AlertHandler = handlers.NewAlertHandler(a.AlertService, a.Logger)
	a.GoalHandler = handlers.NewGoalHandler(a.GoalService, a.Logger)
	a.CredentialHandler = handlers.NewCredentialHandler(a.CredentialService, a.Logger)
	a.SettingsHandler = handlers.NewSettingsHandler(a.SettingsService, a.Logger)
	a.AssistantHandler = handlers.NewAssistantHandler(a.AssistantService, a.Logger)
	a.ReportHandler = handlers.NewReportHandler(a.ReportService, a.Config.Reports.Recipient, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(
		a.StorageManager,
		a.MonitorService,
		a.SchedulerService,
		a.AssistantService,
		a.WSHandler,
		a.Logger,
	)

	a.Logger.Debug().Msg("Handlers initialized")
	return nil
}

// initScheduledJobs registers and starts cron jobs. The scheduler runs even
// when every job is disabled so /api/status can report its state.
func (a *App) initScheduledJobs() error {
	if a.Config.Alerts.Enabled {
		schedule := a.Config.Alerts.Schedule
		err := a.SchedulerService.RegisterJob("alert-evaluation", schedule, func() error {
			triggered, err := a.AlertService.Evaluate(a.ctx)
			if err != nil {
				return err
			}
			if triggered > 0 {
				a.Logger.Info().Int("triggered", triggered).Msg("Price alerts triggered")
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to register alert job: %w", err)
		}
	}

	// History pruning keeps the snapshot store inside the retention window
	retention, err := time.ParseDuration(a.Config.Queue.HistoryRetention)
	if err != nil {
		retention = 7 * 24 * time.Hour
	}
	err = a.SchedulerService.RegisterJob("snapshot-pruning", "@every 1h", func() error {
		removed, err := a.MonitorService.PruneHistory(a.ctx, time.Now().Add(-retention))
		if err != nil {
			return err
		}
		if removed > 0 {
			a.Logger.Debug().Int("removed", removed).Msg("Pruned historical queue points")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to register pruning job: %w", err)
	}

	if a.Config.Reports.Enabled && a.Config.Reports.Recipient != "" {
		err := a.SchedulerService.RegisterJob("portfolio-report", a.Config.Reports.Schedule, func() error {
			return a.ReportService.EmailPortfolioReport(a.ctx, a.Config.Reports.Recipient)
		})
		if err != nil {
			return fmt.Errorf("failed to register report job: %w", err)
		}
	}

	if err := a.SchedulerService.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	a.Logger.Debug().
		Int("jobs", len(a.SchedulerService.GetAllJobStatuses())).
		Msg("Scheduler started")
	return nil
}

// Close shuts down the application in reverse dependency order
func (a *App) Close() error {
	if a.cancelCtx != nil {
		a.Logger.Info().Msg("Cancelling background goroutines")
		a.cancelCtx()
		time.Sleep(100 * time.Millisecond)
	}

	if a.MonitorService != nil {
		a.MonitorService.Stop()
	}

	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.AssistantService != nil {
		if err := a.AssistantService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close assistant service")
		}
	}

	if a.wsWriter != nil {
		if err := a.wsWriter.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close WebSocket log writer")
		}
	}

	if a.WSHandler != nil {
		a.WSHandler.Close()
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
