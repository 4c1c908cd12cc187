package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xvierd/fuzzle/internal/adapters/identity"
	"github.com/xvierd/fuzzle/internal/adapters/notification"
	"github.com/xvierd/fuzzle/internal/adapters/storage"
	"github.com/xvierd/fuzzle/internal/adapters/tui"
	"github.com/xvierd/fuzzle/internal/config"
	"github.com/xvierd/fuzzle/internal/domain"
	"github.com/xvierd/fuzzle/internal/logging"
	"github.com/xvierd/fuzzle/internal/ports"
	"github.com/xvierd/fuzzle/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config     *config.Config
	logger     logging.Logger
	storage    ports.Storage
	identity   ports.IdentityProvider
	controller *services.Controller
	history    *services.HistoryService
	notifier   *notification.Notifier
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if userFlag != "" {
		cfg.UserID = userFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// initializeServices sets up all the required services and adapters.
func initializeServices(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app.config = cfg

	app.logger, err = logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.notifier = notification.New(&cfg.Notifications)

	if dbPath == "" {
		dbPath = config.GetDBPath(cfg)
	}
	if cfg.Storage.Backend == storage.BackendSQLite {
		if err := os.MkdirAll(getDir(dbPath), 0750); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	app.storage, err = storage.Open(ctx, storage.Options{
		Backend:     cfg.Storage.Backend,
		SQLitePath:  dbPath,
		PostgresDSN: cfg.Storage.PostgresDSN,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.identity = identity.NewStatic(cfg.UserID)
	app.controller = services.NewController(app.storage, app.identity,
		app.logger.With("component", "controller"),
		services.WithDefaultMinutes(cfg.Timer.DefaultMinutes))
	app.history = services.NewHistoryService(app.storage, app.identity, cfg.Logs.PageSize)

	app.controller.OnSessionFinished(func(session domain.ActiveSession) {
		notifyInBackground(app.logger, "session finished", func() error {
			return app.notifier.NotifySessionFinished(session)
		})
	})
	app.controller.OnPointsAwarded(func(session domain.ActiveSession, points int) {
		notifyInBackground(app.logger, "points", func() error {
			return app.notifier.NotifyPointsAwarded(session, points)
		})
	})

	return nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	var err error
	if app.storage != nil {
		err = app.storage.Close()
	}
	if app.logger != nil {
		// Sync on a file-backed logger can fail harmlessly on some platforms.
		_ = app.logger.Sync()
	}
	return err
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx
}

// newAppModel builds the full-screen model over the initialized services.
func newAppModel(ctx context.Context) tui.Model {
	return tui.NewModel(tui.Options{
		Controller:            app.controller,
		History:               app.history,
		Theme:                 &app.config.Theme,
		TickInterval:          app.config.Timer.TickInterval,
		Logger:                app.logger.With("component", "tui"),
		Context:               ctx,
		NotificationsEnabled:  app.notifier.IsEnabled(),
		OnToggleNotifications: saveNotificationSetting,
	})
}

// saveNotificationSetting applies the toggle now and persists only that key
// to the config file.
func saveNotificationSetting(enabled bool) {
	app.notifier.SetEnabled(enabled)
	if err := config.SetNotificationsEnabled(enabled); err != nil {
		app.logger.Warnf("could not save notification setting: %v", err)
	}
}

// notifyInBackground sends a desktop notification without blocking the
// caller, which is the TUI's update loop. The returned channel closes when
// the send is done.
func notifyInBackground(logger logging.Logger, what string, send func() error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := send(); err != nil {
			logger.Warnf("%s notification failed: %v", what, err)
		}
	}()
	return done
}

// launchApp runs the full-screen app until the user quits.
func launchApp(ctx context.Context) error {
	return tui.Run(ctx, newAppModel(ctx))
}
