package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/phrazzld/taskdeck-api/internal/config"
	"github.com/phrazzld/taskdeck-api/internal/events"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
	"github.com/phrazzld/taskdeck-api/internal/platform/postgres"
	"github.com/phrazzld/taskdeck-api/internal/service/auth"
	"github.com/phrazzld/taskdeck-api/internal/service/tasks"
)

// application holds the wired dependencies of a running server.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	db        *sql.DB
	natsConn  *nats.Conn

	jwtService  auth.JWTService
	taskService tasks.Service
}

// loadConfigAndLogger is the common start of every subcommand.
func loadConfigAndLogger(configFile string) (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, closer, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, closer, nil
}

// newApplication loads configuration and wires stores, events, services and
// auth. The caller owns the result and must Run it, which cleans up.
func newApplication(ctx context.Context, configFile string) (*application, error) {
	cfg, log, closer, err := loadConfigAndLogger(configFile)
	if err != nil {
		return nil, err
	}

	app := &application{config: cfg, logger: log, logCloser: closer}
	if err := app.wire(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	log.Info("application initialized",
		slog.Int("port", cfg.Server.Port),
		slog.String("timezone", cfg.Server.Timezone),
		slog.Bool("nats_enabled", app.natsConn != nil))
	return app, nil
}

func (app *application) wire(ctx context.Context) error {
	cfg := app.config

	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Server.Timezone, err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.db, err = openDatabase(ctx, cfg.Database, app.logger)
	if err != nil {
		return err
	}

	emitter, err := app.newEventEmitter()
	if err != nil {
		return err
	}

	app.taskService = tasks.NewService(
		app.db,
		postgres.NewPostgresTaskStore(app.db, app.logger),
		postgres.NewPostgresTaskTagStore(app.db, app.logger),
		emitter,
		app.logger,
		tasks.WithLocation(loc),
	)
	return nil
}

// newEventEmitter logs every task event and, when a NATS URL is configured,
// also publishes it.
func (app *application) newEventEmitter() (*events.InMemoryEventEmitter, error) {
	emitter := events.NewInMemoryEventEmitter(app.logger)
	emitter.RegisterHandler(events.NewLoggingHandler(app.logger))

	if app.config.Events.NATSURL == "" {
		return emitter, nil
	}

	conn, err := events.ConnectNATS(app.config.Events.NATSURL, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	app.natsConn = conn
	emitter.RegisterHandler(events.NewNATSHandler(conn, app.config.Events.SubjectPrefix, app.logger))
	return emitter, nil
}

// Run serves HTTP until ctx is cancelled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources in reverse order of acquisition.
func (app *application) cleanup() {
	if app.natsConn != nil {
		if err := app.natsConn.Drain(); err != nil {
			app.logger.Error("error draining NATS connection", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
	if app.logCloser != nil {
		_ = app.logCloser.Close()
	}
}

// runMigrations opens the database and runs one goose command.
func runMigrations(ctx context.Context, configFile, command string) error {
	cfg, log, closer, err := loadConfigAndLogger(configFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, command, log); err != nil {
		return err
	}
	log.Info("migration finished", slog.String("command", command))
	return nil
}

// issueToken signs an access token for ownerID with the configured secret.
func issueToken(ctx context.Context, configFile, ownerID string) (string, error) {
	id, err := uuid.Parse(ownerID)
	if err != nil || id == uuid.Nil {
		return "", fmt.Errorf("invalid owner id %q", ownerID)
	}

	cfg, _, closer, err := loadConfigAndLogger(configFile)
	if err != nil {
		return "", err
	}
	defer closer.Close()

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return "", fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	return jwtService.GenerateToken(ctx, id)
}
