// Package server initializes and runs the application server. It opens the
// database, applies migrations, wires the object store and services together,
// handles graceful shutdown, and starts the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/avoronov/storebox/internal/logging"
	"github.com/avoronov/storebox/internal/server/config"
	"github.com/avoronov/storebox/internal/server/httpapi"
	"github.com/avoronov/storebox/internal/server/repositories/repomanager"
	"github.com/avoronov/storebox/internal/server/services"
	"github.com/avoronov/storebox/internal/server/storage"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	fileService *services.FileService
	userService *services.UserService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, storage.Config{
		RootUser:     cfg.S3RootUser,
		RootPassword: cfg.S3RootPassword,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	fs, err := services.NewFileService(rm.Files(db), rm.Users(db), store, logger)
	if err != nil {
		return nil, fmt.Errorf("file service init error: %w", err)
	}
	us := services.NewUserService(rm.Users(db), logger)

	return &App{config: cfg, logger: logger, db: db, fileService: fs, userService: us}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger,
		app.fileService, app.userService,
		app.config.SecretKey, app.config.AccessTokenValidityDuration)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "Error closing database", "error", err)
	}
}
