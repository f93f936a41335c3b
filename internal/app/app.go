// Package app initializes and runs the archive server: it opens the
// database, applies migrations, wires the services and drives the purge
// scheduler until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/teleshelf/teleshelf/internal/config"
	"github.com/teleshelf/teleshelf/internal/dbx"
	"github.com/teleshelf/teleshelf/internal/logging"
	"github.com/teleshelf/teleshelf/internal/repositories/repomanager"
	"github.com/teleshelf/teleshelf/internal/scheduler"
	"github.com/teleshelf/teleshelf/internal/services"
)

const (
	dbPingRetries   = 5
	dbPingBaseDelay = time.Second
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	archive *services.ArchiveService
	search  *services.SearchService
	trash   *services.TrashService
	purger  *scheduler.PurgeScheduler

	closeDB func() error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := dbx.Open(ctx, "pgx", cfg.DatabaseDSN, dbPingRetries, dbPingBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	stats, err := services.NewStatsCache(cfg.StatsCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("stats cache init error: %w", err)
	}

	archive := services.NewArchiveService(db, repos, stats, logger, cfg.SearchLimitCap)
	search := services.NewSearchService(db, repos, logger, cfg.SearchLimitCap)
	trash := services.NewTrashService(db, repos, stats, logger, cfg.BatchDeleteCap)
	purger := scheduler.NewPurgeScheduler(trash, logger, cfg.Retention(), cfg.PurgeInterval)

	return &App{
		config:  cfg,
		logger:  logger,
		archive: archive,
		search:  search,
		trash:   trash,
		purger:  purger,
		closeDB: db.Close,
	}, nil
}

// Archive exposes the ingestion/listing service to transport frontends.
func (app *App) Archive() *services.ArchiveService { return app.archive }

// Search exposes the search service to transport frontends.
func (app *App) Search() *services.SearchService { return app.search }

// Trash exposes the trash lifecycle service to transport frontends.
func (app *App) Trash() *services.TrashService { return app.trash }

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run drives the purge scheduler until a termination signal or context
// cancellation, then closes the database handle.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app",
		"retention_days", app.config.RetentionDays,
		"purge_interval", app.config.PurgeInterval.String())

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.purger.Run(ctx)
	}()

	wg.Wait()

	if err := app.closeDB(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "app stopped")
}
