package indexer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	"github.com/thorchain-labs/midgardx/pkg/db"
	"github.com/thorchain-labs/midgardx/pkg/db/store"
	"github.com/thorchain-labs/midgardx/pkg/indexer/backfill"
	"github.com/thorchain-labs/midgardx/pkg/indexer/config"
	"github.com/thorchain-labs/midgardx/pkg/indexer/scheduler"
	"github.com/thorchain-labs/midgardx/pkg/indexer/types"
	"github.com/thorchain-labs/midgardx/pkg/logging"
	"github.com/thorchain-labs/midgardx/pkg/metrics"
	"github.com/thorchain-labs/midgardx/pkg/midgard"
	"github.com/thorchain-labs/midgardx/pkg/redis"
	"github.com/thorchain-labs/midgardx/pkg/retry"
)

type App struct {
	Config    config.Indexer
	Store     db.HistoryStore
	Runner    *backfill.Runner
	Scheduler *scheduler.Scheduler
	// Status holds the latest outcome of every series, keyed by StatusKey.
	Status *xsync.Map[string, types.SeriesStatus]
	// RedisClient is optional; when set every persisted page is announced on it.
	RedisClient *redis.Client
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	// Server exposes /status, /health and /metrics.
	Server *http.Server
}

// Deps are the collaborators New wires together. Clock defaults to the wall clock.
type Deps struct {
	Store   db.HistoryStore
	Midgard midgard.Client
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Clock   scheduler.Clock
}

// Initialize initializes the application from the environment.
func Initialize(ctx context.Context) *App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid indexer configuration", zap.Error(err))
	}

	historyStore, err := store.Open(ctx, logger, cfg.Store, cfg.Database, "indexer")
	if err != nil {
		logger.Fatal("Unable to initialize history database", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis client - ingestion events will not be published", zap.Error(err))
			redisClient = nil
		}
	} else {
		logger.Info("Redis disabled - ingestion events will not be published")
	}

	client := midgard.NewHTTPWithOpts(midgard.Opts{
		Endpoints: cfg.MidgardEndpoints,
		RPS:       cfg.MidgardRPS,
		Timeout:   cfg.MidgardTimeout,
	})

	app, err := New(cfg, Deps{
		Store:   historyStore,
		Midgard: client,
		Redis:   redisClient,
		Metrics: metrics.New("midgardx_indexer"),
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("Unable to initialize indexer", zap.Error(err))
	}
	return app
}

// New builds the ingestion pipeline, its scheduler and the status server.
func New(cfg config.Indexer, deps Deps) (*App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := &App{
		Config:      cfg,
		Store:       deps.Store,
		Status:      xsync.NewMap[string, types.SeriesStatus](),
		RedisClient: deps.Redis,
		Metrics:     deps.Metrics,
		Logger:      logger,
	}

	driver := &backfill.Driver{
		Logger:      logger.Named("backfill"),
		PageCount:   cfg.PageCount,
		PageTimeout: cfg.PageTimeout,
		Retry:       retry.PageConfig(cfg.PageRetries),
		Metrics:     deps.Metrics,
	}
	if deps.Redis != nil {
		driver.Events = deps.Redis
	}

	app.Runner = &backfill.Runner{
		Logger:      logger,
		Driver:      driver,
		Resolver:    &backfill.Resolver{Store: deps.Store, StartTime: cfg.StartTime},
		Pipelines:   backfill.Pipelines(deps.Midgard, &backfill.Writer{Store: deps.Store}, cfg.Pool),
		MaxParallel: cfg.MaxParallel,
		Status:      app.recordStatus,
	}

	sched, err := scheduler.New(scheduler.Config{
		Spec:       cfg.Cron,
		Clock:      deps.Clock,
		Logger:     logger.Named("scheduler"),
		Metrics:    deps.Metrics,
		RunOnStart: cfg.RunOnStart,
	}, func(ctx context.Context, fireTime time.Time) {
		app.Runner.RunOnce(ctx, fireTime)
	})
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	app.Scheduler = sched

	app.Server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.NewRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return app, nil
}

// StatusKey identifies a series in the status map.
func StatusKey(series, pool string) string {
	if pool == "" {
		return series
	}
	return series + ":" + pool
}

func (a *App) recordStatus(st types.SeriesStatus) {
	a.Status.Store(StatusKey(st.Series, st.Pool), st)
	if !st.OK() {
		a.Logger.Warn("Series run failed",
			zap.String("series", st.Series),
			zap.Int64("cursor", st.Cursor),
			zap.String("error", st.Error))
	}
}

// RunOnce backfills every series up to now and returns their statuses.
func (a *App) RunOnce(ctx context.Context) []types.SeriesStatus {
	return a.Runner.RunOnce(ctx, time.Now())
}

// Start serves the status endpoints and runs the scheduler until ctx is canceled.
func (a *App) Start(ctx context.Context) {
	go func() {
		a.Logger.Info("Starting status server", zap.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error("Status server stopped", zap.Error(err))
		}
	}()

	_ = a.Scheduler.Run(ctx)
	a.Stop()
}

// Stop shuts down the status server and releases the store and Redis connections.
func (a *App) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = a.Server.Shutdown(shutdownCtx)

	if err := a.Store.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}
	if a.RedisClient != nil {
		_ = a.RedisClient.Close()
	}
	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
