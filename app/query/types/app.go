package types

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/thorchain-labs/midgardx/pkg/db"
	"github.com/thorchain-labs/midgardx/pkg/metrics"
	"github.com/thorchain-labs/midgardx/pkg/query"
	"github.com/thorchain-labs/midgardx/pkg/redis"
)

type App struct {
	Store db.HistoryStore
	Query *query.Service
	// RedisClient is optional; when set, /health also checks it.
	RedisClient *redis.Client
	Metrics     *metrics.Metrics
	// QueryTimeout bounds every API request.
	QueryTimeout time.Duration
	// Zap Logger
	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// Start serves until ctx is done, then shuts the server down and closes the store.
func (a *App) Start(ctx context.Context) {
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error("Server stopped", zap.Error(err))
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = a.Server.Shutdown(shutdownCtx)

	if err := a.Store.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}
	if a.RedisClient != nil {
		_ = a.RedisClient.Close()
	}
	a.Logger.Info("さようなら!")
}
