package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thorchain-labs/midgardx/app/query/types"
	"github.com/thorchain-labs/midgardx/pkg/db/store"
	"github.com/thorchain-labs/midgardx/pkg/logging"
	"github.com/thorchain-labs/midgardx/pkg/metrics"
	historyquery "github.com/thorchain-labs/midgardx/pkg/query"
	"github.com/thorchain-labs/midgardx/pkg/redis"
	"github.com/thorchain-labs/midgardx/pkg/utils"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	historyStore, err := store.NewHistoryStore(ctx, logger, "query")
	if err != nil {
		logger.Fatal("Unable to initialize history database", zap.Error(err))
	}

	// Redis feeds /ws/events and /health; the indexer is the publisher.
	var redisClient *redis.Client
	if utils.EnvBool("REDIS_ENABLED", false) {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis client - real-time events disabled", zap.Error(err))
			redisClient = nil
		}
	}

	return &types.App{
		Store:        historyStore,
		Query:        historyquery.NewService(historyStore),
		RedisClient:  redisClient,
		Metrics:      metrics.New("midgardx_query"),
		QueryTimeout: utils.EnvDuration("QUERY_TIMEOUT", 10*time.Second),
		Logger:       logger,
	}
}
