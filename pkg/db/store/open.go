package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thorchain-labs/midgardx/pkg/db"
	"github.com/thorchain-labs/midgardx/pkg/db/clickhouse"
	"github.com/thorchain-labs/midgardx/pkg/db/history"
	"github.com/thorchain-labs/midgardx/pkg/db/memory"
	"github.com/thorchain-labs/midgardx/pkg/utils"
)

const (
	KindClickHouse = "clickhouse"
	KindMemory     = "memory"
)

// NewHistoryStore opens the store selected by STORE (clickhouse by default) for component.
// The ClickHouse database is CLICKHOUSE_DB.
func NewHistoryStore(ctx context.Context, logger *zap.Logger, component string) (db.HistoryStore, error) {
	return Open(ctx, logger, utils.Env("STORE", KindClickHouse), utils.Env("CLICKHOUSE_DB", "midgard_history"), component)
}

func Open(ctx context.Context, logger *zap.Logger, kind, database, component string) (db.HistoryStore, error) {
	switch kind {
	case KindMemory:
		logger.Warn("Using in-memory history store, data is lost on exit", zap.String("component", component))
		return memory.NewStore(), nil
	case KindClickHouse, "":
		logger.Info("Opening history database", zap.String("database", database), zap.String("component", component))
		return history.New(ctx, logger, database, clickhouse.GetPoolConfigForComponent(component))
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}
