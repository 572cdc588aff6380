package history

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	storage "github.com/thorchain-labs/midgardx/pkg/db"
	"github.com/thorchain-labs/midgardx/pkg/db/clickhouse"
)

// DB stores the five history series in one ClickHouse database, one ReplacingMergeTree table each.
// It implements storage.HistoryStore.
type DB struct {
	clickhouse.Client
	Name string
}

var _ storage.HistoryStore = (*DB)(nil)

// New connects to ClickHouse and creates the database and tables if they do not exist.
func New(ctx context.Context, logger *zap.Logger, name string, poolConfig *clickhouse.PoolConfig) (*DB, error) {
	client, err := clickhouse.New(ctx, logger.With(
		zap.String("db", name),
		zap.String("component", poolConfig.Component),
	), name, poolConfig)
	if err != nil {
		return nil, err
	}

	historyDB := &DB{
		Client: client,
		Name:   client.Database,
	}

	if err := historyDB.InitializeDB(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return historyDB, nil
}

// InitializeDB creates every series table.
func (db *DB) InitializeDB(ctx context.Context) error {
	for _, series := range allSeries {
		query := createTableSQL(db.Name, series, db.Engine(clickhouse.ReplacingMergeTree, ""), db.OnCluster())
		if err := db.Exec(ctx, query); err != nil {
			return fmt.Errorf("create %s: %w", series.Table(), err)
		}
	}
	db.Logger.Info("History tables ready", zap.String("database", db.Name))
	return nil
}

// DatabaseName returns the name of the history database
func (db *DB) DatabaseName() string {
	return db.Name
}
