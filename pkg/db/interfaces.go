package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/thorchain-labs/midgardx/pkg/db/models/history"
)

// HistoryWriter persists mapped buckets. Each call is one batch; a failed call may be partially applied.
type HistoryWriter interface {
	InsertDepths(ctx context.Context, rows []*history.Depth) error
	InsertRunePools(ctx context.Context, rows []*history.RunePool) error
	InsertSwaps(ctx context.Context, rows []*history.Swap) error
	// InsertEarnings writes a single parent bucket and returns the identifier children must carry.
	InsertEarnings(ctx context.Context, row *history.Earnings) (uuid.UUID, error)
	InsertPoolEarnings(ctx context.Context, rows []*history.PoolEarnings) error
}

// HistoryReader serves the query API.
type HistoryReader interface {
	QueryDepths(ctx context.Context, spec history.QuerySpec) ([]history.Depth, error)
	QueryRunePools(ctx context.Context, spec history.QuerySpec) ([]history.RunePool, error)
	QuerySwaps(ctx context.Context, spec history.QuerySpec) ([]history.Swap, error)
	QueryEarnings(ctx context.Context, spec history.QuerySpec) ([]history.Earnings, error)
	QueryPoolEarnings(ctx context.Context, spec history.QuerySpec) ([]history.PoolEarnings, error)
	PoolEarningsByParent(ctx context.Context, earningsID uuid.UUID, sortBy string, desc bool, limit int) ([]history.PoolEarnings, error)
	// GetEarnings returns ErrNotFound when no parent has the identifier.
	GetEarnings(ctx context.Context, id uuid.UUID) (*history.Earnings, error)
}

// HistoryStore is the full store used by both the indexer and the query API.
type HistoryStore interface {
	HistoryWriter
	HistoryReader
	// LastEndTime returns max(end_time) of the series, or 0 when it holds no buckets.
	// A non-empty pool narrows pooled series to that pool's buckets.
	LastEndTime(ctx context.Context, series history.Series, pool string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
