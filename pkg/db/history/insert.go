package history

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	storage "github.com/thorchain-labs/midgardx/pkg/db"
	historymodels "github.com/thorchain-labs/midgardx/pkg/db/models/history"
)

type rowValues interface {
	Values() []any
}

func (db *DB) InsertDepths(ctx context.Context, rows []*historymodels.Depth) error {
	return insertRows(ctx, db, historymodels.SeriesDepth, rows)
}

func (db *DB) InsertRunePools(ctx context.Context, rows []*historymodels.RunePool) error {
	return insertRows(ctx, db, historymodels.SeriesRunePool, rows)
}

func (db *DB) InsertSwaps(ctx context.Context, rows []*historymodels.Swap) error {
	return insertRows(ctx, db, historymodels.SeriesSwap, rows)
}

// InsertEarnings writes one parent bucket. Its identifier is derived from start_time,
// so writing the same interval again yields the same identifier and replaces the row.
func (db *DB) InsertEarnings(ctx context.Context, row *historymodels.Earnings) (uuid.UUID, error) {
	if row == nil {
		return uuid.Nil, fmt.Errorf("insert earnings: nil row: %w", storage.ErrInvalidInput)
	}
	row.ID = historymodels.EarningsID(row.StartTime)
	if err := insertRows(ctx, db, historymodels.SeriesEarnings, []*historymodels.Earnings{row}); err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

// InsertPoolEarnings rejects children that have not been linked to a parent.
func (db *DB) InsertPoolEarnings(ctx context.Context, rows []*historymodels.PoolEarnings) error {
	for _, row := range rows {
		if row.EarningsID == uuid.Nil {
			return fmt.Errorf("insert pool earnings %s@%d: no parent id: %w", row.Pool, row.StartTime, storage.ErrInvalidInput)
		}
	}
	return insertRows(ctx, db, historymodels.SeriesPoolEarnings, rows)
}

func insertRows[T rowValues](ctx context.Context, db *DB, series historymodels.Series, rows []T) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := db.PrepareBatch(ctx, insertSQL(db.Name, series))
	if err != nil {
		return fmt.Errorf("prepare %s batch: %w", series.Table(), err)
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, row := range rows {
		if err := batch.Append(row.Values()...); err != nil {
			return fmt.Errorf("append %s row: %w", series.Table(), err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send %s batch: %w", series.Table(), err)
	}
	return nil
}
