package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	storage "github.com/thorchain-labs/midgardx/pkg/db"
	historymodels "github.com/thorchain-labs/midgardx/pkg/db/models/history"
)

func (db *DB) QueryDepths(ctx context.Context, spec historymodels.QuerySpec) ([]historymodels.Depth, error) {
	return selectPage[historymodels.Depth](ctx, db, historymodels.SeriesDepth, spec)
}

func (db *DB) QueryRunePools(ctx context.Context, spec historymodels.QuerySpec) ([]historymodels.RunePool, error) {
	return selectPage[historymodels.RunePool](ctx, db, historymodels.SeriesRunePool, spec)
}

func (db *DB) QuerySwaps(ctx context.Context, spec historymodels.QuerySpec) ([]historymodels.Swap, error) {
	return selectPage[historymodels.Swap](ctx, db, historymodels.SeriesSwap, spec)
}

func (db *DB) QueryEarnings(ctx context.Context, spec historymodels.QuerySpec) ([]historymodels.Earnings, error) {
	return selectPage[historymodels.Earnings](ctx, db, historymodels.SeriesEarnings, spec)
}

func (db *DB) QueryPoolEarnings(ctx context.Context, spec historymodels.QuerySpec) ([]historymodels.PoolEarnings, error) {
	return selectPage[historymodels.PoolEarnings](ctx, db, historymodels.SeriesPoolEarnings, spec)
}

// PoolEarningsByParent returns up to limit children of one earnings bucket.
// sortBy falls back to start_time when it is not a pool earnings column.
func (db *DB) PoolEarningsByParent(ctx context.Context, earningsID uuid.UUID, sortBy string, desc bool, limit int) ([]historymodels.PoolEarnings, error) {
	series := historymodels.SeriesPoolEarnings
	col := historymodels.QuerySpec{SortBy: sortBy}.SortColumn(series.Columns())
	query := fmt.Sprintf(`SELECT %s FROM "%s"."%s" FINAL WHERE earnings_id = ? %s LIMIT ?`,
		selectColumns(series), db.Name, series.Table(), orderClause(series, col, desc))

	var rows []historymodels.PoolEarnings
	if err := db.SelectWithFinal(ctx, &rows, query, earningsID, limit); err != nil {
		return nil, fmt.Errorf("query %s by parent: %w", series.Table(), err)
	}
	return rows, nil
}

func (db *DB) GetEarnings(ctx context.Context, id uuid.UUID) (*historymodels.Earnings, error) {
	series := historymodels.SeriesEarnings
	query := fmt.Sprintf(`SELECT %s FROM "%s"."%s" FINAL WHERE id = ? LIMIT 1`,
		selectColumns(series), db.Name, series.Table())

	var rows []historymodels.Earnings
	if err := db.SelectWithFinal(ctx, &rows, query, id); err != nil {
		return nil, fmt.Errorf("get earnings %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("earnings %s: %w", id, storage.ErrNotFound)
	}
	return &rows[0], nil
}

// LastEndTime returns max(end_time) of the series, of one pool when pool is set.
// ClickHouse returns 0 when nothing matches.
func (db *DB) LastEndTime(ctx context.Context, series historymodels.Series, pool string) (int64, error) {
	if err := series.Validate(); err != nil {
		return 0, err
	}
	query, args := lastEndTimeSQL(db.Name, series, pool)

	var last int64
	if err := db.QueryRow(ctx, query, args...).Scan(&last); err != nil {
		return 0, fmt.Errorf("last end_time of %s: %w", series, err)
	}
	return last, nil
}

func selectPage[T any](ctx context.Context, db *DB, series historymodels.Series, spec historymodels.QuerySpec) ([]T, error) {
	query, args := selectPageSQL(db.Name, series, spec)

	var rows []T
	if err := db.SelectWithFinal(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query %s: %w", series.Table(), err)
	}
	return rows, nil
}
