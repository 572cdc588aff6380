package memory

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/google/uuid"

	storage "github.com/thorchain-labs/midgardx/pkg/db"
	"github.com/thorchain-labs/midgardx/pkg/db/models/history"
)

func (s *Store) QueryDepths(_ context.Context, spec history.QuerySpec) ([]history.Depth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return page(s.depths, history.SeriesDepth, spec, func(r history.Depth) (string, int64, int64) {
		return r.Pool, r.StartTime, r.EndTime
	}), nil
}

func (s *Store) QueryRunePools(_ context.Context, spec history.QuerySpec) ([]history.RunePool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return page(s.runePools, history.SeriesRunePool, spec, func(r history.RunePool) (string, int64, int64) {
		return "", r.StartTime, r.EndTime
	}), nil
}

func (s *Store) QuerySwaps(_ context.Context, spec history.QuerySpec) ([]history.Swap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return page(s.swaps, history.SeriesSwap, spec, func(r history.Swap) (string, int64, int64) {
		return r.Pool, r.StartTime, r.EndTime
	}), nil
}

func (s *Store) QueryEarnings(_ context.Context, spec history.QuerySpec) ([]history.Earnings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return page(s.earnings, history.SeriesEarnings, spec, func(r history.Earnings) (string, int64, int64) {
		return "", r.StartTime, r.EndTime
	}), nil
}

func (s *Store) QueryPoolEarnings(_ context.Context, spec history.QuerySpec) ([]history.PoolEarnings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return page(s.poolEarnings, history.SeriesPoolEarnings, spec, func(r history.PoolEarnings) (string, int64, int64) {
		return r.Pool, r.StartTime, r.EndTime
	}), nil
}

func (s *Store) PoolEarningsByParent(_ context.Context, earningsID uuid.UUID, sortBy string, desc bool, limit int) ([]history.PoolEarnings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []history.PoolEarnings
	for _, r := range s.poolEarnings {
		if r.EarningsID == earningsID {
			out = append(out, r)
		}
	}
	col := history.QuerySpec{SortBy: sortBy}.SortColumn(history.PoolEarningsColumns)
	sortRows(out, history.SeriesPoolEarnings, col, desc)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetEarnings(_ context.Context, id uuid.UUID) (*history.Earnings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.earnings[id]
	if !ok {
		return nil, fmt.Errorf("earnings %s: %w", id, storage.ErrNotFound)
	}
	return &row, nil
}

// page filters, sorts and slices rows the way the ClickHouse store's SELECT does.
func page[K comparable, T any](rows map[K]T, series history.Series, spec history.QuerySpec, bounds func(T) (string, int64, int64)) []T {
	if !series.Pooled() {
		spec.Pool = ""
	}

	out := make([]T, 0)
	for _, r := range rows {
		pool, start, end := bounds(r)
		if spec.Matches(pool, start, end) {
			out = append(out, r)
		}
	}
	sortRows(out, series, spec.SortColumn(series.Columns()), spec.Desc)

	if spec.Offset >= len(out) {
		return out[:0]
	}
	out = out[spec.Offset:]
	if spec.Limit > 0 && len(out) > spec.Limit {
		out = out[:spec.Limit]
	}
	return out
}

// sortRows orders rows by the struct fields tagged ch:"<key>" for each of the
// series' sort keys, so ties fall through to the unique keys.
func sortRows[T any](rows []T, series history.Series, col string, desc bool) {
	keys := series.SortKeys(col)
	sort.Slice(rows, func(i, j int) bool {
		a, b := reflect.ValueOf(rows[i]), reflect.ValueOf(rows[j])
		c := 0
		for _, k := range keys {
			if c = compare(column(a, k), column(b, k)); c != 0 {
				break
			}
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func column(v reflect.Value, col string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("ch") == col {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

func compare(a, b reflect.Value) int {
	if !a.IsValid() || !b.IsValid() {
		return 0
	}
	switch a.Kind() {
	case reflect.Int, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.String:
		return strings.Compare(a.String(), b.String())
	default:
		return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	}
}
