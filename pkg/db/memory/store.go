package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	storage "github.com/thorchain-labs/midgardx/pkg/db"
	"github.com/thorchain-labs/midgardx/pkg/db/models/history"
)

// Store is an in-memory implementation of db.HistoryStore.
// Rows are keyed like the ClickHouse sorting keys, so re-inserting a bucket replaces it.
type Store struct {
	mu           sync.RWMutex
	depths       map[string]history.Depth
	runePools    map[string]history.RunePool
	swaps        map[string]history.Swap
	earnings     map[uuid.UUID]history.Earnings
	poolEarnings map[string]history.PoolEarnings
}

var _ storage.HistoryStore = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		depths:       make(map[string]history.Depth),
		runePools:    make(map[string]history.RunePool),
		swaps:        make(map[string]history.Swap),
		earnings:     make(map[uuid.UUID]history.Earnings),
		poolEarnings: make(map[string]history.PoolEarnings),
	}
}

func bucketKey(pool string, startTime int64) string {
	return fmt.Sprintf("%s|%d", pool, startTime)
}

func checkBounds(series history.Series, start, end int64) error {
	if end <= start {
		return fmt.Errorf("%s bucket [%d,%d): %w", series, start, end, storage.ErrInvalidInput)
	}
	return nil
}

func (s *Store) InsertDepths(_ context.Context, rows []*history.Depth) error {
	for _, r := range rows {
		if err := checkBounds(history.SeriesDepth, r.StartTime, r.EndTime); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.depths[bucketKey(r.Pool, r.StartTime)] = *r
	}
	return nil
}

func (s *Store) InsertRunePools(_ context.Context, rows []*history.RunePool) error {
	for _, r := range rows {
		if err := checkBounds(history.SeriesRunePool, r.StartTime, r.EndTime); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.runePools[bucketKey("", r.StartTime)] = *r
	}
	return nil
}

func (s *Store) InsertSwaps(_ context.Context, rows []*history.Swap) error {
	for _, r := range rows {
		if err := checkBounds(history.SeriesSwap, r.StartTime, r.EndTime); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.swaps[bucketKey(r.Pool, r.StartTime)] = *r
	}
	return nil
}

func (s *Store) InsertEarnings(_ context.Context, row *history.Earnings) (uuid.UUID, error) {
	if row == nil {
		return uuid.Nil, fmt.Errorf("insert earnings: nil row: %w", storage.ErrInvalidInput)
	}
	if err := checkBounds(history.SeriesEarnings, row.StartTime, row.EndTime); err != nil {
		return uuid.Nil, err
	}
	row.ID = history.EarningsID(row.StartTime)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.earnings[row.ID] = *row
	return row.ID, nil
}

func (s *Store) InsertPoolEarnings(_ context.Context, rows []*history.PoolEarnings) error {
	for _, r := range rows {
		if r.EarningsID == uuid.Nil {
			return fmt.Errorf("insert pool earnings %s@%d: no parent id: %w", r.Pool, r.StartTime, storage.ErrInvalidInput)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.poolEarnings[r.EarningsID.String()+"|"+r.Pool] = *r
	}
	return nil
}

// LastEndTime scans the series for its latest end_time, of one pool when pool is set.
func (s *Store) LastEndTime(_ context.Context, series history.Series, pool string) (int64, error) {
	if err := series.Validate(); err != nil {
		return 0, err
	}
	if !series.Pooled() {
		pool = ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last int64
	observe := func(rowPool string, end int64) {
		if (pool == "" || rowPool == pool) && end > last {
			last = end
		}
	}
	switch series {
	case history.SeriesDepth:
		for _, r := range s.depths {
			observe(r.Pool, r.EndTime)
		}
	case history.SeriesRunePool:
		for _, r := range s.runePools {
			observe("", r.EndTime)
		}
	case history.SeriesSwap:
		for _, r := range s.swaps {
			observe(r.Pool, r.EndTime)
		}
	case history.SeriesEarnings:
		for _, r := range s.earnings {
			observe("", r.EndTime)
		}
	case history.SeriesPoolEarnings:
		for _, r := range s.poolEarnings {
			observe(r.Pool, r.EndTime)
		}
	}
	return last, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
