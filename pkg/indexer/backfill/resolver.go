package backfill

import (
	"context"
	"fmt"

	"github.com/thorchain-labs/midgardx/pkg/db/models/history"
)

// HighWaterMarker reports the latest persisted end_time of a series, or of one of its pools.
type HighWaterMarker interface {
	LastEndTime(ctx context.Context, series history.Series, pool string) (int64, error)
}

// Resolver turns store contents into the resumption cursor of a series.
type Resolver struct {
	Store HighWaterMarker
	// StartTime is used when the series holds no buckets yet.
	StartTime int64
}

// Resolve returns the high-water mark of series, scoped to pool for pooled series,
// or StartTime when nothing is stored yet.
func (r *Resolver) Resolve(ctx context.Context, series history.Series, pool string) (int64, error) {
	last, err := r.Store.LastEndTime(ctx, series, pool)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", series, err)
	}
	if last == 0 {
		return r.StartTime, nil
	}
	return last, nil
}
