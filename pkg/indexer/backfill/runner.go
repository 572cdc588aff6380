package backfill

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/thorchain-labs/midgardx/pkg/indexer/types"
)

// Runner drives every pipeline once per tick. Series are isolated: a failing series is
// recorded in its own status and never stops the others.
type Runner struct {
	Logger    *zap.Logger
	Driver    *Driver
	Resolver  *Resolver
	Pipelines []Pipeline
	// MaxParallel bounds how many series ingest at once. 1 runs them sequentially.
	MaxParallel int
	// Status, when set, receives each series' outcome as soon as it finishes.
	Status func(types.SeriesStatus)
}

// Parallelism returns the worker count for n series.
func Parallelism(override, n int) int {
	if override > 0 {
		if override > n && n > 0 {
			return n
		}
		return override
	}
	workers := runtime.NumCPU()
	if workers > n && n > 0 {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// RunOnce resolves and backfills every series up to now. The returned statuses follow Pipelines order.
func (r *Runner) RunOnce(ctx context.Context, now time.Time) []types.SeriesStatus {
	logger := r.logger()
	out := make([]types.SeriesStatus, len(r.Pipelines))
	if len(r.Pipelines) == 0 {
		return out
	}

	workers := Parallelism(r.MaxParallel, len(r.Pipelines))
	pool := pond.NewPool(workers, pond.WithQueueSize(len(r.Pipelines)))

	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	ran := make([]bool, len(r.Pipelines))
	for i, p := range r.Pipelines {
		group.SubmitErr(func() error {
			ran[i] = true
			// Series errors are reported through the status, never through the group,
			// so one failure does not cancel the siblings.
			out[i] = r.runSeries(groupCtx, p, now)
			return nil
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		logger.Warn("some backfill tasks failed", zap.Error(err))
	}
	pool.StopAndWait()

	// Tasks of a cancelled group may never start.
	for i, p := range r.Pipelines {
		if !ran[i] {
			out[i] = types.SeriesStatus{
				Series: p.Series().String(),
				Pool:   p.Pool(),
				To:     now.Unix(),
				Error:  fmt.Sprintf("not run: %v", groupCtx.Err()),
			}
		}
	}

	failed := 0
	for _, st := range out {
		if !st.OK() {
			failed++
		}
	}
	logger.Info("Tick finished",
		zap.Int("series", len(out)),
		zap.Int("failed", failed),
		zap.Int("workers", workers))
	return out
}

func (r *Runner) runSeries(ctx context.Context, p Pipeline, now time.Time) types.SeriesStatus {
	st := types.SeriesStatus{
		Series:    p.Series().String(),
		Pool:      p.Pool(),
		To:        now.Unix(),
		StartedAt: time.Now().UTC(),
	}
	defer func() {
		st.FinishedAt = time.Now().UTC()
		if r.Status != nil {
			r.Status(st)
		}
	}()

	if err := ctx.Err(); err != nil {
		st.Error = err.Error()
		return st
	}

	from, err := r.Resolver.Resolve(ctx, p.Series(), p.Pool())
	if err != nil {
		st.Error = err.Error()
		r.logger().Error("Resolve failed", zap.String("series", st.Series), zap.Error(err))
		return st
	}
	st.From = from
	st.Cursor = from

	res, err := r.Driver.Backfill(ctx, p, from, st.To)
	st.Cursor = res.Cursor
	st.Pages = res.Pages
	st.Written = res.Written
	st.Skipped = res.Skipped
	if err != nil {
		st.Error = err.Error()
	}
	return st
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
