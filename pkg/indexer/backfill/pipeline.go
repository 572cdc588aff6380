package backfill

import (
	"context"

	"github.com/thorchain-labs/midgardx/pkg/db/models/history"
	"github.com/thorchain-labs/midgardx/pkg/db/transform"
	"github.com/thorchain-labs/midgardx/pkg/midgard"
)

// Pipeline binds the fetch, map and write steps of one series.
type Pipeline interface {
	Series() history.Series
	Pool() string
	run(ctx context.Context, d *Driver, from, to int64) (Result, error)
}

// pipeline fetches pages of raw intervals R and persists them as buckets B.
// mapOne returns the bucket and the number of nested records it dropped.
type pipeline[R, B any] struct {
	series history.Series
	pool   string
	fetch  func(ctx context.Context, from int64, count int) (*midgard.Page[R], error)
	mapOne func(raw R) (B, int, error)
	write  func(ctx context.Context, batch []B) (int, error)
}

func (p *pipeline[R, B]) Series() history.Series { return p.series }
func (p *pipeline[R, B]) Pool() string            { return p.pool }

func (p *pipeline[R, B]) run(ctx context.Context, d *Driver, from, to int64) (Result, error) {
	return backfill(ctx, d, p, from, to)
}

func NewDepthPipeline(client midgard.Client, w *Writer, pool string) Pipeline {
	return &pipeline[midgard.DepthInterval, *history.Depth]{
		series: history.SeriesDepth,
		pool:   pool,
		fetch: func(ctx context.Context, from int64, count int) (*midgard.Page[midgard.DepthInterval], error) {
			return client.DepthHistory(ctx, pool, from, count)
		},
		mapOne: func(raw midgard.DepthInterval) (*history.Depth, int, error) {
			d, err := transform.DepthFromInterval(pool, raw)
			return d, 0, err
		},
		write: w.WriteDepths,
	}
}

func NewRunePoolPipeline(client midgard.Client, w *Writer) Pipeline {
	return &pipeline[midgard.RunePoolInterval, *history.RunePool]{
		series: history.SeriesRunePool,
		fetch:  client.RunePoolHistory,
		mapOne: func(raw midgard.RunePoolInterval) (*history.RunePool, int, error) {
			r, err := transform.RunePoolFromInterval(raw)
			return r, 0, err
		},
		write: w.WriteRunePools,
	}
}

func NewSwapPipeline(client midgard.Client, w *Writer, pool string) Pipeline {
	return &pipeline[midgard.SwapInterval, *history.Swap]{
		series: history.SeriesSwap,
		pool:   pool,
		fetch: func(ctx context.Context, from int64, count int) (*midgard.Page[midgard.SwapInterval], error) {
			return client.SwapHistory(ctx, pool, from, count)
		},
		mapOne: func(raw midgard.SwapInterval) (*history.Swap, int, error) {
			s, err := transform.SwapFromInterval(pool, raw)
			return s, 0, err
		},
		write: w.WriteSwaps,
	}
}

// NewEarningsPipeline covers both earnings and pool earnings, which share one upstream payload.
func NewEarningsPipeline(client midgard.Client, w *Writer) Pipeline {
	return &pipeline[midgard.EarningsInterval, *history.EarningsInterval]{
		series: history.SeriesEarnings,
		fetch:  client.EarningsHistory,
		mapOne: transform.EarningsFromInterval,
		write:  w.WriteEarnings,
	}
}

// Pipelines returns one pipeline per ingested series, in history.IngestedSeries order.
func Pipelines(client midgard.Client, w *Writer, pool string) []Pipeline {
	return []Pipeline{
		NewDepthPipeline(client, w, pool),
		NewRunePoolPipeline(client, w),
		NewSwapPipeline(client, w, pool),
		NewEarningsPipeline(client, w),
	}
}
