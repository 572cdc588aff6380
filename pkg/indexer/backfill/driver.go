package backfill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thorchain-labs/midgardx/pkg/indexer/types"
	"github.com/thorchain-labs/midgardx/pkg/metrics"
	"github.com/thorchain-labs/midgardx/pkg/midgard"
	"github.com/thorchain-labs/midgardx/pkg/retry"
)

// Publisher receives one event per persisted page. Publishing is best-effort.
type Publisher interface {
	PublishJSON(ctx context.Context, channel string, payload any)
}

// Driver walks a series forward from a cursor, one upstream page at a time.
type Driver struct {
	Logger      *zap.Logger
	PageCount   int
	PageTimeout time.Duration
	Retry       retry.Config
	Events      Publisher        // optional
	Metrics     *metrics.Metrics // optional
}

// Result describes one backfill run. Pages already persisted stay persisted when the run fails.
type Result struct {
	From    int64
	To      int64
	Cursor  int64 // next page would be requested here
	Pages   int
	Written int
	Skipped int
}

// Backfill ingests the series of p from from until the cursor passes to.
func (d *Driver) Backfill(ctx context.Context, p Pipeline, from, to int64) (Result, error) {
	return p.run(ctx, d, from, to)
}

func backfill[R, B any](ctx context.Context, d *Driver, p *pipeline[R, B], from, to int64) (Result, error) {
	logger := d.logger().With(zap.String("series", p.series.String()))
	if p.pool != "" {
		logger = logger.With(zap.String("pool", p.pool))
	}

	res := Result{From: from, To: to, Cursor: from}
	for res.Cursor <= to {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		started := time.Now()
		end, written, skipped, err := ingestPage(ctx, d, logger, p, res.Cursor)
		if err != nil {
			d.Metrics.ObserveBackfillError(p.series.String(), reason(err))
			logger.Error("Backfill aborted",
				zap.Int64("cursor", res.Cursor),
				zap.Int("pages", res.Pages),
				zap.Error(err))
			return res, err
		}

		res.Pages++
		res.Written += written
		res.Skipped += skipped
		d.Metrics.ObservePage(p.series.String(), written, skipped, time.Since(started))
		d.Metrics.SetHighWaterMark(p.series.String(), end)
		d.publish(ctx, p, res.Cursor, end, written, skipped)

		logger.Debug("Page persisted",
			zap.Int64("from", res.Cursor),
			zap.Int64("end_time", end),
			zap.Int("written", written),
			zap.Int("skipped", skipped))
		res.Cursor = end
	}

	logger.Info("Backfill complete",
		zap.Int64("from", from),
		zap.Int64("cursor", res.Cursor),
		zap.Int("pages", res.Pages),
		zap.Int("written", res.Written),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

// ingestPage fetches, maps and persists the page anchored at cursor, all under the page timeout.
// Fetch and decode failures are retried; a non-advancing page and store failures are not.
func ingestPage[R, B any](ctx context.Context, d *Driver, logger *zap.Logger, p *pipeline[R, B], cursor int64) (end int64, written, skipped int, err error) {
	if d.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.PageTimeout)
		defer cancel()
	}

	var page *midgard.Page[R]
	op := fmt.Sprintf("fetch_%s_page", p.series)
	err = retry.WithBackoff(ctx, d.Retry, logger, op, func() error {
		fetched, err := p.fetch(ctx, cursor, d.pageCount())
		if err != nil {
			return err
		}
		if end, err = fetched.EndTime(); err != nil {
			return err
		}
		page = fetched
		return nil
	})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("fetch %s page at %d: %w", p.series, cursor, err)
	}

	if end <= cursor {
		return 0, 0, 0, fmt.Errorf("%s page at %d ends at %d: %w", p.series, cursor, end, ErrNoProgress)
	}

	batch := make([]B, 0, len(page.Intervals))
	for _, raw := range page.Intervals {
		bucket, dropped, err := p.mapOne(raw)
		skipped += dropped
		if err != nil {
			skipped++
			logger.Warn("Skipping upstream record", zap.Int64("cursor", cursor), zap.Error(err))
			continue
		}
		batch = append(batch, bucket)
	}

	written, err = p.write(ctx, batch)
	if err != nil {
		return 0, written, skipped, fmt.Errorf("write %s page at %d: %w", p.series, cursor, err)
	}
	return end, written, skipped, nil
}

func (d *Driver) publish(ctx context.Context, p Pipeline, from, end int64, written, skipped int) {
	if d.Events == nil {
		return
	}
	d.Events.PublishJSON(ctx, types.GetPageIngestedChannel(p.Series().String()), types.PageIngestedEvent{
		Event:     types.PageIngestedEventType,
		Series:    p.Series().String(),
		Pool:      p.Pool(),
		From:      from,
		EndTime:   end,
		Written:   written,
		Skipped:   skipped,
		Timestamp: time.Now().UTC(),
	})
}

func (d *Driver) pageCount() int {
	if d.PageCount <= 0 {
		return midgard.DefaultCount
	}
	return d.PageCount
}

func (d *Driver) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// reason labels an aborted run for metrics.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrNoProgress):
		return "no_progress"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
