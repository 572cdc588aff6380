package backfill

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thorchain-labs/midgardx/pkg/db/memory"
	"github.com/thorchain-labs/midgardx/pkg/db/models/history"
	"github.com/thorchain-labs/midgardx/pkg/indexer/types"
)

const pool = "BTC.BTC"

func queryAll(t *testing.T, store *memory.Store) []history.Depth {
	t.Helper()
	rows, err := store.QueryDepths(context.Background(), history.QuerySpec{})
	require.NoError(t, err)
	return rows
}

func TestDriver_TilesRange(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	upstream := newFakeUpstream(100 * hour)
	d := testDriver(t, 3)

	res, err := d.Backfill(ctx, NewDepthPipeline(upstream, &Writer{Store: store}, pool), 0, 10*hour)
	require.NoError(t, err)

	// Pages start at 0, 3h, 6h and 9h; the 4th page ends past the upper bound.
	assert.Equal(t, 4, res.Pages)
	assert.Equal(t, 12, res.Written)
	assert.Equal(t, 12*hour, res.Cursor)
	assert.Equal(t, 4, upstream.callCount(history.SeriesDepth))

	rows := queryAll(t, store)
	require.Len(t, rows, 12)
	for i, r := range rows {
		assert.Equal(t, int64(i)*hour, r.StartTime)
		assert.Equal(t, r.StartTime+hour, r.EndTime)
		assert.Equal(t, pool, r.Pool)
		if i > 0 {
			assert.Equal(t, rows[i-1].EndTime, r.StartTime, "buckets must tile")
		}
	}
}

func TestDriver_EmptyRange(t *testing.T) {
	upstream := newFakeUpstream(100 * hour)
	res, err := testDriver(t, 3).Backfill(context.Background(),
		NewRunePoolPipeline(upstream, &Writer{Store: memory.NewStore()}), 10*hour, 5*hour)
	require.NoError(t, err)
	assert.Zero(t, res.Pages)
	assert.Zero(t, upstream.callCount(history.SeriesRunePool))
}

func TestDriver_StopsWithoutProgress(t *testing.T) {
	store := memory.NewStore()
	upstream := newFakeUpstream(100 * hour)
	upstream.stuck = true

	res, err := testDriver(t, 3).Backfill(context.Background(),
		NewDepthPipeline(upstream, &Writer{Store: store}, pool), 5*hour, 10*hour)
	require.ErrorIs(t, err, ErrNoProgress)
	assert.Zero(t, res.Pages)
	assert.Equal(t, 5*hour, res.Cursor)
	// A non-advancing page is not retried.
	assert.Equal(t, 1, upstream.callCount(history.SeriesDepth))
	assert.Empty(t, queryAll(t, store))
}

func TestDriver_RetriesTransientFetchErrors(t *testing.T) {
	store := memory.NewStore()
	upstream := newFakeUpstream(100 * hour)
	upstream.fail = func(_ history.Series, call int) error {
		if call <= 2 {
			return errUpstream
		}
		return nil
	}

	res, err := testDriver(t, 5).Backfill(context.Background(),
		NewDepthPipeline(upstream, &Writer{Store: store}, pool), 0, 4*hour)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 3, upstream.callCount(history.SeriesDepth))
	assert.Len(t, queryAll(t, store), 5)
}

func TestDriver_FetchFailureKeepsEarlierPages(t *testing.T) {
	store := memory.NewStore()
	upstream := newFakeUpstream(100 * hour)
	upstream.fail = func(_ history.Series, call int) error {
		if call > 1 {
			return errUpstream
		}
		return nil
	}

	res, err := testDriver(t, 3).Backfill(context.Background(),
		NewDepthPipeline(upstream, &Writer{Store: store}, pool), 0, 10*hour)
	require.ErrorIs(t, err, errUpstream)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 3*hour, res.Cursor)
	// One successful call plus three attempts at the second page.
	assert.Equal(t, 4, upstream.callCount(history.SeriesDepth))
	assert.Len(t, queryAll(t, store), 3)
}

func TestDriver_StoreFailureIsTerminal(t *testing.T) {
	upstream := newFakeUpstream(100 * hour)
	store := &failingStore{Store: memory.NewStore()}

	res, err := testDriver(t, 3).Backfill(context.Background(),
		NewDepthPipeline(upstream, &Writer{Store: store}, pool), 0, 10*hour)
	require.ErrorIs(t, err, errStore)
	assert.Zero(t, res.Pages)
	assert.Equal(t, 1, upstream.callCount(history.SeriesDepth))
}

func TestDriver_SkipsMalformedRecords(t *testing.T) {
	store := memory.NewStore()
	upstream := newFakeUpstream(100 * hour)
	upstream.badDepth[hour] = true

	res, err := testDriver(t, 3).Backfill(context.Background(),
		NewDepthPipeline(upstream, &Writer{Store: store}, pool), 0, 2*hour)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Written)

	rows := queryAll(t, store)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(0), rows[0].StartTime)
	assert.Equal(t, 2*hour, rows[1].StartTime)
}

func TestDriver_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	upstream := newFakeUpstream(100 * hour)
	_, err := testDriver(t, 3).Backfill(ctx,
		NewDepthPipeline(upstream, &Writer{Store: memory.NewStore()}, pool), 0, 10*hour)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, upstream.callCount(history.SeriesDepth))
}

func TestDriver_EarningsLinkage(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	upstream := newFakeUpstream(100 * hour)

	res, err := testDriver(t, 2).Backfill(ctx, NewEarningsPipeline(upstream, &Writer{Store: store}), 0, hour)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages)
	// Two parents with two children each.
	assert.Equal(t, 6, res.Written)

	parents, err := store.QueryEarnings(ctx, history.QuerySpec{})
	require.NoError(t, err)
	require.Len(t, parents, 2)

	for _, parent := range parents {
		require.NotEqual(t, uuid.Nil, parent.ID)
		assert.Equal(t, history.EarningsID(parent.StartTime), parent.ID)

		children, err := store.PoolEarningsByParent(ctx, parent.ID, "pool", false, 10)
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, "BTC.BTC", children[0].Pool)
		assert.Equal(t, "ETH.ETH", children[1].Pool)
		for _, c := range children {
			assert.Equal(t, parent.ID, c.EarningsID)
			assert.Equal(t, parent.StartTime, c.StartTime)
			assert.Equal(t, parent.EndTime, c.EndTime)
		}
	}
}

func TestDriver_EarningsCountsDroppedChildren(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	upstream := newFakeUpstream(100 * hour)
	upstream.badChild = true

	res, err := testDriver(t, 2).Backfill(ctx, NewEarningsPipeline(upstream, &Writer{Store: store}), 0, hour)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 4, res.Written)

	children, err := store.QueryPoolEarnings(ctx, history.QuerySpec{})
	require.NoError(t, err)
	require.Len(t, children, 2)
	for _, c := range children {
		assert.Equal(t, "BTC.BTC", c.Pool)
	}
}

func TestDriver_RerunUpsertsInsteadOfDuplicating(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	upstream := newFakeUpstream(100 * hour)
	d := testDriver(t, 4)
	p := NewEarningsPipeline(upstream, &Writer{Store: store})

	_, err := d.Backfill(ctx, p, 0, 3*hour)
	require.NoError(t, err)
	_, err = d.Backfill(ctx, p, 0, 3*hour)
	require.NoError(t, err)

	parents, err := store.QueryEarnings(ctx, history.QuerySpec{})
	require.NoError(t, err)
	assert.Len(t, parents, 4)
	children, err := store.QueryPoolEarnings(ctx, history.QuerySpec{})
	require.NoError(t, err)
	assert.Len(t, children, 8)
}

func TestDriver_PublishesOneEventPerPage(t *testing.T) {
	upstream := newFakeUpstream(100 * hour)
	pub := &recordingPublisher{}
	d := testDriver(t, 3)
	d.Events = pub

	_, err := d.Backfill(context.Background(),
		NewSwapPipeline(upstream, &Writer{Store: memory.NewStore()}, pool), 0, 4*hour)
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, types.GetPageIngestedChannel("swap"), pub.channels[0])
	first := pub.events[0]
	assert.Equal(t, types.PageIngestedEventType, first.Event)
	assert.Equal(t, "swap", first.Series)
	assert.Equal(t, pool, first.Pool)
	assert.Equal(t, int64(0), first.From)
	assert.Equal(t, 3*hour, first.EndTime)
	assert.Equal(t, 3, first.Written)
	assert.Equal(t, 3*hour, pub.events[1].From)
}

func TestWriter_RejectsMissingParent(t *testing.T) {
	w := &Writer{Store: memory.NewStore()}
	err := w.WritePoolEarnings(context.Background(), uuid.Nil, []*history.PoolEarnings{{Pool: pool}})
	require.ErrorIs(t, err, ErrMissingParent)

	err = w.WritePoolEarnings(context.Background(), uuid.Nil, nil)
	require.ErrorIs(t, err, ErrMissingParent)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "no_progress", reason(ErrNoProgress))
	assert.Equal(t, "timeout", reason(context.DeadlineExceeded))
	assert.Equal(t, "canceled", reason(context.Canceled))
	assert.Equal(t, "error", reason(errors.New("x")))
}
