package indexer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thorchain-labs/midgardx/pkg/db/memory"
	"github.com/thorchain-labs/midgardx/pkg/db/models/history"
	"github.com/thorchain-labs/midgardx/pkg/indexer/config"
	"github.com/thorchain-labs/midgardx/pkg/indexer/scheduler"
	"github.com/thorchain-labs/midgardx/pkg/indexer/types"
	"github.com/thorchain-labs/midgardx/pkg/metrics"
	"github.com/thorchain-labs/midgardx/pkg/midgard"
	"github.com/thorchain-labs/midgardx/pkg/redis"
)

const (
	hour = int64(3600)
	head = 5 * hour
)

// filled returns a T whose string fields are all "1", with the bucket times set.
func filled[T any](start int64) T {
	var out T
	v := reflect.ValueOf(&out).Elem()
	for i := 0; i < v.NumField(); i++ {
		if f := v.Field(i); f.Kind() == reflect.String {
			f.SetString("1")
		}
	}
	v.FieldByName("StartTime").SetString(strconv.FormatInt(start, 10))
	v.FieldByName("EndTime").SetString(strconv.FormatInt(start+hour, 10))
	return out
}

func page[T any](from int64, count int, item func(start int64) T) midgard.Page[T] {
	p := midgard.Page[T]{Intervals: []T{}}
	end := from
	for i := 0; i < count && end < head; i++ {
		p.Intervals = append(p.Intervals, item(end))
		end += hour
	}
	if end == from {
		// the open bucket: nothing closed yet, but meta still ends an hour on
		end = from + hour
	}
	p.Meta = midgard.Meta{StartTime: strconv.FormatInt(from, 10), EndTime: strconv.FormatInt(end, 10)}
	return p
}

// newMidgard serves closed hourly buckets for every history endpoint up to head.
func newMidgard(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		from, err := strconv.ParseInt(r.URL.Query().Get("from"), 10, 64)
		if !assert.NoError(t, err) {
			return
		}
		count, err := strconv.Atoi(r.URL.Query().Get("count"))
		if !assert.NoError(t, err) {
			return
		}

		var body any
		switch {
		case strings.HasPrefix(r.URL.Path, "/v2/history/depths/"):
			body = page(from, count, filled[midgard.DepthInterval])
		case r.URL.Path == "/v2/history/runepool":
			body = page(from, count, filled[midgard.RunePoolInterval])
		case r.URL.Path == "/v2/history/swaps":
			body = page(from, count, filled[midgard.SwapInterval])
		case r.URL.Path == "/v2/history/earnings":
			body = page(from, count, func(start int64) midgard.EarningsInterval {
				e := filled[midgard.EarningsInterval](start)
				e.Pools = []midgard.PoolEarningsItem{{
					Pool: "BTC.BTC", AssetLiquidityFees: "1", Earnings: "1", Rewards: "1",
					RuneLiquidityFees: "1", SaverEarning: "0", TotalLiquidityFeesRune: "1",
				}}
				return e
			})
		default:
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server
}

type fixture struct {
	app      *App
	store    *memory.Store
	clock    *scheduler.ManualClock
	rdb      *goredis.Client
	requests *atomic.Int64
}

func newFixture(t *testing.T, now int64) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewStore(),
		clock:    scheduler.NewManualClock(time.Unix(now, 0).UTC()),
		requests: &atomic.Int64{},
	}
	server := newMidgard(t, f.requests)

	mr := miniredis.RunT(t)
	f.rdb = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	logger := zaptest.NewLogger(t)

	cfg := config.Indexer{
		Store:       "memory",
		Pool:        "BTC.BTC",
		Cron:        "0 * * * *",
		StartTime:   0,
		MaxParallel: 2,
		PageCount:   2,
		PageTimeout: 5 * time.Second,
		PageRetries: 1,
		Addr:        ":0",
	}
	app, err := New(cfg, Deps{
		Store:   f.store,
		Midgard: midgard.NewHTTPWithOpts(midgard.Opts{Endpoints: []string{server.URL}, RPS: 1000, Burst: 1000}),
		Redis:   redis.NewFromClient(f.rdb, logger, 0),
		Metrics: metrics.New("test_indexer"),
		Logger:  logger,
		Clock:   f.clock,
	})
	require.NoError(t, err)
	f.app = app
	return f
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNew_RejectsBadCron(t *testing.T) {
	_, err := New(config.Indexer{Cron: "every hour", PageCount: 1}, Deps{Store: memory.NewStore()})
	assert.ErrorContains(t, err, "scheduler")
}

func TestRunner_PersistsEverySeriesAndPublishes(t *testing.T) {
	f := newFixture(t, 4*hour)
	ctx := context.Background()

	statuses := f.app.Runner.RunOnce(ctx, f.clock.Now())
	require.Len(t, statuses, 4)
	for _, st := range statuses {
		assert.True(t, st.OK(), "%s: %s", st.Series, st.Error)
		assert.Equal(t, 3, st.Pages, st.Series)
		assert.Equal(t, head, st.Cursor, st.Series)
	}

	for _, series := range []history.Series{history.SeriesDepth, history.SeriesRunePool, history.SeriesSwap, history.SeriesEarnings, history.SeriesPoolEarnings} {
		last, err := f.store.LastEndTime(ctx, series, "")
		require.NoError(t, err)
		assert.Equal(t, head, last, "series %s", series)
	}

	n, err := f.rdb.XLen(ctx, types.GetPageIngestedChannel("depth")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// The next tick resumes at the high-water mark and only sees the open bucket.
	f.clock.Advance(time.Hour)
	before := f.requests.Load()
	statuses = f.app.Runner.RunOnce(ctx, f.clock.Now())
	for _, st := range statuses {
		assert.True(t, st.OK(), "%s: %s", st.Series, st.Error)
		assert.Equal(t, head, st.From, st.Series)
		assert.Equal(t, 0, st.Written, st.Series)
	}
	assert.Equal(t, before+4, f.requests.Load())
}

func TestScheduler_FiresTheRunnerOnTheHour(t *testing.T) {
	f := newFixture(t, 4*hour-1800)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f.app.Scheduler.Run(ctx) }()

	require.Eventually(t, func() bool { return f.clock.Waiters() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, f.app.Status.Size())

	f.clock.Set(time.Unix(4*hour, 0).UTC())
	require.Eventually(t, func() bool { return f.app.Status.Size() == 4 }, 5*time.Second, 10*time.Millisecond)

	st, ok := f.app.Status.Load(StatusKey("depth", "BTC.BTC"))
	require.True(t, ok)
	assert.Equal(t, 4*hour, st.To)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestStatusEndpoint(t *testing.T) {
	f := newFixture(t, 4*hour)
	f.app.Runner.RunOnce(context.Background(), f.clock.Now())

	rec := get(t, f.app.Server.Handler, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var out StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "0 * * * *", out.Cron)
	assert.True(t, out.NextTick.Equal(time.Unix(5*hour, 0)), out.NextTick)
	require.Len(t, out.Series, 4)
	assert.Equal(t, []string{"depth", "earnings", "runepool", "swap"},
		[]string{out.Series[0].Series, out.Series[1].Series, out.Series[2].Series, out.Series[3].Series})
	assert.Equal(t, "BTC.BTC", out.Series[0].Pool)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	f := newFixture(t, 4*hour)
	f.app.Runner.RunOnce(context.Background(), f.clock.Now())

	rec := get(t, f.app.Server.Handler, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get(t, f.app.Server.Handler, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_indexer_backfill_high_water_mark_seconds{series="depth"} 18000`)
	assert.Contains(t, string(body), `test_indexer_backfill_pages_total{series="swap"} 3`)

	require.NoError(t, f.rdb.Close())
	rec = get(t, f.app.Server.Handler, "/health")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatusKey(t *testing.T) {
	assert.Equal(t, "runepool", StatusKey("runepool", ""))
	assert.Equal(t, "depth:BTC.BTC", StatusKey("depth", "BTC.BTC"))
}
