package backfill

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/thorchain-labs/midgardx/pkg/db/memory"
	"github.com/thorchain-labs/midgardx/pkg/db/models/history"
	"github.com/thorchain-labs/midgardx/pkg/indexer/types"
	"github.com/thorchain-labs/midgardx/pkg/midgard"
	"github.com/thorchain-labs/midgardx/pkg/retry"
)

const hour = int64(3600)

var errUpstream = errors.New("upstream unavailable")

// fakeUpstream serves hourly buckets from any cursor up to head.
type fakeUpstream struct {
	mu       sync.Mutex
	head     int64
	calls    map[history.Series]int
	fail     func(series history.Series, call int) error
	stuck    bool
	badDepth map[int64]bool
	badChild bool
}

var _ midgard.Client = (*fakeUpstream)(nil)

func newFakeUpstream(head int64) *fakeUpstream {
	return &fakeUpstream{head: head, calls: make(map[history.Series]int), badDepth: make(map[int64]bool)}
}

func (f *fakeUpstream) callCount(series history.Series) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[series]
}

func (f *fakeUpstream) window(series history.Series, from int64, count int) ([]int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[series]++
	if f.fail != nil {
		if err := f.fail(series, f.calls[series]); err != nil {
			return nil, 0, err
		}
	}
	if f.stuck {
		return nil, from, nil
	}
	var starts []int64
	end := from
	for i := 0; i < count && end < f.head; i++ {
		starts = append(starts, end)
		end += hour
	}
	return starts, end, nil
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func meta(from, end int64) midgard.Meta {
	return midgard.Meta{StartTime: itoa(from), EndTime: itoa(end)}
}

func (f *fakeUpstream) DepthHistory(_ context.Context, _ string, from int64, count int) (*midgard.Page[midgard.DepthInterval], error) {
	starts, end, err := f.window(history.SeriesDepth, from, count)
	if err != nil {
		return nil, err
	}
	page := &midgard.Page[midgard.DepthInterval]{Meta: meta(from, end)}
	for _, s := range starts {
		depth := itoa(s / hour)
		if f.badDepth[s] {
			depth = "not-a-number"
		}
		page.Intervals = append(page.Intervals, midgard.DepthInterval{
			StartTime: itoa(s), EndTime: itoa(s + hour),
			AssetDepth: depth, AssetPrice: "1.5", AssetPriceUSD: "60000.1",
			LiquidityUnits: "10", MembersCount: "3", RuneDepth: "20",
			SynthSupply: "0", SynthUnits: "0", Units: "10", Luvi: "0.01",
		})
	}
	return page, nil
}

func (f *fakeUpstream) RunePoolHistory(_ context.Context, from int64, count int) (*midgard.Page[midgard.RunePoolInterval], error) {
	starts, end, err := f.window(history.SeriesRunePool, from, count)
	if err != nil {
		return nil, err
	}
	page := &midgard.Page[midgard.RunePoolInterval]{Meta: meta(from, end)}
	for _, s := range starts {
		page.Intervals = append(page.Intervals, midgard.RunePoolInterval{
			StartTime: itoa(s), EndTime: itoa(s + hour), Count: "7", Units: "1000",
		})
	}
	return page, nil
}

func (f *fakeUpstream) SwapHistory(_ context.Context, _ string, from int64, count int) (*midgard.Page[midgard.SwapInterval], error) {
	starts, end, err := f.window(history.SeriesSwap, from, count)
	if err != nil {
		return nil, err
	}
	page := &midgard.Page[midgard.SwapInterval]{Meta: meta(from, end)}
	for _, s := range starts {
		page.Intervals = append(page.Intervals, midgard.SwapInterval{
			StartTime: itoa(s), EndTime: itoa(s + hour),
			AverageSlip: "1.1", RunePriceUSD: "4.2",
			SynthMintAverageSlip: "0", SynthMintCount: "0", SynthMintFees: "0", SynthMintVolume: "0", SynthMintVolumeUSD: "0",
			SynthRedeemAverageSlip: "0", SynthRedeemCount: "0", SynthRedeemFees: "0", SynthRedeemVolume: "0", SynthRedeemVolumeUSD: "0",
			ToAssetAverageSlip: "2", ToAssetCount: "5", ToAssetFees: "10", ToAssetVolume: "100", ToAssetVolumeUSD: "400.5",
			ToRuneAverageSlip: "3", ToRuneCount: "6", ToRuneFees: "11", ToRuneVolume: "101", ToRuneVolumeUSD: "401.5",
			TotalCount: "11", TotalFees: "21", TotalVolume: "201", TotalVolumeUSD: "802",
		})
	}
	return page, nil
}

func (f *fakeUpstream) EarningsHistory(_ context.Context, from int64, count int) (*midgard.Page[midgard.EarningsInterval], error) {
	starts, end, err := f.window(history.SeriesEarnings, from, count)
	if err != nil {
		return nil, err
	}
	page := &midgard.Page[midgard.EarningsInterval]{Meta: meta(from, end)}
	for _, s := range starts {
		second := "5"
		if f.badChild {
			second = ""
		}
		page.Intervals = append(page.Intervals, midgard.EarningsInterval{
			StartTime: itoa(s), EndTime: itoa(s + hour),
			AvgNodeCount: "100.5", BlockRewards: "1000", BondingEarnings: "600", Earnings: "1500",
			LiquidityEarnings: "900", LiquidityFees: "500", RunePriceUSD: "4.2",
			Pools: []midgard.PoolEarningsItem{
				{Pool: "BTC.BTC", AssetLiquidityFees: "1", Earnings: "10", Rewards: "2", RuneLiquidityFees: "3", SaverEarning: "0", TotalLiquidityFeesRune: "4"},
				{Pool: "ETH.ETH", AssetLiquidityFees: "1", Earnings: second, Rewards: "2", RuneLiquidityFees: "3", SaverEarning: "0", TotalLiquidityFeesRune: "4"},
			},
		})
	}
	return page, nil
}

// failingStore rejects depth writes.
type failingStore struct {
	*memory.Store
}

var errStore = errors.New("store down")

func (s *failingStore) InsertDepths(context.Context, []*history.Depth) error { return errStore }

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	events   []types.PageIngestedEvent
}

func (p *recordingPublisher) PublishJSON(_ context.Context, channel string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	if ev, ok := payload.(types.PageIngestedEvent); ok {
		p.events = append(p.events, ev)
	}
}

func testDriver(t *testing.T, pageCount int) *Driver {
	t.Helper()
	return &Driver{
		Logger:      zaptest.NewLogger(t),
		PageCount:   pageCount,
		PageTimeout: 5 * time.Second,
		Retry: retry.Config{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     time.Millisecond,
			Multiplier:   1,
		},
	}
}
