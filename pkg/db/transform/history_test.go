package transform

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thorchain-labs/midgardx/pkg/midgard"
)

func validDepth() midgard.DepthInterval {
	return midgard.DepthInterval{
		StartTime: "1700000000", EndTime: "1700003600",
		AssetDepth: "100", AssetPrice: "1.5", AssetPriceUSD: "60000.25",
		LiquidityUnits: "10", MembersCount: "3", RuneDepth: "150",
		SynthSupply: "0", SynthUnits: "0", Units: "10", Luvi: "0.01",
	}
}

func TestDepthFromInterval(t *testing.T) {
	d, err := DepthFromInterval("BTC.BTC", validDepth())
	require.NoError(t, err)
	assert.Equal(t, "BTC.BTC", d.Pool)
	assert.Equal(t, int64(1700000000), d.StartTime)
	assert.Equal(t, int64(1700003600), d.EndTime)
	assert.Equal(t, int64(100), d.AssetDepth)
	assert.InDelta(t, 60000.25, d.AssetPriceUSD, 1e-9)
}

func TestDepthFromInterval_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*midgard.DepthInterval)
		errMsg string
	}{
		{"missing field", func(r *midgard.DepthInterval) { r.RuneDepth = "" }, "missing field runeDepth"},
		{"malformed int", func(r *midgard.DepthInterval) { r.AssetDepth = "1e3" }, "assetDepth"},
		{"malformed float", func(r *midgard.DepthInterval) { r.Luvi = "NaN?" }, "luvi"},
		{"inverted bounds", func(r *midgard.DepthInterval) { r.EndTime = r.StartTime }, "not after"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validDepth()
			tt.mutate(&raw)
			_, err := DepthFromInterval("BTC.BTC", raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := DepthFromInterval("", validDepth())
	assert.ErrorContains(t, err, "missing field pool")
}

func TestFieldParser_KeepsFirstError(t *testing.T) {
	var p fieldParser
	p.int64("a", "x")
	p.int64("b", "")
	require.Error(t, p.err)
	assert.Contains(t, p.err.Error(), "field a")
}

func TestRunePoolFromInterval(t *testing.T) {
	r, err := RunePoolFromInterval(midgard.RunePoolInterval{StartTime: "0", EndTime: "3600", Count: "12", Units: "345"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), r.Count)
	assert.Equal(t, int64(345), r.Units)

	_, err = RunePoolFromInterval(midgard.RunePoolInterval{StartTime: "0", EndTime: "3600", Units: "345"})
	assert.ErrorContains(t, err, "count")
}

func TestSwapFromInterval(t *testing.T) {
	raw := midgard.SwapInterval{
		StartTime: "0", EndTime: "3600", AverageSlip: "1.2", RunePriceUSD: "5.5",
		SynthMintAverageSlip: "0", SynthMintCount: "1", SynthMintFees: "2", SynthMintVolume: "3", SynthMintVolumeUSD: "4",
		SynthRedeemAverageSlip: "0", SynthRedeemCount: "5", SynthRedeemFees: "6", SynthRedeemVolume: "7", SynthRedeemVolumeUSD: "8",
		ToAssetAverageSlip: "0", ToAssetCount: "9", ToAssetFees: "10", ToAssetVolume: "11", ToAssetVolumeUSD: "12",
		ToRuneAverageSlip: "0", ToRuneCount: "13", ToRuneFees: "14", ToRuneVolume: "15", ToRuneVolumeUSD: "16",
		TotalCount: "28", TotalFees: "32", TotalVolume: "36", TotalVolumeUSD: "40",
	}
	s, err := SwapFromInterval("ETH.ETH", raw)
	require.NoError(t, err)
	assert.Equal(t, "ETH.ETH", s.Pool)
	assert.Equal(t, int64(13), s.ToRuneCount)
	assert.Equal(t, int64(36), s.TotalVolume)
	assert.InDelta(t, 40.0, s.TotalVolumeUSD, 1e-9)

	raw.TotalFees = "lots"
	_, err = SwapFromInterval("ETH.ETH", raw)
	assert.ErrorContains(t, err, "totalFees")
}

func validEarnings() midgard.EarningsInterval {
	return midgard.EarningsInterval{
		StartTime: "3600", EndTime: "7200",
		AvgNodeCount: "100.5", BlockRewards: "1", BondingEarnings: "2", Earnings: "3",
		LiquidityEarnings: "4", LiquidityFees: "5", RunePriceUSD: "6.5",
		Pools: []midgard.PoolEarningsItem{
			{Pool: "BTC.BTC", AssetLiquidityFees: "1", Earnings: "2", Rewards: "3", RuneLiquidityFees: "4", SaverEarning: "5", TotalLiquidityFeesRune: "6"},
			{Pool: "ETH.ETH", AssetLiquidityFees: "bad", Earnings: "2", Rewards: "3", RuneLiquidityFees: "4", SaverEarning: "5", TotalLiquidityFeesRune: "6"},
			{Pool: "", AssetLiquidityFees: "1", Earnings: "2", Rewards: "3", RuneLiquidityFees: "4", SaverEarning: "5", TotalLiquidityFeesRune: "6"},
		},
	}
}

func TestEarningsFromInterval_DropsBadChildrenOnly(t *testing.T) {
	out, skipped, err := EarningsFromInterval(validEarnings())
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, int64(3), out.Earnings.Earnings)
	require.Len(t, out.Pools, 1)

	child := out.Pools[0]
	assert.Equal(t, "BTC.BTC", child.Pool)
	assert.Equal(t, uuid.Nil, child.EarningsID)
	assert.Equal(t, out.Earnings.StartTime, child.StartTime)
	assert.Equal(t, out.Earnings.EndTime, child.EndTime)
}

func TestEarningsFromInterval_BadParentDropsInterval(t *testing.T) {
	raw := validEarnings()
	raw.BlockRewards = ""
	out, _, err := EarningsFromInterval(raw)
	assert.Nil(t, out)
	assert.ErrorContains(t, err, "blockRewards")
}

func TestEarningsFromInterval_NoChildren(t *testing.T) {
	raw := validEarnings()
	raw.Pools = nil
	out, skipped, err := EarningsFromInterval(raw)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.NotNil(t, out.Pools)
	assert.Empty(t, out.Pools)
}
