package transform

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/thorchain-labs/midgardx/pkg/db/models/history"
	"github.com/thorchain-labs/midgardx/pkg/midgard"
)

// DepthFromInterval maps one upstream depth interval of pool.
func DepthFromInterval(pool string, raw midgard.DepthInterval) (*history.Depth, error) {
	var p fieldParser
	d := &history.Depth{Pool: p.text("pool", pool)}
	d.StartTime, d.EndTime = p.bounds(raw.StartTime, raw.EndTime)
	d.AssetDepth = p.int64("assetDepth", raw.AssetDepth)
	d.AssetPrice = p.float64("assetPrice", raw.AssetPrice)
	d.AssetPriceUSD = p.float64("assetPriceUSD", raw.AssetPriceUSD)
	d.LiquidityUnits = p.int64("liquidityUnits", raw.LiquidityUnits)
	d.MembersCount = p.int64("membersCount", raw.MembersCount)
	d.RuneDepth = p.int64("runeDepth", raw.RuneDepth)
	d.SynthSupply = p.int64("synthSupply", raw.SynthSupply)
	d.SynthUnits = p.int64("synthUnits", raw.SynthUnits)
	d.Units = p.int64("units", raw.Units)
	d.Luvi = p.float64("luvi", raw.Luvi)
	if p.err != nil {
		return nil, fmt.Errorf("depth %s@%s: %w", pool, raw.StartTime, p.err)
	}
	return d, nil
}

// RunePoolFromInterval maps one upstream RUNEPool interval.
func RunePoolFromInterval(raw midgard.RunePoolInterval) (*history.RunePool, error) {
	var p fieldParser
	r := &history.RunePool{}
	r.StartTime, r.EndTime = p.bounds(raw.StartTime, raw.EndTime)
	r.Count = p.int64("count", raw.Count)
	r.Units = p.int64("units", raw.Units)
	if p.err != nil {
		return nil, fmt.Errorf("runepool @%s: %w", raw.StartTime, p.err)
	}
	return r, nil
}

// SwapFromInterval maps one upstream swap interval of pool.
func SwapFromInterval(pool string, raw midgard.SwapInterval) (*history.Swap, error) {
	var p fieldParser
	s := &history.Swap{Pool: p.text("pool", pool)}
	s.StartTime, s.EndTime = p.bounds(raw.StartTime, raw.EndTime)
	s.AverageSlip = p.float64("averageSlip", raw.AverageSlip)
	s.RunePriceUSD = p.float64("runePriceUSD", raw.RunePriceUSD)

	s.SynthMintAverageSlip = p.float64("synthMintAverageSlip", raw.SynthMintAverageSlip)
	s.SynthMintCount = p.int64("synthMintCount", raw.SynthMintCount)
	s.SynthMintFees = p.int64("synthMintFees", raw.SynthMintFees)
	s.SynthMintVolume = p.int64("synthMintVolume", raw.SynthMintVolume)
	s.SynthMintVolumeUSD = p.float64("synthMintVolumeUSD", raw.SynthMintVolumeUSD)

	s.SynthRedeemAverageSlip = p.float64("synthRedeemAverageSlip", raw.SynthRedeemAverageSlip)
	s.SynthRedeemCount = p.int64("synthRedeemCount", raw.SynthRedeemCount)
	s.SynthRedeemFees = p.int64("synthRedeemFees", raw.SynthRedeemFees)
	s.SynthRedeemVolume = p.int64("synthRedeemVolume", raw.SynthRedeemVolume)
	s.SynthRedeemVolumeUSD = p.float64("synthRedeemVolumeUSD", raw.SynthRedeemVolumeUSD)

	s.ToAssetAverageSlip = p.float64("toAssetAverageSlip", raw.ToAssetAverageSlip)
	s.ToAssetCount = p.int64("toAssetCount", raw.ToAssetCount)
	s.ToAssetFees = p.int64("toAssetFees", raw.ToAssetFees)
	s.ToAssetVolume = p.int64("toAssetVolume", raw.ToAssetVolume)
	s.ToAssetVolumeUSD = p.float64("toAssetVolumeUSD", raw.ToAssetVolumeUSD)

	s.ToRuneAverageSlip = p.float64("toRuneAverageSlip", raw.ToRuneAverageSlip)
	s.ToRuneCount = p.int64("toRuneCount", raw.ToRuneCount)
	s.ToRuneFees = p.int64("toRuneFees", raw.ToRuneFees)
	s.ToRuneVolume = p.int64("toRuneVolume", raw.ToRuneVolume)
	s.ToRuneVolumeUSD = p.float64("toRuneVolumeUSD", raw.ToRuneVolumeUSD)

	s.TotalCount = p.int64("totalCount", raw.TotalCount)
	s.TotalFees = p.int64("totalFees", raw.TotalFees)
	s.TotalVolume = p.int64("totalVolume", raw.TotalVolume)
	s.TotalVolumeUSD = p.float64("totalVolumeUSD", raw.TotalVolumeUSD)
	if p.err != nil {
		return nil, fmt.Errorf("swap %s@%s: %w", pool, raw.StartTime, p.err)
	}
	return s, nil
}

// EarningsFromInterval maps one upstream earnings interval into its parent bucket and pool children.
// A child that fails to parse is left out and counted in skipped; a parent that fails rejects the interval.
// Children carry the parent's bounds and uuid.Nil linkage.
func EarningsFromInterval(raw midgard.EarningsInterval) (out *history.EarningsInterval, skipped int, err error) {
	var p fieldParser
	e := &history.Earnings{}
	e.StartTime, e.EndTime = p.bounds(raw.StartTime, raw.EndTime)
	e.AvgNodeCount = p.float64("avgNodeCount", raw.AvgNodeCount)
	e.BlockRewards = p.int64("blockRewards", raw.BlockRewards)
	e.BondingEarnings = p.int64("bondingEarnings", raw.BondingEarnings)
	e.Earnings = p.int64("earnings", raw.Earnings)
	e.LiquidityEarnings = p.int64("liquidityEarnings", raw.LiquidityEarnings)
	e.LiquidityFees = p.int64("liquidityFees", raw.LiquidityFees)
	e.RunePriceUSD = p.float64("runePriceUSD", raw.RunePriceUSD)
	if p.err != nil {
		return nil, 0, fmt.Errorf("earnings @%s: %w", raw.StartTime, p.err)
	}

	out = &history.EarningsInterval{
		Earnings: e,
		Pools:    make([]*history.PoolEarnings, 0, len(raw.Pools)),
	}
	for _, item := range raw.Pools {
		child, err := poolEarningsFromItem(e, item)
		if err != nil {
			skipped++
			continue
		}
		out.Pools = append(out.Pools, child)
	}
	return out, skipped, nil
}

func poolEarningsFromItem(parent *history.Earnings, item midgard.PoolEarningsItem) (*history.PoolEarnings, error) {
	var p fieldParser
	pe := &history.PoolEarnings{
		EarningsID: uuid.Nil,
		Pool:       p.text("pool", item.Pool),
		StartTime:  parent.StartTime,
		EndTime:    parent.EndTime,
	}
	pe.AssetLiquidityFees = p.int64("assetLiquidityFees", item.AssetLiquidityFees)
	pe.Earnings = p.int64("earnings", item.Earnings)
	pe.Rewards = p.int64("rewards", item.Rewards)
	pe.RuneLiquidityFees = p.int64("runeLiquidityFees", item.RuneLiquidityFees)
	pe.SaverEarning = p.int64("saverEarning", item.SaverEarning)
	pe.TotalLiquidityFeesRune = p.int64("totalLiquidityFeesRune", item.TotalLiquidityFeesRune)
	if p.err != nil {
		return nil, fmt.Errorf("pool earnings %s@%d: %w", item.Pool, parent.StartTime, p.err)
	}
	return pe, nil
}
