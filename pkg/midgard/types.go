package midgard

import (
	"fmt"
	"strconv"
)

// Meta is the page extent reported by upstream. Values are epoch seconds as strings.
type Meta struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Page is one history response. Every numeric field upstream is a JSON string.
type Page[T any] struct {
	Intervals []T  `json:"intervals"`
	Meta      Meta `json:"meta"`
}

// EndTime parses meta.endTime, the cursor for the next page.
func (p *Page[T]) EndTime() (int64, error) {
	end, err := strconv.ParseInt(p.Meta.EndTime, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("meta.endTime %q: %w", p.Meta.EndTime, err)
	}
	return end, nil
}

type DepthInterval struct {
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	AssetDepth     string `json:"assetDepth"`
	AssetPrice     string `json:"assetPrice"`
	AssetPriceUSD  string `json:"assetPriceUSD"`
	LiquidityUnits string `json:"liquidityUnits"`
	MembersCount   string `json:"membersCount"`
	RuneDepth      string `json:"runeDepth"`
	SynthSupply    string `json:"synthSupply"`
	SynthUnits     string `json:"synthUnits"`
	Units          string `json:"units"`
	Luvi           string `json:"luvi"`
}

type RunePoolInterval struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Count     string `json:"count"`
	Units     string `json:"units"`
}

type SwapInterval struct {
	StartTime              string `json:"startTime"`
	EndTime                string `json:"endTime"`
	AverageSlip            string `json:"averageSlip"`
	RunePriceUSD           string `json:"runePriceUSD"`
	SynthMintAverageSlip   string `json:"synthMintAverageSlip"`
	SynthMintCount         string `json:"synthMintCount"`
	SynthMintFees          string `json:"synthMintFees"`
	SynthMintVolume        string `json:"synthMintVolume"`
	SynthMintVolumeUSD     string `json:"synthMintVolumeUSD"`
	SynthRedeemAverageSlip string `json:"synthRedeemAverageSlip"`
	SynthRedeemCount       string `json:"synthRedeemCount"`
	SynthRedeemFees        string `json:"synthRedeemFees"`
	SynthRedeemVolume      string `json:"synthRedeemVolume"`
	SynthRedeemVolumeUSD   string `json:"synthRedeemVolumeUSD"`
	ToAssetAverageSlip     string `json:"toAssetAverageSlip"`
	ToAssetCount           string `json:"toAssetCount"`
	ToAssetFees            string `json:"toAssetFees"`
	ToAssetVolume          string `json:"toAssetVolume"`
	ToAssetVolumeUSD       string `json:"toAssetVolumeUSD"`
	ToRuneAverageSlip      string `json:"toRuneAverageSlip"`
	ToRuneCount            string `json:"toRuneCount"`
	ToRuneFees             string `json:"toRuneFees"`
	ToRuneVolume           string `json:"toRuneVolume"`
	ToRuneVolumeUSD        string `json:"toRuneVolumeUSD"`
	TotalCount             string `json:"totalCount"`
	TotalFees              string `json:"totalFees"`
	TotalVolume            string `json:"totalVolume"`
	TotalVolumeUSD         string `json:"totalVolumeUSD"`
}

type EarningsInterval struct {
	StartTime         string             `json:"startTime"`
	EndTime           string             `json:"endTime"`
	AvgNodeCount      string             `json:"avgNodeCount"`
	BlockRewards      string             `json:"blockRewards"`
	BondingEarnings   string             `json:"bondingEarnings"`
	Earnings          string             `json:"earnings"`
	LiquidityEarnings string             `json:"liquidityEarnings"`
	LiquidityFees     string             `json:"liquidityFees"`
	RunePriceUSD      string             `json:"runePriceUSD"`
	Pools             []PoolEarningsItem `json:"pools"`
}

// PoolEarningsItem is one pool's share inside an earnings interval.
type PoolEarningsItem struct {
	Pool                   string `json:"pool"`
	AssetLiquidityFees     string `json:"assetLiquidityFees"`
	Earnings               string `json:"earnings"`
	Rewards                string `json:"rewards"`
	RuneLiquidityFees      string `json:"runeLiquidityFees"`
	SaverEarning           string `json:"saverEarning"`
	TotalLiquidityFeesRune string `json:"totalLiquidityFeesRune"`
}
