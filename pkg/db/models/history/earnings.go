package history

import (
	"strconv"

	"github.com/google/uuid"
)

const (
	EarningsTableName     = "earnings_history"
	PoolEarningsTableName = "pool_earnings_history"
)

// earningsNamespace seeds the deterministic parent identifiers.
var earningsNamespace = uuid.MustParse("6f1c8a52-3b7e-4d0a-9c55-2a9e4b8d7f10")

// EarningsID returns the identifier of the earnings bucket starting at startTime.
// Re-ingesting the same interval yields the same identifier, so children stay linked across retries.
func EarningsID(startTime int64) uuid.UUID {
	return uuid.NewSHA1(earningsNamespace, []byte("earnings|"+strconv.FormatInt(startTime, 10)))
}

var EarningsColumns = withTime(
	[]ColumnDef{{Name: "id", Type: "UUID", JSON: "id"}},
	ColumnDef{Name: "avg_node_count", Type: "Float64", JSON: "avgNodeCount"},
	ColumnDef{Name: "block_rewards", Type: "Int64", JSON: "blockRewards"},
	ColumnDef{Name: "bonding_earnings", Type: "Int64", JSON: "bondingEarnings"},
	ColumnDef{Name: "earnings", Type: "Int64", JSON: "earnings"},
	ColumnDef{Name: "liquidity_earnings", Type: "Int64", JSON: "liquidityEarnings"},
	ColumnDef{Name: "liquidity_fees", Type: "Int64", JSON: "liquidityFees"},
	ColumnDef{Name: "rune_price_usd", Type: "Float64", JSON: "runePriceUSD"},
)

// Earnings is one interval of network-wide earnings. It owns the PoolEarnings rows of the same interval.
type Earnings struct {
	ID                uuid.UUID `ch:"id" json:"-"`
	StartTime         int64     `ch:"start_time" json:"startTime"`
	EndTime           int64     `ch:"end_time" json:"endTime"`
	AvgNodeCount      float64   `ch:"avg_node_count" json:"avgNodeCount"`
	BlockRewards      int64     `ch:"block_rewards" json:"blockRewards"`
	BondingEarnings   int64     `ch:"bonding_earnings" json:"bondingEarnings"`
	Earnings          int64     `ch:"earnings" json:"earnings"`
	LiquidityEarnings int64     `ch:"liquidity_earnings" json:"liquidityEarnings"`
	LiquidityFees     int64     `ch:"liquidity_fees" json:"liquidityFees"`
	RunePriceUSD      float64   `ch:"rune_price_usd" json:"runePriceUSD"`
}

// Values returns the row in EarningsColumns order.
func (e *Earnings) Values() []any {
	return []any{
		e.ID, e.StartTime, e.EndTime,
		e.AvgNodeCount, e.BlockRewards, e.BondingEarnings, e.Earnings,
		e.LiquidityEarnings, e.LiquidityFees, e.RunePriceUSD,
	}
}

var PoolEarningsColumns = withTime(
	[]ColumnDef{
		{Name: "earnings_id", Type: "UUID", JSON: "earningsId"},
		{Name: "pool", Type: "LowCardinality(String)", JSON: "pool"},
	},
	ColumnDef{Name: "asset_liquidity_fees", Type: "Int64", JSON: "assetLiquidityFees"},
	ColumnDef{Name: "earnings", Type: "Int64", JSON: "earnings"},
	ColumnDef{Name: "rewards", Type: "Int64", JSON: "rewards"},
	ColumnDef{Name: "rune_liquidity_fees", Type: "Int64", JSON: "runeLiquidityFees"},
	ColumnDef{Name: "saver_earning", Type: "Int64", JSON: "saverEarning"},
	ColumnDef{Name: "total_liquidity_fees_rune", Type: "Int64", JSON: "totalLiquidityFeesRune"},
)

// PoolEarnings is one pool's share of an Earnings interval. EarningsID links it to the parent.
type PoolEarnings struct {
	EarningsID             uuid.UUID `ch:"earnings_id" json:"-"`
	Pool                   string    `ch:"pool" json:"pool"`
	StartTime              int64     `ch:"start_time" json:"startTime"`
	EndTime                int64     `ch:"end_time" json:"endTime"`
	AssetLiquidityFees     int64     `ch:"asset_liquidity_fees" json:"assetLiquidityFees"`
	Earnings               int64     `ch:"earnings" json:"earnings"`
	Rewards                int64     `ch:"rewards" json:"rewards"`
	RuneLiquidityFees      int64     `ch:"rune_liquidity_fees" json:"runeLiquidityFees"`
	SaverEarning           int64     `ch:"saver_earning" json:"saverEarning"`
	TotalLiquidityFeesRune int64     `ch:"total_liquidity_fees_rune" json:"totalLiquidityFeesRune"`
}

// Values returns the row in PoolEarningsColumns order.
func (p *PoolEarnings) Values() []any {
	return []any{
		p.EarningsID, p.Pool, p.StartTime, p.EndTime,
		p.AssetLiquidityFees, p.Earnings, p.Rewards, p.RuneLiquidityFees,
		p.SaverEarning, p.TotalLiquidityFeesRune,
	}
}

// EarningsInterval is the mapped form of one upstream earnings interval.
// Pools carry uuid.Nil linkage until the parent has been written.
type EarningsInterval struct {
	Earnings *Earnings
	Pools    []*PoolEarnings
}
