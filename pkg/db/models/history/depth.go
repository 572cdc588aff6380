package history

const DepthTableName = "depth_history"

var DepthColumns = withTime(
	[]ColumnDef{{Name: "pool", Type: "LowCardinality(String)", JSON: "pool"}},
	ColumnDef{Name: "asset_depth", Type: "Int64", JSON: "assetDepth"},
	ColumnDef{Name: "asset_price", Type: "Float64", JSON: "assetPrice"},
	ColumnDef{Name: "asset_price_usd", Type: "Float64", JSON: "assetPriceUSD"},
	ColumnDef{Name: "liquidity_units", Type: "Int64", JSON: "liquidityUnits"},
	ColumnDef{Name: "members_count", Type: "Int64", JSON: "membersCount"},
	ColumnDef{Name: "rune_depth", Type: "Int64", JSON: "runeDepth"},
	ColumnDef{Name: "synth_supply", Type: "Int64", JSON: "synthSupply"},
	ColumnDef{Name: "synth_units", Type: "Int64", JSON: "synthUnits"},
	ColumnDef{Name: "units", Type: "Int64", JSON: "units"},
	ColumnDef{Name: "luvi", Type: "Float64", JSON: "luvi"},
)

// Depth is one interval of a pool's depth and price history.
type Depth struct {
	Pool           string  `ch:"pool" json:"pool"`
	StartTime      int64   `ch:"start_time" json:"startTime"`
	EndTime        int64   `ch:"end_time" json:"endTime"`
	AssetDepth     int64   `ch:"asset_depth" json:"assetDepth"`
	AssetPrice     float64 `ch:"asset_price" json:"assetPrice"`
	AssetPriceUSD  float64 `ch:"asset_price_usd" json:"assetPriceUSD"`
	LiquidityUnits int64   `ch:"liquidity_units" json:"liquidityUnits"`
	MembersCount   int64   `ch:"members_count" json:"membersCount"`
	RuneDepth      int64   `ch:"rune_depth" json:"runeDepth"`
	SynthSupply    int64   `ch:"synth_supply" json:"synthSupply"`
	SynthUnits     int64   `ch:"synth_units" json:"synthUnits"`
	Units          int64   `ch:"units" json:"units"`
	Luvi           float64 `ch:"luvi" json:"luvi"`
}

// Values returns the row in DepthColumns order.
func (d *Depth) Values() []any {
	return []any{
		d.Pool, d.StartTime, d.EndTime,
		d.AssetDepth, d.AssetPrice, d.AssetPriceUSD, d.LiquidityUnits, d.MembersCount,
		d.RuneDepth, d.SynthSupply, d.SynthUnits, d.Units, d.Luvi,
	}
}
