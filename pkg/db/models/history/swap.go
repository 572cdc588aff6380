package history

const SwapTableName = "swaps_history"

var SwapColumns = withTime(
	[]ColumnDef{{Name: "pool", Type: "LowCardinality(String)", JSON: "pool"}},
	ColumnDef{Name: "average_slip", Type: "Float64", JSON: "averageSlip"},
	ColumnDef{Name: "rune_price_usd", Type: "Float64", JSON: "runePriceUSD"},
	ColumnDef{Name: "synth_mint_average_slip", Type: "Float64", JSON: "synthMintAverageSlip"},
	ColumnDef{Name: "synth_mint_count", Type: "Int64", JSON: "synthMintCount"},
	ColumnDef{Name: "synth_mint_fees", Type: "Int64", JSON: "synthMintFees"},
	ColumnDef{Name: "synth_mint_volume", Type: "Int64", JSON: "synthMintVolume"},
	ColumnDef{Name: "synth_mint_volume_usd", Type: "Float64", JSON: "synthMintVolumeUSD"},
	ColumnDef{Name: "synth_redeem_average_slip", Type: "Float64", JSON: "synthRedeemAverageSlip"},
	ColumnDef{Name: "synth_redeem_count", Type: "Int64", JSON: "synthRedeemCount"},
	ColumnDef{Name: "synth_redeem_fees", Type: "Int64", JSON: "synthRedeemFees"},
	ColumnDef{Name: "synth_redeem_volume", Type: "Int64", JSON: "synthRedeemVolume"},
	ColumnDef{Name: "synth_redeem_volume_usd", Type: "Float64", JSON: "synthRedeemVolumeUSD"},
	ColumnDef{Name: "to_asset_average_slip", Type: "Float64", JSON: "toAssetAverageSlip"},
	ColumnDef{Name: "to_asset_count", Type: "Int64", JSON: "toAssetCount"},
	ColumnDef{Name: "to_asset_fees", Type: "Int64", JSON: "toAssetFees"},
	ColumnDef{Name: "to_asset_volume", Type: "Int64", JSON: "toAssetVolume"},
	ColumnDef{Name: "to_asset_volume_usd", Type: "Float64", JSON: "toAssetVolumeUSD"},
	ColumnDef{Name: "to_rune_average_slip", Type: "Float64", JSON: "toRuneAverageSlip"},
	ColumnDef{Name: "to_rune_count", Type: "Int64", JSON: "toRuneCount"},
	ColumnDef{Name: "to_rune_fees", Type: "Int64", JSON: "toRuneFees"},
	ColumnDef{Name: "to_rune_volume", Type: "Int64", JSON: "toRuneVolume"},
	ColumnDef{Name: "to_rune_volume_usd", Type: "Float64", JSON: "toRuneVolumeUSD"},
	ColumnDef{Name: "total_count", Type: "Int64", JSON: "totalCount"},
	ColumnDef{Name: "total_fees", Type: "Int64", JSON: "totalFees"},
	ColumnDef{Name: "total_volume", Type: "Int64", JSON: "totalVolume"},
	ColumnDef{Name: "total_volume_usd", Type: "Float64", JSON: "totalVolumeUSD"},
)

// Swap is one interval of a pool's swap activity.
// Mint/redeem fields cover synth swaps, toAsset/toRune cover regular swaps by direction.
type Swap struct {
	Pool                   string  `ch:"pool" json:"pool"`
	StartTime              int64   `ch:"start_time" json:"startTime"`
	EndTime                int64   `ch:"end_time" json:"endTime"`
	AverageSlip            float64 `ch:"average_slip" json:"averageSlip"`
	RunePriceUSD           float64 `ch:"rune_price_usd" json:"runePriceUSD"`
	SynthMintAverageSlip   float64 `ch:"synth_mint_average_slip" json:"synthMintAverageSlip"`
	SynthMintCount         int64   `ch:"synth_mint_count" json:"synthMintCount"`
	SynthMintFees          int64   `ch:"synth_mint_fees" json:"synthMintFees"`
	SynthMintVolume        int64   `ch:"synth_mint_volume" json:"synthMintVolume"`
	SynthMintVolumeUSD     float64 `ch:"synth_mint_volume_usd" json:"synthMintVolumeUSD"`
	SynthRedeemAverageSlip float64 `ch:"synth_redeem_average_slip" json:"synthRedeemAverageSlip"`
	SynthRedeemCount       int64   `ch:"synth_redeem_count" json:"synthRedeemCount"`
	SynthRedeemFees        int64   `ch:"synth_redeem_fees" json:"synthRedeemFees"`
	SynthRedeemVolume      int64   `ch:"synth_redeem_volume" json:"synthRedeemVolume"`
	SynthRedeemVolumeUSD   float64 `ch:"synth_redeem_volume_usd" json:"synthRedeemVolumeUSD"`
	ToAssetAverageSlip     float64 `ch:"to_asset_average_slip" json:"toAssetAverageSlip"`
	ToAssetCount           int64   `ch:"to_asset_count" json:"toAssetCount"`
	ToAssetFees            int64   `ch:"to_asset_fees" json:"toAssetFees"`
	ToAssetVolume          int64   `ch:"to_asset_volume" json:"toAssetVolume"`
	ToAssetVolumeUSD       float64 `ch:"to_asset_volume_usd" json:"toAssetVolumeUSD"`
	ToRuneAverageSlip      float64 `ch:"to_rune_average_slip" json:"toRuneAverageSlip"`
	ToRuneCount            int64   `ch:"to_rune_count" json:"toRuneCount"`
	ToRuneFees             int64   `ch:"to_rune_fees" json:"toRuneFees"`
	ToRuneVolume           int64   `ch:"to_rune_volume" json:"toRuneVolume"`
	ToRuneVolumeUSD        float64 `ch:"to_rune_volume_usd" json:"toRuneVolumeUSD"`
	TotalCount             int64   `ch:"total_count" json:"totalCount"`
	TotalFees              int64   `ch:"total_fees" json:"totalFees"`
	TotalVolume            int64   `ch:"total_volume" json:"totalVolume"`
	TotalVolumeUSD         float64 `ch:"total_volume_usd" json:"totalVolumeUSD"`
}

// Values returns the row in SwapColumns order.
func (s *Swap) Values() []any {
	return []any{
		s.Pool, s.StartTime, s.EndTime,
		s.AverageSlip, s.RunePriceUSD,
		s.SynthMintAverageSlip, s.SynthMintCount, s.SynthMintFees, s.SynthMintVolume, s.SynthMintVolumeUSD,
		s.SynthRedeemAverageSlip, s.SynthRedeemCount, s.SynthRedeemFees, s.SynthRedeemVolume, s.SynthRedeemVolumeUSD,
		s.ToAssetAverageSlip, s.ToAssetCount, s.ToAssetFees, s.ToAssetVolume, s.ToAssetVolumeUSD,
		s.ToRuneAverageSlip, s.ToRuneCount, s.ToRuneFees, s.ToRuneVolume, s.ToRuneVolumeUSD,
		s.TotalCount, s.TotalFees, s.TotalVolume, s.TotalVolumeUSD,
	}
}
