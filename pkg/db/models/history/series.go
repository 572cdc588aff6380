package history

import "fmt"

// Series names one history stream. Each series is stored in its own table.
type Series string

const (
	SeriesDepth        Series = "depth"
	SeriesRunePool     Series = "runepool"
	SeriesSwap         Series = "swap"
	SeriesEarnings     Series = "earnings"
	SeriesPoolEarnings Series = "pool_earnings"
)

// IngestedSeries lists the series fetched from upstream, in tick order.
// Pool earnings arrive embedded in the earnings payload.
var IngestedSeries = []Series{SeriesDepth, SeriesRunePool, SeriesSwap, SeriesEarnings}

// Table returns the table holding the series.
func (s Series) Table() string {
	switch s {
	case SeriesDepth:
		return DepthTableName
	case SeriesRunePool:
		return RunePoolTableName
	case SeriesSwap:
		return SwapTableName
	case SeriesEarnings:
		return EarningsTableName
	case SeriesPoolEarnings:
		return PoolEarningsTableName
	default:
		return ""
	}
}

// Columns returns the column definitions of the series table.
func (s Series) Columns() []ColumnDef {
	switch s {
	case SeriesDepth:
		return DepthColumns
	case SeriesRunePool:
		return RunePoolColumns
	case SeriesSwap:
		return SwapColumns
	case SeriesEarnings:
		return EarningsColumns
	case SeriesPoolEarnings:
		return PoolEarningsColumns
	default:
		return nil
	}
}

// Pooled reports whether buckets of the series carry a pool identifier.
func (s Series) Pooled() bool {
	return s == SeriesDepth || s == SeriesSwap || s == SeriesPoolEarnings
}

func (s Series) Validate() error {
	if s.Table() == "" {
		return fmt.Errorf("unknown series %q", string(s))
	}
	return nil
}

func (s Series) String() string { return string(s) }

// uniqueKeys identify one row of the series table. They break sort ties so that
// LIMIT/OFFSET windows are stable across requests.
func (s Series) uniqueKeys() []string {
	switch s {
	case SeriesDepth, SeriesSwap:
		return []string{"start_time", "pool"}
	case SeriesPoolEarnings:
		return []string{"start_time", "pool", "earnings_id"}
	default:
		return []string{"start_time"}
	}
}

// SortKeys returns col followed by the series' unique keys, without repeats.
func (s Series) SortKeys(col string) []string {
	keys := []string{col}
	for _, k := range s.uniqueKeys() {
		if k != col {
			keys = append(keys, k)
		}
	}
	return keys
}
