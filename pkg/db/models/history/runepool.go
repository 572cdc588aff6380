package history

const RunePoolTableName = "runepool_history"

var RunePoolColumns = withTime(
	nil,
	ColumnDef{Name: "count", Type: "Int64", JSON: "count"},
	ColumnDef{Name: "units", Type: "Int64", JSON: "units"},
)

// RunePool is one interval of RUNEPool membership history.
type RunePool struct {
	StartTime int64 `ch:"start_time" json:"startTime"`
	EndTime   int64 `ch:"end_time" json:"endTime"`
	Count     int64 `ch:"count" json:"count"`
	Units     int64 `ch:"units" json:"units"`
}

// Values returns the row in RunePoolColumns order.
func (r *RunePool) Values() []any {
	return []any{r.StartTime, r.EndTime, r.Count, r.Units}
}
