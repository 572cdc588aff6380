package history

// DefaultSortColumn is the column every query sorts by unless told otherwise.
const DefaultSortColumn = "start_time"

// QuerySpec is a validated store query: range and pool filter, sort, and page window.
// From/To are epoch seconds. A nil bound leaves that side unconstrained.
type QuerySpec struct {
	From   *int64
	To     *int64
	Pool   string
	SortBy string // table column name, already resolved
	Desc   bool
	Offset int
	Limit  int
}

// Matches reports whether a bucket passes the query's range and pool filter.
// Both bounds: start >= from AND end <= to. One bound constrains only its side.
func (q QuerySpec) Matches(pool string, start, end int64) bool {
	if q.From != nil && start < *q.From {
		return false
	}
	if q.To != nil && end > *q.To {
		return false
	}
	if q.Pool != "" && pool != q.Pool {
		return false
	}
	return true
}

// SortColumn returns SortBy, falling back to DefaultSortColumn when it is not a column of cols.
func (q QuerySpec) SortColumn(cols []ColumnDef) string {
	if col, ok := ResolveColumn(cols, q.SortBy); ok {
		return col.Name
	}
	return DefaultSortColumn
}
