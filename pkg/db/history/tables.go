package history

import (
	"fmt"
	"strings"

	historymodels "github.com/thorchain-labs/midgardx/pkg/db/models/history"
)

var allSeries = []historymodels.Series{
	historymodels.SeriesDepth,
	historymodels.SeriesRunePool,
	historymodels.SeriesSwap,
	historymodels.SeriesEarnings,
	historymodels.SeriesPoolEarnings,
}

// orderKeys are the sorting keys, and so the deduplication keys, of each table.
// Re-inserting a bucket with the same key replaces the previous row on merge.
var orderKeys = map[historymodels.Series][]string{
	historymodels.SeriesDepth:        {"pool", "start_time"},
	historymodels.SeriesRunePool:     {"start_time"},
	historymodels.SeriesSwap:         {"pool", "start_time"},
	historymodels.SeriesEarnings:     {"start_time"},
	historymodels.SeriesPoolEarnings: {"earnings_id", "pool"},
}

func createTableSQL(database string, series historymodels.Series, engine, onCluster string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" %s (
			%s
		) ENGINE = %s
		ORDER BY (%s)
	`, database, series.Table(), onCluster,
		historymodels.ColumnsToSchemaSQL(series.Columns()),
		engine,
		strings.Join(orderKeys[series], ", "))
}

func insertSQL(database string, series historymodels.Series) string {
	return fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES`,
		database, series.Table(), strings.Join(historymodels.ColumnsToNameList(series.Columns()), ", "))
}

func selectColumns(series historymodels.Series) string {
	return strings.Join(historymodels.ColumnsToNameList(series.Columns()), ", ")
}

func direction(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// orderClause sorts by col, then by the series' unique keys in the same direction.
func orderClause(series historymodels.Series, col string, desc bool) string {
	dir := direction(desc)
	keys := series.SortKeys(col)
	for i, k := range keys {
		keys[i] = k + " " + dir
	}
	return "ORDER BY " + strings.Join(keys, ", ")
}

// selectPageSQL builds the filtered, sorted and paginated read of one series.
// The pool filter only applies to series whose buckets carry a pool.
func selectPageSQL(database string, series historymodels.Series, spec historymodels.QuerySpec) (string, []any) {
	var where []string
	var args []any

	if spec.From != nil {
		where = append(where, "start_time >= ?")
		args = append(args, *spec.From)
	}
	if spec.To != nil {
		where = append(where, "end_time <= ?")
		args = append(args, *spec.To)
	}
	if spec.Pool != "" && series.Pooled() {
		where = append(where, "pool = ?")
		args = append(args, spec.Pool)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT %s FROM "%s"."%s" FINAL`, selectColumns(series), database, series.Table())
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ")
	sb.WriteString(orderClause(series, spec.SortColumn(series.Columns()), spec.Desc))
	if spec.Limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, spec.Limit, spec.Offset)
	}
	return sb.String(), args
}

func lastEndTimeSQL(database string, series historymodels.Series, pool string) (string, []any) {
	query := fmt.Sprintf(`SELECT max(end_time) FROM "%s"."%s"`, database, series.Table())
	if pool == "" || !series.Pooled() {
		return query, nil
	}
	return query + " WHERE pool = ?", []any{pool}
}
