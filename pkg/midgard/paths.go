package midgard

import (
	"net/url"
	"strconv"
)

// History endpoint paths of the Midgard v2 API.
const (
	depthHistoryPath    = "/v2/history/depths/"
	runePoolHistoryPath = "/v2/history/runepool"
	swapHistoryPath     = "/v2/history/swaps"
	earningsHistoryPath = "/v2/history/earnings"
)

const (
	// Interval is the bucket width requested from every history endpoint.
	Interval = "hour"
	// DefaultCount is the number of buckets requested per page.
	DefaultCount = 400
)

// historyQuery renders interval=hour&count=N&from=T, plus pool when set.
func historyQuery(from int64, count int, pool string) string {
	if count <= 0 {
		count = DefaultCount
	}
	q := url.Values{}
	q.Set("interval", Interval)
	q.Set("count", strconv.Itoa(count))
	q.Set("from", strconv.FormatInt(from, 10))
	if pool != "" {
		q.Set("pool", pool)
	}
	return "?" + q.Encode()
}
