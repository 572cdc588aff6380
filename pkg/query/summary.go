package query

import "github.com/thorchain-labs/midgardx/pkg/db/models/history"

// FieldSummary holds the first and last value of a field across a page and their truncated mean.
type FieldSummary struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	Avg   int64 `json:"avg"`
}

// DepthSummary describes one returned page of depth buckets, never the whole filtered set.
type DepthSummary struct {
	Count          int          `json:"count"`
	StartTime      int64        `json:"startTime"`
	EndTime        int64        `json:"endTime"`
	AssetDepth     FieldSummary `json:"assetDepth"`
	LiquidityUnits FieldSummary `json:"liquidityUnits"`
	MembersCount   FieldSummary `json:"membersCount"`
	RuneDepth      FieldSummary `json:"runeDepth"`
	SynthUnits     FieldSummary `json:"synthUnits"`
}

// DepthPage is the body of a depth request with summary=true.
type DepthPage struct {
	Data []history.Depth `json:"data"`
	Meta DepthSummary    `json:"meta"`
}

// SummarizeDepth computes page-local statistics in page order.
// StartTime is the earliest start and EndTime the latest end, whatever the sort.
func SummarizeDepth(page []history.Depth) DepthSummary {
	s := DepthSummary{Count: len(page)}
	if len(page) == 0 {
		return s
	}

	s.StartTime, s.EndTime = page[0].StartTime, page[0].EndTime
	for _, d := range page[1:] {
		s.StartTime = min(s.StartTime, d.StartTime)
		s.EndTime = max(s.EndTime, d.EndTime)
	}

	s.AssetDepth = summarize(page, func(d history.Depth) int64 { return d.AssetDepth })
	s.LiquidityUnits = summarize(page, func(d history.Depth) int64 { return d.LiquidityUnits })
	s.MembersCount = summarize(page, func(d history.Depth) int64 { return d.MembersCount })
	s.RuneDepth = summarize(page, func(d history.Depth) int64 { return d.RuneDepth })
	s.SynthUnits = summarize(page, func(d history.Depth) int64 { return d.SynthUnits })
	return s
}

func summarize(page []history.Depth, field func(history.Depth) int64) FieldSummary {
	var sum int64
	for _, d := range page {
		sum += field(d)
	}
	return FieldSummary{
		Start: field(page[0]),
		End:   field(page[len(page)-1]),
		Avg:   sum / int64(len(page)),
	}
}
