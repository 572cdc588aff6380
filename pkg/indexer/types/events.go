package types

import (
	"strings"
	"time"
)

// PageIngestedEvent is published after one upstream page has been persisted,
// so the buckets it describes are queryable when the event is received.
type PageIngestedEvent struct {
	Event     string    `json:"event"` // Always "page.ingested"
	Series    string    `json:"series"`
	Pool      string    `json:"pool,omitempty"`
	From      int64     `json:"from"`    // cursor the page was requested at
	EndTime   int64     `json:"endTime"` // upstream meta.endTime, the next cursor
	Written   int       `json:"written"`
	Skipped   int       `json:"skipped"`
	Timestamp time.Time `json:"timestamp"` // Event publication time (UTC)
}

const PageIngestedEventType = "page.ingested"

// GetChannel returns the Redis channel name for a series and event type.
// Channel format: midgard:{series}:{eventType}
// Example: midgard:depth:page.ingested
func GetChannel(series, eventType string) string {
	return "midgard:" + series + ":" + eventType
}

// GetPageIngestedChannel returns the Redis channel for page.ingested events.
func GetPageIngestedChannel(series string) string {
	return GetChannel(series, PageIngestedEventType)
}

// PageIngestedPattern matches the page.ingested channel of every series.
const PageIngestedPattern = "midgard:*:" + PageIngestedEventType

// SeriesFromChannel extracts the series from a channel built by GetChannel, or "" when it is not one.
func SeriesFromChannel(channel string) string {
	parts := strings.Split(channel, ":")
	if len(parts) != 3 || parts[0] != "midgard" {
		return ""
	}
	return parts[1]
}
