package types

import "time"

// SeriesStatus is the outcome of the latest run of one series, as shown on the indexer's /status.
type SeriesStatus struct {
	Series     string    `json:"series"`
	Pool       string    `json:"pool,omitempty"`
	From       int64     `json:"from"`
	To         int64     `json:"to"`
	Cursor     int64     `json:"cursor"`
	Pages      int       `json:"pages"`
	Written    int       `json:"written"`
	Skipped    int       `json:"skipped"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// OK reports whether the run finished without error.
func (s SeriesStatus) OK() bool {
	return s.Error == ""
}
