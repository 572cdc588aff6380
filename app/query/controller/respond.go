package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/thorchain-labs/midgardx/pkg/db"
	historyquery "github.com/thorchain-labs/midgardx/pkg/query"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps err to a status code and writes a plain JSON string body.
// Store failures are logged and reported without their detail.
func (c *Controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, historyquery.ErrInvalidRange), errors.Is(err, historyquery.ErrInvalidParam):
		writeJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNotFound):
		writeJSON(w, http.StatusNotFound, "No data found")
	default:
		c.App.Logger.Error("Query failed",
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, "Error fetching data")
	}
}
