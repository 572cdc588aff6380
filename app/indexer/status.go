package indexer

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"github.com/thorchain-labs/midgardx/pkg/indexer/types"
)

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Cron     string               `json:"cron"`
	NextTick time.Time            `json:"nextTick"`
	Series   []types.SeriesStatus `json:"series"`
}

// NewRouter returns the router of the status server.
func (a *App) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/status", a.HandleStatus).Methods(http.MethodGet)
	r.HandleFunc("/health", a.HandleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", a.Metrics.Handler()).Methods(http.MethodGet)
	return r
}

// HandleStatus lists the latest run of every series, ordered by series then pool.
func (a *App) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	out := StatusResponse{
		Cron:     a.Scheduler.Spec(),
		NextTick: a.Scheduler.Next(),
		Series:   make([]types.SeriesStatus, 0, a.Status.Size()),
	}
	a.Status.Range(func(_ string, st types.SeriesStatus) bool {
		out.Series = append(out.Series, st)
		return true
	})
	sort.Slice(out.Series, func(i, j int) bool {
		if out.Series[i].Series != out.Series[j].Series {
			return out.Series[i].Series < out.Series[j].Series
		}
		return out.Series[i].Pool < out.Series[j].Pool
	})
	writeJSON(w, http.StatusOK, out)
}

func (a *App) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := a.Store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "errored", "error": "database connection error"})
		return
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Health(ctx); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "errored", "error": "redis connection error"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
