package controller

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/thorchain-labs/midgardx/app/query/types"
)

type Controller struct {
	App *types.App
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	return &Controller{
		App: app,
	}
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(c.withLogging)

	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods(http.MethodGet)
	r.Handle("/metrics", c.App.Metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ws/events", c.HandleEvents).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/depth-history", c.HandleDepthHistory).Methods(http.MethodGet)
	api.HandleFunc("/runepool-history", c.HandleRunePoolHistory).Methods(http.MethodGet)
	api.HandleFunc("/swaps-history", c.HandleSwapsHistory).Methods(http.MethodGet)
	api.HandleFunc("/earnings-history", c.HandleEarningsHistory).Methods(http.MethodGet)

	return r, nil
}

// WithCORS is a middleware that adds CORS headers to the response.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
