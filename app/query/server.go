package query

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/thorchain-labs/midgardx/app/query/controller"
	"github.com/thorchain-labs/midgardx/app/query/types"
	"github.com/thorchain-labs/midgardx/pkg/utils"
)

// NewServer builds the HTTP server of app.
func NewServer(app *types.App) error {
	ctler := controller.NewController(app)
	router, err := ctler.NewRouter()
	if err != nil {
		return err
	}

	// use <ip>:<port> to bind to a specific interface or :<port> to bind to all interfaces
	addr := utils.Env("ADDR", ":3000")

	app.Server = &http.Server{
		Addr:              addr,
		Handler:           controller.WithCORS(router),
		ReadHeaderTimeout: 5 * time.Second,
	}
	app.Logger.Info("Starting server", zap.String("addr", addr))

	return nil
}
