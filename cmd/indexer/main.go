package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/thorchain-labs/midgardx/app/indexer"
)

func main() {
	once := flag.Bool("once", false, "backfill every series up to now, then exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	defer cancel()

	app := indexer.Initialize(ctx)

	if *once {
		failed := 0
		for _, st := range app.RunOnce(ctx) {
			if !st.OK() {
				failed++
			}
		}
		app.Stop()
		if failed > 0 {
			app.Logger.Error("Backfill finished with failed series", zap.Int("failed", failed))
			os.Exit(1)
		}
		return
	}

	app.Start(ctx)
}
