// Command server runs the query API: card registration, reviews,
// acknowledgements, stats and owner settings over REST.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/semenovdl/recallbot/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunServer(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
