// Command scheduler runs the sweep daemon: it periodically collects due
// cards and delivers reminders through the Telegram Bot API.
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

	if err := app.RunScheduler(ctx); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
}
