package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/pre-history/mac-oui/internal/app"
	"github.com/pre-history/mac-oui/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", "error", err)
	}

	if err := app.Run(ctx, cfg); err != nil {
		log.Fatal("app error", "error", err)
	}
}
