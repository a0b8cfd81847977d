package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	overstayscheduler "github.com/magabrotheeeer/parking-lot/internal/app/overstay-scheduler"
	"github.com/magabrotheeeer/parking-lot/internal/config"
	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting overstay scheduler", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := overstayscheduler.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize scheduler", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("scheduler stopped with error", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("overstay scheduler stopped")
}
