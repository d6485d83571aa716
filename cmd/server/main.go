package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/labscribe/internal/buildinfo"
	"github.com/dmitrijs2005/labscribe/internal/logging"
	"github.com/dmitrijs2005/labscribe/internal/server"
	"github.com/dmitrijs2005/labscribe/internal/server/config"
)

func main() {

	buildinfo.Print(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	logger := logging.New(os.Stdout, logging.FormatJSON, slog.LevelInfo)
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}
}
