package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/labscribe/internal/buildinfo"
	"github.com/dmitrijs2005/labscribe/internal/client/cli"
	"github.com/dmitrijs2005/labscribe/internal/client/config"
	"github.com/dmitrijs2005/labscribe/internal/logging"
)

func main() {

	buildinfo.Print(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, logging.FormatText, slog.LevelWarn)
	cfg := config.LoadConfig()

	rt, err := cli.Bootstrap(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	rt.Run(ctx)
}
