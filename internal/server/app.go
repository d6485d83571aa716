// Package server wires the labscribe server together: configuration,
// storage, services, and the gRPC and HTTP listeners. It handles graceful
// shutdown when the context is cancelled.
package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/labscribe/internal/logging"
	"github.com/dmitrijs2005/labscribe/internal/server/config"
	"github.com/dmitrijs2005/labscribe/internal/server/httpx"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/labscribe/internal/server/services"

	gs "github.com/dmitrijs2005/labscribe/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager repomanager.RepositoryManager
	grpc    *gs.GRPCServer
	http    *httpx.Server
}

// NewApp opens the database named by c.DatabaseDSN, applies migrations, and
// builds both listeners.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	m, err := repomanager.New(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	grpcServer := gs.NewGRPCServer(
		c.EndpointAddrGRPC,
		logger,
		services.NewUserService(m, c),
		services.NewRecordService(m),
		services.NewProfileService(m),
		gs.NewMetrics(reg),
		c.SecretKey,
	)

	return &App{
		config:  c,
		logger:  logger,
		manager: m,
		grpc:    grpcServer,
		http:    httpx.NewServer(c.EndpointAddrHTTP, m, reg, logger),
	}, nil
}

// Run serves until ctx is cancelled or a listener fails, then closes the
// database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "Starting app...")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				app.logger.Error(ctx, name+" server failed", "error", err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancel()
			}
		}()
	}

	run("gRPC", app.grpc.Run)
	run("HTTP", app.http.Run)

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
	return firstErr
}
