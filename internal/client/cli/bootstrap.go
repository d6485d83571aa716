package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/labscribe/internal/client/client"
	"github.com/dmitrijs2005/labscribe/internal/client/config"
	"github.com/dmitrijs2005/labscribe/internal/client/identity"
	"github.com/dmitrijs2005/labscribe/internal/client/notify"
	"github.com/dmitrijs2005/labscribe/internal/client/records"
	"github.com/dmitrijs2005/labscribe/internal/client/session"
	"github.com/dmitrijs2005/labscribe/internal/filex"
	"github.com/dmitrijs2005/labscribe/internal/logging"
	"google.golang.org/grpc"
)

// Runtime is the fully wired client: local database, transport, identity
// provider, session manager and the REPL on top.
type Runtime struct {
	App *App

	cfg       *config.Config
	db        *sql.DB
	transport *client.GRPCClient
	provider  *identity.GRPCProvider
	manager   *session.Manager
	log       logging.Logger
}

// Bootstrap wires a Runtime from cfg. Extra dial options are passed to the
// gRPC client, e.g. an in-memory dialer.
func Bootstrap(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer, dial ...grpc.DialOption) (*Runtime, error) {
	if _, err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("error preparing database directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	transport, err := client.NewLabScribeClient(cfg.ServerEndpointAddr,
		client.WithRequestTimeout(cfg.RequestTimeout),
		client.WithDialOptions(dial...),
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error creating grpc client: %w", err)
	}

	notifier := notify.NewPrinter(out)
	provider := identity.NewGRPCProvider(transport, db, log)
	manager := session.NewManager(provider, notifier, log)
	manager.RestoreTimeout = cfg.RestoreTimeout

	app := NewApp(Deps{
		Session:   manager,
		LocalData: provider,
		Records:   records.New(transport, manager.Handle(), notifier, log),
		Notifier:  notifier,
		Log:       log,
		In:        in,
		Out:       out,
	})

	return &Runtime{
		App:       app,
		cfg:       cfg,
		db:        db,
		transport: transport,
		provider:  provider,
		manager:   manager,
		log:       log,
	}, nil
}

// Run restores the session in the background, keeps the access token fresh
// and blocks in the REPL until the user exits. Resources are released on
// return.
func (r *Runtime) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := r.manager.Start(ctx); err != nil {
			r.log.Error(ctx, "session manager failed to start", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		r.provider.Watch(ctx, r.cfg.SessionWatchInterval)
	}()

	r.App.Run(ctx)

	cancel()
	wg.Wait()
	r.Close()
}

func (r *Runtime) Close() {
	if err := r.transport.Close(); err != nil {
		r.log.Warn(context.Background(), "closing grpc client", "error", err)
	}
	if err := r.db.Close(); err != nil {
		r.log.Warn(context.Background(), "closing database", "error", err)
	}
}
