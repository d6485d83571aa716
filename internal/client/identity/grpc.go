package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/labscribe/internal/client/client"
	"github.com/dmitrijs2005/labscribe/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/labscribe/internal/dbx"
	"github.com/dmitrijs2005/labscribe/internal/logging"
)

// Transport is the part of client.GRPCClient the provider relies on.
type Transport interface {
	SignIn(ctx context.Context, email, password string) (client.Tokens, error)
	SignUp(ctx context.Context, email, password, fullName string) (client.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (client.Tokens, error)
	SignOut(ctx context.Context) error
	Revoke(ctx context.Context, refreshToken string) error
	Tokens() client.Tokens
	SetTokens(t client.Tokens)
	ClearTokens()
	OnTokensRefreshed(fn func(*client.Tokens))
}

// GRPCProvider implements Provider over the labscribe server. The refresh
// token and the identity it belongs to are persisted in the local metadata
// table so a session survives restarts.
//
// Sign-in, sign-out and local wipes start a new generation. A refresh adopts
// its result only if the generation it started in is still current;
// otherwise the rotated token is revoked and the result is dropped. Session
// changes are reported while storeMu is held, so a listener can never see a
// refresh after the sign-out that superseded it. Listeners must not call back
// into the provider.
type GRPCProvider struct {
	transport Transport
	db        *sql.DB
	log       logging.Logger

	mu       sync.Mutex
	listener func(*Session)

	storeMu sync.Mutex
	gen     uint64
}

func NewGRPCProvider(t Transport, db *sql.DB, log logging.Logger) *GRPCProvider {
	p := &GRPCProvider{transport: t, db: db, log: log.With("module", "identity")}
	t.OnTokensRefreshed(p.handleRefresh)
	return p
}

func (p *GRPCProvider) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(p.db)
}

func sessionFrom(t client.Tokens) *Session {
	return &Session{User: User{ID: t.UserID, Email: t.Email}, ExpiresAt: t.AccessExpiresAt}
}

func mapTransportError(err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return ErrInvalidCredentials
	case errors.Is(err, client.ErrAlreadyExists):
		return ErrEmailTaken
	case errors.Is(err, client.ErrWeakPassword), errors.Is(err, client.ErrInvalidInput):
		return ErrWeakCredential
	default:
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
}

func (p *GRPCProvider) persist(ctx context.Context, t client.Tokens) error {
	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyRefreshToken, t.RefreshToken); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyUserID, t.UserID); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyEmail, t.Email)
	})
}

func (p *GRPCProvider) forget(ctx context.Context) error {
	return p.repo().Delete(ctx, metadata.SessionKeys...)
}

func (p *GRPCProvider) generation() uint64 {
	p.storeMu.Lock()
	defer p.storeMu.Unlock()
	return p.gen
}

func (p *GRPCProvider) bump() {
	p.storeMu.Lock()
	p.gen++
	p.storeMu.Unlock()
}

// adopt installs t in the transport and persists it, provided nothing changed
// the session since gen was taken and the transport still holds from.
func (p *GRPCProvider) adopt(ctx context.Context, gen uint64, from string, t client.Tokens, announce bool) (bool, error) {
	p.storeMu.Lock()
	if p.gen != gen || p.transport.Tokens().RefreshToken != from {
		p.storeMu.Unlock()
		p.log.Info(ctx, "discarding refreshed tokens of a superseded session")
		if err := p.transport.Revoke(context.WithoutCancel(ctx), t.RefreshToken); err != nil {
			p.log.Warn(ctx, "revoke of discarded refresh token failed", "error", err)
		}
		return false, nil
	}
	defer p.storeMu.Unlock()

	p.transport.SetTokens(t)
	err := p.persist(ctx, t)
	if announce {
		p.emit(sessionFrom(t))
	}
	return true, err
}

// drop ends the session that held from, unless it was already replaced.
func (p *GRPCProvider) drop(ctx context.Context, gen uint64, from string, announce bool) bool {
	p.storeMu.Lock()
	defer p.storeMu.Unlock()
	if p.gen != gen || p.transport.Tokens().RefreshToken != from {
		return false
	}
	p.transport.ClearTokens()
	if err := p.forget(ctx); err != nil {
		p.log.Error(ctx, "failed to drop persisted session", "error", err)
	}
	if announce {
		p.emit(nil)
	}
	return true
}

func (p *GRPCProvider) RestoreSession(ctx context.Context) (*Session, error) {
	gen := p.generation()

	rt, ok, err := p.repo().Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if !ok || rt == "" {
		return nil, nil
	}

	t, err := p.transport.Refresh(ctx, rt)
	if errors.Is(err, client.ErrUnauthorized) {
		p.log.Info(ctx, "persisted session rejected, discarding")
		p.drop(ctx, gen, "", false)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	adopted, err := p.adopt(ctx, gen, "", t, false)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if !adopted {
		return nil, nil
	}
	return sessionFrom(t), nil
}

func (p *GRPCProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	p.bump()
	t, err := p.transport.SignIn(ctx, email, password)
	if err != nil {
		return nil, mapTransportError(err)
	}
	if err := p.store(ctx, t); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return sessionFrom(t), nil
}

func (p *GRPCProvider) SignUp(ctx context.Context, email, password, fullName string) (*Session, error) {
	p.bump()
	t, err := p.transport.SignUp(ctx, email, password, fullName)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
		}
		return nil, mapTransportError(err)
	}
	if err := p.store(ctx, t); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return sessionFrom(t), nil
}

func (p *GRPCProvider) store(ctx context.Context, t client.Tokens) error {
	p.storeMu.Lock()
	defer p.storeMu.Unlock()
	return p.persist(ctx, t)
}

// SignOut revokes the refresh token when the server is reachable. Local
// credentials are dropped either way, so a failed revoke is only logged.
func (p *GRPCProvider) SignOut(ctx context.Context) error {
	p.bump()
	if err := p.transport.SignOut(ctx); err != nil {
		p.log.Warn(ctx, "refresh token revoke failed", "error", err)
	}

	p.storeMu.Lock()
	defer p.storeMu.Unlock()
	err := p.forget(ctx)
	p.emit(nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (p *GRPCProvider) OnSessionChange(fn func(*Session)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener != nil {
		return ErrAlreadySubscribed
	}
	p.listener = fn
	return nil
}

func (p *GRPCProvider) emit(s *Session) {
	p.mu.Lock()
	fn := p.listener
	p.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// handleRefresh runs after the transport rotated (or lost) its tokens. The
// change is ignored when the transport has moved on since, e.g. a sign-out
// cleared it while the refresh was in flight.
func (p *GRPCProvider) handleRefresh(t *client.Tokens) {
	ctx := context.Background()
	want := ""
	if t != nil {
		want = t.RefreshToken
	}

	p.storeMu.Lock()
	if p.transport.Tokens().RefreshToken != want {
		p.storeMu.Unlock()
		return
	}
	defer p.storeMu.Unlock()

	if t == nil {
		if err := p.forget(ctx); err != nil {
			p.log.Error(ctx, "failed to drop persisted session", "error", err)
		}
		p.emit(nil)
		return
	}
	if err := p.persist(ctx, *t); err != nil {
		p.log.Error(ctx, "failed to persist rotated tokens", "error", err)
	}
	p.emit(sessionFrom(*t))
}

// Watch refreshes the access token ahead of its expiry until ctx is done.
// A token is refreshed once less than two intervals of life remain. A
// rejected refresh ends the session and is reported as a nil change;
// transport failures are retried on the next tick.
func (p *GRPCProvider) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		p.log.Warn(ctx, "session watch disabled", "interval", interval)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.refreshIfDue(ctx, interval)
		case <-ctx.Done():
			return
		}
	}
}

func (p *GRPCProvider) refreshIfDue(ctx context.Context, interval time.Duration) {
	gen := p.generation()
	cur := p.transport.Tokens()
	if cur.RefreshToken == "" || time.Until(cur.AccessExpiresAt) > 2*interval {
		return
	}

	t, err := p.transport.Refresh(ctx, cur.RefreshToken)
	switch {
	case err == nil:
		if _, err := p.adopt(ctx, gen, cur.RefreshToken, t, true); err != nil {
			p.log.Error(ctx, "failed to persist rotated tokens", "error", err)
		}
	case errors.Is(err, client.ErrUnauthorized):
		if p.drop(ctx, gen, cur.RefreshToken, true) {
			p.log.Info(ctx, "session expired or revoked")
		}
	default:
		p.log.Warn(ctx, "token refresh failed", "error", err)
	}
}

// ClearLocalData wipes everything the client persisted along with the
// in-memory credentials.
func (p *GRPCProvider) ClearLocalData(ctx context.Context) error {
	p.storeMu.Lock()
	defer p.storeMu.Unlock()

	p.gen++
	p.transport.ClearTokens()
	if err := p.repo().Clear(ctx); err != nil {
		return fmt.Errorf("clear local data: %w", err)
	}
	return nil
}
