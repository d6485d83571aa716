package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/labscribe/internal/client/identity"
	"github.com/dmitrijs2005/labscribe/internal/client/notify"
	"github.com/dmitrijs2005/labscribe/internal/logging"
)

const DefaultRestoreTimeout = 5 * time.Second

type subscriber struct {
	id int
	fn func(State)
}

// Manager drives the Unknown -> {Authenticated, Unauthenticated} state
// machine. Transitions are committed under mu and published to subscribers
// outside of it, so subscribers may call back into the manager.
type Manager struct {
	provider       identity.Provider
	notifier       notify.Notifier
	log            logging.Logger
	RestoreTimeout time.Duration

	mu         sync.Mutex
	state      State
	epoch      uint64
	version    uint64
	delivered  uint64
	publishing bool
	subs       []subscriber
	nextID     int
}

func NewManager(p identity.Provider, n notify.Notifier, log logging.Logger) *Manager {
	return &Manager{
		provider:       p,
		notifier:       n,
		log:            log.With("module", "session"),
		RestoreTimeout: DefaultRestoreTimeout,
		state:          State{Status: Unknown},
	}
}

// Start subscribes to the provider and restores the persisted session once.
// A failed or timed out restore resolves to Unauthenticated.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.provider.OnSessionChange(m.handleProviderChange); err != nil {
		return fmt.Errorf("session start: %w", err)
	}

	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()

	rctx, cancel := context.WithTimeout(ctx, m.RestoreTimeout)
	defer cancel()

	s, err := m.provider.RestoreSession(rctx)
	if err != nil {
		m.log.Warn(ctx, "session restore failed", "error", err)
		m.notifier.Error("Could not restore your session, please sign in again")
		s = nil
	}

	m.mu.Lock()
	if m.epoch != epoch || m.state.Status != Unknown {
		m.mu.Unlock()
		return nil
	}
	if s != nil {
		m.commitLocked(authenticated(s))
	} else {
		m.commitLocked(unauthenticated())
	}
	m.mu.Unlock()
	m.publish()
	return nil
}

func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	return m.authenticate(ctx, func(ctx context.Context) (*identity.Session, error) {
		return m.provider.SignIn(ctx, email, password)
	})
}

func (m *Manager) SignUp(ctx context.Context, email, password, fullName string) error {
	return m.authenticate(ctx, func(ctx context.Context) (*identity.Session, error) {
		return m.provider.SignUp(ctx, email, password, fullName)
	})
}

// authenticate commits the result of call unless SignOut or Invalidate ran
// while it was in flight. A session produced too late is signed out.
func (m *Manager) authenticate(ctx context.Context, call func(context.Context) (*identity.Session, error)) error {
	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()

	s, err := call(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		m.log.Info(ctx, "discarding sign-in that finished after sign-out")
		if err := m.provider.SignOut(ctx); err != nil {
			m.log.Warn(ctx, "sign out of discarded session failed", "error", err)
		}
		return ErrSuperseded
	}
	m.commitLocked(authenticated(s))
	m.mu.Unlock()
	m.publish()
	return nil
}

// ErrSuperseded is returned by SignIn/SignUp when SignOut or Invalidate won
// the race against them.
var ErrSuperseded = errors.New("sign-in superseded by sign-out")

// SignOut is unconditional: the state becomes Unauthenticated before the
// provider is contacted, and a provider error does not undo it.
func (m *Manager) SignOut(ctx context.Context) error {
	m.forceUnauthenticated()
	if err := m.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// Invalidate forces Unauthenticated without talking to the provider. It is
// used after local data was wiped.
func (m *Manager) Invalidate() {
	m.forceUnauthenticated()
}

func (m *Manager) forceUnauthenticated() {
	m.mu.Lock()
	m.epoch++
	m.commitLocked(unauthenticated())
	m.mu.Unlock()
	m.publish()
}

// handleProviderChange applies provider-reported changes, last writer wins.
func (m *Manager) handleProviderChange(s *identity.Session) {
	m.mu.Lock()
	if s == nil {
		if m.state.Status == Authenticated {
			m.epoch++
			m.commitLocked(unauthenticated())
		}
	} else {
		m.commitLocked(authenticated(s))
	}
	m.mu.Unlock()
	m.publish()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.subs = slices.DeleteFunc(m.subs, func(s subscriber) bool { return s.id == id })
		m.mu.Unlock()
	}
}

// Handle returns the read-only view of m.
func (m *Manager) Handle() Handle {
	return handle{m: m}
}

type handle struct{ m *Manager }

func (h handle) State() State                    { return h.m.State() }
func (h handle) Subscribe(fn func(State)) func() { return h.m.Subscribe(fn) }

func (m *Manager) commitLocked(s State) {
	m.state = s
	m.version++
}

// publish delivers the latest committed state to every subscriber. Only one
// goroutine publishes at a time; transitions committed meanwhile, including
// ones made by subscribers, are picked up by the running loop, so
// intermediate states may be skipped but the last delivery is always the
// current state.
func (m *Manager) publish() {
	m.mu.Lock()
	if m.publishing {
		m.mu.Unlock()
		return
	}
	m.publishing = true
	for m.delivered != m.version {
		st, v := m.state, m.version
		subs := slices.Clone(m.subs)
		m.delivered = v
		m.mu.Unlock()

		for _, s := range subs {
			s.fn(st)
		}

		m.mu.Lock()
	}
	m.publishing = false
	m.mu.Unlock()
}
