// Package gate decides whether a protected page may render for the current
// session, and keeps a rendered page bound to the identity it was opened
// for.
package gate

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/labscribe/internal/client/identity"
	"github.com/dmitrijs2005/labscribe/internal/client/session"
)

type Decision int

const (
	// Wait means the session is not decided yet; render a neutral indicator.
	Wait Decision = iota
	// Redirect means no one is signed in; run the entry flow.
	Redirect
	// Render means the protected page may mount for the returned user.
	Render
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Decide maps a session state to a render decision.
func Decide(s session.State) (Decision, identity.User) {
	switch s.Status {
	case session.Authenticated:
		if u, ok := s.User(); ok {
			return Render, u
		}
		return Redirect, identity.User{}
	case session.Unauthenticated:
		return Redirect, identity.User{}
	default:
		return Wait, identity.User{}
	}
}

// Page is protected content. It must use m.Context() for every store call
// and apply results through m.Commit.
type Page func(m *Mount) error

// Gate opens pages behind the session check.
type Gate struct {
	session session.Handle
	out     io.Writer
	entry   func(ctx context.Context) error
}

// New returns a Gate that runs entry on Redirect and writes the loading
// indicator to out on Wait.
func New(h session.Handle, out io.Writer, entry func(ctx context.Context) error) *Gate {
	return &Gate{session: h, out: out, entry: entry}
}

// Open reads the session state at call time and acts on the decision. On
// Render the page runs with a Mount that is torn down as soon as the
// session leaves the user the page was opened for.
func (g *Gate) Open(ctx context.Context, page Page) (Decision, error) {
	d, user := Decide(g.session.State())
	switch d {
	case Wait:
		fmt.Fprintln(g.out, "Loading...")
		return Wait, nil
	case Redirect:
		if g.entry == nil {
			return Redirect, nil
		}
		return Redirect, g.entry(ctx)
	}

	m := newMount(ctx, user)
	defer m.unmount()

	unsubscribe := g.session.Subscribe(func(s session.State) {
		if !stillFor(s, user) {
			m.unmount()
		}
	})
	defer unsubscribe()

	// The state may have moved between the decision and the subscription.
	if !stillFor(g.session.State(), user) {
		m.unmount()
		return Render, nil
	}

	return Render, page(m)
}

func stillFor(s session.State, user identity.User) bool {
	u, ok := s.User()
	return ok && u.ID == user.ID
}

// Mount is the lifetime of one rendered page.
type Mount struct {
	User identity.User

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	mounted bool
}

func newMount(parent context.Context, u identity.User) *Mount {
	ctx, cancel := context.WithCancel(parent)
	return &Mount{User: u, ctx: ctx, cancel: cancel, mounted: true}
}

// Context is cancelled when the page unmounts.
func (m *Mount) Context() context.Context { return m.ctx }

func (m *Mount) Mounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mounted
}

// Commit runs fn only if the page is still mounted and reports whether it
// did. Unmounting waits for a running fn to return.
func (m *Mount) Commit(fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mounted {
		return false
	}
	fn()
	return true
}

func (m *Mount) unmount() {
	m.mu.Lock()
	m.mounted = false
	m.mu.Unlock()
	m.cancel()
}
