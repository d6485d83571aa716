package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/labscribe/internal/client/gate"
	"github.com/dmitrijs2005/labscribe/internal/client/notify"
	"github.com/dmitrijs2005/labscribe/internal/client/records"
	"github.com/dmitrijs2005/labscribe/internal/client/session"
	"github.com/dmitrijs2005/labscribe/internal/logging"
)

// Session is the part of session.Manager the pages drive.
type Session interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password, fullName string) error
	SignOut(ctx context.Context) error
	Invalidate()
	Handle() session.Handle
}

// LocalData wipes what the client persisted on this machine.
type LocalData interface {
	ClearLocalData(ctx context.Context) error
}

type Deps struct {
	Session   Session
	LocalData LocalData
	Records   *records.Client
	Notifier  notify.Notifier
	Log       logging.Logger
	In        io.Reader
	Out       io.Writer
}

type App struct {
	session  Session
	local    LocalData
	records  *records.Client
	notifier notify.Notifier
	log      logging.Logger
	gate     *gate.Gate
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time
}

func NewApp(d Deps) *App {
	a := &App{
		session:  d.Session,
		local:    d.LocalData,
		records:  d.Records,
		notifier: d.Notifier,
		log:      d.Log.With("module", "cli"),
		reader:   bufio.NewReader(d.In),
		out:      d.Out,
		now:      time.Now,
	}
	a.gate = gate.New(d.Session.Handle(), d.Out, a.entry)
	return a
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to labscribe (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) status() string {
	st := a.session.Handle().State()
	switch st.Status {
	case session.Authenticated:
		u, _ := st.User()
		return u.Email
	case session.Unauthenticated:
		return "signed out"
	default:
		return "loading"
	}
}

func (a *App) isSignedIn() bool {
	_, ok := a.session.Handle().State().User()
	return ok
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// open runs page behind the gate.
func (a *App) open(ctx context.Context, page gate.Page) error {
	_, err := a.gate.Open(ctx, page)
	return err
}

// reportStoreError surfaces a records error. ErrNotAuthenticated was
// already reported by the records client.
func (a *App) reportStoreError(ctx context.Context, err error, msg string) {
	if errors.Is(err, records.ErrNotAuthenticated) {
		return
	}
	a.log.Warn(ctx, msg, "error", err)
	a.notifier.Error(msg)
}
