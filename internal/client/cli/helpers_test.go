package cli

import (
	"bytes"
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/labscribe/internal/api"
	"github.com/dmitrijs2005/labscribe/internal/client/client"
	"github.com/dmitrijs2005/labscribe/internal/client/identity"
	"github.com/dmitrijs2005/labscribe/internal/client/notify"
	"github.com/dmitrijs2005/labscribe/internal/client/records"
	"github.com/dmitrijs2005/labscribe/internal/client/session"
	"github.com/dmitrijs2005/labscribe/internal/logging"
	"github.com/stretchr/testify/require"
)

const testUserID = "u1"

type fakeProvider struct {
	mu        sync.Mutex
	restore   *identity.Session
	signInErr error
	signUpErr error
	signIns   []string
	signUps   []string
	signOuts  int
}

func (f *fakeProvider) RestoreSession(context.Context) (*identity.Session, error) {
	return f.restore, nil
}

func (f *fakeProvider) SignIn(_ context.Context, email, _ string) (*identity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns = append(f.signIns, email)
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &identity.Session{User: identity.User{ID: testUserID, Email: email}}, nil
}

func (f *fakeProvider) SignUp(_ context.Context, email, _, fullName string) (*identity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUps = append(f.signUps, email+"/"+fullName)
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &identity.Session{User: identity.User{ID: testUserID, Email: email}}, nil
}

func (f *fakeProvider) SignOut(context.Context) error {
	f.mu.Lock()
	f.signOuts++
	f.mu.Unlock()
	return nil
}

func (f *fakeProvider) OnSessionChange(func(*identity.Session)) error { return nil }

// fakeStore is an in-memory store for the single test user.
type fakeStore struct {
	mu sync.Mutex

	recs    []api.Record
	nextID  int
	created []api.RecordFields
	deleted []string
	profile *api.Profile
	upserts []api.UpsertProfileRequest

	listErr    error
	createErr  error
	deleteErr  error
	profileErr error
	upsertErr  error
}

func (f *fakeStore) ListRecords(context.Context) ([]api.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.recs), nil
}

func (f *fakeStore) CreateRecord(_ context.Context, fields api.RecordFields) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := "new-" + strconv.Itoa(f.nextID)
	f.created = append(f.created, fields)
	f.recs = append(f.recs, api.Record{ID: id, OwnerID: testUserID, Fields: fields, CreatedAt: time.Now()})
	return id, nil
}

func (f *fakeStore) DeleteRecord(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	i := slices.IndexFunc(f.recs, func(r api.Record) bool { return r.ID == id })
	if i < 0 {
		return client.ErrNotFound
	}
	f.recs = slices.Delete(f.recs, i, i+1)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) GetProfile(context.Context) (*api.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile == nil {
		return nil, client.ErrNotFound
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeStore) UpsertProfile(_ context.Context, p api.UpsertProfileRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, p)
	return nil
}

type fakeLocal struct {
	cleared int
	err     error
}

func (f *fakeLocal) ClearLocalData(context.Context) error {
	f.cleared++
	return f.err
}

type testEnv struct {
	app      *App
	manager  *session.Manager
	provider *fakeProvider
	store    *fakeStore
	local    *fakeLocal
	notes    *notify.Recorder
	out      *bytes.Buffer

	skipStart bool
}

type envOption func(*testEnv)

// signedIn restores a session for ann@x.com when the manager starts.
func signedIn(e *testEnv) {
	e.provider.restore = &identity.Session{User: identity.User{ID: testUserID, Email: "ann@x.com"}}
}

// notStarted leaves the manager in the Unknown state.
func notStarted(e *testEnv) { e.skipStart = true }

func newTestEnv(t *testing.T, input string, opts ...envOption) *testEnv {
	t.Helper()
	stubTerminal(t, false, nil, nil)

	e := &testEnv{
		provider: &fakeProvider{},
		store:    &fakeStore{},
		local:    &fakeLocal{},
		notes:    &notify.Recorder{},
		out:      &bytes.Buffer{},
	}
	for _, o := range opts {
		o(e)
	}

	e.manager = session.NewManager(e.provider, e.notes, logging.Nop())
	if !e.skipStart {
		require.NoError(t, e.manager.Start(context.Background()))
	}

	rc := records.New(e.store, e.manager.Handle(), e.notes, logging.Nop())
	e.app = NewApp(Deps{
		Session:   e.manager,
		LocalData: e.local,
		Records:   rc,
		Notifier:  e.notes,
		Log:       logging.Nop(),
		In:        strings.NewReader(input),
		Out:       e.out,
	})
	return e
}

func (e *testEnv) successes() []string {
	var out []string
	for _, n := range e.notes.All() {
		if n.Kind == notify.KindSuccess {
			out = append(out, n.Message)
		}
	}
	return out
}

func (e *testEnv) status() session.Status {
	return e.manager.State().Status
}

func apiRecord(id, title, subject, student string, at time.Time) api.Record {
	return api.Record{
		ID:      id,
		OwnerID: testUserID,
		Fields: api.RecordFields{
			StudentName:     student,
			Subject:         subject,
			ExperimentTitle: title,
		},
		CreatedAt: at,
	}
}
