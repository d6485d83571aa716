package cli

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmitrijs2005/labscribe/internal/analytics"
	"github.com/dmitrijs2005/labscribe/internal/client/config"
	"github.com/dmitrijs2005/labscribe/internal/client/identity"
	"github.com/dmitrijs2005/labscribe/internal/client/records"
	"github.com/dmitrijs2005/labscribe/internal/client/session"
	"github.com/dmitrijs2005/labscribe/internal/logging"
	srvconfig "github.com/dmitrijs2005/labscribe/internal/server/config"
	gs "github.com/dmitrijs2005/labscribe/internal/server/grpc"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/labscribe/internal/server/services"
)

// startServer runs a real labscribe server over the in-memory backend and
// returns a dial option reaching it.
func startServer(t *testing.T) grpc.DialOption {
	t.Helper()
	cfg := &srvconfig.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost

	m := repomanager.NewMemoryRepositoryManager()
	srv := gs.NewGRPCServer("", logging.Nop(),
		services.NewUserService(m, cfg),
		services.NewRecordService(m),
		services.NewProfileService(m),
		nil, cfg.SecretKey)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, lis)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) })
}

func bootstrapClient(t *testing.T, dial grpc.DialOption, input string) (*Runtime, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerEndpointAddr = "passthrough:///bufnet"
	cfg.DatabasePath = filepath.Join(t.TempDir(), "nested", "local.db")
	cfg.RestoreTimeout = 2 * time.Second

	out := &bytes.Buffer{}
	rt, err := Bootstrap(context.Background(), cfg, logging.Nop(), strings.NewReader(input), out, dial)
	require.NoError(t, err)
	return rt, out
}

func TestEndToEnd_SignUpCreateListAnalytics(t *testing.T) {
	ctx := context.Background()
	rt, _ := bootstrapClient(t, startServer(t), "")
	t.Cleanup(rt.Close)

	require.NoError(t, rt.manager.Start(ctx))
	require.Equal(t, session.Unauthenticated, rt.manager.State().Status)

	require.NoError(t, rt.manager.SignUp(ctx, "a@x.com", "secret1", "Ann"))
	user, ok := rt.manager.State().User()
	require.True(t, ok)
	assert.Equal(t, "a@x.com", user.Email)

	rc := rt.App.records
	id, err := rc.CreateRecord(ctx, user.ID, records.Fields{
		StudentName: "Ann", RollNumber: "7", Subject: "Physics",
		ExperimentTitle: "Pendulum", ExperimentAim: "Measure g", Theory: "SHM",
		Tools: "String", Code: "n/a", Output: "9.8", Conclusion: "ok",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	list, err := rc.ListRecords(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	entries := make([]analytics.Entry, 0, len(list))
	for _, r := range list {
		entries = append(entries, analytics.Entry{Subject: r.Fields.Subject, CreatedAt: r.CreatedAt})
	}
	snap := analytics.Compute(entries, time.Now())
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, 1, snap.UniqueSubjects)
	assert.Equal(t, []analytics.SubjectCount{{Subject: "Physics", Count: 1}}, snap.Breakdown())

	p, err := rc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.FullName)
}

func TestEndToEnd_WrongPasswordStaysSignedOut(t *testing.T) {
	ctx := context.Background()
	dial := startServer(t)

	first, _ := bootstrapClient(t, dial, "")
	t.Cleanup(first.Close)
	require.NoError(t, first.manager.Start(ctx))
	require.NoError(t, first.manager.SignUp(ctx, "a@x.com", "secret1", "Ann"))

	second, _ := bootstrapClient(t, dial, "")
	t.Cleanup(second.Close)
	require.NoError(t, second.manager.Start(ctx))

	err := second.manager.SignIn(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	assert.Equal(t, session.Unauthenticated, second.manager.State().Status)
}

func TestEndToEnd_CrossOwnerDeleteIsNotFound(t *testing.T) {
	ctx := context.Background()
	rt, _ := bootstrapClient(t, startServer(t), "")
	t.Cleanup(rt.Close)
	require.NoError(t, rt.manager.Start(ctx))

	require.NoError(t, rt.manager.SignUp(ctx, "a@x.com", "secret1", "Ann"))
	ann, _ := rt.manager.State().User()
	id, err := rt.App.records.CreateRecord(ctx, ann.ID, records.Fields{
		StudentName: "Ann", RollNumber: "7", Subject: "Chemistry",
		ExperimentTitle: "Titration", ExperimentAim: "aim", Theory: "acid",
		Tools: "burette", Code: "n/a", Output: "pH 7", Conclusion: "ok",
	})
	require.NoError(t, err)

	require.NoError(t, rt.manager.SignOut(ctx))
	require.NoError(t, rt.manager.SignUp(ctx, "b@x.com", "secret2", "Bob"))

	err = rt.App.records.DeleteRecord(ctx, id)
	assert.ErrorIs(t, err, records.ErrNotFound)

	bob, _ := rt.manager.State().User()
	list, err := rt.App.records.ListRecords(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, rt.manager.SignOut(ctx))
	require.NoError(t, rt.manager.SignIn(ctx, "a@x.com", "secret1"))
	list, err = rt.App.records.ListRecords(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID, "owner keeps the record")
}

func TestEndToEnd_SignOutEndsSessionAcrossRestart(t *testing.T) {
	ctx := context.Background()
	dial := startServer(t)
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerEndpointAddr = "passthrough:///bufnet"
	cfg.DatabasePath = filepath.Join(t.TempDir(), "local.db")

	first, err := Bootstrap(ctx, cfg, logging.Nop(), strings.NewReader(""), &bytes.Buffer{}, dial)
	require.NoError(t, err)
	require.NoError(t, first.manager.Start(ctx))
	require.NoError(t, first.manager.SignUp(ctx, "a@x.com", "secret1", "Ann"))
	require.NoError(t, first.manager.SignOut(ctx))
	first.Close()

	second, err := Bootstrap(ctx, cfg, logging.Nop(), strings.NewReader(""), &bytes.Buffer{}, dial)
	require.NoError(t, err)
	t.Cleanup(second.Close)
	require.NoError(t, second.manager.Start(ctx))
	assert.Equal(t, session.Unauthenticated, second.manager.State().Status)
}

func TestEndToEnd_REPLScript(t *testing.T) {
	stubTerminal(t, false, nil, nil)
	script := strings.Join([]string{
		"signup",
		"Ann", "a@x.com", "secret1", "secret1",
		"list",
		"exit",
	}, "\n") + "\n"

	rt, out := bootstrapClient(t, startServer(t), script)
	rt.Run(context.Background())

	text := out.String()
	assert.Contains(t, text, "Account created successfully!")
	assert.Contains(t, text, "No lab records yet. Type 'new' to create one.")
	assert.Contains(t, text, "Bye!")
}
