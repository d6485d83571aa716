package api

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type echoServer struct {
	UnimplementedServer
	gotCreate *CreateRecordRequest
}

func (s *echoServer) SignIn(_ context.Context, in *SignInRequest) (*TokenResponse, error) {
	return &TokenResponse{UserID: "u-1", Email: in.Email, AccessToken: "at", RefreshToken: "rt"}, nil
}

func (s *echoServer) CreateRecord(_ context.Context, in *CreateRecordRequest) (*CreateRecordResponse, error) {
	s.gotCreate = in
	return &CreateRecordResponse{ID: "rec-1"}, nil
}

func dial(t *testing.T, srv Server, opts ...grpc.ServerOption) Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestCodec_RoundTrip(t *testing.T) {
	c := Codec{}
	require.Equal(t, "json", c.Name())

	in := Record{ID: "r", OwnerID: "o", Fields: RecordFields{Subject: "Physics"}, CreatedAt: time.Unix(10, 0).UTC()}
	b, err := c.Marshal(&in)
	require.NoError(t, err)
	require.Contains(t, string(b), `"subject":"Physics"`)

	var out Record
	require.NoError(t, c.Unmarshal(b, &out))
	require.Equal(t, in, out)
}

func TestCodec_UnmarshalEmptyAndInvalid(t *testing.T) {
	var e Empty
	require.NoError(t, Codec{}.Unmarshal(nil, &e))
	require.Error(t, Codec{}.Unmarshal([]byte("{"), &e))
}

func TestService_CallsOverJSONCodec(t *testing.T) {
	srv := &echoServer{}
	cl := dial(t, srv)
	ctx := context.Background()

	resp, err := cl.SignIn(ctx, &SignInRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "u-1", resp.UserID)
	require.Equal(t, "a@x.com", resp.Email)

	cr, err := cl.CreateRecord(ctx, &CreateRecordRequest{Fields: RecordFields{Subject: "Chemistry"}})
	require.NoError(t, err)
	require.Equal(t, "rec-1", cr.ID)
	require.Equal(t, "Chemistry", srv.gotCreate.Fields.Subject)
}

func TestService_UnimplementedMethods(t *testing.T) {
	cl := dial(t, &echoServer{})

	_, err := cl.ListRecords(context.Background(), &ListRecordsRequest{})
	require.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestService_InterceptorSeesFullMethod(t *testing.T) {
	var seen []string
	ic := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		seen = append(seen, info.FullMethod)
		return h(ctx, req)
	}
	cl := dial(t, &echoServer{}, grpc.UnaryInterceptor(ic))

	_, err := cl.SignIn(context.Background(), &SignInRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{SignInMethod}, seen)
}

func TestPublicMethods(t *testing.T) {
	_, ok := PublicMethods[SignInMethod]
	require.True(t, ok)
	_, ok = PublicMethods[ListRecordsMethod]
	require.False(t, ok)
}
