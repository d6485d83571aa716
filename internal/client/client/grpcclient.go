package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/labscribe/internal/api"
	"github.com/dmitrijs2005/labscribe/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const DefaultRequestTimeout = 10 * time.Second

// Tokens is the credential pair the client currently holds.
type Tokens struct {
	UserID          string
	Email           string
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

func tokensFrom(r *api.TokenResponse) Tokens {
	return Tokens{
		UserID:          r.UserID,
		Email:           r.Email,
		AccessToken:     r.AccessToken,
		RefreshToken:    r.RefreshToken,
		AccessExpiresAt: r.AccessExpiresAt,
	}
}

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	dialOpts    []grpc.DialOption

	conn   *grpc.ClientConn
	client api.Client

	mu        sync.Mutex
	tokens    Tokens
	gen       uint64
	onRefresh func(*Tokens)
}

type Option func(*GRPCClient)

// WithRequestTimeout bounds every call made through the client.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *GRPCClient) { c.timeout = d }
}

// WithDialOptions appends extra dial options, e.g. a bufconn dialer in tests.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) { c.dialOpts = append(c.dialOpts, opts...) }
}

func NewLabScribeClient(endpointURL string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: DefaultRequestTimeout}
	for _, o := range opts {
		o(c)
	}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, s.dialOpts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// OnTokensRefreshed registers fn to be called after the interceptor rotates
// the token pair, or with nil when the refresh token was rejected and the
// client dropped its credentials.
func (s *GRPCClient) OnTokensRefreshed(fn func(*Tokens)) {
	s.mu.Lock()
	s.onRefresh = fn
	s.mu.Unlock()
}

func (s *GRPCClient) Tokens() Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// SetTokens replaces the held pair. Every SetTokens and ClearTokens starts a
// new generation, which invalidates refreshes begun under the previous one.
func (s *GRPCClient) SetTokens(t Tokens) {
	s.mu.Lock()
	s.tokens = t
	s.gen++
	s.mu.Unlock()
}

func (s *GRPCClient) ClearTokens() {
	s.SetTokens(Tokens{})
}

func (s *GRPCClient) snapshot() (Tokens, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens, s.gen
}

// swapIf stores t only if no one replaced the tokens since gen was taken.
func (s *GRPCClient) swapIf(gen uint64, t Tokens) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.tokens = t
	s.gen++
	return true
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, public := api.PublicMethods[method]; public {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	current, gen := s.snapshot()
	err := invoker(withAccessToken(ctx, current.AccessToken), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) || current.RefreshToken == "" {
		return err
	}

	resp, rerr := s.client.Refresh(ctx, &api.RefreshRequest{RefreshToken: current.RefreshToken})
	if rerr != nil {
		if status.Code(rerr) == codes.Unauthenticated && s.swapIf(gen, Tokens{}) {
			s.notifyRefresh(nil)
		}
		return err
	}

	fresh := tokensFrom(resp)
	if !s.swapIf(gen, fresh) {
		// signed out or signed in again while refreshing
		s.revokeQuietly(ctx, fresh.RefreshToken)
		return err
	}
	s.notifyRefresh(&fresh)

	return invoker(withAccessToken(ctx, fresh.AccessToken), method, req, reply, cc, opts...)
}

func (s *GRPCClient) revokeQuietly(ctx context.Context, refreshToken string) {
	_ = s.Revoke(context.WithoutCancel(ctx), refreshToken)
}

func (s *GRPCClient) notifyRefresh(t *Tokens) {
	s.mu.Lock()
	fn := s.onRefresh
	s.mu.Unlock()
	if fn != nil {
		fn(t)
	}
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) call(ctx context.Context, call func(context.Context) (*api.TokenResponse, error)) (Tokens, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := call(ctx)
	if err != nil {
		return Tokens{}, s.mapError(err)
	}
	return tokensFrom(resp), nil
}

func (s *GRPCClient) authenticate(ctx context.Context, call func(context.Context) (*api.TokenResponse, error)) (Tokens, error) {
	t, err := s.call(ctx, call)
	if err != nil {
		return Tokens{}, err
	}
	s.SetTokens(t)
	return t, nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password, fullName string) (Tokens, error) {
	return s.authenticate(ctx, func(ctx context.Context) (*api.TokenResponse, error) {
		return s.client.SignUp(ctx, &api.SignUpRequest{Email: email, Password: password, FullName: fullName})
	})
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (Tokens, error) {
	return s.authenticate(ctx, func(ctx context.Context) (*api.TokenResponse, error) {
		return s.client.SignIn(ctx, &api.SignInRequest{Email: email, Password: password})
	})
}

// Refresh exchanges refreshToken for a new pair. The pair is returned, not
// adopted; the caller decides whether it still wants it via SetTokens.
func (s *GRPCClient) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	return s.call(ctx, func(ctx context.Context) (*api.TokenResponse, error) {
		return s.client.Refresh(ctx, &api.RefreshRequest{RefreshToken: refreshToken})
	})
}

// SignOut revokes the held refresh token on the server and always drops the
// local pair. Calling it without tokens is a no-op.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	current := s.Tokens()
	s.ClearTokens()
	return s.Revoke(ctx, current.RefreshToken)
}

// Revoke invalidates refreshToken on the server without touching the held
// pair. An empty token is a no-op.
func (s *GRPCClient) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.SignOut(ctx, &api.SignOutRequest{RefreshToken: refreshToken}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ListRecords(ctx context.Context) ([]api.Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ListRecords(ctx, &api.ListRecordsRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Records, nil
}

func (s *GRPCClient) CreateRecord(ctx context.Context, fields api.RecordFields) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.CreateRecord(ctx, &api.CreateRecordRequest{Fields: fields})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.ID, nil
}

func (s *GRPCClient) DeleteRecord(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.DeleteRecord(ctx, &api.DeleteRecordRequest{ID: id}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) GetProfile(ctx context.Context) (*api.Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetProfile(ctx, &api.GetProfileRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) UpsertProfile(ctx context.Context, p api.UpsertProfileRequest) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.UpsertProfile(ctx, &p); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUnavailable
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		if st.Message() == common.ErrWeakPassword.Error() {
			return ErrWeakPassword
		}
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
