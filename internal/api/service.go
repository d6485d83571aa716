package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "labscribe.v1.LabScribeService"

const (
	SignUpMethod        = "/" + ServiceName + "/SignUp"
	SignInMethod        = "/" + ServiceName + "/SignIn"
	RefreshMethod       = "/" + ServiceName + "/Refresh"
	SignOutMethod       = "/" + ServiceName + "/SignOut"
	ListRecordsMethod   = "/" + ServiceName + "/ListRecords"
	CreateRecordMethod  = "/" + ServiceName + "/CreateRecord"
	DeleteRecordMethod  = "/" + ServiceName + "/DeleteRecord"
	GetProfileMethod    = "/" + ServiceName + "/GetProfile"
	UpsertProfileMethod = "/" + ServiceName + "/UpsertProfile"
)

// PublicMethods can be called without an access token.
var PublicMethods = map[string]struct{}{
	SignUpMethod:  {},
	SignInMethod:  {},
	RefreshMethod: {},
	SignOutMethod: {},
}

// Server is implemented by the labscribe server.
type Server interface {
	SignUp(context.Context, *SignUpRequest) (*TokenResponse, error)
	SignIn(context.Context, *SignInRequest) (*TokenResponse, error)
	Refresh(context.Context, *RefreshRequest) (*TokenResponse, error)
	SignOut(context.Context, *SignOutRequest) (*Empty, error)
	ListRecords(context.Context, *ListRecordsRequest) (*ListRecordsResponse, error)
	CreateRecord(context.Context, *CreateRecordRequest) (*CreateRecordResponse, error)
	DeleteRecord(context.Context, *DeleteRecordRequest) (*Empty, error)
	GetProfile(context.Context, *GetProfileRequest) (*Profile, error)
	UpsertProfile(context.Context, *UpsertProfileRequest) (*Empty, error)
}

// UnimplementedServer can be embedded to get Unimplemented errors for
// methods a server does not override.
type UnimplementedServer struct{}

func (UnimplementedServer) SignUp(context.Context, *SignUpRequest) (*TokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
}
func (UnimplementedServer) SignIn(context.Context, *SignInRequest) (*TokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
}
func (UnimplementedServer) Refresh(context.Context, *RefreshRequest) (*TokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Refresh not implemented")
}
func (UnimplementedServer) SignOut(context.Context, *SignOutRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
}
func (UnimplementedServer) ListRecords(context.Context, *ListRecordsRequest) (*ListRecordsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListRecords not implemented")
}
func (UnimplementedServer) CreateRecord(context.Context, *CreateRecordRequest) (*CreateRecordResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateRecord not implemented")
}
func (UnimplementedServer) DeleteRecord(context.Context, *DeleteRecordRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteRecord not implemented")
}
func (UnimplementedServer) GetProfile(context.Context, *GetProfileRequest) (*Profile, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}
func (UnimplementedServer) UpsertProfile(context.Context, *UpsertProfileRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertProfile not implemented")
}

func handler[Req, Resp any](fullMethod string, call func(Server, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(Server), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		h := func(ctx context.Context, req any) (any, error) {
			return call(srv.(Server), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, h)
	}
}

// ServiceDesc describes the labscribe service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: handler(SignUpMethod, Server.SignUp)},
		{MethodName: "SignIn", Handler: handler(SignInMethod, Server.SignIn)},
		{MethodName: "Refresh", Handler: handler(RefreshMethod, Server.Refresh)},
		{MethodName: "SignOut", Handler: handler(SignOutMethod, Server.SignOut)},
		{MethodName: "ListRecords", Handler: handler(ListRecordsMethod, Server.ListRecords)},
		{MethodName: "CreateRecord", Handler: handler(CreateRecordMethod, Server.CreateRecord)},
		{MethodName: "DeleteRecord", Handler: handler(DeleteRecordMethod, Server.DeleteRecord)},
		{MethodName: "GetProfile", Handler: handler(GetProfileMethod, Server.GetProfile)},
		{MethodName: "UpsertProfile", Handler: handler(UpsertProfileMethod, Server.UpsertProfile)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "labscribe/v1/service",
}

func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client is the client side of the labscribe service.
type Client interface {
	SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error)
	ListRecords(ctx context.Context, in *ListRecordsRequest, opts ...grpc.CallOption) (*ListRecordsResponse, error)
	CreateRecord(ctx context.Context, in *CreateRecordRequest, opts ...grpc.CallOption) (*CreateRecordResponse, error)
	DeleteRecord(ctx context.Context, in *DeleteRecordRequest, opts ...grpc.CallOption) (*Empty, error)
	GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*Profile, error)
	UpsertProfile(ctx context.Context, in *UpsertProfileRequest, opts ...grpc.CallOption) (*Empty, error)
}

type client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) Client {
	return &client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, SignUpMethod, in, opts)
}

func (c *client) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, SignInMethod, in, opts)
}

func (c *client) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, RefreshMethod, in, opts)
}

func (c *client) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, SignOutMethod, in, opts)
}

func (c *client) ListRecords(ctx context.Context, in *ListRecordsRequest, opts ...grpc.CallOption) (*ListRecordsResponse, error) {
	return invoke[ListRecordsResponse](ctx, c.cc, ListRecordsMethod, in, opts)
}

func (c *client) CreateRecord(ctx context.Context, in *CreateRecordRequest, opts ...grpc.CallOption) (*CreateRecordResponse, error) {
	return invoke[CreateRecordResponse](ctx, c.cc, CreateRecordMethod, in, opts)
}

func (c *client) DeleteRecord(ctx context.Context, in *DeleteRecordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, DeleteRecordMethod, in, opts)
}

func (c *client) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*Profile, error) {
	return invoke[Profile](ctx, c.cc, GetProfileMethod, in, opts)
}

func (c *client) UpsertProfile(ctx context.Context, in *UpsertProfileRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, UpsertProfileMethod, in, opts)
}
