package grpc

import (
	"context"

	"github.com/vibast-solutions/ms-go-jobboard/app/types"

	gogrpc "google.golang.org/grpc"
)

const ServiceName = "jobboard.auth.v1.AuthService"

type AuthServiceServer interface {
	Signup(ctx context.Context, req *types.SignupRequest) (*types.SessionReply, error)
	Login(ctx context.Context, req *types.LoginRequest) (*types.SessionReply, error)
	ForgotPassword(ctx context.Context, req *types.ForgotPasswordRequest) (*types.MessageReply, error)
	ResetPassword(ctx context.Context, req *types.ResetPasswordRequest) (*types.SessionReply, error)
	UpdatePassword(ctx context.Context, req *types.UpdatePasswordRequest) (*types.SessionReply, error)
	ApplyForJob(ctx context.Context, req *types.ApplyForJobRequest) (*types.MessageReply, error)
	ValidateToken(ctx context.Context, req *types.ValidateTokenRequest) (*types.ValidateTokenResponse, error)
}

// protectedMethods lists the full method names that require a session.
var protectedMethods = map[string]bool{
	FullMethod("UpdatePassword"): true,
	FullMethod("ApplyForJob"):    true,
}

func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

var AuthServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{MethodName: "Signup", Handler: unaryHandler("Signup", AuthServiceServer.Signup)},
		{MethodName: "Login", Handler: unaryHandler("Login", AuthServiceServer.Login)},
		{MethodName: "ForgotPassword", Handler: unaryHandler("ForgotPassword", AuthServiceServer.ForgotPassword)},
		{MethodName: "ResetPassword", Handler: unaryHandler("ResetPassword", AuthServiceServer.ResetPassword)},
		{MethodName: "UpdatePassword", Handler: unaryHandler("UpdatePassword", AuthServiceServer.UpdatePassword)},
		{MethodName: "ApplyForJob", Handler: unaryHandler("ApplyForJob", AuthServiceServer.ApplyForJob)},
		{MethodName: "ValidateToken", Handler: unaryHandler("ValidateToken", AuthServiceServer.ValidateToken)},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "jobboard/auth/v1/auth.proto",
}

func RegisterAuthServiceServer(s gogrpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

func unaryHandler[Req, Resp any](method string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) gogrpc.MethodHandler {
	fullMethod := FullMethod(method)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
