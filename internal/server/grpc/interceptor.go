package grpc

import (
	"context"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const identityKey ctxKey = "identity"

// publicMethods are served without an access token.
var publicMethods = map[string]bool{
	rpc.FullMethod(rpc.MethodPing):                 true,
	rpc.FullMethod(rpc.MethodSignUp):               true,
	rpc.FullMethod(rpc.MethodSignIn):               true,
	rpc.FullMethod(rpc.MethodRefreshToken):         true,
	rpc.FullMethod(rpc.MethodSignOut):              true,
	rpc.FullMethod(rpc.MethodVerifyEmail):          true,
	rpc.FullMethod(rpc.MethodConfirmPasswordReset): true,
}

func withIdentity(ctx context.Context, id *account.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// identityFromContext returns the caller set by the interceptors, or nil.
func identityFromContext(ctx context.Context) *account.Identity {
	id, _ := ctx.Value(identityKey).(*account.Identity)
	return id
}

func accessTokenFromContext(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *GRPCServer) authenticate(ctx context.Context) (context.Context, error) {
	accessToken := accessTokenFromContext(ctx)
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	id, err := s.identity.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return withIdentity(ctx, id), nil
}

// checkSession ends a stream whose session was revoked or whose user was
// deleted after the stream opened.
func (s *GRPCServer) checkSession(ctx context.Context) error {
	if err := s.identity.CheckSession(ctx, accessTokenFromContext(ctx)); err != nil {
		return s.toStatus(ctx, err)
	}
	return nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	ctx, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

// authedStream overrides the stream context with the authenticated one.
type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (a *authedStream) Context() context.Context { return a.ctx }

func (s *GRPCServer) streamAccessTokenInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if publicMethods[info.FullMethod] {
		return handler(srv, ss)
	}

	ctx, err := s.authenticate(ss.Context())
	if err != nil {
		return err
	}
	return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
}
