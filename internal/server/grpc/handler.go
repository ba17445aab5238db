package grpc

import (
	"context"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

// caller returns the authenticated identity of the request.
func caller(ctx context.Context) (*account.Identity, error) {
	id := identityFromContext(ctx)
	if id == nil {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	return id, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *rpc.SignUpRequest) (*rpc.AuthResponse, error) {
	pair, id, err := s.identity.SignUp(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", id.UserID)
	return &rpc.AuthResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, User: *id}, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *rpc.SignInRequest) (*rpc.AuthResponse, error) {
	pair, id, err := s.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.AuthResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, User: *id}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.RefreshTokenResponse, error) {
	pair, err := s.identity.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.RefreshTokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *rpc.SignOutRequest) (*rpc.Empty, error) {
	if err := s.identity.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) SendVerificationEmail(ctx context.Context, req *rpc.SendVerificationEmailRequest) (*rpc.Empty, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.identity.SendVerificationEmail(ctx, id.UserID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) VerifyEmail(ctx context.Context, req *rpc.VerifyEmailRequest) (*rpc.UserResponse, error) {
	id, err := s.identity.VerifyEmail(ctx, req.Code)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.UserResponse{User: *id}, nil
}

// GetCurrentUser returns the caller as stored now, so a verification done
// elsewhere shows up without signing in again.
func (s *GRPCServer) GetCurrentUser(ctx context.Context, req *rpc.GetCurrentUserRequest) (*rpc.UserResponse, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.identity.CurrentUser(ctx, id.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.UserResponse{User: *user}, nil
}

func (s *GRPCServer) ConfirmPasswordReset(ctx context.Context, req *rpc.ConfirmPasswordResetRequest) (*rpc.Empty, error) {
	if err := s.identity.ConfirmPasswordReset(ctx, req.Code, req.NewPassword); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}
