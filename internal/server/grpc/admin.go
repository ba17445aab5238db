package grpc

import (
	"context"

	"github.com/dmitrijs2005/plantshelf/internal/rpc"
	"github.com/dmitrijs2005/plantshelf/internal/server/services"
	"google.golang.org/grpc"
)

func (s *GRPCServer) IsAdmin(ctx context.Context, req *rpc.IsAdminRequest) (*rpc.AdminStatus, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := s.admin.IsAdmin(ctx, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.AdminStatus{IsAdmin: ok}, nil
}

// WatchIsAdmin streams settled allowlist states. The stream ends with the
// caller or when the server-side feed is lost; clients then read IsAdmin
// once.
func (s *GRPCServer) WatchIsAdmin(req *rpc.WatchIsAdminRequest, stream grpc.ServerStreamingServer[rpc.AdminStatus]) error {
	ctx := stream.Context()
	id, err := caller(ctx)
	if err != nil {
		return err
	}

	for st := range s.admin.WatchIsAdmin(ctx, id) {
		if st.Loading {
			continue
		}
		if st.Err != nil {
			return s.toStatus(ctx, st.Err)
		}
		if err := s.checkSession(ctx); err != nil {
			return err
		}
		if err := stream.Send(&rpc.AdminStatus{IsAdmin: st.IsAdmin}); err != nil {
			return err
		}
	}
	return nil
}

func adminResult(r *services.AdminResult) *rpc.AdminResult {
	return &rpc.AdminResult{OK: r.OK, Message: r.Message, Link: r.Link}
}

func (s *GRPCServer) DeleteUserByEmail(ctx context.Context, req *rpc.AdminEmailRequest) (*rpc.AdminResult, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.admin.DeleteUserByEmail(ctx, id, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return adminResult(res), nil
}

func (s *GRPCServer) RevokeSessionsByEmail(ctx context.Context, req *rpc.AdminEmailRequest) (*rpc.AdminResult, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.admin.RevokeSessionsByEmail(ctx, id, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return adminResult(res), nil
}

func (s *GRPCServer) SendPasswordReset(ctx context.Context, req *rpc.AdminEmailRequest) (*rpc.AdminResult, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.admin.SendPasswordReset(ctx, id, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return adminResult(res), nil
}
