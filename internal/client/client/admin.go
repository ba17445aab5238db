package client

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/plantshelf/internal/adminoracle"
	"github.com/dmitrijs2005/plantshelf/internal/rpc"
)

func (c *GRPCClient) IsAdmin(ctx context.Context) (bool, error) {
	resp, err := c.api.IsAdmin(ctx, &rpc.IsAdminRequest{})
	if err != nil {
		return false, mapError(err)
	}
	return resp.IsAdmin, nil
}

// AdminSource returns the allowlist as the server reports it for the
// signed-in caller.
func (c *GRPCClient) AdminSource() adminoracle.Source {
	return &adminSource{c: c}
}

// adminSource answers for the caller's own entry only; the email passed by
// the observer is always the caller's.
type adminSource struct {
	c *GRPCClient
}

func (s *adminSource) Watch(ctx context.Context, _ string) (<-chan adminoracle.Update, error) {
	stream, err := s.c.api.WatchIsAdmin(ctx, &rpc.WatchIsAdminRequest{})
	if err != nil {
		return nil, mapError(err)
	}

	out := make(chan adminoracle.Update)
	go func() {
		defer close(out)
		for {
			st, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return
				}
				select {
				case out <- adminoracle.Update{Err: mapError(err)}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case out <- adminoracle.Update{Exists: st.IsAdmin}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *adminSource) Exists(ctx context.Context, _ string) (bool, error) {
	return s.c.IsAdmin(ctx)
}

func (c *GRPCClient) DeleteUserByEmail(ctx context.Context, email string) (*rpc.AdminResult, error) {
	resp, err := c.api.DeleteUserByEmail(ctx, &rpc.AdminEmailRequest{Email: email})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (c *GRPCClient) RevokeSessionsByEmail(ctx context.Context, email string) (*rpc.AdminResult, error) {
	resp, err := c.api.RevokeSessionsByEmail(ctx, &rpc.AdminEmailRequest{Email: email})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (c *GRPCClient) SendPasswordReset(ctx context.Context, email string) (*rpc.AdminResult, error) {
	resp, err := c.api.SendPasswordReset(ctx, &rpc.AdminEmailRequest{Email: email})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}
