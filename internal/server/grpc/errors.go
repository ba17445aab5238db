package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/server/notify"
	"github.com/dmitrijs2005/plantshelf/internal/server/services"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// codeFor classifies a service error. Unknown errors are internal.
func codeFor(err error) codes.Code {
	var v *shelf.ValidationError
	switch {
	case errors.As(err, &v):
		return codes.InvalidArgument
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenRevoked),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return codes.Unauthenticated
	case errors.Is(err, common.ErrorPermissionDenied):
		return codes.PermissionDenied
	case errors.Is(err, common.ErrorInvalidArgument),
		errors.Is(err, common.ErrActionCodeInvalid):
		return codes.InvalidArgument
	case errors.Is(err, common.ErrorNotFound):
		return codes.NotFound
	case errors.Is(err, common.ErrDuplicateName),
		errors.Is(err, common.ErrEmailTaken):
		return codes.AlreadyExists
	case errors.Is(err, common.ErrRateLimited):
		return codes.ResourceExhausted
	case errors.Is(err, notify.ErrUnavailable),
		errors.Is(err, services.ErrSubscriptionClosed):
		return codes.Unavailable
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	return codes.Internal
}

// toStatus converts a service error into a gRPC status. Internal errors are
// logged and their text is not sent to the caller.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	code := codeFor(err)
	if code == codes.Internal {
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
