package client

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrSignedOut   = errors.New("not signed in")
)

// Error is a failed remote call.
type Error struct {
	Code    codes.Code
	Message string
	Kind    error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var kind error
	switch st.Code() {
	case codes.Unauthenticated:
		kind = common.ErrorUnauthorized
		if st.Message() == common.ErrTokenExpired.Error() {
			kind = common.ErrTokenExpired
		}
	case codes.PermissionDenied:
		kind = common.ErrorPermissionDenied
	case codes.InvalidArgument:
		kind = common.ErrorInvalidArgument
	case codes.NotFound:
		kind = common.ErrorNotFound
	case codes.AlreadyExists:
		kind = common.ErrDuplicateName
		if st.Message() == common.ErrEmailTaken.Error() {
			kind = common.ErrEmailTaken
		}
	case codes.ResourceExhausted:
		kind = common.ErrRateLimited
	case codes.Unavailable, codes.DeadlineExceeded:
		kind = ErrUnavailable
	case codes.Canceled:
		kind = context.Canceled
	default:
		kind = common.ErrorInternal
	}
	return &Error{Code: st.Code(), Message: st.Message(), Kind: kind}
}

// Code names the failure class of err for display, using the callable
// protocol's vocabulary.
func Code(err error) string {
	var v *shelf.ValidationError
	if errors.As(err, &v) {
		return "invalid-argument"
	}
	switch {
	case errors.Is(err, ErrSignedOut):
		return "unauthenticated"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	}

	var e *Error
	if !errors.As(err, &e) {
		return kindCode(err)
	}
	switch e.Code {
	case codes.Unauthenticated:
		return "unauthenticated"
	case codes.PermissionDenied:
		return "permission-denied"
	case codes.InvalidArgument:
		return "invalid-argument"
	case codes.NotFound:
		return "not-found"
	case codes.AlreadyExists:
		return "already-exists"
	case codes.ResourceExhausted:
		return "resource-exhausted"
	case codes.Unavailable:
		return "unavailable"
	case codes.DeadlineExceeded:
		return "deadline-exceeded"
	default:
		return "internal"
	}
}

// kindCode classifies local failures by their sentinel.
func kindCode(err error) string {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return "unauthenticated"
	case errors.Is(err, common.ErrorPermissionDenied):
		return "permission-denied"
	case errors.Is(err, common.ErrorInvalidArgument):
		return "invalid-argument"
	case errors.Is(err, common.ErrorNotFound):
		return "not-found"
	case errors.Is(err, common.ErrDuplicateName), errors.Is(err, common.ErrEmailTaken):
		return "already-exists"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	}
	return "unknown"
}
