// Package common defines shared constants and sentinel errors used across
// client and server layers of PlantShelf. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrDuplicateName = errors.New("a plant with this name already exists")
	ErrEmailTaken    = errors.New("email already registered")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorPermissionDenied = errors.New("permission denied")
	ErrorInvalidArgument  = errors.New("invalid argument")
	ErrRateLimited        = errors.New("too many requests")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrActionCodeInvalid   = errors.New("action code invalid or expired")
)

// MessageError pairs a sentinel kind with a message meant for end users.
type MessageError struct {
	Kind    error
	Message string
}

func (e *MessageError) Error() string { return e.Message }

func (e *MessageError) Unwrap() error { return e.Kind }

// WithMessage returns an error that matches kind with errors.Is and reads
// as msg.
func WithMessage(kind error, msg string) error {
	return &MessageError{Kind: kind, Message: msg}
}
