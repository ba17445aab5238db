package models

import "time"

type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}

// ActionKind names what a one-time action code is good for.
type ActionKind string

const (
	ActionVerifyEmail   ActionKind = "verify_email"
	ActionPasswordReset ActionKind = "password_reset"
)

// ActionToken is a single-use code sent by email. Only the SHA-256 of the
// code is stored.
type ActionToken struct {
	Hash    string
	UserID  string
	Kind    ActionKind
	Expires time.Time
}
