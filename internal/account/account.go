// Package account has the sign-up input rules shared by the CLI and the
// server, and the Identity value the admin gate reasons about.
package account

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
)

const (
	DisplayNameMinLen = 2
	DisplayNameMaxLen = 40
	PasswordMinLen    = 8
	PasswordMaxLen    = 64

	// PasswordMaxBytes is the most bcrypt will hash.
	PasswordMaxBytes = 72
)

// Identity is the signed-in user as clients see it.
type Identity struct {
	UserID        string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

// ValidateSignUp checks the sign-up form. Every problem is reported.
func ValidateSignUp(email, displayName, password string) error {
	v := &shelf.ValidationError{}

	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil || common.NormalizeEmail(email) == "" {
		v.Fields = append(v.Fields, shelf.FieldError{Field: "email", Message: "A valid email is required."})
	}

	n := utf8.RuneCountInString(strings.TrimSpace(displayName))
	if n < DisplayNameMinLen || n > DisplayNameMaxLen {
		v.Fields = append(v.Fields, shelf.FieldError{Field: "displayName", Message: "Name must be 2–40 characters."})
	}

	if err := ValidatePassword(password); err != nil {
		v.Fields = append(v.Fields, err.(*shelf.ValidationError).Fields...)
	}

	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

// ValidatePassword requires 8–64 characters with at least one letter and
// one digit, and no more than PasswordMaxBytes bytes of UTF-8.
func ValidatePassword(password string) error {
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLen || n > PasswordMaxLen || !letter || !digit {
		return &shelf.ValidationError{Fields: []shelf.FieldError{{
			Field:   "password",
			Message: "Password must be 8–64 chars and include at least 1 letter and 1 number.",
		}}}
	}
	if len(password) > PasswordMaxBytes {
		return &shelf.ValidationError{Fields: []shelf.FieldError{{
			Field:   "password",
			Message: "Password is too long. Use fewer non-Latin characters.",
		}}}
	}
	return nil
}
