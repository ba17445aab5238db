// Package models defines server-side records persisted in the database.
package models

import (
	"time"

	"github.com/dmitrijs2005/plantshelf/internal/account"
)

type User struct {
	ID            string
	Email         string
	DisplayName   string
	PasswordHash  []byte
	EmailVerified bool
	// TokensValidAfter invalidates every access token issued before it.
	TokensValidAfter time.Time
	CreatedAt        time.Time
}

func (u *User) Identity() account.Identity {
	return account.Identity{
		UserID:        u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		EmailVerified: u.EmailVerified,
	}
}
