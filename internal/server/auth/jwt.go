// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/common"
)

// Claims carries the caller identity inside a signed access token.
type Claims struct {
	jwt.RegisteredClaims
	UserID        string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Identity returns the identity encoded in the claims. DisplayName is not
// carried by tokens.
func (c *Claims) Identity() account.Identity {
	return account.Identity{UserID: c.UserID, Email: c.Email, EmailVerified: c.EmailVerified}
}

// now is a seam for tests.
var now = time.Now

func GenerateToken(id account.Identity, secretKey []byte, validityDuration time.Duration) (string, error) {
	issued := now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(validityDuration)),
		},
		UserID:        id.UserID,
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies the signature and expiry. Expired tokens yield
// common.ErrTokenExpired; anything else wrong yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	return parse(tokenString, secretKey, jwt.WithTimeFunc(now))
}

// ParseIssuedToken verifies only the signature, for tokens whose expiry was
// already checked when they were first accepted.
func ParseIssuedToken(tokenString string, secretKey []byte) (*Claims, error) {
	return parse(tokenString, secretKey, jwt.WithoutClaimsValidation())
}

func parse(tokenString string, secretKey []byte, opts ...jwt.ParserOption) (*Claims, error) {
	claims := &Claims{}

	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// CheckNotRevoked rejects tokens issued before validAfter. Token timestamps
// have second precision, so validAfter is compared at the same precision.
func CheckNotRevoked(claims *Claims, validAfter time.Time) error {
	if claims.IssuedAt == nil {
		return common.ErrInvalidToken
	}
	if claims.IssuedAt.Time.Before(validAfter.Truncate(time.Second)) {
		return common.ErrTokenRevoked
	}
	return nil
}

// RevocationTime returns the tokens_valid_after value for a revocation at
// t: the next whole second, so tokens minted earlier within the same second
// are rejected too.
func RevocationTime(t time.Time) time.Time {
	return t.Truncate(time.Second).Add(time.Second)
}
