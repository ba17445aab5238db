// Package services contains server-side business logic: identity and
// sessions, the plant shelf, and the privileged admin procedures.
package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/dbx"
	"github.com/dmitrijs2005/plantshelf/internal/logging"
	"github.com/dmitrijs2005/plantshelf/internal/server/auth"
	"github.com/dmitrijs2005/plantshelf/internal/server/config"
	"github.com/dmitrijs2005/plantshelf/internal/server/models"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// IdentityService handles accounts and sessions: sign-up and sign-in,
// refresh token rotation, email verification, password reset and access
// token authentication.
type IdentityService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	mailer                       Mailer
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	actionTokenValidityDuration  time.Duration
	verifyEmailURL               string
	passwordResetURL             string
	now                          func() time.Time
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, mailer Mailer, logger logging.Logger, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:                           db,
		repomanager:                  m,
		mailer:                       mailer,
		logger:                       logger.With("module", "identity"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		actionTokenValidityDuration:  cfg.ActionTokenValidityDuration,
		verifyEmailURL:               cfg.VerifyEmailURL,
		passwordResetURL:             cfg.PasswordResetURL,
		now:                          time.Now,
	}
}

// SignUp creates the account, signs it in and sends the verification
// email. A failed email does not fail the sign-up.
func (s *IdentityService) SignUp(ctx context.Context, email, password, displayName string) (*TokenPair, *account.Identity, error) {
	if err := account.ValidateSignUp(email, displayName, password); err != nil {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        common.NormalizeEmail(email),
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("error creating user: %w", err)
	}

	pair, err := s.generateTokenPair(ctx, user.Identity(), s.db)
	if err != nil {
		return nil, nil, err
	}

	if err := s.sendVerification(ctx, user); err != nil {
		s.logger.Warn(ctx, "verification email not sent", "user_id", user.ID, "error", err)
	}

	id := user.Identity()
	return pair, &id, nil
}

// SignIn checks the password. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*TokenPair, *account.Identity, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}
	if !ok {
		return nil, nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.Identity(), s.db)
	if err != nil {
		return nil, nil, err
	}
	id := user.Identity()
	return pair, &id, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired,
// unknown ones ErrInvalidToken.
func (s *IdentityService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		_ = s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return err
		}
		pair, err = s.generateTokenPair(ctx, user.Identity(), tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// SignOut forgets the refresh token. Access tokens stay valid until expiry.
func (s *IdentityService) SignOut(ctx context.Context, refreshToken string) error {
	return s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

// SendVerificationEmail mails a fresh verification link unless the address
// is already verified.
func (s *IdentityService) SendVerificationEmail(ctx context.Context, userID string) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}
	return s.sendVerification(ctx, user)
}

// VerifyEmail redeems a verification code.
func (s *IdentityService) VerifyEmail(ctx context.Context, code string) (*account.Identity, error) {
	tok, err := s.consumeActionCode(ctx, s.db, code, models.ActionVerifyEmail)
	if err != nil {
		return nil, err
	}

	users := s.repomanager.Users(s.db)
	if err := users.SetEmailVerified(ctx, tok.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrActionCodeInvalid
		}
		return nil, err
	}
	user, err := users.GetByID(ctx, tok.UserID)
	if err != nil {
		return nil, err
	}
	id := user.Identity()
	return &id, nil
}

func (s *IdentityService) CurrentUser(ctx context.Context, userID string) (*account.Identity, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	id := user.Identity()
	return &id, nil
}

// ConfirmPasswordReset redeems a reset code, stores the new password and
// ends every session of the user.
func (s *IdentityService) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	if err := account.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tok, err := s.consumeActionCode(ctx, tx, code, models.ActionPasswordReset)
		if err != nil {
			return err
		}
		if err := s.repomanager.Users(tx).SetPasswordHash(ctx, tok.UserID, hash); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrActionCodeInvalid
			}
			return err
		}
		return s.revokeSessions(ctx, tx, tok.UserID)
	})
}

// Authenticate resolves an access token to the current identity. Tokens of
// deleted users and tokens issued before a revocation are rejected.
func (s *IdentityService) Authenticate(ctx context.Context, accessToken string) (*account.Identity, error) {
	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return s.sessionIdentity(ctx, claims)
}

// CheckSession reports whether a token accepted earlier still stands: its
// user exists and no revocation happened since it was issued. Expiry is not
// checked again, so long-lived streams survive token expiry but not a
// revocation or a deleted account.
func (s *IdentityService) CheckSession(ctx context.Context, accessToken string) error {
	claims, err := auth.ParseIssuedToken(accessToken, s.jwtSecret)
	if err != nil {
		return err
	}
	_, err = s.sessionIdentity(ctx, claims)
	return err
}

func (s *IdentityService) sessionIdentity(ctx context.Context, claims *auth.Claims) (*account.Identity, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	if err := auth.CheckNotRevoked(claims, user.TokensValidAfter); err != nil {
		return nil, err
	}

	id := user.Identity()
	return &id, nil
}

// RevokeSessions deletes every refresh token of the user and invalidates
// access tokens issued so far.
func (s *IdentityService) RevokeSessions(ctx context.Context, userID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.revokeSessions(ctx, tx, userID)
	})
}

// PasswordResetLink issues a single-use reset code for the user and returns
// the link carrying it.
func (s *IdentityService) PasswordResetLink(ctx context.Context, userID string) (string, error) {
	code, err := s.issueActionCode(ctx, userID, models.ActionPasswordReset)
	if err != nil {
		return "", err
	}
	return actionLink(s.passwordResetURL, code)
}

// --- helpers below ---

func (s *IdentityService) revokeSessions(ctx context.Context, tx dbx.DBTX, userID string) error {
	if _, err := s.repomanager.RefreshTokens(tx).DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	return s.repomanager.Users(tx).SetTokensValidAfter(ctx, userID, auth.RevocationTime(s.now()))
}

func (s *IdentityService) sendVerification(ctx context.Context, user *models.User) error {
	code, err := s.issueActionCode(ctx, user.ID, models.ActionVerifyEmail)
	if err != nil {
		return err
	}
	link, err := actionLink(s.verifyEmailURL, code)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Hi %s,\n\nconfirm your PlantShelf email address:\n%s\n\nCode: %s\n", user.DisplayName, link, code)
	return s.mailer.Send(ctx, user.Email, "Verify your email", body)
}

// issueActionCode replaces any outstanding code of the same kind.
func (s *IdentityService) issueActionCode(ctx context.Context, userID string, kind models.ActionKind) (string, error) {
	code, err := common.MakeRandHexString(32)
	if err != nil {
		return "", common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.ActionTokens(tx)
		if err := repo.DeleteForUser(ctx, userID, kind); err != nil {
			return err
		}
		return repo.Create(ctx, &models.ActionToken{
			Hash:    hashCode(code),
			UserID:  userID,
			Kind:    kind,
			Expires: s.now().Add(s.actionTokenValidityDuration),
		})
	})
	if err != nil {
		return "", fmt.Errorf("error issuing action code: %w", err)
	}
	return code, nil
}

func (s *IdentityService) consumeActionCode(ctx context.Context, db dbx.DBTX, code string, kind models.ActionKind) (*models.ActionToken, error) {
	if code == "" {
		return nil, common.ErrActionCodeInvalid
	}
	tok, err := s.repomanager.ActionTokens(db).Consume(ctx, hashCode(code), kind)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrActionCodeInvalid
		}
		return nil, err
	}
	if tok.Expires.Before(s.now()) {
		return nil, common.ErrActionCodeInvalid
	}
	return tok, nil
}

func (s *IdentityService) generateTokenPair(ctx context.Context, id account.Identity, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(id, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, id.UserID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// hashCode is the stored form of an action code.
func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func actionLink(base, code string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("bad link base %q: %w", base, err)
	}
	q := u.Query()
	q.Set("code", code)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
