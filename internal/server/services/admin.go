package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/adminoracle"
	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/dbx"
	"github.com/dmitrijs2005/plantshelf/internal/logging"
	"github.com/dmitrijs2005/plantshelf/internal/server/notify"
	"github.com/dmitrijs2005/plantshelf/internal/server/objectstore"
	"github.com/dmitrijs2005/plantshelf/internal/server/ratelimit"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/repomanager"
)

// Messages returned to admin callers.
const (
	MsgSignInRequired  = "Sign in required."
	MsgAdminOnly       = "Admin only."
	MsgEmailRequired   = "Email required."
	MsgUserNotFound    = "User not found."
	MsgAlreadyDeleted  = "User not found (already deleted?)"
	MsgUserDeleted     = "User deleted."
	MsgSessionsRevoked = "All sessions revoked."
	MsgTooManyRequests = "Too many requests. Try again later."
)

// AdminResult is the outcome of a privileged procedure.
type AdminResult struct {
	OK      bool
	Message string
	Link    string
}

// AdminService runs the privileged procedures. Every call checks the
// caller against the allowlist directly.
type AdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	identity    *IdentityService
	store       objectstore.Store
	limiter     ratelimit.Limiter
	broker      notify.Broker
	logger      logging.Logger
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, identity *IdentityService, store objectstore.Store,
	limiter ratelimit.Limiter, broker notify.Broker, logger logging.Logger) *AdminService {
	if limiter == nil {
		limiter = ratelimit.Nop{}
	}
	return &AdminService{
		db:          db,
		repomanager: m,
		identity:    identity,
		store:       store,
		limiter:     limiter,
		broker:      broker,
		logger:      logger.With("module", "admin"),
	}
}

// IsAdmin reads the allowlist once.
func (s *AdminService) IsAdmin(ctx context.Context, caller *account.Identity) (bool, error) {
	if caller == nil || caller.Email == "" {
		return false, nil
	}
	return s.repomanager.Admins(s.db).Exists(ctx, caller.Email)
}

// WatchIsAdmin streams the caller's allowlist membership.
func (s *AdminService) WatchIsAdmin(ctx context.Context, caller *account.Identity) <-chan adminoracle.State {
	return adminoracle.Observe(ctx, caller, &allowlistSource{s: s})
}

// SeedAllowlist adds emails to the allowlist. Existing entries are kept.
func (s *AdminService) SeedAllowlist(ctx context.Context, emails []string) error {
	repo := s.repomanager.Admins(s.db)
	for _, email := range emails {
		email = common.NormalizeEmail(email)
		if email == "" {
			continue
		}
		if err := repo.Add(ctx, email); err != nil {
			return fmt.Errorf("seeding admin %s: %w", email, err)
		}
	}
	return nil
}

// DeleteUserByEmail removes the account. Its plants, shelf and photos are
// cleaned up best-effort afterwards.
func (s *AdminService) DeleteUserByEmail(ctx context.Context, caller *account.Identity, email string) (*AdminResult, error) {
	target, err := s.authorize(ctx, caller, email)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, target)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &AdminResult{OK: true, Message: MsgAlreadyDeleted}, nil
		}
		return nil, err
	}

	if err := s.repomanager.Users(s.db).Delete(ctx, user.ID); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user deleted", "user_id", user.ID, "by", caller.Email)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Plants(tx).DeleteAllByUser(ctx, user.ID); err != nil {
			return err
		}
		return s.repomanager.Shelves(tx).Delete(ctx, user.ID)
	})
	if err != nil {
		s.logger.Warn(ctx, "shelf cleanup failed", "user_id", user.ID, "error", err)
	}
	if _, err := s.store.DeletePrefix(ctx, objectstore.UserPrefix(user.ID)); err != nil {
		s.logger.Warn(ctx, "photo cleanup failed", "user_id", user.ID, "error", err)
	}

	return &AdminResult{OK: true, Message: MsgUserDeleted}, nil
}

// RevokeSessionsByEmail signs the user out everywhere.
func (s *AdminService) RevokeSessionsByEmail(ctx context.Context, caller *account.Identity, email string) (*AdminResult, error) {
	target, err := s.authorize(ctx, caller, email)
	if err != nil {
		return nil, err
	}

	user, err := s.lookup(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := s.identity.RevokeSessions(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "sessions revoked", "user_id", user, "by", caller.Email)

	return &AdminResult{OK: true, Message: MsgSessionsRevoked}, nil
}

// SendPasswordReset creates a single-use reset link for the user and
// returns it.
func (s *AdminService) SendPasswordReset(ctx context.Context, caller *account.Identity, email string) (*AdminResult, error) {
	target, err := s.authorize(ctx, caller, email)
	if err != nil {
		return nil, err
	}

	user, err := s.lookup(ctx, target)
	if err != nil {
		return nil, err
	}
	link, err := s.identity.PasswordResetLink(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "password reset link created", "user_id", user, "by", caller.Email)

	return &AdminResult{OK: true, Link: link}, nil
}

// authorize checks, in order: a signed-in caller, allowlist membership,
// the caller's rate, and a non-blank target. It returns the normalized
// target email.
func (s *AdminService) authorize(ctx context.Context, caller *account.Identity, email string) (string, error) {
	if caller == nil || caller.Email == "" {
		return "", common.WithMessage(common.ErrorUnauthorized, MsgSignInRequired)
	}

	ok, err := s.repomanager.Admins(s.db).Exists(ctx, caller.Email)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", common.WithMessage(common.ErrorPermissionDenied, MsgAdminOnly)
	}

	allowed, err := s.limiter.Allow(ctx, caller.UserID)
	if err != nil {
		s.logger.Warn(ctx, "rate limiter unavailable", "error", err)
	} else if !allowed {
		return "", common.WithMessage(common.ErrRateLimited, MsgTooManyRequests)
	}

	target := common.NormalizeEmail(email)
	if target == "" {
		return "", common.WithMessage(common.ErrorInvalidArgument, MsgEmailRequired)
	}
	return target, nil
}

func (s *AdminService) lookup(ctx context.Context, email string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.WithMessage(common.ErrorNotFound, MsgUserNotFound)
		}
		return "", err
	}
	return user.ID, nil
}

// allowlistSource feeds the admin oracle from the allowlist table and its
// change notifications.
type allowlistSource struct {
	s *AdminService
}

func (a *allowlistSource) Exists(ctx context.Context, email string) (bool, error) {
	return a.s.repomanager.Admins(a.s.db).Exists(ctx, email)
}

func (a *allowlistSource) Watch(ctx context.Context, email string) (<-chan adminoracle.Update, error) {
	sub, err := a.s.broker.Subscribe(ctx, common.AdminsTopic(email))
	if err != nil {
		return nil, err
	}

	out := make(chan adminoracle.Update, 1)
	go func() {
		defer close(out)
		defer sub.Close()

		for {
			exists, err := a.Exists(ctx, email)
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- adminoracle.Update{Exists: exists, Err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}

			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.C:
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}
