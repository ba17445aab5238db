// Package httpapi serves the admin callables over HTTP, plus health and
// metrics endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/logging"
	"github.com/dmitrijs2005/plantshelf/internal/server/metrics"
	"github.com/dmitrijs2005/plantshelf/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Callable names, as clients address them.
const (
	CallableDeleteUser     = "adminDeleteUserByEmail"
	CallableRevokeSessions = "adminRevokeSessionsByEmail"
	CallablePasswordReset  = "adminSendPasswordReset"
)

type authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*account.Identity, error)
}

type adminService interface {
	DeleteUserByEmail(ctx context.Context, caller *account.Identity, email string) (*services.AdminResult, error)
	RevokeSessionsByEmail(ctx context.Context, caller *account.Identity, email string) (*services.AdminResult, error)
	SendPasswordReset(ctx context.Context, caller *account.Identity, email string) (*services.AdminResult, error)
}

type procedure func(ctx context.Context, caller *account.Identity, email string) (*services.AdminResult, error)

type Server struct {
	address  string
	auth     authenticator
	admin    adminService
	metrics  *metrics.Metrics
	logger   logging.Logger
	handlers map[string]procedure
}

// NewServer builds the gateway. m may be nil.
func NewServer(a string, l logging.Logger, auth authenticator, admin adminService, m *metrics.Metrics) *Server {
	s := &Server{
		address: a,
		auth:    auth,
		admin:   admin,
		metrics: m,
		logger:  l.With("module", "http_server"),
	}
	s.handlers = map[string]procedure{
		CallableDeleteUser:     admin.DeleteUserByEmail,
		CallableRevokeSessions: admin.RevokeSessionsByEmail,
		CallablePasswordReset:  admin.SendPasswordReset,
	}
	return s
}

// Router returns the HTTP routes.
func (s *Server) Router() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	if s.metrics != nil {
		mux.Use(s.metrics.Middleware)
	}

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	mux.Route("/callable", func(sr chi.Router) {
		sr.Use(s.requireAuth)
		sr.Post("/{name}", s.callable)
	})
	return mux
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
