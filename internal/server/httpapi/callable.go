package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/plantshelf/internal/account"
	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type ctxKey string

const callerKey ctxKey = "caller"

type callableRequest struct {
	Data struct {
		Email string `json:"email"`
	} `json:"data"`
}

type callableResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Link    string `json:"link,omitempty"`
}

type callableError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type callableResponse struct {
	Result *callableResult `json:"result,omitempty"`
	Error  *callableError  `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, callableResponse{Error: &callableError{Code: code, Message: msg}})
}

// requireAuth resolves the bearer token. A missing token is let through
// with no caller, so the procedure itself answers "Sign in required."
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := s.auth.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, id)))
	})
}

func callerFromContext(ctx context.Context) *account.Identity {
	id, _ := ctx.Value(callerKey).(*account.Identity)
	return id
}

func (s *Server) callable(w http.ResponseWriter, r *http.Request) {
	call, ok := s.handlers[chi.URLParam(r, "name")]
	if !ok {
		writeError(w, http.StatusNotFound, "not-found", "Unknown function.")
		return
	}

	var req callableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-argument", "Malformed request body.")
		return
	}

	res, err := call(r.Context(), callerFromContext(r.Context()), req.Data.Email)
	if err != nil {
		status, code := classify(err)
		msg := err.Error()
		if code == "internal" {
			s.logger.Error(r.Context(), "callable failed", "name", chi.URLParam(r, "name"), "error", err)
			msg = "Internal error."
		}
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, callableResponse{Result: resultOf(res)})
}

func resultOf(r *services.AdminResult) *callableResult {
	return &callableResult{OK: r.OK, Message: r.Message, Link: r.Link}
}

// classify maps a service error to an HTTP status and a callable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, common.ErrorPermissionDenied):
		return http.StatusForbidden, "permission-denied"
	case errors.Is(err, common.ErrorInvalidArgument):
		return http.StatusBadRequest, "invalid-argument"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not-found"
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, "resource-exhausted"
	}
	return http.StatusInternalServerError, "internal"
}
