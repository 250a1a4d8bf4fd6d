package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
)

// Middleware provides HTTP authentication middleware.
// It is thin and delegates token resolution to the auth Service.
type Middleware struct {
	service *Service
	logger  *zap.Logger
}

// NewMiddleware creates a new auth middleware with the given Service.
func NewMiddleware(service *Service, logger *zap.Logger) *Middleware {
	return &Middleware{
		service: service,
		logger:  logger,
	}
}

// RequireAuth validates the bearer token, re-fetches the live user record
// and stores the resolved principal in the request context. Token problems
// and deleted users both surface as a generic 401 so no account detail
// leaks to unauthenticated callers.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := ExtractBearer(r.Header.Get("Authorization"))
		if err != nil {
			m.unauthorized(w, "Authentication required")
			return
		}

		principal, err := m.service.Resolve(r.Context(), token)
		if err != nil {
			if !errors.Is(err, apperrors.ErrInvalidToken) && !errors.Is(err, apperrors.ErrPrincipalNotFound) {
				m.logger.Error("principal resolution failed", zap.Error(err))
			}
			m.unauthorized(w, "Authentication required")
			return
		}

		next(w, r.WithContext(SetPrincipal(r.Context(), principal)))
	}
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}
