package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/auth"
	"github.com/cotafacil/cota-engine/pkg/middleware"
	"github.com/cotafacil/cota-engine/pkg/services"
)

// UserHandler handles user management requests.
type UserHandler struct {
	service services.UserService
	logger  *zap.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the user handler's routes on the given mux.
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMw *auth.Middleware, audit *middleware.AccessLogger) {
	mux.HandleFunc("GET /api/users", authMw.RequireAuth(audit.Audit(h.List)))
	mux.HandleFunc("PATCH /api/users/{id}", authMw.RequireAuth(audit.Audit(h.Update)))
	mux.HandleFunc("DELETE /api/users/{id}", authMw.RequireAuth(audit.Audit(h.Delete)))
}

// List handles GET /api/users. Password hashes never serialize (the model
// excludes them from JSON).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	users, err := h.service.List(r.Context(), principal)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, users); err != nil {
		h.logger.Error("Failed to encode users response", zap.Error(err))
	}
}

// Update handles PATCH /api/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req services.UserUpdateInput
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.service.Update(r.Context(), principal, id, &req)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to encode user response", zap.Error(err))
	}
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted"}); err != nil {
		h.logger.Error("Failed to encode delete response", zap.Error(err))
	}
}
