package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/auth"
	"github.com/cotafacil/cota-engine/pkg/middleware"
	"github.com/cotafacil/cota-engine/pkg/services"
)

// MunicipalityHandler handles municipality management requests.
type MunicipalityHandler struct {
	service services.MunicipalityService
	logger  *zap.Logger
}

// NewMunicipalityHandler creates a new municipality handler.
func NewMunicipalityHandler(service services.MunicipalityService, logger *zap.Logger) *MunicipalityHandler {
	return &MunicipalityHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the municipality handler's routes on the given mux.
func (h *MunicipalityHandler) RegisterRoutes(mux *http.ServeMux, authMw *auth.Middleware, audit *middleware.AccessLogger) {
	mux.HandleFunc("GET /api/municipalities", authMw.RequireAuth(audit.Audit(h.List)))
	mux.HandleFunc("POST /api/municipalities", authMw.RequireAuth(audit.Audit(h.Create)))
	mux.HandleFunc("PATCH /api/municipalities/{id}", authMw.RequireAuth(audit.Audit(h.Update)))
	mux.HandleFunc("DELETE /api/municipalities/{id}", authMw.RequireAuth(audit.Audit(h.Delete)))
}

// List handles GET /api/municipalities.
func (h *MunicipalityHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	municipalities, err := h.service.List(r.Context(), principal)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, municipalities); err != nil {
		h.logger.Error("Failed to encode municipalities response", zap.Error(err))
	}
}

// Create handles POST /api/municipalities.
func (h *MunicipalityHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	var req services.MunicipalityInput
	if !decodeBody(w, r, &req) {
		return
	}

	m, err := h.service.Create(r.Context(), principal, &req)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, m); err != nil {
		h.logger.Error("Failed to encode municipality response", zap.Error(err))
	}
}

// Update handles PATCH /api/municipalities/{id}.
func (h *MunicipalityHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req services.MunicipalityInput
	if !decodeBody(w, r, &req) {
		return
	}

	m, err := h.service.Update(r.Context(), principal, id, &req)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, m); err != nil {
		h.logger.Error("Failed to encode municipality response", zap.Error(err))
	}
}

// Delete handles DELETE /api/municipalities/{id}.
func (h *MunicipalityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"message": "Municipality deleted"}); err != nil {
		h.logger.Error("Failed to encode delete response", zap.Error(err))
	}
}
