package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/auth"
	"github.com/cotafacil/cota-engine/pkg/middleware"
	"github.com/cotafacil/cota-engine/pkg/models"
	"github.com/cotafacil/cota-engine/pkg/services"
)

// UpdateQuotationRequest carries the only mutable quotation field.
type UpdateQuotationRequest struct {
	Status string `json:"status"`
}

// QuotationHandler handles quotation lifecycle requests.
type QuotationHandler struct {
	service services.QuotationService
	logger  *zap.Logger
}

// NewQuotationHandler creates a new quotation handler.
func NewQuotationHandler(service services.QuotationService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the quotation handler's routes on the given mux.
func (h *QuotationHandler) RegisterRoutes(mux *http.ServeMux, authMw *auth.Middleware, audit *middleware.AccessLogger) {
	mux.HandleFunc("GET /api/quotations", authMw.RequireAuth(audit.Audit(h.List)))
	mux.HandleFunc("POST /api/quotations", authMw.RequireAuth(audit.Audit(h.Create)))
	mux.HandleFunc("GET /api/quotations/{id}", authMw.RequireAuth(audit.Audit(h.Get)))
	mux.HandleFunc("PATCH /api/quotations/{id}", authMw.RequireAuth(audit.Audit(h.UpdateStatus)))
	mux.HandleFunc("DELETE /api/quotations/{id}", authMw.RequireAuth(audit.Audit(h.Delete)))
}

// List handles GET /api/quotations.
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	quotations, err := h.service.List(r.Context(), principal)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, quotations); err != nil {
		h.logger.Error("Failed to encode quotations response", zap.Error(err))
	}
}

// Create handles POST /api/quotations. The response carries the fully
// enriched quotation, including the analysis and report produced inline.
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	var req models.QuotationInput
	if !decodeBody(w, r, &req) {
		return
	}

	q, err := h.service.Create(r.Context(), principal, &req)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, q); err != nil {
		h.logger.Error("Failed to encode quotation response", zap.Error(err))
	}
}

// Get handles GET /api/quotations/{id}.
func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	q, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, q); err != nil {
		h.logger.Error("Failed to encode quotation response", zap.Error(err))
	}
}

// UpdateStatus handles PATCH /api/quotations/{id}.
func (h *QuotationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateQuotationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q, err := h.service.UpdateStatus(r.Context(), principal, id, req.Status)
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, q); err != nil {
		h.logger.Error("Failed to encode quotation response", zap.Error(err))
	}
}

// Delete handles DELETE /api/quotations/{id}.
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"message": "Quotation deleted"}); err != nil {
		h.logger.Error("Failed to encode delete response", zap.Error(err))
	}
}
