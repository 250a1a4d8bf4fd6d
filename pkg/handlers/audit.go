package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/auth"
	"github.com/cotafacil/cota-engine/pkg/middleware"
	"github.com/cotafacil/cota-engine/pkg/services"
)

// AuditHandler exposes the access-log and notification read endpoints.
type AuditHandler struct {
	service services.AuditService
	logger  *zap.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(service services.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the audit handler's routes on the given mux.
// These reads are themselves audited, like every authenticated call.
func (h *AuditHandler) RegisterRoutes(mux *http.ServeMux, authMw *auth.Middleware, audit *middleware.AccessLogger) {
	mux.HandleFunc("GET /api/access-logs", authMw.RequireAuth(audit.Audit(h.ListAccessLogs)))
	mux.HandleFunc("GET /api/notifications", authMw.RequireAuth(audit.Audit(h.ListNotifications)))
}

// ListAccessLogs handles GET /api/access-logs.
func (h *AuditHandler) ListAccessLogs(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	logs, err := h.service.ListAccessLogs(r.Context(), principal, queryLimit(r))
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, logs); err != nil {
		h.logger.Error("Failed to encode access logs response", zap.Error(err))
	}
}

// ListNotifications handles GET /api/notifications.
func (h *AuditHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.GetPrincipal(r.Context())

	notifications, err := h.service.ListNotifications(r.Context(), principal, queryLimit(r))
	if err != nil {
		ServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, notifications); err != nil {
		h.logger.Error("Failed to encode notifications response", zap.Error(err))
	}
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return 0
	}
	return limit
}
