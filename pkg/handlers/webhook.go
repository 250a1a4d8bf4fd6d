package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// WebhookHandler receives inbound callbacks from the external workflow
// system. The endpoint is unauthenticated by contract; it acknowledges the
// payload and logs it for inspection.
type WebhookHandler struct {
	logger *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{logger: logger.Named("webhook-in")}
}

// RegisterRoutes registers the webhook handler's routes on the given mux.
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/webhook/quotation", h.Receive)
}

// Receive handles POST /api/webhook/quotation.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Failed to read body")
		return
	}

	var payload map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
			return
		}
	}

	h.logger.Info("inbound webhook received",
		zap.Int("bytes", len(body)),
		zap.Any("payload", payload))

	if err := WriteJSON(w, http.StatusOK, map[string]any{"received": true}); err != nil {
		h.logger.Error("Failed to encode webhook response", zap.Error(err))
	}
}
