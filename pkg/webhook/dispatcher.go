// Package webhook sends quotation events to the external workflow system.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/config"
)

// Dispatcher delivers signed JSON payloads to the configured endpoint.
// Dispatch never returns an error: delivery outcome is a boolean and the
// caller records it on a Notification row. There is no retry queue; a failed
// delivery is recorded and left to the workflow system to reconcile.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload any) bool
}

type httpDispatcher struct {
	url           string
	apiKey        string
	signingSecret string
	client        *http.Client
	logger        *zap.Logger
}

// NewDispatcher creates a dispatcher for the configured webhook endpoint.
func NewDispatcher(cfg *config.WebhookConfig, logger *zap.Logger) Dispatcher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpDispatcher{
		url:           cfg.URL,
		apiKey:        cfg.APIKey,
		signingSecret: cfg.SigningSecret,
		client:        &http.Client{Timeout: timeout},
		logger:        logger.Named("webhook"),
	}
}

// Dispatch posts the payload and reports whether the receiver acknowledged
// it with a 2xx status. Marshal errors, network errors, timeouts and non-2xx
// responses all yield false.
func (d *httpDispatcher) Dispatch(ctx context.Context, payload any) bool {
	if d.url == "" {
		d.logger.Warn("webhook URL not configured, skipping dispatch")
		return false
	}

	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("failed to marshal webhook payload", zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		d.logger.Error("failed to build webhook request", zap.Error(err))
		return false
	}

	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("X-API-Key", d.apiKey)
	}
	if d.signingSecret != "" {
		req.Header.Set("X-Signature", sign(body, d.signingSecret))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("webhook delivery failed", zap.Error(err))
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	delivered := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !delivered {
		d.logger.Warn("webhook rejected", zap.Int("status", resp.StatusCode))
	} else {
		d.logger.Debug("webhook delivered", zap.Int("status", resp.StatusCode))
	}
	return delivered
}

// sign computes the hex HMAC-SHA256 of the body.
func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// MockDispatcher is a configurable dispatcher for tests.
type MockDispatcher struct {
	// Delivered is returned by Dispatch.
	Delivered bool
	// Payloads collects everything dispatched, in order.
	Payloads []any
}

// Dispatch implements Dispatcher.
func (m *MockDispatcher) Dispatch(_ context.Context, payload any) bool {
	m.Payloads = append(m.Payloads, payload)
	return m.Delivered
}

var _ Dispatcher = (*MockDispatcher)(nil)
