package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/auth"
	"github.com/cotafacil/cota-engine/pkg/models"
	"github.com/cotafacil/cota-engine/pkg/services"
)

// AccessLogger writes one audit row per authenticated API call, after the
// response status is known. Requests without a resolved principal (login,
// health, inbound webhooks) are not audited.
type AccessLogger struct {
	audit  services.AuditService
	logger *zap.Logger
}

// NewAccessLogger creates the access-log middleware.
func NewAccessLogger(audit services.AuditService, logger *zap.Logger) *AccessLogger {
	return &AccessLogger{
		audit:  audit,
		logger: logger.Named("access-log"),
	}
}

// Audit wraps an authenticated handler. It records success when the handler
// responded below 400 and failure otherwise. Recording errors are logged
// and swallowed so auditing never breaks the request itself.
func (a *AccessLogger) Audit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next(wrapped, r)

		principal, ok := auth.GetPrincipal(r.Context())
		if !ok {
			return
		}

		status := models.AccessStatusSuccess
		if wrapped.statusCode >= http.StatusBadRequest {
			status = models.AccessStatusFailure
		}

		entry := &models.AccessLog{
			UserID:         principal.ID,
			MunicipalityID: principal.MunicipalityID,
			Endpoint:       r.URL.Path,
			Method:         r.Method,
			IP:             clientIP(r),
			Status:         status,
			Timestamp:      time.Now(),
		}
		if err := a.audit.Record(r.Context(), entry); err != nil {
			a.logger.Error("failed to record access log",
				zap.String("endpoint", entry.Endpoint),
				zap.Error(err))
		}
	}
}

// clientIP prefers the first X-Forwarded-For hop when running behind a
// proxy, falling back to the socket peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
