package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
	"github.com/cotafacil/cota-engine/pkg/models"
	"github.com/cotafacil/cota-engine/pkg/repositories"
)

// AuditService exposes the read side of access logs and notifications. Root
// sees everything; tenant users see their own municipality's records.
type AuditService interface {
	// Record writes one access log entry. Errors are returned for the
	// caller to log; they must never fail the audited request.
	Record(ctx context.Context, entry *models.AccessLog) error
	ListAccessLogs(ctx context.Context, p *models.Principal, limit int) ([]*models.AccessLog, error)
	ListNotifications(ctx context.Context, p *models.Principal, limit int) ([]*models.Notification, error)
}

type auditService struct {
	accessLogs    repositories.AccessLogRepository
	notifications repositories.NotificationRepository
	logger        *zap.Logger
}

// NewAuditService creates a new audit service.
func NewAuditService(
	accessLogs repositories.AccessLogRepository,
	notifications repositories.NotificationRepository,
	logger *zap.Logger,
) AuditService {
	return &auditService{
		accessLogs:    accessLogs,
		notifications: notifications,
		logger:        logger.Named("audit"),
	}
}

func (s *auditService) Record(ctx context.Context, entry *models.AccessLog) error {
	return s.accessLogs.Create(ctx, entry)
}

func (s *auditService) ListAccessLogs(ctx context.Context, p *models.Principal, limit int) ([]*models.AccessLog, error) {
	scope, err := tenantScope(p)
	if err != nil {
		return nil, err
	}
	return s.accessLogs.List(ctx, scope, limit)
}

func (s *auditService) ListNotifications(ctx context.Context, p *models.Principal, limit int) ([]*models.Notification, error) {
	scope, err := tenantScope(p)
	if err != nil {
		return nil, err
	}
	return s.notifications.List(ctx, scope, limit)
}

// tenantScope returns the municipality filter for the principal: nil for
// root (all tenants), the principal's own tenant otherwise. Tenantless
// non-root principals are denied.
func tenantScope(p *models.Principal) (*uuid.UUID, error) {
	if p == nil {
		return nil, apperrors.ErrForbidden
	}
	if p.IsRoot() {
		return nil, nil
	}
	if p.MunicipalityID == nil {
		return nil, apperrors.ErrForbidden
	}
	return p.MunicipalityID, nil
}

var _ AuditService = (*auditService)(nil)
