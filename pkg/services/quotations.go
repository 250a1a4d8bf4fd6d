package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
	"github.com/cotafacil/cota-engine/pkg/models"
	"github.com/cotafacil/cota-engine/pkg/policy"
	"github.com/cotafacil/cota-engine/pkg/repositories"
	"github.com/cotafacil/cota-engine/pkg/webhook"
)

// QuotationService owns the quotation lifecycle: the creation pipeline that
// enriches every new quotation with a price analysis and report, status
// transitions with change notifications, listing and deletion.
type QuotationService interface {
	Create(ctx context.Context, p *models.Principal, input *models.QuotationInput) (*models.Quotation, error)
	Get(ctx context.Context, p *models.Principal, id uuid.UUID) (*models.Quotation, error)
	List(ctx context.Context, p *models.Principal) ([]*models.Quotation, error)
	UpdateStatus(ctx context.Context, p *models.Principal, id uuid.UUID, status string) (*models.Quotation, error)
	Delete(ctx context.Context, p *models.Principal, id uuid.UUID) error
}

type quotationService struct {
	quotations     repositories.QuotationRepository
	municipalities repositories.MunicipalityRepository
	notifications  repositories.NotificationRepository
	analyzer       PriceAnalyzer
	reports        ReportGenerator
	dispatcher     webhook.Dispatcher
	logger         *zap.Logger
}

// NewQuotationService creates a new quotation service.
func NewQuotationService(
	quotations repositories.QuotationRepository,
	municipalities repositories.MunicipalityRepository,
	notifications repositories.NotificationRepository,
	analyzer PriceAnalyzer,
	reports ReportGenerator,
	dispatcher webhook.Dispatcher,
	logger *zap.Logger,
) QuotationService {
	return &quotationService{
		quotations:     quotations,
		municipalities: municipalities,
		notifications:  notifications,
		analyzer:       analyzer,
		reports:        reports,
		dispatcher:     dispatcher,
		logger:         logger.Named("quotations"),
	}
}

// quotationEventPayload is the webhook body for quotation events. Field
// names follow the receiving workflow system's contract.
type quotationEventPayload struct {
	QuotationID        uuid.UUID `json:"cotacao_id"`
	MunicipalityID     uuid.UUID `json:"cliente_id"`
	UserID             uuid.UUID `json:"usuario_id"`
	Product            string    `json:"produto"`
	Quantity           int       `json:"quantidade"`
	UnitPrice          *float64  `json:"preco_unitario,omitempty"`
	TotalPrice         float64   `json:"preco_total"`
	AverageMarketPrice *float64  `json:"preco_medio_mercado,omitempty"`
	PriceRangeMin      *float64  `json:"faixa_preco_min,omitempty"`
	PriceRangeMax      *float64  `json:"faixa_preco_max,omitempty"`
	MarketAnalysis     string    `json:"analise_mercado,omitempty"`
	Recommendations    []string  `json:"recomendacoes,omitempty"`
	AnalysisConfidence *float64  `json:"confianca_analise,omitempty"`
	Status             string    `json:"status"`
	Timestamp          time.Time `json:"timestamp"`
}

// Create runs the full creation pipeline. The AI enrichment and webhook
// steps are best-effort: their failures degrade the stored quotation
// (fallback analysis, webhook_sent=false) but never abort persistence.
func (s *quotationService) Create(ctx context.Context, p *models.Principal, input *models.QuotationInput) (*models.Quotation, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if p == nil || p.MunicipalityID == nil {
		// Quotations always belong to a tenant, so tenantless principals
		// (root included) cannot create them.
		return nil, apperrors.ErrForbidden
	}
	if err := policy.Authorize(p, policy.ActionCreate, policy.Target{
		Entity:         policy.EntityQuotation,
		MunicipalityID: p.MunicipalityID,
	}); err != nil {
		return nil, err
	}

	municipalityName := ""
	if m, err := s.municipalities.GetByID(ctx, *p.MunicipalityID); err != nil {
		s.logger.Warn("failed to load municipality for report", zap.Error(err))
	} else {
		municipalityName = m.Name
	}

	analysis := s.analyzer.Analyze(ctx, input.Product, input.Quantity, input.UnitPrice)
	report := s.reports.Generate(ctx, input.Product, input.Quantity, input.UnitPrice, analysis, municipalityName)

	q := &models.Quotation{
		MunicipalityID:     *p.MunicipalityID,
		UserID:             p.ID,
		Product:            input.Product,
		Quantity:           input.Quantity,
		UnitPrice:          models.Round2(input.UnitPrice),
		TotalPrice:         input.TotalPrice(),
		Status:             models.QuotationStatusPending,
		AverageMarketPrice: models.Round2(analysis.AveragePrice),
		PriceRangeMin:      models.Round2(analysis.PriceRangeMin),
		PriceRangeMax:      models.Round2(analysis.PriceRangeMax),
		MarketAnalysis:     analysis.MarketAnalysis,
		Recommendations:    analysis.Recommendations,
		AnalysisConfidence: analysis.Confidence,
		PriceReport:        report,
	}

	if err := s.quotations.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to persist quotation: %w", err)
	}

	payload := &quotationEventPayload{
		QuotationID:        q.ID,
		MunicipalityID:     q.MunicipalityID,
		UserID:             q.UserID,
		Product:            q.Product,
		Quantity:           q.Quantity,
		UnitPrice:          &q.UnitPrice,
		TotalPrice:         q.TotalPrice,
		AverageMarketPrice: &q.AverageMarketPrice,
		PriceRangeMin:      &q.PriceRangeMin,
		PriceRangeMax:      &q.PriceRangeMax,
		MarketAnalysis:     q.MarketAnalysis,
		Recommendations:    q.Recommendations,
		AnalysisConfidence: &q.AnalysisConfidence,
		Status:             q.Status,
		Timestamp:          q.CreatedAt,
	}

	delivered := s.dispatcher.Dispatch(ctx, payload)
	if delivered {
		if err := s.quotations.MarkWebhookSent(ctx, q.ID); err != nil {
			s.logger.Error("failed to mark webhook sent", zap.String("quotation_id", q.ID.String()), zap.Error(err))
		} else {
			q.WebhookSent = true
		}
	}

	s.recordNotification(ctx, q, models.NotificationTypeNewQuotation, p.Email, delivered)

	s.logger.Info("quotation created",
		zap.String("quotation_id", q.ID.String()),
		zap.String("municipality_id", q.MunicipalityID.String()),
		zap.Bool("webhook_sent", q.WebhookSent))

	return q, nil
}

func (s *quotationService) Get(ctx context.Context, p *models.Principal, id uuid.UUID) (*models.Quotation, error) {
	q, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ActionRead, quotationTarget(q)); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *quotationService) List(ctx context.Context, p *models.Principal) ([]*models.Quotation, error) {
	if p == nil {
		return nil, apperrors.ErrForbidden
	}
	if p.IsRoot() {
		return s.quotations.List(ctx, nil)
	}
	if p.MunicipalityID == nil {
		return nil, apperrors.ErrForbidden
	}
	return s.quotations.List(ctx, p.MunicipalityID)
}

// UpdateStatus changes the quotation status. Only a real change produces a
// webhook event and a notification row; setting the same status again is a
// no-op on the notification side.
func (s *quotationService) UpdateStatus(ctx context.Context, p *models.Principal, id uuid.UUID, status string) (*models.Quotation, error) {
	if !models.IsValidQuotationStatus(status) {
		ve := &apperrors.ValidationError{}
		ve.Add("status", "status must be one of pending, approved, rejected")
		return nil, ve
	}

	q, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ActionUpdate, quotationTarget(q)); err != nil {
		return nil, err
	}

	changed := q.Status != status
	if changed {
		if err := s.quotations.UpdateStatus(ctx, id, status); err != nil {
			return nil, err
		}
		q.Status = status

		payload := &quotationEventPayload{
			QuotationID:    q.ID,
			MunicipalityID: q.MunicipalityID,
			UserID:         q.UserID,
			Product:        q.Product,
			Quantity:       q.Quantity,
			TotalPrice:     q.TotalPrice,
			Status:         q.Status,
			Timestamp:      time.Now(),
		}
		delivered := s.dispatcher.Dispatch(ctx, payload)
		s.recordNotification(ctx, q, models.NotificationTypeStatusUpdated, p.Email, delivered)

		s.logger.Info("quotation status updated",
			zap.String("quotation_id", q.ID.String()),
			zap.String("status", status),
			zap.Bool("webhook_sent", delivered))
	}

	return q, nil
}

func (s *quotationService) Delete(ctx context.Context, p *models.Principal, id uuid.UUID) error {
	q, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.ActionDelete, quotationTarget(q)); err != nil {
		return err
	}
	return s.quotations.Delete(ctx, id)
}

// recordNotification writes the dispatch outcome. Persistence here is
// best-effort: an audit row must never fail the quotation operation.
func (s *quotationService) recordNotification(ctx context.Context, q *models.Quotation, notifType, recipient string, delivered bool) {
	status := models.NotificationStatusFailed
	if delivered {
		status = models.NotificationStatusSent
	}
	n := &models.Notification{
		QuotationID:    &q.ID,
		MunicipalityID: q.MunicipalityID,
		Type:           notifType,
		Recipient:      recipient,
		Status:         status,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Error("failed to record notification",
			zap.String("quotation_id", q.ID.String()),
			zap.Error(err))
	}
}

func quotationTarget(q *models.Quotation) policy.Target {
	mid := q.MunicipalityID
	return policy.Target{
		Entity:         policy.EntityQuotation,
		MunicipalityID: &mid,
		OwnerID:        q.UserID,
	}
}

var _ QuotationService = (*quotationService)(nil)
