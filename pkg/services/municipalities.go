package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
	"github.com/cotafacil/cota-engine/pkg/models"
	"github.com/cotafacil/cota-engine/pkg/policy"
	"github.com/cotafacil/cota-engine/pkg/repositories"
)

// MunicipalityInput is the client-supplied portion of a municipality.
type MunicipalityInput struct {
	Name string `json:"name"`
	CNPJ string `json:"cnpj"`
}

// MunicipalityService manages tenants. Every operation is root-only; the
// policy layer enforces that.
type MunicipalityService interface {
	Create(ctx context.Context, p *models.Principal, input *MunicipalityInput) (*models.Municipality, error)
	List(ctx context.Context, p *models.Principal) ([]*models.Municipality, error)
	Update(ctx context.Context, p *models.Principal, id uuid.UUID, input *MunicipalityInput) (*models.Municipality, error)
	Delete(ctx context.Context, p *models.Principal, id uuid.UUID) error
}

type municipalityService struct {
	municipalities repositories.MunicipalityRepository
	logger         *zap.Logger
}

// NewMunicipalityService creates a new municipality service.
func NewMunicipalityService(municipalities repositories.MunicipalityRepository, logger *zap.Logger) MunicipalityService {
	return &municipalityService{
		municipalities: municipalities,
		logger:         logger.Named("municipalities"),
	}
}

func (in *MunicipalityInput) validate() error {
	ve := &apperrors.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		ve.Add("name", "name is required")
	}
	if strings.TrimSpace(in.CNPJ) == "" {
		ve.Add("cnpj", "cnpj is required")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func (s *municipalityService) Create(ctx context.Context, p *models.Principal, input *MunicipalityInput) (*models.Municipality, error) {
	if err := policy.Authorize(p, policy.ActionCreate, policy.Target{Entity: policy.EntityMunicipality}); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	m := &models.Municipality{
		Name: strings.TrimSpace(input.Name),
		CNPJ: strings.TrimSpace(input.CNPJ),
	}
	if err := s.municipalities.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("municipality created", zap.String("municipality_id", m.ID.String()), zap.String("name", m.Name))
	return m, nil
}

func (s *municipalityService) List(ctx context.Context, p *models.Principal) ([]*models.Municipality, error) {
	if err := policy.Authorize(p, policy.ActionRead, policy.Target{Entity: policy.EntityMunicipality}); err != nil {
		return nil, err
	}
	return s.municipalities.List(ctx)
}

func (s *municipalityService) Update(ctx context.Context, p *models.Principal, id uuid.UUID, input *MunicipalityInput) (*models.Municipality, error) {
	if err := policy.Authorize(p, policy.ActionUpdate, policy.Target{Entity: policy.EntityMunicipality}); err != nil {
		return nil, err
	}

	m, err := s.municipalities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) != "" {
		m.Name = strings.TrimSpace(input.Name)
	}
	if strings.TrimSpace(input.CNPJ) != "" {
		m.CNPJ = strings.TrimSpace(input.CNPJ)
	}
	if err := s.municipalities.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *municipalityService) Delete(ctx context.Context, p *models.Principal, id uuid.UUID) error {
	if err := policy.Authorize(p, policy.ActionDelete, policy.Target{Entity: policy.EntityMunicipality}); err != nil {
		return err
	}
	if err := s.municipalities.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("municipality deleted", zap.String("municipality_id", id.String()))
	return nil
}

var _ MunicipalityService = (*municipalityService)(nil)
