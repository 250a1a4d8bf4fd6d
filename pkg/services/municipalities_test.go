package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
	"github.com/cotafacil/cota-engine/pkg/models"
)

type recordingMunicipalityRepo struct {
	mockMunicipalityRepo
	CreatedRecords []*models.Municipality
	UpdatedRecords []*models.Municipality
	DeletedIDs     []uuid.UUID
}

func (r *recordingMunicipalityRepo) Create(ctx context.Context, m *models.Municipality) error {
	m.ID = uuid.New()
	r.CreatedRecords = append(r.CreatedRecords, m)
	return nil
}

func (r *recordingMunicipalityRepo) Update(ctx context.Context, m *models.Municipality) error {
	r.UpdatedRecords = append(r.UpdatedRecords, m)
	return nil
}

func (r *recordingMunicipalityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.DeletedIDs = append(r.DeletedIDs, id)
	return nil
}

func rootPrincipal() *models.Principal {
	return &models.Principal{ID: uuid.New(), Email: "root@cota.gov.br", Role: models.RoleRoot}
}

func TestMunicipalityCreate_RootOnly(t *testing.T) {
	repo := &recordingMunicipalityRepo{}
	svc := NewMunicipalityService(repo, zap.NewNop())

	m, err := svc.Create(context.Background(), rootPrincipal(), &MunicipalityInput{
		Name: "  Prefeitura de Teste  ",
		CNPJ: "12.345.678/0001-90",
	})
	require.NoError(t, err)
	assert.Equal(t, "Prefeitura de Teste", m.Name)
	assert.Equal(t, "12.345.678/0001-90", m.CNPJ)
	require.Len(t, repo.CreatedRecords, 1)

	for _, role := range []string{models.RoleAdmin, models.RoleGestor, models.RoleUser} {
		_, err := svc.Create(context.Background(), tenantPrincipal(role), &MunicipalityInput{
			Name: "Outra",
			CNPJ: "00.000.000/0001-00",
		})
		assert.ErrorIs(t, err, apperrors.ErrForbidden, "role %s", role)
	}
}

func TestMunicipalityCreate_Validation(t *testing.T) {
	svc := NewMunicipalityService(&recordingMunicipalityRepo{}, zap.NewNop())

	_, err := svc.Create(context.Background(), rootPrincipal(), &MunicipalityInput{Name: " ", CNPJ: ""})
	ve, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	assert.Len(t, ve.Fields, 2)
}

func TestMunicipalityUpdate_PartialFields(t *testing.T) {
	existing := &models.Municipality{ID: uuid.New(), Name: "Antiga", CNPJ: "11.111.111/0001-11"}
	repo := &recordingMunicipalityRepo{}
	repo.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.Municipality, error) {
		return existing, nil
	}
	svc := NewMunicipalityService(repo, zap.NewNop())

	m, err := svc.Update(context.Background(), rootPrincipal(), existing.ID, &MunicipalityInput{Name: "Nova"})
	require.NoError(t, err)
	assert.Equal(t, "Nova", m.Name)
	assert.Equal(t, "11.111.111/0001-11", m.CNPJ, "blank cnpj leaves the stored value")
	require.Len(t, repo.UpdatedRecords, 1)
}

func TestMunicipalityDelete_RootOnly(t *testing.T) {
	repo := &recordingMunicipalityRepo{}
	svc := NewMunicipalityService(repo, zap.NewNop())

	id := uuid.New()
	require.NoError(t, svc.Delete(context.Background(), rootPrincipal(), id))
	assert.Equal(t, []uuid.UUID{id}, repo.DeletedIDs)

	err := svc.Delete(context.Background(), tenantPrincipal(models.RoleAdmin), id)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestMunicipalityList_TenantUserDenied(t *testing.T) {
	svc := NewMunicipalityService(&recordingMunicipalityRepo{}, zap.NewNop())

	_, err := svc.List(context.Background(), tenantPrincipal(models.RoleAdmin))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.List(context.Background(), rootPrincipal())
	assert.NoError(t, err)
}
