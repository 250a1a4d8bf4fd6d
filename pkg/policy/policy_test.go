package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
	"github.com/cotafacil/cota-engine/pkg/models"
)

func principal(role string, municipalityID *uuid.UUID) *models.Principal {
	return &models.Principal{
		ID:             uuid.New(),
		Email:          "someone@example.com",
		Role:           role,
		MunicipalityID: municipalityID,
	}
}

func TestAuthorize_NilPrincipalDenied(t *testing.T) {
	err := Authorize(nil, ActionRead, Target{Entity: EntityQuotation})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAuthorize_RootAllowedEverywhere(t *testing.T) {
	root := principal(models.RoleRoot, nil)
	other := uuid.New()

	for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
		for _, entity := range []Entity{EntityMunicipality, EntityUser, EntityQuotation, EntityAccessLog, EntityNotification} {
			err := Authorize(root, action, Target{Entity: entity, MunicipalityID: &other})
			assert.NoError(t, err, "root should be allowed to %s %s", action, entity)
		}
	}
}

func TestAuthorize_MunicipalitiesAreRootOnly(t *testing.T) {
	tenant := uuid.New()
	for _, role := range []string{models.RoleAdmin, models.RoleGestor, models.RoleUser} {
		p := principal(role, &tenant)
		err := Authorize(p, ActionCreate, Target{Entity: EntityMunicipality})
		assert.ErrorIs(t, err, apperrors.ErrForbidden, "role %s must not manage municipalities", role)
	}
}

func TestAuthorize_CrossTenantDenied(t *testing.T) {
	mine := uuid.New()
	theirs := uuid.New()
	p := principal(models.RoleAdmin, &mine)

	for _, entity := range []Entity{EntityUser, EntityQuotation, EntityAccessLog, EntityNotification} {
		err := Authorize(p, ActionRead, Target{Entity: entity, MunicipalityID: &theirs})
		assert.ErrorIs(t, err, apperrors.ErrForbidden, "cross-tenant read of %s must be denied", entity)
	}
}

func TestAuthorize_SameTenantAllowed(t *testing.T) {
	tenant := uuid.New()
	p := principal(models.RoleUser, &tenant)

	err := Authorize(p, ActionRead, Target{Entity: EntityQuotation, MunicipalityID: &tenant})
	assert.NoError(t, err)
}

func TestAuthorize_UserCreationRequiresAdminOrGestor(t *testing.T) {
	tenant := uuid.New()

	assert.NoError(t, Authorize(principal(models.RoleAdmin, &tenant), ActionCreate,
		Target{Entity: EntityUser, MunicipalityID: &tenant}))
	assert.NoError(t, Authorize(principal(models.RoleGestor, &tenant), ActionCreate,
		Target{Entity: EntityUser, MunicipalityID: &tenant}))
	assert.ErrorIs(t, Authorize(principal(models.RoleUser, &tenant), ActionCreate,
		Target{Entity: EntityUser, MunicipalityID: &tenant}), apperrors.ErrForbidden)
}

func TestAuthorize_QuotationDeleteByCreator(t *testing.T) {
	mine := uuid.New()
	theirs := uuid.New()
	p := principal(models.RoleUser, &mine)

	// Creator keeps delete rights on a quotation that now lives in a
	// different tenant than the principal.
	err := Authorize(p, ActionDelete, Target{
		Entity:         EntityQuotation,
		MunicipalityID: &theirs,
		OwnerID:        p.ID,
	})
	assert.NoError(t, err)

	// A different owner in a foreign tenant stays denied.
	err = Authorize(p, ActionDelete, Target{
		Entity:         EntityQuotation,
		MunicipalityID: &theirs,
		OwnerID:        uuid.New(),
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAuthorize_TenantlessNonRootDenied(t *testing.T) {
	p := principal(models.RoleAdmin, nil)
	tenant := uuid.New()

	err := Authorize(p, ActionRead, Target{Entity: EntityQuotation, MunicipalityID: &tenant})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
