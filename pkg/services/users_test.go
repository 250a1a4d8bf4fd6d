package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
	"github.com/cotafacil/cota-engine/pkg/models"
)

type mockUserRepo struct {
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	ListFunc       func(ctx context.Context, municipalityID *uuid.UUID) ([]*models.User, error)
	UpdateFunc     func(ctx context.Context, user *models.User) error
	DeleteFunc     func(ctx context.Context, id uuid.UUID) error

	Updated []*models.User
	Deleted []uuid.UUID
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepo) List(ctx context.Context, municipalityID *uuid.UUID) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, municipalityID)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.Updated = append(m.Updated, user)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.Deleted = append(m.Deleted, id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func strptr(s string) *string { return &s }

func TestUserList_Scoping(t *testing.T) {
	repo := &mockUserRepo{}
	var gotScope *uuid.UUID
	repo.ListFunc = func(ctx context.Context, municipalityID *uuid.UUID) ([]*models.User, error) {
		gotScope = municipalityID
		return []*models.User{}, nil
	}
	svc := NewUserService(repo, zap.NewNop())

	root := &models.Principal{ID: uuid.New(), Role: models.RoleRoot}
	_, err := svc.List(context.Background(), root)
	require.NoError(t, err)
	assert.Nil(t, gotScope)

	p := tenantPrincipal(models.RoleAdmin)
	_, err = svc.List(context.Background(), p)
	require.NoError(t, err)
	require.NotNil(t, gotScope)
	assert.Equal(t, *p.MunicipalityID, *gotScope)

	tenantless := &models.Principal{ID: uuid.New(), Role: models.RoleUser}
	_, err = svc.List(context.Background(), tenantless)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUserUpdate_SameTenant(t *testing.T) {
	p := tenantPrincipal(models.RoleAdmin)
	target := &models.User{
		ID:             uuid.New(),
		MunicipalityID: p.MunicipalityID,
		Name:           "Antigo",
		Email:          "old@example.com",
		Role:           models.RoleUser,
		PasswordHash:   "old-hash",
	}
	repo := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return target, nil
		},
	}
	svc := NewUserService(repo, zap.NewNop())

	updated, err := svc.Update(context.Background(), p, target.ID, &UserUpdateInput{
		Name:     strptr("Novo Nome"),
		Email:    strptr("NEW@Example.com "),
		Role:     strptr(models.RoleGestor),
		Password: strptr("fresh-password"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Novo Nome", updated.Name)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, models.RoleGestor, updated.Role)
	assert.NotEqual(t, "old-hash", updated.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("fresh-password")))
	require.Len(t, repo.Updated, 1)
}

func TestUserUpdate_CrossTenantDenied(t *testing.T) {
	p := tenantPrincipal(models.RoleAdmin)
	foreign := uuid.New()
	repo := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{ID: id, MunicipalityID: &foreign}, nil
		},
	}
	svc := NewUserService(repo, zap.NewNop())

	_, err := svc.Update(context.Background(), p, uuid.New(), &UserUpdateInput{Name: strptr("x")})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Empty(t, repo.Updated)
}

func TestUserUpdate_RootRoleRejected(t *testing.T) {
	// Promoting a tenant-scoped user to root would leave the account with a
	// municipality; root accounts go through registration instead.
	tenant := uuid.New()
	for _, actor := range []*models.Principal{rootPrincipal(), tenantPrincipal(models.RoleAdmin)} {
		repo := &mockUserRepo{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
				return &models.User{ID: id, MunicipalityID: &tenant, Role: models.RoleAdmin}, nil
			},
		}
		if actor.MunicipalityID != nil {
			*actor.MunicipalityID = tenant
		}
		svc := NewUserService(repo, zap.NewNop())

		_, err := svc.Update(context.Background(), actor, uuid.New(), &UserUpdateInput{Role: strptr(models.RoleRoot)})
		ve, ok := apperrors.AsValidation(err)
		require.True(t, ok, "actor role %s", actor.Role)
		assert.Equal(t, "role", ve.Fields[0].Field)
		assert.Empty(t, repo.Updated, "actor role %s", actor.Role)
	}
}

func TestUserUpdate_DuplicateEmail(t *testing.T) {
	p := tenantPrincipal(models.RoleAdmin)
	repo := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{ID: id, MunicipalityID: p.MunicipalityID, Email: "old@example.com", Role: models.RoleUser}, nil
		},
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: uuid.New(), Email: email}, nil
		},
	}
	svc := NewUserService(repo, zap.NewNop())

	_, err := svc.Update(context.Background(), p, uuid.New(), &UserUpdateInput{Email: strptr("taken@example.com")})
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	assert.Empty(t, repo.Updated)
}

func TestUserUpdate_ValidationErrors(t *testing.T) {
	p := tenantPrincipal(models.RoleAdmin)
	repo := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{ID: id, MunicipalityID: p.MunicipalityID, Role: models.RoleUser}, nil
		},
	}
	svc := NewUserService(repo, zap.NewNop())

	_, err := svc.Update(context.Background(), p, uuid.New(), &UserUpdateInput{
		Name:     strptr("  "),
		Role:     strptr("emperor"),
		Password: strptr("short"),
	})
	ve, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	assert.Len(t, ve.Fields, 3)
	assert.Empty(t, repo.Updated)
}

func TestUserDelete(t *testing.T) {
	p := tenantPrincipal(models.RoleAdmin)
	repo := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{ID: id, MunicipalityID: p.MunicipalityID}, nil
		},
	}
	svc := NewUserService(repo, zap.NewNop())

	id := uuid.New()
	require.NoError(t, svc.Delete(context.Background(), p, id))
	assert.Equal(t, []uuid.UUID{id}, repo.Deleted)
}

func TestUserDelete_NotFound(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, zap.NewNop())
	err := svc.Delete(context.Background(), tenantPrincipal(models.RoleAdmin), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
