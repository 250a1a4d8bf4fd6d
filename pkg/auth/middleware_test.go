package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/models"
)

func TestRequireAuth_ValidToken(t *testing.T) {
	tenant := uuid.New()
	user := &models.User{
		ID:             uuid.New(),
		MunicipalityID: &tenant,
		Email:          "user@example.com",
		Role:           models.RoleGestor,
	}
	store := &mockUserStore{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			require.Equal(t, user.ID, id)
			return user, nil
		},
	}
	svc := newTestService(store)
	mw := NewMiddleware(svc, zap.NewNop())

	token, err := svc.tokens.Issue(user.ID, user.Email, user.Role, &tenant)
	require.NoError(t, err)

	var gotPrincipal *models.Principal
	handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal, _ = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/quotations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotPrincipal)
	assert.Equal(t, user.ID, gotPrincipal.ID)
	assert.Equal(t, models.RoleGestor, gotPrincipal.Role)
}

func TestRequireAuth_Rejections(t *testing.T) {
	svc := newTestService(&mockUserStore{}) // store knows no users
	mw := NewMiddleware(svc, zap.NewNop())

	handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	deletedUserToken, err := svc.tokens.Issue(uuid.New(), "ghost@example.com", models.RoleUser, nil)
	require.NoError(t, err)

	expired := NewTokenManager("test-secret-at-least-32-characters", "cota-engine", -time.Minute)
	expiredToken, err := expired.Issue(uuid.New(), "late@example.com", models.RoleUser, nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"garbage token", "Bearer garbage"},
		{"expired token", "Bearer " + expiredToken},
		{"deleted user", "Bearer " + deletedUserToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/quotations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "unauthorized")
		})
	}
}
