package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
	"github.com/cotafacil/cota-engine/pkg/models"
)

// UserStore is the subset of the user repository the auth service needs.
// Declared locally to keep this package mockable without importing
// repositories.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterInput is the payload for creating a new user account.
type RegisterInput struct {
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Password       string     `json:"password"`
	Role           string     `json:"role"`
	MunicipalityID *uuid.UUID `json:"municipality_id,omitempty"`
}

// Service handles authentication and account registration.
type Service struct {
	users  UserStore
	tokens *TokenManager
	logger *zap.Logger
}

// NewService creates an auth service with dependencies.
func NewService(users UserStore, tokens *TokenManager, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger.Named("auth"),
	}
}

// Authenticate verifies email/password credentials, updates the last-login
// timestamp and issues a session token. Unknown emails and password
// mismatches are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Info("login attempt with unknown email")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", zap.String("user_id", user.ID.String()))
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// The session is still valid without the timestamp.
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role, user.MunicipalityID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role))

	return &LoginResult{Token: token, User: user}, nil
}

// Register creates a new user account on behalf of an authenticated actor.
// Root may create any account; admin and gestor create accounts inside their
// own municipality (the tenant is forced server-side); plain users may not
// create accounts at all.
func (s *Service) Register(ctx context.Context, actor *models.Principal, in *RegisterInput) (*models.User, error) {
	if err := validateRegisterInput(in); err != nil {
		return nil, err
	}

	switch {
	case actor.IsRoot():
		// Root creates accounts anywhere, including other root accounts.
	case (actor.Role == models.RoleAdmin || actor.Role == models.RoleGestor) && actor.MunicipalityID != nil:
		if in.Role == models.RoleRoot {
			return nil, apperrors.ErrForbidden
		}
		in.MunicipalityID = actor.MunicipalityID
	default:
		return nil, apperrors.ErrForbidden
	}

	// role = root ⇒ no municipality; any other role requires one.
	if in.Role == models.RoleRoot {
		in.MunicipalityID = nil
	} else if in.MunicipalityID == nil {
		ve := &apperrors.ValidationError{}
		return nil, ve.Add("municipality_id", "municipality is required for non-root roles")
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:             uuid.New(),
		MunicipalityID: in.MunicipalityID,
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   string(hash),
		Role:           in.Role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role),
		zap.String("created_by", actor.ID.String()))

	return user, nil
}

// Resolve validates a token and re-fetches the live user record, so role and
// tenancy changes made after token issuance take effect immediately.
func (s *Service) Resolve(ctx context.Context, tokenString string) (*models.Principal, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", apperrors.ErrInvalidToken)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}

	return &models.Principal{
		ID:             user.ID,
		Email:          user.Email,
		Role:           user.Role,
		MunicipalityID: user.MunicipalityID,
	}, nil
}

const minPasswordLength = 8

func validateRegisterInput(in *RegisterInput) error {
	ve := &apperrors.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		ve.Add("name", "name is required")
	}
	if strings.TrimSpace(in.Email) == "" || !strings.Contains(in.Email, "@") {
		ve.Add("email", "a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		ve.Add("password", "password must be at least 8 characters")
	}
	if !models.IsValidRole(in.Role) {
		ve.Add("role", "role must be one of: root, admin, gestor, user")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}
