package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
	"github.com/cotafacil/cota-engine/pkg/models"
	"github.com/cotafacil/cota-engine/pkg/policy"
	"github.com/cotafacil/cota-engine/pkg/repositories"
)

// UserUpdateInput carries the mutable user fields. Nil pointers mean "leave
// unchanged". Password, when set, is re-hashed before storage.
type UserUpdateInput struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UserService manages user accounts after creation (registration itself
// lives in the auth package, next to credential handling).
type UserService interface {
	List(ctx context.Context, p *models.Principal) ([]*models.User, error)
	Update(ctx context.Context, p *models.Principal, id uuid.UUID, input *UserUpdateInput) (*models.User, error)
	Delete(ctx context.Context, p *models.Principal, id uuid.UUID) error
}

type userService struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		users:  users,
		logger: logger.Named("users"),
	}
}

func (s *userService) List(ctx context.Context, p *models.Principal) ([]*models.User, error) {
	if p == nil {
		return nil, apperrors.ErrForbidden
	}
	if p.IsRoot() {
		return s.users.List(ctx, nil)
	}
	if p.MunicipalityID == nil {
		return nil, apperrors.ErrForbidden
	}
	return s.users.List(ctx, p.MunicipalityID)
}

func (s *userService) Update(ctx context.Context, p *models.Principal, id uuid.UUID, input *UserUpdateInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ActionUpdate, policy.Target{
		Entity:         policy.EntityUser,
		MunicipalityID: user.MunicipalityID,
	}); err != nil {
		return nil, err
	}

	ve := &apperrors.ValidationError{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			ve.Add("name", "name cannot be empty")
		} else {
			user.Name = strings.TrimSpace(*input.Name)
		}
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			ve.Add("email", "email cannot be empty")
		} else if email != user.Email {
			if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing.ID != user.ID {
				return nil, apperrors.ErrEmailTaken
			} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("check existing email: %w", err)
			}
			user.Email = email
		}
	}
	if input.Role != nil {
		// Root accounts carry no municipality, so the root role is only
		// assignable at registration where the tenant is cleared.
		if !models.IsValidRole(*input.Role) {
			ve.Add("role", "unknown role")
		} else if *input.Role == models.RoleRoot {
			ve.Add("role", "root accounts can only be created at registration")
		} else {
			user.Role = *input.Role
		}
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			ve.Add("password", "password must be at least 8 characters")
		} else {
			hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			user.PasswordHash = string(hash)
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *userService) Delete(ctx context.Context, p *models.Principal, id uuid.UUID) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.ActionDelete, policy.Target{
		Entity:         policy.EntityUser,
		MunicipalityID: user.MunicipalityID,
	}); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

var _ UserService = (*userService)(nil)
