package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const duplicateIdentityMessage = "Username or email already exists"

// Service exposes user management operations.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	List(ctx context.Context) ([]UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	Delete(ctx context.Context, id uuid.UUID) (*UserDTO, error)
}

// CreateUserInput holds the payload to register a user.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// UpdateUserInput holds optional profile changes. A non-nil Password is rehashed.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *string
}

type service struct {
	repo      Repository
	passwords *security.Hasher
	logg      *logger.Logger
}

// NewService constructs a user service instance.
func NewService(repo Repository, passwords config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, passwords: security.NewHasher(passwords), logg: logg}, nil
}

func userNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)

	details := map[string]string{}
	if username == "" {
		details["username"] = "is required"
	}
	if msg := validateEmail(email); msg != "" {
		details["email"] = msg
	}
	if input.Password == "" {
		details["password"] = "is required"
	}
	role, err := enums.ParseUserRole(input.Role)
	if err != nil {
		details["role"] = "must be one of customer, admin"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	if err := s.ensureAvailable(ctx, username, email, nil); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	created, err := s.repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, duplicateIdentityMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert user")
	}

	s.logg.Info(s.logg.WithUserID(ctx, created.ID.String()), "user created")
	return FromModel(created), nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

// Update changes profile fields only; the cart is owned by the cart workflow.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	details := map[string]string{}
	username, email := existing.Username, existing.Email

	if input.Username != nil {
		username = strings.TrimSpace(*input.Username)
		if username == "" {
			details["username"] = "is required"
		}
		updates["username"] = username
	}
	if input.Email != nil {
		email = normalizeEmail(*input.Email)
		if msg := validateEmail(email); msg != "" {
			details["email"] = msg
		}
		updates["email"] = email
	}
	if input.Role != nil {
		role, err := enums.ParseUserRole(*input.Role)
		if err != nil {
			details["role"] = "must be one of customer, admin"
		}
		updates["role"] = role
	}
	if input.Password != nil && *input.Password == "" {
		details["password"] = "is required"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	if input.Username != nil || input.Email != nil {
		if err := s.ensureAvailable(ctx, username, email, &id); err != nil {
			return nil, err
		}
	}
	if input.Password != nil && s.passwordChanged(*input.Password, existing.PasswordHash) {
		hash, err := s.passwords.Hash(*input.Password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		if err := s.repo.Update(ctx, id, updates); err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				return nil, userNotFound()
			case db.IsUniqueViolation(err, ""):
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, duplicateIdentityMessage)
			default:
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update user")
			}
		}
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// Delete removes the user and returns the row as it was before deletion.
// Submissions for the user are removed by the foreign key cascade.
func (s *service) Delete(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete user")
	}
	s.logg.Info(s.logg.WithUserID(ctx, id.String()), "user deleted")
	return FromModel(existing), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (s *service) ensureAvailable(ctx context.Context, username, email string, excludeID *uuid.UUID) error {
	_, err := s.repo.FindByUsernameOrEmail(ctx, username, email, excludeID)
	switch {
	case err == nil:
		return pkgerrors.New(pkgerrors.CodeValidation, duplicateIdentityMessage)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user uniqueness")
	}
}

// passwordChanged is false only when the stored hash already matches the
// password under the current argon2 costs.
func (s *service) passwordChanged(password, stored string) bool {
	if s.passwords.NeedsRehash(stored) {
		return true
	}
	ok, err := s.passwords.Verify(password, stored)
	return err != nil || !ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) string {
	if email == "" {
		return "is required"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "must be a valid email"
	}
	return ""
}
