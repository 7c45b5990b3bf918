package service

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

var (
	// ErrUserNotFound is returned when no user has the requested id.
	ErrUserNotFound = apperrors.NotFound("USER_NOT_FOUND", "User not found")
	// ErrUserFieldsRequired is returned when an admin creates a user without credentials.
	ErrUserFieldsRequired = apperrors.Validation("USER_FIELDS_REQUIRED", "Username, email and password are required")
	// ErrAdminExists enforces the single administrator.
	ErrAdminExists = apperrors.Validation("ADMIN_EXISTS", "Admin user already exists. Only one admin is allowed.")
	// ErrInvalidRole is returned for a role outside Customer and Admin.
	ErrInvalidRole = apperrors.Validation("INVALID_ROLE", "Role must be Customer or Admin")
	// ErrInvalidStatus is returned for a status outside Active and Suspended.
	ErrInvalidStatus = apperrors.Validation("INVALID_STATUS", "Status must be Active or Suspended")
	// ErrCurrentPasswordIncorrect is returned when a password change fails verification.
	ErrCurrentPasswordIncorrect = apperrors.Unauthorized("CURRENT_PASSWORD_INCORRECT", "Current password is incorrect")
)

// CreateUserInput is an admin-created account.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     model.Role
	Status   model.UserStatus
}

// UpdateUserInput changes account attributes; empty fields are left as they are.
type UpdateUserInput struct {
	Username string
	Email    string
	Role     model.Role
	Status   model.UserStatus
}

// UpdateProfileInput changes the signed-in administrator's email and password.
type UpdateProfileInput struct {
	Email           string
	CurrentPassword string
	NewPassword     string
}

// UserService exposes user administration and profile operations.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService backed by repo.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch user data", errors.Wrap(err, "find user"))
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch users", err)
	}
	return users, nil
}

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, ErrUserFieldsRequired
	}

	role := input.Role
	if role == "" {
		role = model.RoleCustomer
	}
	status := input.Status
	if status == "" {
		status = model.UserStatusActive
	}
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if !model.ValidUserStatus(status) {
		return nil, ErrInvalidStatus
	}
	if role == model.RoleAdmin {
		if err := s.ensureNoAdmin(ctx); err != nil {
			return nil, err
		}
	}
	if err := ensureUnique(ctx, s.repo, email, username, nil); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to create user", err)
	}
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Status:       status,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailInUse
		}
		return nil, apperrors.Internal("Failed to create user", errors.Wrap(err, "create user"))
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != "" && !model.ValidRole(input.Role) {
		return nil, ErrInvalidRole
	}
	if input.Status != "" && !model.ValidUserStatus(input.Status) {
		return nil, ErrInvalidStatus
	}
	if input.Role == model.RoleAdmin && !user.IsAdmin() {
		if err := s.ensureNoAdmin(ctx); err != nil {
			return nil, err
		}
	}

	email := strings.TrimSpace(input.Email)
	username := strings.TrimSpace(input.Username)
	if email == user.Email {
		email = ""
	}
	if username == user.Username {
		username = ""
	}
	if err := ensureUnique(ctx, s.repo, email, username, &user.ID); err != nil {
		return nil, err
	}

	if email != "" {
		user.Email = email
	}
	if username != "" {
		user.Username = username
	}
	if input.Role != "" {
		user.Role = input.Role
	}
	if input.Status != "" {
		user.Status = input.Status
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailInUse
		}
		return nil, apperrors.Internal("Failed to update user", errors.Wrap(err, "update user"))
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return apperrors.Internal("Failed to delete user", err)
	}
	return nil
}

// UpdateProfile changes the password only when both current and new password are given.
func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.CurrentPassword != "" && input.NewPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)) != nil {
			return nil, ErrCurrentPasswordIncorrect
		}
		hashed, err := hashPassword(input.NewPassword)
		if err != nil {
			return nil, apperrors.Internal("Failed to update profile", err)
		}
		user.PasswordHash = hashed
	}

	email := strings.TrimSpace(input.Email)
	if email != "" && email != user.Email {
		if err := ensureUnique(ctx, s.repo, email, "", &user.ID); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailInUse
		}
		return nil, apperrors.Internal("Failed to update profile", errors.Wrap(err, "update user"))
	}
	return user, nil
}

func (s *userService) ensureNoAdmin(ctx context.Context) error {
	admins, err := s.repo.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return apperrors.Internal("Failed to check administrators", err)
	}
	if admins > 0 {
		return ErrAdminExists
	}
	return nil
}

// ensureUnique checks email and username against other users. Empty values are skipped.
func ensureUnique(ctx context.Context, repo repository.UserRepository, email, username string, self *uuid.UUID) error {
	taken := func(user *model.User, err error) (bool, error) {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return self == nil || user.ID != *self, nil
	}

	if email != "" {
		inUse, err := taken(repo.FindByEmail(ctx, email))
		if err != nil {
			return apperrors.Internal("Failed to check email", errors.Wrap(err, "find by email"))
		}
		if inUse {
			return ErrEmailInUse
		}
	}
	if username != "" {
		inUse, err := taken(repo.FindByUsername(ctx, username))
		if err != nil {
			return apperrors.Internal("Failed to check username", errors.Wrap(err, "find by username"))
		}
		if inUse {
			return ErrUsernameTaken
		}
	}
	return nil
}
