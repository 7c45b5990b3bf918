package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = apperrors.Unauthorized("INVALID_CREDENTIALS", "Invalid credentials")
	// ErrInvalidAdminCredentials is returned when admin sign-in fails for any reason.
	ErrInvalidAdminCredentials = apperrors.Unauthorized("INVALID_ADMIN_CREDENTIALS", "Invalid admin credentials")
	// ErrAccountSuspended is returned when a suspended user signs in.
	ErrAccountSuspended = apperrors.Forbidden("ACCOUNT_SUSPENDED", "Your account has been suspended. Please contact support.")
	// ErrSignupFieldsRequired is returned when signup omits a field.
	ErrSignupFieldsRequired = apperrors.Validation("FIELDS_REQUIRED", "All fields are required")
	// ErrEmailInUse is returned when the email belongs to another user.
	ErrEmailInUse = apperrors.Conflict("EMAIL_IN_USE", "Email already in use")
	// ErrUsernameTaken is returned when the username belongs to another user.
	ErrUsernameTaken = apperrors.Conflict("USERNAME_TAKEN", "Username already taken")
)

// UserSummary is the public view of a user returned with a token.
type UserSummary struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Role     model.Role `json:"role,omitempty"`
}

// Session is a signed-in user and the bearer token issued for them.
type Session struct {
	User  UserSummary `json:"user"`
	Token string      `json:"token"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Signup(ctx context.Context, email, username, password string) (*Session, error)
	Signin(ctx context.Context, email, password string) (*Session, error)
	AdminSignin(ctx context.Context, email, password string) (*Session, error)
	// Logout revokes the token described by claims until it expires.
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, logger *zap.Logger) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		users:      users,
		jwtService: jwtService,
		tokenStore: tokenStore,
		logger:     logger,
		now:        time.Now,
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hashed), nil
}

func summarize(user *model.User) UserSummary {
	return UserSummary{ID: user.ID.String(), Email: user.Email, Username: user.Username}
}

// Signup creates a customer account with a hashed password and signs it in.
func (s *authService) Signup(ctx context.Context, email, username, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return nil, ErrSignupFieldsRequired
	}

	if err := ensureUnique(ctx, s.users, email, username, nil); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, apperrors.Internal("Server error during signup", err)
	}

	now := s.now()
	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         model.RoleCustomer,
		Status:       model.UserStatusActive,
		LastLogin:    &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailInUse
		}
		return nil, apperrors.Internal("Server error during signup", errors.Wrap(err, "create user"))
	}

	return s.issue(user, false)
}

// Signin authenticates a user by email and password.
func (s *authService) Signin(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Internal("Server error during login", errors.Wrap(err, "find user"))
	}

	if user.Status == model.UserStatusSuspended {
		return nil, ErrAccountSuspended
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	s.touch(ctx, user)
	return s.issue(user, false)
}

// AdminSignin authenticates the administrator.
func (s *authService) AdminSignin(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidAdminCredentials
	}
	if err != nil {
		return nil, apperrors.Internal("Server error during admin login", errors.Wrap(err, "find user"))
	}
	if !user.IsAdmin() {
		return nil, ErrInvalidAdminCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidAdminCredentials
	}

	s.touch(ctx, user)
	return s.issue(user, true)
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.tokenStore.Revoke(ctx, claims.ID, s.jwtService.Remaining(claims)); err != nil {
		return apperrors.Internal("Failed to logout", errors.Wrap(err, "revoke token"))
	}
	s.logger.Info("token revoked", zap.String("user_id", claims.UserID))
	return nil
}

// touch records the sign-in time; failures do not block the sign-in.
func (s *authService) touch(ctx context.Context, user *model.User) {
	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("update last login", zap.String("user_id", user.ID.String()), zap.Error(err))
		return
	}
	user.LastLogin = &now
}

func (s *authService) issue(user *model.User, withRole bool) (*Session, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}
	summary := summarize(user)
	if withRole {
		summary.Role = user.Role
	}
	return &Session{User: summary, Token: token}, nil
}
