package services

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/repositories"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/auth"
)

// AuthResult is what a successful register or login hands back.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// AuthService handles registration, login and the caller's own profile
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error)
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error)
}

type authServiceImpl struct {
	userRepo repositories.IUserRepository
	tokens   *auth.JWTService
	adminKey string
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService. adminKey gates registration with the
// admin role; when empty nobody can register as admin.
func NewAuthService(userRepo repositories.IUserRepository, tokens *auth.JWTService, adminKey string, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		adminKey: adminKey,
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalidCredentials() error {
	return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid credentials")
}

// Register creates a user account and signs it in
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)

	missing := map[string]string{}
	if name == "" {
		missing["name"] = "is required"
	}
	if email == "" {
		missing["email"] = "is required"
	}
	if req.Password == "" {
		missing["password"] = "is required"
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("Missing required fields", missing)
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.IsValid() {
		return nil, apperrors.NewValidationError("Invalid role", map[string]string{"role": "must be one of: user admin"})
	}

	if err := s.userRepo.Ping(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Credential store unavailable during registration")
		return nil, err
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("User already exists")
	}

	if role == models.RoleAdmin && !s.validAdminKey(req.AdminKey) {
		s.logger.Warn().Str("email", email).Msg("Admin registration with invalid admin key")
		return nil, apperrors.NewForbiddenError("Invalid admin key")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Name: name, Email: email, Password: hash, Role: role}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Password = ""

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User registered")
	return s.signIn(user)
}

func (s *authServiceImpl) validAdminKey(supplied string) bool {
	if s.adminKey == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.adminKey), []byte(supplied)) == 1
}

// Login checks credentials. Every failure is the same generic InvalidCredentials.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			auth.BurnPasswordCheck(req.Password)
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, invalidCredentials()
	}
	if req.Role != "" && req.Role != user.Role {
		return nil, invalidCredentials()
	}

	user.Password = ""
	return s.signIn(user)
}

func (s *authServiceImpl) signIn(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// CurrentUser loads the caller's account
func (s *authServiceImpl) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile changes name, email or password of the caller's own account
func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	currentEmail := user.Email

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("Validation failed", map[string]string{"name": "must not be blank"})
		}
		user.Name = name
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			exists, err := s.userRepo.EmailExists(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, apperrors.NewConflictError("Email is already in use")
			}
			user.Email = email
		}
	}

	if req.Password != nil {
		if req.CurrentPassword == "" {
			return nil, apperrors.NewValidationError("Current password is required to set a new password",
				map[string]string{"currentPassword": "is required"})
		}
		stored, err := s.userRepo.GetByEmail(ctx, currentEmail)
		if err != nil {
			return nil, err
		}
		if !auth.CheckPassword(stored.Password, req.CurrentPassword) {
			return nil, apperrors.NewValidationError("Current password is incorrect",
				map[string]string{"currentPassword": "is incorrect"})
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.Password = ""

	s.logger.Info().Int64("userID", user.ID).Msg("Profile updated")
	return user, nil
}
