package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/auth"
)

// TokenCookieName is the cookie consulted when no Authorization header is sent.
const TokenCookieName = "token"

const currentUserKey = "currentUser"

// UserLookup resolves a token subject to a user, without the password hash.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	tokens *auth.JWTService
	users  UserLookup
	logger zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens *auth.JWTService, users UserLookup, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// Authenticate rejects the request unless it carries a valid token for an existing user.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.resolve(c)
		if err != nil {
			m.logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Authentication failed")
			HandleAPIError(c, err)
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and otherwise lets
// the request through anonymously. Store outages still fail the request.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.resolve(c)
		switch {
		case err == nil:
			c.Set(currentUserKey, user)
		case errors.Is(err, apperrors.ErrServiceUnavailable):
			HandleAPIError(c, err)
			return
		}
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func (m *AuthMiddleware) RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			HandleAPIError(c, apperrors.NewUnauthenticatedError(apperrors.ErrUnauthenticated, "Not authenticated"))
			return
		}
		if user.Role != role {
			HandleAPIError(c, apperrors.NewForbiddenError("Not authorized as "+string(role)))
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) resolve(c *gin.Context) (*models.User, error) {
	token := tokenFromRequest(c)
	if token == "" {
		return nil, apperrors.NewUnauthenticatedError(apperrors.ErrTokenMissing, "No token provided")
	}

	userID, err := m.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			return nil, apperrors.NewUnauthenticatedError(apperrors.ErrTokenExpired, "Token expired")
		}
		return nil, apperrors.NewUnauthenticatedError(apperrors.ErrTokenInvalid, "Invalid token")
	}

	user, err := m.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewUnauthenticatedError(apperrors.ErrUserNotFound, "User not found")
		}
		return nil, err
	}
	return user, nil
}

// tokenFromRequest prefers the bearer header and falls back to the token cookie.
func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		token, _ := auth.ExtractBearerToken(header)
		return token
	}
	if cookie, err := c.Cookie(TokenCookieName); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser returns the user attached by Authenticate or OptionalAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
