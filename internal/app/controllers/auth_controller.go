package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/services"
	"github.com/aman-gurjar-dev/TechnoHack/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService   services.AuthService
	secureCookies bool
	logger        zerolog.Logger
	now           func() time.Time
}

// NewAuthController creates a new AuthController. secureCookies marks the token
// cookie Secure and should be on in production.
func NewAuthController(authService services.AuthService, secureCookies bool, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:   authService,
		secureCookies: secureCookies,
		logger:        logger,
		now:           time.Now,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates an account and signs it in. Registering as admin requires the admin key.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse} "User registered"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Invalid admin key"
// @Failure 409 {object} dto.APIResponse "User already exists"
// @Failure 503 {object} dto.APIResponse "Database unavailable"
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := middleware.BindRequest(c, &req); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	result, err := ac.authService.Register(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	ac.setTokenCookie(c, result.Token, result.ExpiresAt)
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(newAuthResponse(result), "User registered successfully"))
}

// Login handles user login
// @Summary Log in
// @Description Verifies credentials and returns a token. When role is given it must match the account.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Logged in"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 429 {object} dto.APIResponse "Too many requests"
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := middleware.BindRequest(c, &req); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	result, err := ac.authService.Login(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	ac.setTokenCookie(c, result.Token, result.ExpiresAt)
	c.JSON(http.StatusOK, dto.NewSuccessResponse(newAuthResponse(result), "Login successful"))
}

// Logout clears the token cookie. Issued tokens stay valid until they expire.
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse "Logged out"
// @Router /auth/logout [get]
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", ac.secureCookies, true)
	c.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Logged out successfully"))
}

// Me returns the authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MeResponse} "Current user"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Router /auth/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.HandleAPIError(c, errNotAuthenticated)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MeResponse{User: dto.NewUserResponse(user)}, ""))
}

// UpdateMe changes the caller's name, email or password
// @Summary Update own profile
// @Description A new password requires currentPassword.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.MeResponse} "Profile updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Failure 409 {object} dto.APIResponse "Email is already in use"
// @Router /auth/me [put]
func (ac *AuthController) UpdateMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.HandleAPIError(c, errNotAuthenticated)
		return
	}

	var req dto.UpdateProfileRequest
	if err := middleware.BindRequest(c, &req); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	updated, err := ac.authService.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	ac.logger.Info().Int64("userID", updated.ID).Msg("Profile updated")
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MeResponse{User: dto.NewUserResponse(updated)}, "Profile updated successfully"))
}

func (ac *AuthController) setTokenCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(ac.now()).Seconds())
	if maxAge <= 0 {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookieName, token, maxAge, "/", "", ac.secureCookies, true)
}

func newAuthResponse(result *services.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		User:      dto.NewUserResponse(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}
}
