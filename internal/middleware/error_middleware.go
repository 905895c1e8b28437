package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/logger"
)

const debugErrorsKey = "debugErrors"

// errorMapping ties a sentinel to the status, code and fallback message it renders as.
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Order matters: token sentinels are checked before the generic unauthenticated one.
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrRequestTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodeRequestTooLarge, "Request too large"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenMissing, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "No token provided"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrUserNotFound, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "User not found"},
	{apperrors.ErrUnauthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Not authenticated"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeConflict, "Resource already exists"},
	{apperrors.ErrServiceUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeServiceUnavailable, "Service unavailable"},
	{apperrors.ErrTooManyRequests, http.StatusTooManyRequests, dto.ErrorCodeTooManyRequests, "Too many requests"},
}

// ErrorMode switches debugInfo on internal errors on or off for the rest of the chain.
func ErrorMode(debugErrors bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(debugErrorsKey, debugErrors)
		c.Next()
	}
}

// HandleAPIError handles common API errors and returns appropriate responses.
// It aborts the chain, so middleware may call it too.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := translate(err)

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg("Request failed")
	}

	if status == http.StatusInternalServerError && c.GetBool(debugErrorsKey) {
		detail = detail.WithDebugInfo(err, debug.Stack())
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func translate(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, apperrors.Message(err, m.message))
		if details := apperrors.Details(err); len(details) > 0 {
			detail = detail.WithDetails(details)
		}
		if m.status < http.StatusInternalServerError {
			detail = detail.WithSeverity(dto.ErrorSeverityWarning)
		}
		return m.status, detail
	}

	return http.StatusInternalServerError,
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").WithSeverity(dto.ErrorSeverityCritical)
}
