package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/validation"
)

// LimitBody caps the request body at maxBytes. Reads past the cap fail with
// *http.MaxBytesError, which BodyTooLarge turns into a 413.
func LimitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// BodyTooLarge returns a RequestTooLarge error when err came from reading past a
// LimitBody cap, and nil otherwise.
func BodyTooLarge(err error) error {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return nil
	}
	return apperrors.NewRequestTooLargeError(fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit))
}

// BindRequest binds the body (JSON or multipart form, by Content-Type) into obj and
// converts binding failures into a ValidationError.
func BindRequest(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBind(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("Request body is required", nil)
		}
		if tooLarge := BodyTooLarge(err); tooLarge != nil {
			return tooLarge
		}
		return validation.FromBindingError(err)
	}
	return nil
}

// BindQuery binds query parameters into obj.
func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return validation.FromBindingError(err)
	}
	return nil
}

// ParseIDParam reads a positive integer path parameter.
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("Invalid "+name, map[string]string{
			name: "must be a positive integer",
		})
	}
	return id, nil
}
