package controllers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/middleware"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

// errNotAuthenticated is returned when a handler behind Authenticate finds no user.
var errNotAuthenticated = apperrors.NewUnauthenticatedError(apperrors.ErrUnauthenticated, "Not authenticated")

// membershipFunc is the shape shared by join and leave.
type membershipFunc func(ctx context.Context, clubID, userID int64) (*models.Club, error)

// transitionFunc is the shape shared by archive and publish.
type transitionFunc func(ctx context.Context, actor *models.User, id int64) (*models.Announcement, error)

// imageField is the multipart field carrying an entity image.
const imageField = "image"

// optionalImage returns the uploaded image, or nil when the request has none.
// JSON requests never carry one.
func optionalImage(c *gin.Context) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return nil, nil
	}
	fh, err := c.FormFile(imageField)
	switch {
	case err == nil:
		return fh, nil
	case errors.Is(err, http.ErrMissingFile):
		return nil, nil
	default:
		if tooLarge := middleware.BodyTooLarge(err); tooLarge != nil {
			return nil, tooLarge
		}
		return nil, apperrors.NewValidationError("Invalid image upload", map[string]string{
			imageField: err.Error(),
		})
	}
}
