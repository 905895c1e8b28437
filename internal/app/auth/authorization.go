// Package auth holds the resource ownership policy shared by every handler that
// mutates something a user may own.
package auth

import (
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

// Owned is anything with a single owning user.
type Owned interface {
	OwnerID() int64
}

// CanModify reports whether user may update or delete resource: admins always
// can, everyone else only when they own it.
func CanModify(user *models.User, resource Owned) bool {
	if user == nil || resource == nil {
		return false
	}
	return user.IsAdmin() || resource.OwnerID() == user.ID
}

// RequireModify is CanModify as an error. The returned error is Forbidden.
func RequireModify(user *models.User, resource Owned, message string) error {
	if CanModify(user, resource) {
		return nil
	}
	if message == "" {
		message = "You do not have permission to modify this resource"
	}
	return apperrors.NewForbiddenError(message)
}
