// Package seed creates the data a fresh deployment needs before anyone can log in.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/repositories"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/auth"
)

// Admin describes the bootstrap administrator account.
type Admin struct {
	Name     string
	Email    string
	Password string
}

// EnsureAdmin creates the admin account unless its email is already registered.
// It reports whether a user was created. An empty email or password disables seeding.
func EnsureAdmin(ctx context.Context, users repositories.IUserRepository, admin Admin, lgr zerolog.Logger) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		lgr.Debug().Msg("Admin seed not configured, skipping")
		return false, nil
	}

	exists, err := users.EmailExists(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to check admin account: %w", err)
	}
	if exists {
		lgr.Debug().Str("email", email).Msg("Admin account already present")
		return false, nil
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	name := strings.TrimSpace(admin.Name)
	if name == "" {
		name = "Administrator"
	}

	user := &models.User{Name: name, Email: email, Password: hash, Role: models.RoleAdmin}
	if err := users.Create(ctx, user); err != nil {
		// Another instance seeded the same account between the check and the insert.
		if apperrors.Is(err, apperrors.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin account: %w", err)
	}

	lgr.Info().Str("email", email).Int64("userId", user.ID).Msg("Seeded admin account")
	return true, nil
}
