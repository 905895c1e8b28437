package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and issues a verifiable token", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		res, err := f.services.Auth.Register(ctx, &dto.RegisterRequest{Name: " Alice ", Email: "Alice@X.com", Password: "pw1"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Alice", res.User.Name)
		assert.Equal(t, "alice@x.com", res.User.Email)
		assert.Equal(t, models.RoleUser, res.User.Role)
		assert.Empty(t, res.User.Password)
		assert.Equal(t, f.now.Add(24*time.Hour), res.ExpiresAt)

		userID, err := f.tokens.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, userID)

		stored, err := f.store.Users().GetByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.NotEqual(t, "pw1", stored.Password)
	})

	t.Run("second registration with same email conflicts", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.services.Auth.Register(ctx, &dto.RegisterRequest{Name: "A", Email: "alice@x.com", Password: "pw1"})
		require.NoError(t, err)

		_, err = f.services.Auth.Register(ctx, &dto.RegisterRequest{Name: "B", Email: "ALICE@x.com", Password: "pw2"})

		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
		assert.Equal(t, "User already exists", err.Error())
	})

	t.Run("admin role requires the admin key", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.services.Auth.Register(ctx, &dto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "pw", Role: models.RoleAdmin, AdminKey: "wrong"})
		assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))

		_, err = f.services.Auth.Register(ctx, &dto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "pw", Role: models.RoleAdmin})
		assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))

		res, err := f.services.Auth.Register(ctx, &dto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "pw", Role: models.RoleAdmin, AdminKey: testAdminKey})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, res.User.Role)
	})

	t.Run("missing fields are a validation error", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.services.Auth.Register(ctx, &dto.RegisterRequest{Name: "  ", Email: "a@x.com"})

		require.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
		fields := apperrors.Details(err)["fields"].(map[string]string)
		assert.Contains(t, fields, "name")
		assert.Contains(t, fields, "password")
	})

	t.Run("password longer than bcrypt accepts is a validation error", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		long := strings.Repeat("é", 40)

		// Act
		_, err := f.services.Auth.Register(ctx, &dto.RegisterRequest{Name: "A", Email: "a@x.com", Password: long})

		// Assert
		require.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
		exists, _ := f.store.Users().EmailExists(ctx, "a@x.com")
		assert.False(t, exists)
	})

	t.Run("unavailable store is surfaced before anything is written", func(t *testing.T) {
		f := newFixture(t)
		f.store.PingErr = apperrors.NewServiceUnavailableError("Database is unavailable, please try again later", errors.New("dial tcp: refused"))

		_, err := f.services.Auth.Register(ctx, &dto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "pw"})

		assert.True(t, apperrors.Is(err, apperrors.ErrServiceUnavailable))
		exists, _ := f.store.Users().EmailExists(ctx, "a@x.com")
		assert.False(t, exists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.gen.SeedUser(t, f.store, models.RoleUser, "pw1")

	tests := []struct {
		name    string
		req     dto.LoginRequest
		wantErr bool
	}{
		{name: "correct credentials", req: dto.LoginRequest{Email: alice.Email, Password: "pw1"}},
		{name: "email is case insensitive", req: dto.LoginRequest{Email: strings.ToUpper(alice.Email), Password: "pw1"}},
		{name: "matching role", req: dto.LoginRequest{Email: alice.Email, Password: "pw1", Role: models.RoleUser}},
		{name: "wrong password", req: dto.LoginRequest{Email: alice.Email, Password: "nope"}, wantErr: true},
		{name: "unknown email", req: dto.LoginRequest{Email: "ghost@x.com", Password: "pw1"}, wantErr: true},
		{name: "role mismatch", req: dto.LoginRequest{Email: alice.Email, Password: "pw1", Role: models.RoleAdmin}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.services.Auth.Login(ctx, &tt.req)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrInvalidCredentials))
				assert.Equal(t, "Invalid credentials", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, alice.ID, res.User.ID)
			assert.Empty(t, res.User.Password)
			assert.NotEmpty(t, res.Token)
		})
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("new password needs the current one", func(t *testing.T) {
		f := newFixture(t)
		u := f.gen.SeedUser(t, f.store, models.RoleUser, "old-pw")
		newPw := "new-pw"

		_, err := f.services.Auth.UpdateProfile(ctx, u.ID, &dto.UpdateProfileRequest{Password: &newPw})
		assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))

		_, err = f.services.Auth.UpdateProfile(ctx, u.ID, &dto.UpdateProfileRequest{Password: &newPw, CurrentPassword: "bad"})
		assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))

		_, err = f.services.Auth.UpdateProfile(ctx, u.ID, &dto.UpdateProfileRequest{Password: &newPw, CurrentPassword: "old-pw"})
		require.NoError(t, err)

		_, err = f.services.Auth.Login(ctx, &dto.LoginRequest{Email: u.Email, Password: "new-pw"})
		assert.NoError(t, err)
	})

	t.Run("email already used by someone else conflicts", func(t *testing.T) {
		f := newFixture(t)
		u := f.gen.SeedUser(t, f.store, models.RoleUser, "pw")
		other := f.gen.SeedUser(t, f.store, models.RoleUser, "pw")

		_, err := f.services.Auth.UpdateProfile(ctx, u.ID, &dto.UpdateProfileRequest{Email: &other.Email})

		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})

	t.Run("name change is persisted", func(t *testing.T) {
		f := newFixture(t)
		u := f.gen.SeedUser(t, f.store, models.RoleUser, "pw")
		name := "Renamed"

		updated, err := f.services.Auth.UpdateProfile(ctx, u.ID, &dto.UpdateProfileRequest{Name: &name})

		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		current, err := f.services.Auth.CurrentUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", current.Name)
	})
}
