package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/repositories"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/auth"
	"github.com/aman-gurjar-dev/TechnoHack/internal/testutil"
)

type failingUsers struct {
	repositories.IUserRepository
	err error
}

func (f *failingUsers) EmailExists(context.Context, string) (bool, error) { return false, f.err }

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	admin := Admin{Name: " Root ", Email: " Root@TechnoHack.dev ", Password: "s3cret-pass"}

	t.Run("creates the admin once", func(t *testing.T) {
		// Arrange
		users := testutil.NewStore().Users()

		// Act
		created, err := EnsureAdmin(ctx, users, admin, zerolog.Nop())
		again, errAgain := EnsureAdmin(ctx, users, admin, zerolog.Nop())

		// Assert
		require.NoError(t, err)
		require.NoError(t, errAgain)
		assert.True(t, created)
		assert.False(t, again)

		u, err := users.GetByEmail(ctx, "root@technohack.dev")
		require.NoError(t, err)
		assert.Equal(t, "Root", u.Name)
		assert.Equal(t, models.RoleAdmin, u.Role)
		assert.True(t, auth.CheckPassword(u.Password, "s3cret-pass"))
	})

	t.Run("existing user is left alone", func(t *testing.T) {
		// Arrange
		users := testutil.NewStore().Users()
		require.NoError(t, users.Create(ctx, &models.User{Name: "Someone", Email: "root@technohack.dev", Password: "h", Role: models.RoleUser}))

		// Act
		created, err := EnsureAdmin(ctx, users, admin, zerolog.Nop())

		// Assert
		require.NoError(t, err)
		assert.False(t, created)
		u, err := users.GetByEmail(ctx, "root@technohack.dev")
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, u.Role)
	})

	t.Run("missing credentials disable seeding", func(t *testing.T) {
		users := testutil.NewStore().Users()

		created, err := EnsureAdmin(ctx, users, Admin{Email: "root@technohack.dev"}, zerolog.Nop())

		require.NoError(t, err)
		assert.False(t, created)
		exists, err := users.EmailExists(ctx, "root@technohack.dev")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("default name", func(t *testing.T) {
		users := testutil.NewStore().Users()

		_, err := EnsureAdmin(ctx, users, Admin{Email: "a@x.com", Password: "pw"}, zerolog.Nop())

		require.NoError(t, err)
		u, err := users.GetByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "Administrator", u.Name)
	})

	t.Run("store outage is reported", func(t *testing.T) {
		users := &failingUsers{IUserRepository: testutil.NewStore().Users(), err: errors.New("down")}

		_, err := EnsureAdmin(ctx, users, admin, zerolog.Nop())

		assert.Error(t, err)
	})
}
