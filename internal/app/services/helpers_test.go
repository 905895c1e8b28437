package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/auth"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/cache"
	"github.com/aman-gurjar-dev/TechnoHack/internal/testutil"
)

const testAdminKey = "let-me-in"

type fixture struct {
	store    *testutil.Store
	storage  *testutil.Storage
	cache    *cache.MemoryCache
	gen      *testutil.DataGenerator
	tokens   *auth.JWTService
	services *Services
	now      time.Time
}

// newFixture wires every service over in-memory collaborators with a fixed clock.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tokens, err := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "technohack-test"})
	require.NoError(t, err)
	tokens.WithClock(func() time.Time { return now })

	f := &fixture{
		store:   testutil.NewStore(),
		storage: &testutil.Storage{},
		cache:   cache.NewMemoryCache(time.Minute),
		gen:     testutil.NewDataGenerator(42),
		tokens:  tokens,
		now:     now,
	}
	f.store.Now = func() time.Time { return now }

	f.services = NewServices(Dependencies{
		Users:         f.store.Users(),
		Clubs:         f.store.Clubs(),
		Events:        f.store.Events(),
		Announcements: f.store.Announcements(),
		Tokens:        tokens,
		Storage:       f.storage,
		Cache:         f.cache,
		AdminKey:      testAdminKey,
		Logger:        zerolog.Nop(),
	})
	fixed := clock(func() time.Time { return now })
	f.services.Event.(*eventServiceImpl).now = fixed
	f.services.Announcement.(*announcementServiceImpl).now = fixed
	return f
}
