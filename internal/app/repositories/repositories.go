package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aman-gurjar-dev/TechnoHack/internal/db"
)

// DefaultQueryTimeout bounds a single store call when no timeout is configured.
const DefaultQueryTimeout = 5 * time.Second

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	ClubRepository         *ClubRepository
	EventRepository        *EventRepository
	AnnouncementRepository *AnnouncementRepository
}

// NewRepositories initializes all repositories. Every call they make is bounded by queryTimeout.
func NewRepositories(database *db.PostgresDB, queryTimeout time.Duration) *Repositories {
	base := newBaseRepository(database.Pool, queryTimeout)
	return &Repositories{
		UserRepository:         NewUserRepository(base),
		ClubRepository:         NewClubRepository(base),
		EventRepository:        NewEventRepository(base, database),
		AnnouncementRepository: NewAnnouncementRepository(base),
	}
}

type baseRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func newBaseRepository(pool *pgxpool.Pool, timeout time.Duration) baseRepository {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return baseRepository{db: pool, timeout: timeout}
}

// withTimeout derives the context a single repository call runs under.
func (b baseRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}
