package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/dberrors"
)

const usersEmailKey = "users_email_key"

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// GetByID never loads the password hash.
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// GetByEmail loads the password hash for credential checks.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// Update writes name and email, and the password when user.Password is set.
	Update(ctx context.Context, user *models.User) error
	Ping(ctx context.Context) error
}

// UserRepository is the Postgres credential store
type UserRepository struct {
	baseRepository
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(base baseRepository) *UserRepository {
	return &UserRepository{baseRepository: base}
}

var userColumns = []string{"id", "name", "email", "role", "created_at", "updated_at"}

// Create inserts a user and fills in its id and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Insert("users").
		Columns("name", "email", "password", "role").
		Values(user.Name, user.Email, user.Password, user.Role).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, usersEmailKey) {
			return apperrors.NewConflictError("User already exists")
		}
		return fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return nil
}

// GetByID retrieves a user without the password hash
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, false)
}

// GetByEmail retrieves a user including the password hash
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email}, true)
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Eq, withPassword bool) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	columns := userColumns
	if withPassword {
		columns = append(append([]string{}, userColumns...), "password")
	}

	sql, args, err := squirrel.Select(columns...).
		From("users").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var user models.User
	dest := []interface{}{&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt}
	if withPassword {
		dest = append(dest, &user.Password)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(dest...); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("User not found")
		}
		return nil, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return &user, nil
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return exists, nil
}

// Update saves profile changes
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	q := squirrel.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix("RETURNING updated_at").
		PlaceholderFormat(squirrel.Dollar)
	if user.Password != "" {
		q = q.Set("password", user.Password)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.UpdatedAt); err != nil {
		switch {
		case dberrors.IsNoRows(err):
			return apperrors.NewResourceNotFoundError("User not found")
		case dberrors.IsDuplicateConstraintError(err, usersEmailKey):
			return apperrors.NewConflictError("Email is already in use")
		}
		return fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return nil
}

// Ping reports whether the store answers within the query timeout
func (r *UserRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.db.Ping(ctx); err != nil {
		return apperrors.NewServiceUnavailableError("Database is unavailable, please try again later", err)
	}
	return nil
}
