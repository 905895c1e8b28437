package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/dberrors"
)

const (
	clubsNameKey        = "clubs_name_key"
	clubMembersClubFkey = "club_members_club_id_fkey"
)

// IClubRepository defines club persistence including the membership set
type IClubRepository interface {
	List(ctx context.Context) ([]models.Club, error)
	GetByID(ctx context.Context, id int64) (*models.Club, error)
	Create(ctx context.Context, club *models.Club) error
	Update(ctx context.Context, club *models.Club) error
	// Delete removes the club with its events and returns every image path that
	// belonged to them.
	Delete(ctx context.Context, id int64) ([]string, error)
	// AddMember inserts the membership if absent. added is false when the user
	// was already a member.
	AddMember(ctx context.Context, clubID, userID int64, role models.MemberRole) (added bool, err error)
	// RemoveMember deletes the membership. removed is false when there was none.
	RemoveMember(ctx context.Context, clubID, userID int64) (removed bool, err error)
}

// ClubRepository handles database operations for clubs
type ClubRepository struct {
	baseRepository
}

// NewClubRepository creates a new ClubRepository
func NewClubRepository(base baseRepository) *ClubRepository {
	return &ClubRepository{baseRepository: base}
}

func selectClubs() squirrel.SelectBuilder {
	return squirrel.Select("c.id", "c.name", "c.description", "c.category", "c.image", "c.created_at", "c.updated_at").
		From("clubs c").
		PlaceholderFormat(squirrel.Dollar)
}

func scanClub(row pgx.Row, club *models.Club) error {
	return row.Scan(&club.ID, &club.Name, &club.Description, &club.Category, &club.Image, &club.CreatedAt, &club.UpdatedAt)
}

// List returns every club, newest first, with members and event ids
func (r *ClubRepository) List(ctx context.Context) ([]models.Club, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := selectClubs().OrderBy("c.created_at DESC", "c.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	defer rows.Close()

	clubs := make([]models.Club, 0)
	for rows.Next() {
		var club models.Club
		if err := scanClub(rows, &club); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		clubs = append(clubs, club)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", dberrors.Translate(err))
	}

	if err := r.attachRelations(ctx, clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}

// GetByID retrieves one club with members and event ids
func (r *ClubRepository) GetByID(ctx context.Context, id int64) (*models.Club, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := selectClubs().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var club models.Club
	if err := scanClub(r.db.QueryRow(ctx, sql, args...), &club); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("Club not found")
		}
		return nil, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}

	clubs := []models.Club{club}
	if err := r.attachRelations(ctx, clubs); err != nil {
		return nil, err
	}
	return &clubs[0], nil
}

// attachRelations loads members and event ids for all clubs in two queries
func (r *ClubRepository) attachRelations(ctx context.Context, clubs []models.Club) error {
	if len(clubs) == 0 {
		return nil
	}
	ids := make([]int64, len(clubs))
	index := make(map[int64]int, len(clubs))
	for i := range clubs {
		ids[i] = clubs[i].ID
		index[clubs[i].ID] = i
		clubs[i].Members = []models.ClubMember{}
		clubs[i].EventIDs = []int64{}
	}

	sql, args, err := squirrel.Select("cm.club_id", "cm.user_id", "cm.role", "cm.joined_at", "u.name", "u.email").
		From("club_members cm").
		Join("users u ON u.id = cm.user_id").
		Where(squirrel.Eq{"cm.club_id": ids}).
		OrderBy("cm.joined_at", "cm.user_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	for rows.Next() {
		var m models.ClubMember
		user := &models.UserSummary{}
		if err := rows.Scan(&m.ClubID, &m.UserID, &m.Role, &m.JoinedAt, &user.Name, &user.Email); err != nil {
			rows.Close()
			return fmt.Errorf("error scanning row: %w", err)
		}
		user.ID = m.UserID
		m.User = user
		i := index[m.ClubID]
		clubs[i].Members = append(clubs[i].Members, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", dberrors.Translate(err))
	}

	sql, args, err = squirrel.Select("e.club_id", "e.id").
		From("events e").
		Where(squirrel.Eq{"e.club_id": ids}).
		OrderBy("e.date", "e.id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	rows, err = r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	defer rows.Close()
	for rows.Next() {
		var clubID, eventID int64
		if err := rows.Scan(&clubID, &eventID); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		i := index[clubID]
		clubs[i].EventIDs = append(clubs[i].EventIDs, eventID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", dberrors.Translate(err))
	}
	return nil
}

// Create inserts a club
func (r *ClubRepository) Create(ctx context.Context, club *models.Club) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Insert("clubs").
		Columns("name", "description", "category", "image").
		Values(club.Name, club.Description, club.Category, club.Image).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&club.ID, &club.CreatedAt, &club.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, clubsNameKey) {
			return apperrors.NewConflictError("A club with this name already exists")
		}
		return fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	club.Members = []models.ClubMember{}
	club.EventIDs = []int64{}
	return nil
}

// Update saves the editable club fields
func (r *ClubRepository) Update(ctx context.Context, club *models.Club) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Update("clubs").
		Set("name", club.Name).
		Set("description", club.Description).
		Set("category", club.Category).
		Set("image", club.Image).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": club.ID}).
		Suffix("RETURNING updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&club.UpdatedAt); err != nil {
		switch {
		case dberrors.IsNoRows(err):
			return apperrors.NewResourceNotFoundError("Club not found")
		case dberrors.IsDuplicateConstraintError(err, clubsNameKey):
			return apperrors.NewConflictError("A club with this name already exists")
		}
		return fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return nil
}

// deleteClubSQL collects event images before the cascade removes the rows; all
// parts of the statement see the same snapshot.
const deleteClubSQL = `
WITH ev AS (
    SELECT image FROM events WHERE club_id = $1 AND image IS NOT NULL
), del AS (
    DELETE FROM clubs WHERE id = $1 RETURNING image
)
SELECT (SELECT COUNT(*) FROM del),
       ARRAY(SELECT image FROM del WHERE image IS NOT NULL UNION ALL SELECT image FROM ev)`

// Delete removes a club; events, registrations and memberships cascade
func (r *ClubRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var deleted int64
	var images []string
	if err := r.db.QueryRow(ctx, deleteClubSQL, id).Scan(&deleted, &images); err != nil {
		return nil, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	if deleted == 0 {
		return nil, apperrors.NewResourceNotFoundError("Club not found")
	}
	return images, nil
}

// AddMember adds userID to the club unless already present, in one statement
func (r *ClubRepository) AddMember(ctx context.Context, clubID, userID int64, role models.MemberRole) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Insert("club_members").
		Columns("club_id", "user_id", "role").
		Values(clubID, userID, role).
		Suffix("ON CONFLICT (club_id, user_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err, clubMembersClubFkey) {
			return false, apperrors.NewResourceNotFoundError("Club not found")
		}
		return false, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return tag.RowsAffected() == 1, nil
}

// RemoveMember deletes the membership row
func (r *ClubRepository) RemoveMember(ctx context.Context, clubID, userID int64) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Delete("club_members").
		Where(squirrel.Eq{"club_id": clubID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return tag.RowsAffected() == 1, nil
}
