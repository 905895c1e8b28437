package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/dberrors"
)

// IAnnouncementRepository defines announcement persistence
type IAnnouncementRepository interface {
	Create(ctx context.Context, a *models.Announcement) error
	GetByID(ctx context.Context, id int64) (*models.Announcement, error)
	// List returns one page ordered by priority (high first) then newest, plus
	// the total number of rows matching filter.
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int64, error)
	// Update saves the editable fields only while the stored status is still
	// expected. A row that moved on in the meantime is a Conflict.
	Update(ctx context.Context, a *models.Announcement, expected models.AnnouncementStatus) error
	Delete(ctx context.Context, id int64) error
	// SetStatus moves the row to status. With from set, the row must currently
	// be in one of those states, otherwise the result is a Conflict.
	SetStatus(ctx context.Context, id int64, status models.AnnouncementStatus, updatedBy int64, from ...models.AnnouncementStatus) (*models.Announcement, error)
	// ArchiveExpired archives every active announcement whose expiry is before now.
	ArchiveExpired(ctx context.Context, now time.Time) (int64, error)
}

// AnnouncementRepository handles database operations for announcements
type AnnouncementRepository struct {
	baseRepository
}

// NewAnnouncementRepository creates a new AnnouncementRepository
func NewAnnouncementRepository(base baseRepository) *AnnouncementRepository {
	return &AnnouncementRepository{baseRepository: base}
}

const priorityOrder = "CASE a.priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END"

var announcementColumns = []string{
	"a.id", "a.title", "a.content", "a.priority", "a.target_audience", "a.status", "a.expiry_date",
	"a.created_by", "a.updated_by", "a.created_at", "a.updated_at", "u.name", "u.email",
}

func selectAnnouncements() squirrel.SelectBuilder {
	return squirrel.Select(announcementColumns...).
		From("announcements a").
		LeftJoin("users u ON u.id = a.created_by").
		PlaceholderFormat(squirrel.Dollar)
}

func scanAnnouncement(row pgx.Row, a *models.Announcement) error {
	var creatorName, creatorEmail *string
	err := row.Scan(
		&a.ID, &a.Title, &a.Content, &a.Priority, &a.TargetAudience, &a.Status, &a.ExpiryDate,
		&a.CreatedBy, &a.UpdatedBy, &a.CreatedAt, &a.UpdatedAt, &creatorName, &creatorEmail,
	)
	if err != nil {
		return err
	}
	if creatorName != nil {
		a.Creator = &models.UserSummary{ID: a.CreatedBy, Name: *creatorName, Email: *creatorEmail}
	}
	return nil
}

func announcementConditions(filter models.AnnouncementFilter) squirrel.And {
	conds := squirrel.And{}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"a.status": string(*filter.Status)})
	}
	if filter.Priority != nil {
		conds = append(conds, squirrel.Eq{"a.priority": string(*filter.Priority)})
	}
	if filter.TargetAudience != nil {
		audiences := []string{string(*filter.TargetAudience)}
		if *filter.TargetAudience != models.AudienceAll {
			audiences = append(audiences, string(models.AudienceAll))
		}
		conds = append(conds, squirrel.Eq{"a.target_audience": audiences})
	}
	if filter.VisibleAt != nil {
		conds = append(conds, squirrel.Or{
			squirrel.Eq{"a.expiry_date": nil},
			squirrel.Gt{"a.expiry_date": *filter.VisibleAt},
		})
	}
	return conds
}

// Create inserts an announcement
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Insert("announcements").
		Columns("title", "content", "priority", "target_audience", "status", "expiry_date", "created_by").
		Values(a.Title, a.Content, a.Priority, a.TargetAudience, a.Status, a.ExpiryDate, a.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.NewBadRequestError("Creator does not exist")
		}
		return fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return nil
}

// GetByID retrieves an announcement with its creator
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := selectAnnouncements().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var a models.Announcement
	if err := scanAnnouncement(r.db.QueryRow(ctx, sql, args...), &a); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("Announcement not found")
		}
		return nil, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return &a, nil
}

// List retrieves a filtered, paginated page of announcements
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	conds := announcementConditions(filter)

	countSQL, countArgs, err := squirrel.Select("COUNT(*)").
		From("announcements a").
		Where(conds).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	if total == 0 {
		return []models.Announcement{}, 0, nil
	}

	query := selectAnnouncements().
		Where(conds).
		OrderBy(priorityOrder, "a.created_at DESC", "a.id DESC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	defer rows.Close()

	list := make([]models.Announcement, 0)
	for rows.Next() {
		var a models.Announcement
		if err := scanAnnouncement(rows, &a); err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", dberrors.Translate(err))
	}
	return list, total, nil
}

// errAnnouncementChanged reports a conditional write that lost to a concurrent one.
func errAnnouncementChanged() error {
	return apperrors.NewConflictError("Announcement was changed by another request, please retry")
}

// missingOrChanged explains why a conditional write matched no row.
func (r *AnnouncementRepository) missingOrChanged(ctx context.Context, id int64) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM announcements WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	if !exists {
		return apperrors.NewResourceNotFoundError("Announcement not found")
	}
	return errAnnouncementChanged()
}

// Update saves every editable field, guarded by the status the caller read
func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement, expected models.AnnouncementStatus) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Update("announcements").
		Set("title", a.Title).
		Set("content", a.Content).
		Set("priority", a.Priority).
		Set("target_audience", a.TargetAudience).
		Set("status", a.Status).
		Set("expiry_date", a.ExpiryDate).
		Set("updated_by", a.UpdatedBy).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": a.ID, "status": expected}).
		Suffix("RETURNING updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.UpdatedAt); err != nil {
		if dberrors.IsNoRows(err) {
			return r.missingOrChanged(ctx, a.ID)
		}
		return fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return nil
}

// Delete removes an announcement
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("Announcement not found")
	}
	return nil
}

// SetStatus moves an announcement to status and returns the stored row
func (r *AnnouncementRepository) SetStatus(ctx context.Context, id int64, status models.AnnouncementStatus, updatedBy int64, from ...models.AnnouncementStatus) (*models.Announcement, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	where := squirrel.Eq{"id": id}
	if len(from) > 0 {
		where["status"] = from
	}
	sql, args, err := squirrel.Update("announcements").
		Set("status", status).
		Set("updated_by", updatedBy).
		Set("updated_at", squirrel.Expr("now()")).
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, r.missingOrChanged(ctx, id)
	}
	return r.GetByID(ctx, id)
}

// ArchiveExpired archives active announcements past their expiry date
func (r *AnnouncementRepository) ArchiveExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		`UPDATE announcements SET status = 'archived', updated_at = now()
		 WHERE status = 'active' AND expiry_date IS NOT NULL AND expiry_date < $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return tag.RowsAffected(), nil
}
