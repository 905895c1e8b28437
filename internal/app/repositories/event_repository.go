package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/db"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/dberrors"
)

const eventsClubFkey = "events_club_id_fkey"

// IEventRepository defines event persistence including the registration set
type IEventRepository interface {
	// List returns events ordered by date ascending.
	List(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	// Create inserts the event and links it to its club atomically. A missing
	// club is a bad request and leaves nothing behind.
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	// Delete removes the event and returns its image path, if any.
	Delete(ctx context.Context, id int64) (*string, error)
	// AddRegistration registers userID unless already registered or the event date
	// is before now. added is false in both refused cases.
	AddRegistration(ctx context.Context, eventID, userID int64, now time.Time) (added bool, err error)
	IsRegistered(ctx context.Context, eventID, userID int64) (bool, error)
	ListRegistrations(ctx context.Context, eventID int64) ([]models.Registration, error)
}

// EventRepository handles database operations for events
type EventRepository struct {
	baseRepository
	database *db.PostgresDB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(base baseRepository, database *db.PostgresDB) *EventRepository {
	return &EventRepository{baseRepository: base, database: database}
}

func selectEvents() squirrel.SelectBuilder {
	return squirrel.Select(
		"e.id", "e.title", "e.description", "e.date", "e.location", "e.type", "e.fee", "e.label", "e.image",
		"e.organizer_id", "e.club_id", "e.created_at", "e.updated_at", "u.name", "u.email",
	).
		From("events e").
		LeftJoin("users u ON u.id = e.organizer_id").
		PlaceholderFormat(squirrel.Dollar)
}

func scanEvent(row pgx.Row, e *models.Event) error {
	var organizerName, organizerEmail *string
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.Type, &e.Fee, &e.Label, &e.Image,
		&e.OrganizerID, &e.ClubID, &e.CreatedAt, &e.UpdatedAt, &organizerName, &organizerEmail,
	)
	if err != nil {
		return err
	}
	if organizerName != nil {
		e.Organizer = &models.UserSummary{ID: e.OrganizerID, Name: *organizerName, Email: *organizerEmail}
	}
	return nil
}

// List returns every event with registrations, earliest first
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := selectEvents().OrderBy("e.date ASC", "e.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var e models.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", dberrors.Translate(err))
	}
	rows.Close()

	if err := r.attachRegistrations(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetByID retrieves one event with registrations
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := selectEvents().Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var e models.Event
	if err := scanEvent(r.db.QueryRow(ctx, sql, args...), &e); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("Event not found")
		}
		return nil, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}

	events := []models.Event{e}
	if err := r.attachRegistrations(ctx, events); err != nil {
		return nil, err
	}
	return &events[0], nil
}

func (r *EventRepository) attachRegistrations(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]int64, len(events))
	index := make(map[int64]int, len(events))
	for i := range events {
		ids[i] = events[i].ID
		index[events[i].ID] = i
		events[i].Registrations = []models.Registration{}
	}

	regs, err := r.queryRegistrations(ctx, squirrel.Eq{"er.event_id": ids})
	if err != nil {
		return err
	}
	for _, reg := range regs {
		i := index[reg.EventID]
		events[i].Registrations = append(events[i].Registrations, reg)
	}
	return nil
}

func (r *EventRepository) queryRegistrations(ctx context.Context, where squirrel.Sqlizer) ([]models.Registration, error) {
	sql, args, err := squirrel.Select("er.event_id", "er.user_id", "er.registered_at", "u.name", "u.email").
		From("event_registrations er").
		Join("users u ON u.id = er.user_id").
		Where(where).
		OrderBy("er.registered_at", "er.user_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	defer rows.Close()

	regs := make([]models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		user := &models.UserSummary{}
		if err := rows.Scan(&reg.EventID, &reg.UserID, &reg.RegisteredAt, &user.Name, &user.Email); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		user.ID = reg.UserID
		reg.User = user
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", dberrors.Translate(err))
	}
	return regs, nil
}

// Create inserts the event inside a transaction that locks the referenced club
// and bumps its updated_at, so the club's event list changes atomically.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var clubID int64
		err := tx.QueryRow(ctx, `SELECT id FROM clubs WHERE id = $1 FOR SHARE`, event.ClubID).Scan(&clubID)
		if err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.NewBadRequestError("Invalid club ID")
			}
			return fmt.Errorf("error executing query: %w", err)
		}

		sql, args, err := squirrel.Insert("events").
			Columns("title", "description", "date", "location", "type", "fee", "label", "image", "organizer_id", "club_id").
			Values(event.Title, event.Description, event.Date, event.Location, event.Type, event.Fee, event.Label,
				event.Image, event.OrganizerID, event.ClubID).
			Suffix("RETURNING id, created_at, updated_at").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}

		if _, err := tx.Exec(ctx, `UPDATE clubs SET updated_at = now() WHERE id = $1`, event.ClubID); err != nil {
			return fmt.Errorf("error linking event to club: %w", err)
		}
		return nil
	})
	if err != nil {
		return dberrors.Translate(err)
	}
	event.Registrations = []models.Registration{}
	return nil
}

// Update saves the editable event fields
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Update("events").
		Set("title", event.Title).
		Set("description", event.Description).
		Set("date", event.Date).
		Set("location", event.Location).
		Set("type", event.Type).
		Set("fee", event.Fee).
		Set("label", event.Label).
		Set("image", event.Image).
		Set("club_id", event.ClubID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": event.ID}).
		Suffix("RETURNING updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&event.UpdatedAt); err != nil {
		switch {
		case dberrors.IsNoRows(err):
			return apperrors.NewResourceNotFoundError("Event not found")
		case dberrors.IsForeignKeyError(err, eventsClubFkey):
			return apperrors.NewBadRequestError("Invalid club ID")
		}
		return fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return nil
}

// Delete removes the event; registrations cascade
func (r *EventRepository) Delete(ctx context.Context, id int64) (*string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var image *string
	err := r.db.QueryRow(ctx, `DELETE FROM events WHERE id = $1 RETURNING image`, id).Scan(&image)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("Event not found")
		}
		return nil, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return image, nil
}

// addRegistrationSQL inserts only while the event has not started; the date check
// and the set-add happen in one statement.
const addRegistrationSQL = `
INSERT INTO event_registrations (event_id, user_id, registered_at)
SELECT e.id, $2, $3 FROM events e WHERE e.id = $1 AND e.date >= $3
ON CONFLICT (event_id, user_id) DO NOTHING`

// AddRegistration registers a user for an event
func (r *EventRepository) AddRegistration(ctx context.Context, eventID, userID int64, now time.Time) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, addRegistrationSQL, eventID, userID, now)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return tag.RowsAffected() == 1, nil
}

// IsRegistered checks the registration set
func (r *EventRepository) IsRegistered(ctx context.Context, eventID, userID int64) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM event_registrations WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", dberrors.Translate(err))
	}
	return exists, nil
}

// ListRegistrations returns an event's registrations in sign-up order
func (r *EventRepository) ListRegistrations(ctx context.Context, eventID int64) ([]models.Registration, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.queryRegistrations(ctx, squirrel.Eq{"er.event_id": eventID})
}
