package models

import "time"

// EventType says where an event takes place.
type EventType string

const (
	EventTypeOnline  EventType = "online"
	EventTypeOffline EventType = "offline"
)

// IsValid reports whether t is a known event type.
func (t EventType) IsValid() bool {
	return t == EventTypeOnline || t == EventTypeOffline
}

// EventStatus is derived from the event date, never stored.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusCompleted EventStatus = "completed"
)

// Event is a scheduled activity owned by a club
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date" db:"date"`
	Location    string    `json:"location" db:"location"`
	Type        EventType `json:"type" db:"type"`
	Fee         float64   `json:"fee" db:"fee"`
	Label       string    `json:"label" db:"label"`
	Image       *string   `json:"image,omitempty" db:"image"`
	OrganizerID int64     `json:"organizerId" db:"organizer_id"`
	ClubID      int64     `json:"clubId" db:"club_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	Organizer     *UserSummary   `json:"organizer,omitempty"`
	Registrations []Registration `json:"registrations"`
}

// IsPast reports whether the event date lies before now. Registration closes then.
func (e *Event) IsPast(now time.Time) bool {
	return e.Date.Before(now)
}

// Status derives upcoming/completed from the date.
func (e *Event) Status(now time.Time) EventStatus {
	if e.IsPast(now) {
		return EventStatusCompleted
	}
	return EventStatusUpcoming
}

// Registration is one row of the event_registrations table
type Registration struct {
	EventID      int64     `json:"-" db:"event_id"`
	UserID       int64     `json:"userId" db:"user_id"`
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`

	User *UserSummary `json:"user,omitempty"`
}
