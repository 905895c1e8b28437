package dto

import (
	"time"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
)

// CreateEventRequest is bound from multipart form fields. Date accepts RFC 3339,
// "2006-01-02T15:04" (datetime-local inputs) or a plain date.
type CreateEventRequest struct {
	Title       string   `form:"title" json:"title" binding:"required,notblank"`
	Description string   `form:"description" json:"description" binding:"required,notblank"`
	Date        string   `form:"date" json:"date" binding:"required"`
	Location    string   `form:"location" json:"location" binding:"required,notblank"`
	Type        string   `form:"type" json:"type" binding:"required,oneof=online offline"`
	ClubID      int64    `form:"club" json:"club" binding:"required,gt=0"`
	Fee         *float64 `form:"fee" json:"fee" binding:"omitempty,gte=0"`
	Label       string   `form:"label" json:"label"`
}

// UpdateEventRequest carries only the fields being changed
type UpdateEventRequest struct {
	Title       *string  `form:"title" json:"title" binding:"omitempty,notblank"`
	Description *string  `form:"description" json:"description" binding:"omitempty,notblank"`
	Date        *string  `form:"date" json:"date"`
	Location    *string  `form:"location" json:"location" binding:"omitempty,notblank"`
	Type        *string  `form:"type" json:"type" binding:"omitempty,oneof=online offline"`
	ClubID      *int64   `form:"club" json:"club" binding:"omitempty,gt=0"`
	Fee         *float64 `form:"fee" json:"fee" binding:"omitempty,gte=0"`
	Label       *string  `form:"label" json:"label"`
}

// RegistrationResponse is one registration entry
type RegistrationResponse struct {
	User         *models.UserSummary `json:"user,omitempty"`
	UserID       int64               `json:"userId"`
	RegisteredAt time.Time           `json:"registeredAt"`
}

// EventResponse represents an event with its derived status
type EventResponse struct {
	ID            int64                  `json:"id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Date          time.Time              `json:"date"`
	Location      string                 `json:"location"`
	Type          string                 `json:"type"`
	Fee           float64                `json:"fee"`
	Label         string                 `json:"label"`
	Image         *string                `json:"image,omitempty"`
	Status        string                 `json:"status"`
	Organizer     *models.UserSummary    `json:"organizer,omitempty"`
	OrganizerID   int64                  `json:"organizerId"`
	Club          int64                  `json:"club"`
	Registrations []RegistrationResponse `json:"registrations"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// NewRegistrationListResponse converts registrations
func NewRegistrationListResponse(regs []models.Registration) []RegistrationResponse {
	out := make([]RegistrationResponse, 0, len(regs))
	for _, r := range regs {
		out = append(out, RegistrationResponse{User: r.User, UserID: r.UserID, RegisteredAt: r.RegisteredAt})
	}
	return out
}

// NewEventResponse converts an event model, deriving status at now
func NewEventResponse(e *models.Event, now time.Time) EventResponse {
	return EventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Date:          e.Date,
		Location:      e.Location,
		Type:          string(e.Type),
		Fee:           e.Fee,
		Label:         e.Label,
		Image:         e.Image,
		Status:        string(e.Status(now)),
		Organizer:     e.Organizer,
		OrganizerID:   e.OrganizerID,
		Club:          e.ClubID,
		Registrations: NewRegistrationListResponse(e.Registrations),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// NewEventListResponse converts a slice of events
func NewEventListResponse(events []models.Event, now time.Time) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, NewEventResponse(&events[i], now))
	}
	return out
}
