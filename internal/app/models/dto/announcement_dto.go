package dto

import (
	"time"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
)

// CreateAnnouncementRequest represents a new announcement
type CreateAnnouncementRequest struct {
	Title          string     `json:"title" binding:"required,notblank"`
	Content        string     `json:"content" binding:"required,notblank"`
	Priority       string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	TargetAudience string     `json:"targetAudience" binding:"omitempty,oneof=all students faculty admin"`
	Status         string     `json:"status" binding:"omitempty,oneof=draft active"`
	ExpiryDate     *time.Time `json:"expiryDate"`
}

// UpdateAnnouncementRequest is a partial update. Status may only follow the lifecycle.
type UpdateAnnouncementRequest struct {
	Title          *string    `json:"title" binding:"omitempty,notblank"`
	Content        *string    `json:"content" binding:"omitempty,notblank"`
	Priority       *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	TargetAudience *string    `json:"targetAudience" binding:"omitempty,oneof=all students faculty admin"`
	Status         *string    `json:"status" binding:"omitempty,oneof=draft active archived"`
	ExpiryDate     *time.Time `json:"expiryDate"`
	ClearExpiry    bool       `json:"clearExpiry"`
}

// AnnouncementQuery holds the listing filters; page and limit are read separately.
type AnnouncementQuery struct {
	Status         string `form:"status" binding:"omitempty,oneof=draft active archived"`
	Priority       string `form:"priority" binding:"omitempty,oneof=low medium high"`
	TargetAudience string `form:"targetAudience" binding:"omitempty,oneof=all students faculty admin"`
	Page           int    `form:"-"`
	Limit          int    `form:"-"`
}

// AnnouncementResponse represents an announcement
type AnnouncementResponse struct {
	ID             int64               `json:"id"`
	Title          string              `json:"title"`
	Content        string              `json:"content"`
	Priority       string              `json:"priority"`
	TargetAudience string              `json:"targetAudience"`
	Status         string              `json:"status"`
	ExpiryDate     *time.Time          `json:"expiryDate,omitempty"`
	CreatedBy      int64               `json:"createdBy"`
	Creator        *models.UserSummary `json:"creator,omitempty"`
	UpdatedBy      *int64              `json:"updatedBy,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// ArchiveExpiredResponse reports how many rows the sweep touched.
type ArchiveExpiredResponse struct {
	Archived int64 `json:"archived"`
}

// NewAnnouncementResponse converts an announcement model
func NewAnnouncementResponse(a *models.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:             a.ID,
		Title:          a.Title,
		Content:        a.Content,
		Priority:       string(a.Priority),
		TargetAudience: string(a.TargetAudience),
		Status:         string(a.Status),
		ExpiryDate:     a.ExpiryDate,
		CreatedBy:      a.CreatedBy,
		Creator:        a.Creator,
		UpdatedBy:      a.UpdatedBy,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// NewAnnouncementListResponse converts a slice of announcements
func NewAnnouncementListResponse(items []models.Announcement) []AnnouncementResponse {
	out := make([]AnnouncementResponse, 0, len(items))
	for i := range items {
		out = append(out, NewAnnouncementResponse(&items[i]))
	}
	return out
}
