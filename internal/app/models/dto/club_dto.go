package dto

import (
	"time"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
)

// CreateClubRequest is bound from multipart form fields; the image travels separately.
type CreateClubRequest struct {
	Name        string              `form:"name" json:"name" binding:"required,notblank"`
	Description string              `form:"description" json:"description" binding:"required,notblank"`
	Category    models.ClubCategory `form:"category" json:"category" binding:"required,oneof=Technical Cultural Sports Academic Other"`
}

// UpdateClubRequest carries only the fields being changed
type UpdateClubRequest struct {
	Name        *string              `form:"name" json:"name" binding:"omitempty,notblank"`
	Description *string              `form:"description" json:"description" binding:"omitempty,notblank"`
	Category    *models.ClubCategory `form:"category" json:"category" binding:"omitempty,oneof=Technical Cultural Sports Academic Other"`
}

// ClubMemberResponse is one membership entry
type ClubMemberResponse struct {
	User     *models.UserSummary `json:"user,omitempty"`
	UserID   int64               `json:"userId"`
	Role     string              `json:"role"`
	JoinedAt time.Time           `json:"joinedAt"`
}

// ClubResponse represents a club with its members and event ids
type ClubResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Image       *string              `json:"image,omitempty"`
	Members     []ClubMemberResponse `json:"members"`
	Events      []int64              `json:"events"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// NewClubResponse converts a club model
func NewClubResponse(c *models.Club) ClubResponse {
	members := make([]ClubMemberResponse, 0, len(c.Members))
	for _, m := range c.Members {
		members = append(members, ClubMemberResponse{
			User:     m.User,
			UserID:   m.UserID,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}
	events := c.EventIDs
	if events == nil {
		events = []int64{}
	}
	return ClubResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Category:    string(c.Category),
		Image:       c.Image,
		Members:     members,
		Events:      events,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// NewClubListResponse converts a slice of clubs
func NewClubListResponse(clubs []models.Club) []ClubResponse {
	out := make([]ClubResponse, 0, len(clubs))
	for i := range clubs {
		out = append(out, NewClubResponse(&clubs[i]))
	}
	return out
}
