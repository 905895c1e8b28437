package models

import "time"

// ClubCategory classifies a club.
type ClubCategory string

const (
	ClubCategoryTechnical ClubCategory = "Technical"
	ClubCategoryCultural  ClubCategory = "Cultural"
	ClubCategorySports    ClubCategory = "Sports"
	ClubCategoryAcademic  ClubCategory = "Academic"
	ClubCategoryOther     ClubCategory = "Other"
)

// ClubCategories lists every accepted category.
var ClubCategories = []ClubCategory{
	ClubCategoryTechnical,
	ClubCategoryCultural,
	ClubCategorySports,
	ClubCategoryAcademic,
	ClubCategoryOther,
}

// IsValid reports whether c is one of ClubCategories.
func (c ClubCategory) IsValid() bool {
	for _, known := range ClubCategories {
		if c == known {
			return true
		}
	}
	return false
}

// MemberRole is a member's standing inside a club.
type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleAdmin  MemberRole = "admin"
)

// Club represents a named student community
type Club struct {
	ID          int64        `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Description string       `json:"description" db:"description"`
	Category    ClubCategory `json:"category" db:"category"`
	Image       *string      `json:"image,omitempty" db:"image"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`

	// Related entities
	Members  []ClubMember `json:"members"`
	EventIDs []int64      `json:"events"`
}

// HasMember reports whether userID appears in the loaded member list.
func (c *Club) HasMember(userID int64) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// ClubMember is one row of the club_members table
type ClubMember struct {
	ClubID   int64      `json:"-" db:"club_id"`
	UserID   int64      `json:"userId" db:"user_id"`
	Role     MemberRole `json:"role" db:"role"`
	JoinedAt time.Time  `json:"joinedAt" db:"joined_at"`

	User *UserSummary `json:"user,omitempty"`
}
