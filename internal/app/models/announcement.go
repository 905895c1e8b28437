package models

import "time"

// AnnouncementPriority orders announcements in listings.
type AnnouncementPriority string

const (
	PriorityLow    AnnouncementPriority = "low"
	PriorityMedium AnnouncementPriority = "medium"
	PriorityHigh   AnnouncementPriority = "high"
)

// IsValid reports whether p is a known priority.
func (p AnnouncementPriority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// TargetAudience narrows who an announcement is meant for.
type TargetAudience string

const (
	AudienceAll      TargetAudience = "all"
	AudienceStudents TargetAudience = "students"
	AudienceFaculty  TargetAudience = "faculty"
	AudienceAdmin    TargetAudience = "admin"
)

// IsValid reports whether a is a known audience.
func (a TargetAudience) IsValid() bool {
	switch a {
	case AudienceAll, AudienceStudents, AudienceFaculty, AudienceAdmin:
		return true
	}
	return false
}

// AnnouncementStatus is the lifecycle state of an announcement.
type AnnouncementStatus string

const (
	AnnouncementDraft    AnnouncementStatus = "draft"
	AnnouncementActive   AnnouncementStatus = "active"
	AnnouncementArchived AnnouncementStatus = "archived"
)

// IsValid reports whether s is a known status.
func (s AnnouncementStatus) IsValid() bool {
	return s == AnnouncementDraft || s == AnnouncementActive || s == AnnouncementArchived
}

// CanTransitionTo reports whether moving from s to next is allowed. Staying in
// the same state is always allowed; archived is terminal.
func (s AnnouncementStatus) CanTransitionTo(next AnnouncementStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case AnnouncementDraft:
		return next == AnnouncementActive
	case AnnouncementActive:
		return next == AnnouncementArchived
	}
	return false
}

// Announcement is a broadcast message
type Announcement struct {
	ID             int64                `json:"id" db:"id"`
	Title          string               `json:"title" db:"title"`
	Content        string               `json:"content" db:"content"`
	Priority       AnnouncementPriority `json:"priority" db:"priority"`
	TargetAudience TargetAudience       `json:"targetAudience" db:"target_audience"`
	Status         AnnouncementStatus   `json:"status" db:"status"`
	ExpiryDate     *time.Time           `json:"expiryDate,omitempty" db:"expiry_date"`
	CreatedBy      int64                `json:"createdBy" db:"created_by"`
	UpdatedBy      *int64               `json:"updatedBy,omitempty" db:"updated_by"`
	CreatedAt      time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time            `json:"updatedAt" db:"updated_at"`

	Creator *UserSummary `json:"creator,omitempty"`
}

// OwnerID is the user holding mutation rights besides admins.
func (a *Announcement) OwnerID() int64 {
	return a.CreatedBy
}

// IsVisibleAt reports whether an audience-facing listing at now includes a.
func (a *Announcement) IsVisibleAt(now time.Time) bool {
	if a.Status != AnnouncementActive {
		return false
	}
	return a.ExpiryDate == nil || a.ExpiryDate.After(now)
}

// IsExpiredAt reports whether the expiry sweep would archive a at now.
func (a *Announcement) IsExpiredAt(now time.Time) bool {
	return a.Status == AnnouncementActive && a.ExpiryDate != nil && a.ExpiryDate.Before(now)
}

// AnnouncementFilter narrows an announcement listing.
type AnnouncementFilter struct {
	Status         *AnnouncementStatus
	Priority       *AnnouncementPriority
	TargetAudience *TargetAudience
	// VisibleAt, when set, keeps only rows with no expiry or an expiry after it.
	VisibleAt *time.Time
	Offset    uint64
	Limit     uint64
}
