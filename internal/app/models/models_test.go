package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnnouncementStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to AnnouncementStatus
		want     bool
	}{
		{AnnouncementDraft, AnnouncementActive, true},
		{AnnouncementDraft, AnnouncementArchived, false},
		{AnnouncementActive, AnnouncementArchived, true},
		{AnnouncementActive, AnnouncementDraft, false},
		{AnnouncementArchived, AnnouncementActive, false},
		{AnnouncementArchived, AnnouncementArchived, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestAnnouncement_Visibility(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name        string
		a           Announcement
		visible     bool
		sweepTarget bool
	}{
		{"active without expiry", Announcement{Status: AnnouncementActive}, true, false},
		{"active not yet expired", Announcement{Status: AnnouncementActive, ExpiryDate: &tomorrow}, true, false},
		{"active but expired", Announcement{Status: AnnouncementActive, ExpiryDate: &yesterday}, false, true},
		{"expiring exactly now", Announcement{Status: AnnouncementActive, ExpiryDate: &now}, false, false},
		{"draft", Announcement{Status: AnnouncementDraft}, false, false},
		{"archived and expired", Announcement{Status: AnnouncementArchived, ExpiryDate: &yesterday}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, tt.a.IsVisibleAt(now))
			assert.Equal(t, tt.sweepTarget, tt.a.IsExpiredAt(now))
		})
	}
}

func TestEvent_Status(t *testing.T) {
	now := time.Now()
	past := Event{Date: now.Add(-time.Hour)}
	future := Event{Date: now.Add(time.Hour)}

	assert.Equal(t, EventStatusCompleted, past.Status(now))
	assert.True(t, past.IsPast(now))
	assert.Equal(t, EventStatusUpcoming, future.Status(now))
}

func TestClubCategory_IsValid(t *testing.T) {
	assert.True(t, ClubCategoryTechnical.IsValid())
	assert.False(t, ClubCategory("technical").IsValid())
}
