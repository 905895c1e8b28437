package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("links the event to its club", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		admin := f.gen.SeedUser(t, f.store, models.RoleAdmin, "pw")
		club := f.gen.SeedClub(t, f.store)
		fee := 5.0

		// Act
		event, err := f.services.Event.CreateEvent(ctx, admin.ID, &dto.CreateEventRequest{
			Title: "Hack night", Description: "Build things", Date: "2026-03-20T18:30", Location: "Lab",
			Type: "offline", ClubID: club.ID, Fee: &fee, Label: "workshop",
		}, nil)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 20, 18, 30, 0, 0, time.UTC), event.Date)
		assert.Equal(t, 5.0, event.Fee)
		require.NotNil(t, event.Organizer)
		assert.Equal(t, admin.Email, event.Organizer.Email)
		assert.Equal(t, models.EventStatusUpcoming, event.Status(f.now))

		gotClub, err := f.services.Club.GetClub(ctx, club.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{event.ID}, gotClub.EventIDs)
	})

	t.Run("unknown club is a bad request", func(t *testing.T) {
		f := newFixture(t)
		admin := f.gen.SeedUser(t, f.store, models.RoleAdmin, "pw")

		_, err := f.services.Event.CreateEvent(ctx, admin.ID, &dto.CreateEventRequest{
			Title: "x", Description: "x", Date: "2026-03-20", Location: "x", Type: "online", ClubID: 404,
		}, nil)

		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
		assert.Equal(t, "Invalid club ID", err.Error())
		events, err := f.services.Event.ListEvents(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("unparseable date is a validation error", func(t *testing.T) {
		f := newFixture(t)
		club := f.gen.SeedClub(t, f.store)

		_, err := f.services.Event.CreateEvent(ctx, 1, &dto.CreateEventRequest{
			Title: "x", Description: "x", Date: "soon", Location: "x", Type: "online", ClubID: club.ID,
		}, nil)

		assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	})
}

func TestEventService_RegisterForEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("past event is refused", func(t *testing.T) {
		f := newFixture(t)
		admin := f.gen.SeedUser(t, f.store, models.RoleAdmin, "pw")
		bob := f.gen.SeedUser(t, f.store, models.RoleUser, "pw")
		club := f.gen.SeedClub(t, f.store)
		past := f.gen.SeedEvent(t, f.store, club.ID, admin.ID, f.now.Add(-24*time.Hour))

		_, err := f.services.Event.RegisterForEvent(ctx, past.ID, bob.ID)

		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
		assert.Equal(t, "Cannot register for past events", err.Error())
	})

	t.Run("future event registers once", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		admin := f.gen.SeedUser(t, f.store, models.RoleAdmin, "pw")
		bob := f.gen.SeedUser(t, f.store, models.RoleUser, "pw")
		club := f.gen.SeedClub(t, f.store)
		next := f.gen.SeedEvent(t, f.store, club.ID, admin.ID, f.now.Add(7*24*time.Hour))
		_, err := f.services.Event.GetEvent(ctx, next.ID) // warm cache
		require.NoError(t, err)

		// Act
		event, err := f.services.Event.RegisterForEvent(ctx, next.ID, bob.ID)
		_, againErr := f.services.Event.RegisterForEvent(ctx, next.ID, bob.ID)

		// Assert
		require.NoError(t, err)
		require.Len(t, event.Registrations, 1)
		assert.Equal(t, bob.ID, event.Registrations[0].UserID)
		assert.Equal(t, f.now, event.Registrations[0].RegisteredAt)
		assert.True(t, apperrors.Is(againErr, apperrors.ErrConflict))
		assert.Equal(t, "Already registered for this event", againErr.Error())

		cached, err := f.services.Event.GetEvent(ctx, next.ID)
		require.NoError(t, err)
		assert.Len(t, cached.Registrations, 1)

		regs, err := f.services.Event.ListRegistrations(ctx, next.ID)
		require.NoError(t, err)
		require.Len(t, regs, 1)
		assert.Equal(t, bob.Name, regs[0].User.Name)
	})

	t.Run("unknown event is not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.services.Event.RegisterForEvent(ctx, 12345, 1)
		assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))
		_, err = f.services.Event.ListRegistrations(ctx, 12345)
		assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))
	})
}

func TestEventService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.gen.SeedUser(t, f.store, models.RoleAdmin, "pw")
	club := f.gen.SeedClub(t, f.store)
	event := f.gen.SeedEvent(t, f.store, club.ID, admin.ID, f.now.Add(time.Hour))
	_, err := f.services.Event.ListEvents(ctx)
	require.NoError(t, err)

	title := "Renamed"
	badType := "hybrid"
	_, err = f.services.Event.UpdateEvent(ctx, event.ID, &dto.UpdateEventRequest{Type: &badType}, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))

	updated, err := f.services.Event.UpdateEvent(ctx, event.ID, &dto.UpdateEventRequest{Title: &title}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	list, err := f.services.Event.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Title)

	require.NoError(t, f.services.Event.DeleteEvent(ctx, event.ID))
	err = f.services.Event.DeleteEvent(ctx, event.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))
}
