package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/repositories"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

func titles(items []models.Announcement) []string {
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.Title)
	}
	return out
}

func TestAnnouncementService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.gen.SeedUser(t, f.store, models.RoleAdmin, "pw")
	user := f.gen.SeedUser(t, f.store, models.RoleUser, "pw")

	t.Run("defaults", func(t *testing.T) {
		a, err := f.services.Announcement.CreateAnnouncement(ctx, admin, &dto.CreateAnnouncementRequest{Title: "Hello", Content: "World"})

		require.NoError(t, err)
		assert.Equal(t, models.PriorityMedium, a.Priority)
		assert.Equal(t, models.AudienceAll, a.TargetAudience)
		assert.Equal(t, models.AnnouncementActive, a.Status)
		assert.Equal(t, admin.ID, a.CreatedBy)
		require.NotNil(t, a.Creator)
		assert.Equal(t, admin.Email, a.Creator.Email)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		_, err := f.services.Announcement.CreateAnnouncement(ctx, user, &dto.CreateAnnouncementRequest{Title: "Hello", Content: "World"})

		assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))
	})

	t.Run("archived cannot be requested at creation", func(t *testing.T) {
		_, err := f.services.Announcement.CreateAnnouncement(ctx, admin, &dto.CreateAnnouncementRequest{Title: "x", Content: "y", Status: "archived"})

		require.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
		assert.Contains(t, apperrors.Details(err)["fields"], "status")
	})
}

func TestAnnouncementService_ListVisibility(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t)
	admin := f.gen.SeedUser(t, f.store, models.RoleAdmin, "pw")
	user := f.gen.SeedUser(t, f.store, models.RoleUser, "pw")
	yesterday := f.now.Add(-24 * time.Hour)
	tomorrow := f.now.Add(24 * time.Hour)

	create := func(req dto.CreateAnnouncementRequest) *models.Announcement {
		a, err := f.services.Announcement.CreateAnnouncement(ctx, admin, &req)
		require.NoError(t, err)
		return a
	}
	create(dto.CreateAnnouncementRequest{Title: "low-all", Content: "c", Priority: "low"})
	create(dto.CreateAnnouncementRequest{Title: "high-students", Content: "c", Priority: "high", TargetAudience: "students", ExpiryDate: &tomorrow})
	create(dto.CreateAnnouncementRequest{Title: "medium-faculty", Content: "c", TargetAudience: "faculty"})
	expired := create(dto.CreateAnnouncementRequest{Title: "expired", Content: "c", Priority: "high", ExpiryDate: &yesterday})
	create(dto.CreateAnnouncementRequest{Title: "draft", Content: "c", Status: "draft"})

	t.Run("anonymous sees active unexpired, ordered by priority", func(t *testing.T) {
		items, page, err := f.services.Announcement.ListAnnouncements(ctx, nil, &dto.AnnouncementQuery{Page: 1, Limit: 10})

		require.NoError(t, err)
		assert.Equal(t, []string{"high-students", "medium-faculty", "low-all"}, titles(items))
		assert.Equal(t, dto.PaginationInfo{CurrentPage: 1, TotalPages: 1, PageSize: 10, TotalItems: 3}, page)
	})

	t.Run("non-admin cannot widen the status filter", func(t *testing.T) {
		items, _, err := f.services.Announcement.ListAnnouncements(ctx, user, &dto.AnnouncementQuery{Status: "draft", Page: 1, Limit: 10})

		require.NoError(t, err)
		assert.NotContains(t, titles(items), "draft")
	})

	t.Run("audience matches itself and all", func(t *testing.T) {
		items, _, err := f.services.Announcement.ListAnnouncements(ctx, user, &dto.AnnouncementQuery{TargetAudience: "students", Page: 1, Limit: 10})

		require.NoError(t, err)
		assert.Equal(t, []string{"high-students", "low-all"}, titles(items))
	})

	t.Run("admin without filter sees everything", func(t *testing.T) {
		items, page, err := f.services.Announcement.ListAnnouncements(ctx, admin, &dto.AnnouncementQuery{Page: 1, Limit: 2})

		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.EqualValues(t, 5, page.TotalItems)
		assert.Equal(t, 3, page.TotalPages)
	})

	t.Run("expiry sweep archives once", func(t *testing.T) {
		n, err := f.services.Announcement.ArchiveExpired(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		again, err := f.services.Announcement.ArchiveExpired(ctx)
		require.NoError(t, err)
		assert.Zero(t, again)

		stored, err := f.services.Announcement.GetAnnouncement(ctx, admin, expired.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AnnouncementArchived, stored.Status)
	})
}

func TestAnnouncementService_Ownership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.gen.SeedUser(t, f.store, models.RoleAdmin, "pw")
	otherAdmin := f.gen.SeedUser(t, f.store, models.RoleAdmin, "pw")
	user := f.gen.SeedUser(t, f.store, models.RoleUser, "pw")

	a, err := f.services.Announcement.CreateAnnouncement(ctx, admin, &dto.CreateAnnouncementRequest{Title: "t", Content: "c", Status: "draft"})
	require.NoError(t, err)

	t.Run("drafts are hidden from other users", func(t *testing.T) {
		_, err := f.services.Announcement.GetAnnouncement(ctx, user, a.ID)
		assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))

		got, err := f.services.Announcement.GetAnnouncement(ctx, admin, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
	})

	t.Run("non-owner user cannot update or delete", func(t *testing.T) {
		title := "hijack"
		_, err := f.services.Announcement.UpdateAnnouncement(ctx, user, a.ID, &dto.UpdateAnnouncementRequest{Title: &title})
		assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))

		err = f.services.Announcement.DeleteAnnouncement(ctx, user, a.ID)
		assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))
	})

	t.Run("status follows the state machine", func(t *testing.T) {
		archived := "archived"
		_, err := f.services.Announcement.UpdateAnnouncement(ctx, admin, a.ID, &dto.UpdateAnnouncementRequest{Status: &archived})
		require.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
		assert.Equal(t, "Invalid status transition from draft to archived", err.Error())

		published, err := f.services.Announcement.PublishAnnouncement(ctx, otherAdmin, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AnnouncementActive, published.Status)
		require.NotNil(t, published.UpdatedBy)
		assert.Equal(t, otherAdmin.ID, *published.UpdatedBy)

		done, err := f.services.Announcement.ArchiveAnnouncement(ctx, admin, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AnnouncementArchived, done.Status)

		_, err = f.services.Announcement.PublishAnnouncement(ctx, admin, a.ID)
		assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	})

	t.Run("archive requires admin", func(t *testing.T) {
		_, err := f.services.Announcement.ArchiveAnnouncement(ctx, user, a.ID)
		assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))
	})

	t.Run("admin may delete any announcement", func(t *testing.T) {
		require.NoError(t, f.services.Announcement.DeleteAnnouncement(ctx, otherAdmin, a.ID))
		_, err := f.services.Announcement.GetAnnouncement(ctx, admin, a.ID)
		assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))
	})
}

func TestAnnouncementService_ClearExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.gen.SeedUser(t, f.store, models.RoleAdmin, "pw")
	tomorrow := f.now.Add(24 * time.Hour)
	a, err := f.services.Announcement.CreateAnnouncement(ctx, admin, &dto.CreateAnnouncementRequest{Title: "t", Content: "c", ExpiryDate: &tomorrow})
	require.NoError(t, err)

	updated, err := f.services.Announcement.UpdateAnnouncement(ctx, admin, a.ID, &dto.UpdateAnnouncementRequest{ClearExpiry: true})

	require.NoError(t, err)
	assert.Nil(t, updated.ExpiryDate)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, admin.ID, *updated.UpdatedBy)
}

// racingAnnouncements applies interfere once, right after the first GetByID has read the row.
type racingAnnouncements struct {
	repositories.IAnnouncementRepository
	once      sync.Once
	interfere func(ctx context.Context, id int64)
}

func (r *racingAnnouncements) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	a, err := r.IAnnouncementRepository.GetByID(ctx, id)
	r.once.Do(func() { r.interfere(ctx, id) })
	return a, err
}

func TestAnnouncementService_ConcurrentStatusChanges(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, status models.AnnouncementStatus, interfere func(repo repositories.IAnnouncementRepository, adminID int64) func(context.Context, int64)) (*fixture, *models.User, *models.Announcement, AnnouncementService) {
		t.Helper()
		f := newFixture(t)
		admin := f.gen.SeedUser(t, f.store, models.RoleAdmin, "pw")
		a, err := f.services.Announcement.CreateAnnouncement(ctx, admin, &dto.CreateAnnouncementRequest{Title: "Hackathon", Content: "Sign up", Status: string(status)})
		require.NoError(t, err)
		repo := &racingAnnouncements{IAnnouncementRepository: f.store.Announcements()}
		repo.interfere = interfere(f.store.Announcements(), admin.ID)
		return f, admin, a, NewAnnouncementService(repo, zerolog.Nop())
	}
	archive := func(repo repositories.IAnnouncementRepository, adminID int64) func(context.Context, int64) {
		return func(ctx context.Context, id int64) {
			_, err := repo.SetStatus(ctx, id, models.AnnouncementArchived, adminID)
			assert.NoError(t, err)
		}
	}

	t.Run("edit racing an archive does not resurrect the row", func(t *testing.T) {
		// Arrange
		f, admin, a, svc := setup(t, models.AnnouncementActive, archive)
		title := "Hackathon (updated)"

		// Act
		_, err := svc.UpdateAnnouncement(ctx, admin, a.ID, &dto.UpdateAnnouncementRequest{Title: &title})

		// Assert
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
		stored, err := f.store.Announcements().GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AnnouncementArchived, stored.Status)
		assert.Equal(t, "Hackathon", stored.Title)
	})

	t.Run("publish racing an archive keeps it archived", func(t *testing.T) {
		f, admin, a, svc := setup(t, models.AnnouncementDraft, archive)

		_, err := svc.PublishAnnouncement(ctx, admin, a.ID)

		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
		stored, err := f.store.Announcements().GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AnnouncementArchived, stored.Status)
	})

	t.Run("publish racing another publish succeeds", func(t *testing.T) {
		_, admin, a, svc := setup(t, models.AnnouncementDraft, func(repo repositories.IAnnouncementRepository, adminID int64) func(context.Context, int64) {
			return func(ctx context.Context, id int64) {
				_, err := repo.SetStatus(ctx, id, models.AnnouncementActive, adminID)
				assert.NoError(t, err)
			}
		})

		published, err := svc.PublishAnnouncement(ctx, admin, a.ID)

		require.NoError(t, err)
		assert.Equal(t, models.AnnouncementActive, published.Status)
	})
}
