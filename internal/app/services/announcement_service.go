package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/auth"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/repositories"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/helpers"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/metrics"
)

// AnnouncementService defines the announcement lifecycle
type AnnouncementService interface {
	CreateAnnouncement(ctx context.Context, creator *models.User, req *dto.CreateAnnouncementRequest) (*models.Announcement, error)
	// ListAnnouncements applies the viewer's visibility: non-admins only ever see
	// active announcements that have not expired.
	ListAnnouncements(ctx context.Context, viewer *models.User, query *dto.AnnouncementQuery) ([]models.Announcement, dto.PaginationInfo, error)
	GetAnnouncement(ctx context.Context, viewer *models.User, id int64) (*models.Announcement, error)
	UpdateAnnouncement(ctx context.Context, actor *models.User, id int64, req *dto.UpdateAnnouncementRequest) (*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, actor *models.User, id int64) error
	ArchiveAnnouncement(ctx context.Context, actor *models.User, id int64) (*models.Announcement, error)
	PublishAnnouncement(ctx context.Context, actor *models.User, id int64) (*models.Announcement, error)
	// ArchiveExpired is the expiry sweep. It is idempotent.
	ArchiveExpired(ctx context.Context) (int64, error)
}

type announcementServiceImpl struct {
	repo   repositories.IAnnouncementRepository
	logger zerolog.Logger
	now    clock
}

// NewAnnouncementService creates a new AnnouncementService
func NewAnnouncementService(repo repositories.IAnnouncementRepository, logger zerolog.Logger) AnnouncementService {
	return &announcementServiceImpl{repo: repo, logger: logger}
}

func requireAdmin(user *models.User, message string) error {
	if user == nil {
		return apperrors.NewUnauthenticatedError(apperrors.ErrUnauthenticated, "Not authenticated")
	}
	if !user.IsAdmin() {
		return apperrors.NewForbiddenError(message)
	}
	return nil
}

func invalidTransition(from, to models.AnnouncementStatus) error {
	return apperrors.NewValidationError(
		fmt.Sprintf("Invalid status transition from %s to %s", from, to),
		map[string]string{"status": fmt.Sprintf("cannot change from %s to %s", from, to)},
	)
}

// CreateAnnouncement creates an announcement. Only admins may create.
func (s *announcementServiceImpl) CreateAnnouncement(ctx context.Context, creator *models.User, req *dto.CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := requireAdmin(creator, "Only admins can create announcements"); err != nil {
		return nil, err
	}

	a := &models.Announcement{
		Title:          strings.TrimSpace(req.Title),
		Content:        strings.TrimSpace(req.Content),
		Priority:       models.PriorityMedium,
		TargetAudience: models.AudienceAll,
		Status:         models.AnnouncementActive,
		ExpiryDate:     req.ExpiryDate,
		CreatedBy:      creator.ID,
	}
	if a.Title == "" || a.Content == "" {
		fields := map[string]string{}
		if a.Title == "" {
			fields["title"] = "is required"
		}
		if a.Content == "" {
			fields["content"] = "is required"
		}
		return nil, apperrors.NewValidationError("Missing required fields", fields)
	}
	if req.Priority != "" {
		a.Priority = models.AnnouncementPriority(req.Priority)
	}
	if req.TargetAudience != "" {
		a.TargetAudience = models.TargetAudience(req.TargetAudience)
	}
	if req.Status != "" {
		a.Status = models.AnnouncementStatus(req.Status)
	}
	invalid := map[string]string{}
	if !a.Priority.IsValid() {
		invalid["priority"] = "must be one of: low medium high"
	}
	if !a.TargetAudience.IsValid() {
		invalid["targetAudience"] = "must be one of: all students faculty admin"
	}
	if a.Status != models.AnnouncementDraft && a.Status != models.AnnouncementActive {
		invalid["status"] = "must be one of: draft active"
	}
	if len(invalid) > 0 {
		return nil, apperrors.NewValidationError("Validation failed", invalid)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	a.Creator = &models.UserSummary{ID: creator.ID, Name: creator.Name, Email: creator.Email}

	s.logger.Info().Int64("announcementID", a.ID).Str("status", string(a.Status)).Msg("Announcement created")
	return a, nil
}

// ListAnnouncements returns one page of announcements the viewer may see
func (s *announcementServiceImpl) ListAnnouncements(ctx context.Context, viewer *models.User, query *dto.AnnouncementQuery) ([]models.Announcement, dto.PaginationInfo, error) {
	filter := models.AnnouncementFilter{}
	filter.Offset, filter.Limit = helpers.CalculateOffsetLimit(query.Page, query.Limit)

	status := models.AnnouncementActive
	switch {
	case !viewer.IsAdmin():
		filter.Status = &status
	case query.Status != "":
		status = models.AnnouncementStatus(query.Status)
		filter.Status = &status
	}
	if filter.Status != nil && *filter.Status == models.AnnouncementActive {
		now := s.now.now()
		filter.VisibleAt = &now
	}
	if query.Priority != "" {
		p := models.AnnouncementPriority(query.Priority)
		filter.Priority = &p
	}
	if query.TargetAudience != "" {
		aud := models.TargetAudience(query.TargetAudience)
		filter.TargetAudience = &aud
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, helpers.NewPaginationInfo(total, query.Page, query.Limit), nil
}

// GetAnnouncement returns one announcement. Drafts are hidden from everyone but
// admins and their creator.
func (s *announcementServiceImpl) GetAnnouncement(ctx context.Context, viewer *models.User, id int64) (*models.Announcement, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == models.AnnouncementDraft && !auth.CanModify(viewer, a) {
		return nil, apperrors.NewResourceNotFoundError("Announcement not found")
	}
	return a, nil
}

// UpdateAnnouncement applies a partial update by the creator or an admin
func (s *announcementServiceImpl) UpdateAnnouncement(ctx context.Context, actor *models.User, id int64, req *dto.UpdateAnnouncementRequest) (*models.Announcement, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireModify(actor, a, "Not authorized to update this announcement"); err != nil {
		return nil, err
	}
	readStatus := a.Status

	if req.Title != nil {
		a.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		a.Content = strings.TrimSpace(*req.Content)
	}
	if req.Priority != nil {
		a.Priority = models.AnnouncementPriority(*req.Priority)
	}
	if req.TargetAudience != nil {
		a.TargetAudience = models.TargetAudience(*req.TargetAudience)
	}
	if req.Status != nil {
		next := models.AnnouncementStatus(*req.Status)
		if !next.IsValid() || !a.Status.CanTransitionTo(next) {
			return nil, invalidTransition(a.Status, next)
		}
		a.Status = next
	}
	switch {
	case req.ClearExpiry:
		a.ExpiryDate = nil
	case req.ExpiryDate != nil:
		a.ExpiryDate = req.ExpiryDate
	}
	updatedBy := actor.ID
	a.UpdatedBy = &updatedBy

	// The write only lands if nobody archived or published the row since it was read.
	if err := s.repo.Update(ctx, a, readStatus); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAnnouncement removes an announcement owned by actor, or any if actor is admin
func (s *announcementServiceImpl) DeleteAnnouncement(ctx context.Context, actor *models.User, id int64) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireModify(actor, a, "Not authorized to delete this announcement"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("announcementID", id).Int64("actorID", actor.ID).Msg("Announcement deleted")
	return nil
}

// ArchiveAnnouncement archives unconditionally. Admin only.
func (s *announcementServiceImpl) ArchiveAnnouncement(ctx context.Context, actor *models.User, id int64) (*models.Announcement, error) {
	if err := requireAdmin(actor, "Not authorized as admin"); err != nil {
		return nil, err
	}
	return s.repo.SetStatus(ctx, id, models.AnnouncementArchived, actor.ID)
}

// PublishAnnouncement moves a draft to active. Admin only.
func (s *announcementServiceImpl) PublishAnnouncement(ctx context.Context, actor *models.User, id int64) (*models.Announcement, error) {
	if err := requireAdmin(actor, "Not authorized as admin"); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == models.AnnouncementActive {
		return a, nil
	}
	if !a.Status.CanTransitionTo(models.AnnouncementActive) {
		return nil, invalidTransition(a.Status, models.AnnouncementActive)
	}
	published, err := s.repo.SetStatus(ctx, id, models.AnnouncementActive, actor.ID, a.Status)
	if apperrors.Is(err, apperrors.ErrConflict) {
		// A concurrent publish is the outcome asked for; anything else is reported.
		if current, getErr := s.repo.GetByID(ctx, id); getErr == nil && current.Status == models.AnnouncementActive {
			return current, nil
		}
	}
	return published, err
}

// ArchiveExpired archives every active announcement whose expiry has passed
func (s *announcementServiceImpl) ArchiveExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.ArchiveExpired(ctx, s.now.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("Expiry sweep failed")
		return 0, err
	}
	if n > 0 {
		metrics.AnnouncementsArchived.Add(float64(n))
		s.logger.Info().Int64("archived", n).Msg("Archived expired announcements")
	}
	return n, nil
}
