package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/repositories"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/cache"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/filestorage"
)

// ClubService defines club CRUD and the membership policy
type ClubService interface {
	ListClubs(ctx context.Context) ([]models.Club, error)
	GetClub(ctx context.Context, id int64) (*models.Club, error)
	CreateClub(ctx context.Context, req *dto.CreateClubRequest, image *multipart.FileHeader) (*models.Club, error)
	UpdateClub(ctx context.Context, id int64, req *dto.UpdateClubRequest, image *multipart.FileHeader) (*models.Club, error)
	DeleteClub(ctx context.Context, id int64) error
	JoinClub(ctx context.Context, clubID, userID int64) (*models.Club, error)
	LeaveClub(ctx context.Context, clubID, userID int64) (*models.Club, error)
}

// clubServiceImpl implements ClubService
type clubServiceImpl struct {
	clubRepo repositories.IClubRepository
	images   imageStore
	cache    cache.Cache
	logger   zerolog.Logger
}

// NewClubService creates a new ClubService
func NewClubService(clubRepo repositories.IClubRepository, storage filestorage.FileStorage, c cache.Cache, logger zerolog.Logger) ClubService {
	return &clubServiceImpl{
		clubRepo: clubRepo,
		images:   imageStore{storage: storage, entity: "club", subDir: filestorage.ClubsDir, logger: logger},
		cache:    c,
		logger:   logger,
	}
}

// ListClubs returns every club, served from the read cache when fresh
func (s *clubServiceImpl) ListClubs(ctx context.Context) ([]models.Club, error) {
	return cache.Remember(ctx, s.cache, s.logger, cache.ClubListKey, s.clubRepo.List)
}

// GetClub returns one club, served from the read cache when fresh
func (s *clubServiceImpl) GetClub(ctx context.Context, id int64) (*models.Club, error) {
	return cache.Remember(ctx, s.cache, s.logger, cache.ClubKey(id), func(ctx context.Context) (*models.Club, error) {
		return s.clubRepo.GetByID(ctx, id)
	})
}

// CreateClub stores the optional image and inserts the club
func (s *clubServiceImpl) CreateClub(ctx context.Context, req *dto.CreateClubRequest, image *multipart.FileHeader) (*models.Club, error) {
	club := &models.Club{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
	}
	if !club.Category.IsValid() {
		return nil, apperrors.NewValidationError("Invalid category", map[string]string{"category": "must be one of: Technical Cultural Sports Academic Other"})
	}

	path, err := s.images.save(image)
	if err != nil {
		return nil, err
	}
	club.Image = path

	if err := s.clubRepo.Create(ctx, club); err != nil {
		s.images.remove(path)
		return nil, err
	}

	cache.Invalidate(ctx, s.cache, s.logger, cache.ClubsPrefix)
	s.logger.Info().Int64("clubID", club.ID).Str("name", club.Name).Msg("Club created")
	return club, nil
}

// UpdateClub applies the changed fields and swaps the image when a new one is sent
func (s *clubServiceImpl) UpdateClub(ctx context.Context, id int64, req *dto.UpdateClubRequest, image *multipart.FileHeader) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		club.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		club.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		if !req.Category.IsValid() {
			return nil, apperrors.NewValidationError("Invalid category", map[string]string{"category": "must be one of: Technical Cultural Sports Academic Other"})
		}
		club.Category = *req.Category
	}

	newImage, err := s.images.save(image)
	if err != nil {
		return nil, err
	}
	oldImage := club.Image
	if newImage != nil {
		club.Image = newImage
	}

	if err := s.clubRepo.Update(ctx, club); err != nil {
		s.images.remove(newImage)
		return nil, err
	}
	if newImage != nil {
		s.images.remove(oldImage)
	}

	cache.Invalidate(ctx, s.cache, s.logger, cache.ClubsPrefix)
	return club, nil
}

// DeleteClub removes the club together with its events, then their images
func (s *clubServiceImpl) DeleteClub(ctx context.Context, id int64) error {
	images, err := s.clubRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.images.removeAll(images)

	cache.Invalidate(ctx, s.cache, s.logger, cache.ClubsPrefix, cache.EventsPrefix)
	s.logger.Info().Int64("clubID", id).Int("images", len(images)).Msg("Club deleted")
	return nil
}

// JoinClub adds userID as a member. Joining twice is a conflict.
func (s *clubServiceImpl) JoinClub(ctx context.Context, clubID, userID int64) (*models.Club, error) {
	added, err := s.clubRepo.AddMember(ctx, clubID, userID, models.MemberRoleMember)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, apperrors.NewConflictError("Already a member of this club")
	}

	cache.Invalidate(ctx, s.cache, s.logger, cache.ClubsPrefix)
	return s.clubRepo.GetByID(ctx, clubID)
}

// LeaveClub removes userID from the members. Leaving without membership is a bad request.
func (s *clubServiceImpl) LeaveClub(ctx context.Context, clubID, userID int64) (*models.Club, error) {
	removed, err := s.clubRepo.RemoveMember(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		// Tell a missing club apart from a missing membership.
		if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
			return nil, err
		}
		return nil, apperrors.NewBadRequestError("Not a member of this club")
	}

	cache.Invalidate(ctx, s.cache, s.logger, cache.ClubsPrefix)
	return s.clubRepo.GetByID(ctx, clubID)
}
