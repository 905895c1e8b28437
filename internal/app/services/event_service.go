package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/repositories"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/cache"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/filestorage"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/helpers"
)

// EventService defines event CRUD and the registration policy
type EventService interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	CreateEvent(ctx context.Context, organizerID int64, req *dto.CreateEventRequest, image *multipart.FileHeader) (*models.Event, error)
	UpdateEvent(ctx context.Context, id int64, req *dto.UpdateEventRequest, image *multipart.FileHeader) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	RegisterForEvent(ctx context.Context, eventID, userID int64) (*models.Event, error)
	ListRegistrations(ctx context.Context, eventID int64) ([]models.Registration, error)
}

type eventServiceImpl struct {
	eventRepo repositories.IEventRepository
	images    imageStore
	cache     cache.Cache
	logger    zerolog.Logger
	now       clock
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repositories.IEventRepository, storage filestorage.FileStorage, c cache.Cache, logger zerolog.Logger) EventService {
	return &eventServiceImpl{
		eventRepo: eventRepo,
		images:    imageStore{storage: storage, entity: "event", subDir: filestorage.EventsDir, logger: logger},
		cache:     c,
		logger:    logger,
	}
}

func parseEventDate(raw string) (time.Time, error) {
	t, err := helpers.ParseDateTime(raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("Invalid date format", map[string]string{
			"date": "must be RFC 3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD",
		})
	}
	return t, nil
}

// ListEvents returns all events ordered by date, served from the read cache when fresh
func (s *eventServiceImpl) ListEvents(ctx context.Context) ([]models.Event, error) {
	return cache.Remember(ctx, s.cache, s.logger, cache.EventListKey, s.eventRepo.List)
}

// GetEvent returns one event, served from the read cache when fresh
func (s *eventServiceImpl) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return cache.Remember(ctx, s.cache, s.logger, cache.EventKey(id), func(ctx context.Context) (*models.Event, error) {
		return s.eventRepo.GetByID(ctx, id)
	})
}

// CreateEvent inserts an event under an existing club
func (s *eventServiceImpl) CreateEvent(ctx context.Context, organizerID int64, req *dto.CreateEventRequest, image *multipart.FileHeader) (*models.Event, error) {
	date, err := parseEventDate(req.Date)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		Location:    strings.TrimSpace(req.Location),
		Type:        models.EventType(req.Type),
		Label:       strings.TrimSpace(req.Label),
		OrganizerID: organizerID,
		ClubID:      req.ClubID,
	}
	if !event.Type.IsValid() {
		return nil, apperrors.NewValidationError("Invalid event type", map[string]string{"type": "must be one of: online offline"})
	}
	if req.Fee != nil {
		event.Fee = *req.Fee
	}

	path, err := s.images.save(image)
	if err != nil {
		return nil, err
	}
	event.Image = path

	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.images.remove(path)
		return nil, err
	}

	cache.Invalidate(ctx, s.cache, s.logger, cache.EventsPrefix, cache.ClubsPrefix)
	s.logger.Info().Int64("eventID", event.ID).Int64("clubID", event.ClubID).Msg("Event created")
	return s.reload(ctx, event), nil
}

// reload fetches the stored event with its organizer, keeping e if that fails.
func (s *eventServiceImpl) reload(ctx context.Context, e *models.Event) *models.Event {
	fresh, err := s.eventRepo.GetByID(ctx, e.ID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("eventID", e.ID).Msg("Failed to reload event after write")
		return e
	}
	return fresh
}

// UpdateEvent applies the changed fields and swaps the image when a new one is sent
func (s *eventServiceImpl) UpdateEvent(ctx context.Context, id int64, req *dto.UpdateEventRequest, image *multipart.FileHeader) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = strings.TrimSpace(*req.Description)
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			return nil, err
		}
		event.Date = date
	}
	if req.Location != nil {
		event.Location = strings.TrimSpace(*req.Location)
	}
	if req.Type != nil {
		t := models.EventType(*req.Type)
		if !t.IsValid() {
			return nil, apperrors.NewValidationError("Invalid event type", map[string]string{"type": "must be one of: online offline"})
		}
		event.Type = t
	}
	if req.ClubID != nil {
		event.ClubID = *req.ClubID
	}
	if req.Fee != nil {
		event.Fee = *req.Fee
	}
	if req.Label != nil {
		event.Label = strings.TrimSpace(*req.Label)
	}

	newImage, err := s.images.save(image)
	if err != nil {
		return nil, err
	}
	oldImage := event.Image
	if newImage != nil {
		event.Image = newImage
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		s.images.remove(newImage)
		return nil, err
	}
	if newImage != nil {
		s.images.remove(oldImage)
	}

	cache.Invalidate(ctx, s.cache, s.logger, cache.EventsPrefix, cache.ClubsPrefix)
	return s.reload(ctx, event), nil
}

// DeleteEvent removes the event and its image
func (s *eventServiceImpl) DeleteEvent(ctx context.Context, id int64) error {
	image, err := s.eventRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.images.remove(image)

	cache.Invalidate(ctx, s.cache, s.logger, cache.EventsPrefix, cache.ClubsPrefix)
	s.logger.Info().Int64("eventID", id).Msg("Event deleted")
	return nil
}

// RegisterForEvent adds userID to the registrations. Past events and repeat
// registrations are refused.
func (s *eventServiceImpl) RegisterForEvent(ctx context.Context, eventID, userID int64) (*models.Event, error) {
	now := s.now.now()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsPast(now) {
		return nil, apperrors.NewBadRequestError("Cannot register for past events")
	}

	added, err := s.eventRepo.AddRegistration(ctx, eventID, userID, now)
	if err != nil {
		return nil, err
	}
	if !added {
		registered, err := s.eventRepo.IsRegistered(ctx, eventID, userID)
		if err != nil {
			return nil, err
		}
		if registered {
			return nil, apperrors.NewConflictError("Already registered for this event")
		}
		// The row changed between the read and the insert.
		if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
			return nil, err
		}
		return nil, apperrors.NewBadRequestError("Cannot register for past events")
	}

	cache.Invalidate(ctx, s.cache, s.logger, cache.EventsPrefix)
	return s.eventRepo.GetByID(ctx, eventID)
}

// ListRegistrations returns the registrations of an existing event
func (s *eventServiceImpl) ListRegistrations(ctx context.Context, eventID int64) ([]models.Registration, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListRegistrations(ctx, eventID)
}
