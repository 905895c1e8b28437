// Package services implements the resource policies: registration and login,
// club membership, event registration and the announcement lifecycle.
package services

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/repositories"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/auth"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/cache"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/filestorage"
)

// Dependencies are the collaborators shared by the services.
type Dependencies struct {
	Users         repositories.IUserRepository
	Clubs         repositories.IClubRepository
	Events        repositories.IEventRepository
	Announcements repositories.IAnnouncementRepository
	Tokens        *auth.JWTService
	Storage       filestorage.FileStorage
	Cache         cache.Cache
	AdminKey      string
	Logger        zerolog.Logger
}

// Services groups every service the controllers and jobs use.
type Services struct {
	Auth         AuthService
	Club         ClubService
	Event        EventService
	Announcement AnnouncementService
}

// NewServices wires all services over deps.
func NewServices(deps Dependencies) *Services {
	return &Services{
		Auth:         NewAuthService(deps.Users, deps.Tokens, deps.AdminKey, deps.Logger.With().Str("service", "auth").Logger()),
		Club:         NewClubService(deps.Clubs, deps.Storage, deps.Cache, deps.Logger.With().Str("service", "club").Logger()),
		Event:        NewEventService(deps.Events, deps.Storage, deps.Cache, deps.Logger.With().Str("service", "event").Logger()),
		Announcement: NewAnnouncementService(deps.Announcements, deps.Logger.With().Str("service", "announcement").Logger()),
	}
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
