// Package testutil provides in-memory repositories, a recording file storage and
// fixtures for service, middleware and routing tests.
package testutil

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/repositories"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

// Store is an in-memory database shared by the fake repositories. Every
// operation holds one lock, so set-add and set-remove are atomic like their SQL
// counterparts.
type Store struct {
	mu sync.Mutex

	users         map[int64]models.User
	clubs         map[int64]models.Club
	members       map[int64][]models.ClubMember
	events        map[int64]models.Event
	registrations map[int64][]models.Registration
	announcements map[int64]models.Announcement
	nextID        int64

	// Now stamps created rows. Defaults to time.Now.
	Now func() time.Time
	// PingErr, when set, is returned by the user repository's Ping.
	PingErr error
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:         map[int64]models.User{},
		clubs:         map[int64]models.Club{},
		members:       map[int64][]models.ClubMember{},
		events:        map[int64]models.Event{},
		registrations: map[int64][]models.Registration{},
		announcements: map[int64]models.Announcement{},
		Now:           time.Now,
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) now() time.Time {
	return s.Now().UTC()
}

func (s *Store) summary(userID int64) *models.UserSummary {
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	return &models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Users returns the user repository view.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Clubs returns the club repository view.
func (s *Store) Clubs() *ClubRepository { return &ClubRepository{s: s} }

// Events returns the event repository view.
func (s *Store) Events() *EventRepository { return &EventRepository{s: s} }

// Announcements returns the announcement repository view.
func (s *Store) Announcements() *AnnouncementRepository { return &AnnouncementRepository{s: s} }

var (
	_ repositories.IUserRepository         = (*UserRepository)(nil)
	_ repositories.IClubRepository         = (*ClubRepository)(nil)
	_ repositories.IEventRepository        = (*EventRepository)(nil)
	_ repositories.IAnnouncementRepository = (*AnnouncementRepository)(nil)
)

// UserRepository is the in-memory IUserRepository.
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return apperrors.NewConflictError("User already exists")
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("User not found")
	}
	u.Password = ""
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("User not found")
}

func (r *UserRepository) EmailExists(_ context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[user.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("User not found")
	}
	for _, u := range r.s.users {
		if u.ID != user.ID && u.Email == user.Email {
			return apperrors.NewConflictError("Email is already in use")
		}
	}
	stored.Name = user.Name
	stored.Email = user.Email
	if user.Password != "" {
		stored.Password = user.Password
	}
	stored.UpdatedAt = r.s.now()
	user.UpdatedAt = stored.UpdatedAt
	r.s.users[user.ID] = stored
	return nil
}

func (r *UserRepository) Ping(context.Context) error {
	return r.s.PingErr
}

// ClubRepository is the in-memory IClubRepository.
type ClubRepository struct{ s *Store }

// load assembles a detached copy of a club with its relations. Caller holds the lock.
func (r *ClubRepository) load(id int64) (models.Club, bool) {
	c, ok := r.s.clubs[id]
	if !ok {
		return models.Club{}, false
	}
	c.Members = make([]models.ClubMember, 0, len(r.s.members[id]))
	for _, m := range r.s.members[id] {
		m.User = r.s.summary(m.UserID)
		c.Members = append(c.Members, m)
	}
	events := make([]models.Event, 0)
	for _, e := range r.s.events {
		if e.ClubID == id {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date) {
			return events[i].ID < events[j].ID
		}
		return events[i].Date.Before(events[j].Date)
	})
	c.EventIDs = make([]int64, 0, len(events))
	for _, e := range events {
		c.EventIDs = append(c.EventIDs, e.ID)
	}
	return c, true
}

func (r *ClubRepository) List(context.Context) ([]models.Club, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clubs := make([]models.Club, 0, len(r.s.clubs))
	for id := range r.s.clubs {
		c, _ := r.load(id)
		clubs = append(clubs, c)
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].ID > clubs[j].ID })
	return clubs, nil
}

func (r *ClubRepository) GetByID(_ context.Context, id int64) (*models.Club, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.load(id)
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("Club not found")
	}
	return &c, nil
}

func (r *ClubRepository) nameTaken(name string, except int64) bool {
	for _, c := range r.s.clubs {
		if c.ID != except && c.Name == name {
			return true
		}
	}
	return false
}

func (r *ClubRepository) Create(_ context.Context, club *models.Club) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(club.Name, 0) {
		return apperrors.NewConflictError("A club with this name already exists")
	}
	club.ID = r.s.id()
	club.CreatedAt = r.s.now()
	club.UpdatedAt = club.CreatedAt
	club.Members = []models.ClubMember{}
	club.EventIDs = []int64{}
	stored := *club
	stored.Members, stored.EventIDs = nil, nil
	r.s.clubs[club.ID] = stored
	return nil
}

func (r *ClubRepository) Update(_ context.Context, club *models.Club) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.clubs[club.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("Club not found")
	}
	if r.nameTaken(club.Name, club.ID) {
		return apperrors.NewConflictError("A club with this name already exists")
	}
	stored.Name, stored.Description, stored.Category, stored.Image = club.Name, club.Description, club.Category, club.Image
	stored.UpdatedAt = r.s.now()
	club.UpdatedAt = stored.UpdatedAt
	r.s.clubs[club.ID] = stored
	return nil
}

func (r *ClubRepository) Delete(_ context.Context, id int64) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clubs[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("Club not found")
	}
	images := []string{}
	if c.Image != nil {
		images = append(images, *c.Image)
	}
	for eventID, e := range r.s.events {
		if e.ClubID != id {
			continue
		}
		if e.Image != nil {
			images = append(images, *e.Image)
		}
		delete(r.s.events, eventID)
		delete(r.s.registrations, eventID)
	}
	delete(r.s.clubs, id)
	delete(r.s.members, id)
	return images, nil
}

func (r *ClubRepository) AddMember(_ context.Context, clubID, userID int64, role models.MemberRole) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clubs[clubID]; !ok {
		return false, apperrors.NewResourceNotFoundError("Club not found")
	}
	for _, m := range r.s.members[clubID] {
		if m.UserID == userID {
			return false, nil
		}
	}
	r.s.members[clubID] = append(r.s.members[clubID], models.ClubMember{
		ClubID: clubID, UserID: userID, Role: role, JoinedAt: r.s.now(),
	})
	return true, nil
}

func (r *ClubRepository) RemoveMember(_ context.Context, clubID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	members := r.s.members[clubID]
	for i, m := range members {
		if m.UserID == userID {
			r.s.members[clubID] = append(members[:i:i], members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// EventRepository is the in-memory IEventRepository.
type EventRepository struct{ s *Store }

func (r *EventRepository) load(id int64) (models.Event, bool) {
	e, ok := r.s.events[id]
	if !ok {
		return models.Event{}, false
	}
	e.Organizer = r.s.summary(e.OrganizerID)
	e.Registrations = r.registrations(id)
	return e, true
}

func (r *EventRepository) registrations(eventID int64) []models.Registration {
	regs := make([]models.Registration, 0, len(r.s.registrations[eventID]))
	for _, reg := range r.s.registrations[eventID] {
		reg.User = r.s.summary(reg.UserID)
		regs = append(regs, reg)
	}
	return regs
}

func (r *EventRepository) List(context.Context) ([]models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	events := make([]models.Event, 0, len(r.s.events))
	for id := range r.s.events {
		e, _ := r.load(id)
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date) {
			return events[i].ID < events[j].ID
		}
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

func (r *EventRepository) GetByID(_ context.Context, id int64) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.load(id)
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("Event not found")
	}
	return &e, nil
}

func (r *EventRepository) Create(_ context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clubs[event.ClubID]; !ok {
		return apperrors.NewBadRequestError("Invalid club ID")
	}
	event.ID = r.s.id()
	event.CreatedAt = r.s.now()
	event.UpdatedAt = event.CreatedAt
	event.Registrations = []models.Registration{}
	stored := *event
	stored.Registrations, stored.Organizer = nil, nil
	r.s.events[event.ID] = stored
	return nil
}

func (r *EventRepository) Update(_ context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[event.ID]; !ok {
		return apperrors.NewResourceNotFoundError("Event not found")
	}
	if _, ok := r.s.clubs[event.ClubID]; !ok {
		return apperrors.NewBadRequestError("Invalid club ID")
	}
	event.UpdatedAt = r.s.now()
	stored := *event
	stored.Registrations, stored.Organizer = nil, nil
	r.s.events[event.ID] = stored
	return nil
}

func (r *EventRepository) Delete(_ context.Context, id int64) (*string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("Event not found")
	}
	delete(r.s.events, id)
	delete(r.s.registrations, id)
	return e.Image, nil
}

func (r *EventRepository) AddRegistration(_ context.Context, eventID, userID int64, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok || e.Date.Before(now) {
		return false, nil
	}
	for _, reg := range r.s.registrations[eventID] {
		if reg.UserID == userID {
			return false, nil
		}
	}
	r.s.registrations[eventID] = append(r.s.registrations[eventID], models.Registration{
		EventID: eventID, UserID: userID, RegisteredAt: now,
	})
	return true, nil
}

func (r *EventRepository) IsRegistered(_ context.Context, eventID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, reg := range r.s.registrations[eventID] {
		if reg.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *EventRepository) ListRegistrations(_ context.Context, eventID int64) ([]models.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.registrations(eventID), nil
}

// AnnouncementRepository is the in-memory IAnnouncementRepository.
type AnnouncementRepository struct{ s *Store }

var priorityRank = map[models.AnnouncementPriority]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

func (r *AnnouncementRepository) load(id int64) (models.Announcement, bool) {
	a, ok := r.s.announcements[id]
	if !ok {
		return models.Announcement{}, false
	}
	a.Creator = r.s.summary(a.CreatedBy)
	return a, true
}

func (r *AnnouncementRepository) Create(_ context.Context, a *models.Announcement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[a.CreatedBy]; !ok {
		return apperrors.NewBadRequestError("Creator does not exist")
	}
	a.ID = r.s.id()
	a.CreatedAt = r.s.now()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	stored.Creator = nil
	r.s.announcements[a.ID] = stored
	return nil
}

func (r *AnnouncementRepository) GetByID(_ context.Context, id int64) (*models.Announcement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.load(id)
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("Announcement not found")
	}
	return &a, nil
}

func matches(a models.Announcement, f models.AnnouncementFilter) bool {
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.Priority != nil && a.Priority != *f.Priority {
		return false
	}
	if f.TargetAudience != nil && a.TargetAudience != *f.TargetAudience && a.TargetAudience != models.AudienceAll {
		return false
	}
	if f.VisibleAt != nil && a.ExpiryDate != nil && !a.ExpiryDate.After(*f.VisibleAt) {
		return false
	}
	return true
}

func (r *AnnouncementRepository) List(_ context.Context, f models.AnnouncementFilter) ([]models.Announcement, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]models.Announcement, 0)
	for id := range r.s.announcements {
		a, _ := r.load(id)
		if matches(a, f) {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		pi, pj := priorityRank[all[i].Priority], priorityRank[all[j].Priority]
		if pi != pj {
			return pi < pj
		}
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := int64(len(all))
	start := int(f.Offset)
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if f.Limit > 0 && start+int(f.Limit) < end {
		end = start + int(f.Limit)
	}
	return all[start:end], total, nil
}

func (r *AnnouncementRepository) Update(_ context.Context, a *models.Announcement, expected models.AnnouncementStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.announcements[a.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("Announcement not found")
	}
	if current.Status != expected {
		return apperrors.NewConflictError("Announcement was changed by another request, please retry")
	}
	a.UpdatedAt = r.s.now()
	stored := *a
	stored.Creator = nil
	r.s.announcements[a.ID] = stored
	return nil
}

func (r *AnnouncementRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.announcements[id]; !ok {
		return apperrors.NewResourceNotFoundError("Announcement not found")
	}
	delete(r.s.announcements, id)
	return nil
}

func (r *AnnouncementRepository) SetStatus(_ context.Context, id int64, status models.AnnouncementStatus, updatedBy int64, from ...models.AnnouncementStatus) (*models.Announcement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.announcements[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("Announcement not found")
	}
	if len(from) > 0 && !slices.Contains(from, a.Status) {
		return nil, apperrors.NewConflictError("Announcement was changed by another request, please retry")
	}
	a.Status = status
	a.UpdatedBy = &updatedBy
	a.UpdatedAt = r.s.now()
	r.s.announcements[id] = a
	loaded, _ := r.load(id)
	return &loaded, nil
}

func (r *AnnouncementRepository) ArchiveExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, a := range r.s.announcements {
		if a.IsExpiredAt(now) {
			a.Status = models.AnnouncementArchived
			a.UpdatedAt = r.s.now()
			r.s.announcements[id] = a
			n++
		}
	}
	return n, nil
}
