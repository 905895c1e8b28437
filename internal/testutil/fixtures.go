package testutil

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/auth"
)

// PNG is the smallest header mimetype recognises as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// DataGenerator creates realistic fixtures
type DataGenerator struct {
	faker *gofakeit.Faker
}

// NewDataGenerator creates a generator. A seed makes the output repeatable.
func NewDataGenerator(seed ...int64) *DataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &DataGenerator{faker: gofakeit.New(uint64(s))}
}

// Email returns a unique-looking lowercase email.
func (g *DataGenerator) Email() string {
	return strings.ToLower(fmt.Sprintf("%s.%d@%s", g.faker.Username(), g.faker.Number(1000, 9999), g.faker.DomainName()))
}

// Name returns a person name.
func (g *DataGenerator) Name() string {
	return g.faker.Name()
}

// Password returns a random password.
func (g *DataGenerator) Password() string {
	return g.faker.Password(true, true, true, false, false, 12)
}

// ClubName returns a plausible club name.
func (g *DataGenerator) ClubName() string {
	return fmt.Sprintf("%s %s Club %d", g.faker.Adjective(), g.faker.HackerNoun(), g.faker.Number(1000, 9999))
}

// Sentence returns filler text.
func (g *DataGenerator) Sentence() string {
	return g.faker.HackerPhrase()
}

// SeedUser stores a user with the given role and plaintext password and returns
// it without the hash.
func (g *DataGenerator) SeedUser(t *testing.T, store *Store, role models.Role, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{Name: g.Name(), Email: g.Email(), Password: hash, Role: role}
	require.NoError(t, store.Users().Create(context.Background(), user))
	user.Password = ""
	return user
}

// SeedClub stores a club.
func (g *DataGenerator) SeedClub(t *testing.T, store *Store) *models.Club {
	t.Helper()
	club := &models.Club{Name: g.ClubName(), Description: g.Sentence(), Category: models.ClubCategoryTechnical}
	require.NoError(t, store.Clubs().Create(context.Background(), club))
	return club
}

// SeedEvent stores an event of club dated at date.
func (g *DataGenerator) SeedEvent(t *testing.T, store *Store, clubID, organizerID int64, date time.Time) *models.Event {
	t.Helper()
	event := &models.Event{
		Title:       g.faker.HackerPhrase(),
		Description: g.Sentence(),
		Date:        date,
		Location:    g.faker.City(),
		Type:        models.EventTypeOffline,
		OrganizerID: organizerID,
		ClubID:      clubID,
	}
	require.NoError(t, store.Events().Create(context.Background(), event))
	return event
}

// FileHeader builds a real *multipart.FileHeader the way gin hands it to controllers.
func FileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}

// Storage is a FileStorage that records what was saved and deleted.
type Storage struct {
	mu      sync.Mutex
	Saved   []string
	Deleted []string
	// SaveErr and DeleteErr, when set, are returned by the matching call.
	SaveErr   error
	DeleteErr error
}

func (s *Storage) SaveFileWithPath(fh *multipart.FileHeader, subPath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return "", s.SaveErr
	}
	p := path.Join("/uploads", subPath, fmt.Sprintf("%d-%s", len(s.Saved)+1, fh.Filename))
	s.Saved = append(s.Saved, p)
	return p, nil
}

func (s *Storage) DeleteFile(filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, filePath)
	return s.DeleteErr
}

// DeletedPaths returns a copy of the deleted paths.
func (s *Storage) DeletedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Deleted...)
}
