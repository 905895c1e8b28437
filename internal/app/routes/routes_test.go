package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/controllers"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models/dto"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/services"
	"github.com/aman-gurjar-dev/TechnoHack/internal/middleware"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/auth"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/cache"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/validation"
	"github.com/aman-gurjar-dev/TechnoHack/internal/testutil"
)

const adminKey = "route-admin-key"

const maxBodyBytes = 64 << 10

type envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       json.RawMessage     `json:"data"`
	Pagination *dto.PaginationInfo `json:"pagination"`
	Error      *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

type apiClient struct {
	t       *testing.T
	router  *gin.Engine
	store   *testutil.Store
	storage *testutil.Storage
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	tokens, err := auth.NewJWTService(auth.JWTConfig{SecretKey: "routes-secret"})
	require.NoError(t, err)

	store := testutil.NewStore()
	storage := &testutil.Storage{}
	svc := services.NewServices(services.Dependencies{
		Users:         store.Users(),
		Clubs:         store.Clubs(),
		Events:        store.Events(),
		Announcements: store.Announcements(),
		Tokens:        tokens,
		Storage:       storage,
		Cache:         cache.NewMemoryCache(time.Minute),
		AdminKey:      adminKey,
		Logger:        zerolog.Nop(),
	})

	router := gin.New()
	router.Use(middleware.Recovery())
	SetupRouter(router, Handlers{
		Auth:           controllers.NewAuthController(svc.Auth, false, zerolog.Nop()),
		Club:           controllers.NewClubController(svc.Club),
		Event:          controllers.NewEventController(svc.Event),
		Announcement:   controllers.NewAnnouncementController(svc.Announcement),
		Health:         controllers.NewHealthController(store.Users(), time.Second),
		AuthMiddleware: middleware.NewAuthMiddleware(tokens, store.Users(), zerolog.Nop()),
		MaxBodyBytes:   maxBodyBytes,
	})
	return &apiClient{t: t, router: router, store: store, storage: storage}
}

func (a *apiClient) send(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (a *apiClient) json(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return a.send(req, token)
}

func (a *apiClient) multipart(method, path, token string, fields map[string]string, image []byte) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "cover.png")
		require.NoError(a.t, err)
		_, err = part.Write(image)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.send(req, token)
}

// register signs up an account and returns its token.
func (a *apiClient) register(name, email, password string, admin bool) string {
	a.t.Helper()
	body := map[string]string{"name": name, "email": email, "password": password}
	if admin {
		body["role"] = "admin"
		body["adminKey"] = adminKey
	}
	w, env := a.json(http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.AuthResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &resp))
	return resp.Token
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestScenario_ClubMembership(t *testing.T) {
	api := newAPI(t)

	// Arrange
	api.register("Alice", "alice@x.com", "pw1", false)
	admin := api.register("Root", "root@x.com", "admin-pw", true)

	w, env := api.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "alice@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code)
	alice := decodeData[dto.AuthResponse](t, env).Token
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.TokenCookieName+"=")

	w, env = api.multipart(http.MethodPost, "/api/v1/clubs", admin, map[string]string{
		"name": "Robotics", "description": "We build robots", "category": "Technical",
	}, testutil.PNG)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	club := decodeData[dto.ClubResponse](t, env)
	require.NotNil(t, club.Image)
	clubPath := fmt.Sprintf("/api/v1/clubs/%d", club.ID)

	// Act & Assert
	w, _ = api.json(http.MethodPost, clubPath+"/join", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, env = api.json(http.MethodGet, clubPath, "", nil)
	assert.Len(t, decodeData[dto.ClubResponse](t, env).Members, 1)

	w, env = api.json(http.MethodPost, clubPath+"/join", alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Already a member of this club", env.Error.Message)

	_, env = api.json(http.MethodGet, clubPath, "", nil)
	assert.Len(t, decodeData[dto.ClubResponse](t, env).Members, 1)

	w, env = api.json(http.MethodPost, clubPath+"/leave", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[dto.ClubResponse](t, env).Members)

	w, env = api.json(http.MethodPost, clubPath+"/leave", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Not a member of this club", env.Error.Message)

	// Club mutation is admin only.
	w, _ = api.json(http.MethodDelete, clubPath, alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.json(http.MethodDelete, clubPath, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, api.storage.DeletedPaths(), *club.Image)

	w, _ = api.json(http.MethodGet, clubPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScenario_EventRegistration(t *testing.T) {
	api := newAPI(t)

	// Arrange
	admin := api.register("Root", "root@x.com", "admin-pw", true)
	bob := api.register("Bob", "bob@x.com", "pw2", false)

	w, env := api.multipart(http.MethodPost, "/api/v1/clubs", admin, map[string]string{
		"name": "Chess", "description": "Board games", "category": "Other",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clubID := decodeData[dto.ClubResponse](t, env).ID

	createEvent := func(date time.Time) dto.EventResponse {
		w, env := api.multipart(http.MethodPost, "/api/v1/events", admin, map[string]string{
			"title": "Open night", "description": "Casual games", "date": date.Format(time.RFC3339),
			"location": "Hall B", "type": "offline", "club": fmt.Sprint(clubID),
		}, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return decodeData[dto.EventResponse](t, env)
	}
	past := createEvent(time.Now().Add(-24 * time.Hour))
	upcoming := createEvent(time.Now().Add(7 * 24 * time.Hour))
	assert.Equal(t, "completed", past.Status)
	assert.Equal(t, "upcoming", upcoming.Status)

	// Act & Assert
	w, env = api.json(http.MethodPost, fmt.Sprintf("/api/v1/events/%d/register", past.ID), bob, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot register for past events", env.Error.Message)

	registerPath := fmt.Sprintf("/api/v1/events/%d/register", upcoming.ID)
	w, env = api.json(http.MethodPost, registerPath, bob, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeData[dto.EventResponse](t, env).Registrations, 1)

	w, env = api.json(http.MethodPost, registerPath, bob, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Already registered for this event", env.Error.Message)

	w, _ = api.json(http.MethodGet, fmt.Sprintf("/api/v1/events/%d/registrations", upcoming.ID), bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = api.json(http.MethodGet, fmt.Sprintf("/api/v1/events/%d/registrations", upcoming.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]dto.RegistrationResponse](t, env), 1)

	// The club lists its events.
	_, env = api.json(http.MethodGet, fmt.Sprintf("/api/v1/clubs/%d", clubID), "", nil)
	assert.ElementsMatch(t, []int64{past.ID, upcoming.ID}, decodeData[dto.ClubResponse](t, env).Events)
}

func TestScenario_EventWithUnknownClub(t *testing.T) {
	api := newAPI(t)
	admin := api.register("Root", "root@x.com", "admin-pw", true)

	w, env := api.multipart(http.MethodPost, "/api/v1/events", admin, map[string]string{
		"title": "Ghost", "description": "No club", "date": "2030-01-01T10:00",
		"location": "Nowhere", "type": "online", "club": "424242",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid club ID", env.Error.Message)

	_, env = api.json(http.MethodGet, "/api/v1/events", "", nil)
	assert.Empty(t, decodeData[[]dto.EventResponse](t, env))
}

func TestScenario_AnnouncementExpiry(t *testing.T) {
	api := newAPI(t)

	// Arrange
	admin := api.register("Root", "root@x.com", "admin-pw", true)
	user := api.register("Carol", "carol@x.com", "pw3", false)
	yesterday := time.Now().Add(-24 * time.Hour).UTC()

	w, env := api.json(http.MethodPost, "/api/v1/announcements", admin, map[string]interface{}{
		"title": "Old news", "content": "Expired already", "status": "active", "expiryDate": yesterday,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	expired := decodeData[dto.AnnouncementResponse](t, env)

	w, _ = api.json(http.MethodPost, "/api/v1/announcements", admin, map[string]interface{}{
		"title": "Fresh", "content": "Still current", "priority": "high",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Act & Assert
	w, env = api.json(http.MethodGet, "/api/v1/announcements?status=active", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decodeData[[]dto.AnnouncementResponse](t, env)
	require.Len(t, listed, 1)
	assert.Equal(t, "Fresh", listed[0].Title)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.TotalItems)

	w, _ = api.json(http.MethodPost, "/api/v1/announcements/archive-expired", user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = api.json(http.MethodPost, "/api/v1/announcements/archive-expired", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decodeData[dto.ArchiveExpiredResponse](t, env).Archived)

	_, env = api.json(http.MethodPost, "/api/v1/announcements/archive-expired", admin, nil)
	assert.Equal(t, int64(0), decodeData[dto.ArchiveExpiredResponse](t, env).Archived)

	_, env = api.json(http.MethodGet, fmt.Sprintf("/api/v1/announcements/%d", expired.ID), admin, nil)
	assert.Equal(t, "archived", decodeData[dto.AnnouncementResponse](t, env).Status)

	w, _ = api.json(http.MethodPost, "/api/v1/announcements", user, map[string]string{"title": "x", "content": "y"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthRoutes(t *testing.T) {
	api := newAPI(t)
	token := api.register("Dana", "dana@x.com", "pw4", false)

	t.Run("me", func(t *testing.T) {
		w, env := api.json(http.MethodGet, "/api/v1/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "dana@x.com", decodeData[dto.MeResponse](t, env).User.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		w, env := api.json(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"name": "Dana again", "email": "dana@x.com", "password": "pw",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "User already exists", env.Error.Message)
	})

	t.Run("password longer than 72 characters", func(t *testing.T) {
		w, env := api.json(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"name": "Long", "email": "long@x.com", "password": strings.Repeat("a", 80),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(dto.ErrorCodeValidationFailed), env.Error.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w, env := api.json(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "x@x.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, env.Error.Details, "fields")
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		w1, env1 := api.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "dana@x.com", "password": "nope"})
		w2, env2 := api.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ghost@x.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w1.Code)
		assert.Equal(t, w1.Code, w2.Code)
		assert.Equal(t, env1.Error, env2.Error)
	})

	t.Run("logout clears the cookie", func(t *testing.T) {
		w, env := api.json(http.MethodGet, "/api/v1/auth/logout", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Logged out successfully", env.Message)
		cookie := w.Header().Get("Set-Cookie")
		assert.Contains(t, cookie, middleware.TokenCookieName+"=;")
		assert.Contains(t, cookie, "Max-Age=0")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w, env := api.json(http.MethodGet, "/api/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "No token provided", env.Error.Message)
	})
}

func TestUploadRoutes_BodyLimit(t *testing.T) {
	api := newAPI(t)

	// Arrange
	admin := api.register("Root", "root@x.com", "admin-pw", true)
	oversized := bytes.Repeat([]byte{0x89}, 2*maxBodyBytes)

	// Act
	w, env := api.multipart(http.MethodPost, "/api/v1/clubs", admin, map[string]string{
		"name": "Photography", "description": "Big pictures", "category": "Other",
	}, oversized)

	// Assert
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
	assert.Equal(t, string(dto.ErrorCodeRequestTooLarge), env.Error.Code)
	assert.Empty(t, api.storage.Saved)
	_, env = api.json(http.MethodGet, "/api/v1/clubs", "", nil)
	assert.Empty(t, decodeData[[]dto.ClubResponse](t, env))

	w, env = api.json(http.MethodPut, "/api/v1/events/1", admin, map[string]string{
		"description": strings.Repeat("x", 2*maxBodyBytes),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
	assert.Equal(t, string(dto.ErrorCodeRequestTooLarge), env.Error.Code)

	// Bodies under the cap still go through.
	w, _ = api.multipart(http.MethodPost, "/api/v1/clubs", admin, map[string]string{
		"name": "Photography", "description": "Big pictures", "category": "Other",
	}, testutil.PNG)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestSystemRoutes(t *testing.T) {
	api := newAPI(t)

	t.Run("unknown route", func(t *testing.T) {
		w, env := api.json(http.MethodGet, "/api/v1/nothing-here", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Route not found", env.Error.Message)
	})

	t.Run("health follows the store", func(t *testing.T) {
		w, _ := api.json(http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		api.store.PingErr = errors.New("connection refused")
		w, env := api.json(http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, string(dto.ErrorCodeServiceUnavailable), env.Error.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "go_goroutines")
	})
}
