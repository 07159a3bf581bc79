package controllers

import (
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/singhastra/microfeedx/models"
	"github.com/singhastra/microfeedx/services"
	"github.com/singhastra/microfeedx/utils"
)

// TestMain supplies a signing secret and an embedded redis so register and
// login handlers can mint tokens and invalidate the profile cache.
func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "unit-test-secret")

	mr, err := miniredis.Run()
	if err != nil {
		log.Fatalf("start embedded redis: %v", err)
	}
	os.Setenv("REDIS_HOST", mr.Host())
	os.Setenv("REDIS_PORT", mr.Port())

	code := m.Run()
	mr.Close()
	os.Exit(code)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) CreateUser(u *models.User) error {
	return m.Called(u).Error(0)
}

func (m *mockUserStore) GetUserByEmail(email string) (models.User, bool, error) {
	args := m.Called(email)
	return args.Get(0).(models.User), args.Bool(1), args.Error(2)
}

func (m *mockUserStore) GetUserByProvider(provider, providerID string) (models.User, bool, error) {
	args := m.Called(provider, providerID)
	return args.Get(0).(models.User), args.Bool(1), args.Error(2)
}

func (m *mockUserStore) GetUser(id string) (models.User, bool, error) {
	args := m.Called(id)
	return args.Get(0).(models.User), args.Bool(1), args.Error(2)
}

func (m *mockUserStore) UpdateUserEmail(id string, email *string) error {
	return m.Called(id, email).Error(0)
}

func (m *mockUserStore) DeleteUser(id string) error {
	return m.Called(id).Error(0)
}

type mockProfileService struct {
	mock.Mock
}

func (m *mockProfileService) Create(userID, username, fullName string) (models.Profile, error) {
	args := m.Called(userID, username, fullName)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *mockProfileService) Get(userID string) (models.Profile, error) {
	args := m.Called(userID)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *mockProfileService) GetByUsername(username string) (models.Profile, error) {
	args := m.Called(username)
	return args.Get(0).(models.Profile), args.Error(1)
}

func authRouter(users services.UserStore, profiles services.ProfileService, viewer string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	c := NewAuthController(users, profiles)
	r.POST("/api/v1/auth/register", c.Register)
	r.POST("/api/v1/auth/login", c.Login)
	r.GET("/api/v1/auth/me", asViewer(viewer), c.Me)
	r.POST("/api/v1/auth/username", asViewer(viewer), c.SetupUsername)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterHandler(t *testing.T) {
	users := new(mockUserStore)
	profiles := new(mockProfileService)

	users.On("GetUserByEmail", "alice@example.com").Return(models.User{}, false, nil)
	users.On("CreateUser", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		u := args.Get(0).(*models.User)
		u.ID = "u1"
		require.NotNil(t, u.Email)
		assert.Equal(t, "alice@example.com", *u.Email)
		assert.NotEmpty(t, u.PasswordHash)
	}).Return(nil)
	profiles.On("Create", "u1", "alice", "").Return(models.Profile{ID: "u1", Username: "alice"}, nil)

	r := authRouter(users, profiles, "")
	w := postJSON(r, "/api/v1/auth/register", `{"email":"Alice@Example.com","password":"s3cret-password","username":"alice"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	code, data := decodeEnvelope(t, w)
	assert.Equal(t, 0, code)
	assert.Contains(t, string(data), `"token"`)
	assert.Contains(t, string(data), `"needs_username":false`)
	users.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestRegisterHandlerRejectsTakenEmail(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetUserByEmail", "alice@example.com").Return(models.User{ID: "u1"}, true, nil)

	r := authRouter(users, new(mockProfileService), "")
	w := postJSON(r, "/api/v1/auth/register", `{"email":"alice@example.com","password":"s3cret-password","username":"alice"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := decodeEnvelope(t, w)
	assert.Equal(t, 40002, code)
}

func TestRegisterHandlerDuplicateOnInsert(t *testing.T) {
	// A concurrent registration can pass the lookup and lose the insert; the
	// unique index rejection must surface as the same duplicate-email error.
	users := new(mockUserStore)
	users.On("GetUserByEmail", "alice@example.com").Return(models.User{}, false, nil)
	users.On("CreateUser", mock.AnythingOfType("*models.User")).Return(services.ErrDuplicate)

	r := authRouter(users, new(mockProfileService), "")
	w := postJSON(r, "/api/v1/auth/register", `{"email":"alice@example.com","password":"s3cret-password","username":"alice"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := decodeEnvelope(t, w)
	assert.Equal(t, 40002, code)
	users.AssertExpectations(t)
}

func TestRegisterHandlerRejectsWeakPassword(t *testing.T) {
	users := new(mockUserStore)

	r := authRouter(users, new(mockProfileService), "")
	w := postJSON(r, "/api/v1/auth/register", `{"email":"alice@example.com","password":"short","username":"alice"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := decodeEnvelope(t, w)
	assert.Equal(t, 40001, code)
	users.AssertNotCalled(t, "CreateUser", mock.Anything)
}

func TestRegisterHandlerRejectsBadUsername(t *testing.T) {
	users := new(mockUserStore)

	r := authRouter(users, new(mockProfileService), "")
	w := postJSON(r, "/api/v1/auth/register", `{"email":"alice@example.com","password":"s3cret-password","username":"x"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := decodeEnvelope(t, w)
	assert.Equal(t, 40010, code)
	users.AssertNotCalled(t, "CreateUser", mock.Anything)
}

func TestRegisterHandlerRollsBackOnProfileFailure(t *testing.T) {
	users := new(mockUserStore)
	profiles := new(mockProfileService)

	users.On("GetUserByEmail", "alice@example.com").Return(models.User{}, false, nil)
	users.On("CreateUser", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = "u1"
	}).Return(nil)
	profiles.On("Create", "u1", "alice", "").Return(models.Profile{}, services.ErrValidation)
	users.On("DeleteUser", "u1").Return(nil)

	r := authRouter(users, profiles, "")
	w := postJSON(r, "/api/v1/auth/register", `{"email":"alice@example.com","password":"s3cret-password","username":"alice"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	users.AssertCalled(t, "DeleteUser", "u1")
}

func TestLoginHandler(t *testing.T) {
	hash, err := utils.HashPassword("s3cret-password")
	require.NoError(t, err)
	email := "alice@example.com"

	users := new(mockUserStore)
	profiles := new(mockProfileService)
	users.On("GetUserByEmail", email).Return(models.User{ID: "u1", Email: &email, PasswordHash: hash}, true, nil)
	profiles.On("Get", "u1").Return(models.Profile{ID: "u1", Username: "alice"}, nil)

	r := authRouter(users, profiles, "")
	w := postJSON(r, "/api/v1/auth/login", `{"email":"alice@example.com","password":"s3cret-password"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	code, data := decodeEnvelope(t, w)
	assert.Equal(t, 0, code)
	assert.Contains(t, string(data), `"token"`)
}

func TestLoginHandlerRejectsWrongPassword(t *testing.T) {
	hash, err := utils.HashPassword("s3cret-password")
	require.NoError(t, err)

	users := new(mockUserStore)
	users.On("GetUserByEmail", "alice@example.com").Return(models.User{ID: "u1", PasswordHash: hash}, true, nil)

	r := authRouter(users, new(mockProfileService), "")
	w := postJSON(r, "/api/v1/auth/login", `{"email":"alice@example.com","password":"wrong-password"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	code, _ := decodeEnvelope(t, w)
	assert.Equal(t, 40106, code)
}

func TestLoginHandlerRejectsUnknownEmail(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetUserByEmail", "ghost@example.com").Return(models.User{}, false, nil)

	r := authRouter(users, new(mockProfileService), "")
	w := postJSON(r, "/api/v1/auth/login", `{"email":"ghost@example.com","password":"s3cret-password"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	code, _ := decodeEnvelope(t, w)
	assert.Equal(t, 40106, code)
}

func TestMeReportsNeedsUsername(t *testing.T) {
	users := new(mockUserStore)
	profiles := new(mockProfileService)
	users.On("GetUser", "u1").Return(models.User{ID: "u1", Provider: "github"}, true, nil)
	profiles.On("Get", "u1").Return(models.Profile{}, services.ErrProfileNotFound)

	r := authRouter(users, profiles, "u1")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	code, data := decodeEnvelope(t, w)
	assert.Equal(t, 0, code)
	assert.Contains(t, string(data), `"needs_username":true`)
	assert.Contains(t, string(data), `"email":null`)
}

func TestSetupUsernameHandler(t *testing.T) {
	profiles := new(mockProfileService)
	profiles.On("Create", "u1", "alice", "Alice A").Return(models.Profile{ID: "u1", Username: "alice"}, nil)

	r := authRouter(new(mockUserStore), profiles, "u1")
	w := postJSON(r, "/api/v1/auth/username", `{"username":"alice","full_name":"Alice A"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	code, _ := decodeEnvelope(t, w)
	assert.Equal(t, 0, code)
	profiles.AssertExpectations(t)
}
