//nolint:noctx // Test file uses http.NewRequest for simplicity
package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/shapeu/shapeu/internal/auth"
	"github.com/shapeu/shapeu/internal/config"
	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/internal/service/users"
	"github.com/shapeu/shapeu/pkg/logger"
)

// Mock User Service
type mockUserService struct {
	registerUser *models.User
	registerErr  error
	loginUser    *models.User
	loginErr     error
	users        map[uint]*models.User
}

func newMockUserService() *mockUserService {
	return &mockUserService{users: make(map[uint]*models.User)}
}

func (m *mockUserService) Register(ctx context.Context, username, password, confirmPassword string) (*models.User, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return m.registerUser, nil
}

func (m *mockUserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.loginUser, nil
}

func (m *mockUserService) Get(userID uint) (*models.User, error) {
	user, exists := m.users[userID]
	if !exists {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

// Test Setup
func setupTestHandler() (*Handler, *mockUserService, *auth.TokenManager) {
	userService := newMockUserService()
	tokens := auth.NewTokenManager(&config.AuthConfig{JWTSecret: "test-secret", TokenTTLDays: 7})
	log := logger.New("debug", "text", "stdout")

	handler := NewHandlerWithInterfaces(userService, tokens, false, log)

	return handler, userService, tokens
}

func setupRouter(handler *Handler, tokens *auth.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	public := router.Group("/api")
	authed := router.Group("/api")
	authed.Use(auth.Middleware(tokens))
	handler.RegisterRoutes(public, authed)

	return router
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

// Tests

func TestRegister_Success(t *testing.T) {
	handler, userService, tokens := setupTestHandler()
	router := setupRouter(handler, tokens)

	userService.registerUser = &models.User{ID: 1, Username: "alice", Level: 1, XP: 0}

	w := postJSON(router, "/api/auth/register", map[string]string{
		"username":        "alice",
		"password":        "secret123",
		"confirmPassword": "secret123",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	cookie := sessionCookie(w)
	assert.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(1), response["level"])
	assert.Equal(t, "Iniciante", response["title"])
	assert.Equal(t, float64(500), response["xpForNext"])
}

func TestRegister_UsernameTaken(t *testing.T) {
	handler, userService, tokens := setupTestHandler()
	router := setupRouter(handler, tokens)

	userService.registerErr = users.ErrUsernameTaken

	w := postJSON(router, "/api/auth/register", map[string]string{
		"username":        "alice",
		"password":        "secret123",
		"confirmPassword": "secret123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_ValidationError(t *testing.T) {
	handler, userService, tokens := setupTestHandler()
	router := setupRouter(handler, tokens)

	userService.registerErr = users.ErrPasswordTooShort

	w := postJSON(router, "/api/auth/register", map[string]string{
		"username":        "alice",
		"password":        "123",
		"confirmPassword": "123",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response, "error")
}

func TestRegister_InvalidBody(t *testing.T) {
	handler, _, tokens := setupTestHandler()
	router := setupRouter(handler, tokens)

	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Success(t *testing.T) {
	handler, userService, tokens := setupTestHandler()
	router := setupRouter(handler, tokens)

	userService.loginUser = &models.User{ID: 3, Username: "alice", Level: 2, XP: 700}

	w := postJSON(router, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "secret123",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(w)
	assert.NotNil(t, cookie)
	userID, err := tokens.Verify(cookie.Value)
	assert.NoError(t, err)
	assert.Equal(t, uint(3), userID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	handler, userService, tokens := setupTestHandler()
	router := setupRouter(handler, tokens)

	userService.loginErr = users.ErrInvalidCredentials

	w := postJSON(router, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionCookie(w))
}

func TestLogout_ClearsCookie(t *testing.T) {
	handler, _, tokens := setupTestHandler()
	router := setupRouter(handler, tokens)

	w := postJSON(router, "/api/auth/logout", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(w)
	assert.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestMe_Success(t *testing.T) {
	handler, userService, tokens := setupTestHandler()
	router := setupRouter(handler, tokens)

	userService.users[5] = &models.User{ID: 5, Username: "alice", Level: 3, XP: 1600}
	token, err := tokens.Issue(5)
	assert.NoError(t, err)

	req, _ := http.NewRequest("GET", "/api/auth/me", http.NoBody)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(3), response["level"])
	assert.Equal(t, float64(100), response["xpInLevel"])
}

func TestMe_RequiresAuth(t *testing.T) {
	handler, _, tokens := setupTestHandler()
	router := setupRouter(handler, tokens)

	req, _ := http.NewRequest("GET", "/api/auth/me", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
