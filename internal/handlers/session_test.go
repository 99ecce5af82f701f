package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-server/internal/auth"
	"chat-server/internal/dispatch"
	"chat-server/internal/mocks"
	"chat-server/internal/models"
	"chat-server/internal/store"
)

var alice = models.UserCredentials{Email: "a@x.com", Username: "alice", Password: "p1"}

func setupSessionRouter(users *mocks.UserStoreMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	dispatcher := dispatch.New(users, new(mocks.MessageStoreMock))
	tokens := auth.NewManager("test-secret", time.Hour)
	handler := NewSessionHandler(dispatcher, tokens, nil)

	r := gin.New()
	r.POST("/session", handler.Handle)
	return r
}

func postSession(t *testing.T, router *gin.Engine, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSessionRegistrationSuccess(t *testing.T) {
	users := new(mocks.UserStoreMock)
	router := setupSessionRouter(users)

	users.On("FetchUserByEmail", mock.Anything, "a@x.com").Return(models.UserCredentials{}, store.ErrUserNotFound).Once()
	users.On("FetchUserByUsername", mock.Anything, "alice").Return(models.UserCredentials{}, store.ErrUserNotFound).Once()
	users.On("InsertUser", mock.Anything, alice).Return(nil).Once()

	rec := postSession(t, router, `{"request":"registration","details":{"email":"a@x.com","username":"alice","password":"p1"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		User  models.PublicUser `json:"user"`
		Token string            `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "alice", resp.User.Username)
	assert.NotEmpty(t, resp.Token)
	users.AssertExpectations(t)
}

func TestSessionRegistrationDuplicate(t *testing.T) {
	users := new(mocks.UserStoreMock)
	router := setupSessionRouter(users)

	users.On("FetchUserByEmail", mock.Anything, "a@x.com").Return(alice, nil).Once()

	rec := postSession(t, router, `{"request":"registration","details":{"email":"a@x.com","username":"bob","password":"p2"}}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	users.AssertNotCalled(t, "InsertUser", mock.Anything, mock.Anything)
}

func TestSessionLoginSuccess(t *testing.T) {
	users := new(mocks.UserStoreMock)
	router := setupSessionRouter(users)

	users.On("FetchUserByUsername", mock.Anything, "alice").Return(alice, nil).Once()

	rec := postSession(t, router, `{"request":"login","details":{"username":"alice","password":"p1"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

// The response must not reveal whether the account exists.
func TestSessionLoginFailuresLookAlike(t *testing.T) {
	users := new(mocks.UserStoreMock)
	router := setupSessionRouter(users)

	users.On("FetchUserByUsername", mock.Anything, "alice").Return(alice, nil).Once()
	users.On("FetchUserByUsername", mock.Anything, "nobody").Return(models.UserCredentials{}, store.ErrUserNotFound).Once()

	wrongPassword := postSession(t, router, `{"request":"login","details":{"username":"alice","password":"wrong"}}`)
	unknownUser := postSession(t, router, `{"request":"login","details":{"username":"nobody","password":"p1"}}`)

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestSessionMalformedEnvelope(t *testing.T) {
	users := new(mocks.UserStoreMock)
	router := setupSessionRouter(users)

	for _, payload := range []string{
		`not json`,
		`{"details":{"username":"alice"}}`,
		`{"request":"login"}`,
		`{"request":"message","details":{}}`,
		`{"request":"registration","details":{"email":"a@x.com","username":"alice"}}`,
	} {
		rec := postSession(t, router, payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
	}
	users.AssertNotCalled(t, "InsertUser", mock.Anything, mock.Anything)
}

func TestSessionStoreUnavailable(t *testing.T) {
	users := new(mocks.UserStoreMock)
	router := setupSessionRouter(users)

	users.On("FetchUserByUsername", mock.Anything, "alice").Return(models.UserCredentials{}, store.ErrStoreUnavailable).Once()

	rec := postSession(t, router, `{"request":"login","details":{"username":"alice","password":"p1"}}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
