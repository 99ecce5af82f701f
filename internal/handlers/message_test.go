package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-server/internal/dispatch"
	"chat-server/internal/mocks"
	"chat-server/internal/models"
	"chat-server/internal/store"
)

func setupMessageRouter(messages *mocks.MessageStoreMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	dispatcher := dispatch.New(new(mocks.UserStoreMock), messages)
	handler := NewMessageHandler(dispatcher)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userEmail", "a@x.com")
		c.Next()
	})
	r.POST("/messages", handler.Post)
	r.GET("/messages", handler.History)
	return r
}

func TestPostMessageSuccess(t *testing.T) {
	messages := new(mocks.MessageStoreMock)
	router := setupMessageRouter(messages)

	body := "hello"
	expected := models.MessageRecord{
		ID:       "m1",
		Sender:   "a@x.com",
		Receiver: "b@x.com",
		Body:     &body,
		Time:     1700000000000,
	}
	messages.On("InsertMessage", mock.Anything, expected).Return(nil).Once()

	payload := `{"id":"m1","to":"b@x.com","message":"hello","time":1700000000000}`
	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "m1", resp["id"])
	messages.AssertExpectations(t)
}

func TestPostMessageGeneratesID(t *testing.T) {
	messages := new(mocks.MessageStoreMock)
	router := setupMessageRouter(messages)

	messages.On("InsertMessage", mock.Anything, mock.MatchedBy(func(r models.MessageRecord) bool {
		return r.ID != "" && r.Sender == "a@x.com" && r.Receiver == "b@x.com" && r.Time > 0
	})).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"to":"b@x.com","media":"https://cdn.example.com/p.png"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messages.AssertExpectations(t)
}

func TestPostMessageWithoutBodyOrMedia(t *testing.T) {
	messages := new(mocks.MessageStoreMock)
	router := setupMessageRouter(messages)

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"to":"b@x.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	messages.AssertNotCalled(t, "InsertMessage", mock.Anything, mock.Anything)
}

func TestPostMessageStoreUnavailable(t *testing.T) {
	messages := new(mocks.MessageStoreMock)
	router := setupMessageRouter(messages)

	messages.On("InsertMessage", mock.Anything, mock.Anything).Return(store.ErrStoreUnavailable).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"to":"b@x.com","message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHistoryReturnsMessages(t *testing.T) {
	messages := new(mocks.MessageStoreMock)
	router := setupMessageRouter(messages)

	body := "hi"
	messages.On("FetchMessagesByEmail", mock.Anything, "a@x.com").Return([]models.MessageRecord{
		{ID: "m1", Sender: "a@x.com", Receiver: "b@x.com", Body: &body, Time: 1},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.MessageRecord `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "m1", resp.Messages[0].ID)
}

func TestHistoryEmptyIsNotAnError(t *testing.T) {
	messages := new(mocks.MessageStoreMock)
	router := setupMessageRouter(messages)

	messages.On("FetchMessagesByEmail", mock.Anything, "a@x.com").Return(([]models.MessageRecord)(nil), store.ErrNoMessages).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.MessageRecord `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotNil(t, resp.Messages)
	assert.Empty(t, resp.Messages)
}
