package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chat-server/internal/dispatch"
	"chat-server/internal/models"
	"chat-server/internal/observability"
	"chat-server/internal/store"
)

// MessageHandler manages direct-message endpoints.
type MessageHandler struct {
	dispatcher *dispatch.Dispatcher
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(dispatcher *dispatch.Dispatcher) *MessageHandler {
	return &MessageHandler{dispatcher: dispatcher}
}

// Post handles POST /messages. The sender is always the authenticated
// user; a missing id or timestamp is filled in at this edge, never by the
// store.
func (h *MessageHandler) Post(c *gin.Context) {
	var req struct {
		ID      string  `json:"id"`
		To      string  `json:"to" binding:"required"`
		Message *string `json:"message"`
		Media   *string `json:"media"`
		Time    int64   `json:"time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Time == 0 {
		req.Time = time.Now().UnixMilli()
	}

	record := models.MessageRecord{
		ID:       req.ID,
		Sender:   c.GetString("userEmail"),
		Receiver: req.To,
		Body:     req.Message,
		Media:    req.Media,
		Time:     req.Time,
	}

	if err := h.dispatcher.SendMessage(c.Request.Context(), record); err != nil {
		switch {
		case errors.Is(err, store.ErrStoreUnavailable):
			observability.IncDispatch("message", "failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		case errors.Is(err, store.ErrClosed), errors.Is(err, store.ErrNotInstantiated):
			observability.IncDispatch("message", "failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store not ready"})
		default:
			observability.IncDispatch("message", "rejected")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	observability.IncDispatch("message", "ok")
	c.JSON(http.StatusCreated, gin.H{"id": record.ID})
}

// History handles GET /messages: the full history where the
// authenticated user is sender or receiver.
func (h *MessageHandler) History(c *gin.Context) {
	email := c.GetString("userEmail")

	messages, err := h.dispatcher.History(c.Request.Context(), email)
	if errors.Is(err, store.ErrNoMessages) {
		c.JSON(http.StatusOK, gin.H{"messages": []models.MessageRecord{}})
		return
	}
	if err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
