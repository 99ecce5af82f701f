package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-server/internal/dispatch"
	"chat-server/internal/store"
	"chat-server/internal/telemetry"
)

// UserHandler manages account endpoints.
type UserHandler struct {
	dispatcher *dispatch.Dispatcher
	audit      *telemetry.AuditEmitter
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(dispatcher *dispatch.Dispatcher, audit *telemetry.AuditEmitter) *UserHandler {
	return &UserHandler{dispatcher: dispatcher, audit: audit}
}

// List handles GET /users with the public projection of every account.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.dispatcher.Users(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// DeleteMe handles DELETE /users/me. Deleting an already-deleted account
// succeeds.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	email := c.GetString("userEmail")

	if err := h.dispatcher.RemoveUser(c.Request.Context(), email); err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "user deleted", requestIDFromContext(c), clientIP(c), userEmailFromContext(c))
	c.Status(http.StatusNoContent)
}
