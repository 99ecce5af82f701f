package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-server/internal/auth"
	"chat-server/internal/dispatch"
	"chat-server/internal/observability"
	"chat-server/internal/request"
	"chat-server/internal/store"
	"chat-server/internal/telemetry"
)

// SessionHandler accepts the session-bootstrap envelope and turns it into
// an authenticated session.
type SessionHandler struct {
	dispatcher *dispatch.Dispatcher
	tokens     *auth.Manager
	audit      *telemetry.AuditEmitter
}

// NewSessionHandler builds a SessionHandler.
func NewSessionHandler(dispatcher *dispatch.Dispatcher, tokens *auth.Manager, audit *telemetry.AuditEmitter) *SessionHandler {
	return &SessionHandler{dispatcher: dispatcher, tokens: tokens, audit: audit}
}

// Handle processes POST /session. The body is the raw envelope
// {"request": "login"|"registration", "details": {...}}.
func (h *SessionHandler) Handle(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		observability.IncDispatch("invalid", "rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON object"})
		return
	}

	req, err := request.Decode(payload)
	if err != nil {
		observability.IncDispatch("invalid", "rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind := string(req.Kind)

	user, err := h.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrAuthenticationFailed):
			observability.IncDispatch(kind, "rejected")
			h.audit.Emit(c.Request.Context(), "WARN", "login failed", requestIDFromContext(c), clientIP(c), nil)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		case errors.Is(err, dispatch.ErrUserExists):
			observability.IncDispatch(kind, "rejected")
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
		case errors.Is(err, request.ErrMissingFields):
			observability.IncDispatch(kind, "rejected")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, store.ErrStoreUnavailable):
			observability.IncDispatch(kind, "failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		default:
			observability.IncDispatch(kind, "failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process request"})
		}
		return
	}

	token, err := h.tokens.Issue(user.Email, user.Username)
	if err != nil {
		observability.IncDispatch(kind, "failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	observability.IncDispatch(kind, "ok")
	if req.Kind == request.KindRegistration {
		h.audit.Emit(c.Request.Context(), "INFO", "user registered", requestIDFromContext(c), clientIP(c), &user.Email)
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}
