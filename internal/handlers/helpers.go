package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chat-server/internal/observability"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := observability.RequestIDFromRequest(c.Request)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func clientIP(c *gin.Context) string {
	return observability.IPFromRequest(c.Request)
}

func userEmailFromContext(c *gin.Context) *string {
	if email := c.GetString("userEmail"); email != "" {
		return &email
	}
	return nil
}
