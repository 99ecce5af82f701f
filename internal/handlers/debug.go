package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chat-server/internal/store"
	"chat-server/internal/telemetry"
)

// RegisterOpsRoutes wires the health, metrics and debug-only endpoints.
func RegisterOpsRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, debug bool) {
	router.GET("/healthz", func(c *gin.Context) {
		if _, err := store.GetExisting(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if !debug {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), clientIP(c), userEmailFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
