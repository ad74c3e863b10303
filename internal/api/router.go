package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"geoverify/internal"
)

// RegisterRoutes mounts the API under /api/v1. hub may be nil, in which case
// the event stream route is not registered.
func (h *Handler) RegisterRoutes(r gin.IRouter, hub *SSEHub) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", h.Health)

		sessions := v1.Group("/critique/sessions")
		sessions.POST("", h.StartSession)
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSession)
		sessions.POST("/:id/responses", h.SubmitResponse)
		sessions.POST("/:id/synthesis", h.RecordSynthesis)
		sessions.POST("/:id/run", h.RunCritic)
		if h.usage != nil {
			sessions.GET("/:id/usage", h.SessionUsage)
		}
		if hub != nil {
			sessions.GET("/:id/events", hub.HandleSSE)
		}

		v1.POST("/claims/validate", h.ValidateClaims)
		v1.POST("/compliance/validate", h.ValidateCompliance)
		v1.GET("/compliance/statistics", h.ComplianceStatistics)
		v1.POST("/adjudicate", h.Adjudicate)
	}
}

// NewRouter builds a gin engine with recovery, request logging and the API routes
func NewRouter(h *Handler, hub *SSEHub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.logger))
	h.RegisterRoutes(r, hub)
	return r
}

// RequestLogger logs each request at debug level, and server errors at warn
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)
		if status >= 500 {
			logger.Warn("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, elapsed)
			return
		}
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, elapsed)
	}
}
