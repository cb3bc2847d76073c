package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SystemHandler handles endpoints that do not touch clips
type SystemHandler struct{}

// NewSystemHandler creates a new system handler
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// Health handles health check via GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "flashclip",
	})
}

// Preflight answers CORS preflight requests; the CORS headers themselves
// are set by middleware
func (h *SystemHandler) Preflight(c *gin.Context) {
	c.AbortWithStatus(http.StatusNoContent)
}

// MethodNotAllowed rejects every method/path pair without a route
func (h *SystemHandler) MethodNotAllowed(c *gin.Context) {
	c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
}
