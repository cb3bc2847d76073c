package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/johnwmail/flashclip/internal/config"
	"github.com/johnwmail/flashclip/internal/web"
)

// WebUIHandler handles web interface
type WebUIHandler struct {
	config   *config.Config
	renderer *web.Renderer
	logger   *slog.Logger
}

// NewWebUIHandler creates a new web UI handler
func NewWebUIHandler(config *config.Config, renderer *web.Renderer, logger *slog.Logger) *WebUIHandler {
	return &WebUIHandler{
		config:   config,
		renderer: renderer,
		logger:   logger,
	}
}

// Index handles the creation form via GET /. The page language comes
// from ?lang=, then Accept-Language.
func (h *WebUIHandler) Index(c *gin.Context) {
	if !h.config.EnableWebUI {
		c.String(http.StatusNotFound, "Not Found")
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderIndex(&buf, pageLang(c)); err != nil {
		h.logger.Error("Failed to render index", "error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// pageLang picks zh when asked for explicitly or preferred by the browser
func pageLang(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" {
		return lang
	}
	accept := c.GetHeader("Accept-Language")
	if len(accept) >= 2 && (accept[:2] == "zh" || accept[:2] == "ZH") {
		return "zh"
	}
	return "en"
}
