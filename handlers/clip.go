package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/johnwmail/flashclip/internal/config"
	"github.com/johnwmail/flashclip/internal/ident"
	"github.com/johnwmail/flashclip/internal/models"
	"github.com/johnwmail/flashclip/internal/services"
	"github.com/johnwmail/flashclip/internal/web"
)

var errContentTooLarge = errors.New("content too large")

// ClipHandler serves clip creation and viewing
type ClipHandler struct {
	service  *services.ClipService
	renderer *web.Renderer
	config   *config.Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewClipHandler creates a new clip handler
func NewClipHandler(service *services.ClipService, renderer *web.Renderer, config *config.Config, logger *slog.Logger) *ClipHandler {
	return &ClipHandler{
		service:  service,
		renderer: renderer,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// Create handles clip creation via POST / with a JSON object body
func (h *ClipHandler) Create(c *gin.Context) {
	body, err := h.readBody(c)
	if err != nil {
		if errors.Is(err, errContentTooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "Payload Too Large")
			return
		}
		h.logger.Debug("Failed to read request body", "error", err)
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	req, err := models.ParseCreateRequest(body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("Clip created", "id", ident.Redact(resp.ID), "client", c.ClientIP(), "size", len(body))
	c.JSON(http.StatusOK, resp)
}

// View renders a clip via GET /{id}. The id is the whole path with its
// leading slashes removed.
func (h *ClipHandler) View(c *gin.Context) {
	id := strings.TrimLeft(c.Request.URL.Path, "/")

	clip, err := h.service.Retrieve(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderView(&buf, web.ViewData{ID: id, Clip: clip, Now: h.now()}); err != nil {
		h.logger.Error("Failed to render clip", "id", ident.Redact(id), "error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// respondError maps service errors to plain text responses
func (h *ClipHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidBody),
		errors.Is(err, models.ErrInvalidTTL),
		errors.Is(err, services.ErrTTLOutOfRange):
		h.logger.Debug("Rejected create request", "error", err)
		c.String(http.StatusBadRequest, "Bad Request")
	case errors.Is(err, services.ErrEmptyID):
		c.String(http.StatusBadRequest, "Missing ID")
	case errors.Is(err, services.ErrNotFound):
		c.String(http.StatusNotFound, "Not Found")
	default:
		h.logger.Error("Clip request failed",
			"method", c.Request.Method,
			"path", ident.RedactPath(c.Request.URL.Path),
			"error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
	}
}

// readBody reads at most MaxContentSize bytes, reporting errContentTooLarge past that
func (h *ClipHandler) readBody(c *gin.Context) ([]byte, error) {
	limit := h.config.MaxContentSize
	if limit <= 0 {
		return nil, fmt.Errorf("invalid max content size configuration: %d", limit)
	}
	if c.Request.ContentLength > limit {
		return nil, errContentTooLarge
	}
	if c.Request.Body == nil {
		return nil, nil
	}

	buf, err := io.ReadAll(io.LimitReader(c.Request.Body, limit))
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) < limit {
		return buf, nil
	}

	var extra [1]byte
	n, err := c.Request.Body.Read(extra[:])
	if n > 0 {
		return nil, errContentTooLarge
	}
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}
