package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/johnwmail/flashclip/handlers"
	"github.com/johnwmail/flashclip/internal/config"
	"github.com/johnwmail/flashclip/internal/ident"
	"github.com/johnwmail/flashclip/internal/metrics"
	"github.com/johnwmail/flashclip/internal/services"
	"github.com/johnwmail/flashclip/internal/web"
)

// NewRouter wires the handlers into a gin engine. Every response carries
// CORS headers. Paths other than the fixed routes are clip ids on GET and
// 405 otherwise.
func NewRouter(cfg *config.Config, service *services.ClipService, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	renderer := web.NewRenderer(cfg.Version)
	clipHandler := handlers.NewClipHandler(service, renderer, cfg, logger)
	webuiHandler := handlers.NewWebUIHandler(cfg, renderer, logger)
	systemHandler := handlers.NewSystemHandler()

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(recovery(logger))
	router.Use(loggingMiddleware(logger))
	if m != nil {
		router.Use(m.Middleware())
	}
	router.Use(corsMiddleware())

	router.GET("/", webuiHandler.Index)
	router.POST("/", clipHandler.Create)
	router.GET("/health", systemHandler.Health)
	if cfg.EnableMetrics && m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet:
			clipHandler.View(c)
		case http.MethodOptions:
			systemHandler.Preflight(c)
		default:
			systemHandler.MethodNotAllowed(c)
		}
	})

	return router
}

// corsMiddleware adds CORS headers and answers preflight requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "HTTP request",
			"method", c.Request.Method,
			"path", ident.RedactPath(path),
			"client", c.ClientIP(),
			"status", status,
			"duration", time.Since(start))
	}
}

// recovery turns panics into a plain text 500
func recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(r)
				}
				logger.Error("Panic while handling request",
					"method", c.Request.Method,
					"path", ident.RedactPath(c.Request.URL.Path),
					"panic", fmt.Sprint(r))
				c.Header("Content-Type", "text/plain; charset=utf-8")
				c.AbortWithStatus(http.StatusInternalServerError)
				_, _ = c.Writer.WriteString("Internal Server Error")
			}
		}()
		c.Next()
	}
}

// HTTPServer runs a handler on the configured port
type HTTPServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewHTTPServer creates a new HTTP server
func NewHTTPServer(cfg *config.Config, handler http.Handler, logger *slog.Logger) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Addr returns the listen address
func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

// ListenAndServe blocks until the server stops. A graceful shutdown is not an error.
func (s *HTTPServer) ListenAndServe() error {
	s.logger.Info("HTTP server started", "address", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
