package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/johnwmail/flashclip/internal/config"
	"github.com/johnwmail/flashclip/internal/ident"
	"github.com/johnwmail/flashclip/internal/server"
)

// Version/build info (set via -ldflags at build time)
var (
	Version    = "dev"
	BuildTime  = "unknown"
	CommitHash = "none"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "flashclip: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	def := config.DefaultConfig()

	return &cli.App{
		Name:    "flashclip",
		Usage:   "ephemeral text sharing with expiring and read-once clips",
		Version: fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, CommitHash),
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: def.Port, EnvVars: []string{"FLASHCLIP_PORT"}, Usage: "HTTP listen port"},
			&cli.StringFlag{Name: "storage", Value: def.StorageType, EnvVars: []string{"FLASHCLIP_STORAGE_TYPE"}, Usage: "memory, redis, dynamodb, mongodb, s3, sqlite or filesystem"},
			&cli.StringFlag{Name: "store-timeout", Value: def.StoreTimeout.String(), EnvVars: []string{"FLASHCLIP_STORE_TIMEOUT"}, Usage: "deadline for each store operation"},

			&cli.StringFlag{Name: "redis-url", Value: def.RedisURL, EnvVars: []string{"FLASHCLIP_REDIS_URL"}},
			&cli.StringFlag{Name: "redis-key-prefix", Value: def.RedisKeyPrefix, EnvVars: []string{"FLASHCLIP_REDIS_KEY_PREFIX"}},
			&cli.StringFlag{Name: "dynamodb-table", Value: def.DynamoDBTable, EnvVars: []string{"FLASHCLIP_DYNAMODB_TABLE"}},
			&cli.StringFlag{Name: "aws-region", Value: def.AWSRegion, EnvVars: []string{"FLASHCLIP_AWS_REGION"}, Usage: "defaults to the SDK's region resolution"},
			&cli.StringFlag{Name: "mongodb-uri", Value: def.MongoDBURI, EnvVars: []string{"FLASHCLIP_MONGODB_URI"}},
			&cli.StringFlag{Name: "mongodb-database", Value: def.MongoDBDatabase, EnvVars: []string{"FLASHCLIP_MONGODB_DATABASE"}},
			&cli.StringFlag{Name: "mongodb-collection", Value: def.MongoDBCollection, EnvVars: []string{"FLASHCLIP_MONGODB_COLLECTION"}},
			&cli.StringFlag{Name: "s3-bucket", Value: def.S3Bucket, EnvVars: []string{"FLASHCLIP_S3_BUCKET"}},
			&cli.StringFlag{Name: "s3-prefix", Value: def.S3Prefix, EnvVars: []string{"FLASHCLIP_S3_PREFIX"}},
			&cli.StringFlag{Name: "sqlite-path", Value: def.SQLitePath, EnvVars: []string{"FLASHCLIP_SQLITE_PATH"}},
			&cli.StringFlag{Name: "data-dir", Value: def.DataDir, EnvVars: []string{"FLASHCLIP_DATA_DIR"}, Usage: "root directory of the filesystem store"},

			&cli.StringFlag{Name: "id-format", Value: def.IDFormat, EnvVars: []string{"FLASHCLIP_ID_FORMAT"}, Usage: "uuid or ulid"},
			&cli.StringFlag{Name: "min-ttl", EnvVars: []string{"FLASHCLIP_MIN_TTL"}, Usage: "smallest accepted ttl, e.g. 1m (empty: no bound)"},
			&cli.StringFlag{Name: "max-ttl", EnvVars: []string{"FLASHCLIP_MAX_TTL"}, Usage: "largest accepted ttl, e.g. 7d (empty: no bound)"},
			&cli.Int64Flag{Name: "max-content-size", Value: def.MaxContentSize, EnvVars: []string{"FLASHCLIP_MAX_CONTENT_SIZE"}, Usage: "maximum request body in bytes"},

			&cli.StringFlag{Name: "log-level", Value: def.LogLevel, EnvVars: []string{"FLASHCLIP_LOG_LEVEL"}},
			&cli.StringFlag{Name: "log-file", EnvVars: []string{"FLASHCLIP_LOG_FILE"}, Usage: "write JSON logs to this rotated file instead of stderr"},
			&cli.StringFlag{Name: "access-log", EnvVars: []string{"FLASHCLIP_ACCESS_LOG"}, Usage: "write an Apache combined access log to this rotated file"},

			&cli.BoolFlag{Name: "webui", Value: def.EnableWebUI, EnvVars: []string{"FLASHCLIP_ENABLE_WEBUI"}},
			&cli.BoolFlag{Name: "metrics", Value: def.EnableMetrics, EnvVars: []string{"FLASHCLIP_ENABLE_METRICS"}},
		},
		Action: func(c *cli.Context) error {
			cfg, err := configFromContext(c)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
}

// configFromContext builds and validates the configuration from parsed flags
func configFromContext(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Port = c.Int("port")
	cfg.StorageType = c.String("storage")
	cfg.RedisURL = c.String("redis-url")
	cfg.RedisKeyPrefix = c.String("redis-key-prefix")
	cfg.DynamoDBTable = c.String("dynamodb-table")
	cfg.AWSRegion = c.String("aws-region")
	cfg.MongoDBURI = c.String("mongodb-uri")
	cfg.MongoDBDatabase = c.String("mongodb-database")
	cfg.MongoDBCollection = c.String("mongodb-collection")
	cfg.S3Bucket = c.String("s3-bucket")
	cfg.S3Prefix = c.String("s3-prefix")
	cfg.SQLitePath = c.String("sqlite-path")
	cfg.DataDir = c.String("data-dir")
	cfg.IDFormat = c.String("id-format")
	cfg.MaxContentSize = c.Int64("max-content-size")
	cfg.LogLevel = c.String("log-level")
	cfg.LogFile = c.String("log-file")
	cfg.AccessLog = c.String("access-log")
	cfg.EnableWebUI = c.Bool("webui")
	cfg.EnableMetrics = c.Bool("metrics")
	cfg.Version = Version
	cfg.BuildTime = BuildTime
	cfg.CommitHash = CommitHash

	var err error
	if cfg.StoreTimeout, err = config.ParseDuration(c.String("store-timeout")); err != nil {
		return nil, fmt.Errorf("--store-timeout: %w", err)
	}
	if cfg.MinTTL, err = config.ParseDuration(c.String("min-ttl")); err != nil {
		return nil, fmt.Errorf("--min-ttl: %w", err)
	}
	if cfg.MaxTTL, err = config.ParseDuration(c.String("max-ttl")); err != nil {
		return nil, fmt.Errorf("--max-ttl: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, logCloser := setupLogging(cfg)
	defer closeQuietly(logCloser)

	logger.Info("Starting flashclip",
		"version", cfg.Version,
		"build_time", cfg.BuildTime,
		"commit", cfg.CommitHash,
		"port", cfg.Port,
		"storage", cfg.StorageType)

	gin.SetMode(gin.ReleaseMode)
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	}

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	handler, accessCloser := withAccessLog(cfg, app.Router)
	defer closeQuietly(accessCloser)

	httpServer := server.NewHTTPServer(cfg, handler, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
		if serveErr != nil {
			logger.Error("HTTP server failed", "error", serveErr)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if err := app.Close(shutdownCtx); err != nil {
		logger.Error("Error releasing storage", "error", err)
	}

	logger.Info("Shutdown complete")
	return serveErr
}

// setupLogging returns a text logger on stderr, or a JSON logger writing to
// a rotated file when LogFile is set. The closer is nil for stderr.
func setupLogging(cfg *config.Config) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	if cfg.LogFile == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	}

	file := newRotatingFile(cfg.LogFile)
	return slog.New(slog.NewJSONHandler(file, opts)), file
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// originalRequestKey carries the unredacted request past the access logger
type originalRequestKey struct{}

// withAccessLog wraps h in an Apache combined log handler when AccessLog is
// set. The logger sees clip ids redacted; h sees the request unchanged.
func withAccessLog(cfg *config.Config, h http.Handler) (http.Handler, io.Closer) {
	if cfg.AccessLog == "" {
		return h, nil
	}
	file := newRotatingFile(cfg.AccessLog)

	logged := handlers.CombinedLoggingHandler(file, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if orig, ok := r.Context().Value(originalRequestKey{}).(*http.Request); ok {
			r = orig
		}
		h.ServeHTTP(w, r)
	}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		redacted := r.Clone(context.WithValue(r.Context(), originalRequestKey{}, r))
		redacted.URL.Path = ident.RedactPath(r.URL.Path)
		redacted.URL.RawPath = ""
		redacted.RequestURI = redacted.URL.RequestURI()
		logged.ServeHTTP(w, redacted)
	}), file
}

func newRotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
}

func closeQuietly(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		fmt.Fprintf(os.Stderr, "flashclip: close: %v\n", err)
	}
}
