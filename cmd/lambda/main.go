package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

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

// proxy routes API Gateway events of either payload version to one router
type proxy struct {
	v1     *ginadapter.GinLambda
	v2     *ginadapter.GinLambdaV2
	logger *slog.Logger
}

func newProxy(router *gin.Engine, logger *slog.Logger) *proxy {
	return &proxy{
		v1:     ginadapter.New(router),
		v2:     ginadapter.NewV2(router),
		logger: logger,
	}
}

// Handle accepts HTTP API / Function URL (v2) and REST API / ALB (v1) events
func (p *proxy) Handle(ctx context.Context, event json.RawMessage) (any, error) {
	var reqV2 events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(event, &reqV2); err == nil && reqV2.RequestContext.HTTP.Method != "" {
		p.logger.Debug("Handling v2 event", "method", reqV2.RequestContext.HTTP.Method, "path", ident.RedactPath(reqV2.RawPath))
		return p.v2.ProxyWithContext(ctx, reqV2)
	}

	var reqV1 events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &reqV1); err == nil && reqV1.HTTPMethod != "" {
		p.logger.Debug("Handling v1 event", "method", reqV1.HTTPMethod, "path", ident.RedactPath(reqV1.Path))
		return p.v1.ProxyWithContext(ctx, reqV1)
	}

	// The console's default test event is {"key1": ..., "key2": ..., "key3": ...}
	var testEvent map[string]any
	if err := json.Unmarshal(event, &testEvent); err == nil {
		if _, ok := testEvent["key1"]; ok {
			return events.APIGatewayV2HTTPResponse{
				StatusCode: http.StatusOK,
				Body:       `{"message":"flashclip is running; send an API Gateway or Function URL request"}`,
				Headers:    map[string]string{"Content-Type": "application/json"},
			}, nil
		}
	}

	p.logger.Warn("Unsupported event", "size", len(event))
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       "Unsupported event type",
		Headers:    map[string]string{"Content-Type": "text/plain"},
	}, errors.New("unsupported event")
}

// loadConfig reads FLASHCLIP_* variables; without an explicit choice the
// function stores clips in DynamoDB.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if os.Getenv("FLASHCLIP_STORAGE_TYPE") == "" {
		cfg.StorageType = config.StorageDynamoDB
	}
	cfg.Version = Version
	cfg.BuildTime = BuildTime
	cfg.CommitHash = CommitHash
	return cfg, cfg.Validate()
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.LogLevel == "debug" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	gin.SetMode(gin.ReleaseMode)
	app, err := server.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	logger.Info("Lambda function initialized",
		"version", cfg.Version,
		"storage", cfg.StorageType)

	lambda.Start(newProxy(app.Router, logger).Handle)
}
