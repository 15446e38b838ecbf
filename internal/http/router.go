// Package httpapi wires the HTTP transport (Gin) to the bot services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, security
// headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - The webhook secret stays out of logs and metric labels
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/devyouns/go-memorial-backend/internal/bot"
	"github.com/devyouns/go-memorial-backend/internal/config"
	"github.com/devyouns/go-memorial-backend/internal/http/handlers"
	"github.com/devyouns/go-memorial-backend/internal/http/middleware"
	"github.com/devyouns/go-memorial-backend/internal/intake"
	"github.com/devyouns/go-memorial-backend/internal/moderation"
	"github.com/devyouns/go-memorial-backend/internal/repo"
	"github.com/devyouns/go-memorial-backend/internal/session"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine, builds the moderation/intake/orchestration services from the
// injected stores, and mounts the webhook, health, and metrics endpoints.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per client IP)
//  8. Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, sessions session.Store, sender bot.Sender, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB; webhook payloads are small)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 8) Security headers; webhook responses are never cacheable
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Dependency injection: orchestrator ← services ← stores
	modSvc := moderation.NewService(db)
	intakeSvc := intake.NewService(sessions, modSvc)
	orc := bot.New(intakeSvc, modSvc, sender, cfg.Bot.ModeratorID)

	webhook := &handlers.WebhookHandler{
		Secret:     cfg.Bot.WebhookSecret,
		Dispatcher: orc,
		Dedupe: func(ctx context.Context, updateID int64) error {
			return repo.MarkUpdateProcessed(ctx, db, updateID, cfg.UpdateTTL)
		},
	}
	health := &handlers.HealthHandler{
		Sessions: sessions,
		Stats:    modSvc.Stats,
	}

	r.GET("/health", health.Handle)
	r.POST("/webhook/:secret", webhook.Handle)
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
