package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devyouns/go-memorial-backend/internal/http/middleware"
	"github.com/devyouns/go-memorial-backend/internal/session"
)

// StatsFunc reports queue depth and archive size; the moderation service
// implements it.
type StatsFunc func(ctx context.Context) (pending, published int64, err error)

// HealthHandler serves the liveness probe with store connectivity and
// moderation counters attached.
type HealthHandler struct {
	Sessions session.Store
	Stats    StatsFunc
}

// Handle processes GET /health. The response is always 200 so the process
// stays alive through a store outage; "status" flips to "degraded" and the
// failing store is named, which is what dashboards alert on.
func (h *HealthHandler) Handle(c *gin.Context) {
	lg := middleware.LoggerFrom(c)
	ctx := c.Request.Context()

	body := gin.H{
		"status":        "ok",
		"session_store": "ok",
	}

	if err := h.Sessions.Ping(ctx); err != nil {
		lg.Warn().Err(err).Msg("session store unreachable")
		body["status"] = "degraded"
		body["session_store"] = "down"
	}

	if h.Stats != nil {
		pending, published, err := h.Stats(ctx)
		if err != nil {
			lg.Warn().Err(err).Msg("moderation store unreachable")
			body["status"] = "degraded"
			body["moderation_store"] = "down"
		} else {
			body["moderation_store"] = "ok"
			body["pending_requests"] = pending
			body["published_records"] = published
		}
	}

	ok(c, http.StatusOK, body)
}
