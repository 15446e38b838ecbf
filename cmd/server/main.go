// Command server runs the memorial intake bot: an HTTP server exposing the
// Telegram webhook, a health probe, and Prometheus metrics.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/devyouns/go-memorial-backend/internal/config"
	httpapi "github.com/devyouns/go-memorial-backend/internal/http"
	"github.com/devyouns/go-memorial-backend/internal/observability"
	"github.com/devyouns/go-memorial-backend/internal/repo"
	"github.com/devyouns/go-memorial-backend/internal/session"
	"github.com/devyouns/go-memorial-backend/internal/sysutil"
	"github.com/devyouns/go-memorial-backend/internal/telegram"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Optional .env for local development; real deployments use the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			log.Warn().Err(err).Msg("otel shutdown error")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	// Redis when configured, in-process fallback otherwise. The fallback
	// loses half-finished intakes on restart, which is acceptable for
	// development but logged loudly.
	var sessions session.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		sessions = redisStore
		log.Info().Msg("using redis session store")
	} else {
		sessions = session.NewMemoryStore()
		log.Warn().Msg("REDIS_URL not set: sessions are in-memory and lost on restart")
	}

	// Expired webhook dedupe entries are reclaimed lazily on insert; the
	// sweeper keeps the table small during quiet periods too.
	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go pruneProcessedUpdates(pruneCtx, db)

	tg := telegram.NewClient(cfg.Bot.Token)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, sessions, tg, cfg)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("version", version).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

// pruneProcessedUpdates deletes expired webhook dedupe rows once an hour
// until ctx is canceled.
func pruneProcessedUpdates(ctx context.Context, db *gorm.DB) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.PruneProcessedUpdates(ctx, db, time.Now().UTC())
			if err != nil {
				log.Warn().Err(err).Msg("dedupe prune failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("rows", n).Msg("dedupe entries pruned")
			}
		}
	}
}
