// Command server runs the customer feedback warehouse API.
//
// Boot order: env/config, logging, database (schema + channel seeds), OTel,
// the HTTP router, and finally the daily ingestion scheduler. Shutdown is
// graceful: the HTTP server drains in-flight requests, the scheduler waits
// for a running job, and the tracer provider flushes its batch.
//
// @title       Feedback Warehouse API
// @version     1.0
// @description Customer feedback ingestion, normalization and aggregation pipeline.
// @BasePath    /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/tbourn/go-feedback-backend/docs"
	"github.com/tbourn/go-feedback-backend/internal/config"
	httpapi "github.com/tbourn/go-feedback-backend/internal/http"
	"github.com/tbourn/go-feedback-backend/internal/observability"
	"github.com/tbourn/go-feedback-backend/internal/repo"
	"github.com/tbourn/go-feedback-backend/internal/scheduler"
	"github.com/tbourn/go-feedback-backend/internal/services"
	"github.com/tbourn/go-feedback-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("opening database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrating schema failed")
	}

	ctx := context.Background()

	// Seed channel configurations from YAML when a seed file is configured.
	if cfg.Pipeline.ChannelSeed != "" {
		seeds, err := config.LoadChannelSeeds(cfg.Pipeline.ChannelSeed)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Pipeline.ChannelSeed).Msg("loading channel seeds failed")
		}
		for i := range seeds {
			if err := repo.UpsertChannel(ctx, db, &seeds[i]); err != nil {
				log.Fatal().Err(err).Str("channel", seeds[i].ChannelID).Msg("seeding channel failed")
			}
		}
		log.Info().Int("channels", len(seeds)).Msg("channel seeds applied")
	}

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg)

	var sched *scheduler.Scheduler
	if cfg.Pipeline.SchedulerOn {
		sched = scheduler.New(db, services.NewIngestService(db))
		if err := sched.Start(cfg.Pipeline.SchedulerSpec); err != nil {
			log.Fatal().Err(err).Str("spec", cfg.Pipeline.SchedulerSpec).Msg("starting scheduler failed")
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	log.Info().Msg("bye")
}
