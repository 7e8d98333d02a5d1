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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	"github.com/BruksfildServices01/hospital-device-booking/internal/cache"
	"github.com/BruksfildServices01/hospital-device-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/hospital-device-booking/internal/db"
	"github.com/BruksfildServices01/hospital-device-booking/internal/logging"
	"github.com/BruksfildServices01/hospital-device-booking/internal/metrics"
	"github.com/BruksfildServices01/hospital-device-booking/internal/middleware"
	"github.com/BruksfildServices01/hospital-device-booking/internal/routes"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(cfg.Env)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// ======================================================
	// AUDIT PIPELINE
	// ======================================================
	sinks := audit.MultiSink{audit.NewStore(db)}
	var broker *audit.AMQPSink
	if cfg.AMQPUrl != "" {
		broker = audit.NewAMQPSink(cfg.AMQPUrl, cfg.AuditQueue)
		sinks = append(sinks, broker)
	}
	dispatcher := audit.NewDispatcher(sinks, cfg.AuditBuffer)

	// ======================================================
	// CACHE + RATE LIMIT
	// ======================================================
	rdb := cache.NewClient(cfg)
	responses := cache.NewResponseCache(rdb, cfg.CacheTTL)

	limiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.LoginRatePerMin), 5, 10*time.Minute)
	go limiter.Run()

	// ======================================================
	// HTTP
	// ======================================================
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		metrics.GinMiddleware(),
		middleware.CORSMiddleware(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.RegisterRoutes(r, routes.Deps{
		DB:      db,
		Config:  cfg,
		Audit:   dispatcher,
		Cache:   responses,
		Limiter: limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Close(ctx); err != nil {
		log.Error().Err(err).Msg("audit queue not drained")
	}
	if broker != nil {
		if err := broker.Close(); err != nil {
			log.Error().Err(err).Msg("amqp close")
		}
	}
	limiter.Stop()
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
