package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/config"
	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/handler"
	"github.com/Choos37ricK/blog-engine/internal/logger"
	"github.com/Choos37ricK/blog-engine/internal/router"
	"github.com/Choos37ricK/blog-engine/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	loaded := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	log := logger.Get()
	if len(loaded) > 0 {
		log.Info().Strs("files", loaded).Msg("loaded env files")
	}

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load policy")
	}

	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Init(cfg.DatabaseURL, gormLogLevel(cfg.AppEnv))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	if err := db.EnsureModerator(gdb, cfg.SuperRootName, cfg.SuperRootEmail, cfg.SuperRootPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to seed moderator")
	}
	if sqlDB, err := gdb.DB(); err == nil {
		prometheus.MustRegister(collectors.NewDBStatsCollector(sqlDB, "blog_engine"))
		defer sqlDB.Close()
	}

	directory, err := openDirectory(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.SessionBackend).Msg("failed to open session directory")
	}

	api := handler.NewAPI(gdb, directory, policy)
	r := router.SetupRouter(api, router.Options{
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		CORSOrigins:   cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("sessions", cfg.SessionBackend).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to run server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := directory.Close(); err != nil {
		log.Error().Err(err).Msg("close session directory")
	}
}

func openDirectory(cfg config.AppConfig) (session.Directory, error) {
	if cfg.SessionBackend != config.SessionBackendRedis {
		return session.NewMemoryDirectory(cfg.SessionTTL), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	return session.NewRedisDirectory(client, cfg.SessionTTL), nil
}

func gormLogLevel(env string) gormlogger.LogLevel {
	switch env {
	case "development", "dev", "local":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
