package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fittracker-api/internal/config"
	"github.com/fittracker-api/internal/middleware"
	"github.com/fittracker-api/internal/models"
	"github.com/fittracker-api/internal/repository"
	"github.com/fittracker-api/internal/router"
	"github.com/fittracker-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := middleware.InitLogger(cfg.Log.Dir, cfg.Log.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer middleware.Logger.Sync()
	zlog := middleware.Logger

	zlog.Info("starting_application",
		zap.String("version", Version),
		zap.String("commit", Commit),
		zap.String("build_time", BuildTime),
	)

	gin.SetMode(cfg.Server.Mode)

	db, err := initDatabase(cfg)
	if err != nil {
		zlog.Fatal("database_init_failed", zap.Error(err))
	}

	if err := autoMigrate(db); err != nil {
		zlog.Fatal("migration_failed", zap.Error(err))
	}

	rdb := initRedis(cfg, zlog)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	dailyRepo := repository.NewDailyActivityRepository(db)
	manualRepo := repository.NewManualEntryRepository(db)

	// Initialize services
	hub := service.NewRealtimeHub(zlog)
	weeklyService := service.NewWeeklyService(userRepo, dailyRepo, manualRepo, rdb, cfg.Redis.WeeklyTTL(), zlog)
	services := router.Services{
		Auth:          service.NewAuthService(userRepo, cfg.JWT),
		User:          service.NewUserService(userRepo, weeklyService),
		DailyActivity: service.NewDailyActivityService(dailyRepo, userRepo, weeklyService, hub),
		ManualEntry:   service.NewManualEntryService(manualRepo, userRepo, weeklyService, hub),
		Weekly:        weeklyService,
		Hub:           hub,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine := router.New(services, router.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Version:     Version,
		Registry:    registry,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		zlog.Info("starting_http_server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("http_server_failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting_down_server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server_forced_shutdown", zap.Error(err))
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			zlog.Warn("redis_close_failed", zap.Error(err))
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	zlog.Info("server_exited")
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.Server.Mode == gin.ReleaseMode {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}
	gormConfig := &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	switch cfg.Database.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn := cfg.Database.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		return gorm.Open(sqlite.Open(dsn), gormConfig)

	case "postgres", "":
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), gormConfig)
		if err != nil {
			return nil, err
		}

		// Configure connection pool
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)

		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// initRedis returns nil when caching is disabled or Redis is unreachable
func initRedis(cfg *config.Config, zlog *zap.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		zlog.Info("redis_disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		zlog.Warn("redis_unavailable_cache_disabled", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		_ = rdb.Close()
		return nil
	}

	zlog.Info("redis_connected", zap.String("addr", cfg.Redis.Addr()))
	return rdb
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.DailyActivity{},
		&models.ManualEntry{},
	)
}
