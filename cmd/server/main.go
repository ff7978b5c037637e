package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	config "github.com/nfaa/webapp/configs"
	"github.com/nfaa/webapp/internal/application/services"
	"github.com/nfaa/webapp/internal/core/domain/user"
	"github.com/nfaa/webapp/internal/core/ports"
	"github.com/nfaa/webapp/internal/infrastructure/db"
	"github.com/nfaa/webapp/internal/infrastructure/health"
	"github.com/nfaa/webapp/internal/infrastructure/httpserver"
	"github.com/nfaa/webapp/internal/infrastructure/memcache"
	"github.com/nfaa/webapp/internal/infrastructure/redis"
	"github.com/nfaa/webapp/internal/infrastructure/repositories"
	"github.com/nfaa/webapp/internal/infrastructure/sessionstore"
	"github.com/nfaa/webapp/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := newLogger(&cfg.Log)
	logger.Info("Starting NFAA web application...")

	clock := clockwork.NewRealClock()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStart()

	database, err := db.Open(startCtx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	if version, err := database.Migrate(cfg.Server.MigrationsPath); err != nil {
		logger.WithError(err).Warn("Failed to run migrations")
	} else {
		logger.WithField("schema_version", version).Info("Database schema up to date")
	}

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database)}

	var storeOpts []sessionstore.Option
	if cfg.Session.Backend == config.SessionBackendRedis {
		redisClient, err := redis.NewRedisClient(startCtx, &cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()

		logger.Info("Connected to Redis successfully; sessions persisted to Redis")
		storeOpts = append(storeOpts, sessionstore.WithPersistence(repositories.NewSessionRedisRepository(redisClient, clock, logger)))
		hcSlice = append(hcSlice, health.NewRedisHealthChecker(redisClient))
	}

	sessions := sessionstore.NewMemoryStore(clock, logger, storeOpts...)

	userCache := memcache.New[*user.User](clock, memcache.Options{Name: "users", MaxEntries: cfg.Cache.MaxEntries})
	userRepo := repositories.NewCachingUserRepository(repositories.NewUserRepository(database, logger), userCache, cfg.Cache.UserTTL)

	rateBuckets := repositories.NewRateLimitMemoryRepository()
	rateLimiterService := services.NewRateLimiterService(rateBuckets, &services.RateLimiterConfig{
		MaxRequests: cfg.RateLimit.MaxRequests,
		Window:      cfg.RateLimit.Window,
	}, logger)

	authService := services.NewAuthService(userRepo, sessions, utils.BcryptVerifier{}, cfg.Session.TTL, logger)

	janitor, err := services.NewJanitor(cfg.Cache.SweepSchedule, clock, logger, sessions, userCache, rateBuckets)
	if err != nil {
		logger.Fatal("Failed to schedule janitor:", err)
	}
	janitor.Start()

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		CookieName:     cfg.Session.CookieName,
		CookieSecure:   cfg.Session.CookieSecure,
	}

	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		AuthService:        authService,
		SessionStore:       sessions,
		RateLimiterService: rateLimiterService,
		UserRepository:     userRepo,
		Clock:              clock,
		HealthCheckers:     hcSlice,
	})

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Info("HTTP server stopped")
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	janitor.Stop()

	logger.Info("Server exited")
}

func newLogger(cfg *config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	return logger
}
