package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/carejoa/carejoa-backend/config"
	"github.com/carejoa/carejoa-backend/internal/app/controller"
	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/carejoa/carejoa-backend/internal/app/service"
	"github.com/carejoa/carejoa-backend/internal/db"
	"github.com/carejoa/carejoa-backend/internal/middleware"
	"github.com/carejoa/carejoa-backend/internal/router"
	"github.com/carejoa/carejoa-backend/internal/scheduler"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"github.com/carejoa/carejoa-backend/pkg/oauth/kakao"
	"github.com/carejoa/carejoa-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting CareJoa Backend Server", map[string]interface{}{
		"environment":   cfg.Server.Environment,
		"port":          cfg.Server.Port,
		"log_level":     logLevel,
		"session_store": cfg.Session.Store,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := middleware.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register validators", err)
	}

	// Session store
	var sessions repository.SessionStore
	switch cfg.Session.Store {
	case "redis":
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		sessions = repository.NewRedisSessionStore(redis.GetClient())
	default:
		sessions = repository.NewGormSessionStore(db.GetDB())
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	quoteRepo := repository.NewQuoteRepository(db.GetDB())
	partnerRepo := repository.NewPartnerRepository(db.GetDB())
	familyCareRepo := repository.NewFamilyCareRepository(db.GetDB())
	referralRepo := repository.NewReferralRepository(db.GetDB())
	facilityRepo := repository.NewFacilityRepository(db.GetDB())

	kakaoClient := kakao.NewClient(kakao.Config{
		RestAPIKey:   cfg.Kakao.RestAPIKey,
		ClientSecret: cfg.Kakao.ClientSecret,
		RedirectURI:  cfg.Kakao.RedirectURI,
		AuthBaseURL:  cfg.Kakao.AuthBaseURL,
		APIBaseURL:   cfg.Kakao.APIBaseURL,
	})
	if !kakaoClient.Configured() {
		logger.Warn("Kakao login disabled: KAKAO_REST_API_KEY is not set")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, quoteRepo, sessions, kakaoClient, cfg.Session.Secret, cfg.Session.UserTTL)
	adminService := service.NewAdminService(sessions, partnerRepo, familyCareRepo, cfg.Admin.Password, cfg.Admin.PasswordHash)
	quoteService := service.NewQuoteService(db.GetDB(), quoteRepo)
	referralService := service.NewReferralService(referralRepo)
	regionalService := service.NewRegionalService(db.GetDB(), partnerRepo)
	intakeService := service.NewIntakeService(partnerRepo, familyCareRepo)
	facilityService := service.NewFacilityService(facilityRepo)

	// Initialize controllers
	cookies := controller.CookieConfig{
		Domain:   cfg.Session.CookieDomain,
		Secure:   cfg.Session.CookieSecure,
		UserTTL:  cfg.Session.UserTTL,
		AdminTTL: model.AdminSessionTTL,
	}
	r := router.NewRouter(
		controller.NewAuthController(authService, cookies),
		controller.NewQuoteController(quoteService),
		controller.NewReferralController(referralService),
		controller.NewRegionalController(regionalService),
		controller.NewIntakeController(intakeService),
		controller.NewFacilityController(facilityService),
		controller.NewAdminController(adminService, cookies),
		middleware.NewAuthMiddleware(authService),
		middleware.NewAdminMiddleware(adminService),
		cfg,
	)
	engine := r.Setup()

	// 만료 세션 정리 (redis 는 TTL 로 만료)
	var cleanup *scheduler.SessionCleanupScheduler
	if cfg.Session.Store != "redis" && cfg.Session.CleanupCron != "" {
		cleanup = scheduler.NewSessionCleanupScheduler(sessions, cfg.Session.CleanupCron)
		if err := cleanup.Start(); err != nil {
			logger.Fatal("Failed to start session cleanup scheduler", err)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...", map[string]interface{}{
		"timeout": cfg.Server.ShutdownTimeout.String(),
	})

	if cleanup != nil {
		cleanup.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
		return
	}

	logger.Info("Server stopped successfully")
}
