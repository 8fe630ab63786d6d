package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/api/swagger"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/handler"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/middleware"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/notify"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/repository"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/service"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/cache"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/config"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/database"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/logger"
	corsmiddleware "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/middleware/requestid"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/storage"
)

// @title Pillar Community Portal API
// @version 1.0.0
// @description Backend for the nonprofit public site and admin portal
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Webhook.Secret == config.InsecureWebhookSecret {
		logr.Warn("WEBHOOK_SECRET is using the development default, override it in production")
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		redisClient = nil
	}

	uploads, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads directory", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	volunteerRepo := repository.NewVolunteerRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	contentRepo := repository.NewContentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Outbound notification relay.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relay := notify.NewRelay(cfg.Notifications, logr)
	relay.Start(rootCtx)
	defer relay.Stop()

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "pillar-portal",
	})
	dashboardSvc := service.NewDashboardService(applicationRepo, volunteerRepo, documentRepo, userRepo, cacheRepo, cfg.Dashboard.CacheTTL, metricsSvc, logr)
	userSvc := service.NewUserService(userRepo, auditRepo, dashboardSvc, validate, logr)
	applicationSvc := service.NewApplicationService(applicationRepo, auditRepo, relay, dashboardSvc, validate, logr)
	volunteerSvc := service.NewVolunteerService(volunteerRepo, auditRepo, uploads, relay, dashboardSvc, cfg.Uploads.ResumeAllowedMIMEs, cfg.Uploads.MaxFileSizeBytes, validate, logr)
	documentSvc := service.NewDocumentService(documentRepo, auditRepo, uploads, signer, dashboardSvc, cfg.Uploads.AllowedMIMEs, cfg.Uploads.MaxFileSizeBytes, validate, logr)
	contentSvc := service.NewContentService(contentRepo, auditRepo, relay, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc, metricsSvc)
	volunteerHandler := handler.NewVolunteerHandler(volunteerSvc, metricsSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	contentHandler := handler.NewContentHandler(contentSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	webhookHandler := handler.NewWebhookHandler(contentSvc, metricsSvc, relay, cfg.Webhook.Secret, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		// Public surface.
		api.Any("/webhook/content", webhookHandler.Dispatch)
		api.POST("/applications", applicationHandler.Submit)
		api.POST("/volunteers", volunteerHandler.Submit)
		api.GET("/content/news", contentHandler.ListNews)
		api.GET("/content/news/:id", contentHandler.GetNews)
		api.GET("/content/programs", contentHandler.ListPrograms)
		api.GET("/content/mission", contentHandler.GetMission)
		api.GET("/content/statistics", contentHandler.GetStatistics)
		api.GET("/documents/file", documentHandler.Download)

		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)

		// Authenticated portal surface.
		authed := api.Group("")
		authed.Use(middleware.JWT(authSvc))
		{
			authed.POST("/auth/logout", authHandler.Logout)
			authed.PUT("/auth/password", authHandler.ChangePassword)
			authed.GET("/me", authHandler.Me)
			authed.GET("/me/menu", dashboardHandler.Menu)
			authed.GET("/dashboard/stats", dashboardHandler.Stats)

			staff := authed.Group("")
			staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleManager, models.RoleCaseWorker))
			{
				staff.GET("/applications", applicationHandler.List)
				staff.GET("/applications/export", applicationHandler.Export)
				staff.GET("/applications/:id", applicationHandler.Get)
				staff.PUT("/applications/:id/status", applicationHandler.SetStatus)

				staff.GET("/volunteers", volunteerHandler.List)
				staff.GET("/volunteers/export", volunteerHandler.Export)
				staff.GET("/volunteers/:id", volunteerHandler.Get)
				staff.PUT("/volunteers/:id/status", volunteerHandler.SetStatus)
				staff.POST("/volunteers/:id/resume", volunteerHandler.AttachResume)
			}

			library := authed.Group("")
			library.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleManager))
			{
				library.GET("/documents", documentHandler.List)
				library.GET("/documents/export", documentHandler.Export)
				library.POST("/documents", documentHandler.Upload)
				library.GET("/documents/:id/download", documentHandler.SignDownload)
				library.DELETE("/documents/:id", documentHandler.Delete)
			}

			admin := authed.Group("")
			admin.Use(middleware.RequireRoles(models.RoleAdmin))
			{
				admin.GET("/users", userHandler.List)
				admin.GET("/users/export", userHandler.Export)
				admin.GET("/users/:id", userHandler.Get)
				admin.POST("/users", userHandler.Create)
				admin.PUT("/users/:id", userHandler.Update)
				admin.DELETE("/users/:id", userHandler.Deactivate)
			}
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	if err := cacheRepo.Close(); err != nil {
		logr.Sugar().Warnw("failed to close redis", "error", err)
	}
	logr.Info("server stopped")
}
