package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/rehasoft/rehab-center-api/api/swagger"
	"github.com/rehasoft/rehab-center-api/internal/handler"
	internalmiddleware "github.com/rehasoft/rehab-center-api/internal/middleware"
	"github.com/rehasoft/rehab-center-api/internal/repository"
	"github.com/rehasoft/rehab-center-api/internal/service"
	"github.com/rehasoft/rehab-center-api/pkg/cache"
	"github.com/rehasoft/rehab-center-api/pkg/config"
	"github.com/rehasoft/rehab-center-api/pkg/database"
	"github.com/rehasoft/rehab-center-api/pkg/lock"
	"github.com/rehasoft/rehab-center-api/pkg/logger"
	corsmiddleware "github.com/rehasoft/rehab-center-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rehasoft/rehab-center-api/pkg/middleware/requestid"
)

// @title Rehab Center API
// @version 0.1.0
// @description Therapy session scheduling and availability service
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, booking lock and availability cache disabled", "error", err)
		redisClient = nil
	}

	therapistRepo := repository.NewTherapistRepository(db)
	beneficiaryRepo := repository.NewBeneficiaryRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	noteRepo := repository.NewSessionNoteRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	metricsSvc := service.NewMetricsService()

	notificationSvc := service.NewNotificationService(notificationRepo, cfg.Notifications, logr)
	notificationSvc.Start(context.Background())
	defer notificationSvc.Stop()

	availabilitySvc := service.NewAvailabilityService(availabilityRepo, therapistRepo, sessionRepo, redisClient, cfg.Scheduling, metricsSvc, nil, logr)
	conflictSvc := service.NewConflictService(sessionRepo, availabilitySvc, logr)
	gapfillSvc := service.NewGapFillService(waitlistRepo, therapistRepo, notificationSvc, logr)

	var bookingLock lock.Locker
	if redisClient != nil {
		bookingLock = lock.NewRedisBookingLocker(redisClient, cfg.Scheduling.LockTTL)
	}
	sessionSvc := service.NewSessionService(sessionRepo, noteRepo, therapistRepo, beneficiaryRepo, availabilitySvc, conflictSvc, gapfillSvc, bookingLock, metricsSvc, nil, logr)

	substitutionSvc := service.NewSubstitutionService(therapistRepo, sessionRepo, conflictSvc, cfg.Substitution, logr)
	waitlistSvc := service.NewWaitlistService(waitlistRepo, beneficiaryRepo, cfg.Waitlist, nil, logr)
	therapistSvc := service.NewTherapistService(therapistRepo, nil, logr)
	beneficiarySvc := service.NewBeneficiaryService(beneficiaryRepo, nil, logr)
	exportSvc := service.NewExportService(sessionRepo, therapistRepo, logr)

	sessionHandler := handler.NewSessionHandler(sessionSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	therapistHandler := handler.NewTherapistHandler(therapistSvc)
	beneficiaryHandler := handler.NewBeneficiaryHandler(beneficiarySvc)
	waitlistHandler := handler.NewWaitlistHandler(waitlistSvc)
	substitutionHandler := handler.NewSubstitutionHandler(substitutionSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/snapshot", metricsHandler.Snapshot)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	therapists := api.Group("/therapists")
	therapists.GET("", therapistHandler.List)
	therapists.POST("", internalmiddleware.Audit(auditRepo, "create", "therapist"), therapistHandler.Create)
	therapists.GET("/:id", therapistHandler.Get)
	therapists.PUT("/:id", internalmiddleware.Audit(auditRepo, "update", "therapist"), therapistHandler.Update)
	therapists.DELETE("/:id", internalmiddleware.Audit(auditRepo, "deactivate", "therapist"), therapistHandler.Delete)
	therapists.GET("/:id/availability", availabilityHandler.Get)
	therapists.PUT("/:id/availability", internalmiddleware.Audit(auditRepo, "upsert", "availability"), availabilityHandler.Upsert)
	therapists.GET("/:id/availability/check", availabilityHandler.Check)
	therapists.GET("/:id/substitutes", substitutionHandler.Find)
	if cfg.Exports.Enabled {
		therapists.GET("/:id/schedule/export", exportHandler.Schedule)
	}

	beneficiaries := api.Group("/beneficiaries")
	beneficiaries.GET("", beneficiaryHandler.List)
	beneficiaries.POST("", internalmiddleware.Audit(auditRepo, "create", "beneficiary"), beneficiaryHandler.Create)
	beneficiaries.GET("/:id", beneficiaryHandler.Get)
	beneficiaries.PUT("/:id", internalmiddleware.Audit(auditRepo, "update", "beneficiary"), beneficiaryHandler.Update)
	beneficiaries.DELETE("/:id", internalmiddleware.Audit(auditRepo, "deactivate", "beneficiary"), beneficiaryHandler.Delete)

	sessions := api.Group("/sessions")
	sessions.GET("", sessionHandler.List)
	sessions.POST("", internalmiddleware.Audit(auditRepo, "schedule", "session"), sessionHandler.Schedule)
	sessions.GET("/:id", sessionHandler.Get)
	sessions.PUT("/:id/reschedule", internalmiddleware.Audit(auditRepo, "reschedule", "session"), sessionHandler.Reschedule)
	sessions.PATCH("/:id/status", internalmiddleware.Audit(auditRepo, "update-status", "session"), sessionHandler.UpdateStatus)
	sessions.POST("/:id/notes", internalmiddleware.Audit(auditRepo, "document", "session"), sessionHandler.Document)
	sessions.GET("/:id/notes", sessionHandler.GetNote)

	waitlist := api.Group("/waitlist")
	waitlist.GET("", waitlistHandler.List)
	waitlist.POST("", internalmiddleware.Audit(auditRepo, "create", "waitlist"), waitlistHandler.Create)
	waitlist.GET("/:id", waitlistHandler.Get)
	waitlist.POST("/:id/respond", internalmiddleware.Audit(auditRepo, "respond", "waitlist"), waitlistHandler.Respond)
	waitlist.POST("/expire", internalmiddleware.Audit(auditRepo, "expire", "waitlist"), waitlistHandler.ExpireStale)

	notifications := api.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.POST("/:id/read", notificationHandler.MarkRead)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
