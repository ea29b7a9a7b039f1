package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	_ "github.com/noah-isme/matricula-api/api/swagger"
	"github.com/noah-isme/matricula-api/internal/handler"
	"github.com/noah-isme/matricula-api/internal/repository"
	"github.com/noah-isme/matricula-api/internal/router"
	"github.com/noah-isme/matricula-api/internal/service"
	"github.com/noah-isme/matricula-api/pkg/cache"
	"github.com/noah-isme/matricula-api/pkg/config"
	"github.com/noah-isme/matricula-api/pkg/database"
	"github.com/noah-isme/matricula-api/pkg/logger"
	"github.com/noah-isme/matricula-api/pkg/validation"
)

// @title Matricula API
// @version 1.0.0
// @description University enrollment backend: sections, schedules, enrollments and payments.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
	binding.EnableDecoderDisallowUnknownFields = true

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Migrations.RunOnStart {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	var cacheStore service.CacheRepository
	var redisRepo *repository.CacheRepository
	if redisClient != nil {
		redisRepo = repository.NewCacheRepository(redisClient, logr)
		cacheStore = redisRepo
	}
	cacheSvc := service.NewCacheService(cacheStore, metrics, cfg.Reports.CacheTTL, logr, cfg.Reports.CacheEnabled)

	auditRepo := repository.NewAuditRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	lineRepo := repository.NewEnrollmentLineRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	configRepo := repository.NewConfigurationRepository(db)
	reportRepo := repository.NewReportRepository(db)

	validate := validation.New()
	clock := service.NewClock(cfg.Location())

	authSvc := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	settingsSvc := service.NewConfigurationService(configRepo, auditRepo, validate, logr)
	periodSvc := service.NewPeriodService(periodRepo, auditRepo, clock, validate, logr)
	prerequisiteSvc := service.NewPrerequisiteService(courseRepo, auditRepo, validate, logr)
	sectionSvc := service.NewSectionService(sectionRepo, scheduleRepo, courseRepo, periodRepo, teacherRepo, db, auditRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, sectionRepo, teacherRepo, db, auditRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(
		studentRepo, periodRepo, enrollmentRepo, lineRepo, sectionRepo, paymentRepo,
		settingsSvc, auditRepo, db, auditRepo, cacheSvc, metrics, clock, validate, logr,
	)
	paymentSvc := service.NewPaymentService(paymentRepo, enrollmentRepo, studentRepo, db, auditRepo, cacheSvc, metrics, validate, logr)
	reportSvc := service.NewReportService(reportRepo, periodRepo, enrollmentSvc, scheduleRepo, settingsSvc, cacheSvc, clock, logr)

	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisRepo != nil {
		checks["redis"] = redisRepo.Ping
	}

	engine := router.New(router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
		Verifier:       authSvc,
		Audit:          auditRepo,
	}, router.Handlers{
		Enrollments:     handler.NewEnrollmentHandler(enrollmentSvc),
		EnrollmentLines: handler.NewEnrollmentLineHandler(enrollmentSvc),
		Payments:        handler.NewPaymentHandler(paymentSvc),
		Sections:        handler.NewSectionHandler(sectionSvc),
		Schedules:       handler.NewScheduleHandler(scheduleSvc),
		Periods:         handler.NewPeriodHandler(periodSvc),
		Prerequisites:   handler.NewPrerequisiteHandler(prerequisiteSvc),
		Settings:        handler.NewConfigurationHandler(settingsSvc),
		Reports:         handler.NewReportHandler(reportSvc),
		System:          handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
