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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/edu-fleet-api/api/swagger"
	"github.com/noah-isme/edu-fleet-api/internal/handler"
	"github.com/noah-isme/edu-fleet-api/internal/repository"
	"github.com/noah-isme/edu-fleet-api/internal/router"
	"github.com/noah-isme/edu-fleet-api/internal/service"
	"github.com/noah-isme/edu-fleet-api/pkg/cache"
	"github.com/noah-isme/edu-fleet-api/pkg/config"
	"github.com/noah-isme/edu-fleet-api/pkg/database"
	"github.com/noah-isme/edu-fleet-api/pkg/logger"
	"github.com/noah-isme/edu-fleet-api/pkg/validation"
)

// @title Edu Fleet API
// @version 1.0.0
// @description School resource management: subjects, lesson plans, equipment fleets and reservations.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var (
		redisClient *redis.Client
		cacheRepo   service.CacheRepository
	)
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, "edu-fleet:")
		}
	}

	subjectRepo := repository.NewSubjectRepository(db)
	lessonPlanRepo := repository.NewLessonPlanRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	validate := validation.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.CurriculumTTL, logr, cacheRepo != nil)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var auditSvc *service.AuditService
	if cfg.Audit.Enabled {
		auditSvc = service.NewAuditService(auditRepo, metricsSvc, logr, service.AuditConfig{
			Workers:    cfg.Audit.Workers,
			BufferSize: cfg.Audit.BufferSize,
		})
		auditSvc.Start(ctx)
		defer auditSvc.Stop()
	}

	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, validate, logr)
	lessonPlanSvc := service.NewLessonPlanService(lessonPlanRepo, cacheSvc, validate, logr)
	equipmentSvc := service.NewEquipmentService(equipmentRepo, equipmentRepo, cacheSvc, validate, logr, service.EquipmentConfig{
		LowStockThreshold: cfg.Equipment.LowStockThreshold,
		GroupsTTL:         cfg.Cache.FleetGroupsTTL,
	})
	allocationSvc := service.NewAllocationService(db, lessonPlanRepo, equipmentRepo, reservationRepo, cacheSvc, metricsSvc, validate, logr)
	reservationSvc := service.NewReservationService(reservationRepo, cacheSvc, validate, logr)
	curriculumSvc := service.NewCurriculumService(subjectRepo, equipmentRepo, cacheSvc, logr, service.CurriculumConfig{
		ViewTTL: cfg.Cache.CurriculumTTL,
	})
	exportSvc := service.NewExportService(curriculumSvc, logr, nil)

	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	engine := router.Setup(cfg, router.Handlers{
		Auth:        handler.NewAuthHandler(),
		Subject:     handler.NewSubjectHandler(subjectSvc),
		LessonPlan:  handler.NewLessonPlanHandler(lessonPlanSvc, allocationSvc),
		Equipment:   handler.NewEquipmentHandler(equipmentSvc),
		Curriculum:  handler.NewCurriculumHandler(curriculumSvc, exportSvc),
		Reservation: handler.NewReservationHandler(reservationSvc),
		Metrics:     handler.NewMetricsHandler(metricsSvc, checks),
	}, router.Deps{
		Auth:    authSvc,
		Metrics: metricsSvc,
		Audit:   auditSvc,
		Logger:  logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	logr.Info("server exited")
}
