package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-fleet-api/internal/handler"
	"github.com/noah-isme/edu-fleet-api/internal/middleware"
	"github.com/noah-isme/edu-fleet-api/internal/service"
	"github.com/noah-isme/edu-fleet-api/pkg/config"
	"github.com/noah-isme/edu-fleet-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/edu-fleet-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edu-fleet-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Subject     *handler.SubjectHandler
	LessonPlan  *handler.LessonPlanHandler
	Equipment   *handler.EquipmentHandler
	Curriculum  *handler.CurriculumHandler
	Reservation *handler.ReservationHandler
	Metrics     *handler.MetricsHandler
}

// Deps carries the services middleware needs.
type Deps struct {
	Auth    *service.AuthService
	Metrics *service.MetricsService
	Audit   *service.AuditService
	Logger  *zap.Logger
}

// Setup builds the gin engine with every route.
func Setup(cfg *config.Config, h Handlers, deps Deps) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta(), middleware.JWT(deps.Auth))

	api.GET("/auth/me", h.Auth.Me)

	subjects := api.Group("/subjects", middleware.Audit(deps.Audit, "subjects"))
	{
		subjects.GET("", h.Subject.List)
		subjects.GET("/:id", h.Subject.Get)
		subjects.POST("", middleware.TeacherOrAdmin(), h.Subject.Create)
		subjects.PUT("/:id", middleware.TeacherOrAdmin(), h.Subject.Update)
		subjects.DELETE("/:id", middleware.TeacherOrAdmin(), h.Subject.Delete)
	}

	lessonPlans := api.Group("/lesson-plans", middleware.Audit(deps.Audit, "lesson_plans"))
	{
		lessonPlans.GET("", h.LessonPlan.List)
		lessonPlans.GET("/:id", h.LessonPlan.Get)
		lessonPlans.POST("", middleware.TeacherOrAdmin(), h.LessonPlan.Create)
		lessonPlans.POST("/bulk", middleware.TeacherOrAdmin(), h.LessonPlan.BulkCreate)
		lessonPlans.PUT("/:id", middleware.TeacherOrAdmin(), h.LessonPlan.Update)
		lessonPlans.DELETE("/:id", middleware.TeacherOrAdmin(), h.LessonPlan.Delete)
		lessonPlans.POST("/:id/request-equipment", middleware.ManagerTeacherOrAdmin(), h.LessonPlan.RequestEquipment)
	}
	api.GET("/teacher/stats", middleware.TeacherOrAdmin(), h.LessonPlan.Stats)

	equipment := api.Group("/equipment", middleware.Audit(deps.Audit, "equipment"))
	{
		equipment.GET("", h.Equipment.List)
		equipment.GET("/groups", h.Equipment.Groups)
		equipment.GET("/low-stock", h.Equipment.LowStock)
		equipment.GET("/search/:serial", h.Equipment.Search)
		equipment.GET("/fleet/:baseSerial/next-available", h.Equipment.NextAvailable)
		equipment.GET("/:id", h.Equipment.Get)
		equipment.POST("", middleware.AdminOnly(), h.Equipment.Create)
		equipment.PUT("/repair", middleware.ManagerTeacherOrAdmin(), h.Equipment.StartRepair)
		equipment.PUT("/repair-complete", middleware.ManagerTeacherOrAdmin(), h.Equipment.CompleteRepair)
		equipment.PUT("/retire-fleet", middleware.AdminOnly(), h.Equipment.RetireFleet)
		equipment.PUT("/:id", middleware.AdminOnly(), h.Equipment.Update)
		equipment.PUT("/:id/status", middleware.AdminOnly(), h.Equipment.UpdateStatus)
		equipment.DELETE("/:id", middleware.AdminOnly(), h.Equipment.Delete)
	}

	curriculum := api.Group("/curriculum")
	{
		curriculum.GET("", h.Curriculum.View)
		curriculum.GET("/export", h.Curriculum.Export)
		curriculum.GET("/:subjectCode/recommendations", h.Curriculum.Recommendations)
	}

	requests := api.Group("/requests", middleware.Audit(deps.Audit, "requests"))
	{
		requests.GET("", h.Reservation.List)
		requests.GET("/calendar.ics", h.Reservation.Calendar)
		requests.PUT("/:id/status", middleware.ManagerOrAdmin(), h.Reservation.UpdateStatus)
	}

	return r
}
