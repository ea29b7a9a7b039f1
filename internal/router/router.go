package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/matricula-api/internal/handler"
	"github.com/noah-isme/matricula-api/internal/middleware"
	"github.com/noah-isme/matricula-api/internal/models"
	"github.com/noah-isme/matricula-api/internal/service"
	"github.com/noah-isme/matricula-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/matricula-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/matricula-api/pkg/middleware/requestid"
)

// Options carries the process level collaborators of the HTTP surface.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Verifier       middleware.TokenVerifier
	Audit          middleware.AuditWriter
}

// Handlers groups every resource handler mounted by New.
type Handlers struct {
	Enrollments     *handler.EnrollmentHandler
	EnrollmentLines *handler.EnrollmentLineHandler
	Payments        *handler.PaymentHandler
	Sections        *handler.SectionHandler
	Schedules       *handler.ScheduleHandler
	Periods         *handler.PeriodHandler
	Prerequisites   *handler.PrerequisiteHandler
	Settings        *handler.ConfigurationHandler
	Reports         *handler.ReportHandler
	System          *handler.MetricsHandler
}

// New builds the gin engine with the full route table.
func New(opts Options, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	if opts.Logger != nil {
		r.Use(logger.GinMiddleware(opts.Logger))
	}
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))

	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)
	r.GET("/metrics", h.System.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := opts.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)
	api.Use(middleware.JWT(opts.Verifier), middleware.WithResponseMeta())

	staff := middleware.Staff()
	admin := middleware.AdminOnly()
	selfService := middleware.RBAC(models.RoleAdmin, models.RoleStaff, models.RoleStudent)
	documents := middleware.Audit(opts.Audit, models.AuditActionDocumentIssue, "enrollment", "id")

	enrollments := api.Group("/enrollments")
	{
		enrollments.POST("", selfService, h.Enrollments.Create)
		enrollments.GET("", selfService, h.Enrollments.List)
		enrollments.GET("/period/:periodId", staff, h.Enrollments.ListByPeriod)
		enrollments.GET("/:id", selfService, h.Enrollments.Get)
		enrollments.PATCH("/:id/status", staff, h.Enrollments.UpdateStatus)
		enrollments.PATCH("/:id/cancel", selfService, h.Enrollments.Cancel)
		enrollments.GET("/:id/lines", h.Enrollments.Lines)
		enrollments.GET("/:id/history", staff, h.Enrollments.History)
		enrollments.GET("/:id/balance", h.Payments.Balance)
		enrollments.GET("/:id/payments", h.Payments.ListByEnrollment)
		enrollments.GET("/:id/certificate.pdf", documents, h.Reports.Certificate)
		enrollments.GET("/:id/timetable.ics", documents, h.Reports.Timetable)
	}

	lines := api.Group("/enrollment-lines")
	{
		lines.POST("", selfService, h.EnrollmentLines.Create)
		lines.GET("", h.EnrollmentLines.List)
		lines.GET("/:id", h.EnrollmentLines.Get)
		lines.PATCH("/:id/withdraw", selfService, h.EnrollmentLines.Withdraw)
	}

	payments := api.Group("/payments", staff)
	{
		payments.POST("", h.Payments.Record)
		payments.GET("", h.Payments.List)
		payments.GET("/:id", h.Payments.Get)
		payments.PATCH("/:id/cancel", h.Payments.Cancel)
	}

	sections := api.Group("/sections")
	{
		sections.GET("", h.Sections.List)
		sections.GET("/course/:courseId/period/:periodId", h.Sections.ListByCourseAndPeriod)
		sections.GET("/:id", h.Sections.Get)
		sections.POST("", staff, h.Sections.Create)
		sections.PUT("/:id", staff, h.Sections.Update)
		sections.DELETE("/:id", staff, h.Sections.Delete)
	}

	schedules := api.Group("/schedules")
	{
		schedules.GET("", h.Schedules.List)
		schedules.GET("/teacher/:teacherId", h.Schedules.ListByTeacher)
		schedules.GET("/:id", h.Schedules.Get)
		schedules.POST("", staff, h.Schedules.Create)
		schedules.POST("/check-conflicts", staff, h.Schedules.CheckConflicts)
		schedules.PUT("/:id", staff, h.Schedules.Update)
		schedules.DELETE("/:id", staff, h.Schedules.Delete)
	}

	periods := api.Group("/periods")
	{
		periods.GET("", h.Periods.List)
		periods.GET("/current", h.Periods.Current)
		periods.GET("/:id", h.Periods.Get)
		periods.POST("", admin, h.Periods.Create)
		periods.PATCH("/:id/status", admin, h.Periods.UpdateStatus)
	}

	prerequisites := api.Group("/prerequisites")
	{
		prerequisites.POST("", admin, h.Prerequisites.Create)
		prerequisites.GET("/course/:courseId", h.Prerequisites.ListByCourse)
	}

	settings := api.Group("/settings")
	{
		settings.GET("", h.Settings.List)
		settings.GET("/:key", h.Settings.Get)
		settings.PUT("", admin, h.Settings.BulkUpdate)
		settings.PUT("/:key", admin, h.Settings.Update)
	}

	reports := api.Group("/reports", staff)
	{
		reports.GET("/periods/:periodId", h.Reports.PeriodReport)
		reports.GET("/periods/:periodId/export",
			middleware.Audit(opts.Audit, models.AuditActionReportExport, "period", "periodId"),
			h.Reports.ExportPeriodReport)
	}

	api.GET("/system/metrics", admin, h.System.System)

	return r
}
