package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/matricula-api/internal/middleware"
	"github.com/noah-isme/matricula-api/internal/models"
	"github.com/noah-isme/matricula-api/internal/service"
	"github.com/noah-isme/matricula-api/pkg/response"
)

type reportService interface {
	PeriodReport(ctx context.Context, periodID string) (*models.PeriodReport, bool, error)
	ExportPeriodReport(ctx context.Context, periodID string, format models.ReportFormat) (*service.ReportFile, error)
	Certificate(ctx context.Context, enrollmentID string, actor *models.JWTClaims) (*service.ReportFile, error)
	Timetable(ctx context.Context, enrollmentID string, actor *models.JWTClaims) (*service.ReportFile, error)
}

// ReportHandler exposes reporting and document endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// PeriodReport godoc
// @Summary Enrollment statistics of a period
// @Tags Reports
// @Produce json
// @Param periodId path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /reports/periods/{periodId} [get]
func (h *ReportHandler) PeriodReport(c *gin.Context) {
	report, cached, err := h.reports.PeriodReport(c.Request.Context(), c.Param("periodId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}

// ExportPeriodReport godoc
// @Summary Export period statistics
// @Tags Reports
// @Produce octet-stream
// @Param periodId path string true "Period ID"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Router /reports/periods/{periodId}/export [get]
func (h *ReportHandler) ExportPeriodReport(c *gin.Context) {
	format := models.ReportFormat(c.DefaultQuery("format", string(models.ReportFormatCSV)))
	h.send(c, func(ctx context.Context) (*service.ReportFile, error) {
		return h.reports.ExportPeriodReport(ctx, c.Param("periodId"), format)
	})
}

// Certificate godoc
// @Summary Enrollment certificate
// @Tags Reports
// @Produce application/pdf
// @Param id path string true "Enrollment ID"
// @Success 200 {file} file
// @Router /enrollments/{id}/certificate.pdf [get]
func (h *ReportHandler) Certificate(c *gin.Context) {
	h.send(c, func(ctx context.Context) (*service.ReportFile, error) {
		return h.reports.Certificate(ctx, c.Param("id"), claimsFromContext(c))
	})
}

// Timetable godoc
// @Summary Weekly timetable of an enrollment as iCalendar
// @Tags Reports
// @Produce text/calendar
// @Param id path string true "Enrollment ID"
// @Success 200 {file} file
// @Router /enrollments/{id}/timetable.ics [get]
func (h *ReportHandler) Timetable(c *gin.Context) {
	h.send(c, func(ctx context.Context) (*service.ReportFile, error) {
		return h.reports.Timetable(ctx, c.Param("id"), claimsFromContext(c))
	})
}

func (h *ReportHandler) send(c *gin.Context, render func(ctx context.Context) (*service.ReportFile, error)) {
	file, err := render(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.ContentType, file.Filename, file.Data)
}
