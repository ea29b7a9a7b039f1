package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/middleware"
	"github.com/noah-isme/matricula-api/internal/models"
	"github.com/noah-isme/matricula-api/internal/service"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

type reportServiceMock struct {
	cached     bool
	lastFormat models.ReportFormat
}

func (m *reportServiceMock) PeriodReport(ctx context.Context, periodID string) (*models.PeriodReport, bool, error) {
	return &models.PeriodReport{PeriodID: periodID, TotalEnrollments: 3}, m.cached, nil
}

func (m *reportServiceMock) ExportPeriodReport(ctx context.Context, periodID string, format models.ReportFormat) (*service.ReportFile, error) {
	m.lastFormat = format
	if format != models.ReportFormatCSV {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
	return &service.ReportFile{Filename: "enrollment_report_2026-1.csv", ContentType: "text/csv", Data: []byte("status,count\n")}, nil
}

func (m *reportServiceMock) Certificate(ctx context.Context, enrollmentID string, actor *models.JWTClaims) (*service.ReportFile, error) {
	return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another student")
}

func (m *reportServiceMock) Timetable(ctx context.Context, enrollmentID string, actor *models.JWTClaims) (*service.ReportFile, error) {
	return &service.ReportFile{Filename: "timetable.ics", ContentType: "text/calendar; charset=utf-8", Data: []byte("BEGIN:VCALENDAR")}, nil
}

func TestReportHandlerPeriodReportCacheMeta(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{cached: true})
	c, w := newTestContext(http.MethodGet, "/reports/periods/p-1", nil, adminClaims)
	c.Params = gin.Params{{Key: "periodId", Value: "p-1"}}

	handler.PeriodReport(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Equal(t, true, middleware.ExtractMeta(c)["cache_hit"])
}

func TestReportHandlerExportDefaultsToCSV(t *testing.T) {
	svc := &reportServiceMock{}
	handler := NewReportHandler(svc)
	c, w := newTestContext(http.MethodGet, "/reports/periods/p-1/export", nil, adminClaims)
	c.Params = gin.Params{{Key: "periodId", Value: "p-1"}}

	handler.ExportPeriodReport(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ReportFormatCSV, svc.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "enrollment_report_2026-1.csv")
	assert.Equal(t, "status,count\n", w.Body.String())
}

func TestReportHandlerExportRejectsFormat(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{})
	c, w := newTestContext(http.MethodGet, "/reports/periods/p-1/export?format=docx", nil, adminClaims)
	c.Params = gin.Params{{Key: "periodId", Value: "p-1"}}

	handler.ExportPeriodReport(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerDocuments(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{})
	student := &models.JWTClaims{UserID: "u-2", Role: models.RoleStudent}

	c, w := newTestContext(http.MethodGet, "/enrollments/enr-1/certificate.pdf", nil, student)
	c.Params = gin.Params{{Key: "id", Value: "enr-1"}}
	handler.Certificate(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = newTestContext(http.MethodGet, "/enrollments/enr-1/timetable.ics", nil, student)
	c.Params = gin.Params{{Key: "id", Value: "enr-1"}}
	handler.Timetable(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestMetricsHandlerReady(t *testing.T) {
	healthy := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(ctx context.Context) error { return nil },
	})
	c, w := newTestContext(http.MethodGet, "/ready", nil, nil)
	healthy.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	failing := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})
	c, w = newTestContext(http.MethodGet, "/ready", nil, nil)
	failing.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	c, w = newTestContext(http.MethodGet, "/metrics", nil, nil)
	failing.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
