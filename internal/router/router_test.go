package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/handler"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

type tokenStub map[string]models.UserRole

func (s tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	role, ok := s[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: token, Role: role}, nil
}

type periodStub struct{}

func (periodStub) Create(ctx context.Context, req dto.CreatePeriodRequest, actor *models.JWTClaims) (*models.AcademicPeriod, error) {
	return &models.AcademicPeriod{ID: "p-new"}, nil
}

func (periodStub) Get(ctx context.Context, id string) (*models.AcademicPeriod, error) {
	return &models.AcademicPeriod{ID: id}, nil
}

func (periodStub) List(ctx context.Context, filter models.PeriodFilter) ([]models.AcademicPeriod, *models.Pagination, error) {
	return nil, models.NewPagination(1, 20, 0), nil
}

func (periodStub) Current(ctx context.Context) (*models.AcademicPeriod, error) {
	return &models.AcademicPeriod{ID: "p-current"}, nil
}

func (periodStub) UpdateStatus(ctx context.Context, id string, req dto.UpdatePeriodStatusRequest, actor *models.JWTClaims) (*models.AcademicPeriod, error) {
	return &models.AcademicPeriod{ID: id}, nil
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(Options{
		Verifier: tokenStub{"admin": models.RoleAdmin, "staff": models.RoleStaff, "student": models.RoleStudent, "teacher": models.RoleTeacher},
	}, Handlers{
		Enrollments:     handler.NewEnrollmentHandler(nil),
		EnrollmentLines: handler.NewEnrollmentLineHandler(nil),
		Payments:        handler.NewPaymentHandler(nil),
		Sections:        handler.NewSectionHandler(nil),
		Schedules:       handler.NewScheduleHandler(nil),
		Periods:         handler.NewPeriodHandler(periodStub{}),
		Prerequisites:   handler.NewPrerequisiteHandler(nil),
		Settings:        handler.NewConfigurationHandler(nil),
		Reports:         handler.NewReportHandler(nil),
		System:          handler.NewMetricsHandler(nil, nil),
	})
}

func serve(engine *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	engine.ServeHTTP(w, req)
	return w
}

func TestPublicProbes(t *testing.T) {
	engine := newTestEngine()
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/ready", "").Code)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	engine := newTestEngine()
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/enrollments", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/enrollments", "forged").Code)
}

func TestRoleGates(t *testing.T) {
	engine := newTestEngine()
	cases := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"student records payment", http.MethodPost, "/api/v1/payments", "student"},
		{"teacher enrolls", http.MethodPost, "/api/v1/enrollments", "teacher"},
		{"student lists by period", http.MethodGet, "/api/v1/enrollments/period/p-1", "student"},
		{"staff creates period", http.MethodPost, "/api/v1/periods", "staff"},
		{"staff updates settings", http.MethodPut, "/api/v1/settings/credit_cost", "staff"},
		{"student reads reports", http.MethodGet, "/api/v1/reports/periods/p-1", "student"},
		{"student creates section", http.MethodPost, "/api/v1/sections", "student"},
		{"teacher cancels enrollment", http.MethodPatch, "/api/v1/enrollments/e-1/cancel", "teacher"},
		{"teacher lists enrollments", http.MethodGet, "/api/v1/enrollments", "teacher"},
		{"teacher reads enrollment", http.MethodGet, "/api/v1/enrollments/e-1", "teacher"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, http.StatusForbidden, serve(engine, tc.method, tc.path, tc.token).Code)
		})
	}
}

func TestAuthorizedRequestReachesHandler(t *testing.T) {
	engine := newTestEngine()

	w := serve(engine, http.MethodGet, "/api/v1/periods/current", "student")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "p-current")

	w = serve(engine, http.MethodGet, "/api/v1/periods/p-9", "teacher")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"p-9"`)
}
