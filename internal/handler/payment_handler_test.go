package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

type paymentServiceMock struct {
	recorded   dto.RecordPaymentRequest
	lastFilter models.PaymentFilter
	lastActor  *models.JWTClaims
	recordErr  error
}

func (m *paymentServiceMock) Record(ctx context.Context, req dto.RecordPaymentRequest, actor *models.JWTClaims) (*dto.PaymentResponse, error) {
	m.recorded = req
	if m.recordErr != nil {
		return nil, m.recordErr
	}
	return &dto.PaymentResponse{Payment: models.Payment{ID: "pay-1", Amount: req.Amount}}, nil
}

func (m *paymentServiceMock) Cancel(ctx context.Context, id string, actor *models.JWTClaims) (*dto.PaymentResponse, error) {
	return &dto.PaymentResponse{Payment: models.Payment{ID: id, Status: models.PaymentStatusCancelled}}, nil
}

func (m *paymentServiceMock) Get(ctx context.Context, id string) (*models.Payment, error) {
	return &models.Payment{ID: id}, nil
}

func (m *paymentServiceMock) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	m.lastFilter = filter
	return []models.Payment{}, models.NewPagination(filter.Page, filter.PageSize, 0), nil
}

func (m *paymentServiceMock) Balance(ctx context.Context, enrollmentID string, actor *models.JWTClaims) (*models.Balance, error) {
	m.lastActor = actor
	return &models.Balance{EnrollmentID: enrollmentID, TotalAmount: decimal.NewFromInt(800)}, nil
}

func (m *paymentServiceMock) ListByEnrollment(ctx context.Context, enrollmentID string, actor *models.JWTClaims) (*dto.EnrollmentPaymentsResponse, error) {
	m.lastActor = actor
	return &dto.EnrollmentPaymentsResponse{Payments: []models.Payment{}}, nil
}

func TestPaymentHandlerRecord(t *testing.T) {
	svc := &paymentServiceMock{}
	handler := NewPaymentHandler(svc)
	body := `{"enrollment_id":"7d2b5c8e-2f7e-4b8e-9a51-3f1f4c2a9b10","amount":"250.50","method":"cash"}`
	c, w := newTestContext(http.MethodPost, "/payments", body, adminClaims)

	handler.Record(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decimal.RequireFromString("250.50").Equal(svc.recorded.Amount))
	assert.Equal(t, models.PaymentMethodCash, svc.recorded.Method)
}

func TestPaymentHandlerRecordOverpayment(t *testing.T) {
	svc := &paymentServiceMock{recordErr: appErrors.Clone(appErrors.ErrConflict, "payment exceeds outstanding balance")}
	handler := NewPaymentHandler(svc)
	body := `{"enrollment_id":"7d2b5c8e-2f7e-4b8e-9a51-3f1f4c2a9b10","amount":"900","method":"card"}`
	c, w := newTestContext(http.MethodPost, "/payments", body, adminClaims)

	handler.Record(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CONFLICT", decodeEnvelope(t, w).Error.Code)
}

func TestPaymentHandlerListFilter(t *testing.T) {
	svc := &paymentServiceMock{}
	handler := NewPaymentHandler(svc)
	c, w := newTestContext(http.MethodGet, "/payments?enrollmentId=enr-1&status=completed&method=transfer", nil, adminClaims)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "enr-1", svc.lastFilter.EnrollmentID)
	assert.Equal(t, models.PaymentStatusCompleted, svc.lastFilter.Status)
	assert.Equal(t, models.PaymentMethodTransfer, svc.lastFilter.Method)
}

func TestPaymentHandlerBalance(t *testing.T) {
	svc := &paymentServiceMock{}
	handler := NewPaymentHandler(svc)
	c, w := newTestContext(http.MethodGet, "/enrollments/enr-1/balance", nil, adminClaims)
	c.Params = gin.Params{{Key: "id", Value: "enr-1"}}

	handler.Balance(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"enrollment_id":"enr-1"`)
	assert.Equal(t, adminClaims, svc.lastActor)
}
