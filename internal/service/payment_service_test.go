package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

type paymentRepoStub struct {
	payments map[string]models.Payment
}

func (s *paymentRepoStub) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	if p, ok := s.payments[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (s *paymentRepoStub) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Payment, error) {
	return s.FindByID(ctx, id)
}

func (s *paymentRepoStub) SumCompleted(ctx context.Context, exec sqlx.ExtContext, enrollmentID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range s.payments {
		if p.EnrollmentID == enrollmentID && p.Status == models.PaymentStatusCompleted {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (s *paymentRepoStub) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Payment, error) {
	var result []models.Payment
	for _, p := range s.payments {
		if p.EnrollmentID == enrollmentID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *paymentRepoStub) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	result, _ := s.ListByEnrollment(ctx, filter.EnrollmentID)
	return result, len(result), nil
}

func (s *paymentRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, payment *models.Payment) error {
	payment.ID = fmt.Sprintf("pay-%02d", len(s.payments)+1)
	s.payments[payment.ID] = *payment
	return nil
}

func (s *paymentRepoStub) Cancel(ctx context.Context, exec sqlx.ExtContext, id string) error {
	p, ok := s.payments[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.Status = models.PaymentStatusCancelled
	s.payments[id] = p
	return nil
}

func newPaymentFixture(t *testing.T, total string) (*PaymentService, *paymentRepoStub, *enrollmentRepoStub, *txProviderMock) {
	t.Helper()
	provider, _ := newTxProviderMock(t)
	enrollments := &enrollmentRepoStub{enrollments: map[string]models.Enrollment{
		enrollmentID: {
			ID:          enrollmentID,
			StudentID:   studentID,
			PeriodID:    periodID,
			TotalAmount: decimal.RequireFromString(total),
			Status:      models.EnrollmentStatusPending,
		},
	}}
	payments := &paymentRepoStub{payments: map[string]models.Payment{}}
	students := &studentRepoStub{students: map[string]models.Student{
		studentID:    {ID: studentID, UserID: studentUserID},
		otherStudent: {ID: otherStudent, UserID: "someone-else"},
	}}
	svc := NewPaymentService(payments, enrollments, students, provider, &auditLoggerStub{}, nil, nil, validator.New(), nil)
	return svc, payments, enrollments, provider.(*txProviderMock)
}

func paymentRequest(amount string) dto.RecordPaymentRequest {
	return dto.RecordPaymentRequest{EnrollmentID: enrollmentID, Amount: decimal.RequireFromString(amount), Method: models.PaymentMethodTransfer}
}

func TestPaymentServiceFullPaymentFlipsAndCancelReverts(t *testing.T) {
	svc, _, enrollments, provider := newPaymentFixture(t, "800")
	provider.mock.ExpectBegin()
	provider.mock.ExpectCommit()

	resp, err := svc.Record(context.Background(), paymentRequest("800"), adminClaims)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, resp.Payment.Status)
	assert.Equal(t, models.EnrollmentStatusPaid, resp.Balance.Status)
	assert.True(t, resp.Balance.Remaining.IsZero())
	assert.Equal(t, models.EnrollmentStatusPaid, enrollments.enrollments[enrollmentID].Status)

	provider.mock.ExpectBegin()
	provider.mock.ExpectCommit()
	cancelled, err := svc.Cancel(context.Background(), resp.Payment.ID, adminClaims)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCancelled, cancelled.Payment.Status)
	assert.Equal(t, models.EnrollmentStatusPending, cancelled.Balance.Status)
	assert.Equal(t, "800", cancelled.Balance.Remaining.String())
	assert.Equal(t, models.EnrollmentStatusPending, enrollments.enrollments[enrollmentID].Status)

	provider.mock.ExpectBegin()
	provider.mock.ExpectRollback()
	_, err = svc.Cancel(context.Background(), resp.Payment.ID, adminClaims)
	assertCode(t, appErrors.ErrInvalidState, err)
	assert.NoError(t, provider.mock.ExpectationsWereMet())
}

func TestPaymentServicePartialPaymentsStayPending(t *testing.T) {
	svc, _, _, provider := newPaymentFixture(t, "350")
	provider.mock.ExpectBegin()
	provider.mock.ExpectCommit()
	provider.mock.ExpectBegin()
	provider.mock.ExpectCommit()

	first, err := svc.Record(context.Background(), paymentRequest("100.50"), adminClaims)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, first.Balance.Status)
	assert.Equal(t, "249.5", first.Balance.Remaining.String())

	second, err := svc.Record(context.Background(), paymentRequest("249.50"), adminClaims)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPaid, second.Balance.Status)

	balance, err := svc.Balance(context.Background(), enrollmentID, adminClaims)
	require.NoError(t, err)
	assert.Equal(t, "350", balance.TotalPaid.String())
	assert.True(t, balance.Remaining.IsZero())
}

func TestPaymentServiceRejectsOverpayment(t *testing.T) {
	svc, payments, _, provider := newPaymentFixture(t, "350")
	provider.mock.ExpectBegin()
	provider.mock.ExpectCommit()
	_, err := svc.Record(context.Background(), paymentRequest("300"), adminClaims)
	require.NoError(t, err)

	provider.mock.ExpectBegin()
	provider.mock.ExpectRollback()
	_, err = svc.Record(context.Background(), paymentRequest("60"), adminClaims)
	assertCode(t, appErrors.ErrConflict, err)
	details, ok := appErrors.FromError(err).Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "50.00", details["remaining"])
	assert.Equal(t, "60.00", details["attempted"])
	assert.Len(t, payments.payments, 1)
	assert.NoError(t, provider.mock.ExpectationsWereMet())
}

func TestPaymentServiceRecordRejections(t *testing.T) {
	svc, _, enrollments, provider := newPaymentFixture(t, "350")

	_, err := svc.Record(context.Background(), dto.RecordPaymentRequest{EnrollmentID: studentID, Amount: decimal.NewFromInt(10), Method: models.PaymentMethodCash}, adminClaims)
	assertCode(t, appErrors.ErrNotFound, err)

	_, err = svc.Record(context.Background(), dto.RecordPaymentRequest{EnrollmentID: enrollmentID, Amount: decimal.NewFromInt(10), Method: "cheque"}, adminClaims)
	assertCode(t, appErrors.ErrValidation, err)

	provider.mock.ExpectBegin()
	provider.mock.ExpectRollback()
	_, err = svc.Record(context.Background(), paymentRequest("0"), adminClaims)
	assertCode(t, appErrors.ErrValidation, err)

	e := enrollments.enrollments[enrollmentID]
	e.Status = models.EnrollmentStatusCancelled
	enrollments.enrollments[enrollmentID] = e
	provider.mock.ExpectBegin()
	provider.mock.ExpectRollback()
	_, err = svc.Record(context.Background(), paymentRequest("-5"), adminClaims)
	assertCode(t, appErrors.ErrInvalidState, err)
	assert.NoError(t, provider.mock.ExpectationsWereMet())
}

func TestPaymentServiceListByEnrollment(t *testing.T) {
	svc, payments, _, _ := newPaymentFixture(t, "350")
	payments.payments["pay-01"] = models.Payment{ID: "pay-01", EnrollmentID: enrollmentID, Amount: decimal.NewFromInt(100), Status: models.PaymentStatusCompleted}
	payments.payments["pay-02"] = models.Payment{ID: "pay-02", EnrollmentID: enrollmentID, Amount: decimal.NewFromInt(50), Status: models.PaymentStatusCancelled}

	resp, err := svc.ListByEnrollment(context.Background(), enrollmentID, adminClaims)
	require.NoError(t, err)
	assert.Len(t, resp.Payments, 2)
	assert.Equal(t, "100", resp.Balance.TotalPaid.String())
	assert.Equal(t, "250", resp.Balance.Remaining.String())

	_, err = svc.Get(context.Background(), "pay-99")
	assertCode(t, appErrors.ErrNotFound, err)
}

func TestPaymentServiceStudentSeesOnlyOwnLedger(t *testing.T) {
	svc, payments, _, _ := newPaymentFixture(t, "350")
	payments.payments["pay-01"] = models.Payment{ID: "pay-01", EnrollmentID: enrollmentID, Amount: decimal.NewFromInt(100), Status: models.PaymentStatusCompleted}

	intruder := &models.JWTClaims{UserID: "someone-else", Role: models.RoleStudent}
	_, err := svc.Balance(context.Background(), enrollmentID, intruder)
	assertCode(t, appErrors.ErrForbidden, err)
	_, err = svc.ListByEnrollment(context.Background(), enrollmentID, intruder)
	assertCode(t, appErrors.ErrForbidden, err)

	unknown := &models.JWTClaims{UserID: "no-record", Role: models.RoleStudent}
	_, err = svc.Balance(context.Background(), enrollmentID, unknown)
	assertCode(t, appErrors.ErrForbidden, err)

	owner := &models.JWTClaims{UserID: studentUserID, Role: models.RoleStudent}
	resp, err := svc.ListByEnrollment(context.Background(), enrollmentID, owner)
	require.NoError(t, err)
	assert.Len(t, resp.Payments, 1)
	assert.Equal(t, "250", resp.Balance.Remaining.String())

	teacher := &models.JWTClaims{UserID: "t-1", Role: models.RoleTeacher}
	_, err = svc.Balance(context.Background(), enrollmentID, teacher)
	require.NoError(t, err)
}
