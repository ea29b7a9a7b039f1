package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/models"
)

func TestPaymentRepositorySumCompleted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0) FROM payments WHERE enrollment_id = $1 AND status = $2")).
		WithArgs("enr-1", models.PaymentStatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("350.50"))

	total, err := repo.SumCompleted(context.Background(), nil, "enr-1")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("350.50")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	now := time.Now()
	cols := []string{"id", "enrollment_id", "amount", "method", "reference", "status", "paid_at", "cancelled_at", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE (enrollment_id = $1 AND method = $2) ORDER BY paid_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("enr-1", models.PaymentMethodCard).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("pay-1", "enr-1", "200.00", "card", nil, "completed", now, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payments WHERE (enrollment_id = $1 AND method = $2)")).
		WithArgs("enr-1", models.PaymentMethodCard).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	payments, total, err := repo.List(context.Background(), models.PaymentFilter{
		EnrollmentID: "enr-1",
		Method:       models.PaymentMethodCard,
		Page:         2,
		PageSize:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, payments, 1)
	assert.Nil(t, payments[0].Reference)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryCancel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE payments SET status = $1, cancelled_at = $2, updated_at = $2 WHERE id = $3")).
		WithArgs(models.PaymentStatusCancelled, sqlmock.AnyArg(), "pay-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Cancel(context.Background(), nil, "pay-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
