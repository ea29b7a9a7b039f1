package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/models"
)

func TestEnrollmentRepositoryExistsForStudentPeriod(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE student_id = $1 AND period_id = $2 LIMIT 1")).
		WithArgs("stu-1", "period-1").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsForStudentPeriod(context.Background(), nil, "stu-1", "period-1")
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryLockByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments e WHERE e.id = $1 FOR UPDATE")).
		WithArgs("enr-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "period_id", "type", "total_credits", "total_amount",
			"credit_cost", "price_multiplier", "status", "enrolled_at", "created_at", "updated_at"}).
			AddRow("enr-1", "stu-1", "period-1", "late", 8, "960.00", "100.00", "1.20", "pending", now, now, now))

	enrollment, err := repo.LockByID(context.Background(), nil, "enr-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentTypeLate, enrollment.Type)
	assert.True(t, enrollment.TotalAmount.Equal(decimal.NewFromInt(960)))
	assert.True(t, enrollment.AmountFor(8).Equal(enrollment.TotalAmount))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	enrollment := &models.Enrollment{StudentID: "stu-1", PeriodID: "period-1", Type: models.EnrollmentTypeRegular}
	require.NoError(t, repo.Create(context.Background(), nil, enrollment))
	assert.NotEmpty(t, enrollment.ID)
	assert.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
	assert.False(t, enrollment.EnrolledAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateTotalsMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET total_credits = $1")).
		WithArgs(4, sqlmock.AnyArg(), models.EnrollmentStatusPending, sqlmock.AnyArg(), "enr-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateTotals(context.Background(), nil, "enr-x", 4, decimal.NewFromInt(400), models.EnrollmentStatusPending)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEnrollmentLineRepositoryMarkWithdrawnOnlyActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentLineRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollment_lines SET status = $1, withdrawn_at = $2 WHERE id = $3 AND status = $4")).
		WithArgs(models.LineStatusWithdrawn, sqlmock.AnyArg(), "line-1", models.LineStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkWithdrawn(context.Background(), nil, "line-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
