package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/models"
)

func TestReportRepositoryAggregates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WithArgs("period-1").
		WillReturnRows(sqlmock.NewRows([]string{"label", "count"}).AddRow("paid", 3).AddRow("pending", 5))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY type")).
		WithArgs("period-1").
		WillReturnRows(sqlmock.NewRows([]string{"label", "count"}).AddRow("regular", 8))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY c.id, c.code, c.name")).
		WithArgs("period-1", models.EnrollmentStatusCancelled, models.LineStatusActive, 10).
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "course_code", "course_name", "count"}).
			AddRow("course-1", "MAT101", "Calculus", 7))

	byStatus, err := repo.CountByStatus(context.Background(), "period-1")
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byType, err := repo.CountByType(context.Background(), "period-1")
	require.NoError(t, err)
	assert.Equal(t, 8, byType[0].Count)

	top, err := repo.TopCourses(context.Background(), "period-1", 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "MAT101", top[0].CourseCode)
	require.NoError(t, mock.ExpectationsWereMet())
}
