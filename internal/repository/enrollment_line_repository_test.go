package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/models"
)

var lineDetailCols = []string{"id", "enrollment_id", "section_id", "status", "created_at", "withdrawn_at",
	"section_label", "course_id", "course_code", "course_name", "course_cycle", "credits", "teacher_id", "teacher_name"}

func TestEnrollmentLineRepositoryListScopesByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentLineRepository(db)

	where := "WHERE (l.status = $1 AND l.enrollment_id IN (SELECT id FROM enrollments WHERE student_id = $2))"
	mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY l.created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("active", "stu-1").
		WillReturnRows(sqlmock.NewRows(lineDetailCols).
			AddRow("line-1", "enr-1", "sec-a", "active", time.Now(), nil, "A", "course-1", "MAT101", "Calculus", 1, 4, "teacher-1", "Ada"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollment_lines l " + where)).
		WithArgs("active", "stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	lines, total, err := repo.List(context.Background(), models.EnrollmentLineFilter{
		StudentID: "stu-1",
		Status:    models.LineStatusActive,
		Page:      2,
		PageSize:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, lines, 1)
	assert.Equal(t, "MAT101", lines[0].CourseCode)
	require.NoError(t, mock.ExpectationsWereMet())
}
