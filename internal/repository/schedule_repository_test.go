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

var conflictCols = []string{"schedule_id", "section_id", "teacher_id", "day_of_week", "start_time", "end_time", "room", "dimension"}

func TestScheduleRepositoryFindTeacherConflictsExcludesSelf(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("sc.start_time < $5::time AND $4::time < sc.end_time")).
		WithArgs("period-1", "teacher-1", "monday", "08:00", "10:00", "sch-1").
		WillReturnRows(sqlmock.NewRows(conflictCols).
			AddRow("sch-2", "sec-2", "teacher-1", "monday", "09:00", "11:00", "A-101", "teacher"))

	conflicts, err := repo.FindTeacherConflicts(context.Background(), nil, models.ScheduleCandidate{
		PeriodID:  "period-1",
		TeacherID: "teacher-1",
		DayOfWeek: "monday",
		StartTime: "08:00",
		EndTime:   "10:00",
		ExcludeID: "sch-1",
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictDimensionTeacher, conflicts[0].Dimension)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindRoomConflictsWithoutExclusion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("sc.room = $2")).
		WithArgs("period-1", "A-101", "friday", "14:00", "16:00", nil).
		WillReturnRows(sqlmock.NewRows(conflictCols))

	conflicts, err := repo.FindRoomConflicts(context.Background(), nil, models.ScheduleCandidate{
		PeriodID:  "period-1",
		Room:      "A-101",
		DayOfWeek: "friday",
		StartTime: "14:00",
		EndTime:   "16:00",
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryLockKeysSorted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("schedule:room:p1:A-101").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("schedule:teacher:p1:t1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.LockKeys(context.Background(), nil, "schedule:teacher:p1:t1", "schedule:room:p1:A-101"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules")).
		WithArgs(sqlmock.AnyArg(), "sec-1", "tuesday", "07:00", "08:30", "B-2", "lab", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	schedule := &models.Schedule{SectionID: "sec-1", DayOfWeek: "tuesday", StartTime: "07:00", EndTime: "08:30", Room: "B-2", Type: models.ScheduleTypeLab}
	require.NoError(t, repo.Create(context.Background(), nil, schedule))
	assert.NotEmpty(t, schedule.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListOrdersByWeekday(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE (s.period_id = $1 AND sc.room = $2) ORDER BY " + weekdayOrder + ", sc.start_time ASC LIMIT 20 OFFSET 0")).
		WithArgs("period-1", "A-101").
		WillReturnRows(sqlmock.NewRows([]string{"id", "section_id", "day_of_week", "start_time", "end_time", "room", "type",
			"created_at", "updated_at", "period_id", "teacher_id", "section_label", "course_code", "course_name"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedules sc JOIN sections s ON s.id = sc.section_id WHERE (s.period_id = $1 AND sc.room = $2)")).
		WithArgs("period-1", "A-101").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	schedules, total, err := repo.List(context.Background(), models.ScheduleFilter{PeriodID: "period-1", Room: "A-101"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, schedules)
	require.NoError(t, mock.ExpectationsWereMet())
}
