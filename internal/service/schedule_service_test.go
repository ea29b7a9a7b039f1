package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

func newScheduleServiceFixture(t *testing.T) (*ScheduleService, *scheduleStoreStub, *txProviderMock) {
	sections := newSectionStoreStub()
	schedules := newScheduleStoreStub(sections)
	provider, _ := newTxProviderMock(t)
	svc := NewScheduleService(schedules, sections, newTeacherRepoStub(), provider, nil, validator.New(), nil)
	return svc, schedules, provider.(*txProviderMock)
}

func TestScheduleServiceCreateTouchingBlocksAllowed(t *testing.T) {
	svc, schedules, provider := newScheduleServiceFixture(t)
	provider.mock.ExpectBegin()
	provider.mock.ExpectCommit()

	created, err := svc.Create(context.Background(), dto.CreateScheduleRequest{
		SectionID: sectionAID, DayOfWeek: models.DayMonday, StartTime: "10:00", EndTime: "12:00", Room: "A-101",
	}, adminClaims)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleTypeTheory, created.Type)
	assert.Equal(t, periodID, created.PeriodID)
	assert.Len(t, schedules.schedules, 2)
	assert.Contains(t, schedules.locked, teacherLockKey(periodID, teacherAID))
	assert.Contains(t, schedules.locked, roomLockKey(periodID, "A-101"))
	assert.NoError(t, provider.mock.ExpectationsWereMet())
}

func TestScheduleServiceCreateTeacherConflict(t *testing.T) {
	svc, schedules, provider := newScheduleServiceFixture(t)
	provider.mock.ExpectBegin()
	provider.mock.ExpectRollback()

	_, err := svc.Create(context.Background(), dto.CreateScheduleRequest{
		SectionID: sectionAID, DayOfWeek: models.DayMonday, StartTime: "09:30", EndTime: "11:00", Room: "C-303",
	}, adminClaims)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	conflicts, ok := appErr.Details.([]models.ScheduleConflict)
	require.True(t, ok)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictDimensionTeacher, conflicts[0].Dimension)
	assert.Len(t, schedules.schedules, 1)
	assert.NoError(t, provider.mock.ExpectationsWereMet())
}

func TestScheduleServiceCreateRoomConflict(t *testing.T) {
	svc, _, provider := newScheduleServiceFixture(t)
	provider.mock.ExpectBegin()
	provider.mock.ExpectRollback()

	_, err := svc.Create(context.Background(), dto.CreateScheduleRequest{
		SectionID: sectionBID, DayOfWeek: models.DayMonday, StartTime: "07:00", EndTime: "08:30", Room: "A-101",
	}, adminClaims)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "room A-101")
	assert.NoError(t, provider.mock.ExpectationsWereMet())
}

func TestScheduleServiceCreateRejectsInvertedRange(t *testing.T) {
	svc, _, _ := newScheduleServiceFixture(t)

	_, err := svc.Create(context.Background(), dto.CreateScheduleRequest{
		SectionID: sectionAID, DayOfWeek: models.DayTuesday, StartTime: "12:00", EndTime: "12:00", Room: "A-101",
	}, adminClaims)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceUpdateExcludesItself(t *testing.T) {
	svc, schedules, provider := newScheduleServiceFixture(t)
	provider.mock.ExpectBegin()
	provider.mock.ExpectCommit()

	updated, err := svc.Update(context.Background(), scheduleAID, dto.UpdateScheduleRequest{
		DayOfWeek: models.DayMonday, StartTime: "09:00", EndTime: "11:00", Room: "A-101", Type: "lab",
	}, adminClaims)
	require.NoError(t, err)
	assert.Equal(t, "09:00", updated.StartTime)
	assert.Equal(t, models.ScheduleTypeLab, schedules.schedules[scheduleAID].Type)
	assert.NoError(t, provider.mock.ExpectationsWereMet())
}

func TestScheduleServiceCheckConflicts(t *testing.T) {
	svc, _, _ := newScheduleServiceFixture(t)

	resp, err := svc.CheckConflicts(context.Background(), dto.CheckConflictsRequest{
		SectionID: sectionAID, DayOfWeek: models.DayMonday, StartTime: "8:30", EndTime: "09:30",
	})
	require.NoError(t, err)
	assert.True(t, resp.HasConflicts)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, scheduleAID, resp.Conflicts[0].ScheduleID)

	resp, err = svc.CheckConflicts(context.Background(), dto.CheckConflictsRequest{
		SectionID: sectionAID, DayOfWeek: models.DayMonday, StartTime: "08:30", EndTime: "09:30", ExcludeScheduleID: scheduleAID,
	})
	require.NoError(t, err)
	assert.False(t, resp.HasConflicts)
	assert.NotNil(t, resp.Conflicts)
}

func TestScheduleServiceListByTeacherUnknownTeacher(t *testing.T) {
	svc, _, _ := newScheduleServiceFixture(t)
	_, err := svc.ListByTeacher(context.Background(), "ffffffff-ffff-4fff-8fff-ffffffffffff", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	schedules, err := svc.ListByTeacher(context.Background(), teacherAID, periodID)
	require.NoError(t, err)
	assert.Len(t, schedules, 1)
}
