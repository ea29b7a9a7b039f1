package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

const (
	periodID    = "7d1c2b3a-4e5f-4a6b-8c7d-9e0f1a2b3c01"
	teacherAID  = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c01"
	teacherBID  = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c02"
	sectionAID  = "b7e6d5c4-b3a2-4c1d-9e8f-7a6b5c4d3e01"
	sectionBID  = "b7e6d5c4-b3a2-4c1d-9e8f-7a6b5c4d3e02"
	sectionCID  = "b7e6d5c4-b3a2-4c1d-9e8f-7a6b5c4d3e03"
	scheduleAID = "c9d8e7f6-a5b4-4c3d-8e2f-1a0b9c8d7e01"
)

type sectionStoreStub struct {
	sections map[string]models.SectionDetail
	reserved []string
	released []string

	// failReserve makes the guarded increment lose for one section, as when
	// another transaction took the last seat after the row was read.
	failReserve string
}

func newSectionStoreStub() *sectionStoreStub {
	return &sectionStoreStub{sections: map[string]models.SectionDetail{
		sectionAID: {
			Section:       models.Section{ID: sectionAID, CourseID: courseCalc1ID, PeriodID: periodID, TeacherID: teacherAID, Label: "A", MaxCapacity: 40, Active: true},
			CourseCode:    "MAT101",
			CourseCycle:   1,
			CourseCredits: 4,
			StudyPlanID:   planID,
		},
		sectionBID: {
			Section:       models.Section{ID: sectionBID, CourseID: courseCalc1ID, PeriodID: periodID, TeacherID: teacherBID, Label: "B", MaxCapacity: 40, Active: true},
			CourseCode:    "MAT101",
			CourseCycle:   1,
			CourseCredits: 4,
			StudyPlanID:   planID,
		},
		sectionCID: {
			Section:       models.Section{ID: sectionCID, CourseID: courseAlgoID, PeriodID: periodID, TeacherID: teacherBID, Label: "A", MaxCapacity: 40, Active: true},
			CourseCode:    "INF201",
			CourseCycle:   2,
			CourseCredits: 3,
			StudyPlanID:   planID,
		},
	}}
}

func (s *sectionStoreStub) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	if d, ok := s.sections[id]; ok {
		return &d, nil
	}
	return nil, sql.ErrNoRows
}

func (s *sectionStoreStub) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.SectionDetail, error) {
	return s.FindDetailByID(ctx, id)
}

func (s *sectionStoreStub) LockByIDs(ctx context.Context, exec sqlx.ExtContext, ids []string) ([]models.SectionDetail, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	var result []models.SectionDetail
	for _, id := range uniqueStrings(sorted) {
		if d, ok := s.sections[id]; ok {
			result = append(result, d)
		}
	}
	return result, nil
}

func (s *sectionStoreStub) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, int, error) {
	var result []models.SectionDetail
	for _, d := range s.sections {
		if filter.CourseID == "" || d.CourseID == filter.CourseID {
			result = append(result, d)
		}
	}
	return result, len(result), nil
}

func (s *sectionStoreStub) ListOpenByCourseAndPeriod(ctx context.Context, courseID, periodID string) ([]models.SectionDetail, error) {
	var result []models.SectionDetail
	for _, d := range s.sections {
		if d.CourseID == courseID && d.PeriodID == periodID && d.Active {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Label < result[j].Label })
	return result, nil
}

func (s *sectionStoreStub) ExistsLabel(ctx context.Context, courseID, periodID, label, excludeID string) (bool, error) {
	for _, d := range s.sections {
		if d.CourseID == courseID && d.PeriodID == periodID && d.Label == label && d.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *sectionStoreStub) Create(ctx context.Context, exec sqlx.ExtContext, section *models.Section) error {
	section.ID = sectionCID[:len(sectionCID)-2] + "99"
	s.sections[section.ID] = models.SectionDetail{Section: *section}
	return nil
}

func (s *sectionStoreStub) Update(ctx context.Context, exec sqlx.ExtContext, section *models.Section) error {
	d, ok := s.sections[section.ID]
	if !ok {
		return sql.ErrNoRows
	}
	d.Section = *section
	s.sections[section.ID] = d
	return nil
}

func (s *sectionStoreStub) Deactivate(ctx context.Context, exec sqlx.ExtContext, id string) error {
	d, ok := s.sections[id]
	if !ok {
		return sql.ErrNoRows
	}
	d.Active = false
	s.sections[id] = d
	return nil
}

func (s *sectionStoreStub) Reserve(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	d, ok := s.sections[id]
	if !ok || !d.HasSeat() || id == s.failReserve {
		return false, nil
	}
	d.CurrentOccupancy++
	s.sections[id] = d
	s.reserved = append(s.reserved, id)
	return true, nil
}

func (s *sectionStoreStub) Release(ctx context.Context, exec sqlx.ExtContext, id string) error {
	d, ok := s.sections[id]
	if !ok || d.CurrentOccupancy == 0 {
		return sql.ErrNoRows
	}
	d.CurrentOccupancy--
	s.sections[id] = d
	s.released = append(s.released, id)
	return nil
}

type scheduleStoreStub struct {
	sections  *sectionStoreStub
	schedules map[string]models.Schedule
	locked    []string
}

func newScheduleStoreStub(sections *sectionStoreStub) *scheduleStoreStub {
	return &scheduleStoreStub{sections: sections, schedules: map[string]models.Schedule{
		scheduleAID: {ID: scheduleAID, SectionID: sectionAID, DayOfWeek: models.DayMonday, StartTime: "08:00", EndTime: "10:00", Room: "A-101", Type: models.ScheduleTypeTheory},
	}}
}

func (s *scheduleStoreStub) detail(sc models.Schedule) models.ScheduleDetail {
	section := s.sections.sections[sc.SectionID]
	return models.ScheduleDetail{Schedule: sc, PeriodID: section.PeriodID, TeacherID: section.TeacherID, SectionLabel: section.Label, CourseCode: section.CourseCode}
}

func (s *scheduleStoreStub) FindByID(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	sc, ok := s.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := s.detail(sc)
	return &d, nil
}

func (s *scheduleStoreStub) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, int, error) {
	var result []models.ScheduleDetail
	for _, sc := range s.schedules {
		if filter.SectionID == "" || sc.SectionID == filter.SectionID {
			result = append(result, s.detail(sc))
		}
	}
	return result, len(result), nil
}

func (s *scheduleStoreStub) ListBySections(ctx context.Context, ids []string) ([]models.Schedule, error) {
	var result []models.Schedule
	for _, sc := range s.schedules {
		for _, id := range ids {
			if sc.SectionID == id {
				result = append(result, sc)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (s *scheduleStoreStub) ListByTeacher(ctx context.Context, teacherID, periodID string) ([]models.ScheduleDetail, error) {
	var result []models.ScheduleDetail
	for _, sc := range s.schedules {
		if d := s.detail(sc); d.TeacherID == teacherID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (s *scheduleStoreStub) find(candidate models.ScheduleCandidate, match func(models.SectionDetail, models.Schedule) bool, dimension string) []models.ScheduleConflict {
	var result []models.ScheduleConflict
	for _, sc := range s.schedules {
		section := s.sections.sections[sc.SectionID]
		if sc.ID == candidate.ExcludeID || !section.Active || section.PeriodID != candidate.PeriodID || sc.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if !match(section, sc) || !models.Overlaps(sc.StartTime, sc.EndTime, candidate.StartTime, candidate.EndTime) {
			continue
		}
		result = append(result, models.ScheduleConflict{
			ScheduleID: sc.ID, SectionID: sc.SectionID, TeacherID: section.TeacherID, DayOfWeek: sc.DayOfWeek,
			StartTime: sc.StartTime, EndTime: sc.EndTime, Room: sc.Room, Dimension: dimension,
		})
	}
	return result
}

func (s *scheduleStoreStub) FindTeacherConflicts(ctx context.Context, exec sqlx.ExtContext, candidate models.ScheduleCandidate) ([]models.ScheduleConflict, error) {
	return s.find(candidate, func(section models.SectionDetail, _ models.Schedule) bool {
		return section.TeacherID == candidate.TeacherID
	}, models.ConflictDimensionTeacher), nil
}

func (s *scheduleStoreStub) FindRoomConflicts(ctx context.Context, exec sqlx.ExtContext, candidate models.ScheduleCandidate) ([]models.ScheduleConflict, error) {
	return s.find(candidate, func(_ models.SectionDetail, sc models.Schedule) bool {
		return sc.Room == candidate.Room
	}, models.ConflictDimensionRoom), nil
}

func (s *scheduleStoreStub) LockKeys(ctx context.Context, exec sqlx.ExtContext, keys ...string) error {
	s.locked = append(s.locked, keys...)
	return nil
}

func (s *scheduleStoreStub) Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error {
	schedule.ID = scheduleAID[:len(scheduleAID)-2] + "99"
	s.schedules[schedule.ID] = *schedule
	return nil
}

func (s *scheduleStoreStub) Update(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error {
	if _, ok := s.schedules[schedule.ID]; !ok {
		return sql.ErrNoRows
	}
	s.schedules[schedule.ID] = *schedule
	return nil
}

func (s *scheduleStoreStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.schedules[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.schedules, id)
	return nil
}

func (s *scheduleStoreStub) DeleteBySection(ctx context.Context, exec sqlx.ExtContext, sectionID string) error {
	for id, sc := range s.schedules {
		if sc.SectionID == sectionID {
			delete(s.schedules, id)
		}
	}
	return nil
}

type teacherRepoStub map[string]models.Teacher

func (s teacherRepoStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := s[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func newTeacherRepoStub() teacherRepoStub {
	return teacherRepoStub{
		teacherAID: {ID: teacherAID, Code: "D001", FullName: "Ana Torres", Active: true},
		teacherBID: {ID: teacherBID, Code: "D002", FullName: "Luis Rojas", Active: true},
	}
}

func newSectionServiceFixture(t *testing.T) (*SectionService, *sectionStoreStub, *scheduleStoreStub, *txProviderMock) {
	sections := newSectionStoreStub()
	schedules := newScheduleStoreStub(sections)
	courses := newCourseRepoStub()
	for id, c := range courses.courses {
		c.Active = true
		courses.courses[id] = c
	}
	periods := &periodRepoStub{periods: map[string]models.AcademicPeriod{periodID: {ID: periodID, Code: "2025-1"}}}
	provider, _ := newTxProviderMock(t)
	svc := NewSectionService(sections, schedules, courses, periods, newTeacherRepoStub(), provider, nil, validator.New(), nil)
	return svc, sections, schedules, provider.(*txProviderMock)
}

func TestSectionServiceCreate(t *testing.T) {
	svc, _, _, _ := newSectionServiceFixture(t)

	resp, err := svc.Create(context.Background(), dto.CreateSectionRequest{
		CourseID: courseCalc2ID, PeriodID: periodID, TeacherID: teacherAID, Label: "A", MaxCapacity: 35,
	}, adminClaims)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.CurrentOccupancy)
	assert.Equal(t, 35, resp.Available)
}

func TestSectionServiceCreateDuplicateLabel(t *testing.T) {
	svc, _, _, _ := newSectionServiceFixture(t)

	_, err := svc.Create(context.Background(), dto.CreateSectionRequest{
		CourseID: courseCalc1ID, PeriodID: periodID, TeacherID: teacherAID, Label: "B", MaxCapacity: 35,
	}, adminClaims)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSectionServiceCreateMissingReferences(t *testing.T) {
	svc, _, _, _ := newSectionServiceFixture(t)
	missing := "ffffffff-ffff-4fff-8fff-ffffffffffff"

	for name, req := range map[string]dto.CreateSectionRequest{
		"course":  {CourseID: missing, PeriodID: periodID, TeacherID: teacherAID, Label: "Z", MaxCapacity: 10},
		"period":  {CourseID: courseCalc1ID, PeriodID: missing, TeacherID: teacherAID, Label: "Z", MaxCapacity: 10},
		"teacher": {CourseID: courseCalc1ID, PeriodID: periodID, TeacherID: missing, Label: "Z", MaxCapacity: 10},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req, adminClaims)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestSectionServiceUpdateCapacityBelowOccupancy(t *testing.T) {
	svc, sections, _, provider := newSectionServiceFixture(t)
	d := sections.sections[sectionAID]
	d.CurrentOccupancy = 30
	sections.sections[sectionAID] = d

	provider.mock.ExpectBegin()
	provider.mock.ExpectRollback()
	capacity := 25
	_, err := svc.Update(context.Background(), sectionAID, dto.UpdateSectionRequest{MaxCapacity: &capacity}, adminClaims)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 40, sections.sections[sectionAID].MaxCapacity)
	assert.NoError(t, provider.mock.ExpectationsWereMet())
}

func TestSectionServiceUpdateTeacherChecksTimetable(t *testing.T) {
	svc, sections, schedules, provider := newSectionServiceFixture(t)
	schedules.schedules["c9d8e7f6-a5b4-4c3d-8e2f-1a0b9c8d7e02"] = models.Schedule{
		ID: "c9d8e7f6-a5b4-4c3d-8e2f-1a0b9c8d7e02", SectionID: sectionCID, DayOfWeek: models.DayMonday,
		StartTime: "09:00", EndTime: "11:00", Room: "B-202",
	}

	provider.mock.ExpectBegin()
	provider.mock.ExpectRollback()
	teacher := teacherBID
	_, err := svc.Update(context.Background(), sectionAID, dto.UpdateSectionRequest{TeacherID: &teacher}, adminClaims)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, teacherAID, sections.sections[sectionAID].TeacherID)
	assert.NoError(t, provider.mock.ExpectationsWereMet())
}

func TestSectionServiceUpdateLabelAndCapacity(t *testing.T) {
	svc, sections, _, provider := newSectionServiceFixture(t)

	provider.mock.ExpectBegin()
	provider.mock.ExpectCommit()
	label, capacity := "C", 50
	resp, err := svc.Update(context.Background(), sectionAID, dto.UpdateSectionRequest{Label: &label, MaxCapacity: &capacity}, adminClaims)
	require.NoError(t, err)
	assert.Equal(t, "C", resp.Label)
	assert.Equal(t, 50, sections.sections[sectionAID].MaxCapacity)
	require.Len(t, resp.Schedules, 1)
	assert.NoError(t, provider.mock.ExpectationsWereMet())
}

func TestSectionServiceDelete(t *testing.T) {
	svc, sections, schedules, provider := newSectionServiceFixture(t)

	provider.mock.ExpectBegin()
	provider.mock.ExpectCommit()
	require.NoError(t, svc.Delete(context.Background(), sectionAID, adminClaims))
	assert.False(t, sections.sections[sectionAID].Active)
	assert.Empty(t, schedules.schedules)
	assert.NoError(t, provider.mock.ExpectationsWereMet())
}

func TestSectionServiceDeleteWithStudents(t *testing.T) {
	svc, sections, schedules, provider := newSectionServiceFixture(t)
	d := sections.sections[sectionAID]
	d.CurrentOccupancy = 1
	sections.sections[sectionAID] = d

	provider.mock.ExpectBegin()
	provider.mock.ExpectRollback()
	err := svc.Delete(context.Background(), sectionAID, adminClaims)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	assert.True(t, sections.sections[sectionAID].Active)
	assert.Len(t, schedules.schedules, 1)
	assert.NoError(t, provider.mock.ExpectationsWereMet())
}

func TestSectionServiceListByCourseAndPeriod(t *testing.T) {
	svc, _, _, _ := newSectionServiceFixture(t)

	sections, err := svc.ListByCourseAndPeriod(context.Background(), courseCalc1ID, periodID)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "A", sections[0].Label)
	assert.Len(t, sections[0].Schedules, 1)
	assert.Empty(t, sections[1].Schedules)
}
