package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

type scheduleRepository interface {
	scheduleChecker
	FindByID(ctx context.Context, id string) (*models.ScheduleDetail, error)
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, int, error)
	ListByTeacher(ctx context.Context, teacherID, periodID string) ([]models.ScheduleDetail, error)
	Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error
	Update(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type sectionDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error)
}

// ScheduleService places weekly blocks so that no teacher and no room is double booked
// within a period.
type ScheduleService struct {
	schedules scheduleRepository
	sections  sectionDetailReader
	teachers  teacherReader
	tx        txProvider
	audit     auditTrail
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService wires schedule dependencies.
func NewScheduleService(
	schedules scheduleRepository,
	sections sectionDetailReader,
	teachers teacherReader,
	tx txProvider,
	audit auditLogger,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		schedules: schedules,
		sections:  sections,
		teachers:  teachers,
		tx:        tx,
		audit:     newAuditTrail(audit, logger, "schedule-service"),
		validator: validate,
		logger:    logger,
	}
}

// Create adds a block to a section after checking teacher and room availability.
func (s *ScheduleService) Create(ctx context.Context, req dto.CreateScheduleRequest, actor *models.JWTClaims) (*models.ScheduleDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid schedule payload")
	}
	start, end, err := normalizeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	section, err := s.activeSection(ctx, req.SectionID)
	if err != nil {
		return nil, err
	}

	schedule := &models.Schedule{
		SectionID: section.ID,
		DayOfWeek: req.DayOfWeek,
		StartTime: start,
		EndTime:   end,
		Room:      req.Room,
		Type:      scheduleType(req.Type),
	}
	err = withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.ensureFree(ctx, tx, section, schedule); err != nil {
			return err
		}
		if err := s.schedules.Create(ctx, tx, schedule); err != nil {
			return translateStoreError(err, "failed to create schedule")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, actor, models.AuditActionScheduleCreate, "schedule", schedule.ID, nil, schedule)
	s.logger.Info("schedule created", zap.String("schedule_id", schedule.ID), zap.String("section_id", section.ID),
		zap.String("day", schedule.DayOfWeek), zap.String("start", start), zap.String("end", end))
	return s.Get(ctx, schedule.ID)
}

// Update moves a block, ignoring the block itself when checking availability.
func (s *ScheduleService) Update(ctx context.Context, id string, req dto.UpdateScheduleRequest, actor *models.JWTClaims) (*models.ScheduleDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid schedule payload")
	}
	start, end, err := normalizeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	section, err := s.activeSection(ctx, existing.SectionID)
	if err != nil {
		return nil, err
	}

	schedule := existing.Schedule
	schedule.DayOfWeek = req.DayOfWeek
	schedule.StartTime = start
	schedule.EndTime = end
	schedule.Room = req.Room
	if req.Type != "" {
		schedule.Type = models.ScheduleType(req.Type)
	}
	err = withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.ensureFree(ctx, tx, section, &schedule); err != nil {
			return err
		}
		if err := s.schedules.Update(ctx, tx, &schedule); err != nil {
			return lookupError(err, "schedule not found", "failed to update schedule")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, actor, models.AuditActionScheduleUpdate, "schedule", id, existing.Schedule, schedule)
	return s.Get(ctx, id)
}

// Delete removes a block.
func (s *ScheduleService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if err := s.schedules.Delete(ctx, id); err != nil {
		return lookupError(err, "schedule not found", "failed to delete schedule")
	}
	s.audit.record(ctx, actor, models.AuditActionScheduleDelete, "schedule", id, nil, nil)
	return nil
}

// Get returns a block with its section context.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "schedule not found", "failed to load schedule")
	}
	return schedule, nil
}

// List returns blocks with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, *models.Pagination, error) {
	schedules, total, err := s.schedules.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list schedules")
	}
	return schedules, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// ListByTeacher returns a teacher's weekly timetable, optionally for one period.
func (s *ScheduleService) ListByTeacher(ctx context.Context, teacherID, periodID string) ([]models.ScheduleDetail, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	schedules, err := s.schedules.ListByTeacher(ctx, teacherID, periodID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list teacher schedules")
	}
	return schedules, nil
}

// CheckConflicts reports what a proposed block would collide with without writing it.
// The room is only checked when given.
func (s *ScheduleService) CheckConflicts(ctx context.Context, req dto.CheckConflictsRequest) (*dto.ConflictCheckResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid conflict check payload")
	}
	start, end, err := normalizeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	section, err := s.sections.FindDetailByID(ctx, req.SectionID)
	if err != nil {
		return nil, lookupError(err, "section not found", "failed to load section")
	}

	candidate := models.ScheduleCandidate{
		PeriodID:  section.PeriodID,
		TeacherID: section.TeacherID,
		Room:      req.Room,
		DayOfWeek: req.DayOfWeek,
		StartTime: start,
		EndTime:   end,
		ExcludeID: req.ExcludeScheduleID,
	}
	conflicts, err := s.findConflicts(ctx, nil, candidate, req.Room != "")
	if err != nil {
		return nil, err
	}
	if conflicts == nil {
		conflicts = []models.ScheduleConflict{}
	}
	return &dto.ConflictCheckResponse{HasConflicts: len(conflicts) > 0, Conflicts: conflicts}, nil
}

// ensureFree serialises writers on the teacher and room of the block, then rejects
// the block when either is already booked.
func (s *ScheduleService) ensureFree(ctx context.Context, tx *sqlx.Tx, section *models.SectionDetail, schedule *models.Schedule) error {
	if err := s.schedules.LockKeys(ctx, tx,
		teacherLockKey(section.PeriodID, section.TeacherID),
		roomLockKey(section.PeriodID, schedule.Room),
	); err != nil {
		return appErrors.Internal(err, "failed to lock schedules")
	}
	candidate := models.ScheduleCandidate{
		PeriodID:  section.PeriodID,
		TeacherID: section.TeacherID,
		Room:      schedule.Room,
		DayOfWeek: schedule.DayOfWeek,
		StartTime: schedule.StartTime,
		EndTime:   schedule.EndTime,
		ExcludeID: schedule.ID,
	}
	conflicts, err := s.findConflicts(ctx, tx, candidate, true)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}
	message := fmt.Sprintf("teacher already teaches on %s between %s and %s", schedule.DayOfWeek, schedule.StartTime, schedule.EndTime)
	if conflicts[0].Dimension == models.ConflictDimensionRoom {
		message = fmt.Sprintf("room %s is taken on %s between %s and %s", schedule.Room, schedule.DayOfWeek, schedule.StartTime, schedule.EndTime)
	}
	return conflict(message).WithDetails(conflicts)
}

func (s *ScheduleService) findConflicts(ctx context.Context, exec sqlx.ExtContext, candidate models.ScheduleCandidate, withRoom bool) ([]models.ScheduleConflict, error) {
	conflicts, err := s.schedules.FindTeacherConflicts(ctx, exec, candidate)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check teacher conflicts")
	}
	if !withRoom {
		return conflicts, nil
	}
	rooms, err := s.schedules.FindRoomConflicts(ctx, exec, candidate)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check room conflicts")
	}
	return append(conflicts, rooms...), nil
}

func (s *ScheduleService) activeSection(ctx context.Context, id string) (*models.SectionDetail, error) {
	section, err := s.sections.FindDetailByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "section not found", "failed to load section")
	}
	if !section.Active {
		return nil, invalidState("section is inactive")
	}
	return section, nil
}

// normalizeRange parses HH:MM bounds, zero pads them and requires start < end.
func normalizeRange(rawStart, rawEnd string) (string, string, error) {
	start, err := time.Parse("15:04", rawStart)
	if err != nil {
		return "", "", invalidInput("start_time must use HH:MM")
	}
	end, err := time.Parse("15:04", rawEnd)
	if err != nil {
		return "", "", invalidInput("end_time must use HH:MM")
	}
	if !start.Before(end) {
		return "", "", invalidInput(fmt.Sprintf("start_time %s must be before end_time %s", start.Format("15:04"), end.Format("15:04")))
	}
	return start.Format("15:04"), end.Format("15:04"), nil
}

func scheduleType(raw string) models.ScheduleType {
	if raw == "" {
		return models.ScheduleTypeTheory
	}
	return models.ScheduleType(raw)
}

func teacherLockKey(periodID, teacherID string) string {
	return "schedule:teacher:" + periodID + ":" + teacherID
}

func roomLockKey(periodID, room string) string {
	return "schedule:room:" + periodID + ":" + room
}
