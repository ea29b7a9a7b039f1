package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

type sectionRepository interface {
	FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.SectionDetail, error)
	List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, int, error)
	ListOpenByCourseAndPeriod(ctx context.Context, courseID, periodID string) ([]models.SectionDetail, error)
	ExistsLabel(ctx context.Context, courseID, periodID, label, excludeID string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, section *models.Section) error
	Update(ctx context.Context, exec sqlx.ExtContext, section *models.Section) error
	Deactivate(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type scheduleChecker interface {
	ListBySections(ctx context.Context, sectionIDs []string) ([]models.Schedule, error)
	FindTeacherConflicts(ctx context.Context, exec sqlx.ExtContext, candidate models.ScheduleCandidate) ([]models.ScheduleConflict, error)
	FindRoomConflicts(ctx context.Context, exec sqlx.ExtContext, candidate models.ScheduleCandidate) ([]models.ScheduleConflict, error)
	LockKeys(ctx context.Context, exec sqlx.ExtContext, keys ...string) error
}

type sectionScheduleStore interface {
	scheduleChecker
	DeleteBySection(ctx context.Context, exec sqlx.ExtContext, sectionID string) error
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type periodReader interface {
	FindByID(ctx context.Context, id string) (*models.AcademicPeriod, error)
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// SectionService manages course offerings and their seat ceilings.
type SectionService struct {
	sections  sectionRepository
	schedules sectionScheduleStore
	courses   courseReader
	periods   periodReader
	teachers  teacherReader
	tx        txProvider
	audit     auditTrail
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService wires section dependencies.
func NewSectionService(
	sections sectionRepository,
	schedules sectionScheduleStore,
	courses courseReader,
	periods periodReader,
	teachers teacherReader,
	tx txProvider,
	audit auditLogger,
	validate *validator.Validate,
	logger *zap.Logger,
) *SectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{
		sections:  sections,
		schedules: schedules,
		courses:   courses,
		periods:   periods,
		teachers:  teachers,
		tx:        tx,
		audit:     newAuditTrail(audit, logger, "section-service"),
		validator: validate,
		logger:    logger,
	}
}

// Create opens a section with zero occupancy.
func (s *SectionService) Create(ctx context.Context, req dto.CreateSectionRequest, actor *models.JWTClaims) (*dto.SectionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid section payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, lookupError(err, "course not found", "failed to load course")
	}
	if !course.Active {
		return nil, invalidState(fmt.Sprintf("course %s is inactive", course.Code))
	}
	if _, err := s.periods.FindByID(ctx, req.PeriodID); err != nil {
		return nil, lookupError(err, "academic period not found", "failed to load period")
	}
	if err := s.ensureTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	taken, err := s.sections.ExistsLabel(ctx, req.CourseID, req.PeriodID, req.Label, "")
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check section label")
	}
	if taken {
		return nil, conflict(fmt.Sprintf("section %s already exists for %s in this period", req.Label, course.Code))
	}

	section := &models.Section{
		CourseID:    req.CourseID,
		PeriodID:    req.PeriodID,
		TeacherID:   req.TeacherID,
		Label:       req.Label,
		MaxCapacity: req.MaxCapacity,
		Active:      true,
	}
	if err := s.sections.Create(ctx, nil, section); err != nil {
		return nil, translateStoreError(err, "failed to create section")
	}

	s.audit.record(ctx, actor, models.AuditActionSectionCreate, "section", section.ID, nil, section)
	s.logger.Info("section created", zap.String("section_id", section.ID), zap.String("course", course.Code), zap.String("label", section.Label))
	return s.Get(ctx, section.ID)
}

// Update changes teacher, label, capacity or the active flag under a row lock.
func (s *SectionService) Update(ctx context.Context, id string, req dto.UpdateSectionRequest, actor *models.JWTClaims) (*dto.SectionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid section payload")
	}

	var before models.Section
	err := withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		current, err := s.sections.LockByID(ctx, tx, id)
		if err != nil {
			return lookupError(err, "section not found", "failed to lock section")
		}
		before = current.Section
		next := current.Section

		if req.Label != nil && *req.Label != next.Label {
			taken, err := s.sections.ExistsLabel(ctx, next.CourseID, next.PeriodID, *req.Label, id)
			if err != nil {
				return appErrors.Internal(err, "failed to check section label")
			}
			if taken {
				return conflict(fmt.Sprintf("section %s already exists for %s in this period", *req.Label, current.CourseCode))
			}
			next.Label = *req.Label
		}
		if req.MaxCapacity != nil {
			if *req.MaxCapacity < next.CurrentOccupancy {
				return conflict("capacity cannot be lowered below current occupancy").
					WithDetails(map[string]int{"current_occupancy": next.CurrentOccupancy, "requested_capacity": *req.MaxCapacity})
			}
			next.MaxCapacity = *req.MaxCapacity
		}
		if req.Active != nil && !*req.Active && next.Active && next.CurrentOccupancy > 0 {
			return invalidState("a section with enrolled students cannot be deactivated")
		}
		teacherChanged := req.TeacherID != nil && *req.TeacherID != next.TeacherID
		if teacherChanged {
			if err := s.ensureTeacher(ctx, *req.TeacherID); err != nil {
				return err
			}
			next.TeacherID = *req.TeacherID
		}
		reactivated := req.Active != nil && *req.Active && !next.Active
		if req.Active != nil {
			next.Active = *req.Active
		}

		if next.Active && (teacherChanged || reactivated) {
			if err := s.ensureBlocksFree(ctx, tx, next, reactivated); err != nil {
				return err
			}
		}
		if err := s.sections.Update(ctx, tx, &next); err != nil {
			return translateStoreError(err, "failed to update section")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, models.AuditActionSectionUpdate, "section", id, before, result.Section)
	return result, nil
}

// Delete deactivates an empty section and drops its schedule blocks.
func (s *SectionService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	err := withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		section, err := s.sections.LockByID(ctx, tx, id)
		if err != nil {
			return lookupError(err, "section not found", "failed to lock section")
		}
		if section.CurrentOccupancy > 0 {
			return invalidState(fmt.Sprintf("section has %d enrolled students and cannot be deleted", section.CurrentOccupancy))
		}
		if err := s.schedules.DeleteBySection(ctx, tx, id); err != nil {
			return appErrors.Internal(err, "failed to delete section schedules")
		}
		if err := s.sections.Deactivate(ctx, tx, id); err != nil {
			return lookupError(err, "section not found", "failed to deactivate section")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.record(ctx, actor, models.AuditActionSectionDelete, "section", id, nil, nil)
	s.logger.Info("section deleted", zap.String("section_id", id))
	return nil
}

// Get returns a section with its weekly blocks.
func (s *SectionService) Get(ctx context.Context, id string) (*dto.SectionResponse, error) {
	section, err := s.sections.FindDetailByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "section not found", "failed to load section")
	}
	withSchedules, err := s.attachSchedules(ctx, []models.SectionDetail{*section})
	if err != nil {
		return nil, err
	}
	return &withSchedules[0], nil
}

// List returns sections with pagination metadata.
func (s *SectionService) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, *models.Pagination, error) {
	sections, total, err := s.sections.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list sections")
	}
	return sections, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// ListByCourseAndPeriod returns the open sections of a course with their blocks.
func (s *SectionService) ListByCourseAndPeriod(ctx context.Context, courseID, periodID string) ([]dto.SectionResponse, error) {
	sections, err := s.sections.ListOpenByCourseAndPeriod(ctx, courseID, periodID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sections")
	}
	return s.attachSchedules(ctx, sections)
}

func (s *SectionService) attachSchedules(ctx context.Context, sections []models.SectionDetail) ([]dto.SectionResponse, error) {
	ids := make([]string, 0, len(sections))
	for _, section := range sections {
		ids = append(ids, section.ID)
	}
	schedules, err := s.schedules.ListBySections(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load section schedules")
	}
	bySection := make(map[string][]models.Schedule, len(sections))
	for _, schedule := range schedules {
		bySection[schedule.SectionID] = append(bySection[schedule.SectionID], schedule)
	}

	result := make([]dto.SectionResponse, 0, len(sections))
	for _, section := range sections {
		section.Schedules = bySection[section.ID]
		result = append(result, dto.SectionResponse{
			SectionDetail: section,
			Available:     section.MaxCapacity - section.CurrentOccupancy,
		})
	}
	return result, nil
}

// ensureBlocksFree re-checks the section's existing blocks against the teacher it
// now has and, for a reactivated section, against the rooms it uses.
func (s *SectionService) ensureBlocksFree(ctx context.Context, tx *sqlx.Tx, section models.Section, checkRooms bool) error {
	blocks, err := s.schedules.ListBySections(ctx, []string{section.ID})
	if err != nil {
		return appErrors.Internal(err, "failed to load section schedules")
	}
	if len(blocks) == 0 {
		return nil
	}
	keys := []string{teacherLockKey(section.PeriodID, section.TeacherID)}
	if checkRooms {
		for _, block := range blocks {
			keys = append(keys, roomLockKey(section.PeriodID, block.Room))
		}
	}
	if err := s.schedules.LockKeys(ctx, tx, uniqueStrings(keys)...); err != nil {
		return appErrors.Internal(err, "failed to lock schedules")
	}

	var conflicts []models.ScheduleConflict
	for _, block := range blocks {
		candidate := models.ScheduleCandidate{
			PeriodID:  section.PeriodID,
			TeacherID: section.TeacherID,
			Room:      block.Room,
			DayOfWeek: block.DayOfWeek,
			StartTime: block.StartTime,
			EndTime:   block.EndTime,
			ExcludeID: block.ID,
		}
		found, err := s.schedules.FindTeacherConflicts(ctx, tx, candidate)
		if err != nil {
			return appErrors.Internal(err, "failed to check teacher conflicts")
		}
		conflicts = append(conflicts, withoutSection(found, section.ID)...)
		if checkRooms {
			found, err = s.schedules.FindRoomConflicts(ctx, tx, candidate)
			if err != nil {
				return appErrors.Internal(err, "failed to check room conflicts")
			}
			conflicts = append(conflicts, withoutSection(found, section.ID)...)
		}
	}
	if len(conflicts) > 0 {
		return conflict("section schedule collides with existing classes").WithDetails(conflicts)
	}
	return nil
}

func (s *SectionService) ensureTeacher(ctx context.Context, teacherID string) error {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		return lookupError(err, "teacher not found", "failed to load teacher")
	}
	if !teacher.Active {
		return invalidState(fmt.Sprintf("teacher %s is inactive", teacher.Code))
	}
	return nil
}

func withoutSection(conflicts []models.ScheduleConflict, sectionID string) []models.ScheduleConflict {
	kept := conflicts[:0]
	for _, c := range conflicts {
		if c.SectionID != sectionID {
			kept = append(kept, c)
		}
	}
	return kept
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
