package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type periodRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicPeriod, error)
	FindCurrent(ctx context.Context, day time.Time) (*models.AcademicPeriod, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, period *models.AcademicPeriod) error
	List(ctx context.Context, filter models.PeriodFilter) ([]models.AcademicPeriod, int, error)
	UpdateStatus(ctx context.Context, id string, status models.PeriodStatus) error
}

// PeriodService administers academic periods and their enrollment windows.
type PeriodService struct {
	repo      periodRepository
	audit     auditTrail
	clock     Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService constructs a PeriodService.
func NewPeriodService(repo periodRepository, audit auditLogger, clock Clock, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{
		repo:      repo,
		audit:     newAuditTrail(audit, logger, "period-service"),
		clock:     clock,
		validator: validate,
		logger:    logger,
	}
}

// Create validates the windows and stores a new scheduled period.
func (s *PeriodService) Create(ctx context.Context, req dto.CreatePeriodRequest, actor *models.JWTClaims) (*models.AcademicPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid period payload")
	}
	period, err := periodFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := validateWindows(period); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByCode(ctx, period.Code)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check period code")
	}
	if exists {
		return nil, conflict("period code already exists")
	}
	if err := s.repo.Create(ctx, period); err != nil {
		return nil, translateStoreError(err, "failed to create period")
	}

	s.audit.record(ctx, actor, models.AuditActionPeriodCreate, "academic_period", period.ID, nil, period)
	s.logger.Info("period created", zap.String("period_id", period.ID), zap.String("code", period.Code))
	return period, nil
}

// Get returns a period by id.
func (s *PeriodService) Get(ctx context.Context, id string) (*models.AcademicPeriod, error) {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("academic period not found")
		}
		return nil, appErrors.Internal(err, "failed to load period")
	}
	return period, nil
}

// List returns periods with pagination metadata.
func (s *PeriodService) List(ctx context.Context, filter models.PeriodFilter) ([]models.AcademicPeriod, *models.Pagination, error) {
	periods, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list periods")
	}
	return periods, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Current returns the period containing today or, failing that, the next one.
func (s *PeriodService) Current(ctx context.Context) (*models.AcademicPeriod, error) {
	period, err := s.repo.FindCurrent(ctx, s.clock.Today())
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("no current or upcoming academic period")
		}
		return nil, appErrors.Internal(err, "failed to load current period")
	}
	return period, nil
}

// UpdateStatus advances the lifecycle. Transitions only move forward and are gated
// on today's date.
func (s *PeriodService) UpdateStatus(ctx context.Context, id string, req dto.UpdatePeriodStatusRequest, actor *models.JWTClaims) (*models.AcademicPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid status payload")
	}
	period, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := models.PeriodStatus(req.Status)
	if next == period.Status {
		return period, nil
	}

	today := s.clock.Today()
	switch {
	case period.Status == models.PeriodStatusScheduled && next == models.PeriodStatusInProgress:
		if !models.WithinDates(today, period.StartDate, period.EndDate) {
			return nil, invalidState("period can only start between its start and end dates")
		}
	case period.Status == models.PeriodStatusInProgress && next == models.PeriodStatusFinished:
		if today.Before(models.CivilDate(period.EndDate)) {
			return nil, invalidState("period can only finish on or after its end date")
		}
	default:
		return nil, invalidState("cannot move period from " + string(period.Status) + " to " + string(next))
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		if isNoRows(err) {
			return nil, notFound("academic period not found")
		}
		return nil, appErrors.Internal(err, "failed to update period status")
	}
	previous := period.Status
	period.Status = next
	s.audit.record(ctx, actor, models.AuditActionPeriodStatus, "academic_period", id,
		map[string]string{"status": string(previous)}, map[string]string{"status": string(next)})
	return period, nil
}

func periodFromRequest(req dto.CreatePeriodRequest) (*models.AcademicPeriod, error) {
	var err error
	period := &models.AcademicPeriod{Code: req.Code, Name: req.Name, Status: models.PeriodStatusScheduled, Active: true}
	fields := []struct {
		raw    string
		target *time.Time
	}{
		{req.StartDate, &period.StartDate},
		{req.EndDate, &period.EndDate},
		{req.EnrollmentStart, &period.EnrollmentStart},
		{req.EnrollmentEnd, &period.EnrollmentEnd},
	}
	for _, field := range fields {
		if *field.target, err = time.Parse(dateLayout, field.raw); err != nil {
			return nil, invalidInput("dates must use YYYY-MM-DD")
		}
	}
	if (req.LateEnrollmentStart == nil) != (req.LateEnrollmentEnd == nil) {
		return nil, invalidInput("late enrollment window needs both start and end")
	}
	if req.LateEnrollmentStart != nil {
		lateStart, err := time.Parse(dateLayout, *req.LateEnrollmentStart)
		if err != nil {
			return nil, invalidInput("dates must use YYYY-MM-DD")
		}
		lateEnd, err := time.Parse(dateLayout, *req.LateEnrollmentEnd)
		if err != nil {
			return nil, invalidInput("dates must use YYYY-MM-DD")
		}
		period.LateEnrollmentStart = &lateStart
		period.LateEnrollmentEnd = &lateEnd
	}
	return period, nil
}

func validateWindows(p *models.AcademicPeriod) error {
	if !p.StartDate.Before(p.EndDate) {
		return invalidInput("start_date must be before end_date")
	}
	if !p.EnrollmentStart.Before(p.EnrollmentEnd) {
		return invalidInput("enrollment_start must be before enrollment_end")
	}
	if !p.EnrollmentEnd.Before(p.StartDate) {
		return invalidInput("regular enrollment must end before the period starts")
	}
	if p.LateEnrollmentStart == nil {
		return nil
	}
	if !p.LateEnrollmentStart.After(p.EnrollmentEnd) {
		return invalidInput("late enrollment must start after regular enrollment ends")
	}
	if !p.LateEnrollmentStart.Before(*p.LateEnrollmentEnd) {
		return invalidInput("late_enrollment_start must be before late_enrollment_end")
	}
	if !p.LateEnrollmentEnd.Before(p.StartDate) {
		return invalidInput("late enrollment must end before the period starts")
	}
	return nil
}
