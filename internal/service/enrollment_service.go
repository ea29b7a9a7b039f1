package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

const historyLimit = 100

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	ExistsForStudentPeriod(ctx context.Context, exec sqlx.ExtContext, studentID, periodID string) (bool, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
	UpdateTotals(ctx context.Context, exec sqlx.ExtContext, id string, credits int, amount decimal.Decimal, status models.EnrollmentStatus) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.EnrollmentStatus) error
}

type enrollmentLineRepository interface {
	FindByID(ctx context.Context, id string) (*models.EnrollmentLine, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.EnrollmentLine, error)
	FindDetailByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.EnrollmentLineDetail, error)
	FindByEnrollmentAndSection(ctx context.Context, exec sqlx.ExtContext, enrollmentID, sectionID string) (*models.EnrollmentLine, error)
	ListByEnrollment(ctx context.Context, exec sqlx.ExtContext, enrollmentID string, status models.LineStatus) ([]models.EnrollmentLineDetail, error)
	List(ctx context.Context, filter models.EnrollmentLineFilter) ([]models.EnrollmentLineDetail, int, error)
	Create(ctx context.Context, exec sqlx.ExtContext, line *models.EnrollmentLine) error
	MarkWithdrawn(ctx context.Context, exec sqlx.ExtContext, id string) error
	Reactivate(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type seatStore interface {
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.SectionDetail, error)
	LockByIDs(ctx context.Context, exec sqlx.ExtContext, ids []string) ([]models.SectionDetail, error)
	Reserve(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
	Release(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type paidAmountReader interface {
	SumCompleted(ctx context.Context, exec sqlx.ExtContext, enrollmentID string) (decimal.Decimal, error)
}

type enrollmentPolicySource interface {
	EnrollmentPolicy(ctx context.Context) (models.EnrollmentPolicy, error)
}

type auditHistoryReader interface {
	ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error)
}

// EnrollmentService is the enrollment engine. Every write runs in one transaction
// that locks the enrollment first, then lines, then sections in id order.
type EnrollmentService struct {
	students    studentReader
	periods     periodReader
	enrollments enrollmentRepository
	lines       enrollmentLineRepository
	sections    seatStore
	payments    paidAmountReader
	settings    enrollmentPolicySource
	history     auditHistoryReader
	tx          txProvider
	audit       auditTrail
	cache       *CacheService
	metrics     *MetricsService
	clock       Clock
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService wires the enrollment engine.
func NewEnrollmentService(
	students studentReader,
	periods periodReader,
	enrollments enrollmentRepository,
	lines enrollmentLineRepository,
	sections seatStore,
	payments paidAmountReader,
	settings enrollmentPolicySource,
	history auditHistoryReader,
	tx txProvider,
	audit auditLogger,
	cache *CacheService,
	metrics *MetricsService,
	clock Clock,
	validate *validator.Validate,
	logger *zap.Logger,
) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		students:    students,
		periods:     periods,
		enrollments: enrollments,
		lines:       lines,
		sections:    sections,
		payments:    payments,
		settings:    settings,
		history:     history,
		tx:          tx,
		audit:       newAuditTrail(audit, logger, "enrollment-service"),
		cache:       cache,
		metrics:     metrics,
		clock:       clock,
		validator:   validate,
		logger:      logger,
	}
}

// Create opens an enrollment with its initial sections. Either every seat is
// reserved and every line written, or nothing is.
func (s *EnrollmentService) Create(ctx context.Context, req dto.CreateEnrollmentRequest, actor *models.JWTClaims) (resp *dto.EnrollmentResponse, err error) {
	defer func() { s.countRejection(err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid enrollment payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	if err := s.authorize(ctx, actor, student.ID); err != nil {
		return nil, err
	}
	if student.Status != models.StudentStatusActive {
		return nil, invalidState(fmt.Sprintf("student %s is %s and cannot enroll", student.Code, student.Status))
	}

	period, err := s.periods.FindByID(ctx, req.PeriodID)
	if err != nil {
		return nil, lookupError(err, "academic period not found", "failed to load period")
	}

	exists, err := s.enrollments.ExistsForStudentPeriod(ctx, nil, student.ID, period.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check existing enrollment")
	}
	if exists {
		return nil, conflict(fmt.Sprintf("student %s is already enrolled in period %s", student.Code, period.Code))
	}

	if err := s.ensureWindow(period, req.Type); err != nil {
		return nil, err
	}
	if len(req.SectionIDs) == 0 {
		return nil, invalidInput("at least one section is required")
	}
	if dup := firstDuplicate(req.SectionIDs); dup != "" {
		return nil, invalidInput(fmt.Sprintf("section %s was requested more than once", dup))
	}

	policy, err := s.settings.EnrollmentPolicy(ctx)
	if err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		StudentID:       student.ID,
		PeriodID:        period.ID,
		Type:            req.Type,
		CreditCost:      policy.CreditCost,
		PriceMultiplier: policy.Multiplier(req.Type),
		Status:          models.EnrollmentStatusPending,
	}
	err = withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		sections, err := s.sections.LockByIDs(ctx, tx, req.SectionIDs)
		if err != nil {
			return appErrors.Internal(err, "failed to lock sections")
		}
		credits, err := s.checkRequestedSections(student, period, req.SectionIDs, sections)
		if err != nil {
			return err
		}
		if credits > policy.MaxCredits {
			return invalidInput(fmt.Sprintf("requested %d credits exceed the maximum of %d", credits, policy.MaxCredits))
		}
		if req.Type == models.EnrollmentTypeRegular && credits < policy.MinCredits {
			return invalidInput(fmt.Sprintf("requested %d credits are below the minimum of %d for a regular enrollment", credits, policy.MinCredits))
		}

		enrollment.TotalCredits = credits
		enrollment.TotalAmount = enrollment.AmountFor(credits)
		if err := s.enrollments.Create(ctx, tx, enrollment); err != nil {
			return translateStoreError(err, "failed to create enrollment")
		}
		for _, section := range sections {
			if err := s.reserve(ctx, tx, &section); err != nil {
				return err
			}
			line := &models.EnrollmentLine{EnrollmentID: enrollment.ID, SectionID: section.ID, Status: models.LineStatusActive}
			if err := s.lines.Create(ctx, tx, line); err != nil {
				return translateStoreError(err, "failed to create enrollment line")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.EnrollmentCreated(enrollment.Type, len(req.SectionIDs))
	s.cache.InvalidatePeriod(ctx, enrollment.PeriodID)
	s.audit.record(ctx, actor, models.AuditActionEnrollmentCreate, "enrollment", enrollment.ID, nil, map[string]interface{}{
		"student_id":    enrollment.StudentID,
		"period_id":     enrollment.PeriodID,
		"type":          enrollment.Type,
		"section_ids":   req.SectionIDs,
		"total_credits": enrollment.TotalCredits,
		"total_amount":  enrollment.TotalAmount,
	})
	s.logger.Info("enrollment created",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("student_id", enrollment.StudentID),
		zap.String("period_id", enrollment.PeriodID),
		zap.Int("sections", len(req.SectionIDs)),
		zap.Int("credits", enrollment.TotalCredits),
		zap.String("amount", enrollment.TotalAmount.StringFixed(2)),
	)
	return s.build(ctx, enrollment.ID)
}

// Cancel withdraws every active line, releases its seat and marks the enrollment
// cancelled. Totals are kept as they were.
func (s *EnrollmentService) Cancel(ctx context.Context, id string, actor *models.JWTClaims) (*dto.EnrollmentResponse, error) {
	enrollment, err := s.enrollments.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	if err := s.authorize(ctx, actor, enrollment.StudentID); err != nil {
		return nil, err
	}

	var released int
	err = withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		locked, err := s.enrollments.LockByID(ctx, tx, id)
		if err != nil {
			return lookupError(err, "enrollment not found", "failed to lock enrollment")
		}
		if locked.Status == models.EnrollmentStatusCancelled {
			return invalidState("enrollment is already cancelled")
		}
		active, err := s.lines.ListByEnrollment(ctx, tx, id, models.LineStatusActive)
		if err != nil {
			return appErrors.Internal(err, "failed to load enrollment lines")
		}
		sort.Slice(active, func(i, j int) bool { return active[i].SectionID < active[j].SectionID })
		for _, line := range active {
			if err := s.lines.MarkWithdrawn(ctx, tx, line.ID); err != nil {
				return lookupError(err, "enrollment line not found", "failed to withdraw line")
			}
			if err := s.sections.Release(ctx, tx, line.SectionID); err != nil {
				return appErrors.Internal(err, "failed to release seat")
			}
		}
		released = len(active)
		// Totals are left as billed: completed payments must stay within
		// total_amount and the ledger is kept for the record.
		if err := s.enrollments.UpdateStatus(ctx, tx, id, models.EnrollmentStatusCancelled); err != nil {
			return lookupError(err, "enrollment not found", "failed to cancel enrollment")
		}
		enrollment = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SeatsChanged("release", released)
	s.cache.InvalidatePeriod(ctx, enrollment.PeriodID)
	s.audit.record(ctx, actor, models.AuditActionEnrollmentCancel, "enrollment", id,
		map[string]string{"status": string(enrollment.Status)},
		map[string]interface{}{"status": models.EnrollmentStatusCancelled, "released_seats": released})
	s.logger.Info("enrollment cancelled", zap.String("enrollment_id", id), zap.Int("released_seats", released))
	return s.build(ctx, id)
}

// UpdateStatus sets a status directly. Cancelling goes through Cancel so seats are
// released; nothing leaves cancelled.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, id string, req dto.UpdateEnrollmentStatusRequest, actor *models.JWTClaims) (*dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid status payload")
	}
	status := models.EnrollmentStatus(req.Status)
	if !status.Valid() {
		return nil, invalidInput(fmt.Sprintf("unknown enrollment status %q", req.Status))
	}
	if status == models.EnrollmentStatusCancelled {
		return s.Cancel(ctx, id, actor)
	}

	var previous models.EnrollmentStatus
	err := withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		enrollment, err := s.enrollments.LockByID(ctx, tx, id)
		if err != nil {
			return lookupError(err, "enrollment not found", "failed to lock enrollment")
		}
		previous = enrollment.Status
		if previous == models.EnrollmentStatusCancelled {
			return invalidState("a cancelled enrollment cannot change status")
		}
		if previous == status {
			return nil
		}
		if err := s.enrollments.UpdateStatus(ctx, tx, id, status); err != nil {
			return lookupError(err, "enrollment not found", "failed to update enrollment status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if previous != status {
		s.audit.record(ctx, actor, models.AuditActionEnrollmentStatus, "enrollment", id,
			map[string]string{"status": string(previous)}, map[string]string{"status": string(status)})
	}
	return s.build(ctx, id)
}

// Get returns an enrollment with every line and its summary.
func (s *EnrollmentService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.EnrollmentResponse, error) {
	resp, err := s.build(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, resp.Enrollment.StudentID); err != nil {
		return nil, err
	}
	return resp, nil
}

// List returns enrollments with pagination metadata. Students only see their own.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter, actor *models.JWTClaims) ([]models.EnrollmentDetail, *models.Pagination, error) {
	if actor.IsStudent() {
		student, err := s.callerStudent(ctx, actor)
		if err != nil {
			return nil, nil, err
		}
		filter.StudentID = student.ID
	}
	enrollments, total, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return enrollments, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// ListByPeriod returns the enrollments of one period.
func (s *EnrollmentService) ListByPeriod(ctx context.Context, periodID string, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	if _, err := s.periods.FindByID(ctx, periodID); err != nil {
		return nil, nil, lookupError(err, "academic period not found", "failed to load period")
	}
	filter.PeriodID = periodID
	return s.List(ctx, filter, nil)
}

// History returns the audit entries recorded against an enrollment, newest first.
func (s *EnrollmentService) History(ctx context.Context, id string) ([]models.AuditLog, error) {
	if _, err := s.enrollments.FindByID(ctx, id); err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	if s.history == nil {
		return []models.AuditLog{}, nil
	}
	logs, err := s.history.ListByResource(ctx, "enrollment", id, historyLimit)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrollment history")
	}
	return logs, nil
}

// checkRequestedSections validates resolved sections against the student and period
// and returns their credit sum. sections is ordered by id.
func (s *EnrollmentService) checkRequestedSections(student *models.Student, period *models.AcademicPeriod, requested []string, sections []models.SectionDetail) (int, error) {
	found := make(map[string]struct{}, len(sections))
	for _, section := range sections {
		found[section.ID] = struct{}{}
	}
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			return 0, invalidInput(fmt.Sprintf("section %s does not exist", id))
		}
	}

	courses := make(map[string]string, len(sections))
	credits := 0
	for _, section := range sections {
		if section.PeriodID != period.ID || !section.Active {
			return 0, invalidInput(fmt.Sprintf("section %s of %s is not open in period %s", section.Label, section.CourseCode, period.Code))
		}
		if other, ok := courses[section.CourseID]; ok {
			return 0, invalidInput(fmt.Sprintf("cannot enroll in multiple sections of course %s (%s and %s)", section.CourseCode, other, section.Label))
		}
		courses[section.CourseID] = section.Label
		if err := checkEligibility(student, &section); err != nil {
			return 0, err
		}
		credits += section.CourseCredits
	}
	for _, section := range sections {
		if !section.HasSeat() {
			return 0, seatsExhausted(&section)
		}
	}
	return credits, nil
}

// ensureWindow checks today against the enrollment window of the requested type.
func (s *EnrollmentService) ensureWindow(period *models.AcademicPeriod, kind models.EnrollmentType) error {
	start, end, ok := period.EnrollmentWindow(kind)
	if !ok {
		return invalidState(fmt.Sprintf("period %s has no %s enrollment window", period.Code, kind))
	}
	if !models.WithinDates(s.clock.Today(), start, end) {
		return invalidState(fmt.Sprintf("not within the %s enrollment period (%s to %s)", kind,
			start.Format(dateLayout), end.Format(dateLayout))).
			WithDetails(map[string]string{"window_start": start.Format(dateLayout), "window_end": end.Format(dateLayout), "today": s.clock.Today().Format(dateLayout)})
	}
	return nil
}

// reserve takes a seat with the guarded update. A false result means the section
// filled up after it was read.
func (s *EnrollmentService) reserve(ctx context.Context, tx *sqlx.Tx, section *models.SectionDetail) error {
	ok, err := s.sections.Reserve(ctx, tx, section.ID)
	if err != nil {
		return translateStoreError(err, "failed to reserve seat")
	}
	if !ok {
		return seatsExhausted(section)
	}
	return nil
}

func (s *EnrollmentService) authorize(ctx context.Context, actor *models.JWTClaims, studentID string) error {
	return authorizeStudent(ctx, s.students, actor, studentID)
}

func (s *EnrollmentService) callerStudent(ctx context.Context, actor *models.JWTClaims) (*models.Student, error) {
	return callerStudent(ctx, s.students, actor)
}

// build reads an enrollment back with all of its lines.
func (s *EnrollmentService) build(ctx context.Context, id string) (*dto.EnrollmentResponse, error) {
	detail, err := s.enrollments.FindDetailByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	lines, err := s.lines.ListByEnrollment(ctx, nil, id, "")
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrollment lines")
	}
	if lines == nil {
		lines = []models.EnrollmentLineDetail{}
	}
	return &dto.EnrollmentResponse{Enrollment: *detail, Lines: lines, Summary: summarize(detail.Enrollment, lines)}, nil
}

func (s *EnrollmentService) countRejection(err error) {
	if err == nil {
		return
	}
	if appErr := appErrors.FromError(err); appErr.Code != appErrors.ErrInternal.Code {
		s.metrics.EnrollmentRejected(appErr.Code)
	}
}

func summarize(e models.Enrollment, lines []models.EnrollmentLineDetail) dto.EnrollmentSummary {
	courses := 0
	for _, line := range lines {
		if line.Status == models.LineStatusActive {
			courses++
		}
	}
	return dto.EnrollmentSummary{
		Courses:         courses,
		TotalCredits:    e.TotalCredits,
		CreditCost:      e.CreditCost,
		PriceMultiplier: e.PriceMultiplier,
		TotalAmount:     e.TotalAmount,
	}
}

// checkEligibility requires the course to be in the student's plan and at most one
// cycle ahead of the student.
func checkEligibility(student *models.Student, section *models.SectionDetail) error {
	if section.StudyPlanID != student.StudyPlanID {
		return invalidInput(fmt.Sprintf("course %s is not part of the student's study plan", section.CourseCode))
	}
	if section.CourseCycle > student.CurrentCycle+1 {
		return invalidInput(fmt.Sprintf("course %s belongs to cycle %d; student in cycle %d may enroll up to cycle %d",
			section.CourseCode, section.CourseCycle, student.CurrentCycle, student.CurrentCycle+1))
	}
	return nil
}

func seatsExhausted(section *models.SectionDetail) error {
	return conflict(fmt.Sprintf("section %s of %s has no seats available", section.Label, section.CourseCode)).
		WithDetails(map[string]interface{}{
			"section_id":        section.ID,
			"current_occupancy": section.CurrentOccupancy,
			"max_capacity":      section.MaxCapacity,
		})
}

// settledStatus is paid exactly when a positive total is fully covered.
func settledStatus(total, paid decimal.Decimal) models.EnrollmentStatus {
	if total.IsPositive() && paid.GreaterThanOrEqual(total) {
		return models.EnrollmentStatusPaid
	}
	return models.EnrollmentStatusPending
}

func firstDuplicate(ids []string) string {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id
		}
		seen[id] = struct{}{}
	}
	return ""
}
