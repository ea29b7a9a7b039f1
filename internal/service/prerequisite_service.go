package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	PrerequisiteExists(ctx context.Context, courseID, requiredCourseID string) (bool, error)
	CreatePrerequisite(ctx context.Context, prereq *models.Prerequisite) error
	ListPrerequisites(ctx context.Context, courseID string) ([]models.PrerequisiteDetail, error)
}

// PrerequisiteService maintains the prerequisite graph of a study plan.
type PrerequisiteService struct {
	courses   courseRepository
	audit     auditTrail
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPrerequisiteService constructs a PrerequisiteService.
func NewPrerequisiteService(courses courseRepository, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *PrerequisiteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrerequisiteService{
		courses:   courses,
		audit:     newAuditTrail(audit, logger, "prerequisite-service"),
		validator: validate,
		logger:    logger,
	}
}

// Create links a course to an earlier course of the same plan.
func (s *PrerequisiteService) Create(ctx context.Context, req dto.CreatePrerequisiteRequest, actor *models.JWTClaims) (*models.Prerequisite, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid prerequisite payload")
	}
	if req.CourseID == req.RequiredCourseID {
		return nil, invalidInput("a course cannot require itself")
	}

	course, err := s.findCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	required, err := s.findCourse(ctx, req.RequiredCourseID)
	if err != nil {
		return nil, err
	}
	if course.StudyPlanID != required.StudyPlanID {
		return nil, invalidInput("both courses must belong to the same study plan")
	}
	if required.Cycle >= course.Cycle {
		return nil, invalidInput(fmt.Sprintf("required course %s (cycle %d) must come before %s (cycle %d)",
			required.Code, required.Cycle, course.Code, course.Cycle))
	}

	exists, err := s.courses.PrerequisiteExists(ctx, course.ID, required.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check prerequisite")
	}
	if exists {
		return nil, conflict("prerequisite already exists")
	}

	kind := models.PrerequisiteMandatory
	if req.Type != "" {
		kind = models.PrerequisiteType(req.Type)
	}
	prereq := &models.Prerequisite{CourseID: course.ID, RequiredCourseID: required.ID, Type: kind}
	if err := s.courses.CreatePrerequisite(ctx, prereq); err != nil {
		return nil, translateStoreError(err, "failed to create prerequisite")
	}
	s.audit.record(ctx, actor, models.AuditActionPrerequisiteCreate, "prerequisite", prereq.ID, nil, prereq)
	return prereq, nil
}

// ListByCourse returns the prerequisites of a course.
func (s *PrerequisiteService) ListByCourse(ctx context.Context, courseID string) ([]models.PrerequisiteDetail, error) {
	if _, err := s.findCourse(ctx, courseID); err != nil {
		return nil, err
	}
	prereqs, err := s.courses.ListPrerequisites(ctx, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list prerequisites")
	}
	return prereqs, nil
}

func (s *PrerequisiteService) findCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	return course, nil
}
