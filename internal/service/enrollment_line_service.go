package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

// AddLine adds one section to an existing enrollment and reprices it. A line
// withdrawn earlier from the same section is reactivated instead of duplicated.
func (s *EnrollmentService) AddLine(ctx context.Context, req dto.AddEnrollmentLineRequest, actor *models.JWTClaims) (resp *dto.EnrollmentLineResponse, err error) {
	defer func() { s.countRejection(err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid enrollment line payload")
	}
	current, err := s.enrollments.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	if err := s.authorize(ctx, actor, current.StudentID); err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, current.StudentID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}

	var (
		line       *models.EnrollmentLineDetail
		enrollment *models.Enrollment
	)
	err = withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		locked, err := s.enrollments.LockByID(ctx, tx, req.EnrollmentID)
		if err != nil {
			return lookupError(err, "enrollment not found", "failed to lock enrollment")
		}
		if locked.Status == models.EnrollmentStatusCancelled {
			return invalidState("cannot add sections to a cancelled enrollment")
		}

		existing, err := s.lines.FindByEnrollmentAndSection(ctx, tx, locked.ID, req.SectionID)
		switch {
		case err == nil:
			if existing, err = s.lines.LockByID(ctx, tx, existing.ID); err != nil {
				return lookupError(err, "enrollment line not found", "failed to lock enrollment line")
			}
		case isNoRows(err):
			existing = nil
		default:
			return appErrors.Internal(err, "failed to check existing line")
		}

		section, err := s.sections.LockByID(ctx, tx, req.SectionID)
		if err != nil {
			return lookupError(err, "section not found", "failed to lock section")
		}
		if section.PeriodID != locked.PeriodID || !section.Active {
			return invalidInput(fmt.Sprintf("section %s of %s is not open in the enrollment's period", section.Label, section.CourseCode))
		}
		if existing != nil && existing.Status == models.LineStatusActive {
			return conflict(fmt.Sprintf("already enrolled in section %s of %s", section.Label, section.CourseCode))
		}

		active, err := s.lines.ListByEnrollment(ctx, tx, locked.ID, models.LineStatusActive)
		if err != nil {
			return appErrors.Internal(err, "failed to load enrollment lines")
		}
		for _, other := range active {
			if other.CourseID == section.CourseID {
				return conflict(fmt.Sprintf("already enrolled in section %s of %s", other.SectionLabel, other.CourseCode))
			}
		}
		if err := checkEligibility(student, section); err != nil {
			return err
		}

		policy, err := s.settings.EnrollmentPolicy(ctx)
		if err != nil {
			return err
		}
		credits := locked.TotalCredits + section.CourseCredits
		if credits > policy.MaxCredits {
			return invalidInput(fmt.Sprintf("adding %s brings the enrollment to %d credits, above the maximum of %d",
				section.CourseCode, credits, policy.MaxCredits))
		}
		if !section.HasSeat() {
			return seatsExhausted(section)
		}
		if err := s.reserve(ctx, tx, section); err != nil {
			return err
		}

		lineID := ""
		if existing != nil {
			lineID = existing.ID
			if err := s.lines.Reactivate(ctx, tx, lineID); err != nil {
				return lookupError(err, "enrollment line not found", "failed to reactivate line")
			}
		} else {
			created := &models.EnrollmentLine{EnrollmentID: locked.ID, SectionID: section.ID, Status: models.LineStatusActive}
			if err := s.lines.Create(ctx, tx, created); err != nil {
				return translateStoreError(err, "failed to create enrollment line")
			}
			lineID = created.ID
		}

		if err := s.reprice(ctx, tx, locked, credits); err != nil {
			return err
		}
		detail, err := s.lines.FindDetailByID(ctx, tx, lineID)
		if err != nil {
			return lookupError(err, "enrollment line not found", "failed to load enrollment line")
		}
		line, enrollment = detail, locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SeatsChanged("reserve", 1)
	s.cache.InvalidatePeriod(ctx, enrollment.PeriodID)
	s.audit.record(ctx, actor, models.AuditActionLineAdd, "enrollment", enrollment.ID, nil, map[string]interface{}{
		"line_id":       line.ID,
		"section_id":    line.SectionID,
		"course_code":   line.CourseCode,
		"total_credits": enrollment.TotalCredits,
		"total_amount":  enrollment.TotalAmount,
	})
	s.logger.Info("enrollment line added",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("line_id", line.ID),
		zap.String("section_id", line.SectionID),
	)
	return &dto.EnrollmentLineResponse{Line: *line, Enrollment: *enrollment}, nil
}

// WithdrawLine releases the seat behind a line and reprices the enrollment. It is
// refused when completed payments would exceed the new total.
func (s *EnrollmentService) WithdrawLine(ctx context.Context, lineID string, actor *models.JWTClaims) (*dto.EnrollmentLineResponse, error) {
	current, err := s.lines.FindByID(ctx, lineID)
	if err != nil {
		return nil, lookupError(err, "enrollment line not found", "failed to load enrollment line")
	}
	owner, err := s.enrollments.FindByID(ctx, current.EnrollmentID)
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	if err := s.authorize(ctx, actor, owner.StudentID); err != nil {
		return nil, err
	}

	var (
		line       *models.EnrollmentLineDetail
		enrollment *models.Enrollment
	)
	err = withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		locked, err := s.enrollments.LockByID(ctx, tx, current.EnrollmentID)
		if err != nil {
			return lookupError(err, "enrollment not found", "failed to lock enrollment")
		}
		if locked.Status == models.EnrollmentStatusCancelled {
			return invalidState("cannot withdraw from a cancelled enrollment")
		}
		held, err := s.lines.LockByID(ctx, tx, lineID)
		if err != nil {
			return lookupError(err, "enrollment line not found", "failed to lock enrollment line")
		}
		if held.Status == models.LineStatusWithdrawn {
			return invalidState("enrollment line is already withdrawn")
		}
		detail, err := s.lines.FindDetailByID(ctx, tx, lineID)
		if err != nil {
			return lookupError(err, "enrollment line not found", "failed to load enrollment line")
		}

		credits := locked.TotalCredits - detail.Credits
		if credits < 0 {
			credits = 0
		}
		newTotal := locked.AmountFor(credits)
		paid, err := s.payments.SumCompleted(ctx, tx, locked.ID)
		if err != nil {
			return appErrors.Internal(err, "failed to sum payments")
		}
		if paid.GreaterThan(newTotal) {
			return conflict("completed payments exceed the total after withdrawal; cancel a payment first").
				WithDetails(map[string]string{
					"total_paid": paid.StringFixed(2),
					"new_total":  newTotal.StringFixed(2),
				})
		}

		if err := s.lines.MarkWithdrawn(ctx, tx, lineID); err != nil {
			return lookupError(err, "enrollment line not found", "failed to withdraw line")
		}
		if err := s.sections.Release(ctx, tx, held.SectionID); err != nil {
			return appErrors.Internal(err, "failed to release seat")
		}
		if err := s.applyTotals(ctx, tx, locked, credits, paid); err != nil {
			return err
		}
		detail.Status = models.LineStatusWithdrawn
		line, enrollment = detail, locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SeatsChanged("release", 1)
	s.cache.InvalidatePeriod(ctx, enrollment.PeriodID)
	s.audit.record(ctx, actor, models.AuditActionLineWithdraw, "enrollment", enrollment.ID,
		map[string]string{"line_id": line.ID, "status": string(models.LineStatusActive)},
		map[string]interface{}{
			"line_id":       line.ID,
			"section_id":    line.SectionID,
			"status":        models.LineStatusWithdrawn,
			"total_credits": enrollment.TotalCredits,
			"total_amount":  enrollment.TotalAmount,
		})
	s.logger.Info("enrollment line withdrawn", zap.String("enrollment_id", enrollment.ID), zap.String("line_id", line.ID))
	return &dto.EnrollmentLineResponse{Line: *line, Enrollment: *enrollment}, nil
}

// GetLine returns a line with its section and course.
func (s *EnrollmentService) GetLine(ctx context.Context, id string, actor *models.JWTClaims) (*models.EnrollmentLineDetail, error) {
	line, err := s.lines.FindDetailByID(ctx, nil, id)
	if err != nil {
		return nil, lookupError(err, "enrollment line not found", "failed to load enrollment line")
	}
	if actor.IsStudent() {
		enrollment, err := s.enrollments.FindByID(ctx, line.EnrollmentID)
		if err != nil {
			return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
		}
		if err := s.authorize(ctx, actor, enrollment.StudentID); err != nil {
			return nil, err
		}
	}
	return line, nil
}

// ListLines returns lines across enrollments with pagination metadata. Students only see their own.
func (s *EnrollmentService) ListLines(ctx context.Context, filter models.EnrollmentLineFilter, actor *models.JWTClaims) ([]models.EnrollmentLineDetail, *models.Pagination, error) {
	if actor.IsStudent() {
		student, err := s.callerStudent(ctx, actor)
		if err != nil {
			return nil, nil, err
		}
		filter.StudentID = student.ID
	}
	lines, total, err := s.lines.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list enrollment lines")
	}
	return lines, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// ListLinesByEnrollment returns every line of one enrollment, withdrawn ones included.
func (s *EnrollmentService) ListLinesByEnrollment(ctx context.Context, enrollmentID string, actor *models.JWTClaims) ([]models.EnrollmentLineDetail, error) {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	if err := s.authorize(ctx, actor, enrollment.StudentID); err != nil {
		return nil, err
	}
	lines, err := s.lines.ListByEnrollment(ctx, nil, enrollmentID, "")
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrollment lines")
	}
	if lines == nil {
		lines = []models.EnrollmentLineDetail{}
	}
	return lines, nil
}

// reprice recomputes totals after a seat is added.
func (s *EnrollmentService) reprice(ctx context.Context, tx *sqlx.Tx, enrollment *models.Enrollment, credits int) error {
	paid, err := s.payments.SumCompleted(ctx, tx, enrollment.ID)
	if err != nil {
		return appErrors.Internal(err, "failed to sum payments")
	}
	return s.applyTotals(ctx, tx, enrollment, credits, paid)
}

// applyTotals stores credits and amount and settles the status against what was
// paid. enrollment is updated in place.
func (s *EnrollmentService) applyTotals(ctx context.Context, tx *sqlx.Tx, enrollment *models.Enrollment, credits int, paid decimal.Decimal) error {
	amount := enrollment.AmountFor(credits)
	status := settledStatus(amount, paid)
	if err := s.enrollments.UpdateTotals(ctx, tx, enrollment.ID, credits, amount, status); err != nil {
		return lookupError(err, "enrollment not found", "failed to update enrollment totals")
	}
	enrollment.TotalCredits = credits
	enrollment.TotalAmount = amount
	enrollment.Status = status
	return nil
}
