package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

type paymentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Payment, error)
	SumCompleted(ctx context.Context, exec sqlx.ExtContext, enrollmentID string) (decimal.Decimal, error)
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Payment, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	Create(ctx context.Context, exec sqlx.ExtContext, payment *models.Payment) error
	Cancel(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type enrollmentLedger interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Enrollment, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.EnrollmentStatus) error
}

// PaymentService keeps completed payments of an enrollment within its total.
type PaymentService struct {
	payments    paymentRepository
	enrollments enrollmentLedger
	students    studentByUser
	tx          txProvider
	audit       auditTrail
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewPaymentService builds the payment ledger.
func NewPaymentService(
	payments paymentRepository,
	enrollments enrollmentLedger,
	students studentByUser,
	tx txProvider,
	audit auditLogger,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		payments:    payments,
		enrollments: enrollments,
		students:    students,
		tx:          tx,
		audit:       newAuditTrail(audit, logger, "payment-service"),
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Record stores a completed payment and flips the enrollment to paid once covered.
func (s *PaymentService) Record(ctx context.Context, req dto.RecordPaymentRequest, actor *models.JWTClaims) (*dto.PaymentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid payment payload")
	}
	if _, err := s.enrollments.FindByID(ctx, req.EnrollmentID); err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}

	payment := &models.Payment{
		EnrollmentID: req.EnrollmentID,
		Amount:       req.Amount.Round(2),
		Method:       req.Method,
		Reference:    req.Reference,
		Status:       models.PaymentStatusCompleted,
	}
	var balance models.Balance
	err := withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		enrollment, err := s.enrollments.LockByID(ctx, tx, req.EnrollmentID)
		if err != nil {
			return lookupError(err, "enrollment not found", "failed to lock enrollment")
		}
		if enrollment.Status == models.EnrollmentStatusCancelled {
			return invalidState("cannot record a payment for a cancelled enrollment")
		}
		if !payment.Amount.IsPositive() {
			return invalidInput("payment amount must be greater than zero")
		}
		paid, err := s.payments.SumCompleted(ctx, tx, enrollment.ID)
		if err != nil {
			return appErrors.Internal(err, "failed to sum payments")
		}
		remaining := enrollment.TotalAmount.Sub(paid)
		if paid.Add(payment.Amount).GreaterThan(enrollment.TotalAmount) {
			return conflict(fmt.Sprintf("payment of %s exceeds the remaining balance of %s",
				payment.Amount.StringFixed(2), remaining.StringFixed(2))).
				WithDetails(map[string]string{
					"total_due":  enrollment.TotalAmount.StringFixed(2),
					"total_paid": paid.StringFixed(2),
					"remaining":  remaining.StringFixed(2),
					"attempted":  payment.Amount.StringFixed(2),
				})
		}
		if err := s.payments.Create(ctx, tx, payment); err != nil {
			return translateStoreError(err, "failed to record payment")
		}

		paid = paid.Add(payment.Amount)
		if paid.GreaterThanOrEqual(enrollment.TotalAmount) && enrollment.Status != models.EnrollmentStatusPaid {
			if err := s.enrollments.UpdateStatus(ctx, tx, enrollment.ID, models.EnrollmentStatusPaid); err != nil {
				return lookupError(err, "enrollment not found", "failed to mark enrollment paid")
			}
			enrollment.Status = models.EnrollmentStatusPaid
		}
		balance = models.NewBalance(enrollment, paid)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentRecorded(payment.Method)
	s.invalidate(ctx, payment.EnrollmentID)
	s.audit.record(ctx, actor, models.AuditActionPaymentRecord, "payment", payment.ID, nil, map[string]interface{}{
		"enrollment_id": payment.EnrollmentID,
		"amount":        payment.Amount,
		"method":        payment.Method,
		"reference":     payment.Reference,
	})
	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("enrollment_id", payment.EnrollmentID),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("remaining", balance.Remaining.StringFixed(2)),
	)
	return &dto.PaymentResponse{Payment: *payment, Balance: balance}, nil
}

// Cancel voids a completed payment. A paid enrollment goes back to pending.
func (s *PaymentService) Cancel(ctx context.Context, id string, actor *models.JWTClaims) (*dto.PaymentResponse, error) {
	current, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "payment not found", "failed to load payment")
	}

	var (
		payment *models.Payment
		balance models.Balance
	)
	err = withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		enrollment, err := s.enrollments.LockByID(ctx, tx, current.EnrollmentID)
		if err != nil {
			return lookupError(err, "enrollment not found", "failed to lock enrollment")
		}
		locked, err := s.payments.LockByID(ctx, tx, id)
		if err != nil {
			return lookupError(err, "payment not found", "failed to lock payment")
		}
		if locked.Status == models.PaymentStatusCancelled {
			return invalidState("payment is already cancelled")
		}
		if err := s.payments.Cancel(ctx, tx, id); err != nil {
			return lookupError(err, "payment not found", "failed to cancel payment")
		}
		if enrollment.Status == models.EnrollmentStatusPaid {
			if err := s.enrollments.UpdateStatus(ctx, tx, enrollment.ID, models.EnrollmentStatusPending); err != nil {
				return lookupError(err, "enrollment not found", "failed to reopen enrollment")
			}
			enrollment.Status = models.EnrollmentStatusPending
		}
		paid, err := s.payments.SumCompleted(ctx, tx, enrollment.ID)
		if err != nil {
			return appErrors.Internal(err, "failed to sum payments")
		}
		locked.Status = models.PaymentStatusCancelled
		payment, balance = locked, models.NewBalance(enrollment, paid)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentCancelled()
	s.invalidate(ctx, payment.EnrollmentID)
	s.audit.record(ctx, actor, models.AuditActionPaymentCancel, "payment", payment.ID,
		map[string]string{"status": string(models.PaymentStatusCompleted)},
		map[string]string{"status": string(models.PaymentStatusCancelled)})
	s.logger.Info("payment cancelled", zap.String("payment_id", payment.ID), zap.String("enrollment_id", payment.EnrollmentID))
	return &dto.PaymentResponse{Payment: *payment, Balance: balance}, nil
}

// Get returns one payment.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "payment not found", "failed to load payment")
	}
	return payment, nil
}

// List returns payments with pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list payments")
	}
	return payments, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Balance derives what an enrollment still owes. Students only reach their own.
func (s *PaymentService) Balance(ctx context.Context, enrollmentID string, actor *models.JWTClaims) (*models.Balance, error) {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	if err := authorizeStudent(ctx, s.students, actor, enrollment.StudentID); err != nil {
		return nil, err
	}
	paid, err := s.payments.SumCompleted(ctx, nil, enrollmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sum payments")
	}
	balance := models.NewBalance(enrollment, paid)
	return &balance, nil
}

// ListByEnrollment returns the ledger of one enrollment with its balance.
func (s *PaymentService) ListByEnrollment(ctx context.Context, enrollmentID string, actor *models.JWTClaims) (*dto.EnrollmentPaymentsResponse, error) {
	balance, err := s.Balance(ctx, enrollmentID, actor)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list payments")
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return &dto.EnrollmentPaymentsResponse{Payments: payments, Balance: *balance}, nil
}

func (s *PaymentService) invalidate(ctx context.Context, enrollmentID string) {
	if !s.cache.Enabled() {
		return
	}
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		s.logger.Warn("skip report cache invalidation", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return
	}
	s.cache.InvalidatePeriod(ctx, enrollment.PeriodID)
}
