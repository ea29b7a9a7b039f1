package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/matricula-api/internal/models"
)

const paymentColumns = `id, enrollment_id, amount, method, reference, status, paid_at, cancelled_at, created_at, updated_at`

// PaymentRepository persists the payment ledger. Rows are never deleted.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// FindByID fetches a payment.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// LockByID fetches a payment holding its row lock until the tx ends.
func (r *PaymentRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := sqlx.GetContext(ctx, orDB(exec, r.db), &payment, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// SumCompleted totals the completed payments of an enrollment.
func (r *PaymentRepository) SumCompleted(ctx context.Context, exec sqlx.ExtContext, enrollmentID string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE enrollment_id = $1 AND status = $2`
	var total decimal.Decimal
	if err := sqlx.GetContext(ctx, orDB(exec, r.db), &total, query, enrollmentID, models.PaymentStatusCompleted); err != nil {
		return decimal.Zero, fmt.Errorf("sum completed payments: %w", err)
	}
	return total, nil
}

// ListByEnrollment returns every payment of an enrollment, newest first.
func (r *PaymentRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE enrollment_id = $1 ORDER BY paid_at DESC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list enrollment payments: %w", err)
	}
	return payments, nil
}

// List returns payments matching the filter.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	where := squirrel.And{}
	if filter.EnrollmentID != "" {
		where = append(where, squirrel.Eq{"enrollment_id": filter.EnrollmentID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.Method != "" {
		where = append(where, squirrel.Eq{"method": filter.Method})
	}

	query, args, err := paginate(psql.Select(paymentColumns).From("payments").Where(where).
		OrderBy("paid_at DESC"), filter.Page, filter.PageSize).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list payments: %w", err)
	}
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("payments").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count payments: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, exec sqlx.ExtContext, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusCompleted
	}
	now := time.Now().UTC()
	if payment.PaidAt.IsZero() {
		payment.PaidAt = now
	}
	payment.CreatedAt = now
	payment.UpdatedAt = now
	const query = `INSERT INTO payments (id, enrollment_id, amount, method, reference, status, paid_at, created_at, updated_at)
VALUES (:id, :enrollment_id, :amount, :method, :reference, :status, :paid_at, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, orDB(exec, r.db), query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Cancel marks a payment cancelled.
func (r *PaymentRepository) Cancel(ctx context.Context, exec sqlx.ExtContext, id string) error {
	now := time.Now().UTC()
	const query = `UPDATE payments SET status = $1, cancelled_at = $2, updated_at = $2 WHERE id = $3`
	result, err := orDB(exec, r.db).ExecContext(ctx, query, models.PaymentStatusCancelled, now, id)
	if err != nil {
		return fmt.Errorf("cancel payment: %w", err)
	}
	return expectAffected(result, "cancel payment")
}
