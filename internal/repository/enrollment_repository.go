package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/matricula-api/internal/models"
)

const enrollmentColumns = `e.id, e.student_id, e.period_id, e.type, e.total_credits, e.total_amount, e.credit_cost,
       e.price_multiplier, e.status, e.enrolled_at, e.created_at, e.updated_at`

const enrollmentDetailColumns = enrollmentColumns + `,
       st.code AS student_code, st.full_name AS student_name, p.code AS period_code, p.name AS period_name`

const enrollmentDetailFrom = `enrollments e
JOIN students st ON st.id = e.student_id
JOIN academic_periods p ON p.id = e.period_id`

const enrollmentDetailSelect = `SELECT ` + enrollmentDetailColumns + `
FROM ` + enrollmentDetailFrom

// EnrollmentRepository persists enrollment headers.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID fetches an enrollment without locking it.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, `SELECT `+enrollmentColumns+` FROM enrollments e WHERE e.id = $1`, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// LockByID fetches an enrollment holding its row lock until the tx ends.
func (r *EnrollmentRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments e WHERE e.id = $1 FOR UPDATE`
	if err := sqlx.GetContext(ctx, orDB(exec, r.db), &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID fetches an enrollment with student and period identity.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, enrollmentDetailSelect+` WHERE e.id = $1`, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsForStudentPeriod reports whether the student already has an enrollment in the period.
func (r *EnrollmentRepository) ExistsForStudentPeriod(ctx context.Context, exec sqlx.ExtContext, studentID, periodID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND period_id = $2 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, orDB(exec, r.db), &exists, query, studentID, periodID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// List returns enrollments matching the filter, newest first.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	where := squirrel.And{}
	if filter.StudentID != "" {
		where = append(where, squirrel.Eq{"e.student_id": filter.StudentID})
	}
	if filter.PeriodID != "" {
		where = append(where, squirrel.Eq{"e.period_id": filter.PeriodID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"e.status": filter.Status})
	}
	if filter.Type != "" {
		where = append(where, squirrel.Eq{"e.type": filter.Type})
	}

	query, args, err := paginate(psql.Select(enrollmentDetailColumns).From(enrollmentDetailFrom).Where(where).
		OrderBy("e.enrolled_at DESC"), filter.Page, filter.PageSize).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list enrollments: %w", err)
	}
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("enrollments e").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count enrollments: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// Create inserts an enrollment header.
func (r *EnrollmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}
	now := time.Now().UTC()
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, student_id, period_id, type, total_credits, total_amount, credit_cost,
price_multiplier, status, enrolled_at, created_at, updated_at)
VALUES (:id, :student_id, :period_id, :type, :total_credits, :total_amount, :credit_cost,
:price_multiplier, :status, :enrolled_at, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, orDB(exec, r.db), query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateTotals writes recomputed credit and amount totals together with the settled status.
func (r *EnrollmentRepository) UpdateTotals(ctx context.Context, exec sqlx.ExtContext, id string, credits int, amount decimal.Decimal, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET total_credits = $1, total_amount = $2, status = $3, updated_at = $4 WHERE id = $5`
	result, err := orDB(exec, r.db).ExecContext(ctx, query, credits, amount, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update enrollment totals: %w", err)
	}
	return expectAffected(result, "update enrollment totals")
}

// UpdateStatus moves an enrollment to a new status.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := orDB(exec, r.db).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return expectAffected(result, "update enrollment status")
}
