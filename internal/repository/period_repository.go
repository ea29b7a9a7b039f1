package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/matricula-api/internal/models"
)

const periodColumns = `id, code, name, start_date, end_date, enrollment_start, enrollment_end,
late_enrollment_start, late_enrollment_end, status, active, created_at, updated_at`

// PeriodRepository persists academic periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository constructs a PeriodRepository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// FindByID fetches a period by ID.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.AcademicPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM academic_periods WHERE id = $1`
	var period models.AcademicPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// FindCurrent returns the active period containing day, or else the next one to start.
func (r *PeriodRepository) FindCurrent(ctx context.Context, day time.Time) (*models.AcademicPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM academic_periods
WHERE active = TRUE AND end_date >= $1::date
ORDER BY (start_date <= $1::date) DESC, start_date ASC
LIMIT 1`
	var period models.AcademicPeriod
	if err := r.db.GetContext(ctx, &period, query, day.Format("2006-01-02")); err != nil {
		return nil, err
	}
	return &period, nil
}

// ExistsByCode reports whether a period code is taken.
func (r *PeriodRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM academic_periods WHERE code = $1 LIMIT 1`, code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check period code: %w", err)
	}
	return true, nil
}

// Create inserts a new period.
func (r *PeriodRepository) Create(ctx context.Context, period *models.AcademicPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	if period.Status == "" {
		period.Status = models.PeriodStatusScheduled
	}
	now := time.Now().UTC()
	period.CreatedAt = now
	period.UpdatedAt = now
	const query = `INSERT INTO academic_periods (id, code, name, start_date, end_date, enrollment_start, enrollment_end,
late_enrollment_start, late_enrollment_end, status, active, created_at, updated_at)
VALUES (:id, :code, :name, :start_date, :end_date, :enrollment_start, :enrollment_end,
:late_enrollment_start, :late_enrollment_end, :status, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	return nil
}

// List returns periods ordered by start date, newest first.
func (r *PeriodRepository) List(ctx context.Context, filter models.PeriodFilter) ([]models.AcademicPeriod, int, error) {
	where := squirrel.And{}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.Active != nil {
		where = append(where, squirrel.Eq{"active": *filter.Active})
	}

	query, args, err := paginate(psql.Select(periodColumns).From("academic_periods").Where(where).
		OrderBy("start_date DESC"), filter.Page, filter.PageSize).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list periods: %w", err)
	}
	var periods []models.AcademicPeriod
	if err := r.db.SelectContext(ctx, &periods, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list periods: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("academic_periods").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count periods: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count periods: %w", err)
	}
	return periods, total, nil
}

// UpdateStatus moves a period to a new lifecycle status.
func (r *PeriodRepository) UpdateStatus(ctx context.Context, id string, status models.PeriodStatus) error {
	const query = `UPDATE academic_periods SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update period status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("period status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
