package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/matricula-api/internal/models"
)

const sectionDetailColumns = `s.id, s.course_id, s.period_id, s.teacher_id, s.label, s.max_capacity, s.current_occupancy,
       s.active, s.created_at, s.updated_at,
       c.code AS course_code, c.name AS course_name, c.cycle AS course_cycle, c.credits AS course_credits,
       c.study_plan_id, t.full_name AS teacher_name`

const sectionDetailFrom = `sections s
JOIN courses c ON c.id = s.course_id
JOIN teachers t ON t.id = s.teacher_id`

const sectionDetailSelect = `SELECT ` + sectionDetailColumns + `
FROM ` + sectionDetailFrom

// SectionRepository persists sections and owns the seat counter.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// FindByID fetches a plain section.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, course_id, period_id, teacher_id, label, max_capacity, current_occupancy, active, created_at, updated_at
FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// FindDetailByID fetches a section with its course and teacher.
func (r *SectionRepository) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	var detail models.SectionDetail
	if err := r.db.GetContext(ctx, &detail, sectionDetailSelect+` WHERE s.id = $1`, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// LockByID fetches a section detail holding a row lock on the section until the tx ends.
func (r *SectionRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.SectionDetail, error) {
	var detail models.SectionDetail
	if err := sqlx.GetContext(ctx, orDB(exec, r.db), &detail, sectionDetailSelect+` WHERE s.id = $1 FOR UPDATE OF s`, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// LockByIDs locks the requested sections in id order so concurrent reservations
// always acquire row locks in the same sequence. Unknown ids are simply absent.
func (r *SectionRepository) LockByIDs(ctx context.Context, exec sqlx.ExtContext, ids []string) ([]models.SectionDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := sectionDetailSelect + ` WHERE s.id = ANY($1::uuid[]) ORDER BY s.id FOR UPDATE OF s`
	var details []models.SectionDetail
	if err := sqlx.SelectContext(ctx, orDB(exec, r.db), &details, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("lock sections: %w", err)
	}
	return details, nil
}

// List returns sections matching the filter.
func (r *SectionRepository) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, int, error) {
	where := squirrel.And{}
	if filter.CourseID != "" {
		where = append(where, squirrel.Eq{"s.course_id": filter.CourseID})
	}
	if filter.PeriodID != "" {
		where = append(where, squirrel.Eq{"s.period_id": filter.PeriodID})
	}
	if filter.TeacherID != "" {
		where = append(where, squirrel.Eq{"s.teacher_id": filter.TeacherID})
	}
	if filter.Active != nil {
		where = append(where, squirrel.Eq{"s.active": *filter.Active})
	}

	query, args, err := paginate(psql.Select(sectionDetailColumns).From(sectionDetailFrom).Where(where).
		OrderBy("c.code ASC", "s.label ASC"), filter.Page, filter.PageSize).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list sections: %w", err)
	}
	var sections []models.SectionDetail
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sections: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("sections s").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count sections: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count sections: %w", err)
	}
	return sections, total, nil
}

// ListOpenByCourseAndPeriod returns active sections of a course in a period.
func (r *SectionRepository) ListOpenByCourseAndPeriod(ctx context.Context, courseID, periodID string) ([]models.SectionDetail, error) {
	query := sectionDetailSelect + ` WHERE s.course_id = $1 AND s.period_id = $2 AND s.active = TRUE ORDER BY s.label ASC`
	var sections []models.SectionDetail
	if err := r.db.SelectContext(ctx, &sections, query, courseID, periodID); err != nil {
		return nil, fmt.Errorf("list sections by course and period: %w", err)
	}
	return sections, nil
}

// ExistsLabel reports whether (course, period, label) is taken, optionally ignoring one section.
func (r *SectionRepository) ExistsLabel(ctx context.Context, courseID, periodID, label, excludeID string) (bool, error) {
	builder := psql.Select("1").From("sections").
		Where(squirrel.Eq{"course_id": courseID, "period_id": periodID, "label": label}).
		Limit(1)
	if excludeID != "" {
		builder = builder.Where(squirrel.NotEq{"id": excludeID})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("build section label check: %w", err)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check section label: %w", err)
	}
	return true, nil
}

// Create inserts a section with zero occupancy.
func (r *SectionRepository) Create(ctx context.Context, exec sqlx.ExtContext, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now
	section.CurrentOccupancy = 0
	const query = `INSERT INTO sections (id, course_id, period_id, teacher_id, label, max_capacity, current_occupancy, active, created_at, updated_at)
VALUES (:id, :course_id, :period_id, :teacher_id, :label, :max_capacity, :current_occupancy, :active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, orDB(exec, r.db), query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// Update writes the administrative fields. Occupancy is never written here.
func (r *SectionRepository) Update(ctx context.Context, exec sqlx.ExtContext, section *models.Section) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sections SET teacher_id = $1, label = $2, max_capacity = $3, active = $4, updated_at = $5 WHERE id = $6`
	result, err := orDB(exec, r.db).ExecContext(ctx, query, section.TeacherID, section.Label, section.MaxCapacity, section.Active, section.UpdatedAt, section.ID)
	if err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return expectAffected(result, "update section")
}

// Deactivate soft-deletes a section.
func (r *SectionRepository) Deactivate(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `UPDATE sections SET active = FALSE, updated_at = $1 WHERE id = $2`
	result, err := orDB(exec, r.db).ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate section: %w", err)
	}
	return expectAffected(result, "deactivate section")
}

// Reserve takes one seat. It reports false when the section is already full.
func (r *SectionRepository) Reserve(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	const query = `UPDATE sections SET current_occupancy = current_occupancy + 1, updated_at = $1
WHERE id = $2 AND current_occupancy < max_capacity`
	result, err := orDB(exec, r.db).ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("reserve seat: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve seat rows affected: %w", err)
	}
	return affected == 1, nil
}

// Release gives one seat back.
func (r *SectionRepository) Release(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `UPDATE sections SET current_occupancy = current_occupancy - 1, updated_at = $1
WHERE id = $2 AND current_occupancy > 0`
	result, err := orDB(exec, r.db).ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	return expectAffected(result, "release seat")
}

func expectAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
