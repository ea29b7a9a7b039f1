package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/matricula-api/internal/models"
)

const lineColumns = `l.id, l.enrollment_id, l.section_id, l.status, l.created_at, l.withdrawn_at`

const lineDetailColumns = lineColumns + `,
       s.label AS section_label, c.id AS course_id, c.code AS course_code, c.name AS course_name,
       c.cycle AS course_cycle, c.credits, t.id AS teacher_id, t.full_name AS teacher_name`

const lineDetailFrom = `enrollment_lines l
JOIN sections s ON s.id = l.section_id
JOIN courses c ON c.id = s.course_id
JOIN teachers t ON t.id = s.teacher_id`

const lineDetailSelect = `SELECT ` + lineDetailColumns + `
FROM ` + lineDetailFrom

// EnrollmentLineRepository persists enrollment lines.
type EnrollmentLineRepository struct {
	db *sqlx.DB
}

// NewEnrollmentLineRepository constructs an EnrollmentLineRepository.
func NewEnrollmentLineRepository(db *sqlx.DB) *EnrollmentLineRepository {
	return &EnrollmentLineRepository{db: db}
}

// FindByID fetches a line without locking it.
func (r *EnrollmentLineRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentLine, error) {
	var line models.EnrollmentLine
	if err := r.db.GetContext(ctx, &line, `SELECT `+lineColumns+` FROM enrollment_lines l WHERE l.id = $1`, id); err != nil {
		return nil, err
	}
	return &line, nil
}

// LockByID fetches a line holding its row lock until the tx ends.
func (r *EnrollmentLineRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.EnrollmentLine, error) {
	var line models.EnrollmentLine
	query := `SELECT ` + lineColumns + ` FROM enrollment_lines l WHERE l.id = $1 FOR UPDATE`
	if err := sqlx.GetContext(ctx, orDB(exec, r.db), &line, query, id); err != nil {
		return nil, err
	}
	return &line, nil
}

// FindDetailByID fetches a line with its section, course and teacher.
func (r *EnrollmentLineRepository) FindDetailByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.EnrollmentLineDetail, error) {
	var detail models.EnrollmentLineDetail
	if err := sqlx.GetContext(ctx, orDB(exec, r.db), &detail, lineDetailSelect+` WHERE l.id = $1`, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByEnrollmentAndSection returns the line for a section whatever its status.
func (r *EnrollmentLineRepository) FindByEnrollmentAndSection(ctx context.Context, exec sqlx.ExtContext, enrollmentID, sectionID string) (*models.EnrollmentLine, error) {
	query := `SELECT ` + lineColumns + ` FROM enrollment_lines l WHERE l.enrollment_id = $1 AND l.section_id = $2`
	var line models.EnrollmentLine
	if err := sqlx.GetContext(ctx, orDB(exec, r.db), &line, query, enrollmentID, sectionID); err != nil {
		return nil, err
	}
	return &line, nil
}

// ListByEnrollment returns the lines of an enrollment. An empty status returns every line.
func (r *EnrollmentLineRepository) ListByEnrollment(ctx context.Context, exec sqlx.ExtContext, enrollmentID string, status models.LineStatus) ([]models.EnrollmentLineDetail, error) {
	query := lineDetailSelect + ` WHERE l.enrollment_id = $1 AND ($2 = '' OR l.status = $2) ORDER BY c.cycle ASC, c.code ASC`
	var lines []models.EnrollmentLineDetail
	if err := sqlx.SelectContext(ctx, orDB(exec, r.db), &lines, query, enrollmentID, string(status)); err != nil {
		return nil, fmt.Errorf("list enrollment lines: %w", err)
	}
	return lines, nil
}

// List returns lines matching the filter.
func (r *EnrollmentLineRepository) List(ctx context.Context, filter models.EnrollmentLineFilter) ([]models.EnrollmentLineDetail, int, error) {
	where := squirrel.And{}
	if filter.EnrollmentID != "" {
		where = append(where, squirrel.Eq{"l.enrollment_id": filter.EnrollmentID})
	}
	if filter.SectionID != "" {
		where = append(where, squirrel.Eq{"l.section_id": filter.SectionID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"l.status": filter.Status})
	}
	if filter.StudentID != "" {
		where = append(where, squirrel.Expr("l.enrollment_id IN (SELECT id FROM enrollments WHERE student_id = ?)", filter.StudentID))
	}

	query, args, err := paginate(psql.Select(lineDetailColumns).From(lineDetailFrom).Where(where).
		OrderBy("l.created_at DESC"), filter.Page, filter.PageSize).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list lines: %w", err)
	}
	var lines []models.EnrollmentLineDetail
	if err := r.db.SelectContext(ctx, &lines, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lines: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("enrollment_lines l").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count lines: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count lines: %w", err)
	}
	return lines, total, nil
}

// Create inserts an active line.
func (r *EnrollmentLineRepository) Create(ctx context.Context, exec sqlx.ExtContext, line *models.EnrollmentLine) error {
	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	if line.Status == "" {
		line.Status = models.LineStatusActive
	}
	line.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO enrollment_lines (id, enrollment_id, section_id, status, created_at)
VALUES (:id, :enrollment_id, :section_id, :status, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, orDB(exec, r.db), query, line); err != nil {
		return fmt.Errorf("create enrollment line: %w", err)
	}
	return nil
}

// MarkWithdrawn flags a line as withdrawn keeping the row for audit.
func (r *EnrollmentLineRepository) MarkWithdrawn(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `UPDATE enrollment_lines SET status = $1, withdrawn_at = $2 WHERE id = $3 AND status = $4`
	result, err := orDB(exec, r.db).ExecContext(ctx, query, models.LineStatusWithdrawn, time.Now().UTC(), id, models.LineStatusActive)
	if err != nil {
		return fmt.Errorf("withdraw enrollment line: %w", err)
	}
	return expectAffected(result, "withdraw enrollment line")
}

// Reactivate turns a withdrawn line back into an active seat.
func (r *EnrollmentLineRepository) Reactivate(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `UPDATE enrollment_lines SET status = $1, withdrawn_at = NULL WHERE id = $2 AND status = $3`
	result, err := orDB(exec, r.db).ExecContext(ctx, query, models.LineStatusActive, id, models.LineStatusWithdrawn)
	if err != nil {
		return fmt.Errorf("reactivate enrollment line: %w", err)
	}
	return expectAffected(result, "reactivate enrollment line")
}
