package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/matricula-api/internal/models"
)

// ReportRepository runs the aggregate queries behind period reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CountByStatus groups the period's enrollments by status.
func (r *ReportRepository) CountByStatus(ctx context.Context, periodID string) ([]models.LabelCount, error) {
	const query = `SELECT status AS label, COUNT(*) AS count FROM enrollments WHERE period_id = $1 GROUP BY status ORDER BY status`
	var counts []models.LabelCount
	if err := r.db.SelectContext(ctx, &counts, query, periodID); err != nil {
		return nil, fmt.Errorf("count enrollments by status: %w", err)
	}
	return counts, nil
}

// CountByType groups the period's enrollments by type.
func (r *ReportRepository) CountByType(ctx context.Context, periodID string) ([]models.LabelCount, error) {
	const query = `SELECT type AS label, COUNT(*) AS count FROM enrollments WHERE period_id = $1 GROUP BY type ORDER BY type`
	var counts []models.LabelCount
	if err := r.db.SelectContext(ctx, &counts, query, periodID); err != nil {
		return nil, fmt.Errorf("count enrollments by type: %w", err)
	}
	return counts, nil
}

// TopCourses ranks courses by active lines of non cancelled enrollments.
func (r *ReportRepository) TopCourses(ctx context.Context, periodID string, limit int) ([]models.CourseDemand, error) {
	const query = `SELECT c.id AS course_id, c.code AS course_code, c.name AS course_name, COUNT(l.id) AS count
FROM enrollment_lines l
JOIN enrollments e ON e.id = l.enrollment_id
JOIN sections s ON s.id = l.section_id
JOIN courses c ON c.id = s.course_id
WHERE e.period_id = $1 AND e.status <> $2 AND l.status = $3
GROUP BY c.id, c.code, c.name
ORDER BY count DESC, c.code ASC
LIMIT $4`
	var courses []models.CourseDemand
	if err := r.db.SelectContext(ctx, &courses, query, periodID, models.EnrollmentStatusCancelled, models.LineStatusActive, limit); err != nil {
		return nil, fmt.Errorf("top courses: %w", err)
	}
	return courses, nil
}
