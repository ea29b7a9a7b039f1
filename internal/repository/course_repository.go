package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/matricula-api/internal/models"
)

// CourseRepository reads courses and manages their prerequisite edges.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, study_plan_id, code, name, cycle, credits, theory_hours, practice_hours, type, active, created_at, updated_at
FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// PrerequisiteExists reports whether the edge course -> required is stored.
func (r *CourseRepository) PrerequisiteExists(ctx context.Context, courseID, requiredCourseID string) (bool, error) {
	const query = `SELECT 1 FROM prerequisites WHERE course_id = $1 AND required_course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, courseID, requiredCourseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check prerequisite: %w", err)
	}
	return true, nil
}

// CreatePrerequisite inserts a prerequisite edge.
func (r *CourseRepository) CreatePrerequisite(ctx context.Context, prereq *models.Prerequisite) error {
	if prereq.ID == "" {
		prereq.ID = uuid.NewString()
	}
	if prereq.CreatedAt.IsZero() {
		prereq.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO prerequisites (id, course_id, required_course_id, type, created_at)
VALUES (:id, :course_id, :required_course_id, :type, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, prereq); err != nil {
		return fmt.Errorf("create prerequisite: %w", err)
	}
	return nil
}

// ListPrerequisites returns the courses required by courseID.
func (r *CourseRepository) ListPrerequisites(ctx context.Context, courseID string) ([]models.PrerequisiteDetail, error) {
	const query = `SELECT p.id, p.course_id, p.required_course_id, p.type, p.created_at,
       c.code AS required_course_code, c.name AS required_course_name, c.cycle AS required_course_cycle
FROM prerequisites p
JOIN courses c ON c.id = p.required_course_id
WHERE p.course_id = $1
ORDER BY c.cycle ASC, c.code ASC`
	var prereqs []models.PrerequisiteDetail
	if err := r.db.SelectContext(ctx, &prereqs, query, courseID); err != nil {
		return nil, fmt.Errorf("list prerequisites: %w", err)
	}
	return prereqs, nil
}
