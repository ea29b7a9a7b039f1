package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/matricula-api/internal/models"
)

const scheduleColumns = `sc.id, sc.section_id, sc.day_of_week,
       to_char(sc.start_time, 'HH24:MI') AS start_time, to_char(sc.end_time, 'HH24:MI') AS end_time,
       sc.room, sc.type, sc.created_at, sc.updated_at`

const scheduleDetailColumns = scheduleColumns + `,
       s.period_id, s.teacher_id, s.label AS section_label, c.code AS course_code, c.name AS course_name`

const scheduleDetailFrom = `schedules sc
JOIN sections s ON s.id = sc.section_id
JOIN courses c ON c.id = s.course_id`

const scheduleDetailSelect = `SELECT ` + scheduleDetailColumns + `
FROM ` + scheduleDetailFrom

const conflictColumns = `sc.id AS schedule_id, sc.section_id, s.teacher_id, sc.day_of_week,
       to_char(sc.start_time, 'HH24:MI') AS start_time, to_char(sc.end_time, 'HH24:MI') AS end_time, sc.room`

// ScheduleRepository persists weekly schedule blocks.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// FindByID fetches a schedule with its section context.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	var detail models.ScheduleDetail
	if err := r.db.GetContext(ctx, &detail, scheduleDetailSelect+` WHERE sc.id = $1`, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns schedules matching the filter ordered by weekday and start time.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, int, error) {
	where := squirrel.And{}
	if filter.SectionID != "" {
		where = append(where, squirrel.Eq{"sc.section_id": filter.SectionID})
	}
	if filter.TeacherID != "" {
		where = append(where, squirrel.Eq{"s.teacher_id": filter.TeacherID})
	}
	if filter.PeriodID != "" {
		where = append(where, squirrel.Eq{"s.period_id": filter.PeriodID})
	}
	if filter.DayOfWeek != "" {
		where = append(where, squirrel.Eq{"sc.day_of_week": filter.DayOfWeek})
	}
	if filter.Room != "" {
		where = append(where, squirrel.Eq{"sc.room": filter.Room})
	}

	query, args, err := paginate(psql.Select(scheduleDetailColumns).From(scheduleDetailFrom).Where(where).
		OrderBy(weekdayOrder, "sc.start_time ASC"), filter.Page, filter.PageSize).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list schedules: %w", err)
	}
	var schedules []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("schedules sc").
		Join("sections s ON s.id = sc.section_id").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count schedules: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}
	return schedules, total, nil
}

// ListBySections returns all blocks of the given sections.
func (r *ScheduleRepository) ListBySections(ctx context.Context, sectionIDs []string) ([]models.Schedule, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + scheduleColumns + ` FROM schedules sc WHERE sc.section_id = ANY($1::uuid[]) ORDER BY ` + weekdayOrder + `, sc.start_time ASC`
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, pq.Array(sectionIDs)); err != nil {
		return nil, fmt.Errorf("list schedules by sections: %w", err)
	}
	return schedules, nil
}

// ListByTeacher returns the active teaching blocks of a teacher, optionally within one period.
func (r *ScheduleRepository) ListByTeacher(ctx context.Context, teacherID, periodID string) ([]models.ScheduleDetail, error) {
	query := scheduleDetailSelect + ` WHERE s.teacher_id = $1 AND s.active = TRUE AND ($2::uuid IS NULL OR s.period_id = $2::uuid)
ORDER BY ` + weekdayOrder + `, sc.start_time ASC`
	var schedules []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, teacherID, nullableID(periodID)); err != nil {
		return nil, fmt.Errorf("list schedules by teacher: %w", err)
	}
	return schedules, nil
}

// FindTeacherConflicts returns blocks of the teacher's active sections in the
// candidate's period that overlap the candidate on the same day.
func (r *ScheduleRepository) FindTeacherConflicts(ctx context.Context, exec sqlx.ExtContext, candidate models.ScheduleCandidate) ([]models.ScheduleConflict, error) {
	query := `SELECT ` + conflictColumns + `, 'teacher' AS dimension
FROM schedules sc
JOIN sections s ON s.id = sc.section_id
WHERE s.period_id = $1 AND s.teacher_id = $2 AND s.active = TRUE AND sc.day_of_week = $3
  AND sc.start_time < $5::time AND $4::time < sc.end_time
  AND ($6::uuid IS NULL OR sc.id <> $6::uuid)
ORDER BY sc.start_time ASC`
	var conflicts []models.ScheduleConflict
	if err := sqlx.SelectContext(ctx, orDB(exec, r.db), &conflicts, query,
		candidate.PeriodID, candidate.TeacherID, candidate.DayOfWeek, candidate.StartTime, candidate.EndTime, nullableID(candidate.ExcludeID)); err != nil {
		return nil, fmt.Errorf("find teacher conflicts: %w", err)
	}
	return conflicts, nil
}

// FindRoomConflicts returns blocks in the same room, period and day that overlap the candidate.
func (r *ScheduleRepository) FindRoomConflicts(ctx context.Context, exec sqlx.ExtContext, candidate models.ScheduleCandidate) ([]models.ScheduleConflict, error) {
	query := `SELECT ` + conflictColumns + `, 'room' AS dimension
FROM schedules sc
JOIN sections s ON s.id = sc.section_id
WHERE s.period_id = $1 AND sc.room = $2 AND s.active = TRUE AND sc.day_of_week = $3
  AND sc.start_time < $5::time AND $4::time < sc.end_time
  AND ($6::uuid IS NULL OR sc.id <> $6::uuid)
ORDER BY sc.start_time ASC`
	var conflicts []models.ScheduleConflict
	if err := sqlx.SelectContext(ctx, orDB(exec, r.db), &conflicts, query,
		candidate.PeriodID, candidate.Room, candidate.DayOfWeek, candidate.StartTime, candidate.EndTime, nullableID(candidate.ExcludeID)); err != nil {
		return nil, fmt.Errorf("find room conflicts: %w", err)
	}
	return conflicts, nil
}

// LockKeys takes transaction scoped advisory locks so two writers cannot both
// pass the conflict check for the same teacher or room. Keys are locked in sorted order.
func (r *ScheduleRepository) LockKeys(ctx context.Context, exec sqlx.ExtContext, keys ...string) error {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	target := orDB(exec, r.db)
	for _, key := range sorted {
		if _, err := target.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("lock schedule key %s: %w", key, err)
		}
	}
	return nil
}

// Create inserts a schedule block.
func (r *ScheduleRepository) Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	const query = `INSERT INTO schedules (id, section_id, day_of_week, start_time, end_time, room, type, created_at, updated_at)
VALUES (:id, :section_id, :day_of_week, :start_time, :end_time, :room, :type, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, orDB(exec, r.db), query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update rewrites a schedule block in place.
func (r *ScheduleRepository) Update(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET day_of_week = $1, start_time = $2, end_time = $3, room = $4, type = $5, updated_at = $6 WHERE id = $7`
	result, err := orDB(exec, r.db).ExecContext(ctx, query, schedule.DayOfWeek, schedule.StartTime, schedule.EndTime,
		schedule.Room, schedule.Type, schedule.UpdatedAt, schedule.ID)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return expectAffected(result, "update schedule")
}

// Delete removes one schedule block.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return expectAffected(result, "delete schedule")
}

// DeleteBySection removes every block of a section.
func (r *ScheduleRepository) DeleteBySection(ctx context.Context, exec sqlx.ExtContext, sectionID string) error {
	if _, err := orDB(exec, r.db).ExecContext(ctx, `DELETE FROM schedules WHERE section_id = $1`, sectionID); err != nil {
		return fmt.Errorf("delete section schedules: %w", err)
	}
	return nil
}

const weekdayOrder = `array_position(ARRAY['monday','tuesday','wednesday','thursday','friday','saturday','sunday']::varchar[], sc.day_of_week)`

func nullableID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}
