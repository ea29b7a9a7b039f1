package models

import "time"

// Weekday names accepted for schedule blocks.
const (
	DayMonday    = "monday"
	DayTuesday   = "tuesday"
	DayWednesday = "wednesday"
	DayThursday  = "thursday"
	DayFriday    = "friday"
	DaySaturday  = "saturday"
	DaySunday    = "sunday"
)

// ScheduleType classifies a block.
type ScheduleType string

const (
	ScheduleTypeTheory   ScheduleType = "theory"
	ScheduleTypePractice ScheduleType = "practice"
	ScheduleTypeLab      ScheduleType = "lab"
)

// Schedule is a weekly block owned by exactly one section. Times are HH:MM.
type Schedule struct {
	ID        string       `db:"id" json:"id"`
	SectionID string       `db:"section_id" json:"section_id"`
	DayOfWeek string       `db:"day_of_week" json:"day_of_week"`
	StartTime string       `db:"start_time" json:"start_time"`
	EndTime   string       `db:"end_time" json:"end_time"`
	Room      string       `db:"room" json:"room"`
	Type      ScheduleType `db:"type" json:"type"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// ScheduleDetail adds the owning section context.
type ScheduleDetail struct {
	Schedule
	PeriodID     string `db:"period_id" json:"period_id"`
	TeacherID    string `db:"teacher_id" json:"teacher_id"`
	SectionLabel string `db:"section_label" json:"section_label"`
	CourseCode   string `db:"course_code" json:"course_code"`
	CourseName   string `db:"course_name" json:"course_name"`
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	SectionID string
	TeacherID string
	PeriodID  string
	DayOfWeek string
	Room      string
	Page      int
	PageSize  int
}

// Conflict dimensions.
const (
	ConflictDimensionTeacher = "teacher"
	ConflictDimensionRoom    = "room"
)

// ScheduleConflict describes an existing block that collides with a proposal.
type ScheduleConflict struct {
	ScheduleID string `db:"schedule_id" json:"schedule_id"`
	SectionID  string `db:"section_id" json:"section_id"`
	TeacherID  string `db:"teacher_id" json:"teacher_id"`
	DayOfWeek  string `db:"day_of_week" json:"day_of_week"`
	StartTime  string `db:"start_time" json:"start_time"`
	EndTime    string `db:"end_time" json:"end_time"`
	Room       string `db:"room" json:"room"`
	Dimension  string `db:"dimension" json:"dimension"`
}

// Overlaps applies the half-open interval rule: [a,b) and [c,d) collide iff a < d and c < b.
// Touching blocks (one ends when the other starts) do not collide. Inputs are zero
// padded HH:MM so lexical order matches clock order.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

// ScheduleCandidate is a proposed block checked against existing schedules of a period.
type ScheduleCandidate struct {
	PeriodID  string
	TeacherID string
	Room      string
	DayOfWeek string
	StartTime string
	EndTime   string
	ExcludeID string
}
