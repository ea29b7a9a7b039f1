package models

import "time"

// Section is one offering of a course in a period, taught by one teacher.
type Section struct {
	ID               string    `db:"id" json:"id"`
	CourseID         string    `db:"course_id" json:"course_id"`
	PeriodID         string    `db:"period_id" json:"period_id"`
	TeacherID        string    `db:"teacher_id" json:"teacher_id"`
	Label            string    `db:"label" json:"label"`
	MaxCapacity      int       `db:"max_capacity" json:"max_capacity"`
	CurrentOccupancy int       `db:"current_occupancy" json:"current_occupancy"`
	Active           bool      `db:"active" json:"active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// HasSeat reports whether another student fits.
func (s *Section) HasSeat() bool {
	return s.CurrentOccupancy < s.MaxCapacity
}

// SectionDetail enriches a section with its course and teacher.
type SectionDetail struct {
	Section
	CourseCode    string     `db:"course_code" json:"course_code"`
	CourseName    string     `db:"course_name" json:"course_name"`
	CourseCycle   int        `db:"course_cycle" json:"course_cycle"`
	CourseCredits int        `db:"course_credits" json:"course_credits"`
	StudyPlanID   string     `db:"study_plan_id" json:"study_plan_id"`
	TeacherName   string     `db:"teacher_name" json:"teacher_name"`
	Schedules     []Schedule `db:"-" json:"schedules,omitempty"`
}

// SectionFilter describes query params for listing sections.
type SectionFilter struct {
	CourseID  string
	PeriodID  string
	TeacherID string
	Active    *bool
	Page      int
	PageSize  int
}
