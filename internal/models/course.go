package models

import "time"

// CourseType distinguishes mandatory from elective courses.
type CourseType string

const (
	CourseTypeMandatory CourseType = "mandatory"
	CourseTypeElective  CourseType = "elective"
)

// Course belongs to exactly one study plan.
type Course struct {
	ID            string     `db:"id" json:"id"`
	StudyPlanID   string     `db:"study_plan_id" json:"study_plan_id"`
	Code          string     `db:"code" json:"code"`
	Name          string     `db:"name" json:"name"`
	Cycle         int        `db:"cycle" json:"cycle"`
	Credits       int        `db:"credits" json:"credits"`
	TheoryHours   int        `db:"theory_hours" json:"theory_hours"`
	PracticeHours int        `db:"practice_hours" json:"practice_hours"`
	Type          CourseType `db:"type" json:"type"`
	Active        bool       `db:"active" json:"active"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// PrerequisiteType tells whether a prerequisite is binding.
type PrerequisiteType string

const (
	PrerequisiteMandatory PrerequisiteType = "mandatory"
	PrerequisiteOptional  PrerequisiteType = "optional"
)

// Prerequisite is a directed edge from a course to the course it requires.
type Prerequisite struct {
	ID               string           `db:"id" json:"id"`
	CourseID         string           `db:"course_id" json:"course_id"`
	RequiredCourseID string           `db:"required_course_id" json:"required_course_id"`
	Type             PrerequisiteType `db:"type" json:"type"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}

// PrerequisiteDetail adds the required course identity.
type PrerequisiteDetail struct {
	Prerequisite
	RequiredCourseCode  string `db:"required_course_code" json:"required_course_code"`
	RequiredCourseName  string `db:"required_course_name" json:"required_course_name"`
	RequiredCourseCycle int    `db:"required_course_cycle" json:"required_course_cycle"`
}
