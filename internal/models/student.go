package models

import "time"

// StudentStatus is the lifecycle state of a student record.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusGraduated StudentStatus = "graduated"
	StudentStatusWithdrawn StudentStatus = "withdrawn"
	StudentStatusSuspended StudentStatus = "suspended"
)

// Student is linked 1:1 to a user account and never physically deleted.
type Student struct {
	ID           string        `db:"id" json:"id"`
	UserID       string        `db:"user_id" json:"user_id"`
	SchoolID     string        `db:"school_id" json:"school_id"`
	StudyPlanID  string        `db:"study_plan_id" json:"study_plan_id"`
	Code         string        `db:"code" json:"code"`
	NationalID   string        `db:"national_id" json:"national_id"`
	FullName     string        `db:"full_name" json:"full_name"`
	CurrentCycle int           `db:"current_cycle" json:"current_cycle"`
	Status       StudentStatus `db:"status" json:"status"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}
