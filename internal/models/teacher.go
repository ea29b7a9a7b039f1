package models

import "time"

// Teacher is a faculty member who can be assigned to sections.
type Teacher struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	FacultyID      string    `db:"faculty_id" json:"faculty_id"`
	Code           string    `db:"code" json:"code"`
	FullName       string    `db:"full_name" json:"full_name"`
	Specialty      *string   `db:"specialty" json:"specialty,omitempty"`
	AcademicDegree *string   `db:"academic_degree" json:"academic_degree,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
