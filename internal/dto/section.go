package dto

import "github.com/noah-isme/matricula-api/internal/models"

// CreateSectionRequest opens a section of a course in a period.
type CreateSectionRequest struct {
	CourseID    string `json:"course_id" validate:"required,uuid"`
	PeriodID    string `json:"period_id" validate:"required,uuid"`
	TeacherID   string `json:"teacher_id" validate:"required,uuid"`
	Label       string `json:"label" validate:"required,max=10"`
	MaxCapacity int    `json:"max_capacity" validate:"required,gt=0"`
}

// UpdateSectionRequest changes administrative fields. Nil fields are kept.
type UpdateSectionRequest struct {
	TeacherID   *string `json:"teacher_id,omitempty" validate:"omitempty,uuid"`
	Label       *string `json:"label,omitempty" validate:"omitempty,min=1,max=10"`
	MaxCapacity *int    `json:"max_capacity,omitempty" validate:"omitempty,gt=0"`
	Active      *bool   `json:"active,omitempty"`
}

// SectionResponse is a section with its weekly blocks.
type SectionResponse struct {
	models.SectionDetail
	Available int `json:"available"`
}
