package dto

// CreatePrerequisiteRequest links a course to a course it requires.
type CreatePrerequisiteRequest struct {
	CourseID         string `json:"course_id" validate:"required,uuid"`
	RequiredCourseID string `json:"required_course_id" validate:"required,uuid"`
	Type             string `json:"type" validate:"omitempty,oneof=mandatory optional"`
}
