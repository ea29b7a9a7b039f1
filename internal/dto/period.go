package dto

// CreatePeriodRequest defines an academic period and its enrollment windows. Dates are YYYY-MM-DD.
type CreatePeriodRequest struct {
	Code                string  `json:"code" validate:"required,max=20"`
	Name                string  `json:"name" validate:"required,max=100"`
	StartDate           string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate             string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	EnrollmentStart     string  `json:"enrollment_start" validate:"required,datetime=2006-01-02"`
	EnrollmentEnd       string  `json:"enrollment_end" validate:"required,datetime=2006-01-02"`
	LateEnrollmentStart *string `json:"late_enrollment_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	LateEnrollmentEnd   *string `json:"late_enrollment_end,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdatePeriodStatusRequest advances the period lifecycle.
type UpdatePeriodStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled in_progress finished"`
}
