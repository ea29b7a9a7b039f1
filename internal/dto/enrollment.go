package dto

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/matricula-api/internal/models"
)

// CreateEnrollmentRequest opens an enrollment with its initial sections.
type CreateEnrollmentRequest struct {
	StudentID  string                `json:"student_id" validate:"required,uuid"`
	PeriodID   string                `json:"period_id" validate:"required,uuid"`
	Type       models.EnrollmentType `json:"type" validate:"required,oneof=regular late"`
	SectionIDs []string              `json:"section_ids" validate:"omitempty,dive,required,uuid"`
}

// UpdateEnrollmentStatusRequest sets a status directly.
type UpdateEnrollmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AddEnrollmentLineRequest adds one section to an existing enrollment.
type AddEnrollmentLineRequest struct {
	EnrollmentID string `json:"enrollment_id" validate:"required,uuid"`
	SectionID    string `json:"section_id" validate:"required,uuid"`
}

// EnrollmentSummary restates the derived totals of an enrollment.
type EnrollmentSummary struct {
	Courses         int             `json:"courses"`
	TotalCredits    int             `json:"total_credits"`
	CreditCost      decimal.Decimal `json:"credit_cost"`
	PriceMultiplier decimal.Decimal `json:"price_multiplier"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// EnrollmentResponse is an enrollment with its lines.
type EnrollmentResponse struct {
	Enrollment models.EnrollmentDetail       `json:"enrollment"`
	Lines      []models.EnrollmentLineDetail `json:"lines"`
	Summary    EnrollmentSummary             `json:"summary"`
}

// EnrollmentLineResponse is a line together with the recomputed enrollment.
type EnrollmentLineResponse struct {
	Line       models.EnrollmentLineDetail `json:"line"`
	Enrollment models.Enrollment           `json:"enrollment"`
}
