package dto

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/matricula-api/internal/models"
)

// RecordPaymentRequest registers money received for an enrollment.
type RecordPaymentRequest struct {
	EnrollmentID string               `json:"enrollment_id" validate:"required,uuid"`
	Amount       decimal.Decimal      `json:"amount"`
	Method       models.PaymentMethod `json:"method" validate:"required,oneof=cash card transfer other"`
	Reference    *string              `json:"reference,omitempty" validate:"omitempty,max=50"`
}

// PaymentResponse is a payment with the enrollment balance after it.
type PaymentResponse struct {
	Payment models.Payment `json:"payment"`
	Balance models.Balance `json:"balance"`
}

// EnrollmentPaymentsResponse lists the ledger of one enrollment.
type EnrollmentPaymentsResponse struct {
	Payments []models.Payment `json:"payments"`
	Balance  models.Balance   `json:"balance"`
}
