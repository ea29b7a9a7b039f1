package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment lifecycle.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentMethod lists accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodOther    PaymentMethod = "other"
)

// Payment is never physically deleted.
type Payment struct {
	ID           string          `db:"id" json:"id"`
	EnrollmentID string          `db:"enrollment_id" json:"enrollment_id"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Method       PaymentMethod   `db:"method" json:"method"`
	Reference    *string         `db:"reference" json:"reference,omitempty"`
	Status       PaymentStatus   `db:"status" json:"status"`
	PaidAt       time.Time       `db:"paid_at" json:"paid_at"`
	CancelledAt  *time.Time      `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// PaymentFilter describes query params for listing payments.
type PaymentFilter struct {
	EnrollmentID string
	Status       PaymentStatus
	Method       PaymentMethod
	Page         int
	PageSize     int
}

// Balance summarises what an enrollment owes.
type Balance struct {
	EnrollmentID string           `json:"enrollment_id"`
	TotalAmount  decimal.Decimal  `json:"total_amount"`
	TotalPaid    decimal.Decimal  `json:"total_paid"`
	Remaining    decimal.Decimal  `json:"remaining"`
	Status       EnrollmentStatus `json:"status"`
}

// NewBalance derives remaining from the total and completed sum.
func NewBalance(e *Enrollment, paid decimal.Decimal) Balance {
	return Balance{
		EnrollmentID: e.ID,
		TotalAmount:  e.TotalAmount,
		TotalPaid:    paid,
		Remaining:    e.TotalAmount.Sub(paid),
		Status:       e.Status,
	}
}
