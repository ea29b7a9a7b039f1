package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EnrollmentType selects the window an enrollment is opened in.
type EnrollmentType string

const (
	EnrollmentTypeRegular EnrollmentType = "regular"
	EnrollmentTypeLate    EnrollmentType = "late"
)

// EnrollmentStatus is the enrollment lifecycle. cancelled is terminal.
type EnrollmentStatus string

const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusPaid      EnrollmentStatus = "paid"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusPaid, EnrollmentStatusCancelled:
		return true
	}
	return false
}

// Enrollment aggregates the sections a student takes in one period.
type Enrollment struct {
	ID              string           `db:"id" json:"id"`
	StudentID       string           `db:"student_id" json:"student_id"`
	PeriodID        string           `db:"period_id" json:"period_id"`
	Type            EnrollmentType   `db:"type" json:"type"`
	TotalCredits    int              `db:"total_credits" json:"total_credits"`
	TotalAmount     decimal.Decimal  `db:"total_amount" json:"total_amount"`
	CreditCost      decimal.Decimal  `db:"credit_cost" json:"credit_cost"`
	PriceMultiplier decimal.Decimal  `db:"price_multiplier" json:"price_multiplier"`
	Status          EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt      time.Time        `db:"enrolled_at" json:"enrolled_at"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// AmountFor prices a credit count with the snapshotted cost and multiplier.
func (e *Enrollment) AmountFor(credits int) decimal.Decimal {
	return CalculateAmount(credits, e.CreditCost, e.PriceMultiplier)
}

// CalculateAmount returns credits × cost × multiplier rounded to cents.
func CalculateAmount(credits int, cost, multiplier decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(credits)).Mul(cost).Mul(multiplier).Round(2)
}

// EnrollmentDetail joins student and period identity for read models.
type EnrollmentDetail struct {
	Enrollment
	StudentCode string `db:"student_code" json:"student_code"`
	StudentName string `db:"student_name" json:"student_name"`
	PeriodCode  string `db:"period_code" json:"period_code"`
	PeriodName  string `db:"period_name" json:"period_name"`
}

// EnrollmentFilter describes query params for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	PeriodID  string
	Status    EnrollmentStatus
	Type      EnrollmentType
	Page      int
	PageSize  int
}

// LineStatus tracks whether a line still holds a seat.
type LineStatus string

const (
	LineStatusActive    LineStatus = "active"
	LineStatusWithdrawn LineStatus = "withdrawn"
)

// EnrollmentLine is one reserved seat in a section.
type EnrollmentLine struct {
	ID           string     `db:"id" json:"id"`
	EnrollmentID string     `db:"enrollment_id" json:"enrollment_id"`
	SectionID    string     `db:"section_id" json:"section_id"`
	Status       LineStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	WithdrawnAt  *time.Time `db:"withdrawn_at" json:"withdrawn_at,omitempty"`
}

// EnrollmentLineDetail adds the section and course behind a line.
type EnrollmentLineDetail struct {
	EnrollmentLine
	SectionLabel string `db:"section_label" json:"section_label"`
	CourseID     string `db:"course_id" json:"course_id"`
	CourseCode   string `db:"course_code" json:"course_code"`
	CourseName   string `db:"course_name" json:"course_name"`
	CourseCycle  int    `db:"course_cycle" json:"course_cycle"`
	Credits      int    `db:"credits" json:"credits"`
	TeacherID    string `db:"teacher_id" json:"teacher_id"`
	TeacherName  string `db:"teacher_name" json:"teacher_name"`
}

// EnrollmentLineFilter describes query params for listing lines.
type EnrollmentLineFilter struct {
	EnrollmentID string
	SectionID    string
	StudentID    string
	Status       LineStatus
	Page         int
	PageSize     int
}
