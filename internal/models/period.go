package models

import "time"

// PeriodStatus is the lifecycle of an academic period.
type PeriodStatus string

const (
	PeriodStatusScheduled  PeriodStatus = "scheduled"
	PeriodStatusInProgress PeriodStatus = "in_progress"
	PeriodStatusFinished   PeriodStatus = "finished"
)

// AcademicPeriod is a term with its enrollment windows. All dates are calendar
// dates stored at midnight UTC.
type AcademicPeriod struct {
	ID                  string       `db:"id" json:"id"`
	Code                string       `db:"code" json:"code"`
	Name                string       `db:"name" json:"name"`
	StartDate           time.Time    `db:"start_date" json:"start_date"`
	EndDate             time.Time    `db:"end_date" json:"end_date"`
	EnrollmentStart     time.Time    `db:"enrollment_start" json:"enrollment_start"`
	EnrollmentEnd       time.Time    `db:"enrollment_end" json:"enrollment_end"`
	LateEnrollmentStart *time.Time   `db:"late_enrollment_start" json:"late_enrollment_start,omitempty"`
	LateEnrollmentEnd   *time.Time   `db:"late_enrollment_end" json:"late_enrollment_end,omitempty"`
	Status              PeriodStatus `db:"status" json:"status"`
	Active              bool         `db:"active" json:"active"`
	CreatedAt           time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time    `db:"updated_at" json:"updated_at"`
}

// EnrollmentWindow returns the inclusive date window for the enrollment type.
// ok is false when the period defines no such window.
func (p *AcademicPeriod) EnrollmentWindow(t EnrollmentType) (start, end time.Time, ok bool) {
	switch t {
	case EnrollmentTypeRegular:
		return p.EnrollmentStart, p.EnrollmentEnd, true
	case EnrollmentTypeLate:
		if p.LateEnrollmentStart == nil || p.LateEnrollmentEnd == nil {
			return time.Time{}, time.Time{}, false
		}
		return *p.LateEnrollmentStart, *p.LateEnrollmentEnd, true
	}
	return time.Time{}, time.Time{}, false
}

// CivilDate strips the clock from t keeping its calendar date in t's location.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WithinDates reports whether day falls in [start, end] comparing calendar dates only.
func WithinDates(day, start, end time.Time) bool {
	d := CivilDate(day)
	return !d.Before(CivilDate(start)) && !d.After(CivilDate(end))
}

// PeriodFilter defines filters supported by list endpoints.
type PeriodFilter struct {
	Status   PeriodStatus
	Active   *bool
	Page     int
	PageSize int
}
