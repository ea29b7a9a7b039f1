package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionEnrollmentCreate   = "ENROLLMENT_CREATE"
	AuditActionEnrollmentCancel   = "ENROLLMENT_CANCEL"
	AuditActionEnrollmentStatus   = "ENROLLMENT_STATUS"
	AuditActionLineAdd            = "ENROLLMENT_LINE_ADD"
	AuditActionLineWithdraw       = "ENROLLMENT_LINE_WITHDRAW"
	AuditActionPaymentRecord      = "PAYMENT_RECORD"
	AuditActionPaymentCancel      = "PAYMENT_CANCEL"
	AuditActionSectionCreate      = "SECTION_CREATE"
	AuditActionSectionUpdate      = "SECTION_UPDATE"
	AuditActionSectionDelete      = "SECTION_DELETE"
	AuditActionScheduleCreate     = "SCHEDULE_CREATE"
	AuditActionScheduleUpdate     = "SCHEDULE_UPDATE"
	AuditActionScheduleDelete     = "SCHEDULE_DELETE"
	AuditActionPeriodCreate       = "PERIOD_CREATE"
	AuditActionPeriodStatus       = "PERIOD_STATUS"
	AuditActionPrerequisiteCreate = "PREREQUISITE_CREATE"
	AuditActionConfigUpdate       = "CONFIG_UPDATE"
	AuditActionReportExport       = "REPORT_EXPORT"
	AuditActionDocumentIssue      = "DOCUMENT_ISSUE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
