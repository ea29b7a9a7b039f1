package models

import "time"

// LabelCount is a grouped count.
type LabelCount struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}

// CourseDemand counts active lines per course.
type CourseDemand struct {
	CourseID   string `db:"course_id" json:"course_id"`
	CourseCode string `db:"course_code" json:"course_code"`
	CourseName string `db:"course_name" json:"course_name"`
	Count      int    `db:"count" json:"count"`
}

// PeriodReport summarises enrollment activity for one period.
type PeriodReport struct {
	PeriodID         string         `json:"period_id"`
	PeriodCode       string         `json:"period_code"`
	PeriodName       string         `json:"period_name"`
	TotalEnrollments int            `json:"total_enrollments"`
	ByStatus         []LabelCount   `json:"by_status"`
	ByType           []LabelCount   `json:"by_type"`
	TopCourses       []CourseDemand `json:"top_courses"`
}

// SystemMetrics is a point in time view of process counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	EnrollmentsCreated       uint64    `json:"enrollments_created"`
	EnrollmentRejections     uint64    `json:"enrollment_rejections"`
	PaymentsRecorded         uint64    `json:"payments_recorded"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// ReportFormat selects the rendering of an exported report.
type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
	ReportFormatXLSX ReportFormat = "xlsx"
)
