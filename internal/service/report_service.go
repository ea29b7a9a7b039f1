package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/matricula-api/internal/dto"
	"github.com/noah-isme/matricula-api/internal/models"
	"github.com/noah-isme/matricula-api/pkg/calendar"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
	"github.com/noah-isme/matricula-api/pkg/export"
)

const topCoursesLimit = 10

type reportRepository interface {
	CountByStatus(ctx context.Context, periodID string) ([]models.LabelCount, error)
	CountByType(ctx context.Context, periodID string) ([]models.LabelCount, error)
	TopCourses(ctx context.Context, periodID string, limit int) ([]models.CourseDemand, error)
}

type enrollmentViewer interface {
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.EnrollmentResponse, error)
}

type sectionBlocksReader interface {
	ListBySections(ctx context.Context, sectionIDs []string) ([]models.Schedule, error)
}

type institutionNamer interface {
	InstitutionName(ctx context.Context) string
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, notes ...string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet, title string, notes ...string) ([]byte, error)
}

// ReportFile is a rendered document ready to be streamed.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService builds period reports and per-enrollment documents.
type ReportService struct {
	repo        reportRepository
	periods     periodReader
	enrollments enrollmentViewer
	schedules   sectionBlocksReader
	settings    institutionNamer
	cache       *CacheService
	clock       Clock
	csv         csvRenderer
	pdf         pdfRenderer
	xlsx        xlsxRenderer
	logger      *zap.Logger
}

// NewReportService constructs a ReportService with the default renderers.
func NewReportService(
	repo reportRepository,
	periods periodReader,
	enrollments enrollmentViewer,
	schedules sectionBlocksReader,
	settings institutionNamer,
	cache *CacheService,
	clock Clock,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:        repo,
		periods:     periods,
		enrollments: enrollments,
		schedules:   schedules,
		settings:    settings,
		cache:       cache,
		clock:       clock,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		xlsx:        export.NewXLSXExporter(),
		logger:      logger,
	}
}

// PeriodReport aggregates enrollment activity of a period. The boolean reports a cache hit.
func (s *ReportService) PeriodReport(ctx context.Context, periodID string) (*models.PeriodReport, bool, error) {
	period, err := s.periods.FindByID(ctx, periodID)
	if err != nil {
		return nil, false, lookupError(err, "academic period not found", "failed to load period")
	}

	generation, cacheable := s.cache.PeriodGeneration(ctx, periodID)
	key := PeriodReportKey(periodID, generation)
	if cacheable {
		var cached models.PeriodReport
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	byStatus, err := s.repo.CountByStatus(ctx, periodID)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to count enrollments by status")
	}
	byType, err := s.repo.CountByType(ctx, periodID)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to count enrollments by type")
	}
	top, err := s.repo.TopCourses(ctx, periodID, topCoursesLimit)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to rank courses")
	}

	report := &models.PeriodReport{
		PeriodID:   period.ID,
		PeriodCode: period.Code,
		PeriodName: period.Name,
		ByStatus:   nonNilCounts(byStatus),
		ByType:     nonNilCounts(byType),
		TopCourses: top,
	}
	if report.TopCourses == nil {
		report.TopCourses = []models.CourseDemand{}
	}
	for _, c := range byStatus {
		report.TotalEnrollments += c.Count
	}

	if cacheable {
		_ = s.cache.Set(ctx, key, report, 0)
	}
	return report, false, nil
}

// ExportPeriodReport renders the period report as csv, pdf or xlsx.
func (s *ReportService) ExportPeriodReport(ctx context.Context, periodID string, format models.ReportFormat) (*ReportFile, error) {
	switch format {
	case models.ReportFormatCSV, models.ReportFormatPDF, models.ReportFormatXLSX:
	default:
		return nil, invalidInput(fmt.Sprintf("unsupported export format %q; use csv, pdf or xlsx", format))
	}
	report, _, err := s.PeriodReport(ctx, periodID)
	if err != nil {
		return nil, err
	}

	dataset := periodReportDataset(report)
	title := fmt.Sprintf("Enrollment report %s", report.PeriodCode)
	notes := []string{
		s.settings.InstitutionName(ctx),
		fmt.Sprintf("Period: %s %s", report.PeriodCode, report.PeriodName),
		fmt.Sprintf("Generated: %s", s.clock.Today().Format(dateLayout)),
	}

	var data []byte
	switch format {
	case models.ReportFormatCSV:
		data, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		data, err = s.pdf.Render(dataset, title, notes...)
	case models.ReportFormatXLSX:
		data, err = s.xlsx.Render(dataset, "Report", title, notes...)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render report")
	}
	s.logger.Info("period report exported", zap.String("period_id", periodID), zap.String("format", string(format)), zap.Int("bytes", len(data)))
	return &ReportFile{
		Filename:    fmt.Sprintf("enrollment_report_%s.%s", sanitizeFilename(report.PeriodCode), format),
		ContentType: contentType(format),
		Data:        data,
	}, nil
}

// Certificate renders a PDF proof of enrollment listing the active courses.
func (s *ReportService) Certificate(ctx context.Context, enrollmentID string, actor *models.JWTClaims) (*ReportFile, error) {
	resp, err := s.enrollments.Get(ctx, enrollmentID, actor)
	if err != nil {
		return nil, err
	}
	e := resp.Enrollment
	if e.Status == models.EnrollmentStatusCancelled {
		return nil, invalidState("a cancelled enrollment has no certificate")
	}

	dataset := export.Dataset{Headers: []string{"code", "course", "section", "credits"}}
	for _, line := range activeLines(resp.Lines) {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"code":    line.CourseCode,
			"course":  line.CourseName,
			"section": line.SectionLabel,
			"credits": strconv.Itoa(line.Credits),
		})
	}
	notes := []string{
		s.settings.InstitutionName(ctx),
		fmt.Sprintf("Student: %s %s", e.StudentCode, e.StudentName),
		fmt.Sprintf("Period: %s %s", e.PeriodCode, e.PeriodName),
		fmt.Sprintf("Type: %s   Status: %s", e.Type, e.Status),
		fmt.Sprintf("Total credits: %d   Total amount: %s", e.TotalCredits, e.TotalAmount.StringFixed(2)),
		fmt.Sprintf("Issued: %s", s.clock.Today().Format(dateLayout)),
	}
	data, err := s.pdf.Render(dataset, "Certificate of enrollment", notes...)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render certificate")
	}
	return &ReportFile{
		Filename:    fmt.Sprintf("enrollment_%s_%s.pdf", sanitizeFilename(e.StudentCode), sanitizeFilename(e.PeriodCode)),
		ContentType: export.ContentTypePDF,
		Data:        data,
	}, nil
}

// Timetable renders the weekly blocks of every active line as an iCalendar feed
// bounded by the period dates.
func (s *ReportService) Timetable(ctx context.Context, enrollmentID string, actor *models.JWTClaims) (*ReportFile, error) {
	resp, err := s.enrollments.Get(ctx, enrollmentID, actor)
	if err != nil {
		return nil, err
	}
	period, err := s.periods.FindByID(ctx, resp.Enrollment.PeriodID)
	if err != nil {
		return nil, lookupError(err, "academic period not found", "failed to load period")
	}

	lines := activeLines(resp.Lines)
	bySection := make(map[string]models.EnrollmentLineDetail, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		bySection[line.SectionID] = line
		ids = append(ids, line.SectionID)
	}
	var schedules []models.Schedule
	if len(ids) > 0 {
		if schedules, err = s.schedules.ListBySections(ctx, ids); err != nil {
			return nil, appErrors.Internal(err, "failed to load schedules")
		}
	}

	blocks := make([]calendar.WeeklyBlock, 0, len(schedules))
	for _, sc := range schedules {
		weekday, err := calendar.ParseWeekday(sc.DayOfWeek)
		if err != nil {
			return nil, appErrors.Internal(err, "stored schedule has an invalid day")
		}
		line := bySection[sc.SectionID]
		blocks = append(blocks, calendar.WeeklyBlock{
			UID:         sc.ID,
			Summary:     fmt.Sprintf("%s %s (%s)", line.CourseCode, line.CourseName, line.SectionLabel),
			Description: fmt.Sprintf("%s, %s", sc.Type, line.TeacherName),
			Location:    sc.Room,
			Weekday:     weekday,
			Start:       sc.StartTime,
			End:         sc.EndTime,
		})
	}

	body, err := calendar.BuildWeekly(calendar.Term{
		Name:     fmt.Sprintf("%s %s", period.Code, resp.Enrollment.StudentCode),
		Start:    period.StartDate,
		End:      period.EndDate,
		Location: s.clock.Location,
	}, blocks)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to build timetable")
	}
	return &ReportFile{
		Filename:    fmt.Sprintf("timetable_%s_%s.ics", sanitizeFilename(resp.Enrollment.StudentCode), sanitizeFilename(period.Code)),
		ContentType: "text/calendar; charset=utf-8",
		Data:        []byte(body),
	}, nil
}

func periodReportDataset(report *models.PeriodReport) export.Dataset {
	dataset := export.Dataset{Headers: []string{"metric", "label", "value"}}
	dataset.Rows = append(dataset.Rows, map[string]string{"metric": "total_enrollments", "value": strconv.Itoa(report.TotalEnrollments)})
	for _, c := range report.ByStatus {
		dataset.Rows = append(dataset.Rows, map[string]string{"metric": "status", "label": c.Label, "value": strconv.Itoa(c.Count)})
	}
	for _, c := range report.ByType {
		dataset.Rows = append(dataset.Rows, map[string]string{"metric": "type", "label": c.Label, "value": strconv.Itoa(c.Count)})
	}
	for _, c := range report.TopCourses {
		dataset.Rows = append(dataset.Rows, map[string]string{"metric": "top_course", "label": c.CourseCode + " " + c.CourseName, "value": strconv.Itoa(c.Count)})
	}
	return dataset
}

func activeLines(lines []models.EnrollmentLineDetail) []models.EnrollmentLineDetail {
	result := make([]models.EnrollmentLineDetail, 0, len(lines))
	for _, line := range lines {
		if line.Status == models.LineStatusActive {
			result = append(result, line)
		}
	}
	return result
}

func nonNilCounts(counts []models.LabelCount) []models.LabelCount {
	if counts == nil {
		return []models.LabelCount{}
	}
	return counts
}

func contentType(format models.ReportFormat) string {
	switch format {
	case models.ReportFormatPDF:
		return export.ContentTypePDF
	case models.ReportFormatXLSX:
		return export.ContentTypeXLSX
	}
	return export.ContentTypeCSV
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
