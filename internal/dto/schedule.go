package dto

import "github.com/noah-isme/matricula-api/internal/models"

// CreateScheduleRequest adds a weekly block to a section.
type CreateScheduleRequest struct {
	SectionID string `json:"section_id" validate:"required,uuid"`
	DayOfWeek string `json:"day_of_week" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	Room      string `json:"room" validate:"required,max=50"`
	Type      string `json:"type" validate:"omitempty,oneof=theory practice lab"`
}

// UpdateScheduleRequest replaces the block fields of a schedule.
type UpdateScheduleRequest struct {
	DayOfWeek string `json:"day_of_week" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	Room      string `json:"room" validate:"required,max=50"`
	Type      string `json:"type" validate:"omitempty,oneof=theory practice lab"`
}

// CheckConflictsRequest checks a block without writing it. Room is optional.
type CheckConflictsRequest struct {
	SectionID         string `json:"section_id" validate:"required,uuid"`
	DayOfWeek         string `json:"day_of_week" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime         string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime           string `json:"end_time" validate:"required,datetime=15:04"`
	Room              string `json:"room" validate:"omitempty,max=50"`
	ExcludeScheduleID string `json:"exclude_schedule_id" validate:"omitempty,uuid"`
}

// ConflictCheckResponse lists what a proposed block collides with.
type ConflictCheckResponse struct {
	HasConflicts bool                      `json:"has_conflicts"`
	Conflicts    []models.ScheduleConflict `json:"conflicts"`
}
