package dto

import "github.com/yigit/schooldesk/internal/domain/schedule"

// SettingsResponse is the school-wide schedule configuration plus derived views.
type SettingsResponse struct {
	WeeklySchedule  schedule.WeeklySchedule `json:"weeklySchedule"`
	SubjectDuration int                     `json:"subjectDuration" example:"45"`
	ActiveDays      []string                `json:"activeDays"`
	TimeSlots       []string                `json:"timeSlots"`
	// Defaulted is true when the stored schedule was unusable and defaults were served.
	Defaulted bool `json:"defaulted"`
}

// UpdateSettingsRequest replaces the weekly schedule and period duration.
type UpdateSettingsRequest struct {
	WeeklySchedule  []schedule.ScheduleDay `json:"weeklySchedule" validate:"required,len=7"`
	SubjectDuration int                    `json:"subjectDuration" validate:"period_duration" example:"45"`
}

// TimeSlotPreviewRequest asks for the labels a window and duration would produce.
type TimeSlotPreviewRequest struct {
	Start    string `form:"start" json:"start" validate:"required,clock" example:"08:00"`
	End      string `form:"end" json:"end" validate:"required,clock" example:"09:30"`
	Duration int    `form:"duration" json:"duration" validate:"required,min=1,max=1440" example:"45"`
}
