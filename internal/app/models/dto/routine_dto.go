package dto

import (
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/domain/schedule"
)

// RoutineCell is one assignment in the class routine grid.
type RoutineCell struct {
	DayIndex    int              `json:"dayIndex"`
	TimeSlot    string           `json:"timeSlot" example:"08:00-08:45"`
	SubjectID   string           `json:"subjectId,omitempty"`
	SubjectName string           `json:"subjectName,omitempty"`
	TeacherID   string           `json:"teacherId,omitempty"`
	TeacherName string           `json:"teacherName,omitempty"`
	ClassType   models.ClassType `json:"classType" example:"regular"`
}

// RoutineGridResponse lays out a class routine: columns are open days in display order,
// rows are the time slots of the first open day.
type RoutineGridResponse struct {
	ClassID        string                `json:"classId"`
	PeriodDuration int                   `json:"periodDuration"`
	Days           []schedule.DisplayDay `json:"days"`
	TimeSlots      []string              `json:"timeSlots"`
	Cells          []RoutineCell         `json:"cells"`
}

// RoutineCellRequest is a single cell in a save request.
type RoutineCellRequest struct {
	DayIndex  int              `json:"dayIndex" validate:"min=0,max=6"`
	TimeSlot  string           `json:"timeSlot" validate:"required"`
	SubjectID string           `json:"subjectId" validate:"omitempty,uuid"`
	TeacherID string           `json:"teacherId" validate:"omitempty,uuid"`
	ClassType models.ClassType `json:"classType" validate:"required,oneof=regular special break"`
}

// SaveRoutineRequest replaces a class routine as a whole.
type SaveRoutineRequest struct {
	Cells []RoutineCellRequest `json:"cells" validate:"dive"`
}

// AssignmentOptionsResponse feeds the cell assignment dialog. A list that failed to load
// is empty and its error is reported alongside.
type AssignmentOptionsResponse struct {
	Subjects      []models.Subject `json:"subjects"`
	Teachers      []models.Teacher `json:"teachers"`
	SubjectsError string           `json:"subjectsError,omitempty"`
	TeachersError string           `json:"teachersError,omitempty"`
}
