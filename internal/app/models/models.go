package models

import (
	"time"

	"github.com/yigit/schooldesk/internal/domain/schedule"
)

// Class is a grade level within a branch of an organisation.
type Class struct {
	ID        string    `json:"id" db:"id"`
	OrgID     string    `json:"orgId" db:"org_id"`
	BranchID  string    `json:"branchId" db:"branch_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Section partitions a class. Code prefixes the roll numbers issued in it.
type Section struct {
	ID      string `json:"id" db:"id"`
	ClassID string `json:"classId" db:"class_id"`
	Name    string `json:"name" db:"name"`
	Code    string `json:"code" db:"code"`
}

// Subject is taught to a class.
type Subject struct {
	ID      string  `json:"id" db:"id"`
	ClassID string  `json:"classId" db:"class_id"`
	Name    string  `json:"name" db:"name"`
	Code    *string `json:"code,omitempty" db:"code"`
}

// Teacher belongs to a branch.
type Teacher struct {
	ID       string  `json:"id" db:"id"`
	BranchID string  `json:"branchId" db:"branch_id"`
	Name     string  `json:"name" db:"name"`
	Email    *string `json:"email,omitempty" db:"email"`
}

// SchoolSettings is the singleton settings row.
type SchoolSettings struct {
	WeeklySchedule  schedule.WeeklySchedule `json:"weeklySchedule"`
	SubjectDuration int                     `json:"subjectDuration"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// ClassType classifies a routine cell.
type ClassType string

const (
	ClassTypeRegular ClassType = "regular"
	ClassTypeSpecial ClassType = "special"
	ClassTypeBreak   ClassType = "break"
)

// Valid reports whether t is a known class type.
func (t ClassType) Valid() bool {
	switch t {
	case ClassTypeRegular, ClassTypeSpecial, ClassTypeBreak:
		return true
	}
	return false
}

// RoutineSlot is one persisted cell of a class routine, keyed by (class, day, time slot).
type RoutineSlot struct {
	ClassID   string    `json:"classId" db:"class_id"`
	DayIndex  int       `json:"dayIndex" db:"day_index"`
	TimeSlot  string    `json:"timeSlot" db:"time_slot"`
	SubjectID *string   `json:"subjectId,omitempty" db:"subject_id"`
	TeacherID *string   `json:"teacherId,omitempty" db:"teacher_id"`
	ClassType ClassType `json:"classType" db:"class_type"`
}

// TeacherBooking is a teacher already placed in another class at the same day and slot.
type TeacherBooking struct {
	TeacherID string `json:"teacherId"`
	ClassID   string `json:"classId"`
	DayIndex  int    `json:"dayIndex"`
	TimeSlot  string `json:"timeSlot"`
}
