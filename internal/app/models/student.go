package models

import (
	"time"

	"github.com/yigit/schooldesk/internal/domain/rollnumber"
)

// Student defines the student model based on the 'students' table
type Student struct {
	ID            string     `json:"id" db:"id"`
	FirstName     string     `json:"firstName" db:"first_name"`
	LastName      string     `json:"lastName" db:"last_name"`
	DateOfBirth   *time.Time `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	GuardianPhone *string    `json:"guardianPhone,omitempty" db:"guardian_phone"`
	ClassID       *string    `json:"classId,omitempty" db:"class_id"`
	SectionID     *string    `json:"sectionId,omitempty" db:"section_id"`
	RollNumber    *string    `json:"rollNumber,omitempty" db:"roll_number"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// Assignment returns the student's placement with unset columns as empty strings.
func (s *Student) Assignment() rollnumber.Assignment {
	return rollnumber.Assignment{
		ClassID:    deref(s.ClassID),
		SectionID:  deref(s.SectionID),
		RollNumber: deref(s.RollNumber),
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
