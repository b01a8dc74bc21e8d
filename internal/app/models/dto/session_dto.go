package dto

import (
	"time"

	"github.com/yigit/schooldesk/internal/domain/rollnumber"
)

// OpenSessionRequest opens an admission form. An empty StudentID opens a creation form.
type OpenSessionRequest struct {
	StudentID string `json:"studentId" validate:"omitempty,uuid"`
}

// SelectPlacementRequest changes the class/section selection of an open form.
type SelectPlacementRequest struct {
	ClassID   string `json:"classId" validate:"omitempty,uuid"`
	SectionID string `json:"sectionId" validate:"omitempty,uuid"`
}

// SetRollNumberRequest records a manual roll number edit.
type SetRollNumberRequest struct {
	RollNumber string `json:"rollNumber" validate:"omitempty,roll_number"`
}

// SubmitSessionRequest carries the personal details a creation form submits.
// Edit forms only submit their placement.
type SubmitSessionRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	DateOfBirth   string `json:"dateOfBirth"`
	GuardianPhone string `json:"guardianPhone"`
}

// SessionResponse is the rendered form state.
type SessionResponse struct {
	SessionID string          `json:"sessionId"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Applied   bool            `json:"applied"`
	View      rollnumber.View `json:"view"`
}
