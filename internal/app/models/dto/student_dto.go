package dto

import "time"

// AdmissionRequest admits a new student into a class and section.
type AdmissionRequest struct {
	FirstName     string `json:"firstName" validate:"required,max=100" example:"Amina"`
	LastName      string `json:"lastName" validate:"required,max=100" example:"Rahman"`
	DateOfBirth   string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02" example:"2015-03-09"`
	GuardianPhone string `json:"guardianPhone" validate:"omitempty,max=32" example:"+8801700000000"`
	ClassID       string `json:"classId" validate:"required,uuid"`
	SectionID     string `json:"sectionId" validate:"required,uuid"`
	// RollNumber may be left empty; one is generated for the section at commit time.
	RollNumber string `json:"rollNumber" validate:"omitempty,roll_number" example:"A001"`
}

// ReassignRequest moves an existing student to a class and section.
type ReassignRequest struct {
	ClassID    string `json:"classId" validate:"required,uuid"`
	SectionID  string `json:"sectionId" validate:"required,uuid"`
	RollNumber string `json:"rollNumber" validate:"omitempty,roll_number"`
}

// StudentDetailsResponse is the persisted student record with its placement.
type StudentDetailsResponse struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	DateOfBirth   *time.Time `json:"dateOfBirth,omitempty"`
	GuardianPhone string     `json:"guardianPhone,omitempty"`
	ClassID       string     `json:"classId"`
	SectionID     string     `json:"sectionId"`
	RollNumber    string     `json:"rollNumber"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// RollNumberResponse carries a generated roll number preview.
type RollNumberResponse struct {
	SectionID  string `json:"sectionId"`
	RollNumber string `json:"rollNumber" example:"A004"`
}
