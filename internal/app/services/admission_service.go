package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/domain/rollnumber"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/result"
	"github.com/yigit/schooldesk/internal/pkg/validation"
)

// generatedRollAttempts bounds retries when a generated roll number is taken between
// preview and insert.
const generatedRollAttempts = 3

// AdmissionService defines student admission and placement operations
type AdmissionService interface {
	Admit(ctx context.Context, req *dto.AdmissionRequest) (*dto.StudentDetailsResponse, error)
	Reassign(ctx context.Context, studentID string, req *dto.ReassignRequest) (*dto.StudentDetailsResponse, error)
	StudentDetails(ctx context.Context, studentID string) result.Result[dto.StudentDetailsResponse]
}

type admissionServiceImpl struct {
	classes   ClassStore
	students  StudentStore
	generator rollnumber.Generator
	logger    zerolog.Logger
}

// NewAdmissionService creates a new admission service
func NewAdmissionService(classes ClassStore, students StudentStore, generator rollnumber.Generator, logger zerolog.Logger) AdmissionService {
	return &admissionServiceImpl{
		classes:   classes,
		students:  students,
		generator: generator,
		logger:    logger.With().Str("component", "admission").Logger(),
	}
}

// checkPlacement verifies the section belongs to the class.
func (s *admissionServiceImpl) checkPlacement(ctx context.Context, classID, sectionID string) error {
	if _, err := s.classes.GetClass(ctx, classID); err != nil {
		return err
	}
	section, err := s.classes.GetSection(ctx, sectionID)
	if err != nil {
		return err
	}
	if section.ClassID != classID {
		return apperrors.ErrSectionNotInClass
	}
	return nil
}

// Admit validates the request, then creates the student. An empty roll number is
// generated for the section at commit time.
func (s *admissionServiceImpl) Admit(ctx context.Context, req *dto.AdmissionRequest) (*dto.StudentDetailsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", apperrors.ErrValidationFailed)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		t, err := time.Parse(time.DateOnly, req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("%w: dateOfBirth must be YYYY-MM-DD", apperrors.ErrValidationFailed)
		}
		dob = &t
	}

	if err := s.checkPlacement(ctx, req.ClassID, req.SectionID); err != nil {
		return nil, err
	}

	student := &models.Student{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		DateOfBirth:   dob,
		GuardianPhone: models.StringPtr(strings.TrimSpace(req.GuardianPhone)),
		ClassID:       models.StringPtr(req.ClassID),
		SectionID:     models.StringPtr(req.SectionID),
	}

	err := s.withRollNumber(ctx, req.SectionID, req.RollNumber, func(roll string) error {
		student.RollNumber = models.StringPtr(roll)
		_, err := s.students.Create(ctx, student)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("studentId", student.ID).Str("sectionId", req.SectionID).Str("rollNumber", *student.RollNumber).Msg("Student admitted")
	return toStudentDetails(student), nil
}

// Reassign moves a student. Keeping the same placement with an empty roll number keeps
// the current roll number; any other empty roll number is generated.
func (s *admissionServiceImpl) Reassign(ctx context.Context, studentID string, req *dto.ReassignRequest) (*dto.StudentDetailsResponse, error) {
	if err := validateID("studentId", studentID); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", apperrors.ErrValidationFailed)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPlacement(ctx, req.ClassID, req.SectionID); err != nil {
		return nil, err
	}

	current := student.Assignment()
	roll := req.RollNumber
	if roll == "" && current.ClassID == req.ClassID && current.SectionID == req.SectionID {
		roll = current.RollNumber
	}

	var placed rollnumber.Assignment
	err = s.withRollNumber(ctx, req.SectionID, roll, func(roll string) error {
		placed = rollnumber.Assignment{ClassID: req.ClassID, SectionID: req.SectionID, RollNumber: roll}
		return s.students.UpdatePlacement(ctx, studentID, placed)
	})
	if err != nil {
		return nil, err
	}

	student.ClassID = models.StringPtr(placed.ClassID)
	student.SectionID = models.StringPtr(placed.SectionID)
	student.RollNumber = models.StringPtr(placed.RollNumber)
	student.UpdatedAt = time.Now().UTC()

	s.logger.Info().Str("studentId", studentID).
		Str("fromSection", current.SectionID).Str("toSection", placed.SectionID).
		Str("rollNumber", placed.RollNumber).Msg("Student reassigned")
	return toStudentDetails(student), nil
}

// withRollNumber runs save with the given roll number, or with freshly generated ones
// when it is empty. Only generated numbers are retried on collision.
func (s *admissionServiceImpl) withRollNumber(ctx context.Context, sectionID, roll string, save func(string) error) error {
	if roll != "" {
		return save(roll)
	}

	var err error
	for attempt := 1; attempt <= generatedRollAttempts; attempt++ {
		var generated string
		generated, err = s.generator.Generate(ctx, sectionID)
		if err != nil {
			return fmt.Errorf("error generating roll number: %w", err)
		}
		err = save(generated)
		if !errors.Is(err, apperrors.ErrRollNumberTaken) {
			return err
		}
		s.logger.Warn().Str("sectionId", sectionID).Str("rollNumber", generated).Int("attempt", attempt).Msg("Generated roll number was taken, retrying")
	}
	return err
}

// StudentDetails returns the persisted student record.
func (s *admissionServiceImpl) StudentDetails(ctx context.Context, studentID string) result.Result[dto.StudentDetailsResponse] {
	if err := validateID("studentId", studentID); err != nil {
		return result.FromError(dto.StudentDetailsResponse{}, err)
	}
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return result.FromError(dto.StudentDetailsResponse{}, err)
	}
	return result.Ok(*toStudentDetails(student))
}

func toStudentDetails(s *models.Student) *dto.StudentDetailsResponse {
	a := s.Assignment()
	resp := &dto.StudentDetailsResponse{
		ID:          s.ID,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		DateOfBirth: s.DateOfBirth,
		ClassID:     a.ClassID,
		SectionID:   a.SectionID,
		RollNumber:  a.RollNumber,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.GuardianPhone != nil {
		resp.GuardianPhone = *s.GuardianPhone
	}
	return resp
}
