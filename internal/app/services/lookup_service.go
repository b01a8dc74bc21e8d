package services

import (
	"context"
	"fmt"

	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/result"
)

// LookupService answers the form dropdown lookups. Every failure comes back as a
// failed Result, never as a panic or a bare error.
type LookupService struct {
	classes  ClassStore
	subjects SubjectStore
	teachers TeacherStore
}

// NewLookupService creates a new lookup service
func NewLookupService(classes ClassStore, subjects SubjectStore, teachers TeacherStore) *LookupService {
	return &LookupService{classes: classes, subjects: subjects, teachers: teachers}
}

// Classes lists the classes of an organisation; an empty orgID lists all classes.
func (s *LookupService) Classes(ctx context.Context, orgID string) result.Result[[]models.Class] {
	classes, err := s.classes.ListClasses(ctx, orgID)
	return result.FromError(classes, err)
}

// Sections lists the sections of a class.
func (s *LookupService) Sections(ctx context.Context, classID string) result.Result[[]models.Section] {
	if err := validateID("classId", classID); err != nil {
		return result.FromError[[]models.Section](nil, err)
	}
	if _, err := s.classes.GetClass(ctx, classID); err != nil {
		return result.FromError[[]models.Section](nil, err)
	}
	sections, err := s.classes.ListSections(ctx, classID)
	return result.FromError(sections, err)
}

// Subjects lists the subjects of a class.
func (s *LookupService) Subjects(ctx context.Context, classID string) result.Result[[]models.Subject] {
	if err := validateID("classId", classID); err != nil {
		return result.FromError[[]models.Subject](nil, err)
	}
	subjects, err := s.subjects.ListByClass(ctx, classID)
	return result.FromError(subjects, err)
}

// Teachers lists the teachers available in a branch.
func (s *LookupService) Teachers(ctx context.Context, branchID string) result.Result[[]models.Teacher] {
	if branchID == "" {
		return result.FromError[[]models.Teacher](nil, fmt.Errorf("%w: branchId is required", apperrors.ErrValidationFailed))
	}
	teachers, err := s.teachers.ListByBranch(ctx, branchID)
	return result.FromError(teachers, err)
}
