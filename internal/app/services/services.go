// Package services holds the school admin business logic. Services depend on the small
// store interfaces below; the Postgres repositories satisfy them.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/domain/rollnumber"
	"github.com/yigit/schooldesk/internal/domain/schedule"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

// ClassStore reads classes and their sections.
type ClassStore interface {
	ListClasses(ctx context.Context, orgID string) ([]models.Class, error)
	GetClass(ctx context.Context, id string) (*models.Class, error)
	ListSections(ctx context.Context, classID string) ([]models.Section, error)
	GetSection(ctx context.Context, id string) (*models.Section, error)
}

// StudentStore persists students and their placement.
type StudentStore interface {
	rollnumber.StudentSource
	GetByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, s *models.Student) (string, error)
	UpdatePlacement(ctx context.Context, id string, a rollnumber.Assignment) error
	RollNumbersInSection(ctx context.Context, sectionID string) ([]string, error)
}

// SettingsStore persists the singleton settings row.
type SettingsStore interface {
	Get(ctx context.Context) (repositories.StoredSettings, bool, error)
	Save(ctx context.Context, ws schedule.WeeklySchedule, subjectDuration int) (time.Time, error)
}

// SubjectStore lists subjects.
type SubjectStore interface {
	ListByClass(ctx context.Context, classID string) ([]models.Subject, error)
}

// TeacherStore lists teachers.
type TeacherStore interface {
	ListByBranch(ctx context.Context, branchID string) ([]models.Teacher, error)
}

// RoutineStore persists class routines.
type RoutineStore interface {
	ListByClass(ctx context.Context, classID string) ([]models.RoutineSlot, error)
	Replace(ctx context.Context, classID string, slots []models.RoutineSlot) error
}

// validateID rejects ids that are not UUIDs before they reach the database.
func validateID(name, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s is required", apperrors.ErrValidationFailed, name)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s must be a UUID", apperrors.ErrValidationFailed, name)
	}
	return nil
}
