package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/domain/rollnumber"
)

// RollNumberService issues roll numbers as the section code followed by the next free
// sequence, e.g. "A004". Generation is a preview; nothing is reserved until a student saves.
type RollNumberService struct {
	classes  ClassStore
	students StudentStore
	width    int
	logger   zerolog.Logger
}

var _ rollnumber.Generator = (*RollNumberService)(nil)

// NewRollNumberService creates a generator padding sequences to width digits.
func NewRollNumberService(classes ClassStore, students StudentStore, width int, logger zerolog.Logger) *RollNumberService {
	if width < 1 {
		width = 3
	}
	return &RollNumberService{
		classes:  classes,
		students: students,
		width:    width,
		logger:   logger.With().Str("component", "rollnumber").Logger(),
	}
}

// Generate returns the next roll number for a section.
func (s *RollNumberService) Generate(ctx context.Context, sectionID string) (string, error) {
	if err := validateID("sectionId", sectionID); err != nil {
		return "", err
	}

	section, err := s.classes.GetSection(ctx, sectionID)
	if err != nil {
		return "", err
	}

	existing, err := s.students.RollNumbersInSection(ctx, sectionID)
	if err != nil {
		return "", fmt.Errorf("error reading section roll numbers: %w", err)
	}

	prefix := strings.ToUpper(strings.TrimSpace(section.Code))
	roll := rollnumber.Format(prefix, rollnumber.NextSequence(existing, prefix), s.width)
	s.logger.Debug().Str("sectionId", sectionID).Str("rollNumber", roll).Int("taken", len(existing)).Msg("Roll number generated")
	return roll, nil
}
