package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/domain/schedule"
)

// SettingsSeeder writes the settings row when none exists.
type SettingsSeeder interface {
	EnsureDefault(ctx context.Context, ws schedule.WeeklySchedule, subjectDuration int) (bool, error)
}

// CreateDefaultData stores the default weekly schedule and period duration on first start.
// An existing row is never touched.
func CreateDefaultData(ctx context.Context, settings SettingsSeeder, periodDuration int, lgr zerolog.Logger) error {
	if schedule.ValidatePeriodDuration(periodDuration) != nil {
		periodDuration = schedule.DefaultPeriodDuration
	}

	lgr.Info().Msg("Checking default school settings...")
	created, err := settings.EnsureDefault(ctx, schedule.DefaultWeeklySchedule(), periodDuration)
	if err != nil {
		return fmt.Errorf("failed to seed default settings: %w", err)
	}

	if created {
		lgr.Info().Int("subjectDuration", periodDuration).Msg("Default school settings created")
	} else {
		lgr.Debug().Msg("School settings already present")
	}
	return nil
}
