package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/domain/schedule"
)

type recordingSeeder struct {
	ws       schedule.WeeklySchedule
	duration int
	created  bool
	err      error
}

func (r *recordingSeeder) EnsureDefault(_ context.Context, ws schedule.WeeklySchedule, d int) (bool, error) {
	r.ws, r.duration = ws, d
	return r.created, r.err
}

func TestCreateDefaultData(t *testing.T) {
	seeder := &recordingSeeder{created: true}
	require.NoError(t, CreateDefaultData(context.Background(), seeder, 50, zerolog.Nop()))
	assert.Equal(t, 50, seeder.duration)
	assert.Equal(t, schedule.DefaultWeeklySchedule(), seeder.ws)

	require.NoError(t, CreateDefaultData(context.Background(), seeder, 13, zerolog.Nop()))
	assert.Equal(t, schedule.DefaultPeriodDuration, seeder.duration, "invalid durations fall back")

	seeder.err = errors.New("read-only transaction")
	assert.ErrorContains(t, CreateDefaultData(context.Background(), seeder, 45, zerolog.Nop()), "read-only")
}
