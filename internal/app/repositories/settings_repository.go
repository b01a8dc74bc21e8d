package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/domain/schedule"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

// settingsRowID is the only row the school_settings table may hold.
const settingsRowID = 1

// StoredSettings is the settings row as persisted. The schedule stays raw so the caller
// decides how to treat malformed content.
type StoredSettings struct {
	WeeklySchedule  json.RawMessage
	SubjectDuration int
	UpdatedAt       time.Time
}

// SettingsRepository reads and writes the singleton settings row
type SettingsRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get returns the stored settings; found is false when the row does not exist yet.
func (r *SettingsRepository) Get(ctx context.Context) (StoredSettings, bool, error) {
	sql, args, err := r.sb.Select("weekly_schedule", "subject_duration", "updated_at").
		From("school_settings").
		Where(squirrel.Eq{"id": settingsRowID}).
		ToSql()
	if err != nil {
		return StoredSettings{}, false, fmt.Errorf("failed to build get settings query: %w", err)
	}

	var s StoredSettings
	var raw []byte
	err = r.db.QueryRow(ctx, sql, args...).Scan(&raw, &s.SubjectDuration, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredSettings{}, false, nil
		}
		logger.Error().Err(err).Msg("Error reading school settings")
		return StoredSettings{}, false, fmt.Errorf("error reading settings: %w", err)
	}
	s.WeeklySchedule = raw
	return s, true, nil
}

// Save upserts the settings row.
func (r *SettingsRepository) Save(ctx context.Context, ws schedule.WeeklySchedule, subjectDuration int) (time.Time, error) {
	encoded, err := json.Marshal(ws)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to encode weekly schedule: %w", err)
	}

	now := time.Now().UTC()
	sql, args, err := r.sb.Insert("school_settings").
		Columns("id", "weekly_schedule", "subject_duration", "updated_at").
		Values(settingsRowID, encoded, subjectDuration, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET weekly_schedule = EXCLUDED.weekly_schedule, " +
			"subject_duration = EXCLUDED.subject_duration, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build save settings query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Msg("Error saving school settings")
		return time.Time{}, fmt.Errorf("error saving settings: %w", err)
	}
	return now, nil
}

// EnsureDefault inserts the settings row if it is missing and reports whether it did.
func (r *SettingsRepository) EnsureDefault(ctx context.Context, ws schedule.WeeklySchedule, subjectDuration int) (bool, error) {
	encoded, err := json.Marshal(ws)
	if err != nil {
		return false, fmt.Errorf("failed to encode weekly schedule: %w", err)
	}

	sql, args, err := r.sb.Insert("school_settings").
		Columns("id", "weekly_schedule", "subject_duration").
		Values(settingsRowID, encoded, subjectDuration).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build default settings query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error inserting default settings: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
