package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/domain/schedule"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/cache"
	"github.com/yigit/schooldesk/internal/pkg/validation"
	"golang.org/x/sync/singleflight"
)

const settingsCacheKey = "settings:v1"

// Snapshot is the effective school schedule after fallbacks are applied.
type Snapshot struct {
	WeeklySchedule  schedule.WeeklySchedule `json:"weeklySchedule"`
	SubjectDuration int                     `json:"subjectDuration"`
	Defaulted       bool                    `json:"defaulted"`
}

// SettingsService defines the interface for school settings operations
type SettingsService interface {
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	Update(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
	Snapshot(ctx context.Context) (Snapshot, error)
	PreviewSlots(req *dto.TimeSlotPreviewRequest) ([]string, error)
}

type settingsServiceImpl struct {
	store           SettingsStore
	cache           cache.Store
	ttl             time.Duration
	defaultDuration int
	group           singleflight.Group
	// generation is bumped by every save; a load that overlapped one must not be cached.
	generation atomic.Uint64
	logger     zerolog.Logger
}

// NewSettingsService creates a new settings service. A persisted duration outside the
// allowed range is replaced by defaultDuration.
func NewSettingsService(store SettingsStore, c cache.Store, ttl time.Duration, defaultDuration int, logger zerolog.Logger) SettingsService {
	if schedule.ValidatePeriodDuration(defaultDuration) != nil {
		defaultDuration = schedule.DefaultPeriodDuration
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &settingsServiceImpl{
		store:           store,
		cache:           c,
		ttl:             ttl,
		defaultDuration: defaultDuration,
		logger:          logger.With().Str("component", "settings").Logger(),
	}
}

// Snapshot returns the effective settings, reading through the cache.
func (s *settingsServiceImpl) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.cache.Get(ctx, settingsCacheKey, &snap)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Err(err).Msg("Settings cache read failed, loading from database")
	}

	v, err, _ := s.group.Do(settingsCacheKey, func() (interface{}, error) {
		gen := s.generation.Load()
		loaded, err := s.load(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		if s.generation.Load() != gen {
			s.logger.Debug().Msg("Settings changed during load, not caching")
			return loaded, nil
		}
		if err := s.cache.Set(ctx, settingsCacheKey, loaded, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to cache settings")
		}
		return loaded, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

func (s *settingsServiceImpl) load(ctx context.Context) (Snapshot, error) {
	stored, found, err := s.store.Get(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("error retrieving settings: %w", err)
	}
	if !found {
		return Snapshot{
			WeeklySchedule:  schedule.DefaultWeeklySchedule(),
			SubjectDuration: s.defaultDuration,
			Defaulted:       true,
		}, nil
	}

	ws, ok := schedule.DecodeWeeklySchedule(stored.WeeklySchedule)
	if !ok {
		s.logger.Warn().Int("bytes", len(stored.WeeklySchedule)).Msg("Stored weekly schedule is malformed, serving default schedule")
	}

	duration := stored.SubjectDuration
	if err := schedule.ValidatePeriodDuration(duration); err != nil {
		s.logger.Warn().Int("subjectDuration", duration).Int("fallback", s.defaultDuration).Msg("Stored period duration is invalid")
		duration = s.defaultDuration
	}

	return Snapshot{WeeklySchedule: ws, SubjectDuration: duration, Defaulted: !ok}, nil
}

// Get returns the settings with derived active days and time slots.
func (s *settingsServiceImpl) Get(ctx context.Context) (*dto.SettingsResponse, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(snap), nil
}

// Update validates and persists new settings, then drops the cached copy.
func (s *settingsServiceImpl) Update(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", apperrors.ErrValidationFailed)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var ws schedule.WeeklySchedule
	copy(ws[:], req.WeeklySchedule)
	if err := ws.Validate(); err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, err.Error())
	}

	if _, err := s.store.Save(ctx, ws, req.SubjectDuration); err != nil {
		return nil, fmt.Errorf("error saving settings: %w", err)
	}
	s.generation.Add(1)
	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate cached settings")
	}
	s.group.Forget(settingsCacheKey)

	s.logger.Info().Strs("activeDays", ws.ActiveDays()).Int("subjectDuration", req.SubjectDuration).Msg("School settings updated")
	return toSettingsResponse(Snapshot{WeeklySchedule: ws, SubjectDuration: req.SubjectDuration}), nil
}

// PreviewSlots returns the labels a single window would be cut into.
func (s *settingsServiceImpl) PreviewSlots(req *dto.TimeSlotPreviewRequest) ([]string, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	labels, err := schedule.GenerateSlotLabels(req.Start, req.End, req.Duration)
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, err.Error())
	}
	return labels, nil
}

func toSettingsResponse(snap Snapshot) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		WeeklySchedule:  snap.WeeklySchedule,
		SubjectDuration: snap.SubjectDuration,
		ActiveDays:      snap.WeeklySchedule.ActiveDays(),
		TimeSlots:       schedule.Labels(snap.WeeklySchedule.RowSlots(snap.SubjectDuration)),
		Defaulted:       snap.Defaulted,
	}
}
