package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/domain/rollnumber"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
	"github.com/yigit/schooldesk/internal/pkg/validation"
)

// SessionService keeps admission forms open between requests. Each form is a
// rollnumber.Session addressed by a random id and dropped after ttl of inactivity.
type SessionService interface {
	Open(ctx context.Context, req *dto.OpenSessionRequest) (*dto.SessionResponse, error)
	Get(id string) (*dto.SessionResponse, error)
	Select(ctx context.Context, id string, req *dto.SelectPlacementRequest) (*dto.SessionResponse, error)
	SetRollNumber(id string, req *dto.SetRollNumberRequest) (*dto.SessionResponse, error)
	Submit(ctx context.Context, id string, req *dto.SubmitSessionRequest) (*dto.StudentDetailsResponse, error)
	Close(id string)
	Sweep() int
	Start() error
	Stop(ctx context.Context)
}

type sessionEntry struct {
	session   *rollnumber.Session
	expiresAt time.Time
}

type sessionServiceImpl struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry

	generator rollnumber.Generator
	students  rollnumber.StudentSource
	admission AdmissionService
	ttl       time.Duration
	schedule  string
	now       func() time.Time
	cron      *cron.Cron
	logger    zerolog.Logger
}

// NewSessionService creates a new session service. sweepSchedule is a cron spec for
// removing expired sessions.
func NewSessionService(generator rollnumber.Generator, students rollnumber.StudentSource, admission AdmissionService,
	ttl time.Duration, sweepSchedule string, logger zerolog.Logger) SessionService {
	return &sessionServiceImpl{
		sessions:  make(map[string]*sessionEntry),
		generator: generator,
		students:  students,
		admission: admission,
		ttl:       ttl,
		schedule:  sweepSchedule,
		now:       time.Now,
		logger:    logger.With().Str("component", "sessions").Logger(),
	}
}

// Open starts a creation form, or an edit form latched to the student's stored placement.
func (s *sessionServiceImpl) Open(ctx context.Context, req *dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	if req == nil {
		req = &dto.OpenSessionRequest{}
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := s.logger.With().Str("sessionId", id).Logger()

	var session *rollnumber.Session
	if req.StudentID == "" {
		session = rollnumber.NewCreationSession(s.generator, logger)
	} else {
		session = rollnumber.NewEditSession(req.StudentID, s.generator, s.students, logger)
		if err := session.Load(ctx); err != nil {
			return nil, err
		}
	}

	entry := &sessionEntry{session: session, expiresAt: helpers.ExpiresAt(s.now(), s.ttl)}
	s.mu.Lock()
	s.sessions[id] = entry
	s.mu.Unlock()

	logger.Debug().Str("mode", string(session.Mode())).Str("studentId", req.StudentID).Msg("Admission session opened")
	return &dto.SessionResponse{SessionID: id, ExpiresAt: entry.expiresAt, Applied: true, View: session.View()}, nil
}

// touch returns the live session for id and extends its expiry.
func (s *sessionServiceImpl) touch(id string) (*rollnumber.Session, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	now := s.now()
	if !ok || !now.Before(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, time.Time{}, apperrors.ErrSessionNotFound
	}
	entry.expiresAt = helpers.ExpiresAt(now, s.ttl)
	return entry.session, entry.expiresAt, nil
}

// Get returns the current form state.
func (s *sessionServiceImpl) Get(id string) (*dto.SessionResponse, error) {
	session, expiresAt, err := s.touch(id)
	if err != nil {
		return nil, err
	}
	return &dto.SessionResponse{SessionID: id, ExpiresAt: expiresAt, Applied: true, View: session.View()}, nil
}

// Select changes the class/section selection. Applied is false when a newer selection
// arrived while this one was being resolved; View is then the newer state.
func (s *sessionServiceImpl) Select(ctx context.Context, id string, req *dto.SelectPlacementRequest) (*dto.SessionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", apperrors.ErrValidationFailed)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	session, expiresAt, err := s.touch(id)
	if err != nil {
		return nil, err
	}

	view, applied := session.Select(ctx, req.ClassID, req.SectionID)
	return &dto.SessionResponse{SessionID: id, ExpiresAt: expiresAt, Applied: applied, View: view}, nil
}

// SetRollNumber records a manual roll number. Applied is false when the field is read-only.
func (s *sessionServiceImpl) SetRollNumber(id string, req *dto.SetRollNumberRequest) (*dto.SessionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", apperrors.ErrValidationFailed)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	session, expiresAt, err := s.touch(id)
	if err != nil {
		return nil, err
	}

	applied := session.SetRollNumber(req.RollNumber)
	return &dto.SessionResponse{SessionID: id, ExpiresAt: expiresAt, Applied: applied, View: session.View()}, nil
}

// Submit commits the form: creation forms admit a student, edit forms reassign one.
// The session is closed once the write succeeds.
func (s *sessionServiceImpl) Submit(ctx context.Context, id string, req *dto.SubmitSessionRequest) (*dto.StudentDetailsResponse, error) {
	session, _, err := s.touch(id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = &dto.SubmitSessionRequest{}
	}

	current, ok := session.Submittable()
	if !ok {
		return nil, apperrors.NewCustomError(apperrors.ErrConflict, "roll number lookup is still in progress").
			WithCode(string(dto.ErrorCodeRollPending))
	}

	var details *dto.StudentDetailsResponse
	if session.Mode() == rollnumber.ModeCreate {
		details, err = s.admission.Admit(ctx, &dto.AdmissionRequest{
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			DateOfBirth:   req.DateOfBirth,
			GuardianPhone: req.GuardianPhone,
			ClassID:       current.ClassID,
			SectionID:     current.SectionID,
			RollNumber:    current.RollNumber,
		})
	} else {
		details, err = s.admission.Reassign(ctx, session.StudentID(), &dto.ReassignRequest{
			ClassID:    current.ClassID,
			SectionID:  current.SectionID,
			RollNumber: current.RollNumber,
		})
	}
	if err != nil {
		return nil, err
	}

	s.Close(id)
	return details, nil
}

// Close discards a session. Unknown ids are ignored.
func (s *sessionServiceImpl) Close(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Sweep removes expired sessions and returns how many were removed.
func (s *sessionServiceImpl) Sweep() int {
	now := s.now()
	s.mu.Lock()
	removed := 0
	for id, entry := range s.sessions {
		if !now.Before(entry.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	open := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Int("open", open).Msg("Expired admission sessions swept")
	}
	return removed
}

// Start schedules Sweep on the configured cron spec.
func (s *sessionServiceImpl) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.Sweep() }); err != nil {
		return fmt.Errorf("invalid session sweep schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info().Str("schedule", s.schedule).Dur("ttl", s.ttl).Msg("Session sweeper started")
	return nil
}

// Stop halts the sweeper and waits for a running sweep or ctx, whichever ends first.
func (s *sessionServiceImpl) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("Session sweeper did not stop before the deadline")
	}
}
