package rollnumber

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Generator issues the next roll number for a section. Calls are advisory and reserve nothing.
type Generator interface {
	Generate(ctx context.Context, sectionID string) (string, error)
}

// StudentSource reads a student's persisted placement.
type StudentSource interface {
	StudentAssignment(ctx context.Context, studentID string) (Assignment, error)
}

// Assignment is a class/section placement with the roll number held there.
type Assignment struct {
	ClassID    string `json:"classId"`
	SectionID  string `json:"sectionId"`
	RollNumber string `json:"rollNumber"`
}

// Placed reports whether both class and section are set.
func (a Assignment) Placed() bool {
	return a.ClassID != "" && a.SectionID != ""
}

func (a Assignment) samePlacement(classID, sectionID string) bool {
	return a.ClassID == classID && a.SectionID == sectionID
}

// State is the comparison of the current selection against the latched original.
type State string

const (
	StateUnchanged State = "UNCHANGED"
	StateChanged   State = "CHANGED"
)

// Mode tells whether a session edits an existing student or admits a new one.
type Mode string

const (
	ModeCreate Mode = "CREATE"
	ModeEdit   Mode = "EDIT"
)

// View is what the form renders for a session.
type View struct {
	Mode               Mode        `json:"mode"`
	State              State       `json:"state"`
	StudentID          string      `json:"studentId,omitempty"`
	ClassID            string      `json:"classId"`
	SectionID          string      `json:"sectionId"`
	RollNumber         string      `json:"rollNumber"`
	RollNumberEditable bool        `json:"rollNumberEditable"`
	Loading            bool        `json:"loading"`
	SubmitEnabled      bool        `json:"submitEnabled"`
	Token              uint64      `json:"token"`
	Original           *Assignment `json:"original,omitempty"`
}

// Session tracks one open admission form. Selections may arrive concurrently; each
// asynchronous lookup carries a token and only the latest issued token may write.
type Session struct {
	mu sync.Mutex

	mode      Mode
	studentID string
	generator Generator
	students  StudentSource
	logger    zerolog.Logger

	original *Assignment
	current  Assignment
	state    State
	editable bool

	issued  uint64
	pending uint64
}

// NewCreationSession starts a session for a new admission. There is no original to restore.
func NewCreationSession(generator Generator, logger zerolog.Logger) *Session {
	return &Session{
		mode:      ModeCreate,
		generator: generator,
		logger:    logger,
		state:     StateChanged,
		editable:  true,
	}
}

// NewEditSession starts a session for an existing student. Call Load or Latch to set the original.
func NewEditSession(studentID string, generator Generator, students StudentSource, logger zerolog.Logger) *Session {
	return &Session{
		mode:      ModeEdit,
		studentID: studentID,
		generator: generator,
		students:  students,
		logger:    logger.With().Str("studentId", studentID).Logger(),
		state:     StateUnchanged,
	}
}

// Load reads the student record and latches it when it carries both class and section.
func (s *Session) Load(ctx context.Context) error {
	a, err := s.students.StudentAssignment(ctx, s.studentID)
	if err != nil {
		return err
	}
	s.Latch(a.ClassID, a.SectionID, a.RollNumber)
	return nil
}

// Latch records the original placement the first time both ids are non-empty.
// It reports whether this call latched; later calls never overwrite the original.
func (s *Session) Latch(classID, sectionID, rollNumber string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeEdit || s.original != nil {
		return false
	}
	a := Assignment{ClassID: classID, SectionID: sectionID, RollNumber: rollNumber}
	if !a.Placed() {
		return false
	}

	s.original = &a
	s.current = a
	s.state = StateUnchanged
	s.editable = false
	return true
}

// Select applies a class/section change. It blocks on the collaborator call and reports
// whether its result was applied; false means a newer selection superseded it.
func (s *Session) Select(ctx context.Context, classID, sectionID string) (View, bool) {
	s.mu.Lock()
	s.issued++
	token := s.issued
	s.current.ClassID, s.current.SectionID = classID, sectionID
	s.current.RollNumber = ""

	var fetch func(context.Context) (string, error)
	var fallback string

	switch {
	case s.original != nil && s.original.samePlacement(classID, sectionID):
		s.state = StateUnchanged
		s.editable = false
		fallback = s.original.RollNumber
		fetch = s.restore
	case sectionID == "":
		s.state = StateChanged
		s.editable = true
		s.pending = 0
		v := s.viewLocked()
		s.mu.Unlock()
		return v, true
	default:
		s.state = StateChanged
		s.editable = true
		fetch = func(ctx context.Context) (string, error) {
			return s.generator.Generate(ctx, sectionID)
		}
	}
	s.pending = token
	restoring := s.state == StateUnchanged
	s.mu.Unlock()

	roll, err := fetch(ctx)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("classId", classID).
			Str("sectionId", sectionID).
			Uint64("token", token).
			Msg("Roll number lookup failed, continuing with fallback value")
		roll = fallback
	} else if roll == "" && !restoring {
		s.logger.Warn().Str("sectionId", sectionID).Msg("Roll number generator returned an empty value")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.issued {
		s.logger.Debug().Uint64("token", token).Uint64("latest", s.issued).Msg("Discarding stale roll number response")
		return s.viewLocked(), false
	}
	s.current.RollNumber = roll
	s.pending = 0
	return s.viewLocked(), true
}

func (s *Session) restore(ctx context.Context) (string, error) {
	a, err := s.students.StudentAssignment(ctx, s.studentID)
	if err != nil {
		return "", err
	}
	return a.RollNumber, nil
}

// SetRollNumber records a manual edit. Read-only sessions ignore it.
func (s *Session) SetRollNumber(roll string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editable || s.pending != 0 {
		return false
	}
	s.current.RollNumber = roll
	return true
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Current returns the placement the form would submit.
func (s *Session) Current() Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Submittable returns the placement to submit and whether submission is allowed,
// both read under one lock so a lookup cannot land between them.
func (s *Session) Submittable() (Assignment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.pending == 0
}

// StudentID is empty for creation sessions.
func (s *Session) StudentID() string {
	return s.studentID
}

// Mode returns the session mode.
func (s *Session) Mode() Mode {
	return s.mode
}

func (s *Session) viewLocked() View {
	v := View{
		Mode:               s.mode,
		State:              s.state,
		StudentID:          s.studentID,
		ClassID:            s.current.ClassID,
		SectionID:          s.current.SectionID,
		RollNumber:         s.current.RollNumber,
		RollNumberEditable: s.editable && s.pending == 0,
		Loading:            s.pending != 0,
		SubmitEnabled:      s.pending == 0,
		Token:              s.issued,
	}
	if s.original != nil {
		orig := *s.original
		v.Original = &orig
	}
	return v
}
