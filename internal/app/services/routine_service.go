package services

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/domain/schedule"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/validation"
	"golang.org/x/sync/errgroup"
)

// RoutineService defines the class routine grid operations
type RoutineService interface {
	Grid(ctx context.Context, classID string) (*dto.RoutineGridResponse, error)
	Save(ctx context.Context, classID string, req *dto.SaveRoutineRequest) (*dto.RoutineGridResponse, error)
	Options(ctx context.Context, classID string) (*dto.AssignmentOptionsResponse, error)
	Export(ctx context.Context, classID string, w io.Writer) error
}

type routineServiceImpl struct {
	classes  ClassStore
	subjects SubjectStore
	teachers TeacherStore
	routines RoutineStore
	settings SettingsService
	logger   zerolog.Logger
}

// NewRoutineService creates a new routine service
func NewRoutineService(classes ClassStore, subjects SubjectStore, teachers TeacherStore, routines RoutineStore,
	settings SettingsService, logger zerolog.Logger) RoutineService {
	return &routineServiceImpl{
		classes:  classes,
		subjects: subjects,
		teachers: teachers,
		routines: routines,
		settings: settings,
		logger:   logger.With().Str("component", "routine").Logger(),
	}
}

// gridFrame is the open columns and shared rows of a routine grid.
type gridFrame struct {
	class    *models.Class
	duration int
	days     []schedule.DisplayDay
	slots    []string
}

func (f gridFrame) hasCell(day int, slot string) bool {
	dayOK := false
	for _, d := range f.days {
		if d.Index == day {
			dayOK = true
			break
		}
	}
	if !dayOK {
		return false
	}
	for _, s := range f.slots {
		if s == slot {
			return true
		}
	}
	return false
}

func (s *routineServiceImpl) frame(ctx context.Context, classID string) (gridFrame, error) {
	if err := validateID("classId", classID); err != nil {
		return gridFrame{}, err
	}
	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return gridFrame{}, err
	}
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return gridFrame{}, err
	}

	days := make([]schedule.DisplayDay, 0, 7)
	for _, d := range snap.WeeklySchedule.DisplayDays() {
		if d.Open {
			days = append(days, d)
		}
	}
	return gridFrame{
		class:    class,
		duration: snap.SubjectDuration,
		days:     days,
		slots:    schedule.Labels(snap.WeeklySchedule.RowSlots(snap.SubjectDuration)),
	}, nil
}

// assignmentLists holds the subjects of a class and the teachers of its branch. Each
// list fails independently.
type assignmentLists struct {
	subjects    []models.Subject
	teachers    []models.Teacher
	subjectsErr error
	teachersErr error
}

// lists loads both assignment lists concurrently.
func (s *routineServiceImpl) lists(ctx context.Context, class *models.Class) assignmentLists {
	var l assignmentLists
	var g errgroup.Group
	g.Go(func() error {
		l.subjects, l.subjectsErr = s.subjects.ListByClass(ctx, class.ID)
		return nil
	})
	g.Go(func() error {
		l.teachers, l.teachersErr = s.teachers.ListByBranch(ctx, class.BranchID)
		return nil
	})
	_ = g.Wait()
	return l
}

// Grid returns the routine of a class laid out over the current school schedule.
// Stored cells outside the current grid are left out.
func (s *routineServiceImpl) Grid(ctx context.Context, classID string) (*dto.RoutineGridResponse, error) {
	f, err := s.frame(ctx, classID)
	if err != nil {
		return nil, err
	}

	stored, err := s.routines.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	l := s.lists(ctx, f.class)
	if l.subjectsErr != nil {
		s.logger.Warn().Err(l.subjectsErr).Str("classId", classID).Msg("Subject names unavailable for routine grid")
	}
	if l.teachersErr != nil {
		s.logger.Warn().Err(l.teachersErr).Str("classId", classID).Msg("Teacher names unavailable for routine grid")
	}
	return buildGrid(f, stored, l.subjects, l.teachers), nil
}

func buildGrid(f gridFrame, stored []models.RoutineSlot, subjects []models.Subject, teachers []models.Teacher) *dto.RoutineGridResponse {
	subjectNames := make(map[string]string, len(subjects))
	for _, sub := range subjects {
		subjectNames[sub.ID] = sub.Name
	}
	teacherNames := make(map[string]string, len(teachers))
	for _, t := range teachers {
		teacherNames[t.ID] = t.Name
	}

	cells := make([]dto.RoutineCell, 0, len(stored))
	for _, slot := range stored {
		if !f.hasCell(slot.DayIndex, slot.TimeSlot) {
			continue
		}
		cell := dto.RoutineCell{DayIndex: slot.DayIndex, TimeSlot: slot.TimeSlot, ClassType: slot.ClassType}
		if slot.SubjectID != nil {
			cell.SubjectID = *slot.SubjectID
			cell.SubjectName = subjectNames[cell.SubjectID]
		}
		if slot.TeacherID != nil {
			cell.TeacherID = *slot.TeacherID
			cell.TeacherName = teacherNames[cell.TeacherID]
		}
		cells = append(cells, cell)
	}

	return &dto.RoutineGridResponse{
		ClassID:        f.class.ID,
		PeriodDuration: f.duration,
		Days:           f.days,
		TimeSlots:      f.slots,
		Cells:          cells,
	}
}

// Save replaces the routine of a class. Cells must sit on an open day and a generated
// time slot; breaks carry no subject or teacher, other cells need a subject of the class.
func (s *routineServiceImpl) Save(ctx context.Context, classID string, req *dto.SaveRoutineRequest) (*dto.RoutineGridResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", apperrors.ErrValidationFailed)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	f, err := s.frame(ctx, classID)
	if err != nil {
		return nil, err
	}
	l := s.lists(ctx, f.class)
	if l.subjectsErr != nil {
		return nil, fmt.Errorf("error loading subjects: %w", l.subjectsErr)
	}
	if l.teachersErr != nil {
		return nil, fmt.Errorf("error loading teachers: %w", l.teachersErr)
	}

	slots, err := routineSlots(f, req.Cells, l.subjects, l.teachers)
	if err != nil {
		return nil, err
	}
	if err := s.routines.Replace(ctx, classID, slots); err != nil {
		return nil, err
	}

	s.logger.Info().Str("classId", classID).Int("cells", len(slots)).Msg("Class routine saved")
	return buildGrid(f, slots, l.subjects, l.teachers), nil
}

func routineSlots(f gridFrame, cells []dto.RoutineCellRequest, subjects []models.Subject, teachers []models.Teacher) ([]models.RoutineSlot, error) {
	knownSubjects := make(map[string]bool, len(subjects))
	for _, sub := range subjects {
		knownSubjects[sub.ID] = true
	}
	knownTeachers := make(map[string]bool, len(teachers))
	for _, t := range teachers {
		knownTeachers[t.ID] = true
	}

	type cellKey struct {
		day  int
		slot string
	}
	seen := make(map[cellKey]bool, len(cells))
	slots := make([]models.RoutineSlot, 0, len(cells))

	for _, c := range cells {
		key := cellKey{c.DayIndex, c.TimeSlot}
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate cell %s %s", apperrors.ErrValidationFailed, schedule.DayName(c.DayIndex), c.TimeSlot)
		}
		seen[key] = true

		if !f.hasCell(c.DayIndex, c.TimeSlot) {
			return nil, apperrors.NewCustomError(apperrors.ErrSlotOutsideSchedule,
				fmt.Sprintf("%s %s is not part of the school schedule", schedule.DayName(c.DayIndex), c.TimeSlot)).
				WithDetails(map[string]interface{}{"dayIndex": c.DayIndex, "timeSlot": c.TimeSlot})
		}

		slot := models.RoutineSlot{ClassID: f.class.ID, DayIndex: c.DayIndex, TimeSlot: c.TimeSlot, ClassType: c.ClassType}
		if c.ClassType == models.ClassTypeBreak {
			if c.SubjectID != "" || c.TeacherID != "" {
				return nil, fmt.Errorf("%w: break at %s %s cannot have a subject or teacher", apperrors.ErrValidationFailed, schedule.DayName(c.DayIndex), c.TimeSlot)
			}
			slots = append(slots, slot)
			continue
		}

		if c.SubjectID == "" {
			return nil, fmt.Errorf("%w: %s %s needs a subject", apperrors.ErrValidationFailed, schedule.DayName(c.DayIndex), c.TimeSlot)
		}
		if !knownSubjects[c.SubjectID] {
			return nil, fmt.Errorf("%w: subject %s is not taught in this class", apperrors.ErrValidationFailed, c.SubjectID)
		}
		if c.TeacherID != "" && !knownTeachers[c.TeacherID] {
			return nil, fmt.Errorf("%w: teacher %s does not belong to this branch", apperrors.ErrValidationFailed, c.TeacherID)
		}
		slot.SubjectID = models.StringPtr(c.SubjectID)
		slot.TeacherID = models.StringPtr(c.TeacherID)
		slots = append(slots, slot)
	}
	return slots, nil
}

// Options lists the subjects and teachers a cell can be assigned. Each list degrades to
// empty on failure so the dialog can still open.
func (s *routineServiceImpl) Options(ctx context.Context, classID string) (*dto.AssignmentOptionsResponse, error) {
	if err := validateID("classId", classID); err != nil {
		return nil, err
	}
	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	l := s.lists(ctx, class)
	resp := &dto.AssignmentOptionsResponse{Subjects: l.subjects, Teachers: l.teachers}
	if l.subjectsErr != nil || resp.Subjects == nil {
		resp.Subjects = []models.Subject{}
	}
	if l.teachersErr != nil || resp.Teachers == nil {
		resp.Teachers = []models.Teacher{}
	}
	if l.subjectsErr != nil {
		s.logger.Warn().Err(l.subjectsErr).Str("classId", classID).Msg("Failed to load subject options")
		resp.SubjectsError = "subjects could not be loaded"
	}
	if l.teachersErr != nil {
		s.logger.Warn().Err(l.teachersErr).Str("classId", classID).Msg("Failed to load teacher options")
		resp.TeachersError = "teachers could not be loaded"
	}
	return resp, nil
}

// Export writes the routine grid as an xlsx workbook: one column per open day, one row
// per time slot.
func (s *routineServiceImpl) Export(ctx context.Context, classID string, w io.Writer) error {
	grid, err := s.Grid(ctx, classID)
	if err != nil {
		return err
	}
	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to close workbook")
		}
	}()

	sheet := "Routine"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("error naming routine sheet: %w", err)
	}

	header := make([]interface{}, 0, len(grid.Days)+1)
	header = append(header, class.Name)
	for _, d := range grid.Days {
		header = append(header, d.Name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("error writing routine header: %w", err)
	}

	type cellKey struct {
		day  int
		slot string
	}
	byCell := make(map[cellKey]dto.RoutineCell, len(grid.Cells))
	for _, c := range grid.Cells {
		byCell[cellKey{c.DayIndex, c.TimeSlot}] = c
	}

	for i, slot := range grid.TimeSlots {
		row := make([]interface{}, 0, len(grid.Days)+1)
		row = append(row, slot)
		for _, d := range grid.Days {
			row = append(row, cellText(byCell[cellKey{d.Index, slot}]))
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("error writing routine row: %w", err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "H", 18); err != nil {
		return fmt.Errorf("error sizing routine columns: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func cellText(c dto.RoutineCell) string {
	switch {
	case c.ClassType == models.ClassTypeBreak:
		return "Break"
	case c.SubjectName == "" && c.SubjectID == "":
		return ""
	}
	text := c.SubjectName
	if text == "" {
		text = c.SubjectID
	}
	if c.TeacherName != "" {
		text += " (" + c.TeacherName + ")"
	}
	if c.ClassType == models.ClassTypeSpecial {
		text += " *"
	}
	return text
}
