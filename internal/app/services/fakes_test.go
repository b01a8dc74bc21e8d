package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/domain/rollnumber"
	"github.com/yigit/schooldesk/internal/domain/schedule"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

const (
	classA   = "11111111-1111-1111-1111-111111111111"
	classB   = "22222222-2222-2222-2222-222222222222"
	sectionA = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	sectionB = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	sectionX = "cccccccc-cccc-cccc-cccc-cccccccccccc"
	branch   = "branch-1"
	subjMath = "51515151-5151-5151-5151-515151515151"
	subjArt  = "52525252-5252-5252-5252-525252525252"
	teachSam = "71717171-7171-7171-7171-717171717171"
)

type fakeClasses struct {
	classes  map[string]models.Class
	sections map[string]models.Section
}

func newFakeClasses() *fakeClasses {
	return &fakeClasses{
		classes: map[string]models.Class{
			classA: {ID: classA, OrgID: "org-1", BranchID: branch, Name: "Grade 1"},
			classB: {ID: classB, OrgID: "org-1", BranchID: branch, Name: "Grade 2"},
		},
		sections: map[string]models.Section{
			sectionA: {ID: sectionA, ClassID: classA, Name: "Rose", Code: "a"},
			sectionB: {ID: sectionB, ClassID: classA, Name: "Lily", Code: "B"},
			sectionX: {ID: sectionX, ClassID: classB, Name: "Iris", Code: "X"},
		},
	}
}

func (f *fakeClasses) ListClasses(_ context.Context, orgID string) ([]models.Class, error) {
	var out []models.Class
	for _, c := range f.classes {
		if orgID == "" || c.OrgID == orgID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeClasses) GetClass(_ context.Context, id string) (*models.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, apperrors.ErrClassNotFound
	}
	return &c, nil
}

func (f *fakeClasses) ListSections(_ context.Context, classID string) ([]models.Section, error) {
	var out []models.Section
	for _, s := range f.sections {
		if s.ClassID == classID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeClasses) GetSection(_ context.Context, id string) (*models.Section, error) {
	s, ok := f.sections[id]
	if !ok {
		return nil, apperrors.ErrSectionNotFound
	}
	return &s, nil
}

// fakeStudents enforces the (section, roll number) uniqueness the database does.
type fakeStudents struct {
	mu       sync.Mutex
	students map[string]*models.Student
	nextID   int
	// steal is applied before each Create/UpdatePlacement, simulating a concurrent writer.
	steal func(f *fakeStudents)
	writes int
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{students: map[string]*models.Student{}}
}

func (f *fakeStudents) put(s models.Student) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.students[s.ID] = &s
}

func (f *fakeStudents) takenLocked(exceptID, sectionID, roll string) bool {
	for id, s := range f.students {
		if id == exceptID {
			continue
		}
		a := s.Assignment()
		if a.SectionID == sectionID && a.RollNumber == roll {
			return true
		}
	}
	return false
}

func (f *fakeStudents) StudentAssignment(_ context.Context, id string) (rollnumber.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok {
		return rollnumber.Assignment{}, apperrors.ErrStudentNotFound
	}
	return s.Assignment(), nil
}

func (f *fakeStudents) GetByID(_ context.Context, id string) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStudents) Create(_ context.Context, s *models.Student) (string, error) {
	if f.steal != nil {
		f.steal(f)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	a := s.Assignment()
	if f.takenLocked("", a.SectionID, a.RollNumber) {
		return "", apperrors.ErrRollNumberTaken
	}
	f.nextID++
	s.ID = fmt.Sprintf("99999999-0000-0000-0000-%012d", f.nextID)
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	f.students[s.ID] = &cp
	return s.ID, nil
}

func (f *fakeStudents) UpdatePlacement(_ context.Context, id string, a rollnumber.Assignment) error {
	if f.steal != nil {
		f.steal(f)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	s, ok := f.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if f.takenLocked(id, a.SectionID, a.RollNumber) {
		return apperrors.ErrRollNumberTaken
	}
	s.ClassID = models.StringPtr(a.ClassID)
	s.SectionID = models.StringPtr(a.SectionID)
	s.RollNumber = models.StringPtr(a.RollNumber)
	return nil
}

func (f *fakeStudents) RollNumbersInSection(_ context.Context, sectionID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.students {
		a := s.Assignment()
		if a.SectionID == sectionID && a.RollNumber != "" {
			out = append(out, a.RollNumber)
		}
	}
	return out, nil
}

type fakeSettingsStore struct {
	mu     sync.Mutex
	stored *repositories.StoredSettings
	reads  int
	err    error
}

func (f *fakeSettingsStore) Get(_ context.Context) (repositories.StoredSettings, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return repositories.StoredSettings{}, false, f.err
	}
	if f.stored == nil {
		return repositories.StoredSettings{}, false, nil
	}
	return *f.stored, true, nil
}

func (f *fakeSettingsStore) Save(_ context.Context, ws schedule.WeeklySchedule, subjectDuration int) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := json.Marshal(ws)
	if err != nil {
		return time.Time{}, err
	}
	now := time.Now().UTC()
	f.stored = &repositories.StoredSettings{WeeklySchedule: raw, SubjectDuration: subjectDuration, UpdatedAt: now}
	return now, nil
}

type fakeSubjects struct {
	subjects []models.Subject
	err      error
}

func (f *fakeSubjects) ListByClass(_ context.Context, classID string) ([]models.Subject, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Subject
	for _, s := range f.subjects {
		if s.ClassID == classID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeTeachers struct {
	teachers []models.Teacher
	err      error
}

func (f *fakeTeachers) ListByBranch(_ context.Context, branchID string) ([]models.Teacher, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Teacher
	for _, t := range f.teachers {
		if t.BranchID == branchID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeRoutines struct {
	slots    map[string][]models.RoutineSlot
	replaced int
	err      error
}

func (f *fakeRoutines) ListByClass(_ context.Context, classID string) ([]models.RoutineSlot, error) {
	return f.slots[classID], nil
}

func (f *fakeRoutines) Replace(_ context.Context, classID string, slots []models.RoutineSlot) error {
	if f.err != nil {
		return f.err
	}
	if f.slots == nil {
		f.slots = map[string][]models.RoutineSlot{}
	}
	f.slots[classID] = slots
	f.replaced++
	return nil
}

// weekdaySchedule opens Sunday to Thursday 08:00-10:00 and closes Friday and Saturday.
func weekdaySchedule() schedule.WeeklySchedule {
	var ws schedule.WeeklySchedule
	for i := range ws {
		ws[i] = schedule.ScheduleDay{Open: i <= 4, Start: "08:00", End: "10:00"}
	}
	return ws
}

func storedSettings(ws schedule.WeeklySchedule, duration int) *repositories.StoredSettings {
	raw, _ := json.Marshal(ws)
	return &repositories.StoredSettings{WeeklySchedule: raw, SubjectDuration: duration}
}
