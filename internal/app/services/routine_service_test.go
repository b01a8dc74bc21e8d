package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

type routineFixture struct {
	svc      RoutineService
	subjects *fakeSubjects
	teachers *fakeTeachers
	routines *fakeRoutines
}

func newRoutineFixture() *routineFixture {
	f := &routineFixture{
		subjects: &fakeSubjects{subjects: []models.Subject{
			{ID: subjMath, ClassID: classA, Name: "Mathematics"},
			{ID: subjArt, ClassID: classB, Name: "Art"},
		}},
		teachers: &fakeTeachers{teachers: []models.Teacher{{ID: teachSam, BranchID: branch, Name: "Sam"}}},
		routines: &fakeRoutines{},
	}
	settings := NewSettingsService(&fakeSettingsStore{stored: storedSettings(weekdaySchedule(), 60)}, nil, time.Minute, 45, zerolog.Nop())
	f.svc = NewRoutineService(newFakeClasses(), f.subjects, f.teachers, f.routines, settings, zerolog.Nop())
	return f
}

func TestRoutineGridLayout(t *testing.T) {
	f := newRoutineFixture()
	f.routines.slots = map[string][]models.RoutineSlot{classA: {
		{ClassID: classA, DayIndex: 0, TimeSlot: "08:00-09:00", SubjectID: models.StringPtr(subjMath), TeacherID: models.StringPtr(teachSam), ClassType: models.ClassTypeRegular},
		{ClassID: classA, DayIndex: 5, TimeSlot: "08:00-09:00", SubjectID: models.StringPtr(subjMath), ClassType: models.ClassTypeRegular},
		{ClassID: classA, DayIndex: 1, TimeSlot: "13:00-14:00", SubjectID: models.StringPtr(subjMath), ClassType: models.ClassTypeRegular},
	}}

	grid, err := f.svc.Grid(context.Background(), classA)
	require.NoError(t, err)

	var names []string
	for _, d := range grid.Days {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday"}, names)
	assert.Equal(t, []string{"08:00-09:00", "09:00-10:00"}, grid.TimeSlots)
	require.Len(t, grid.Cells, 1, "cells on closed days or outside the rows are hidden")
	assert.Equal(t, "Mathematics", grid.Cells[0].SubjectName)
	assert.Equal(t, "Sam", grid.Cells[0].TeacherName)
}

func TestRoutineGridFridayFirst(t *testing.T) {
	f := newRoutineFixture()
	ws := weekdaySchedule()
	ws[5].Open = true
	settings := NewSettingsService(&fakeSettingsStore{stored: storedSettings(ws, 60)}, nil, time.Minute, 45, zerolog.Nop())
	svc := NewRoutineService(newFakeClasses(), f.subjects, f.teachers, f.routines, settings, zerolog.Nop())

	grid, err := svc.Grid(context.Background(), classA)
	require.NoError(t, err)
	require.NotEmpty(t, grid.Days)
	assert.Equal(t, "Friday", grid.Days[0].Name)
	assert.Equal(t, 5, grid.Days[0].Index)
}

func TestRoutineSave(t *testing.T) {
	tests := []struct {
		name    string
		cells   []dto.RoutineCellRequest
		wantErr error
	}{
		{
			name: "valid",
			cells: []dto.RoutineCellRequest{
				{DayIndex: 0, TimeSlot: "08:00-09:00", SubjectID: subjMath, TeacherID: teachSam, ClassType: models.ClassTypeRegular},
				{DayIndex: 0, TimeSlot: "09:00-10:00", ClassType: models.ClassTypeBreak},
			},
		},
		{
			name:    "closed day",
			cells:   []dto.RoutineCellRequest{{DayIndex: 6, TimeSlot: "08:00-09:00", SubjectID: subjMath, ClassType: models.ClassTypeRegular}},
			wantErr: apperrors.ErrSlotOutsideSchedule,
		},
		{
			name:    "unknown slot",
			cells:   []dto.RoutineCellRequest{{DayIndex: 1, TimeSlot: "08:30-09:30", SubjectID: subjMath, ClassType: models.ClassTypeRegular}},
			wantErr: apperrors.ErrSlotOutsideSchedule,
		},
		{
			name:    "break with subject",
			cells:   []dto.RoutineCellRequest{{DayIndex: 1, TimeSlot: "08:00-09:00", SubjectID: subjMath, ClassType: models.ClassTypeBreak}},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "regular without subject",
			cells:   []dto.RoutineCellRequest{{DayIndex: 1, TimeSlot: "08:00-09:00", ClassType: models.ClassTypeSpecial}},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "subject of another class",
			cells:   []dto.RoutineCellRequest{{DayIndex: 1, TimeSlot: "08:00-09:00", SubjectID: subjArt, ClassType: models.ClassTypeRegular}},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name: "duplicate cell",
			cells: []dto.RoutineCellRequest{
				{DayIndex: 2, TimeSlot: "08:00-09:00", ClassType: models.ClassTypeBreak},
				{DayIndex: 2, TimeSlot: "08:00-09:00", ClassType: models.ClassTypeBreak},
			},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "unknown class type",
			cells:   []dto.RoutineCellRequest{{DayIndex: 2, TimeSlot: "08:00-09:00", ClassType: "lab"}},
			wantErr: apperrors.ErrValidationFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRoutineFixture()
			grid, err := f.svc.Save(context.Background(), classA, &dto.SaveRoutineRequest{Cells: tt.cells})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, f.routines.replaced)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, f.routines.replaced)
			assert.Len(t, grid.Cells, len(tt.cells))
			assert.Len(t, f.routines.slots[classA], len(tt.cells))
		})
	}
}

func TestRoutineSaveTeacherConflict(t *testing.T) {
	f := newRoutineFixture()
	f.routines.err = apperrors.NewCustomError(apperrors.ErrTeacherDoubleBooked, "teacher already booked")

	_, err := f.svc.Save(context.Background(), classA, &dto.SaveRoutineRequest{Cells: []dto.RoutineCellRequest{
		{DayIndex: 0, TimeSlot: "08:00-09:00", SubjectID: subjMath, TeacherID: teachSam, ClassType: models.ClassTypeRegular},
	}})
	assert.ErrorIs(t, err, apperrors.ErrTeacherDoubleBooked)
}

func TestRoutineOptionsDegrade(t *testing.T) {
	f := newRoutineFixture()
	f.teachers.err = errors.New("timeout")

	opts, err := f.svc.Options(context.Background(), classA)
	require.NoError(t, err)
	assert.Len(t, opts.Subjects, 1)
	assert.Empty(t, opts.Teachers)
	assert.NotNil(t, opts.Teachers)
	assert.Empty(t, opts.SubjectsError)
	assert.NotEmpty(t, opts.TeachersError)

	_, err = f.svc.Options(context.Background(), "33333333-3333-3333-3333-333333333333")
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}

func TestRoutineExport(t *testing.T) {
	f := newRoutineFixture()
	f.routines.slots = map[string][]models.RoutineSlot{classA: {
		{ClassID: classA, DayIndex: 0, TimeSlot: "08:00-09:00", SubjectID: models.StringPtr(subjMath), TeacherID: models.StringPtr(teachSam), ClassType: models.ClassTypeRegular},
		{ClassID: classA, DayIndex: 1, TimeSlot: "09:00-10:00", ClassType: models.ClassTypeBreak},
	}}

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(context.Background(), classA, &buf))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Routine")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Grade 1", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday"}, rows[0])
	assert.Equal(t, "Mathematics (Sam)", rows[1][1])
	assert.Equal(t, "Break", rows[2][2])
}
