package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

const studentAmina = "99999999-0000-0000-0000-000000000500"

func newAdmissionFixture() (AdmissionService, *fakeStudents) {
	classes := newFakeClasses()
	students := newFakeStudents()
	gen := NewRollNumberService(classes, students, 3, zerolog.Nop())
	return NewAdmissionService(classes, students, gen, zerolog.Nop()), students
}

func admissionRequest(roll string) *dto.AdmissionRequest {
	return &dto.AdmissionRequest{
		FirstName:   "Amina",
		LastName:    "Rahman",
		DateOfBirth: "2015-03-09",
		ClassID:     classA,
		SectionID:   sectionA,
		RollNumber:  roll,
	}
}

func TestAdmitGeneratesRollNumber(t *testing.T) {
	svc, students := newAdmissionFixture()
	students.put(models.Student{ID: studentAmina, ClassID: models.StringPtr(classA), SectionID: models.StringPtr(sectionA), RollNumber: models.StringPtr("A002")})

	got, err := svc.Admit(context.Background(), admissionRequest(""))
	require.NoError(t, err)

	assert.Equal(t, "A003", got.RollNumber)
	assert.Equal(t, sectionA, got.SectionID)
	require.NotNil(t, got.DateOfBirth)
	assert.Equal(t, 2015, got.DateOfBirth.Year())
	assert.NotEmpty(t, got.ID)
}

func TestAdmitKeepsManualRollNumber(t *testing.T) {
	svc, _ := newAdmissionFixture()

	got, err := svc.Admit(context.Background(), admissionRequest("A042"))
	require.NoError(t, err)
	assert.Equal(t, "A042", got.RollNumber)
}

func TestAdmitManualRollNumberTaken(t *testing.T) {
	svc, students := newAdmissionFixture()
	students.put(models.Student{ID: studentAmina, ClassID: models.StringPtr(classA), SectionID: models.StringPtr(sectionA), RollNumber: models.StringPtr("A001")})

	_, err := svc.Admit(context.Background(), admissionRequest("A001"))
	assert.ErrorIs(t, err, apperrors.ErrRollNumberTaken)
	assert.Equal(t, 1, students.writes, "manual numbers are not retried")
}

func TestAdmitRetriesGeneratedRollNumber(t *testing.T) {
	svc, students := newAdmissionFixture()
	stolen := 0
	// Another clerk saves the previewed number before each of the first two writes.
	students.steal = func(f *fakeStudents) {
		if stolen >= 2 {
			return
		}
		stolen++
		roll := []string{"A001", "A002"}[stolen-1]
		id := []string{"99999999-0000-0000-0000-000000000601", "99999999-0000-0000-0000-000000000602"}[stolen-1]
		f.put(models.Student{ID: id, ClassID: models.StringPtr(classA), SectionID: models.StringPtr(sectionA), RollNumber: models.StringPtr(roll)})
	}

	got, err := svc.Admit(context.Background(), admissionRequest(""))
	require.NoError(t, err)
	assert.Equal(t, "A003", got.RollNumber)
	assert.Equal(t, 3, students.writes)
}

func TestAdmitValidation(t *testing.T) {
	svc, _ := newAdmissionFixture()
	tests := []struct {
		name    string
		mutate  func(r *dto.AdmissionRequest)
		wantErr error
	}{
		{"missing first name", func(r *dto.AdmissionRequest) { r.FirstName = "" }, apperrors.ErrValidationFailed},
		{"bad roll number", func(r *dto.AdmissionRequest) { r.RollNumber = "A-1" }, apperrors.ErrValidationFailed},
		{"bad date", func(r *dto.AdmissionRequest) { r.DateOfBirth = "09/03/2015" }, apperrors.ErrValidationFailed},
		{"section of another class", func(r *dto.AdmissionRequest) { r.SectionID = sectionX }, apperrors.ErrSectionNotInClass},
		{"unknown class", func(r *dto.AdmissionRequest) { r.ClassID = "33333333-3333-3333-3333-333333333333" }, apperrors.ErrClassNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := admissionRequest("")
			tt.mutate(req)
			_, err := svc.Admit(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReassign(t *testing.T) {
	placed := models.Student{
		ID:         studentAmina,
		FirstName:  "Amina",
		ClassID:    models.StringPtr(classA),
		SectionID:  models.StringPtr(sectionA),
		RollNumber: models.StringPtr("A007"),
	}

	tests := []struct {
		name     string
		req      dto.ReassignRequest
		wantRoll string
		wantErr  error
	}{
		{"same placement keeps roll", dto.ReassignRequest{ClassID: classA, SectionID: sectionA}, "A007", nil},
		{"new section generates roll", dto.ReassignRequest{ClassID: classA, SectionID: sectionB}, "B001", nil},
		{"manual roll wins", dto.ReassignRequest{ClassID: classB, SectionID: sectionX, RollNumber: "X050"}, "X050", nil},
		{"section mismatch", dto.ReassignRequest{ClassID: classB, SectionID: sectionA}, "", apperrors.ErrSectionNotInClass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, students := newAdmissionFixture()
			students.put(placed)

			req := tt.req
			got, err := svc.Reassign(context.Background(), studentAmina, &req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoll, got.RollNumber)
			assert.Equal(t, tt.req.SectionID, got.SectionID)

			stored, err := students.StudentAssignment(context.Background(), studentAmina)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoll, stored.RollNumber)
		})
	}
}

func TestReassignUnknownStudent(t *testing.T) {
	svc, _ := newAdmissionFixture()
	_, err := svc.Reassign(context.Background(), studentAmina, &dto.ReassignRequest{ClassID: classA, SectionID: sectionA})
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = svc.Reassign(context.Background(), "not-a-uuid", &dto.ReassignRequest{ClassID: classA, SectionID: sectionA})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestStudentDetails(t *testing.T) {
	svc, students := newAdmissionFixture()
	students.put(models.Student{ID: studentAmina, FirstName: "Amina", GuardianPhone: models.StringPtr("+880")})

	res := svc.StudentDetails(context.Background(), studentAmina)
	require.True(t, res.IsOk())
	details, _ := res.Value()
	assert.Equal(t, "Amina", details.FirstName)
	assert.Equal(t, "+880", details.GuardianPhone)
	assert.Empty(t, details.SectionID)

	missing := svc.StudentDetails(context.Background(), "99999999-0000-0000-0000-000000000404")
	assert.False(t, missing.IsOk())
	assert.ErrorIs(t, missing.Cause(), apperrors.ErrStudentNotFound)
}
