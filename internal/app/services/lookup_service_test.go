package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

func TestLookupService(t *testing.T) {
	teachers := &fakeTeachers{teachers: []models.Teacher{{ID: teachSam, BranchID: branch, Name: "Sam"}}}
	svc := NewLookupService(newFakeClasses(), &fakeSubjects{subjects: []models.Subject{{ID: subjMath, ClassID: classA, Name: "Mathematics"}}}, teachers)
	ctx := context.Background()

	classes := svc.Classes(ctx, "org-1")
	require.True(t, classes.IsOk())
	assert.Len(t, classes.ValueOr(nil), 2)

	sections := svc.Sections(ctx, classA)
	require.True(t, sections.IsOk())
	assert.Len(t, sections.ValueOr(nil), 2)

	unknown := svc.Sections(ctx, "33333333-3333-3333-3333-333333333333")
	assert.False(t, unknown.IsOk())
	assert.ErrorIs(t, unknown.Cause(), apperrors.ErrClassNotFound)

	malformed := svc.Sections(ctx, "class-a")
	assert.ErrorIs(t, malformed.Cause(), apperrors.ErrValidationFailed)

	subjects := svc.Subjects(ctx, classA)
	assert.Len(t, subjects.ValueOr(nil), 1)

	assert.False(t, svc.Teachers(ctx, "").IsOk())

	teachers.err = errors.New("database unavailable")
	failed := svc.Teachers(ctx, branch)
	assert.False(t, failed.IsOk())
	assert.Contains(t, failed.Message(), "database unavailable")
}
