package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/schooldesk/internal/domain/rollnumber"
)

func TestStudentAssignment(t *testing.T) {
	s := &Student{ClassID: StringPtr("A"), SectionID: StringPtr("X"), RollNumber: StringPtr("X001")}
	assert.Equal(t, rollnumber.Assignment{ClassID: "A", SectionID: "X", RollNumber: "X001"}, s.Assignment())

	unplaced := &Student{ClassID: StringPtr("A")}
	assert.False(t, unplaced.Assignment().Placed())
	assert.Nil(t, StringPtr(""))
}

func TestClassTypeValid(t *testing.T) {
	for _, ct := range []ClassType{ClassTypeRegular, ClassTypeSpecial, ClassTypeBreak} {
		assert.True(t, ct.Valid(), ct)
	}
	assert.False(t, ClassType("lab").Valid())
	assert.False(t, ClassType("").Valid())
}
