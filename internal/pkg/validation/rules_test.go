package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	StudentID string `validate:"studentid"`
	CourseID  string `validate:"courseid"`
	Name      string `validate:"notblank"`
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	assert.NoError(t, v.Struct(sample{StudentID: "TP061234", CourseID: "CS", Name: "Aina"}))

	tests := []struct {
		name string
		in   sample
		tag  string
	}{
		{"short student id", sample{StudentID: "TP0612", CourseID: "CS", Name: "x"}, TagStudentID},
		{"digits only student id", sample{StudentID: "12345678", CourseID: "CS", Name: "x"}, TagStudentID},
		{"course id with space", sample{StudentID: "TP061234", CourseID: "C S", Name: "x"}, TagCourseID},
		{"blank name", sample{StudentID: "TP061234", CourseID: "CS", Name: "   "}, TagNotBlank},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.tag, verrs[0].Tag())
		})
	}
}

func TestRegisterWithGin(t *testing.T) {
	assert.NoError(t, RegisterWithGin())
}
