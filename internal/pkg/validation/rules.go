// Package validation registers the portal's custom validator tags.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Student identifier: two letters followed by six digits, e.g. TP061234
	IdentifierPattern = `^[A-Za-z]{2}\d{6}$`

	// Course ids as used for courses/<id> documents
	CourseIDPattern = `^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Identifier *regexp.Regexp
	CourseID   *regexp.Regexp
}{
	Identifier: regexp.MustCompile(IdentifierPattern),
	CourseID:   regexp.MustCompile(CourseIDPattern),
}

// Tag names
const (
	TagStudentID = "studentid"
	TagCourseID  = "courseid"
	TagNotBlank  = "notblank"
)

// Register adds the custom tags to v
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagStudentID: func(fl validator.FieldLevel) bool {
			return CompiledPatterns.Identifier.MatchString(fl.Field().String())
		},
		TagCourseID: func(fl validator.FieldLevel) bool {
			return CompiledPatterns.CourseID.MatchString(fl.Field().String())
		},
		TagNotBlank: func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %q validation: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin adds the custom tags to gin's default binding validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}
