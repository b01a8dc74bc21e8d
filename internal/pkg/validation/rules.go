package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/schooldesk/internal/domain/schedule"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// RollNumberPattern accepts 1 to 32 visible characters with inner spaces allowed. Roll numbers
	// are opaque: generated ones take the section code as prefix and stored ones may predate it.
	RollNumberPattern = `^[\p{L}\p{M}\p{N}\p{P}\p{S}](?:[\p{L}\p{M}\p{N}\p{P}\p{S} ]{0,30}[\p{L}\p{M}\p{N}\p{P}\p{S}])?$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	RollNumber *regexp.Regexp
}{
	RollNumber: regexp.MustCompile(RollNumberPattern),
}

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the school rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("roll_number", func(fl validator.FieldLevel) bool {
			return CompiledPatterns.RollNumber.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == schedule.FullDay {
				return true
			}
			_, err := schedule.ParseClock(s)
			return err == nil
		})
		_ = v.RegisterValidation("period_duration", func(fl validator.FieldLevel) bool {
			return schedule.ValidatePeriodDuration(int(fl.Field().Int())) == nil
		})
		instance = v
	})
	return instance
}

// FieldError is one failed rule, keyed by the JSON field path.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Struct validates s and returns an ErrValidationFailed CustomError listing the failed fields.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, err.Error())
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: trimRoot(fe.Namespace()), Rule: fe.Tag(), Param: fe.Param()})
	}

	msg := "invalid " + fields[0].Field
	if len(fields) > 1 {
		msg += " and other fields"
	}
	return apperrors.NewCustomError(apperrors.ErrValidationFailed, msg).
		WithDetails(map[string]interface{}{"fields": fields})
}

// trimRoot drops the struct type name validator puts in front of the field path.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
