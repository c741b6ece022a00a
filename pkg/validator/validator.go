package validator

import (
	"context"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator"
)

var (
	global     *validator.Validate
	phoneRegex = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

var studyYears = map[string]struct{}{
	"1st": {}, "2nd": {}, "3rd": {}, "4th": {}, "5th": {}, "postgrad": {},
}

const (
	ErrFieldRequired     = "This field is required"
	ErrInvalidEmail      = "Please enter a valid email address"
	ErrInvalidPhone      = "Phone number must be 10 digits starting with 6-9"
	ErrInvalidYear       = "Please select a valid year of study"
	ErrInvalidChoice     = "Please select a valid option"
	ErrTooFewItems       = "Select at least one event"
	ErrUnknownValidation = "Please check this field"
)

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("emailshape", validateEmailShape)
	_ = v.RegisterValidation("indianphone", validateIndianPhone)
	_ = v.RegisterValidation("studyyear", validateStudyYear)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

// fieldName reports errors under the wire name (form or json tag), not the
// Go struct field name.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateEmailShape(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func validateIndianPhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

func validateStudyYear(fl validator.FieldLevel) bool {
	_, ok := studyYears[fl.Field().String()]
	return ok
}

// FieldErrors maps a wire field name to its user-facing message. All failed
// fields are reported together, not one at a time.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrors) == 0 {
		return nil
	}
	fields := make(FieldErrors, len(vErrors))
	for _, ve := range vErrors {
		if _, seen := fields[ve.Field()]; seen {
			continue
		}
		fields[ve.Field()] = messageFor(ve.Tag())
	}
	return fields
}

func messageFor(tag string) string {
	switch tag {
	case "required", "notblank":
		return ErrFieldRequired
	case "emailshape":
		return ErrInvalidEmail
	case "indianphone":
		return ErrInvalidPhone
	case "studyyear":
		return ErrInvalidYear
	case "oneof":
		return ErrInvalidChoice
	case "min":
		return ErrTooFewItems
	default:
		return ErrUnknownValidation
	}
}
