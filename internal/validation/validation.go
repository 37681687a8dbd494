// Package validation wraps go-playground/validator with the CRM's field rules
// and turns validator failures into human-readable messages.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/epic-events/crm/internal/domain"
	"github.com/go-playground/validator/v10"
)

// phonePattern accepts French numbers in international form
var phonePattern = regexp.MustCompile(`^\+33[1-9][0-9]{8}$`)

var validate = New()

// New returns a validator with the CRM's custom tags registered
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// Struct validates a request struct
func Struct(s interface{}) error {
	return validate.Struct(s)
}

// Email validates a single email address
func Email(email string) error {
	return field(email, "required,email,max=255", "email")
}

// Phone validates a single phone number
func Phone(phone string) error {
	return field(phone, "required,phone", "phone")
}

// Password validates a new password
func Password(password string) error {
	return field(password, "required,max=72", "password")
}

// Amount parses and validates a non-negative amount
func Amount(input string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, fmt.Errorf("amount: %s", domain.GetValidationMessage("numeric"))
	}
	if err := field(value, "gte=0", "amount"); err != nil {
		return 0, err
	}
	return value, nil
}

// PositiveInt parses and validates a strictly positive integer
func PositiveInt(input, name string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("%s: %s", name, domain.GetValidationMessage("numeric"))
	}
	if err := field(value, "gt=0", name); err != nil {
		return 0, err
	}
	return value, nil
}

// Date parses a DD-MM-YY date
func Date(input string) (time.Time, error) {
	value := strings.TrimSpace(input)
	if err := field(value, "required,datetime="+domain.EventDateLayout, "date"); err != nil {
		return time.Time{}, err
	}
	return time.Parse(domain.EventDateLayout, value)
}

// Period checks that start is not after end
func Period(start, end time.Time) error {
	if start.After(end) {
		return errors.New("period not valid: start date is after end date")
	}
	return nil
}

func field(value interface{}, tag, name string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Errorf("%s: %s", name, FormatFieldError(ve[0]))
	}
	return fmt.Errorf("%s: %w", name, err)
}

// Message flattens a validator error into a single line, one clause per field
func Message(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, toFieldName(fe.Field())+": "+FormatFieldError(fe))
	}
	return strings.Join(parts, "; ")
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "Must be a valid email address"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// toFieldName lowercases the first letter of a struct field name
func toFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
