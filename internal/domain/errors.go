package domain

// ErrorKind classifies a failure for the display layer
type ErrorKind string

// Error kinds, one per class of recoverable failure
const (
	ErrorKindValidation ErrorKind = "validation_error"
	ErrorKindNotFound   ErrorKind = "not_found"
	ErrorKindStateGuard ErrorKind = "state_guard"
	ErrorKindPermission ErrorKind = "forbidden"
	ErrorKindAuth       ErrorKind = "unauthorized"
	ErrorKindStorage    ErrorKind = "storage_error"
	ErrorKindInternal   ErrorKind = "internal_error"
)

// ValidationMessages provides human-readable validation error messages
// These map validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"phone":    "Must be a phone number starting with +33 followed by 9 digits",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"gte":      "Must be greater than or equal to minimum value",
	"gt":       "Must be greater than minimum value",
	"lte":      "Must be less than or equal to maximum value",
	"lt":       "Must be less than maximum value",
	"gtefield": "Must not be before the start date",
	"oneof":    "Must be one of the allowed values",
	"numeric":  "Must be a numeric value",
	"datetime": "Must be a date formatted DD-MM-YY",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}
