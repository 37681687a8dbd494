package service

import (
	"errors"
	"fmt"

	"github.com/epic-events/crm/internal/domain"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Common service errors
var (
	// ErrPermissionDenied is returned when the actor's role or ownership does not allow an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a unique value is already used
	ErrConflict = errors.New("already exists")

	// ErrUnauthorized is returned when no user is bound to the context
	ErrUnauthorized = errors.New("no user is currently logged in")

	// ErrStorage wraps failures of the underlying store; the transaction was rolled back
	ErrStorage = errors.New("storage error")
)

// Not-found errors per entity
var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
	ErrContractNotFound = fmt.Errorf("contract %w", ErrNotFound)
	ErrEventNotFound    = fmt.Errorf("event %w", ErrNotFound)
)

// Workflow state guards
var (
	// ErrContractClosed is returned for any mutation of a signed, fully paid contract
	ErrContractClosed = errors.New("contract already signed and paid")

	// ErrContractNotSigned is returned when creating an event on an unsigned contract
	ErrContractNotSigned = errors.New("the contract hasn't been signed, so it's impossible to create an event")

	// ErrContractHasEvent is returned when the contract already has its event
	ErrContractHasEvent = errors.New("this contract already has an event")

	// ErrSupportAlreadyAssigned is returned when the event already has a support user
	ErrSupportAlreadyAssigned = errors.New("a support user is already assigned to this event")

	// ErrSupportAlreadyDefined is returned when an update supplies both a new
	// support user and an already-assigned support context
	ErrSupportAlreadyDefined = errors.New("a support user is already defined")
)

// Contract amount and role checks
var (
	ErrOverPayment       = fmt.Errorf("%w: remaining amount cannot exceed the total amount", ErrInvalidInput)
	ErrRemainingIncrease = fmt.Errorf("%w: remaining amount can only decrease", ErrInvalidInput)
	ErrUnsignContract    = fmt.Errorf("%w: a signed contract cannot be unsigned", ErrInvalidInput)
	ErrNotSupportUser    = fmt.Errorf("%w: this user is not a support user", ErrInvalidInput)
	ErrSelfDelete        = fmt.Errorf("%w: you cannot delete your own account", ErrInvalidInput)
	ErrInvalidRole       = fmt.Errorf("%w: unknown role", ErrInvalidInput)
)

var stateGuards = []error{
	ErrContractClosed,
	ErrContractNotSigned,
	ErrContractHasEvent,
	ErrSupportAlreadyAssigned,
	ErrSupportAlreadyDefined,
}

// Kind classifies err for the display layer
func Kind(err error) domain.ErrorKind {
	if err == nil {
		return ""
	}
	var ve validator.ValidationErrors
	switch {
	case errors.Is(err, ErrStorage):
		return domain.ErrorKindStorage
	case errors.Is(err, ErrNotFound):
		return domain.ErrorKindNotFound
	case errors.Is(err, ErrPermissionDenied):
		return domain.ErrorKindPermission
	case errors.Is(err, ErrUnauthorized):
		return domain.ErrorKindAuth
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrConflict), errors.As(err, &ve):
		return domain.ErrorKindValidation
	}
	for _, guard := range stateGuards {
		if errors.Is(err, guard) {
			return domain.ErrorKindStateGuard
		}
	}
	return domain.ErrorKindInternal
}

// IsRecoverable reports whether the user may correct their input and retry
func IsRecoverable(err error) bool {
	switch Kind(err) {
	case domain.ErrorKindValidation, domain.ErrorKindNotFound:
		return true
	}
	return false
}

// storageError wraps a store failure with the operation that hit it
func storageError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStorage, err)
}

// lookupError translates gorm.ErrRecordNotFound into notFound and wraps anything else as storage
func lookupError(op string, err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return storageError(op, err)
}

// invalidInput wraps a validator failure
func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// txError passes classified errors through and wraps the rest, such as a failed
// commit, as storage errors
func txError(op string, err error) error {
	if err == nil || Kind(err) != domain.ErrorKindInternal {
		return err
	}
	return storageError(op, err)
}
