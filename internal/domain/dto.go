package domain

import "time"

// EventDateLayout is the DD-MM-YY layout used when entering event dates
const EventDateLayout = "02-01-06"

// CreateUserRequest holds the fields of a new user
type CreateUserRequest struct {
	Username string       `validate:"required,max=50"`
	FullName string       `validate:"required,max=100"`
	Email    string       `validate:"required,email,max=255"`
	Password string       `validate:"required,max=72"`
	Phone    string       `validate:"required,phone"`
	Role     UserRoleType `validate:"required,oneof=MANAGER SALES SUPPORT ADMIN"`
}

// UpdateUserRequest replaces the editable fields of a user
type UpdateUserRequest struct {
	Username string       `validate:"required,max=50"`
	FullName string       `validate:"required,max=100"`
	Email    string       `validate:"required,email,max=255"`
	Phone    string       `validate:"required,phone"`
	Role     UserRoleType `validate:"required,oneof=MANAGER SALES SUPPORT ADMIN"`
}

// CreateCustomerRequest holds the fields of a new customer
type CreateCustomerRequest struct {
	FirstName   string `validate:"required,max=50"`
	LastName    string `validate:"required,max=50"`
	Email       string `validate:"required,email,max=255"`
	Phone       string `validate:"required,phone"`
	CompanyName string `validate:"required,max=100"`
}

// UpdateCustomerRequest replaces the editable fields of a customer
type UpdateCustomerRequest struct {
	FirstName   string `validate:"required,max=50"`
	LastName    string `validate:"required,max=50"`
	Email       string `validate:"required,email,max=255"`
	Phone       string `validate:"required,phone"`
	CompanyName string `validate:"required,max=100"`
}

// CreateContractRequest holds the fields of a new contract
type CreateContractRequest struct {
	TotalAmount float64 `validate:"gte=0"`
	IsSigned    bool
}

// UpdateContractRequest carries the optional transitions of a contract.
// A nil field leaves the value untouched.
type UpdateContractRequest struct {
	Sign            *bool
	RemainingAmount *float64 `validate:"omitempty,gte=0"`
}

// CreateEventRequest holds the fields of a new event
type CreateEventRequest struct {
	Name      string    `validate:"required,max=50"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtefield=StartDate"`
	Location  string    `validate:"max=100"`
	Attendees int       `validate:"gt=0"`
	Notes     string    `validate:"max=200"`
}

// EventDetailsRequest holds the fields a support user may edit
type EventDetailsRequest struct {
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtefield=StartDate"`
	Location  string    `validate:"max=100"`
	Attendees int       `validate:"gt=0"`
	Notes     string    `validate:"max=200"`
}

// ContractFilter selects which contracts a listing returns
type ContractFilter int

const (
	ContractFilterNone ContractFilter = iota + 1
	ContractFilterNotSigned
	ContractFilterNotFullyPaid
)

// EventFilter selects which events a listing returns
type EventFilter int

const (
	EventFilterNone EventFilter = iota + 1
	EventFilterMine
	EventFilterNoSupport
)

// CustomerFilter selects which customers a listing returns
type CustomerFilter int

const (
	CustomerFilterAll CustomerFilter = iota + 1
	CustomerFilterMine
)
