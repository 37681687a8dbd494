package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the surrogate key shared by every CRM entity
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an id when the caller did not
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserRoleType is the stable role identifier used for menu dispatch and as the roles foreign key
type UserRoleType string

const (
	RoleManager UserRoleType = "MANAGER"
	RoleSales   UserRoleType = "SALES"
	RoleSupport UserRoleType = "SUPPORT"
	RoleAdmin   UserRoleType = "ADMIN"
)

// AllRoles lists the four roles in menu order
var AllRoles = []UserRoleType{RoleManager, RoleSales, RoleSupport, RoleAdmin}

// IsValid reports whether r is one of the four known roles
func (r UserRoleType) IsValid() bool {
	switch r {
	case RoleManager, RoleSales, RoleSupport, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts a role code in any case
func ParseRole(s string) (UserRoleType, bool) {
	r := UserRoleType(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// Role is a row of the roles table, keyed by its code
type Role struct {
	Code UserRoleType `gorm:"type:varchar(20);primaryKey"`
	Name string       `gorm:"type:varchar(50);not null"`
}

// User is an authenticated actor of the CRM
type User struct {
	BaseModel
	Username     string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email        string       `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string       `gorm:"type:varchar(100);not null;column:password_hash"`
	FullName     string       `gorm:"type:varchar(100);not null;column:full_name"`
	Phone        string       `gorm:"type:varchar(20);not null"`
	Role         UserRoleType `gorm:"type:varchar(20);not null;index"`
}

// Customer is a client company contact owned by one sales user
type Customer struct {
	BaseModel
	SalesID         uuid.UUID `gorm:"type:varchar(36);not null;index;column:sales_id"`
	Sales           *User     `gorm:"foreignKey:SalesID"`
	FirstName       string    `gorm:"type:varchar(50);not null;column:first_name"`
	LastName        string    `gorm:"type:varchar(50);not null;column:last_name"`
	Email           string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone           string    `gorm:"type:varchar(20);not null"`
	CompanyName     string    `gorm:"type:varchar(100);not null;column:company_name;index"`
	LastContactDate time.Time `gorm:"not null;column:last_contact_date"`
}

// FullName returns the customer's first and last name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Contract is the financial agreement gating event creation
type Contract struct {
	BaseModel
	CustomerID      uuid.UUID `gorm:"type:varchar(36);not null;index;column:customer_id"`
	Customer        *Customer `gorm:"foreignKey:CustomerID"`
	ManagerID       uuid.UUID `gorm:"type:varchar(36);not null;index;column:manager_id"`
	Manager         *User     `gorm:"foreignKey:ManagerID"`
	TotalAmount     float64   `gorm:"not null;column:total_amount"`
	RemainingAmount float64   `gorm:"not null;column:remaining_amount"`
	IsSigned        bool      `gorm:"not null;default:false;column:is_signed"`
	CreationDate    time.Time `gorm:"not null;column:creation_date"`
}

// IsClosed reports the terminal state: signed and fully paid
func (c *Contract) IsClosed() bool {
	return c.IsSigned && c.RemainingAmount == 0
}

// IsFullyPaid reports whether nothing remains to be paid
func (c *Contract) IsFullyPaid() bool {
	return c.RemainingAmount == 0
}

// Event is a scheduled engagement tied one-to-one to a signed contract
type Event struct {
	BaseModel
	ContractID      uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex;column:contract_id"`
	Contract        *Contract  `gorm:"foreignKey:ContractID"`
	SupportID       *uuid.UUID `gorm:"type:varchar(36);index;column:support_id"`
	Support         *User      `gorm:"foreignKey:SupportID"`
	Name            string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerName    string     `gorm:"type:varchar(100);not null;column:customer_name"`
	CustomerContact string     `gorm:"type:varchar(255);column:customer_contact"`
	StartDate       time.Time  `gorm:"not null;column:start_date"`
	EndDate         time.Time  `gorm:"not null;column:end_date"`
	Location        string     `gorm:"type:varchar(100)"`
	Attendees       int        `gorm:"not null"`
	Notes           string     `gorm:"type:varchar(200)"`
}

// HasSupport reports whether a support user is assigned
func (e *Event) HasSupport() bool {
	return e.SupportID != nil && *e.SupportID != uuid.Nil
}

// AuditAction represents the type of audit action
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionLogin  AuditAction = "login"
	AuditActionLogout AuditAction = "logout"
)

// AuditOutcome records whether the audited action succeeded
type AuditOutcome string

const (
	AuditOutcomeSuccess AuditOutcome = "success"
	AuditOutcomeFailure AuditOutcome = "failure"
)

// AuditLog is an append-only record of a user action
type AuditLog struct {
	ID          uuid.UUID    `gorm:"type:varchar(36);primaryKey"`
	UserID      string       `gorm:"type:varchar(36);column:user_id;index"`
	UserEmail   string       `gorm:"type:varchar(255);column:user_email"`
	Action      AuditAction  `gorm:"type:varchar(20);not null"`
	Outcome     AuditOutcome `gorm:"type:varchar(20);not null"`
	EntityType  string       `gorm:"type:varchar(50);not null;column:entity_type"`
	EntityID    *uuid.UUID   `gorm:"type:varchar(36);column:entity_id"`
	EntityName  string       `gorm:"type:varchar(200);column:entity_name"`
	Detail      string       `gorm:"type:text"`
	PerformedAt time.Time    `gorm:"not null;column:performed_at;index"`
}

// BeforeCreate assigns an id when the caller did not
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
