package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/epic-events/crm/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var sequence atomic.Int64

func next() int64 {
	return sequence.Add(1)
}

// CreateUser inserts a user with role and a placeholder password hash
func CreateUser(t *testing.T, db *gorm.DB, role domain.UserRoleType) *domain.User {
	t.Helper()
	return CreateUserWithHash(t, db, role, "not-a-real-hash")
}

// CreateUserWithHash inserts a user with role and the given password hash
func CreateUserWithHash(t *testing.T, db *gorm.DB, role domain.UserRoleType, hash string) *domain.User {
	t.Helper()

	n := next()
	name := strings.ToLower(string(role))
	user := &domain.User{
		Username:     fmt.Sprintf("%s%d", name, n),
		Email:        fmt.Sprintf("%s%d@example.com", name, n),
		PasswordHash: hash,
		FullName:     fmt.Sprintf("Test %s %d", name, n),
		Phone:        "+33612345678",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateCustomer inserts a customer owned by sales
func CreateCustomer(t *testing.T, db *gorm.DB, sales *domain.User) *domain.Customer {
	t.Helper()

	n := next()
	customer := &domain.Customer{
		SalesID:         sales.ID,
		FirstName:       "Kevin",
		LastName:        fmt.Sprintf("Casey%d", n),
		Email:           fmt.Sprintf("kevin%d@startup.io", n),
		Phone:           "+33678901234",
		CompanyName:     fmt.Sprintf("Cool Startup %d", n),
		LastContactDate: time.Now().UTC(),
	}
	require.NoError(t, db.Omit(clause.Associations).Create(customer).Error)
	customer.Sales = sales
	return customer
}

// CreateContract inserts a contract for customer managed by its sales owner
func CreateContract(t *testing.T, db *gorm.DB, customer *domain.Customer, total, remaining float64, signed bool) *domain.Contract {
	t.Helper()

	contract := &domain.Contract{
		CustomerID:      customer.ID,
		ManagerID:       customer.SalesID,
		TotalAmount:     total,
		RemainingAmount: remaining,
		IsSigned:        signed,
		CreationDate:    time.Now().UTC(),
	}
	require.NoError(t, db.Omit(clause.Associations).Create(contract).Error)
	contract.Customer = customer
	return contract
}

// CreateEvent inserts an event for contract, optionally assigned to support
func CreateEvent(t *testing.T, db *gorm.DB, contract *domain.Contract, name string, support *domain.User) *domain.Event {
	t.Helper()

	start := time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC)
	event := &domain.Event{
		ContractID:   contract.ID,
		Name:         name,
		CustomerName: contract.Customer.CompanyName,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 1),
		Location:     "53 Rue du Château, 41120 Candé-sur-Beuvron",
		Attendees:    75,
	}
	if support != nil {
		event.SupportID = &support.ID
	}
	require.NoError(t, db.Omit(clause.Associations).Create(event).Error)
	return event
}
