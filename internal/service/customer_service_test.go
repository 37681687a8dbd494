package service_test

import (
	"testing"
	"time"

	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/service"
	"github.com/epic-events/crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerRequest(email string) *domain.CreateCustomerRequest {
	return &domain.CreateCustomerRequest{
		FirstName:   "Kevin",
		LastName:    "Casey",
		Email:       email,
		Phone:       "+33678901234",
		CompanyName: "Cool Startup LLC",
	}
}

func TestCustomerService_Create(t *testing.T) {
	env := newTestEnv(t)
	sales := testutil.CreateUser(t, env.db, domain.RoleSales)
	before := time.Now().Add(-time.Second)

	customer, err := env.customers.Create(testutil.ContextFor(sales), customerRequest("kevin@startup.io"))
	require.NoError(t, err)
	assert.Equal(t, sales.ID, customer.SalesID)
	assert.True(t, customer.LastContactDate.After(before))

	_, err = env.customers.Create(testutil.ContextFor(sales), customerRequest("kevin@startup.io"))
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = env.customers.Create(testutil.ContextFor(sales), customerRequest("kevin"))
	assert.Equal(t, domain.ErrorKindValidation, service.Kind(err))

	manager := testutil.CreateUser(t, env.db, domain.RoleManager)
	_, err = env.customers.Create(testutil.ContextFor(manager), customerRequest("other@startup.io"))
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestCustomerService_Update(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, domain.RoleSales)
	other := testutil.CreateUser(t, env.db, domain.RoleSales)
	manager := testutil.CreateUser(t, env.db, domain.RoleManager)
	customer := testutil.CreateCustomer(t, env.db, owner)

	req := &domain.UpdateCustomerRequest{
		FirstName:   "Kevin",
		LastName:    "Casey",
		Email:       customer.Email,
		Phone:       "+33600000000",
		CompanyName: "Renamed SAS",
	}

	t.Run("other sales", func(t *testing.T) {
		env.writes.Reset()
		_, err := env.customers.Update(testutil.ContextFor(other), customer.ID, req)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
		assert.Zero(t, env.writes.Writes())
	})

	for _, actor := range []*domain.User{owner, manager} {
		updated, err := env.customers.Update(testutil.ContextFor(actor), customer.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "Renamed SAS", updated.CompanyName)
		assert.Equal(t, owner.ID, updated.SalesID)
	}

	owned, err := env.customers.GetOwned(testutil.ContextFor(owner), customer.Email)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, owned.ID)

	_, err = env.customers.GetOwned(testutil.ContextFor(other), customer.Email)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	_, err = env.customers.GetOwned(testutil.ContextFor(owner), "nobody@startup.io")
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)
}

func TestCustomerService_List(t *testing.T) {
	env := newTestEnv(t)
	sales := testutil.CreateUser(t, env.db, domain.RoleSales)
	other := testutil.CreateUser(t, env.db, domain.RoleSales)
	support := testutil.CreateUser(t, env.db, domain.RoleSupport)
	mine := testutil.CreateCustomer(t, env.db, sales)
	testutil.CreateCustomer(t, env.db, other)

	all, err := env.customers.List(testutil.ContextFor(support), domain.CustomerFilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := env.customers.List(testutil.ContextFor(sales), domain.CustomerFilterMine)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)
}
