package controller_test

import (
	"testing"

	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractUpdate_ClosedContract(t *testing.T) {
	h := newHarness(t)
	sales := testutil.CreateUser(t, h.db, domain.RoleSales)
	customer := testutil.CreateCustomer(t, h.db, sales)
	testutil.CreateContract(t, h.db, customer, 100, 0, true)
	h.sink.Feed(customer.Email)
	h.writes.Reset()

	_, err := h.router.Dispatch(testutil.ContextFor(sales), sales, "6")
	require.NoError(t, err)

	assert.Equal(t, []string{"Contract already signed and paid"}, h.sink.Errors)
	assert.Len(t, h.sink.Prompts, 1, "no change is asked for once the contract is closed")
	assert.Zero(t, h.writes.Writes())
}

func TestContractUpdate_SignAndPay(t *testing.T) {
	h := newHarness(t)
	sales := testutil.CreateUser(t, h.db, domain.RoleSales)
	customer := testutil.CreateCustomer(t, h.db, sales)
	contract := testutil.CreateContract(t, h.db, customer, 1000, 1000, false)
	h.sink.Feed(customer.Email, "y", "1200", customer.Email, "y", "400")
	h.writes.Reset()

	_, err := h.router.Dispatch(testutil.ContextFor(sales), sales, "6")
	require.NoError(t, err)

	require.Len(t, h.sink.Errors, 1)
	assert.Equal(t, "Remaining amount cannot exceed the total amount", h.sink.Errors[0])
	assert.Equal(t, 1, h.writes.Table("contracts"))

	var stored domain.Contract
	require.NoError(t, h.db.First(&stored, "id = ?", contract.ID).Error)
	assert.True(t, stored.IsSigned)
	assert.Equal(t, 400.0, stored.RemainingAmount)
}

func TestContractUpdate_OtherSalesCustomer(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, domain.RoleSales)
	other := testutil.CreateUser(t, h.db, domain.RoleSales)
	customer := testutil.CreateCustomer(t, h.db, owner)
	testutil.CreateContract(t, h.db, customer, 100, 100, false)
	h.sink.Feed(customer.Email)

	_, err := h.router.Dispatch(testutil.ContextFor(other), other, "6")
	require.NoError(t, err)
	assert.Equal(t, []string{"You are not allowed to do this."}, h.sink.Errors)
}
