package controller_test

import (
	"testing"
	"time"

	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCreate(t *testing.T) {
	h := newHarness(t)
	sales := testutil.CreateUser(t, h.db, domain.RoleSales)
	customer := testutil.CreateCustomer(t, h.db, sales)
	contract := testutil.CreateContract(t, h.db, customer, 500, 500, true)
	h.sink.Feed(customer.Email, "Summer party",
		"04-06-26", "03-06-26", // end before start
		"04-06-26", "05-06-26",
		"Paris", "0", "75", "")

	_, err := h.router.Dispatch(testutil.ContextFor(sales), sales, "7")
	require.NoError(t, err)

	require.Len(t, h.sink.Errors, 2)
	assert.Equal(t, "Period not valid: start date is after end date", h.sink.Errors[0])
	assert.Zero(t, h.sink.Remaining())

	var event domain.Event
	require.NoError(t, h.db.First(&event, "contract_id = ?", contract.ID).Error)
	assert.Equal(t, "Summer party", event.Name)
	assert.Equal(t, 75, event.Attendees)
	assert.Equal(t, customer.CompanyName, event.CustomerName)
	assert.Equal(t, time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC), event.StartDate.UTC())
	assert.Nil(t, event.SupportID)
}

func TestEventCreate_UnsignedContract(t *testing.T) {
	h := newHarness(t)
	sales := testutil.CreateUser(t, h.db, domain.RoleSales)
	customer := testutil.CreateCustomer(t, h.db, sales)
	testutil.CreateContract(t, h.db, customer, 500, 500, false)
	h.sink.Feed(customer.Email, "Summer party")
	h.writes.Reset()

	_, err := h.router.Dispatch(testutil.ContextFor(sales), sales, "7")
	require.NoError(t, err)

	assert.Equal(t, []string{"The contract hasn't been signed, so it's impossible to create an event"}, h.sink.Errors)
	assert.Len(t, h.sink.Prompts, 1, "event details are not asked for")
	assert.Equal(t, 1, h.sink.Remaining())
	assert.Zero(t, h.writes.Writes())
}

func TestEventAssignSupport(t *testing.T) {
	h := newHarness(t)
	manager := testutil.CreateUser(t, h.db, domain.RoleManager)
	sales := testutil.CreateUser(t, h.db, domain.RoleSales)
	support := testutil.CreateUser(t, h.db, domain.RoleSupport)
	contract := testutil.CreateContract(t, h.db, testutil.CreateCustomer(t, h.db, sales), 500, 0, true)
	event := testutil.CreateEvent(t, h.db, contract, "Wedding", nil)
	h.sink.Feed(sales.Email, support.Email, event.Name)

	_, err := h.router.Dispatch(testutil.ContextFor(manager), manager, "4")
	require.NoError(t, err)
	assert.Equal(t, []string{"This user is not a support user"}, h.sink.Errors)

	var stored domain.Event
	require.NoError(t, h.db.First(&stored, "id = ?", event.ID).Error)
	require.NotNil(t, stored.SupportID)
	assert.Equal(t, support.ID, *stored.SupportID)
}

func TestEventAssignSupport_AlreadyAssigned(t *testing.T) {
	h := newHarness(t)
	manager := testutil.CreateUser(t, h.db, domain.RoleManager)
	sales := testutil.CreateUser(t, h.db, domain.RoleSales)
	support := testutil.CreateUser(t, h.db, domain.RoleSupport)
	contract := testutil.CreateContract(t, h.db, testutil.CreateCustomer(t, h.db, sales), 500, 0, true)
	event := testutil.CreateEvent(t, h.db, contract, "Wedding", support)
	h.sink.Feed(support.Email, event.Name, "")

	_, err := h.router.Dispatch(testutil.ContextFor(manager), manager, "4")
	require.NoError(t, err)
	// assigned events are not offered, the lookup fails and is asked again
	assert.Equal(t, []string{"Event not found"}, h.sink.Errors)
	assert.Contains(t, h.sink.Notices(), "Cancelled.")
}

func TestEventManageAssigned(t *testing.T) {
	h := newHarness(t)
	sales := testutil.CreateUser(t, h.db, domain.RoleSales)
	support := testutil.CreateUser(t, h.db, domain.RoleSupport)
	contract := testutil.CreateContract(t, h.db, testutil.CreateCustomer(t, h.db, sales), 500, 0, true)
	event := testutil.CreateEvent(t, h.db, contract, "Gala", support)
	h.sink.Feed(event.Name, "10-07-26", "11-07-26", "", "120", "")

	_, err := h.router.Dispatch(testutil.ContextFor(support), support, "4")
	require.NoError(t, err)
	assert.Empty(t, h.sink.Errors)

	var stored domain.Event
	require.NoError(t, h.db.First(&stored, "id = ?", event.ID).Error)
	assert.Equal(t, 120, stored.Attendees)
	assert.Equal(t, event.Location, stored.Location)
	assert.Equal(t, time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC), stored.StartDate.UTC())
}

func TestEventManageAssigned_KeepsDates(t *testing.T) {
	h := newHarness(t)
	sales := testutil.CreateUser(t, h.db, domain.RoleSales)
	support := testutil.CreateUser(t, h.db, domain.RoleSupport)
	contract := testutil.CreateContract(t, h.db, testutil.CreateCustomer(t, h.db, sales), 500, 0, true)
	event := testutil.CreateEvent(t, h.db, contract, "Gala", support)
	var before domain.Event
	require.NoError(t, h.db.First(&before, "id = ?", event.ID).Error)
	h.sink.Feed(event.Name, "", "", "", "", "Bring the sound system")

	_, err := h.router.Dispatch(testutil.ContextFor(support), support, "4")
	require.NoError(t, err)
	assert.Empty(t, h.sink.Errors)
	assert.Zero(t, h.sink.Remaining())
	assert.Contains(t, h.sink.Prompts, "Start date (DD-MM-YY) ["+before.StartDate.Format(domain.EventDateLayout)+"]")

	var stored domain.Event
	require.NoError(t, h.db.First(&stored, "id = ?", event.ID).Error)
	assert.Equal(t, "Bring the sound system", stored.Notes)
	assert.Equal(t, event.Attendees, stored.Attendees)
	assert.True(t, event.StartDate.Equal(stored.StartDate))
	assert.True(t, event.EndDate.Equal(stored.EndDate))
}

func TestEventDelete(t *testing.T) {
	h := newHarness(t)
	manager := testutil.CreateUser(t, h.db, domain.RoleManager)
	sales := testutil.CreateUser(t, h.db, domain.RoleSales)
	contract := testutil.CreateContract(t, h.db, testutil.CreateCustomer(t, h.db, sales), 500, 0, true)
	event := testutil.CreateEvent(t, h.db, contract, "Gala", nil)
	h.sink.Feed("nope", "y", event.Name, "y")

	_, err := h.router.Dispatch(testutil.ContextFor(manager), manager, "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"Event not found"}, h.sink.Errors)

	var count int64
	require.NoError(t, h.db.Model(&domain.Event{}).Where("id = ?", event.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEventDelete_SupportScope(t *testing.T) {
	h := newHarness(t)
	sales := testutil.CreateUser(t, h.db, domain.RoleSales)
	support := testutil.CreateUser(t, h.db, domain.RoleSupport)
	other := testutil.CreateUser(t, h.db, domain.RoleSupport)
	contract := testutil.CreateContract(t, h.db, testutil.CreateCustomer(t, h.db, sales), 500, 0, true)
	event := testutil.CreateEvent(t, h.db, contract, "Gala", other)
	h.sink.Feed(event.Name, "y", "")

	_, err := h.router.Dispatch(testutil.ContextFor(support), support, "5")
	require.NoError(t, err)
	assert.Equal(t, []string{"Event not found"}, h.sink.Errors)

	var count int64
	require.NoError(t, h.db.Model(&domain.Event{}).Where("id = ?", event.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
