package controller_test

import (
	"io"
	"testing"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/controller"
	"github.com/epic-events/crm/internal/display"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_InvalidSelection(t *testing.T) {
	tests := []struct {
		name      string
		role      domain.UserRoleType
		selection string
	}{
		{"out of range", domain.RoleSales, "9"},
		{"manager key for support", domain.RoleSupport, "6"},
		{"not a number", domain.RoleManager, "abc"},
		{"empty", domain.RoleAdmin, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			user := testutil.CreateUser(t, h.db, tt.role)

			op, err := h.router.Dispatch(testutil.ContextFor(user), user, tt.selection)
			require.NoError(t, err)
			assert.Empty(t, op)
			assert.Equal(t, []string{controller.MsgInvalidInput}, h.sink.Errors)
			assert.Empty(t, h.sink.Prompts)
		})
	}
}

func TestRouter_Logout(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, domain.RoleSupport)

	op, err := h.router.Dispatch(testutil.ContextFor(user), user, "0")
	require.NoError(t, err)
	assert.Equal(t, auth.OpLogout, op)
	assert.Empty(t, h.sink.Prompts)
}

func TestRouter_InputClosed(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, domain.RoleSales)

	op, err := h.router.Dispatch(testutil.ContextFor(user), user, "1")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, auth.OpListCustomers, op)
}

func TestRouter_ListEvents(t *testing.T) {
	h := newHarness(t, "3")
	manager := testutil.CreateUser(t, h.db, domain.RoleManager)
	sales := testutil.CreateUser(t, h.db, domain.RoleSales)
	contract := testutil.CreateContract(t, h.db, testutil.CreateCustomer(t, h.db, sales), 500, 0, true)
	testutil.CreateEvent(t, h.db, contract, "Unassigned party", nil)

	op, err := h.router.Dispatch(testutil.ContextFor(manager), manager, "3")
	require.NoError(t, err)
	assert.Equal(t, auth.OpListEvents, op)
	assert.Empty(t, h.sink.Errors)

	var listed display.Events
	for _, p := range h.sink.Shown {
		if events, ok := p.(display.Events); ok {
			listed = events
		}
	}
	require.Len(t, listed, 1)
	assert.Equal(t, "Unassigned party", listed[0].Name)
}

func TestRoleMenu(t *testing.T) {
	user := &domain.User{Role: domain.RoleSupport}
	menu := controller.RoleMenu(user)

	keys := make([]string, 0, len(menu.Options))
	for _, opt := range menu.Options {
		keys = append(keys, opt.Key)
	}
	assert.Equal(t, []string{"0", "1", "2", "3", "4", "5"}, keys)
}
