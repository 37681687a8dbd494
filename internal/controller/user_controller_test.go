package controller_test

import (
	"testing"

	"github.com/epic-events/crm/internal/display"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreate(t *testing.T) {
	h := newHarness(t)
	manager := testutil.CreateUser(t, h.db, domain.RoleManager)
	h.sink.Feed("1", "bill", "Bill Boquet", "bill@epicevents.fr", "secret",
		"0612345678", "+33612345678", "CLOWN", "SUPPORT")

	_, err := h.router.Dispatch(testutil.ContextFor(manager), manager, "5")
	require.NoError(t, err)
	assert.Len(t, h.sink.Errors, 2, "bad phone and unknown role are asked again")
	assert.Zero(t, h.sink.Remaining())

	var user domain.User
	require.NoError(t, h.db.First(&user, "email = ?", "bill@epicevents.fr").Error)
	assert.Equal(t, domain.RoleSupport, user.Role)
	assert.NotEqual(t, "secret", user.PasswordHash)
}

func TestUserDelete_Declined(t *testing.T) {
	h := newHarness(t)
	manager := testutil.CreateUser(t, h.db, domain.RoleManager)
	sales := testutil.CreateUser(t, h.db, domain.RoleSales)
	h.sink.Feed("3", sales.Email, "n")
	h.writes.Reset()

	_, err := h.router.Dispatch(testutil.ContextFor(manager), manager, "5")
	require.NoError(t, err)
	assert.Contains(t, h.sink.Notices(), "Cancelled.")
	assert.Zero(t, h.writes.Writes())
}

func TestUserAuditLog(t *testing.T) {
	h := newHarness(t)
	manager := testutil.CreateUser(t, h.db, domain.RoleManager)
	ctx := testutil.ContextFor(manager)
	h.sink.Feed("1", "bill", "Bill Boquet", "bill@epicevents.fr", "secret", "+33612345678", "SUPPORT")
	_, err := h.router.Dispatch(ctx, manager, "5")
	require.NoError(t, err)

	h.sink.Feed("5", "USER")
	_, err = h.router.Dispatch(ctx, manager, "5")
	require.NoError(t, err)
	require.IsType(t, display.AuditLogs{}, h.sink.Shown[len(h.sink.Shown)-1])
	logs := h.sink.Shown[len(h.sink.Shown)-1].(display.AuditLogs)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditActionCreate, logs[0].Action)
	assert.Equal(t, "bill", logs[0].EntityName)
	assert.Equal(t, manager.Email, logs[0].UserEmail)

	h.sink.Feed("5", "contract")
	_, err = h.router.Dispatch(ctx, manager, "5")
	require.NoError(t, err)
	assert.Empty(t, h.sink.Shown[len(h.sink.Shown)-1])
	assert.Zero(t, h.sink.Remaining())
}
