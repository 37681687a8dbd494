package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/service"
	"github.com/epic-events/crm/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRequest(email string, role domain.UserRoleType) *domain.CreateUserRequest {
	username, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return &domain.CreateUserRequest{
		Username: username,
		FullName: "Bill Boquet",
		Email:    email,
		Password: "s3cret-pass",
		Phone:    "+33611223344",
		Role:     role,
	}
}

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t)
	manager := testutil.CreateUser(t, env.db, domain.RoleManager)
	ctx := testutil.ContextFor(manager)

	user, err := env.users.Create(ctx, userRequest(" bill@epicevents.com ", domain.RoleSales))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "bill@epicevents.com", user.Email)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.Equal(t, domain.RoleSales, user.Role)

	tests := []struct {
		name    string
		req     *domain.CreateUserRequest
		wantErr error
	}{
		{"duplicate email", userRequest("bill@epicevents.com", domain.RoleSupport), service.ErrConflict},
		{"duplicate username", userRequest("bill@another-agency.com", domain.RoleSupport), service.ErrConflict},
		{"invalid email", userRequest("not-an-email", domain.RoleSupport), service.ErrInvalidInput},
		{"unknown role", userRequest("x@epicevents.com", domain.UserRoleType("BOSS")), service.ErrInvalidInput},
		{"invalid phone", func() *domain.CreateUserRequest {
			req := userRequest("y@epicevents.com", domain.RoleSupport)
			req.Phone = "0611223344"
			return req
		}(), service.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.writes.Reset()
			_, err := env.users.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, service.IsRecoverable(err))
			assert.Zero(t, env.writes.Writes())
		})
	}

	t.Run("only managers and admins", func(t *testing.T) {
		sales := testutil.CreateUser(t, env.db, domain.RoleSales)
		_, err := env.users.Create(testutil.ContextFor(sales), userRequest("z@epicevents.com", domain.RoleSales))
		assert.ErrorIs(t, err, service.ErrPermissionDenied)

		admin := testutil.CreateUser(t, env.db, domain.RoleAdmin)
		_, err = env.users.Create(testutil.ContextFor(admin), userRequest("z@epicevents.com", domain.RoleSales))
		assert.NoError(t, err)
	})

	t.Run("no actor", func(t *testing.T) {
		_, err := env.users.Create(context.Background(), userRequest("w@epicevents.com", domain.RoleSales))
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestUserService_Update(t *testing.T) {
	env := newTestEnv(t)
	manager := testutil.CreateUser(t, env.db, domain.RoleManager)
	target := testutil.CreateUser(t, env.db, domain.RoleSales)
	other := testutil.CreateUser(t, env.db, domain.RoleSales)
	ctx := testutil.ContextFor(manager)

	updated, err := env.users.Update(ctx, target.ID, &domain.UpdateUserRequest{
		Username: "renamed",
		FullName: "Renamed User",
		Email:    "renamed@epicevents.com",
		Phone:    "+33699887766",
		Role:     domain.RoleSupport,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupport, updated.Role)

	reloaded, err := env.users.GetByEmail(ctx, "renamed@epicevents.com")
	require.NoError(t, err)
	assert.Equal(t, target.ID, reloaded.ID)
	assert.Equal(t, target.PasswordHash, reloaded.PasswordHash)

	_, err = env.users.Update(ctx, target.ID, &domain.UpdateUserRequest{
		Username: "renamed",
		FullName: "Renamed User",
		Email:    other.Email,
		Phone:    "+33699887766",
		Role:     domain.RoleSupport,
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	env.writes.Reset()
	_, err = env.users.Update(ctx, target.ID, &domain.UpdateUserRequest{
		Username: other.Username,
		FullName: "Renamed User",
		Email:    "renamed@epicevents.com",
		Phone:    "+33699887766",
		Role:     domain.RoleSupport,
	})
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.True(t, service.IsRecoverable(err))
	assert.Zero(t, env.writes.Writes())

	kept, err := env.users.Update(ctx, target.ID, &domain.UpdateUserRequest{
		Username: "renamed",
		FullName: "Renamed Again",
		Email:    "renamed@epicevents.com",
		Phone:    "+33699887766",
		Role:     domain.RoleSupport,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", kept.Username)

	_, err = env.users.Update(ctx, uuid.New(), &domain.UpdateUserRequest{
		Username: "ghost",
		FullName: "Ghost",
		Email:    "ghost@epicevents.com",
		Phone:    "+33699887766",
		Role:     domain.RoleSupport,
	})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserService_DeleteCascade(t *testing.T) {
	env := newTestEnv(t)
	manager := testutil.CreateUser(t, env.db, domain.RoleManager)
	sales := testutil.CreateUser(t, env.db, domain.RoleSales)
	otherSales := testutil.CreateUser(t, env.db, domain.RoleSales)
	support := testutil.CreateUser(t, env.db, domain.RoleSupport)

	customer := testutil.CreateCustomer(t, env.db, sales)
	contract := testutil.CreateContract(t, env.db, customer, 100, 100, true)
	testutil.CreateContract(t, env.db, customer, 200, 200, false)
	testutil.CreateEvent(t, env.db, contract, "Owned", support)

	keptCustomer := testutil.CreateCustomer(t, env.db, otherSales)
	keptEvent := testutil.CreateEvent(t, env.db, testutil.CreateContract(t, env.db, keptCustomer, 50, 50, true), "Kept", support)
	ctx := testutil.ContextFor(manager)

	result, err := env.users.Delete(ctx, sales.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Customers)
	assert.Equal(t, int64(2), result.Contracts)
	assert.Equal(t, int64(1), result.Events)

	var count int64
	require.NoError(t, env.db.Model(&domain.Customer{}).Where("sales_id = ?", sales.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&domain.Event{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	t.Run("support deletion leaves events unassigned", func(t *testing.T) {
		result, err := env.users.Delete(ctx, support.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.UnassignedEvents)

		var event domain.Event
		require.NoError(t, env.db.First(&event, "id = ?", keptEvent.ID).Error)
		assert.False(t, event.HasSupport())
	})

	t.Run("self delete", func(t *testing.T) {
		_, err := env.users.Delete(ctx, manager.ID)
		assert.ErrorIs(t, err, service.ErrSelfDelete)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.users.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}
