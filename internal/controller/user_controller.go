package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/epic-events/crm/internal/display"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/repository"
	"github.com/epic-events/crm/internal/service"
	"go.uber.org/zap"
)

// auditLogLimit caps the audit entries listed from the user sub-menu
const auditLogLimit = 50

// UserController handles the user management sub-menu
type UserController struct {
	users  *service.UserService
	roles  *service.RoleService
	audit  *service.AuditLogService
	sink   display.Sink
	logger *zap.Logger
}

func NewUserController(users *service.UserService, roles *service.RoleService, audit *service.AuditLogService, sink display.Sink, logger *zap.Logger) *UserController {
	return &UserController{users: users, roles: roles, audit: audit, sink: sink, logger: logger}
}

var userMenu = display.Menu{
	Title: "Manage users",
	Options: []display.MenuOption{
		{Key: "1", Label: "Create a user"},
		{Key: "2", Label: "Update a user"},
		{Key: "3", Label: "Delete a user"},
		{Key: "4", Label: "List users"},
		{Key: "5", Label: "Audit log"},
		{Key: "0", Label: "Back"},
	},
}

// Manage shows the user sub-menu and runs the selected action
func (c *UserController) Manage(ctx context.Context) error {
	key, err := choose(c.sink, userMenu)
	if err != nil {
		return cancelOK(err)
	}
	switch key {
	case "1":
		return attempt(c.sink, c.logger, func() error { return c.create(ctx) })
	case "2":
		return attempt(c.sink, c.logger, func() error { return c.update(ctx) })
	case "3":
		return attempt(c.sink, c.logger, func() error { return c.delete(ctx) })
	case "5":
		return report(c.sink, c.logger, func() error { return c.auditLog(ctx) })
	default:
		return report(c.sink, c.logger, func() error { return c.list(ctx) })
	}
}

func (c *UserController) create(ctx context.Context) error {
	c.sink.Show(display.Info("New user"))
	req := &domain.CreateUserRequest{}
	var err error
	if req.Username, err = askText(c.sink, "Username:"); err != nil {
		return err
	}
	if req.FullName, err = askText(c.sink, "Full name:"); err != nil {
		return err
	}
	if req.Email, err = ask(c.sink, "Email:", email); err != nil {
		return err
	}
	if req.Password, err = ask(c.sink, "Password:", password); err != nil {
		return err
	}
	if req.Phone, err = ask(c.sink, "Phone (+33XXXXXXXXX):", phone); err != nil {
		return err
	}
	if req.Role, err = c.askRole(ctx, ""); err != nil {
		return err
	}

	user, err := c.users.Create(ctx, req)
	if err != nil {
		return err
	}
	c.sink.Show(display.Success(fmt.Sprintf("User %s created.", user.Username)))
	return nil
}

func (c *UserController) update(ctx context.Context) error {
	user, err := c.lookup(ctx, "Email of the user to update:")
	if err != nil {
		return err
	}
	c.sink.Show(display.Users{*user})

	req := &domain.UpdateUserRequest{}
	if req.Username, err = askDefault(c.sink, "Username", user.Username, text); err != nil {
		return err
	}
	if req.FullName, err = askDefault(c.sink, "Full name", user.FullName, text); err != nil {
		return err
	}
	if req.Email, err = askDefault(c.sink, "Email", user.Email, email); err != nil {
		return err
	}
	if req.Phone, err = askDefault(c.sink, "Phone", user.Phone, phone); err != nil {
		return err
	}
	if req.Role, err = c.askRole(ctx, user.Role); err != nil {
		return err
	}

	updated, err := c.users.Update(ctx, user.ID, req)
	if err != nil {
		return err
	}
	c.sink.Show(display.Success(fmt.Sprintf("User %s updated.", updated.Username)))
	return nil
}

func (c *UserController) delete(ctx context.Context) error {
	user, err := c.lookup(ctx, "Email of the user to delete:")
	if err != nil {
		return err
	}
	c.sink.Show(display.Users{*user})

	ok, err := confirm(c.sink, "Delete this user with the customers, contracts and events they own?")
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	result, err := c.users.Delete(ctx, user.ID)
	if err != nil {
		return err
	}
	c.sink.Show(display.Success(fmt.Sprintf(
		"User %s deleted with %d customer(s), %d contract(s) and %d event(s); %d event(s) no longer have support.",
		user.Username, result.Customers, result.Contracts, result.Events, result.UnassignedEvents)))
	return nil
}

func (c *UserController) list(ctx context.Context) error {
	users, err := c.users.List(ctx)
	if err != nil {
		return err
	}
	c.sink.Show(display.Users(users))
	return nil
}

// auditLog lists the most recent audit entries, optionally for one entity type
func (c *UserController) auditLog(ctx context.Context) error {
	entity, err := askOptional(c.sink, "Entity type (user, customer, contract, event)")
	if err != nil {
		return err
	}
	filter := &repository.AuditLogFilter{EntityType: strings.ToLower(entity)}
	logs, err := c.audit.List(ctx, filter, auditLogLimit)
	if err != nil {
		return err
	}
	c.sink.Show(display.AuditLogs(logs))
	return nil
}

// lookup prompts for an email and loads the matching user
func (c *UserController) lookup(ctx context.Context, label string) (*domain.User, error) {
	address, err := ask(c.sink, label, email)
	if err != nil {
		return nil, err
	}
	return c.users.GetByEmail(ctx, address)
}

// askRole shows the roles table and prompts for a role code. A non-empty
// current role is kept on an empty answer.
func (c *UserController) askRole(ctx context.Context, current domain.UserRoleType) (domain.UserRoleType, error) {
	roles, err := c.roles.List(ctx)
	if err != nil {
		return "", err
	}
	menu := display.Menu{Title: "Roles"}
	for _, r := range roles {
		menu.Options = append(menu.Options, display.MenuOption{Key: string(r.Code), Label: r.Name})
	}
	c.sink.Show(menu)

	if current != "" {
		return askDefault(c.sink, "Role", current, role)
	}
	return ask(c.sink, "Role:", role)
}
