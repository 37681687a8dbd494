package controller

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/display"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/logger"
	"go.uber.org/zap"
)

// MsgUnexpected is shown when an operation fails in a way the user cannot act on
const MsgUnexpected = "An unexpected error occurred. The incident was logged."

// Handler runs one menu operation for the actor carried by ctx
type Handler func(ctx context.Context) error

// Router maps a role's menu selections to operation handlers
type Router struct {
	handlers map[auth.Operation]Handler
	sink     display.Sink
	logger   *zap.Logger
}

func NewRouter(
	users *UserController,
	customers *CustomerController,
	contracts *ContractController,
	events *EventController,
	sink display.Sink,
	logger *zap.Logger,
) *Router {
	return &Router{
		handlers: map[auth.Operation]Handler{
			auth.OpListCustomers:       customers.List,
			auth.OpListContracts:       contracts.List,
			auth.OpListEvents:          events.List,
			auth.OpAssignSupport:       events.AssignSupport,
			auth.OpManageUsers:         users.Manage,
			auth.OpManageContracts:     contracts.Manage,
			auth.OpDeleteEvent:         events.Delete,
			auth.OpCreateCustomer:      customers.Create,
			auth.OpUpdateCustomer:      customers.Update,
			auth.OpUpdateContract:      contracts.Update,
			auth.OpCreateEvent:         events.Create,
			auth.OpManageAssignedEvent: events.ManageAssigned,
			auth.OpDeleteAssignedEvent: events.Delete,
		},
		sink:   sink,
		logger: logger,
	}
}

// RoleMenu renders the main menu of the user's role
func RoleMenu(user *domain.User) display.Menu {
	entries := auth.MenuFor(user.Role)
	menu := display.Menu{
		Title:   fmt.Sprintf("Main menu (%s)", user.Role),
		Options: make([]display.MenuOption, 0, len(entries)),
	}
	for _, e := range entries {
		menu.Options = append(menu.Options, display.MenuOption{Key: e.Key, Label: e.Label})
	}
	return menu
}

// Dispatch resolves selection against the user's role and runs the handler.
// An unknown selection shows MsgInvalidInput and returns an empty operation.
// OpLogout is returned without running anything. Only io.EOF is returned as an
// error; any other failure, panics included, is logged and reported.
func (r *Router) Dispatch(ctx context.Context, user *domain.User, selection string) (auth.Operation, error) {
	op, ok := auth.Resolve(user.Role, selection)
	if !ok {
		r.sink.ShowError(MsgInvalidInput)
		return "", nil
	}
	if op == auth.OpLogout {
		return op, nil
	}
	handler, ok := r.handlers[op]
	if !ok {
		r.logger.Error("no handler for operation", zap.String("operation", string(op)))
		r.sink.ShowError(MsgInvalidInput)
		return "", nil
	}

	log := logger.WithOperation(logger.WithUser(r.logger, user), string(op))
	if err := r.run(ctx, log, handler); err != nil {
		if errors.Is(err, io.EOF) {
			return op, err
		}
		log.Error("operation failed", zap.Error(err))
		r.sink.ShowError(MsgUnexpected)
	}
	return op, nil
}

func (r *Router) run(ctx context.Context, log *zap.Logger, handler Handler) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("operation panicked", zap.Any("panic", rec), zap.Stack("stack"))
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return handler(ctx)
}
