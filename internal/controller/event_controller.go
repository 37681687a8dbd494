package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/display"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/service"
	"github.com/epic-events/crm/internal/validation"
	"go.uber.org/zap"
)

// EventController handles event listing, creation, support assignment,
// detail updates and deletion
type EventController struct {
	events    *service.EventService
	users     *service.UserService
	customers *CustomerController
	contracts *ContractController
	sink      display.Sink
	logger    *zap.Logger
}

func NewEventController(
	events *service.EventService,
	users *service.UserService,
	customers *CustomerController,
	contracts *ContractController,
	sink display.Sink,
	logger *zap.Logger,
) *EventController {
	return &EventController{
		events:    events,
		users:     users,
		customers: customers,
		contracts: contracts,
		sink:      sink,
		logger:    logger,
	}
}

var eventFilterMenu = display.Menu{
	Title: "Events",
	Options: []display.MenuOption{
		{Key: "1", Label: "All events"},
		{Key: "2", Label: "My events"},
		{Key: "3", Label: "Events without support"},
	},
}

// List asks for a filter and shows the matching events
func (c *EventController) List(ctx context.Context) error {
	key, err := choose(c.sink, eventFilterMenu)
	if err != nil {
		return cancelOK(err)
	}
	filter := domain.EventFilterNone
	switch key {
	case "2":
		filter = domain.EventFilterMine
	case "3":
		filter = domain.EventFilterNoSupport
	}
	return report(c.sink, c.logger, func() error {
		events, err := c.events.List(ctx, filter)
		if err != nil {
			return err
		}
		c.sink.Show(display.Events(events))
		return nil
	})
}

// Create prompts for one of the actor's customers and contracts, then for the event.
// An unsigned contract is refused before the event details are asked for.
func (c *EventController) Create(ctx context.Context) error {
	return attempt(c.sink, c.logger, func() error {
		customer, err := c.customers.Select(ctx, "Email of the customer:")
		if err != nil {
			return err
		}
		contract, err := c.contracts.Pick(ctx, customer)
		if err != nil {
			return err
		}
		if _, err := c.events.CheckCreatable(ctx, customer.ID, contract.ID); err != nil {
			return err
		}

		c.sink.Show(display.Info("New event"))
		req := &domain.CreateEventRequest{}
		if req.Name, err = askText(c.sink, "Event name:"); err != nil {
			return err
		}
		if req.StartDate, req.EndDate, err = c.askPeriod(time.Time{}, time.Time{}); err != nil {
			return err
		}
		if req.Location, err = askOptional(c.sink, "Location:"); err != nil {
			return err
		}
		if req.Attendees, err = ask(c.sink, "Attendees:", attendees); err != nil {
			return err
		}
		if req.Notes, err = askOptional(c.sink, "Notes:"); err != nil {
			return err
		}

		event, err := c.events.Create(ctx, customer.ID, contract.ID, req)
		if err != nil {
			return err
		}
		c.sink.Show(display.Success(fmt.Sprintf("Event %s created.", event.Name)))
		return nil
	})
}

// AssignSupport prompts for a support user and an event without support
func (c *EventController) AssignSupport(ctx context.Context) error {
	return attempt(c.sink, c.logger, func() error {
		address, err := ask(c.sink, "Email of the support user:", email)
		if err != nil {
			return err
		}
		support, err := c.users.GetByEmail(ctx, address)
		if err != nil {
			return err
		}
		if support.Role != domain.RoleSupport {
			return service.ErrNotSupportUser
		}

		name, err := askText(c.sink, "Event name:")
		if err != nil {
			return err
		}
		event, err := c.events.FindUnassigned(ctx, name)
		if err != nil {
			return err
		}
		c.sink.Show(event)

		if _, err := c.events.Update(ctx, service.EventUpdate{Name: event.Name, SupportUser: support}); err != nil {
			return err
		}
		c.sink.Show(display.Success(fmt.Sprintf("%s now supports %s.", support.FullName, event.Name)))
		return nil
	})
}

// ManageAssigned lets the acting support user edit one of its events
func (c *EventController) ManageAssigned(ctx context.Context) error {
	actor, ok := auth.UserFromContext(ctx)
	if !ok {
		return service.ErrUnauthorized
	}
	return attempt(c.sink, c.logger, func() error {
		name, err := askText(c.sink, "Event name:")
		if err != nil {
			return err
		}
		event, err := c.events.FindAssigned(ctx, name)
		if err != nil {
			return err
		}
		c.sink.Show(event)

		details := &domain.EventDetailsRequest{}
		if details.StartDate, details.EndDate, err = c.askPeriod(event.StartDate, event.EndDate); err != nil {
			return err
		}
		if details.Location, err = askDefault(c.sink, "Location", event.Location, text); err != nil {
			return err
		}
		if details.Attendees, err = askDefault(c.sink, "Attendees", event.Attendees, attendees); err != nil {
			return err
		}
		if details.Notes, err = askDefault(c.sink, "Notes", event.Notes, text); err != nil {
			return err
		}

		if _, err := c.events.Update(ctx, service.EventUpdate{
			Name:            event.Name,
			AssignedSupport: actor,
			Details:         details,
		}); err != nil {
			return err
		}
		c.sink.Show(display.Success(fmt.Sprintf("Event %s updated.", event.Name)))
		return nil
	})
}

// Delete prompts for an event name and removes the event after confirmation
func (c *EventController) Delete(ctx context.Context) error {
	return attempt(c.sink, c.logger, func() error {
		name, err := askText(c.sink, "Name of the event to delete:")
		if err != nil {
			return err
		}
		ok, err := confirm(c.sink, fmt.Sprintf("Delete event %s?", name))
		if err != nil {
			return err
		}
		if !ok {
			return errCancelled
		}
		if err := c.events.Delete(ctx, name); err != nil {
			return err
		}
		c.sink.Show(display.Success(fmt.Sprintf("Event %s deleted.", name)))
		return nil
	})
}

// askPeriod prompts for the start and end dates until start is not after end.
// Non-zero current dates are kept on an empty answer.
func (c *EventController) askPeriod(start, end time.Time) (time.Time, time.Time, error) {
	for {
		from, err := c.askDate("Start date", start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to, err := c.askDate("End date", end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if err := validation.Period(from, to); err != nil {
			c.sink.ShowError(capitalize(err.Error()))
			continue
		}
		return from, to, nil
	}
}

func (c *EventController) askDate(label string, current time.Time) (time.Time, error) {
	if current.IsZero() {
		return ask(c.sink, label+" (DD-MM-YY):", validation.Date)
	}
	value, err := askDefault(c.sink, label+" (DD-MM-YY)", eventDate(current), parseEventDate)
	return time.Time(value), err
}

// eventDate prints as DD-MM-YY in prompts
type eventDate time.Time

func (d eventDate) String() string {
	return time.Time(d).Format(domain.EventDateLayout)
}

func parseEventDate(s string) (eventDate, error) {
	t, err := validation.Date(s)
	return eventDate(t), err
}

func attendees(s string) (int, error) {
	return validation.PositiveInt(s, "attendees")
}
