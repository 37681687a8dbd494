package controller

import (
	"context"
	"fmt"

	"github.com/epic-events/crm/internal/display"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/service"
	"go.uber.org/zap"
)

// CustomerController handles customer listing, creation and update
type CustomerController struct {
	customers *service.CustomerService
	sink      display.Sink
	logger    *zap.Logger
}

func NewCustomerController(customers *service.CustomerService, sink display.Sink, logger *zap.Logger) *CustomerController {
	return &CustomerController{customers: customers, sink: sink, logger: logger}
}

var customerFilterMenu = display.Menu{
	Title: "Customers",
	Options: []display.MenuOption{
		{Key: "1", Label: "All customers"},
		{Key: "2", Label: "My customers"},
	},
}

// List asks for a filter and shows the matching customers
func (c *CustomerController) List(ctx context.Context) error {
	key, err := choose(c.sink, customerFilterMenu)
	if err != nil {
		return cancelOK(err)
	}
	filter := domain.CustomerFilterAll
	if key == "2" {
		filter = domain.CustomerFilterMine
	}
	return report(c.sink, c.logger, func() error {
		customers, err := c.customers.List(ctx, filter)
		if err != nil {
			return err
		}
		c.sink.Show(display.Customers(customers))
		return nil
	})
}

// Create prompts for a new customer owned by the acting sales user
func (c *CustomerController) Create(ctx context.Context) error {
	return attempt(c.sink, c.logger, func() error {
		c.sink.Show(display.Info("New customer"))
		req := &domain.CreateCustomerRequest{}
		var err error
		if req.FirstName, err = askText(c.sink, "First name:"); err != nil {
			return err
		}
		if req.LastName, err = askText(c.sink, "Last name:"); err != nil {
			return err
		}
		if req.Email, err = ask(c.sink, "Email:", email); err != nil {
			return err
		}
		if req.Phone, err = ask(c.sink, "Phone (+33XXXXXXXXX):", phone); err != nil {
			return err
		}
		if req.CompanyName, err = askText(c.sink, "Company name:"); err != nil {
			return err
		}

		customer, err := c.customers.Create(ctx, req)
		if err != nil {
			return err
		}
		c.sink.Show(display.Success(fmt.Sprintf("Customer %s created.", customer.CompanyName)))
		return nil
	})
}

// Update prompts for a customer the actor owns and replaces its fields
func (c *CustomerController) Update(ctx context.Context) error {
	return attempt(c.sink, c.logger, func() error {
		customer, err := c.Select(ctx, "Email of the customer to update:")
		if err != nil {
			return err
		}
		c.sink.Show(customer)

		req := &domain.UpdateCustomerRequest{}
		if req.FirstName, err = askDefault(c.sink, "First name", customer.FirstName, text); err != nil {
			return err
		}
		if req.LastName, err = askDefault(c.sink, "Last name", customer.LastName, text); err != nil {
			return err
		}
		if req.Email, err = askDefault(c.sink, "Email", customer.Email, email); err != nil {
			return err
		}
		if req.Phone, err = askDefault(c.sink, "Phone", customer.Phone, phone); err != nil {
			return err
		}
		if req.CompanyName, err = askDefault(c.sink, "Company name", customer.CompanyName, text); err != nil {
			return err
		}

		updated, err := c.customers.Update(ctx, customer.ID, req)
		if err != nil {
			return err
		}
		c.sink.Show(display.Success(fmt.Sprintf("Customer %s updated.", updated.CompanyName)))
		return nil
	})
}

// Select prompts for a customer email and returns the customer when the actor may manage it
func (c *CustomerController) Select(ctx context.Context, label string) (*domain.Customer, error) {
	address, err := ask(c.sink, label, email)
	if err != nil {
		return nil, err
	}
	return c.customers.GetOwned(ctx, address)
}
