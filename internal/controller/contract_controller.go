package controller

import (
	"context"
	"fmt"

	"github.com/epic-events/crm/internal/display"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/service"
	"github.com/epic-events/crm/internal/validation"
	"go.uber.org/zap"
)

// ContractController handles contract listing, creation and update
type ContractController struct {
	contracts *service.ContractService
	customers *CustomerController
	sink      display.Sink
	logger    *zap.Logger
}

func NewContractController(contracts *service.ContractService, customers *CustomerController, sink display.Sink, logger *zap.Logger) *ContractController {
	return &ContractController{contracts: contracts, customers: customers, sink: sink, logger: logger}
}

var contractFilterMenu = display.Menu{
	Title: "Contracts",
	Options: []display.MenuOption{
		{Key: "1", Label: "All contracts"},
		{Key: "2", Label: "Contracts not signed"},
		{Key: "3", Label: "Contracts not fully paid"},
	},
}

var contractMenu = display.Menu{
	Title: "Manage contracts",
	Options: []display.MenuOption{
		{Key: "1", Label: "Create a contract"},
		{Key: "2", Label: "Update a contract"},
		{Key: "0", Label: "Back"},
	},
}

// List asks for a filter and shows the matching contracts
func (c *ContractController) List(ctx context.Context) error {
	key, err := choose(c.sink, contractFilterMenu)
	if err != nil {
		return cancelOK(err)
	}
	filter := domain.ContractFilterNone
	switch key {
	case "2":
		filter = domain.ContractFilterNotSigned
	case "3":
		filter = domain.ContractFilterNotFullyPaid
	}
	return report(c.sink, c.logger, func() error {
		contracts, err := c.contracts.List(ctx, filter)
		if err != nil {
			return err
		}
		c.sink.Show(display.Contracts(contracts))
		return nil
	})
}

// Manage shows the contract sub-menu
func (c *ContractController) Manage(ctx context.Context) error {
	key, err := choose(c.sink, contractMenu)
	if err != nil {
		return cancelOK(err)
	}
	if key == "1" {
		return attempt(c.sink, c.logger, func() error { return c.create(ctx) })
	}
	return c.Update(ctx)
}

// Update prompts for a customer, one of its contracts and the changes to apply.
// A closed contract is refused before any change is asked for.
func (c *ContractController) Update(ctx context.Context) error {
	return attempt(c.sink, c.logger, func() error {
		customer, err := c.customers.Select(ctx, "Email of the customer:")
		if err != nil {
			return err
		}
		contract, err := c.Pick(ctx, customer)
		if err != nil {
			return err
		}
		contract, err = c.contracts.GetForUpdate(ctx, contract.ID)
		if err != nil {
			return err
		}
		c.sink.Show(contract)

		req := &domain.UpdateContractRequest{}
		if !contract.IsSigned {
			sign, err := confirm(c.sink, "Has the contract been signed?")
			if err != nil {
				return err
			}
			if sign {
				req.Sign = &sign
			}
		}
		if !contract.IsFullyPaid() {
			remaining, err := askDefault(c.sink, "Remaining amount", contract.RemainingAmount, validation.Amount)
			if err != nil {
				return err
			}
			if remaining != contract.RemainingAmount {
				req.RemainingAmount = &remaining
			}
		}

		updated, err := c.contracts.Update(ctx, contract.ID, req)
		if err != nil {
			return err
		}
		c.sink.Show(display.Success("Contract updated."))
		c.sink.Show(updated)
		return nil
	})
}

func (c *ContractController) create(ctx context.Context) error {
	customer, err := c.customers.Select(ctx, "Email of the customer:")
	if err != nil {
		return err
	}
	total, err := ask(c.sink, "Total amount:", validation.Amount)
	if err != nil {
		return err
	}
	signed, err := confirm(c.sink, "Has the contract been signed?")
	if err != nil {
		return err
	}

	contract, err := c.contracts.Create(ctx, customer.ID, &domain.CreateContractRequest{
		TotalAmount: total,
		IsSigned:    signed,
	})
	if err != nil {
		return err
	}
	c.sink.Show(display.Success(fmt.Sprintf("Contract created for %s.", customer.CompanyName)))
	c.sink.Show(contract)
	return nil
}

// Pick returns the customer's only contract, or asks which one when there are several
func (c *ContractController) Pick(ctx context.Context, customer *domain.Customer) (*domain.Contract, error) {
	contracts, err := c.contracts.ListForCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	switch len(contracts) {
	case 0:
		return nil, fmt.Errorf("%w for %s", service.ErrContractNotFound, customer.CompanyName)
	case 1:
		return &contracts[0], nil
	}

	c.sink.Show(display.Contracts(contracts))
	n, err := ask(c.sink, fmt.Sprintf("Contract number (1-%d):", len(contracts)), func(s string) (int, error) {
		n, err := validation.PositiveInt(s, "contract number")
		if err == nil && n > len(contracts) {
			err = fmt.Errorf("contract number: must be between 1 and %d", len(contracts))
		}
		return n, err
	})
	if err != nil {
		return nil, err
	}
	return &contracts[n-1], nil
}
