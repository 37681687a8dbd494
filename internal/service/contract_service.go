package service

import (
	"context"
	"fmt"
	"time"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/repository"
	"github.com/epic-events/crm/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContractService enforces the contract lifecycle: remaining starts at total and
// only decreases, signing is one-way, and a signed, fully paid contract is final
type ContractService struct {
	db           *gorm.DB
	contractRepo *repository.ContractRepository
	customerRepo *repository.CustomerRepository
	permissions  *PermissionService
	audit        *AuditLogService
	logger       *zap.Logger
	now          func() time.Time
}

func NewContractService(
	db *gorm.DB,
	contractRepo *repository.ContractRepository,
	customerRepo *repository.CustomerRepository,
	permissions *PermissionService,
	audit *AuditLogService,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		db:           db,
		contractRepo: contractRepo,
		customerRepo: customerRepo,
		permissions:  permissions,
		audit:        audit,
		logger:       logger,
		now:          time.Now,
	}
}

// Create adds a contract for a customer. The customer's sales owner manages it.
func (s *ContractService) Create(ctx context.Context, customerID uuid.UUID, req *domain.CreateContractRequest) (*domain.Contract, error) {
	if _, err := s.permissions.Require(ctx, auth.OpManageContracts); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, invalidInput(err)
	}

	var contract *domain.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.customerRepo.WithTx(tx).GetByID(ctx, customerID)
		if err != nil {
			return lookupError("get customer", err, ErrCustomerNotFound)
		}

		contract = &domain.Contract{
			CustomerID:      customer.ID,
			ManagerID:       customer.SalesID,
			TotalAmount:     req.TotalAmount,
			RemainingAmount: req.TotalAmount,
			IsSigned:        req.IsSigned,
			CreationDate:    s.now(),
		}
		if err := s.contractRepo.WithTx(tx).Create(ctx, contract); err != nil {
			return storageError("create contract", err)
		}
		contract.Customer = customer
		contract.Manager = customer.Sales
		return nil
	})
	if err != nil {
		return nil, txError("create contract", err)
	}

	s.logger.Info("contract created",
		zap.String("contract_id", contract.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.Float64("total_amount", contract.TotalAmount),
		zap.Bool("is_signed", contract.IsSigned))
	s.audit.LogCreate(ctx, EntityContract, contract.ID, contract.Customer.CompanyName)
	return contract, nil
}

// GetForUpdate loads a contract the actor may update, refusing closed contracts
// before any input is collected
func (s *ContractService) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	actor, err := s.permissions.RequireAny(ctx, auth.OpManageContracts, auth.OpUpdateContract)
	if err != nil {
		return nil, err
	}
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("get contract", err, ErrContractNotFound)
	}
	if err := s.checkAccess(actor, contract); err != nil {
		return nil, err
	}
	if contract.IsClosed() {
		return nil, ErrContractClosed
	}
	return contract, nil
}

// Update applies req to the contract in one transaction. A closed contract is
// refused without any write; amounts must satisfy 0 <= new <= total and never
// exceed the current remaining amount. The last-modified stamp is set to now.
func (s *ContractService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateContractRequest) (*domain.Contract, error) {
	actor, err := s.permissions.RequireAny(ctx, auth.OpManageContracts, auth.OpUpdateContract)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, invalidInput(err)
	}

	var updated *domain.Contract
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.contractRepo.WithTx(tx)
		contract, err := repo.GetByID(ctx, id)
		if err != nil {
			return lookupError("get contract", err, ErrContractNotFound)
		}
		if err := s.checkAccess(actor, contract); err != nil {
			return err
		}
		if contract.IsClosed() {
			return ErrContractClosed
		}
		if err := applyContractUpdate(contract, req, s.now()); err != nil {
			return err
		}
		if err := repo.SaveState(ctx, contract); err != nil {
			return storageError("update contract", err)
		}
		updated = contract
		return nil
	})
	if err != nil {
		err = txError("update contract", err)
		s.logger.Info("contract update refused",
			zap.String("contract_id", id.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("contract updated",
		zap.String("contract_id", updated.ID.String()),
		zap.Float64("remaining_amount", updated.RemainingAmount),
		zap.Bool("is_signed", updated.IsSigned))
	s.audit.LogUpdate(ctx, EntityContract, updated.ID, companyName(updated),
		fmt.Sprintf("signed=%t remaining=%.2f", updated.IsSigned, updated.RemainingAmount))
	return updated, nil
}

// applyContractUpdate mutates contract according to req or returns why it cannot
func applyContractUpdate(contract *domain.Contract, req *domain.UpdateContractRequest, now time.Time) error {
	if req.Sign != nil {
		if !*req.Sign && contract.IsSigned {
			return ErrUnsignContract
		}
		if *req.Sign {
			contract.IsSigned = true
		}
	}

	if req.RemainingAmount != nil {
		remaining := *req.RemainingAmount
		switch {
		case remaining < 0:
			return fmt.Errorf("%w: remaining amount must not be negative", ErrInvalidInput)
		case remaining > contract.TotalAmount:
			return ErrOverPayment
		case remaining > contract.RemainingAmount:
			return ErrRemainingIncrease
		}
		contract.RemainingAmount = remaining
	}

	contract.CreationDate = now
	return nil
}

// ListForCustomer returns the contracts of a customer
func (s *ContractService) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Contract, error) {
	if _, err := s.permissions.Actor(ctx); err != nil {
		return nil, err
	}
	contracts, err := s.contractRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, storageError("list contracts", err)
	}
	return contracts, nil
}

// List returns the contracts matching filter; an empty result is not an error
func (s *ContractService) List(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	if _, err := s.permissions.Require(ctx, auth.OpListContracts); err != nil {
		return nil, err
	}
	contracts, err := s.contractRepo.List(ctx, filter)
	if err != nil {
		return nil, storageError("list contracts", err)
	}
	return contracts, nil
}

func (s *ContractService) checkAccess(actor *domain.User, contract *domain.Contract) error {
	if actor.Role == domain.RoleManager {
		return nil
	}
	if contract.Customer != nil && contract.Customer.SalesID == actor.ID {
		return nil
	}
	return ErrPermissionDenied
}

func companyName(contract *domain.Contract) string {
	if contract.Customer == nil {
		return ""
	}
	return contract.Customer.CompanyName
}
