package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/repository"
	"github.com/epic-events/crm/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CustomerService struct {
	customerRepo *repository.CustomerRepository
	permissions  *PermissionService
	audit        *AuditLogService
	logger       *zap.Logger
	now          func() time.Time
}

func NewCustomerService(
	customerRepo *repository.CustomerRepository,
	permissions *PermissionService,
	audit *AuditLogService,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		permissions:  permissions,
		audit:        audit,
		logger:       logger,
		now:          time.Now,
	}
}

// Create adds a customer owned by the acting sales user
func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.Customer, error) {
	actor, err := s.permissions.Require(ctx, auth.OpCreateCustomer)
	if err != nil {
		return nil, err
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, invalidInput(err)
	}
	if err := s.ensureEmailFree(ctx, req.Email, uuid.Nil); err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		SalesID:         actor.ID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		CompanyName:     req.CompanyName,
		LastContactDate: s.now(),
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, storageError("create customer", err)
	}
	customer.Sales = actor

	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("sales_id", actor.ID.String()))
	s.audit.LogCreate(ctx, EntityCustomer, customer.ID, customer.CompanyName)
	return customer, nil
}

// Update replaces the editable fields of a customer and stamps the last contact date.
// Only the owning sales user or a manager may update a customer.
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.Customer, error) {
	actor, err := s.permissions.Actor(ctx)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("get customer", err, ErrCustomerNotFound)
	}
	if !s.permissions.CanManageCustomer(actor, customer) {
		return nil, ErrPermissionDenied
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, invalidInput(err)
	}
	if err := s.ensureEmailFree(ctx, req.Email, customer.ID); err != nil {
		return nil, err
	}

	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.CompanyName = req.CompanyName
	customer.LastContactDate = s.now()

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, storageError("update customer", err)
	}

	s.logger.Info("customer updated", zap.String("customer_id", customer.ID.String()))
	s.audit.LogUpdate(ctx, EntityCustomer, customer.ID, customer.CompanyName, "")
	return customer, nil
}

// GetByEmail looks a customer up by email
func (s *CustomerService) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	if _, err := s.permissions.Actor(ctx); err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, lookupError("get customer", err, ErrCustomerNotFound)
	}
	return customer, nil
}

// GetOwned looks up a customer by email and checks the actor may manage it
func (s *CustomerService) GetOwned(ctx context.Context, email string) (*domain.Customer, error) {
	actor, err := s.permissions.Actor(ctx)
	if err != nil {
		return nil, err
	}
	customer, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !s.permissions.CanManageCustomer(actor, customer) {
		return nil, ErrPermissionDenied
	}
	return customer, nil
}

// List returns customers; CustomerFilterMine restricts to the actor's own
func (s *CustomerService) List(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	actor, err := s.permissions.Require(ctx, auth.OpListCustomers)
	if err != nil {
		return nil, err
	}

	var salesID *uuid.UUID
	if filter == domain.CustomerFilterMine {
		salesID = &actor.ID
	}
	customers, err := s.customerRepo.List(ctx, salesID)
	if err != nil {
		return nil, storageError("list customers", err)
	}
	return customers, nil
}

func (s *CustomerService) ensureEmailFree(ctx context.Context, email string, excludeID uuid.UUID) error {
	taken, err := s.customerRepo.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return storageError("check email", err)
	}
	if taken {
		return fmt.Errorf("email %s: %w", email, ErrConflict)
	}
	return nil
}
