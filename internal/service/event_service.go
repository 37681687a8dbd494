package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/repository"
	"github.com/epic-events/crm/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventService enforces the event lifecycle: events exist only for signed
// contracts, one per contract, and support is assigned at most once
type EventService struct {
	db           *gorm.DB
	eventRepo    *repository.EventRepository
	contractRepo *repository.ContractRepository
	permissions  *PermissionService
	audit        *AuditLogService
	logger       *zap.Logger
}

func NewEventService(
	db *gorm.DB,
	eventRepo *repository.EventRepository,
	contractRepo *repository.ContractRepository,
	permissions *PermissionService,
	audit *AuditLogService,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		db:           db,
		eventRepo:    eventRepo,
		contractRepo: contractRepo,
		permissions:  permissions,
		audit:        audit,
		logger:       logger,
	}
}

// CheckCreatable verifies that an event may be created for the contract
// without writing anything: the contract belongs to the customer, is signed,
// is owned by the acting sales user and has no event yet
func (s *EventService) CheckCreatable(ctx context.Context, customerID, contractID uuid.UUID) (*domain.Contract, error) {
	actor, err := s.permissions.Require(ctx, auth.OpCreateEvent)
	if err != nil {
		return nil, err
	}
	return s.checkCreatable(ctx, s.contractRepo, s.eventRepo, actor, customerID, contractID)
}

func (s *EventService) checkCreatable(
	ctx context.Context,
	contracts *repository.ContractRepository,
	events *repository.EventRepository,
	actor *domain.User,
	customerID, contractID uuid.UUID,
) (*domain.Contract, error) {
	contract, err := contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, lookupError("get contract", err, ErrContractNotFound)
	}
	if contract.CustomerID != customerID || contract.Customer == nil {
		return nil, ErrContractNotFound
	}
	if !contract.IsSigned {
		return nil, ErrContractNotSigned
	}
	if contract.Customer.SalesID != actor.ID {
		return nil, ErrPermissionDenied
	}
	exists, err := events.ExistsForContract(ctx, contract.ID)
	if err != nil {
		return nil, storageError("check contract event", err)
	}
	if exists {
		return nil, ErrContractHasEvent
	}
	return contract, nil
}

// Create adds the event of a signed contract, snapshotting the customer's
// company and contact details onto it
func (s *EventService) Create(ctx context.Context, customerID, contractID uuid.UUID, req *domain.CreateEventRequest) (*domain.Event, error) {
	actor, err := s.permissions.Require(ctx, auth.OpCreateEvent)
	if err != nil {
		return nil, err
	}

	// Guards run before validation so an unsigned contract is reported first
	if _, err := s.checkCreatable(ctx, s.contractRepo, s.eventRepo, actor, customerID, contractID); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, invalidInput(err)
	}

	var event *domain.Event
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.eventRepo.WithTx(tx)
		contract, err := s.checkCreatable(ctx, s.contractRepo.WithTx(tx), events, actor, customerID, contractID)
		if err != nil {
			return err
		}
		if _, err := events.GetByName(ctx, req.Name, nil, false); err == nil {
			return fmt.Errorf("event name %s: %w", req.Name, ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return storageError("check event name", err)
		}

		customer := contract.Customer
		event = &domain.Event{
			ContractID:      contract.ID,
			Name:            req.Name,
			CustomerName:    customer.CompanyName,
			CustomerContact: fmt.Sprintf("%s, %s, %s", customer.FullName(), customer.Email, customer.Phone),
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			Location:        req.Location,
			Attendees:       req.Attendees,
			Notes:           req.Notes,
		}
		if err := events.Create(ctx, event); err != nil {
			return storageError("create event", err)
		}
		event.Contract = contract
		return nil
	})
	if err != nil {
		return nil, txError("create event", err)
	}

	s.logger.Info("event created",
		zap.String("event_id", event.ID.String()),
		zap.String("contract_id", contractID.String()))
	s.audit.LogCreate(ctx, EntityEvent, event.ID, event.Name)
	return event, nil
}

// EventUpdate selects one of the two update modes. SupportUser assigns a
// support user to an unassigned event; AssignedSupport edits the details of an
// event assigned to that user. Supplying both is rejected.
type EventUpdate struct {
	Name            string
	SupportUser     *domain.User
	AssignedSupport *domain.User
	Details         *domain.EventDetailsRequest
}

// Update applies an EventUpdate
func (s *EventService) Update(ctx context.Context, update EventUpdate) (*domain.Event, error) {
	switch {
	case update.SupportUser != nil && update.AssignedSupport != nil:
		return nil, ErrSupportAlreadyDefined
	case update.SupportUser != nil:
		return s.assignSupport(ctx, update.Name, update.SupportUser)
	case update.AssignedSupport != nil:
		return s.updateDetails(ctx, update.Name, update.AssignedSupport, update.Details)
	default:
		return nil, fmt.Errorf("%w: no update requested", ErrInvalidInput)
	}
}

// FindUnassigned looks up an event without support by name
func (s *EventService) FindUnassigned(ctx context.Context, name string) (*domain.Event, error) {
	if _, err := s.permissions.Require(ctx, auth.OpAssignSupport); err != nil {
		return nil, err
	}
	return s.findByName(ctx, s.eventRepo, name, nil, true)
}

// FindAssigned looks up an event by name among those assigned to the acting support user
func (s *EventService) FindAssigned(ctx context.Context, name string) (*domain.Event, error) {
	actor, err := s.permissions.RequireAny(ctx, auth.OpManageAssignedEvent, auth.OpDeleteAssignedEvent)
	if err != nil {
		return nil, err
	}
	return s.findByName(ctx, s.eventRepo, name, &actor.ID, false)
}

func (s *EventService) assignSupport(ctx context.Context, name string, support *domain.User) (*domain.Event, error) {
	if _, err := s.permissions.Require(ctx, auth.OpAssignSupport); err != nil {
		return nil, err
	}
	if support.Role != domain.RoleSupport {
		return nil, ErrNotSupportUser
	}

	var event *domain.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.eventRepo.WithTx(tx)
		found, err := s.findByName(ctx, events, name, nil, false)
		if err != nil {
			return err
		}
		if found.HasSupport() {
			return ErrSupportAlreadyAssigned
		}
		changed, err := events.AssignSupport(ctx, found.ID, support.ID)
		if err != nil {
			return storageError("assign support", err)
		}
		if changed == 0 {
			return ErrSupportAlreadyAssigned
		}
		found.SupportID = &support.ID
		found.Support = support
		event = found
		return nil
	})
	if err != nil {
		return nil, txError("assign support", err)
	}

	s.logger.Info("support assigned",
		zap.String("event_id", event.ID.String()),
		zap.String("support_id", support.ID.String()))
	s.audit.LogUpdate(ctx, EntityEvent, event.ID, event.Name, "support="+support.Email)
	return event, nil
}

func (s *EventService) updateDetails(ctx context.Context, name string, support *domain.User, details *domain.EventDetailsRequest) (*domain.Event, error) {
	actor, err := s.permissions.Require(ctx, auth.OpManageAssignedEvent)
	if err != nil {
		return nil, err
	}
	if actor.ID != support.ID {
		return nil, ErrPermissionDenied
	}
	if details == nil {
		return nil, fmt.Errorf("%w: no details supplied", ErrInvalidInput)
	}
	if err := validation.Struct(details); err != nil {
		return nil, invalidInput(err)
	}

	var event *domain.Event
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.eventRepo.WithTx(tx)
		found, err := s.findByName(ctx, events, name, &support.ID, false)
		if err != nil {
			return err
		}
		found.StartDate = details.StartDate
		found.EndDate = details.EndDate
		found.Location = details.Location
		found.Attendees = details.Attendees
		found.Notes = details.Notes
		if err := events.UpdateDetails(ctx, found); err != nil {
			return storageError("update event", err)
		}
		event = found
		return nil
	})
	if err != nil {
		return nil, txError("update event", err)
	}

	s.logger.Info("event updated", zap.String("event_id", event.ID.String()))
	s.audit.LogUpdate(ctx, EntityEvent, event.ID, event.Name, "details")
	return event, nil
}

// List returns the events matching filter. EventFilterMine selects events the
// actor supports or whose contract the actor manages.
func (s *EventService) List(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	actor, err := s.permissions.Require(ctx, auth.OpListEvents)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.List(ctx, filter, actor.ID)
	if err != nil {
		return nil, storageError("list events", err)
	}
	return events, nil
}

// Delete removes the named event. Managers and admins may delete any event,
// support users only those assigned to them. Both outcomes are audited.
func (s *EventService) Delete(ctx context.Context, name string) error {
	actor, err := s.permissions.RequireAny(ctx, auth.OpDeleteEvent, auth.OpDeleteAssignedEvent)
	if err != nil {
		return err
	}

	var supportID *uuid.UUID
	if !auth.Can(actor.Role, auth.OpDeleteEvent) {
		supportID = &actor.ID
	}

	event, err := s.findByName(ctx, s.eventRepo, name, supportID, false)
	if err != nil {
		s.logger.Warn("event deletion failed", zap.String("event", name), zap.Error(err))
		s.audit.LogDelete(ctx, EntityEvent, nil, name, err)
		return err
	}

	removed, err := s.eventRepo.Delete(ctx, event.ID)
	if err == nil && removed == 0 {
		err = ErrEventNotFound
	} else if err != nil {
		err = storageError("delete event", err)
	}
	if err != nil {
		s.logger.Warn("event deletion failed", zap.String("event_id", event.ID.String()), zap.Error(err))
		s.audit.LogDelete(ctx, EntityEvent, &event.ID, event.Name, err)
		return err
	}

	s.logger.Info("event deleted", zap.String("event_id", event.ID.String()))
	s.audit.LogDelete(ctx, EntityEvent, &event.ID, event.Name, nil)
	return nil
}

func (s *EventService) findByName(ctx context.Context, events *repository.EventRepository, name string, supportID *uuid.UUID, unassignedOnly bool) (*domain.Event, error) {
	event, err := events.GetByName(ctx, strings.TrimSpace(name), supportID, unassignedOnly)
	if err != nil {
		return nil, lookupError("get event", err, ErrEventNotFound)
	}
	return event, nil
}
