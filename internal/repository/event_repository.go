package repository

import (
	"context"

	"github.com/epic-events/crm/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{db: tx}
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	return r.db.WithContext(ctx).Omit("Contract", "Support").Create(event).Error
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	err := r.preload(r.db.WithContext(ctx)).First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetByName looks an event up by its unique name. A non-nil supportID restricts
// the lookup to events assigned to that user; unassignedOnly restricts it to
// events without support.
func (r *EventRepository) GetByName(ctx context.Context, name string, supportID *uuid.UUID, unassignedOnly bool) (*domain.Event, error) {
	var event domain.Event
	query := r.preload(r.db.WithContext(ctx)).Where("name = ?", name)
	if supportID != nil {
		query = query.Where("support_id = ?", *supportID)
	}
	if unassignedOnly {
		query = query.Where("support_id IS NULL")
	}
	if err := query.First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ExistsForContract reports whether the contract already has its event
func (r *EventRepository) ExistsForContract(ctx context.Context, contractID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Event{}).Where("contract_id = ?", contractID).Count(&count).Error
	return count > 0, err
}

// List returns the events matching filter; actorID scopes EventFilterMine to
// events the actor supports or whose contract the actor manages
func (r *EventRepository) List(ctx context.Context, filter domain.EventFilter, actorID uuid.UUID) ([]domain.Event, error) {
	var events []domain.Event
	query := r.preload(r.db.WithContext(ctx))
	switch filter {
	case domain.EventFilterMine:
		managed := r.db.Model(&domain.Contract{}).Select("id").Where("manager_id = ?", actorID)
		query = query.Where("support_id = ? OR contract_id IN (?)", actorID, managed)
	case domain.EventFilterNoSupport:
		query = query.Where("support_id IS NULL")
	}
	err := query.Order("start_date ASC").Find(&events).Error
	return events, err
}

// AssignSupport sets the support user only while none is assigned.
// It returns the number of rows changed: 0 means the event already had support.
func (r *EventRepository) AssignSupport(ctx context.Context, eventID, supportID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Event{}).
		Where("id = ? AND support_id IS NULL", eventID).
		Update("support_id", supportID)
	return res.RowsAffected, res.Error
}

// UpdateDetails saves the fields a support user may edit
func (r *EventRepository) UpdateDetails(ctx context.Context, event *domain.Event) error {
	return r.db.WithContext(ctx).Model(event).
		Select("start_date", "end_date", "location", "attendees", "notes", "updated_at").
		Updates(event).Error
}

// Delete removes an event and returns the number of rows removed
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Event{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *EventRepository) preload(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Contract").
		Preload("Contract.Customer").
		Preload("Support")
}
