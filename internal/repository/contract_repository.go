package repository

import (
	"context"

	"github.com/epic-events/crm/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *ContractRepository) WithTx(tx *gorm.DB) *ContractRepository {
	return &ContractRepository{db: tx}
}

func (r *ContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	return r.db.WithContext(ctx).Omit("Customer", "Manager").Create(contract).Error
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Manager").
		First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// ListByCustomer returns a customer's contracts, oldest first
func (r *ContractRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Manager").
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&contracts).Error
	return contracts, err
}

// List returns the contracts matching filter
func (r *ContractRepository) List(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	var contracts []domain.Contract
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Manager")
	query = r.applyFilter(query, filter)
	err := query.Order("creation_date DESC").Find(&contracts).Error
	return contracts, err
}

// SaveState persists the mutable state of a contract: signature, remaining amount
// and the last-modified stamp
func (r *ContractRepository) SaveState(ctx context.Context, contract *domain.Contract) error {
	return r.db.WithContext(ctx).Model(contract).
		Select("is_signed", "remaining_amount", "creation_date", "updated_at").
		Updates(contract).Error
}

func (r *ContractRepository) applyFilter(query *gorm.DB, filter domain.ContractFilter) *gorm.DB {
	switch filter {
	case domain.ContractFilterNotSigned:
		return query.Where("is_signed = ?", false)
	case domain.ContractFilterNotFullyPaid:
		return query.Where("remaining_amount > ?", 0)
	default:
		return query
	}
}
