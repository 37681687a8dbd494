package repository

import (
	"context"

	"github.com/epic-events/crm/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *CustomerRepository) WithTx(tx *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Omit("Sales").Create(customer).Error
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).Preload("Sales").First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).Preload("Sales").First(&customer, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// EmailTaken reports whether another customer than excludeID already uses email
func (r *CustomerRepository) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Customer{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Update saves the editable columns of a customer
func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Model(customer).
		Select("first_name", "last_name", "email", "phone", "company_name", "last_contact_date", "updated_at").
		Updates(customer).Error
}

// List returns customers ordered by company; a non-nil salesID restricts to that owner
func (r *CustomerRepository) List(ctx context.Context, salesID *uuid.UUID) ([]domain.Customer, error) {
	var customers []domain.Customer
	query := r.db.WithContext(ctx).Preload("Sales")
	if salesID != nil {
		query = query.Where("sales_id = ?", *salesID)
	}
	err := query.Order("company_name ASC, last_name ASC").Find(&customers).Error
	return customers, err
}
