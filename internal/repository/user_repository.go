package repository

import (
	"context"

	"github.com/epic-events/crm/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository is the credential store: users looked up by email or id
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether another user than excludeID already uses email
func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

// UsernameTaken reports whether another user than excludeID already uses username
func (r *UserRepository) UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Update saves the editable columns of a user
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Model(user).
		Select("username", "email", "full_name", "phone", "role", "password_hash", "updated_at").
		Updates(user).Error
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("username ASC").Find(&users).Error
	return users, err
}

// CascadeResult counts the rows removed or detached by DeleteCascade
type CascadeResult struct {
	Customers        int64
	Contracts        int64
	Events           int64
	UnassignedEvents int64
}

// DeleteCascade removes a user and everything it owns exclusively:
// its customers, the contracts of those customers and the contracts it manages,
// and the events of those contracts. Events it only supports are detached.
// Call it inside a transaction so the cascade is all-or-nothing.
func (r *UserRepository) DeleteCascade(ctx context.Context, id uuid.UUID) (*CascadeResult, error) {
	db := r.db.WithContext(ctx)
	result := &CascadeResult{}

	var customerIDs []uuid.UUID
	if err := db.Model(&domain.Customer{}).Where("sales_id = ?", id).Pluck("id", &customerIDs).Error; err != nil {
		return nil, err
	}

	contractQuery := db.Model(&domain.Contract{}).Where("manager_id = ?", id)
	if len(customerIDs) > 0 {
		contractQuery = contractQuery.Or("customer_id IN ?", customerIDs)
	}
	var contractIDs []uuid.UUID
	if err := contractQuery.Pluck("id", &contractIDs).Error; err != nil {
		return nil, err
	}

	if len(contractIDs) > 0 {
		res := db.Where("contract_id IN ?", contractIDs).Delete(&domain.Event{})
		if res.Error != nil {
			return nil, res.Error
		}
		result.Events = res.RowsAffected
	}

	res := db.Model(&domain.Event{}).Where("support_id = ?", id).Update("support_id", nil)
	if res.Error != nil {
		return nil, res.Error
	}
	result.UnassignedEvents = res.RowsAffected

	if len(contractIDs) > 0 {
		res = db.Where("id IN ?", contractIDs).Delete(&domain.Contract{})
		if res.Error != nil {
			return nil, res.Error
		}
		result.Contracts = res.RowsAffected
	}

	if len(customerIDs) > 0 {
		res = db.Where("id IN ?", customerIDs).Delete(&domain.Customer{})
		if res.Error != nil {
			return nil, res.Error
		}
		result.Customers = res.RowsAffected
	}

	res = db.Delete(&domain.User{}, "id = ?", id)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return result, nil
}
