package repository

import (
	"context"

	"github.com/epic-events/crm/internal/domain"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	var roles []domain.Role
	err := r.db.WithContext(ctx).Order("code ASC").Find(&roles).Error
	return roles, err
}

// Exists reports whether the roles table holds code
func (r *RoleRepository) Exists(ctx context.Context, code domain.UserRoleType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Role{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}
