package service

import (
	"context"

	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/repository"
	"go.uber.org/zap"
)

// RoleService exposes the roles table
type RoleService struct {
	roleRepo *repository.RoleRepository
	logger   *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(roleRepo *repository.RoleRepository, logger *zap.Logger) *RoleService {
	return &RoleService{roleRepo: roleRepo, logger: logger}
}

// List returns the roles a user can be given
func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, storageError("list roles", err)
	}
	return roles, nil
}

// Validate checks that role is known and present in the roles table
func (s *RoleService) Validate(ctx context.Context, role domain.UserRoleType) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	ok, err := s.roleRepo.Exists(ctx, role)
	if err != nil {
		return storageError("check role", err)
	}
	if !ok {
		return ErrInvalidRole
	}
	return nil
}
