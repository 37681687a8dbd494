package service

import (
	"context"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/domain"
	"go.uber.org/zap"
)

// PermissionService answers the role and ownership questions the workflow
// services ask before mutating anything
type PermissionService struct {
	logger *zap.Logger
}

// NewPermissionService creates a new permission service
func NewPermissionService(logger *zap.Logger) *PermissionService {
	return &PermissionService{logger: logger}
}

// Actor returns the user bound to ctx
func (s *PermissionService) Actor(ctx context.Context) (*domain.User, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Require returns the actor when its role may perform op
func (s *PermissionService) Require(ctx context.Context, op auth.Operation) (*domain.User, error) {
	user, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}
	if !auth.Can(user.Role, op) {
		s.logger.Warn("permission denied",
			zap.String("user_id", user.ID.String()),
			zap.String("role", string(user.Role)),
			zap.String("operation", string(op)))
		return nil, ErrPermissionDenied
	}
	return user, nil
}

// RequireAny returns the actor when its role may perform at least one of ops
func (s *PermissionService) RequireAny(ctx context.Context, ops ...auth.Operation) (*domain.User, error) {
	user, err := s.Actor(ctx)
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		if auth.Can(user.Role, op) {
			return user, nil
		}
	}
	return nil, ErrPermissionDenied
}

// CanManageCustomer reports whether user may edit customer: its sales owner or a manager
func (s *PermissionService) CanManageCustomer(user *domain.User, customer *domain.Customer) bool {
	return user.Role == domain.RoleManager || customer.SalesID == user.ID
}
