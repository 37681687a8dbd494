package service

import (
	"context"
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

// UserService manages CRM accounts
type UserService struct {
	db          *gorm.DB
	userRepo    *repository.UserRepository
	roles       *RoleService
	hasher      *auth.PasswordHasher
	permissions *PermissionService
	audit       *AuditLogService
	logger      *zap.Logger
}

func NewUserService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	roles *RoleService,
	hasher *auth.PasswordHasher,
	permissions *PermissionService,
	audit *AuditLogService,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		db:          db,
		userRepo:    userRepo,
		roles:       roles,
		hasher:      hasher,
		permissions: permissions,
		audit:       audit,
		logger:      logger,
	}
}

// Create adds a user. Only managers and admins may create users.
func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	actor, err := s.permissions.Require(ctx, auth.OpManageUsers)
	if err != nil {
		return nil, err
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, invalidInput(err)
	}
	if err := s.roles.Validate(ctx, req.Role); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, req.Email, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, req.Username, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, invalidInput(err)
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         req.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storageError("create user", err)
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("created_by", actor.ID.String()))
	s.audit.LogCreate(ctx, EntityUser, user.ID, user.Username)
	return user, nil
}

// Update replaces the editable fields of the user identified by id
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateUserRequest) (*domain.User, error) {
	if _, err := s.permissions.Require(ctx, auth.OpManageUsers); err != nil {
		return nil, err
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, invalidInput(err)
	}
	if err := s.roles.Validate(ctx, req.Role); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("get user", err, ErrUserNotFound)
	}
	if err := s.ensureEmailFree(ctx, req.Email, user.ID); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, req.Username, user.ID); err != nil {
		return nil, err
	}

	user.Username = req.Username
	user.FullName = req.FullName
	user.Email = req.Email
	user.Phone = req.Phone
	user.Role = req.Role

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, storageError("update user", err)
	}

	s.logger.Info("user updated", zap.String("user_id", user.ID.String()))
	s.audit.LogUpdate(ctx, EntityUser, user.ID, user.Username, "")
	return user, nil
}

// Delete removes a user together with the customers, contracts and events it
// owns, in a single transaction. Events it supports are left unassigned.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (*repository.CascadeResult, error) {
	actor, err := s.permissions.Require(ctx, auth.OpManageUsers)
	if err != nil {
		return nil, err
	}
	if actor.ID == id {
		return nil, ErrSelfDelete
	}

	var (
		user   *domain.User
		result *repository.CascadeResult
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.userRepo.WithTx(tx)
		var err error
		user, err = repo.GetByID(ctx, id)
		if err != nil {
			return lookupError("get user", err, ErrUserNotFound)
		}
		result, err = repo.DeleteCascade(ctx, id)
		if err != nil {
			return storageError("delete user", err)
		}
		return nil
	})
	if err != nil {
		err = txError("delete user", err)
		s.audit.LogDelete(ctx, EntityUser, &id, "", err)
		return nil, err
	}

	s.logger.Info("user deleted",
		zap.String("user_id", id.String()),
		zap.Int64("customers", result.Customers),
		zap.Int64("contracts", result.Contracts),
		zap.Int64("events", result.Events),
		zap.Int64("unassigned_events", result.UnassignedEvents))
	s.audit.LogDelete(ctx, EntityUser, &id, user.Username, nil)
	return result, nil
}

// List returns every user
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	if _, err := s.permissions.Require(ctx, auth.OpManageUsers); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, storageError("list users", err)
	}
	return users, nil
}

// GetByEmail looks a user up by email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if _, err := s.permissions.Actor(ctx); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, lookupError("get user", err, ErrUserNotFound)
	}
	return user, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, excludeID uuid.UUID) error {
	taken, err := s.userRepo.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return storageError("check email", err)
	}
	if taken {
		return fmt.Errorf("email %s: %w", email, ErrConflict)
	}
	return nil
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username string, excludeID uuid.UUID) error {
	taken, err := s.userRepo.UsernameTaken(ctx, username, excludeID)
	if err != nil {
		return storageError("check username", err)
	}
	if taken {
		return fmt.Errorf("username %s: %w", username, ErrConflict)
	}
	return nil
}
