package main

import (
	"context"
	"fmt"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/controller"
	"github.com/epic-events/crm/internal/display"
	"github.com/epic-events/crm/internal/jobs"
	"github.com/epic-events/crm/internal/repository"
	"github.com/epic-events/crm/internal/service"
	"github.com/epic-events/crm/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// container wires repositories, services and controllers for one process
type container struct {
	env   *env
	audit *service.AuditLogService
	app   *controller.App
}

func newContainer(ctx context.Context, e *env, db *gorm.DB, sink display.Sink) (*container, error) {
	cfg, log := e.cfg, e.log

	store, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	contractRepo := repository.NewContractRepository(db)
	eventRepo := repository.NewEventRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	permissionService := service.NewPermissionService(log)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)
	roleService := service.NewRoleService(roleRepo, log)
	hasher := auth.NewPasswordHasher(cfg.Auth.PasswordSalt, cfg.Auth.BcryptCost)
	userService := service.NewUserService(db, userRepo, roleService, hasher, permissionService, auditLogService, log)
	customerService := service.NewCustomerService(customerRepo, permissionService, auditLogService, log)
	contractService := service.NewContractService(db, contractRepo, customerRepo, permissionService, auditLogService, log)
	eventService := service.NewEventService(db, eventRepo, contractRepo, permissionService, auditLogService, log)

	// Initialize authentication
	tokens := auth.NewTokenService(auth.TokenConfig{
		SecretKey: cfg.Auth.SecretKey,
		Validity:  cfg.Auth.TokenValidity(),
		SlotName:  cfg.Storage.TokenSlotName,
	}, userRepo, store, log)
	session := auth.NewSession()
	login := auth.NewLoginFlow(auth.LoginConfig{
		MaxEmailAttempts:    cfg.Auth.MaxEmailAttempts,
		MaxPasswordAttempts: cfg.Auth.MaxPasswordAttempts,
	}, userRepo, hasher, tokens, session, sink, auditLogService, log)

	// Initialize controllers
	customerController := controller.NewCustomerController(customerService, sink, log)
	contractController := controller.NewContractController(contractService, customerController, sink, log)
	router := controller.NewRouter(
		controller.NewUserController(userService, roleService, auditLogService, sink, log),
		customerController,
		contractController,
		controller.NewEventController(eventService, userService, customerController, contractController, sink, log),
		sink,
		log,
	)

	return &container{
		env:   e,
		audit: auditLogService,
		app:   controller.NewApp(login, session, router, sink, log),
	}, nil
}

// scheduler returns a scheduler with the housekeeping jobs registered
func (c *container) scheduler() (*jobs.Scheduler, error) {
	cfg := c.env.cfg.Jobs
	scheduler := jobs.NewScheduler(c.env.log)
	if cfg.AuditRetentionDays > 0 {
		if err := jobs.RegisterAuditRetentionJob(scheduler, c.audit, cfg.AuditRetention(), cfg.AuditPurgeSchedule, c.env.log); err != nil {
			return nil, fmt.Errorf("failed to register audit retention job: %w", err)
		}
	}
	return scheduler, nil
}
