package service_test

import (
	"testing"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/repository"
	"github.com/epic-events/crm/internal/service"
	"github.com/epic-events/crm/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	writes    *testutil.WriteCounter
	audit     *service.AuditLogService
	users     *service.UserService
	customers *service.CustomerService
	contracts *service.ContractService
	events    *service.EventService
}

func newTestEnv(t *testing.T) *testEnv {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	contractRepo := repository.NewContractRepository(db)
	eventRepo := repository.NewEventRepository(db)

	permissions := service.NewPermissionService(logger)
	audit := service.NewAuditLogService(repository.NewAuditLogRepository(db), logger)
	roles := service.NewRoleService(repository.NewRoleRepository(db), logger)
	hasher := auth.NewPasswordHasher("test-salt", bcrypt.MinCost)

	return &testEnv{
		db:        db,
		writes:    testutil.CountWrites(t, db),
		audit:     audit,
		users:     service.NewUserService(db, userRepo, roles, hasher, permissions, audit, logger),
		customers: service.NewCustomerService(customerRepo, permissions, audit, logger),
		contracts: service.NewContractService(db, contractRepo, customerRepo, permissions, audit, logger),
		events:    service.NewEventService(db, eventRepo, contractRepo, permissions, audit, logger),
	}
}

func ptr[T any](v T) *T {
	return &v
}
