package controller_test

import (
	"testing"
	"time"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/controller"
	"github.com/epic-events/crm/internal/repository"
	"github.com/epic-events/crm/internal/service"
	"github.com/epic-events/crm/internal/storage"
	"github.com/epic-events/crm/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type harness struct {
	db      *gorm.DB
	writes  *testutil.WriteCounter
	sink    *testutil.ScriptedSink
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenService
	session *auth.Session
	router  *controller.Router
	app     *controller.App
}

func newHarness(t *testing.T, inputs ...string) *harness {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sink := testutil.NewScriptedSink(inputs...)

	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	contractRepo := repository.NewContractRepository(db)
	eventRepo := repository.NewEventRepository(db)

	permissions := service.NewPermissionService(logger)
	audit := service.NewAuditLogService(repository.NewAuditLogRepository(db), logger)
	roles := service.NewRoleService(repository.NewRoleRepository(db), logger)
	hasher := auth.NewPasswordHasher("test-salt", bcrypt.MinCost)

	users := service.NewUserService(db, userRepo, roles, hasher, permissions, audit, logger)
	customers := service.NewCustomerService(customerRepo, permissions, audit, logger)
	contracts := service.NewContractService(db, contractRepo, customerRepo, permissions, audit, logger)
	events := service.NewEventService(db, eventRepo, contractRepo, permissions, audit, logger)

	customerCtl := controller.NewCustomerController(customers, sink, logger)
	contractCtl := controller.NewContractController(contracts, customerCtl, sink, logger)
	router := controller.NewRouter(
		controller.NewUserController(users, roles, audit, sink, logger),
		customerCtl,
		contractCtl,
		controller.NewEventController(events, users, customerCtl, contractCtl, sink, logger),
		sink,
		logger,
	)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	tokens := auth.NewTokenService(auth.TokenConfig{
		SecretKey: "test-secret",
		Validity:  time.Hour,
		SlotName:  "token.txt",
	}, userRepo, store, logger)
	session := auth.NewSession()
	login := auth.NewLoginFlow(auth.LoginConfig{MaxEmailAttempts: 3, MaxPasswordAttempts: 3},
		userRepo, hasher, tokens, session, sink, audit, logger)

	return &harness{
		db:      db,
		writes:  testutil.CountWrites(t, db),
		sink:    sink,
		hasher:  hasher,
		tokens:  tokens,
		session: session,
		router:  router,
		app:     controller.NewApp(login, session, router, sink, logger),
	}
}
