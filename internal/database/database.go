package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/epic-events/crm/internal/config"
	"github.com/epic-events/crm/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Dialector returns the gorm dialector for the configured driver
func Dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.ConnectionString()), nil
	case "sqlite":
		return sqlite.Open(SQLiteDSN(cfg.SQLitePath)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// SQLiteDSN enables foreign keys on a sqlite path
func SQLiteDSN(path string) string {
	return path + "?_foreign_keys=on"
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())
	if cfg.Driver == "sqlite" {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// AutoMigrate runs automatic migrations (for development and tests only)
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Role{},
		&domain.User{},
		&domain.Customer{},
		&domain.Contract{},
		&domain.Event{},
		&domain.AuditLog{},
	)
}

var roleNames = map[domain.UserRoleType]string{
	domain.RoleManager: "Manager",
	domain.RoleSales:   "Sales",
	domain.RoleSupport: "Support",
	domain.RoleAdmin:   "Admin",
}

// SeedRoles inserts the four roles, leaving existing rows untouched
func SeedRoles(db *gorm.DB) error {
	roles := make([]domain.Role, 0, len(domain.AllRoles))
	for _, code := range domain.AllRoles {
		roles = append(roles, domain.Role{Code: code, Name: roleNames[code]})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}
	return nil
}

// Default administrator identity created by SeedAdmin
const (
	AdminUsername = "Admin"
	AdminEmail    = "admin@example.com"
	AdminPhone    = "+33123456789"
)

// SeedAdmin creates the default administrator when no user holds its email.
// It reports whether a user was created.
func SeedAdmin(db *gorm.DB, passwordHash string) (bool, error) {
	var existing domain.User
	err := db.Where("email = ?", AdminEmail).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	admin := &domain.User{
		Username:     AdminUsername,
		Email:        AdminEmail,
		PasswordHash: passwordHash,
		FullName:     "Administrator",
		Phone:        AdminPhone,
		Role:         domain.RoleManager,
	}
	if err := db.Create(admin).Error; err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}
