// Package testutil provides the in-memory database, fixtures and fakes shared
// by package tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/database"
	"github.com/epic-events/crm/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database with the schema
// migrated and the roles seeded
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(":memory:")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedRoles(db))
	return db
}

// ContextFor returns a background context acting as user
func ContextFor(user *domain.User) context.Context {
	return auth.WithUser(context.Background(), user)
}

// WriteCounter counts the statements that insert, update or delete rows, per table
type WriteCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

// CountWrites registers callbacks on db counting every write statement
func CountWrites(t *testing.T, db *gorm.DB) *WriteCounter {
	t.Helper()

	c := &WriteCounter{counts: make(map[string]int)}
	record := func(tx *gorm.DB) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.counts[tx.Statement.Table]++
	}

	cb := db.Callback()
	require.NoError(t, cb.Create().After("gorm:create").Register("testutil:count_create", record))
	require.NoError(t, cb.Update().After("gorm:update").Register("testutil:count_update", record))
	require.NoError(t, cb.Delete().After("gorm:delete").Register("testutil:count_delete", record))
	return c
}

// Writes returns the write statements issued against tables other than the audit trail
func (c *WriteCounter) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for table, n := range c.counts {
		if table != "audit_logs" {
			total += n
		}
	}
	return total
}

// Table returns the write statements issued against table
func (c *WriteCounter) Table(table string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[table]
}

// Reset clears the counts
func (c *WriteCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = make(map[string]int)
}
