// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"tasktimer/backend/internal/database"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database. The pool is pinned
// to one connection because every new :memory: connection is a separate
// empty database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	pool, err := database.NewDatabasePool(&database.PoolConfig{
		Driver:       database.DriverSQLite,
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     logger.Silent,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := database.Migrate(pool.DB); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return pool.DB
}
