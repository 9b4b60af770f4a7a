// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"libraryapi/internal/db"
)

// Open returns a migrated SQLite database that lives for the duration of t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	gormDB, err := db.Open(db.Options{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "library.db"),
		LogLevel: logger.Silent,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}
