package testutil

import (
	"path/filepath"
	"testing"

	"DF-DOCGEN/internal"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database backed by a file in t.TempDir().
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	if err := internal.AutoMigrate(db); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	t.Cleanup(func() { internal.CloseDB(db) })
	return db
}
