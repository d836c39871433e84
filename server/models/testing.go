package models

import (
	"path/filepath"
	"testing"

	"github.com/Daskott/clinicstack/shared"
	"gorm.io/gorm"
)

// InitializeTestDb opens a fresh sqlite database under tb's temp dir with the
// tables of every store migrated.
func InitializeTestDb(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := OpenDB(shared.StorageConfig{
		Driver: "sqlite",
		Path:   filepath.Join(tb.TempDir(), "test.db"),
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}

	for _, migrate := range []func(*gorm.DB) error{Users.AutoMigrate, Patients.AutoMigrate, Exams.AutoMigrate} {
		if err := migrate(db); err != nil {
			tb.Fatalf("failed to migrate test db: %v", err)
		}
	}

	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}
