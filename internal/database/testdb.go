package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/storeit-dev/storeit/pkg/models"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// NewTestDatabase opens an isolated in-memory store with the full schema
// applied. Each call gets its own database.
func NewTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         glogger.Default.LogMode(glogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.File{},
		&models.FileGrant{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
