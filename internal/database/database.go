// Package database opens the file-record store and owns its sentinel errors.
package database

import (
	"time"

	"github.com/storeit-dev/storeit/internal/config"
	"github.com/storeit-dev/storeit/internal/logging"
	"github.com/storeit-dev/storeit/pkg/models"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDatabase opens a postgres-backed gorm DB, retrying briefly so the server
// survives a database that is still coming up.
func NewDatabase(cfg *config.DBConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	lvl, lvlErr := zapcore.ParseLevel(cfg.LogLevel)
	if lvlErr != nil {
		lvl = zapcore.WarnLevel
	}
	logger := NewLogger(time.Second, true, lvl)

	for i := 0; i <= 5; i++ {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DataSource,
			PreferSimpleProtocol: !cfg.PrepareStmt,
		}), &gorm.Config{
			Logger:         logger,
			TranslateError: true,
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		if err == nil {
			break
		}
		logging.DefaultLogger().Sugar().Warnf("failed to open database: %v", err)
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Pool.Enable {
		rawDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		rawDB.SetMaxOpenConns(cfg.Pool.MaxOpenConnections)
		rawDB.SetMaxIdleConns(cfg.Pool.MaxIdleConnections)
		rawDB.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	}

	return db, nil
}

// MigrateDB brings the schema up to date.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.File{},
		&models.FileGrant{},
	)
}
