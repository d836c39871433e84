package models

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Daskott/clinicstack/shared"
	"github.com/Daskott/clinicstack/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// OpenDB connects to the store described by config.
func OpenDB(config shared.StorageConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(config)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %v", err)
	}

	// sqlite only tolerates a single writer
	if config.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func dialectorFor(config shared.StorageConfig) (gorm.Dialector, error) {
	switch config.Driver {
	case "mysql":
		// clientFoundRows makes UPDATE report matched rows, so an update that
		// leaves a row unchanged is not mistaken for a missing row.
		return mysql.Open(fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
			config.User, config.Password, config.Host, config.Port, config.Name,
		)), nil
	case "postgres":
		return postgres.Open(fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
			config.Host, config.User, config.Password, config.Name, config.Port,
		)), nil
	case "sqlite":
		if dir := filepath.Dir(config.Path); dir != "." {
			if err := utils.CreateDirIfNotExist(dir); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(config.Path), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", config.Driver)
	}
}
