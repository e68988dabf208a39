package db

import (
	"github.com/collabtok/collabtok/internal/db/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the SQLite database and runs migrations.
func InitDB(dbPath string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(
		&models.Account{},
		&models.Profile{},
		&models.StatsSnapshot{},
		&models.TokenRecord{},
	); err != nil {
		return nil, err
	}

	return gdb, nil
}
