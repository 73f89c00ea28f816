package util

import (
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CreateDatabaseInstance opens a gorm connection for the configured driver.
// An empty sqlite DSN falls back to an in-memory database, which is what the
// tests use.
func CreateDatabaseInstance(cfg *gorm.Config, driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "mysql":
		return gorm.Open(mysql.Open(dsn), cfg)
	case "pg":
		return gorm.Open(postgres.Open(dsn), cfg)
	}
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	// An in-memory sqlite database exists per connection; pin the pool to
	// one so every query sees the same tables.
	if dsn == "file::memory:" || dsn == ":memory:" {
		if sqlDB, derr := db.DB(); derr == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	return db, nil
}
