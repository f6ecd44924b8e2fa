// Package database opens the relational store and keeps its schema current.
package database

import (
	"fmt"
	"time"

	"astromatch/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options tunes Open. The zero value retries ten times.
type Options struct {
	Attempts int
	// Backoff is the first wait between attempts; each retry adds 200ms.
	Backoff time.Duration
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite, "":
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open connects to the database, retrying while the server comes up.
func Open(driver, dsn string, opts Options) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = 10
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	for i := 0; i < attempts; i++ {
		var gdb *gorm.DB
		gdb, err = gorm.Open(d, cfg)
		if err == nil {
			sqlDB, err2 := gdb.DB()
			if err2 == nil {
				if driver == DriverPostgres {
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetMaxOpenConns(20)
					sqlDB.SetConnMaxLifetime(time.Hour)
				} else {
					// SQLite allows one writer; a single connection also keeps
					// shared in-memory databases alive and consistent.
					sqlDB.SetMaxOpenConns(1)
				}
				return gdb, nil
			}
			err = err2
		}
		log.Warn().Err(err).Int("attempt", i+1).Str("driver", driver).Msg("database not ready")
		if i < attempts-1 {
			time.Sleep(backoff + time.Duration(i)*200*time.Millisecond)
		}
	}
	return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w", driver, attempts, err)
}

// Migrate creates or updates the users and messages tables.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
