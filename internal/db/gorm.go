package db

import (
	"database/sql"
	"errors"
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Gorm wraps an opened (and migrated) connection pool in a GORM handle.
// Schema is owned by the embedded migrations, so AutoMigrate is never used.
func Gorm(d *sql.DB) (*gorm.DB, error) {
	if d == nil {
		return nil, errors.New("nil db")
	}
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	return gorm.Open(sqlite.Dialector{Conn: d}, &gorm.Config{
		Logger:                 gLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
}

// OpenGorm opens path, applies migrations and returns both handles.
func OpenGorm(path string) (*sql.DB, *gorm.DB, error) {
	d, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	g, err := Gorm(d)
	if err != nil {
		_ = d.Close()
		return nil, nil, err
	}
	return d, g, nil
}
