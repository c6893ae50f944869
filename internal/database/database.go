package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
)

// Connect opens the application database. Postgres when a host is
// configured, a local SQLite file otherwise. TranslateError is on so unique
// constraint violations come back as gorm.ErrDuplicatedKey on both engines,
// which the membership and follow services depend on.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	if cfg.UsePostgres() {
		log.Printf("Connecting to database at %s:%s as user %s", cfg.DBHost, cfg.DBPort, cfg.DBUser)
		db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		return db, nil
	}

	log.Printf("Using SQLite for local development: %s", cfg.SQLitePath)
	return gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
}

// NewSQL opens a raw database/sql connection to Postgres. The migration
// runner uses this instead of GORM so the SQL files execute exactly as
// written.
func NewSQL(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}
	return db, nil
}

// HealthCheck checks if the database is accessible
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
