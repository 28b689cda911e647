// Package store is the relational persistence layer (C4 chunk store, C9
// conversation store). Writes are transactional; a write failure rolls back
// and surfaces a ragerrors.StorageError, per spec §4.4/§4.9/§7.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ragcore/ragcore/config"
	"github.com/ragcore/ragcore/models"
)

// Ping opens a raw database/sql connection via lib/pq and pings it, failing
// fast before gorm's pool is built. The teacher's scripts/create_tables.go
// and scripts/apply_migration.go used the same driver for their one-shot
// connectivity checks; this keeps that diagnostic path instead of dropping
// the dependency.
func Ping(cfg *config.DatabaseConfig) error {
	sqlDB, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to open database handle: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// Open connects to Postgres and configures the connection pool, following
// the teacher's initDB shape.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	if err := Ping(cfg); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	return db, nil
}

// AutoMigrate creates/updates every table the core owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.KnowledgeBase{},
		&models.Document{},
		&models.KnowledgeChunk{},
		&models.Conversation{},
		&models.Message{},
	)
}
