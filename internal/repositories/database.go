package repositories

import (
	"fmt"

	"microblog/internal/config"
	"microblog/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase connects to the configured SQL backend and migrates the schema.
func OpenDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("driver %q is not a SQL backend", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer; shared-cache memory databases also lock per table.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates or updates the tables for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Micropost{}, &models.Relationship{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Repositories groups the three repositories of one backend.
type Repositories struct {
	Users         UserRepository
	Relationships RelationshipRepository
	Microposts    MicropostRepository
}

// NewGORMRepositories builds SQL-backed repositories on db.
func NewGORMRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         NewGORMUserRepository(db),
		Relationships: NewGORMRelationshipRepository(db),
		Microposts:    NewGORMMicropostRepository(db),
	}
}

// NewMockRepositories builds repositories sharing one in-memory store.
func NewMockRepositories() Repositories {
	store := NewMockStore()
	return Repositories{
		Users:         store.Users(),
		Relationships: store.Relationships(),
		Microposts:    store.Microposts(),
	}
}
