package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"codista-cms/internal/config"
	"codista-cms/internal/models"
	"codista-cms/internal/repository"
	"codista-cms/pkg/logger"
)

// Models lists every table managed by Migrate, in creation order.
func Models() []interface{} {
	return []interface{}{
		&models.Page{},
		&models.Site{},
		&models.Image{},
		&models.User{},
		&models.Menu{},
		&models.MenuItem{},
	}
}

func Open(cfg *config.Config) (*gorm.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger.Info("Connecting to database", map[string]interface{}{
		"host":     cfg.DBHost,
		"database": cfg.DBName,
	})

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate creates the schema, the tree root every other page hangs off and a
// default site served from it.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	logger.Info("Running database migrations", nil)

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	root, err := repository.NewPageRepository(db).EnsureRoot()
	if err != nil {
		return fmt.Errorf("failed to create page tree root: %w", err)
	}

	sites := repository.NewSiteRepository(db)
	if _, err := sites.GetDefault(); errors.Is(err, gorm.ErrRecordNotFound) {
		if err := sites.Create(models.NewDefaultSite(root)); err != nil {
			return fmt.Errorf("failed to create default site: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to load default site: %w", err)
	}

	logger.Info("Database migration completed", map[string]interface{}{
		"root_page_id": root.ID,
	})
	return nil
}

func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error(err, "Failed to close database connection", nil)
		}
	}
}
