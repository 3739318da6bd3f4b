package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/mikepea/bookmarks/pkg/bookmarks/config"
	"github.com/mikepea/bookmarks/pkg/bookmarks/database"
	"github.com/mikepea/bookmarks/pkg/bookmarks/logger"
	"github.com/mikepea/bookmarks/pkg/bookmarks/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bootstrap loads configuration, builds the logger and opens a migrated database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	// Variables already in the environment win over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogPretty)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.Database.Driver))

	if err := models.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database migrations completed")

	return cfg, log, db, nil
}
