package db

import (
	"fmt"
	"time"

	"github.com/windoze95/dishfinder-api/internal/config"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// New opens the Postgres database backing the pgvector index.
func New(cfg *config.Config) (*gorm.DB, error) {
	return connectToDatabaseWithRetry(cfg.EnvVars.DatabaseUrl, time.Minute, 5*time.Second)
}

// connectToDatabaseWithRetry connects to the database and retries until
// timeout has elapsed.
func connectToDatabaseWithRetry(databaseURL string, timeout, interval time.Duration) (*gorm.DB, error) {
	logger.Get().Info("connecting to database")
	var database *gorm.DB
	var err error

	start := time.Now()
	for {
		database, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Since(start) > timeout {
			return nil, fmt.Errorf("could not connect to database after %s: %w", timeout, err)
		}
		logger.Get().Warn("could not connect to database, retrying...", zap.Error(err))
		time.Sleep(interval)
	}

	// Enable pgvector extension for embedding similarity search
	if err := database.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("failed to enable pgvector extension: %w", err)
	}

	return database, nil
}
