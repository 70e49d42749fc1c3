package database

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"samstream/internal/logging"
)

type Config struct {
	FileName string `envconfig:"DB_FILE_NAME" default:"samstream.db"`
}

type DB struct {
	DB *bolt.DB
}

func NewFromEnv(ctx context.Context, config *Config) (*DB, error) {
	logger := logging.FromContext(ctx)
	logger.Infof("opening results database %s", config.FileName)

	db, err := bolt.Open(config.FileName, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	return &DB{DB: db}, nil
}

func (db *DB) Close(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	logger.Infof("closing results database")

	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("error closing database: %w", err)
	}
	return nil
}
