// Package storage implements the durable stores behind classification: the
// reference product catalogue, the append-only feedback log, and the
// persisted embedding vectors, all in one SQLite database.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/stowage-labs/stowage/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store provides access to reference products, feedback, and vectors.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	dbPath string

	// Reference data is loaded once per process and reused; Reload is the
	// explicit staleness-correction path.
	productMu    sync.RWMutex
	productCache []model.Product
	loaded       bool
}

// NewStore opens (creating if needed) the SQLite database at dbPath and runs
// pending migrations.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath, logger: logger}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
