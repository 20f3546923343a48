// Package store persists saved projects in a SQLite database so they can be
// listed, reloaded and recalculated later.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no saved project has the requested id.
var ErrNotFound = errors.New("not found")

const memoryPath = ":memory:"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		inputs TEXT NOT NULL,
		overrides TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_updated_at ON projects(updated_at)`,
}

// Store is a SQLite-backed project store.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open opens the database at path, creating its directory and schema when
// needed. ":memory:" opens a private in-memory database.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == memoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := Migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Debug("opened project store",
		zap.String("op", "store.Open"),
		zap.String("path", path),
	)
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Migrate runs all schema migrations. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
