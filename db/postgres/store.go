// Package postgres is the persistence gateway and catalog read store: a
// single Postgres-backed store exposing read-mostly catalog lookups plus
// the transactional multi-table write path that keeps a query row and its
// children all-or-nothing.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the Postgres connection pool. The pool itself is the only
// shared resource the core touches; calculator components never see it.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres via the given DSN and sizes the pool.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// Close returns the pool's connections and closes it.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate applies the embedded schema. Idempotent: every statement is
// CREATE TABLE/INDEX IF NOT EXISTS.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// DB exposes the underlying pool for components (sqlmock-friendly tests
// construct a Store directly with a *sql.DB instead).
func (s *Store) DB() *sql.DB {
	return s.db
}
