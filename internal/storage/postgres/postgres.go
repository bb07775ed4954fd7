// Package postgres implements the storage interface using PostgreSQL via
// the pgx stdlib driver.
package postgres

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStorage implements the Storage interface using PostgreSQL
type PostgresStorage struct {
	db     *sql.DB
	dsn    string
	closed atomic.Bool
}

// New creates a new PostgreSQL storage backend from a DSN
func New(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStorage{
		db:  db,
		dsn: dsn,
	}, nil
}

// Close closes the database connection
func (s *PostgresStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// Path identifies the backing store
func (s *PostgresStorage) Path() string {
	return s.dsn
}

// UnderlyingDB returns the underlying *sql.DB connection. Direct access
// bypasses the storage layer; intended for migrations and diagnostics.
func (s *PostgresStorage) UnderlyingDB() *sql.DB {
	return s.db
}
