package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Database is the subset of *sql.DB used by SQLiteSlot.
type Database interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteSlot stores the slot as one row of a local SQLite database.
type SQLiteSlot struct {
	db   Database
	name string
}

const createSlotsTable = `
	CREATE TABLE IF NOT EXISTS slots (
		name       TEXT PRIMARY KEY,
		data       BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);
`

// OpenSQLite opens (creating if needed) the database file at path and prepares the slots table.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// a single connection keeps writes serialized
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, createSlotsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create slots table: %w", err)
	}

	return db, nil
}

// NewSQLiteSlot returns the slot called name inside db.
func NewSQLiteSlot(db Database, name string) *SQLiteSlot {
	return &SQLiteSlot{db: db, name: name}
}

func (s *SQLiteSlot) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM slots WHERE name = ?;`, s.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %q: %w", s.name, err)
	}

	return data, nil
}

func (s *SQLiteSlot) Save(ctx context.Context, data []byte) error {
	return s.put(ctx, s.name, data)
}

// Quarantine copies data into its own row named <slot>_corrupt_<timestamp>.
func (s *SQLiteSlot) Quarantine(ctx context.Context, data []byte) error {
	now := time.Now().UTC()
	return s.put(ctx, s.name+"_corrupt_"+now.Format(quarantineStamp), data)
}

func (s *SQLiteSlot) put(ctx context.Context, name string, data []byte) error {
	query := `
		INSERT INTO slots (name, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at;
	`

	_, err := s.db.ExecContext(ctx, query, name, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write slot %q: %w", name, err)
	}

	return nil
}
