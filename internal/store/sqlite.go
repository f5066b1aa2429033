package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/recstore/internal/record"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - records table
const currentSchemaVersion = 1

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = ":memory:"

// SQLite is a Store backed by SQLite.
//
// The pool is limited to one connection, so every statement is serialized on
// it. That connection is the store's single exclusion boundary, and it keeps
// an in-memory database alive for the life of the store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database and applies pragmas and schema.
// Use MemoryDSN for a database that lives only as long as the store.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: serializes access and pins the in-memory database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Put inserts rec. ON CONFLICT(id) DO NOTHING makes the uniqueness check and
// the insert one statement; zero affected rows means the ID was taken.
func (s *SQLite) Put(ctx context.Context, rec record.Record) error {
	ctx = context.WithoutCancel(ctx)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO records (id, name, year, was_good)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, rec.ID, rec.Name, int64(rec.Year), rec.WasGood)
	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("put record: rows affected: %w", err)
	}
	if n == 0 {
		return record.NewDuplicateIDError(rec.ID)
	}
	return nil
}

// Get returns the record for id.
func (s *SQLite) Get(ctx context.Context, id string) (record.Record, error) {
	ctx = context.WithoutCancel(ctx)

	var (
		rec  record.Record
		year int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, year, was_good
		FROM records
		WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Name, &year, &rec.WasGood)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, record.NewNotFoundError(id)
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("get record: %w", err)
	}

	rec.Year = uint16(year)
	return rec, nil
}

// Close closes the database. An in-memory database is discarded.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and stamps user_version.
// Refuses databases written by a newer schema.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *SQLite) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
