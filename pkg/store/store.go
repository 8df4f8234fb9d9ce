// Package store persists exported login sessions in an append-only
// SQLite table.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrUnavailable is returned when the store is not configured or closed.
var ErrUnavailable = errors.New("account store unavailable")

// AccountRecord is one completed login's exported session data. Records
// are written once and never mutated.
type AccountRecord struct {
	ID           string            `json:"id"`
	PhoneNumber  string            `json:"phone_number"`
	LocalStorage map[string]string `json:"local_storage"`
	CreatedAt    string            `json:"created_at"` // RFC 3339, server-assigned
}

const accountsSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            TEXT PRIMARY KEY,
	phone_number  TEXT NOT NULL,
	local_storage TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_accounts_created_at ON accounts(created_at);
`

// Store is an append-only SQLite sink for account records.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the accounts database at path, creating it and its schema
// if needed.
func Open(path string) (*Store, error) {
	// WAL mode and a busy timeout, single writer
	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(accountsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)

	return &Store{db: db, now: time.Now}, nil
}

// Append inserts one record. The ID and CreatedAt fields are assigned
// by the store; values supplied by the caller are ignored.
func (s *Store) Append(ctx context.Context, rec AccountRecord) error {
	if s == nil || s.db == nil {
		return ErrUnavailable
	}

	payload, err := json.Marshal(rec.LocalStorage)
	if err != nil {
		return fmt.Errorf("failed to encode local storage: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, phone_number, local_storage, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), rec.PhoneNumber, string(payload), s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// List returns all records, oldest first.
func (s *Store) List(ctx context.Context) ([]AccountRecord, error) {
	if s == nil || s.db == nil {
		return nil, ErrUnavailable
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phone_number, local_storage, created_at FROM accounts ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	records := make([]AccountRecord, 0)
	for rows.Next() {
		var rec AccountRecord
		var payload string
		if err := rows.Scan(&rec.ID, &rec.PhoneNumber, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.LocalStorage); err != nil {
			return nil, fmt.Errorf("failed to decode local storage: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return records, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	return nil
}
