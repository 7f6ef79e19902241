package repository

import (
	"database/sql"
	"fmt"
	"time"

	"prcontacts-backend/utils/logger"

	_ "modernc.org/sqlite" // SQLite driver
)

// sqliteSchema creates the contact and user tables. Timestamps are unix nanoseconds
// so ordering on them is numeric.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS contacts (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	position            TEXT NOT NULL DEFAULT '',
	organization        TEXT NOT NULL DEFAULT '',
	email               TEXT NOT NULL DEFAULT '',
	phone               TEXT NOT NULL DEFAULT '',
	wikipedia_url       TEXT NOT NULL DEFAULT '',
	tags                TEXT NOT NULL DEFAULT '[]',
	notes               TEXT NOT NULL DEFAULT '',
	contact_person      TEXT,
	search_text         TEXT NOT NULL DEFAULT '',
	created_at          INTEGER NOT NULL,
	updated_at          INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contacts_created_at ON contacts(created_at);
CREATE INDEX IF NOT EXISTS idx_contacts_organization ON contacts(organization);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	roles         TEXT NOT NULL DEFAULT '[]',
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
`

// SQLiteStore owns the SQLite connection shared by the contact and user repositories
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

// NewSQLiteStore opens (or creates) the database at dsn and applies the schema
func NewSQLiteStore(dsn string, log logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection serialises writes and keeps
	// in-memory databases alive for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Infof("SQLite store opened at %s", dsn)
	return &SQLiteStore{db: db, logger: log}, nil
}

// Contacts returns the contact repository backed by this store
func (s *SQLiteStore) Contacts() *SQLiteContactRepository {
	return &SQLiteContactRepository{db: s.db, logger: s.logger, now: time.Now}
}

// Users returns the user repository backed by this store
func (s *SQLiteStore) Users() *SQLiteUserRepository {
	return &SQLiteUserRepository{db: s.db, logger: s.logger, now: time.Now}
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func toUnixNano(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
