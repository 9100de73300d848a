// Package store provides SQLite-backed persistence for contacts and events.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS contacts (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	external_id    TEXT NOT NULL DEFAULT '',
	given_name     TEXT NOT NULL,
	family_name    TEXT NOT NULL DEFAULT '',
	middle_name    TEXT NOT NULL DEFAULT '',
	phone_number   TEXT NOT NULL DEFAULT '',
	photo_ref      TEXT NOT NULL DEFAULT '',
	birth_date_raw TEXT NOT NULL DEFAULT '',
	tags           TEXT NOT NULL DEFAULT '[]',
	notes          TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_external_id
	ON contacts(external_id) WHERE external_id != '';

CREATE TABLE IF NOT EXISTS events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	contact_id   INTEGER REFERENCES contacts(id) ON DELETE CASCADE,
	name         TEXT NOT NULL,
	event_type   TEXT NOT NULL,
	date         TEXT NOT NULL,
	is_recurring INTEGER NOT NULL DEFAULT 1,
	greetings    TEXT NOT NULL DEFAULT '[]',
	notes        TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_contact ON events(contact_id);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);
`

// DB wraps a sql.DB with contact and event operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// Foreign keys are enabled so deleting a contact cascades to its events.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
