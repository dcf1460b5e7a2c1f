package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store over modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens the database at the given path and configures WAL mode.
// Pass ":memory:" for an ephemeral store.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %s: %w", pragma, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS claims (
	id                TEXT PRIMARY KEY,
	claim_text        TEXT NOT NULL,
	attributed_to     TEXT NOT NULL,
	source_url        TEXT,
	observed_at       DATETIME,
	batch_id          TEXT,
	processing_status TEXT NOT NULL DEFAULT 'PENDING',
	created_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	statement   TEXT NOT NULL,
	occurred_at DATETIME,
	sources     TEXT NOT NULL DEFAULT '[]',
	entities    TEXT NOT NULL DEFAULT '[]',
	tags        TEXT NOT NULL DEFAULT '[]',
	action_type TEXT,
	status      TEXT NOT NULL DEFAULT 'RAW',
	created_at  DATETIME NOT NULL,
	retracted   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS hypotheses (
	id                    TEXT PRIMARY KEY,
	statement             TEXT NOT NULL,
	falsifiable_condition TEXT NOT NULL,
	verification_deadline DATETIME,
	status                TEXT NOT NULL DEFAULT 'PROPOSED',
	support_count         INTEGER NOT NULL DEFAULT 0,
	refute_count          INTEGER NOT NULL DEFAULT 0,
	confidence            REAL NOT NULL DEFAULT 0.5,
	created_at            DATETIME NOT NULL,
	resolved_at           DATETIME
);

CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(processing_status, created_at);
CREATE INDEX IF NOT EXISTS idx_events_occurred ON events(occurred_at);
CREATE INDEX IF NOT EXISTS idx_events_action ON events(action_type, occurred_at);
CREATE INDEX IF NOT EXISTS idx_hypotheses_status ON hypotheses(status);
CREATE INDEX IF NOT EXISTS idx_hypotheses_deadline ON hypotheses(verification_deadline);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, migration); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
