package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a referenced incident does not exist
var ErrNotFound = errors.New("incident not found")

// migrations are applied in order on Open. The timeline table has no
// UPDATE or DELETE path anywhere in this package: rows are append-only.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS incidents (
		id TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		source TEXT NOT NULL,
		severity TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		closed_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS timeline_events (
		id TEXT PRIMARY KEY,
		incident_id TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		kind TEXT NOT NULL,
		actor TEXT NOT NULL,
		description TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_timeline_incident ON timeline_events(incident_id, timestamp);`,
	`CREATE INDEX IF NOT EXISTS idx_timeline_timestamp ON timeline_events(timestamp);`,
	`CREATE INDEX IF NOT EXISTS idx_incidents_source ON incidents(source);`,
}

// Store owns the SQLite database holding incidents and their forensic
// timeline
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// SQLite allows a single writer; serializing access through one
	// connection avoids SQLITE_BUSY under concurrent transitions.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		logrus.Warnf("Failed to set pragmas: %v", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logrus.Infof("Incident store ready at %s", path)
	return s, nil
}

func (s *Store) migrate() error {
	for i, stmt := range migrations {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	return s.db.Close()
}
