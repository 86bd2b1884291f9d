// Package audit persists a write-only provenance trail of instrumentation
// events: completed constructions and patch adaptations. It is diagnostics
// only; configuration records live on their instances and are never read
// back from here.
package audit

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS construction_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	instance_id   TEXT NOT NULL,
	class_name    TEXT NOT NULL,
	config_json   TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS adaptation_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	class_name    TEXT NOT NULL,
	method        TEXT NOT NULL,
	missing_json  TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct

// Store manages the audit trail in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region entries

// ConstructionEntry is a single row in the construction_log table.
type ConstructionEntry struct {
	InstanceID string
	ClassName  string
	ConfigJSON string
	CreatedAt  time.Time
}

// AdaptationEntry is a single row in the adaptation_log table.
type AdaptationEntry struct {
	ClassName   string
	Method      string
	MissingJSON string
	CreatedAt   time.Time
}

// #endregion entries

// #region log

// LogConstruction appends a construction event.
func (s *Store) LogConstruction(entry ConstructionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO construction_log (instance_id, class_name, config_json, created_at)
		 VALUES (?, ?, ?, ?)`,
		entry.InstanceID,
		entry.ClassName,
		entry.ConfigJSON,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log construction: %w", err)
	}
	return nil
}

// LogAdaptation appends a patch-adaptation event.
func (s *Store) LogAdaptation(entry AdaptationEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO adaptation_log (class_name, method, missing_json, created_at)
		 VALUES (?, ?, ?, ?)`,
		entry.ClassName,
		entry.Method,
		entry.MissingJSON,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log adaptation: %w", err)
	}
	return nil
}

// #endregion log

// #region list

// ListConstructions returns the most recent construction events, newest
// first.
func (s *Store) ListConstructions(limit int) ([]ConstructionEntry, error) {
	rows, err := s.db.Query(
		`SELECT instance_id, class_name, config_json, created_at
		 FROM construction_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list constructions: %w", err)
	}
	defer rows.Close()

	var out []ConstructionEntry
	for rows.Next() {
		var e ConstructionEntry
		var created string
		if err := rows.Scan(&e.InstanceID, &e.ClassName, &e.ConfigJSON, &created); err != nil {
			return nil, fmt.Errorf("scan construction: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListAdaptations returns the most recent adaptation events, newest first.
func (s *Store) ListAdaptations(limit int) ([]AdaptationEntry, error) {
	rows, err := s.db.Query(
		`SELECT class_name, method, missing_json, created_at
		 FROM adaptation_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list adaptations: %w", err)
	}
	defer rows.Close()

	var out []AdaptationEntry
	for rows.Next() {
		var e AdaptationEntry
		var created string
		if err := rows.Scan(&e.ClassName, &e.Method, &e.MissingJSON, &created); err != nil {
			return nil, fmt.Errorf("scan adaptation: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion list
