package calib

// #region imports
import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #endregion

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS calibration_versions (
	version_id    TEXT PRIMARY KEY,
	parent_id     TEXT,
	session_id    TEXT NOT NULL,
	weights_json  TEXT NOT NULL,
	total_turns   INTEGER NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES calibration_versions(version_id)
);

CREATE INDEX IF NOT EXISTS idx_calibration_session
ON calibration_versions(session_id, created_at);

CREATE TABLE IF NOT EXISTS active_calibration (
	session_id    TEXT PRIMARY KEY,
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES calibration_versions(version_id)
);
`

// #endregion schema

// #region sqlite-store

// SQLiteStore persists calibration versions in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// #endregion sqlite-store

// #region load

// Load reads the active calibration for a session. Returns nil, nil when
// the session has no persisted calibration.
func (s *SQLiteStore) Load(sessionID string) (*Record, error) {
	var versionID string
	err := s.db.QueryRow(
		`SELECT version_id FROM active_calibration WHERE session_id = ?`, sessionID,
	).Scan(&versionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active calibration: %w", err)
	}

	rec, err := s.getVersion(versionID)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLiteStore) getVersion(id string) (Record, error) {
	var rec Record
	var parentID, reason sql.NullString
	var weightsJSON, createdStr string

	err := s.db.QueryRow(
		`SELECT version_id, parent_id, session_id, weights_json, total_turns, reason, created_at
		 FROM calibration_versions WHERE version_id = ?`, id,
	).Scan(&rec.VersionID, &parentID, &rec.SessionID, &weightsJSON, &rec.TotalTurns, &reason, &createdStr)
	if err != nil {
		return Record{}, fmt.Errorf("get version %s: %w", id, err)
	}

	rec.ParentID = parentID.String
	rec.Reason = reason.String
	if err := json.Unmarshal([]byte(weightsJSON), &rec.Weights); err != nil {
		return Record{}, fmt.Errorf("unmarshal weights: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion load

// #region save

// Save inserts a calibration version and updates the active pointer for
// its session atomically.
func (s *SQLiteStore) Save(rec Record) error {
	weightsJSON, err := json.Marshal(rec.Weights)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO calibration_versions
		 (version_id, parent_id, session_id, weights_json, total_turns, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID, nullIfEmpty(rec.ParentID), rec.SessionID, string(weightsJSON),
		rec.TotalTurns, nullIfEmpty(rec.Reason), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_calibration (session_id, version_id) VALUES (?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET version_id = excluded.version_id`,
		rec.SessionID, rec.VersionID,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	return tx.Commit()
}

// #endregion save

// #region history

// History returns the most recent calibration versions for a session.
func (s *SQLiteStore) History(sessionID string, limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT version_id, parent_id, session_id, weights_json, total_turns, reason, created_at
		 FROM calibration_versions WHERE session_id = ?
		 ORDER BY created_at DESC LIMIT ?`, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var parentID, reason sql.NullString
		var weightsJSON, createdStr string

		if err := rows.Scan(&rec.VersionID, &parentID, &rec.SessionID, &weightsJSON,
			&rec.TotalTurns, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.ParentID = parentID.String
		rec.Reason = reason.String
		if err := json.Unmarshal([]byte(weightsJSON), &rec.Weights); err != nil {
			return nil, fmt.Errorf("unmarshal weights: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion history

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers

var _ Store = (*SQLiteStore)(nil)
