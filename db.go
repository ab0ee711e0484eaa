package main

import (
	"database/sql"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDiagnosisStore is the alternative history backend for deployments
// that outgrow the flat file. Same external contract as the CSV store:
// append-only, insertion order, durable before Append returns. SQLite's
// own locking replaces the CSV store's rewrite-under-mutex.
type SQLiteDiagnosisStore struct {
	db *sql.DB
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS diagnosis_history (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		recorded_at DATETIME NOT NULL,
		vehicle     TEXT NOT NULL,
		category    TEXT NOT NULL,
		description TEXT NOT NULL,
		label       TEXT NOT NULL,
		confidence  TEXT DEFAULT '',
		action      TEXT NOT NULL,
		severity    TEXT NOT NULL,
		engine      TEXT DEFAULT '',
		degraded    INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_diagnosis_category ON diagnosis_history(category);
	CREATE INDEX IF NOT EXISTS idx_diagnosis_recorded_at ON diagnosis_history(recorded_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewSQLiteDiagnosisStore(path string) (*SQLiteDiagnosisStore, error) {
	db, err := InitDB(path)
	if err != nil {
		return nil, &StorageError{Path: path, Err: err}
	}
	return &SQLiteDiagnosisStore{db: db}, nil
}

func (s *SQLiteDiagnosisStore) Close() error { return s.db.Close() }

func (s *SQLiteDiagnosisStore) Append(rec DiagnosisRecord) error {
	confidence := ""
	if rec.Verdict.HasConfidence {
		confidence = strconv.Itoa(rec.Verdict.Confidence)
	}
	degraded := 0
	if rec.Verdict.Degraded {
		degraded = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO diagnosis_history (recorded_at, vehicle, category, description, label, confidence, action, severity, engine, degraded)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.VehicleLabel, string(rec.Category), rec.Description,
		rec.Verdict.Label, confidence, rec.Verdict.Action, string(rec.Verdict.Severity),
		rec.Verdict.Engine, degraded,
	)
	if err != nil {
		return &StorageError{Path: "diagnosis_history", Err: err}
	}
	return nil
}

func (s *SQLiteDiagnosisStore) All() ([]DiagnosisRecord, error) {
	return s.query(
		`SELECT recorded_at, vehicle, category, description, label, confidence, action, severity, engine, degraded
		 FROM diagnosis_history ORDER BY id`,
	)
}

func (s *SQLiteDiagnosisStore) ByCategory(c Category) ([]DiagnosisRecord, error) {
	return s.query(
		`SELECT recorded_at, vehicle, category, description, label, confidence, action, severity, engine, degraded
		 FROM diagnosis_history WHERE category = ? ORDER BY id`,
		string(c),
	)
}

func (s *SQLiteDiagnosisStore) query(q string, args ...any) ([]DiagnosisRecord, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, &StorageError{Path: "diagnosis_history", Err: err}
	}
	defer rows.Close()

	var recs []DiagnosisRecord
	for rows.Next() {
		var rec DiagnosisRecord
		var ts time.Time
		var category, severity, confidence string
		var degraded int
		if err := rows.Scan(
			&ts, &rec.VehicleLabel, &category, &rec.Description,
			&rec.Verdict.Label, &confidence, &rec.Verdict.Action, &severity,
			&rec.Verdict.Engine, &degraded,
		); err != nil {
			return nil, &StorageError{Path: "diagnosis_history", Err: err}
		}
		rec.Timestamp = ts
		rec.Category = Category(category)
		rec.Verdict.Severity = Severity(severity)
		if confidence != "" {
			conf, err := strconv.Atoi(confidence)
			if err != nil {
				return nil, &StorageError{Path: "diagnosis_history", Err: err}
			}
			rec.Verdict.Confidence = conf
			rec.Verdict.HasConfidence = true
		}
		rec.Verdict.Degraded = degraded != 0
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Path: "diagnosis_history", Err: err}
	}
	return recs, nil
}
