package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// The CSV backend keeps the original flat-file persistence: every append
// is a full read-modify-write of the store file. Two deliberate hardenings
// over the source, with the external contract unchanged: a per-store mutex
// serializes appends within the process, and the rewrite goes through a
// temp file + rename so a crashed write never leaves a partial record
// visible. Cross-process writers still race, last writer wins.

var historyHeader = []string{"timestamp", "vehicle", "category", "description", "label", "confidence", "action", "severity", "engine", "degraded"}
var wallHeader = []string{"timestamp", "author", "kind", "text"}
var credentialsHeader = []string{"username", "password"}

// Seed row written on first run of the credential store.
const (
	seedUsername = "admin"
	seedPassword = "autoayuda"
)

func readCSVRows(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &StorageError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &StorageError{Path: path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &StorageError{Path: path, Err: fmt.Errorf("missing header row")}
	}
	for i, name := range header {
		if rows[0][i] != name {
			return nil, &StorageError{Path: path, Err: fmt.Errorf("unexpected column %q, want %q", rows[0][i], name)}
		}
	}
	return rows[1:], nil
}

// writeCSVRows rewrites the whole store file. The temp file lands in the
// same directory so the rename stays on one filesystem.
func writeCSVRows(path string, header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return &StorageError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Path: path, Err: err}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return &StorageError{Path: path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StorageError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &StorageError{Path: path, Err: err}
	}
	return nil
}

// bootstrapCSV creates the store file with its header (and optional seed
// rows) if it does not exist yet. Idempotent.
func bootstrapCSV(path string, header []string, seed [][]string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return &StorageError{Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &StorageError{Path: path, Err: err}
	}
	return writeCSVRows(path, header, seed)
}

// --- Diagnosis history ---

type CSVDiagnosisStore struct {
	mu   sync.Mutex
	path string
}

func NewCSVDiagnosisStore(path string) (*CSVDiagnosisStore, error) {
	if err := bootstrapCSV(path, historyHeader, nil); err != nil {
		return nil, err
	}
	return &CSVDiagnosisStore{path: path}, nil
}

func (s *CSVDiagnosisStore) Append(rec DiagnosisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readCSVRows(s.path, historyHeader)
	if err != nil {
		return err
	}
	rows = append(rows, encodeDiagnosisRow(rec))
	return writeCSVRows(s.path, historyHeader, rows)
}

func (s *CSVDiagnosisStore) All() ([]DiagnosisRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readCSVRows(s.path, historyHeader)
	if err != nil {
		return nil, err
	}
	recs := make([]DiagnosisRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeDiagnosisRow(row)
		if err != nil {
			return nil, &StorageError{Path: s.path, Err: err}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *CSVDiagnosisStore) ByCategory(c Category) ([]DiagnosisRecord, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	var out []DiagnosisRecord
	for _, rec := range all {
		if rec.Category == c {
			out = append(out, rec)
		}
	}
	return out, nil
}

func encodeDiagnosisRow(rec DiagnosisRecord) []string {
	confidence := ""
	if rec.Verdict.HasConfidence {
		confidence = strconv.Itoa(rec.Verdict.Confidence)
	}
	return []string{
		rec.Timestamp.Format(timestampLayout),
		rec.VehicleLabel,
		string(rec.Category),
		rec.Description,
		rec.Verdict.Label,
		confidence,
		rec.Verdict.Action,
		string(rec.Verdict.Severity),
		rec.Verdict.Engine,
		strconv.FormatBool(rec.Verdict.Degraded),
	}
}

func decodeDiagnosisRow(row []string) (DiagnosisRecord, error) {
	ts, err := time.ParseInLocation(timestampLayout, row[0], time.Local)
	if err != nil {
		return DiagnosisRecord{}, fmt.Errorf("bad timestamp %q: %w", row[0], err)
	}
	rec := DiagnosisRecord{
		Timestamp:    ts,
		VehicleLabel: row[1],
		Category:     Category(row[2]),
		Description:  row[3],
		Verdict: Verdict{
			Label:    row[4],
			Action:   row[6],
			Severity: Severity(row[7]),
			Engine:   row[8],
		},
	}
	if row[5] != "" {
		conf, err := strconv.Atoi(row[5])
		if err != nil {
			return DiagnosisRecord{}, fmt.Errorf("bad confidence %q: %w", row[5], err)
		}
		rec.Verdict.Confidence = conf
		rec.Verdict.HasConfidence = true
	}
	if row[9] != "" {
		degraded, err := strconv.ParseBool(row[9])
		if err != nil {
			return DiagnosisRecord{}, fmt.Errorf("bad degraded flag %q: %w", row[9], err)
		}
		rec.Verdict.Degraded = degraded
	}
	return rec, nil
}

// --- Community wall ---

type CSVWallStore struct {
	mu   sync.Mutex
	path string
}

func NewCSVWallStore(path string) (*CSVWallStore, error) {
	if err := bootstrapCSV(path, wallHeader, nil); err != nil {
		return nil, err
	}
	return &CSVWallStore{path: path}, nil
}

func (s *CSVWallStore) Append(post CommunityPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readCSVRows(s.path, wallHeader)
	if err != nil {
		return err
	}
	rows = append(rows, []string{
		post.Timestamp.Format(timestampLayout),
		post.Author,
		post.Kind,
		post.Text,
	})
	return writeCSVRows(s.path, wallHeader, rows)
}

func (s *CSVWallStore) All() ([]CommunityPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readCSVRows(s.path, wallHeader)
	if err != nil {
		return nil, err
	}
	posts := make([]CommunityPost, 0, len(rows))
	for _, row := range rows {
		ts, err := time.ParseInLocation(timestampLayout, row[0], time.Local)
		if err != nil {
			return nil, &StorageError{Path: s.path, Err: fmt.Errorf("bad timestamp %q: %w", row[0], err)}
		}
		posts = append(posts, CommunityPost{
			Timestamp: ts,
			Author:    row[1],
			Kind:      row[2],
			Text:      row[3],
		})
	}
	return posts, nil
}

// --- Credentials ---

type CSVCredentialStore struct {
	mu   sync.Mutex
	path string
}

func NewCSVCredentialStore(path string) (*CSVCredentialStore, error) {
	seed := [][]string{{seedUsername, seedPassword}}
	if err := bootstrapCSV(path, credentialsHeader, seed); err != nil {
		return nil, err
	}
	return &CSVCredentialStore{path: path}, nil
}

func (s *CSVCredentialStore) Lookup(username string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readCSVRows(s.path, credentialsHeader)
	if err != nil {
		return "", false, err
	}
	for _, row := range rows {
		if row[0] == username {
			return row[1], true, nil
		}
	}
	return "", false, nil
}

func (s *CSVCredentialStore) Add(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readCSVRows(s.path, credentialsHeader)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row[0] == username {
			return &ValidationError{Field: "username", Msg: "already registered"}
		}
	}
	rows = append(rows, []string{username, password})
	return writeCSVRows(s.path, credentialsHeader, rows)
}
