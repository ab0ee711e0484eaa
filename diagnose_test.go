package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// memDiagnosisStore is the in-memory store used across service tests.
type memDiagnosisStore struct {
	records   []DiagnosisRecord
	appendErr error
}

func (m *memDiagnosisStore) Append(rec DiagnosisRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memDiagnosisStore) All() ([]DiagnosisRecord, error) {
	out := make([]DiagnosisRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *memDiagnosisStore) ByCategory(c Category) ([]DiagnosisRecord, error) {
	var out []DiagnosisRecord
	for _, rec := range m.records {
		if rec.Category == c {
			out = append(out, rec)
		}
	}
	return out, nil
}

type failingEngine struct{ err error }

func (f failingEngine) Diagnose(context.Context, string, Category, string) (Verdict, error) {
	return Verdict{}, f.err
}

type recordingNotifier struct {
	dangerous []DiagnosisRecord
}

func (r *recordingNotifier) DangerousVerdict(rec DiagnosisRecord) {
	r.dangerous = append(r.dangerous, rec)
}

func newTestService(store *memDiagnosisStore, engine DiagnosisEngine, notifier Notifier) *DiagnosisService {
	svc := NewDiagnosisService(engine, store, notifier)
	base := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	n := 0
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return svc
}

func TestSubmitRejectsBlankDescription(t *testing.T) {
	store := &memDiagnosisStore{}
	svc := newTestService(store, rulesEngine{}, nil)

	for _, desc := range []string{"", "   ", "\n\t"} {
		_, err := svc.Submit(context.Background(), "Ford Fiesta 2015", CategoryEngine, desc)
		if !IsValidationError(err) {
			t.Fatalf("Submit(%q) error = %v, want ValidationError", desc, err)
		}
	}
	if len(store.records) != 0 {
		t.Fatalf("rejected input must not be persisted, store has %d records", len(store.records))
	}
}

func TestSubmitRejectsUnknownCategory(t *testing.T) {
	svc := newTestService(&memDiagnosisStore{}, rulesEngine{}, nil)
	_, err := svc.Submit(context.Background(), "Ford Fiesta 2015", Category("Transmission"), "grinding gears")
	if !IsValidationError(err) {
		t.Fatalf("expected ValidationError for unknown category, got %v", err)
	}
}

func TestSubmitAppendsAndIsVisibleInHistory(t *testing.T) {
	store := &memDiagnosisStore{}
	svc := newTestService(store, rulesEngine{}, nil)

	rec, err := svc.Submit(context.Background(), "Ford Fiesta 2015", CategoryElectrical, "dead battery")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	history, err := svc.History()
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 record, got %d", len(history))
	}
	if history[len(history)-1] != rec {
		t.Fatalf("last history element = %+v, want the appended record %+v", history[len(history)-1], rec)
	}
	if rec.Verdict.Label != "Electrical/Battery fault" {
		t.Fatalf("unexpected verdict label %q", rec.Verdict.Label)
	}
	if rec.Timestamp.IsZero() {
		t.Fatal("store must stamp the timestamp at write time")
	}
}

func TestSubmitDegradesOnEngineFailure(t *testing.T) {
	store := &memDiagnosisStore{}
	engineErr := &ExternalServiceError{Service: "anthropic", Err: errors.New("connection refused")}
	svc := newTestService(store, failingEngine{err: engineErr}, nil)

	rec, err := svc.Submit(context.Background(), "Peugeot 208", CategoryEngine, "rattles at idle")
	if err != nil {
		t.Fatalf("engine failure must degrade, not fail the interaction: %v", err)
	}
	if !rec.Verdict.Degraded {
		t.Fatal("expected degraded verdict")
	}
	if rec.Verdict.Label != "Diagnosis unavailable" {
		t.Fatalf("unexpected degraded label %q", rec.Verdict.Label)
	}
	if rec.Verdict.Severity != SeverityUnknown {
		t.Fatalf("degraded severity = %s, want unknown", rec.Verdict.Severity)
	}
	// The error text is rendered in place of a diagnosis, like the original.
	if want := "AI connection error: anthropic unavailable: connection refused"; rec.Verdict.Action != want {
		t.Fatalf("degraded action = %q, want %q", rec.Verdict.Action, want)
	}
	if len(store.records) != 1 {
		t.Fatalf("degraded verdicts are persisted, store has %d records", len(store.records))
	}
}

func TestSubmitThroughCSVStoreWithSubMinuteClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	store, err := NewCSVDiagnosisStore(path)
	if err != nil {
		t.Fatalf("NewCSVDiagnosisStore failed: %v", err)
	}
	svc := NewDiagnosisService(rulesEngine{}, store, nil)
	// A realistic clock lands mid-minute; the store persists at minute
	// precision, so the stamp must already be truncated when Submit returns.
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 10, 30, 45, 123456789, time.Local)
	}

	rec, err := svc.Submit(context.Background(), "Ford Fiesta 2015", CategoryElectrical, "dead battery")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if rec.Timestamp.Second() != 0 || rec.Timestamp.Nanosecond() != 0 {
		t.Fatalf("stamp not truncated to store precision: %s", rec.Timestamp)
	}

	history, err := svc.History()
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 record, got %d", len(history))
	}
	if history[len(history)-1] != rec {
		t.Fatalf("last history element = %+v, want the appended record %+v", history[len(history)-1], rec)
	}

	// The equality also holds across a reload of the store file.
	reloaded, err := NewCSVDiagnosisStore(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got, err := reloaded.All()
	if err != nil {
		t.Fatalf("All after reload failed: %v", err)
	}
	if len(got) != 1 || got[0] != rec {
		t.Fatalf("reloaded record = %+v, want %+v", got, rec)
	}
}

func TestSubmitReturnsStorageError(t *testing.T) {
	store := &memDiagnosisStore{appendErr: &StorageError{Path: "history.csv", Err: errors.New("disk full")}}
	svc := newTestService(store, rulesEngine{}, nil)

	_, err := svc.Submit(context.Background(), "Fiat Cronos", CategoryBrakes, "brake pedal feels soft")
	if !IsStorageError(err) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestSubmitNotifiesOnDangerousVerdict(t *testing.T) {
	store := &memDiagnosisStore{}
	notifier := &recordingNotifier{}
	svc := newTestService(store, rulesEngine{}, notifier)

	if _, err := svc.Submit(context.Background(), "VW Gol", CategoryEngine, "smoke from the hood"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "VW Gol", CategoryBrakes, "brakes squeal"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if len(notifier.dangerous) != 1 {
		t.Fatalf("expected exactly 1 dangerous notification, got %d", len(notifier.dangerous))
	}
	if notifier.dangerous[0].Verdict.Label != "Cooling/Engine fault" {
		t.Fatalf("unexpected notified verdict %q", notifier.dangerous[0].Verdict.Label)
	}
}

func TestHistoryByCategory(t *testing.T) {
	store := &memDiagnosisStore{}
	svc := newTestService(store, rulesEngine{}, nil)

	if _, err := svc.Submit(context.Background(), "A", CategoryBrakes, "brake noise"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "B", CategoryEngine, "engine overheats"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	brakes, err := svc.HistoryByCategory(CategoryBrakes)
	if err != nil {
		t.Fatalf("HistoryByCategory failed: %v", err)
	}
	if len(brakes) != 1 || brakes[0].VehicleLabel != "A" {
		t.Fatalf("unexpected category filter result: %+v", brakes)
	}
}

func TestDashboard(t *testing.T) {
	store := &memDiagnosisStore{}
	svc := newTestService(store, rulesEngine{}, nil)

	summary, err := svc.Dashboard()
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if summary.Total != 0 || summary.TopCategory != naSentinel {
		t.Fatalf("empty dashboard = %+v, want sentinels", summary)
	}

	if _, err := svc.Submit(context.Background(), "A", CategoryBrakes, "brake noise"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	summary, err = svc.Dashboard()
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if summary.Total != 1 || summary.TopCategory != string(CategoryBrakes) {
		t.Fatalf("unexpected dashboard %+v", summary)
	}
}
