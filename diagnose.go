package main

import (
	"context"
	"log"
	"strings"
	"time"
)

const (
	engineRules     = "rules"
	engineAnthropic = "anthropic"
)

// DiagnosisEngine produces a verdict for one symptom report. The rule
// table and the hosted-model backend are substitutable behind this
// interface; callers validate input before calling.
type DiagnosisEngine interface {
	Diagnose(ctx context.Context, vehicle string, category Category, description string) (Verdict, error)
}

// rulesEngine adapts the pure rule table to the engine interface.
type rulesEngine struct{}

func (rulesEngine) Diagnose(_ context.Context, _ string, _ Category, description string) (Verdict, error) {
	return classifyRules(description), nil
}

// Notifier receives dangerous verdicts. Optional; a nil notifier is a no-op.
type Notifier interface {
	DangerousVerdict(rec DiagnosisRecord)
}

// DiagnosisService is the interaction boundary for "submit a report":
// validate, classify, persist, notify. One synchronous cycle per call.
type DiagnosisService struct {
	engine   DiagnosisEngine
	store    DiagnosisStore
	notifier Notifier
	now      func() time.Time
}

func NewDiagnosisService(engine DiagnosisEngine, store DiagnosisStore, notifier Notifier) *DiagnosisService {
	return &DiagnosisService{
		engine:   engine,
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// Submit runs one report through the engine and appends the result.
//
// A failed hosted-model call does not fail the interaction: the error text
// is rendered in place of a diagnosis and the degraded verdict is persisted
// like any other. Validation and storage failures are returned to the
// caller instead.
func (s *DiagnosisService) Submit(ctx context.Context, vehicle string, category Category, description string) (DiagnosisRecord, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return DiagnosisRecord{}, &ValidationError{Field: "description", Msg: "must not be empty"}
	}
	if !ValidCategory(category) {
		return DiagnosisRecord{}, &ValidationError{Field: "category", Msg: "unknown category"}
	}

	verdict, err := s.engine.Diagnose(ctx, vehicle, category, description)
	if err != nil {
		log.Printf("diagnose engine error vehicle=%q category=%s: %v", vehicle, category, err)
		verdict = degradedVerdict(err)
	}

	// Stamp at the store's timestamp precision so the returned record is
	// field-equal to what a reload of the store yields.
	rec := DiagnosisRecord{
		Timestamp:    s.now().Truncate(time.Minute),
		VehicleLabel: vehicle,
		Category:     category,
		Description:  description,
		Verdict:      verdict,
	}
	if err := s.store.Append(rec); err != nil {
		return DiagnosisRecord{}, err
	}
	log.Printf("diagnosis recorded vehicle=%q category=%s label=%q severity=%s engine=%s degraded=%t",
		vehicle, category, verdict.Label, verdict.Severity, verdict.Engine, verdict.Degraded)

	if s.notifier != nil && verdict.Severity == SeverityDangerous {
		s.notifier.DangerousVerdict(rec)
	}
	return rec, nil
}

// History returns every recorded diagnosis in insertion order.
func (s *DiagnosisService) History() ([]DiagnosisRecord, error) {
	return s.store.All()
}

// HistoryByCategory filters the history by the caller-selected category.
func (s *DiagnosisService) HistoryByCategory(c Category) ([]DiagnosisRecord, error) {
	return s.store.ByCategory(c)
}

// Dashboard summarizes the current store contents.
func (s *DiagnosisService) Dashboard() (Summary, error) {
	records, err := s.store.All()
	if err != nil {
		return Summary{}, err
	}
	return Summarize(records), nil
}

// degradedVerdict renders an engine failure as a visible verdict so the
// interaction degrades to a message instead of crashing.
func degradedVerdict(err error) Verdict {
	return Verdict{
		Label:    "Diagnosis unavailable",
		Action:   "AI connection error: " + err.Error(),
		Severity: SeverityUnknown,
		Engine:   engineAnthropic,
		Degraded: true,
	}
}
