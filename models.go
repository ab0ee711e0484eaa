package main

import "time"

// Category is the caller-selected problem area. It is a hint for display
// and filtering only; the rule table decides from the description alone.
type Category string

const (
	CategoryEngine     Category = "Engine"
	CategoryElectrical Category = "Electrical"
	CategoryFrontEnd   Category = "Front-End/Suspension"
	CategoryBrakes     Category = "Brakes"
	CategoryOther      Category = "Other"
)

var allCategories = []Category{
	CategoryEngine,
	CategoryElectrical,
	CategoryFrontEnd,
	CategoryBrakes,
	CategoryOther,
}

func ValidCategory(c Category) bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Severity says whether continued operation of the vehicle is advised against.
type Severity string

const (
	SeverityUnknown   Severity = "unknown"
	SeverityCaution   Severity = "caution"
	SeverityDangerous Severity = "dangerous"
)

// Verdict is the diagnosis engine's output for one symptom report.
// Confidence is a fixed percentage in [0,100]; HasConfidence is false for
// the fallback verdict, which carries no numeric figure.
type Verdict struct {
	Label         string   `json:"label"`
	Confidence    int      `json:"confidence"`
	HasConfidence bool     `json:"has_confidence"`
	Action        string   `json:"action"`
	Severity      Severity `json:"severity"`
	Engine        string   `json:"engine"` // "rules" or "anthropic"
	Degraded      bool     `json:"degraded,omitempty"`
}

// DiagnosisRecord is one persisted diagnosis event. Records are immutable
// once appended and have no identity beyond insertion order.
type DiagnosisRecord struct {
	Timestamp    time.Time
	VehicleLabel string
	Category     Category
	Description  string
	Verdict      Verdict
}

// CommunityPost is one entry on the community wall: either a manual tip
// or a shared diagnosis result.
type CommunityPost struct {
	Timestamp time.Time
	Author    string
	Kind      string // "tip" or "diagnosis"
	Text      string
}

// Summary is the dashboard aggregate derived from the current store contents.
// TopCategory and MostRecent carry the "N/A" sentinel when the store is empty.
type Summary struct {
	Total       int    `json:"total"`
	TopCategory string `json:"top_category"`
	MostRecent  string `json:"most_recent"`
}

// timestampLayout is the persisted timestamp form, minute precision like
// the dashboard displays it.
const timestampLayout = "2006-01-02 15:04"
