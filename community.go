package main

import (
	"fmt"
	"strings"
	"time"
)

// WallService is the community wall: manual tips and shared diagnosis
// results over one flat store. The wall view is most-recent-first; the
// store keeps insertion order.
type WallService struct {
	store WallStore
	now   func() time.Time
}

func NewWallService(store WallStore) *WallService {
	return &WallService{store: store, now: time.Now}
}

func (w *WallService) PostTip(author, text string) error {
	author = strings.TrimSpace(author)
	text = strings.TrimSpace(text)
	if author == "" {
		return &ValidationError{Field: "author", Msg: "must not be empty"}
	}
	if text == "" {
		return &ValidationError{Field: "text", Msg: "must not be empty"}
	}
	return w.store.Append(CommunityPost{
		Timestamp: w.now().Truncate(time.Minute),
		Author:    author,
		Kind:      "tip",
		Text:      text,
	})
}

// ShareDiagnosis posts a recorded diagnosis to the wall as a formatted line.
func (w *WallService) ShareDiagnosis(author string, rec DiagnosisRecord) error {
	author = strings.TrimSpace(author)
	if author == "" {
		return &ValidationError{Field: "author", Msg: "must not be empty"}
	}
	return w.store.Append(CommunityPost{
		Timestamp: w.now().Truncate(time.Minute),
		Author:    author,
		Kind:      "diagnosis",
		Text:      FormatDiagnosisLine(rec),
	})
}

// List returns wall posts most-recent-first.
func (w *WallService) List() ([]CommunityPost, error) {
	posts, err := w.store.All()
	if err != nil {
		return nil, err
	}
	out := make([]CommunityPost, len(posts))
	for i, post := range posts {
		out[len(posts)-1-i] = post
	}
	return out, nil
}

// FormatDiagnosisLine renders one record the way the wall and the Slack
// alert show it.
func FormatDiagnosisLine(rec DiagnosisRecord) string {
	confidence := ""
	if rec.Verdict.HasConfidence {
		confidence = fmt.Sprintf(" (%d%%)", rec.Verdict.Confidence)
	}
	return fmt.Sprintf("%s [%s]: %s%s - %s",
		rec.VehicleLabel, rec.Category, rec.Verdict.Label, confidence, rec.Verdict.Action)
}
