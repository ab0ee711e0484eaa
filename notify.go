package main

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// slackPoster is the slice of the Slack client the notifier needs.
type slackPoster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts dangerous verdicts and digest summaries to a
// configured channel. Post failures are logged and dropped; notification
// is best-effort and never blocks or fails a diagnosis.
type SlackNotifier struct {
	api       slackPoster
	channelID string
}

func NewSlackNotifier(api slackPoster, channelID string) *SlackNotifier {
	return &SlackNotifier{api: api, channelID: channelID}
}

func (n *SlackNotifier) DangerousVerdict(rec DiagnosisRecord) {
	msg := fmt.Sprintf(":rotating_light: Dangerous verdict recorded: %s", FormatDiagnosisLine(rec))
	n.post(msg)
}

func (n *SlackNotifier) Digest(summary Summary) {
	n.post(FormatDigest(summary))
}

func (n *SlackNotifier) post(msg string) {
	_, _, err := n.api.PostMessage(n.channelID, slack.MsgOptionText(msg, false))
	if err != nil {
		log.Printf("slack post error channel=%s: %v", n.channelID, err)
	}
}

// FormatDigest renders the dashboard line the digest job logs and posts.
func FormatDigest(summary Summary) string {
	return fmt.Sprintf("Diagnosis dashboard: total=%d top_category=%s most_recent=%s",
		summary.Total, summary.TopCategory, summary.MostRecent)
}
