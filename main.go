package main

import (
	"log"
	"net/http"

	"github.com/slack-go/slack"
)

func main() {
	cfg := LoadConfig()

	var history DiagnosisStore
	switch cfg.StoreBackend {
	case "sqlite":
		store, err := NewSQLiteDiagnosisStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to init sqlite store: %v", err)
		}
		defer store.Close()
		history = store
		log.Printf("History store backend=sqlite path=%s", cfg.DBPath)
	default:
		store, err := NewCSVDiagnosisStore(cfg.HistoryPath)
		if err != nil {
			log.Fatalf("Failed to init history store: %v", err)
		}
		history = store
		log.Printf("History store backend=csv path=%s", cfg.HistoryPath)
	}

	wallStore, err := NewCSVWallStore(cfg.WallPath)
	if err != nil {
		log.Fatalf("Failed to init wall store: %v", err)
	}
	credStore, err := NewCSVCredentialStore(cfg.CredentialsPath)
	if err != nil {
		log.Fatalf("Failed to init credential store: %v", err)
	}

	var engine DiagnosisEngine
	switch cfg.Engine {
	case "anthropic":
		engine = NewAnthropicEngine(cfg.AnthropicAPIKey, cfg.LLMModel)
		log.Printf("Diagnosis engine=anthropic model=%s", cfg.LLMModel)
	default:
		engine = rulesEngine{}
		log.Printf("Diagnosis engine=rules rules=%d", len(ruleTable))
	}

	var notifier *SlackNotifier
	if cfg.AlertChannelID != "" {
		api := slack.New(cfg.SlackBotToken, slack.OptionHTTPClient(externalHTTPClient))
		notifier = NewSlackNotifier(api, cfg.AlertChannelID)
		log.Printf("Slack alerts enabled channel=%s", cfg.AlertChannelID)
	}

	diagnosis := newDiagnosisServiceWithNotifier(engine, history, notifier)
	wall := NewWallService(wallStore)
	auth := NewAuthService(credStore)

	var digestTarget digestSink
	if notifier != nil {
		digestTarget = notifier
	}
	StartDigestScheduler(cfg.DigestSchedule, history, digestTarget)

	srv := NewServer(diagnosis, wall, auth)
	log.Printf("Starting %s diagnosis service on %s", cfg.WorkshopName, cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, srv.Handler()); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
}

// newDiagnosisServiceWithNotifier avoids handing a typed-nil *SlackNotifier
// to the service when alerts are disabled.
func newDiagnosisServiceWithNotifier(engine DiagnosisEngine, store DiagnosisStore, notifier *SlackNotifier) *DiagnosisService {
	if notifier == nil {
		return NewDiagnosisService(engine, store, nil)
	}
	return NewDiagnosisService(engine, store, notifier)
}
