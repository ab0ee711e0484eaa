package main

import (
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// digestSink receives the periodic dashboard summary. Nil means log-only.
type digestSink interface {
	Digest(summary Summary)
}

// StartDigestScheduler periodically summarizes the store and reports the
// dashboard line. The schedule is a standard 5-field cron expression
// (minute hour day-of-month month day-of-week).
// Examples: "0 9 * * *" (daily 9am), "0 9 * * 1" (Mondays 9am).
// An empty or invalid schedule disables the digest with a log line.
func StartDigestScheduler(schedule string, store DiagnosisStore, sink digestSink) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		log.Println("Digest disabled (digest_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid digest_schedule '%s': %v, digest disabled", schedule, err)
		return
	}

	log.Printf("Digest scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now()
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next digest at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)
			runDigest(store, sink)
		}
	}()
}

func runDigest(store DiagnosisStore, sink digestSink) {
	records, err := store.All()
	if err != nil {
		log.Printf("Digest error: %v", err)
		return
	}
	summary := Summarize(records)
	log.Printf("Digest complete: %s", FormatDigest(summary))
	if sink != nil {
		sink.Digest(summary)
	}
}
