package main

import "strings"

// rule maps a keyword set to a canned verdict. Matching is case-insensitive
// substring containment against the whole description, not word matching:
// "brakeout" matches the brake rule. Switching to tokenized matching would
// change which verdict such descriptions receive.
type rule struct {
	keywords []string
	verdict  Verdict
}

// ruleTable is evaluated in order, first match wins. The order is part of
// the contract: a description mentioning both "battery" and "overheats"
// gets the electrical verdict because rule 1 is checked first. Suspension
// is deliberately left ahead of cooling to match the observed behavior.
var ruleTable = []rule{
	{
		keywords: []string{"won't start", "wont start", "battery", "lights", "dead"},
		verdict: Verdict{
			Label:         "Electrical/Battery fault",
			Confidence:    92,
			HasConfidence: true,
			Action:        "Inspect battery terminals and alternator",
			Severity:      SeverityCaution,
		},
	},
	{
		keywords: []string{"noise", "knock", "vibrates", "pothole"},
		verdict: Verdict{
			Label:         "Front suspension fault",
			Confidence:    85,
			HasConfidence: true,
			Action:        "Inspect bushings and shock absorbers",
			Severity:      SeverityCaution,
		},
	},
	{
		keywords: []string{"overheats", "temperature", "smoke", "water"},
		verdict: Verdict{
			Label:         "Cooling/Engine fault",
			Confidence:    98,
			HasConfidence: true,
			Action:        "STOP ENGINE IMMEDIATELY",
			Severity:      SeverityDangerous,
		},
	},
	{
		keywords: []string{"brake", "squeal"},
		verdict: Verdict{
			Label:         "Brake system fault",
			Confidence:    90,
			HasConfidence: true,
			Action:        "Inspect pads and brake fluid",
			Severity:      SeverityCaution,
		},
	},
}

var fallbackVerdict = Verdict{
	Label:    "Undetermined fault",
	Action:   "Requires physical inspection with a diagnostic scanner",
	Severity: SeverityUnknown,
}

// classifyRules maps a symptom description to a verdict using the ordered
// rule table. Pure and total: every input gets a verdict, unmatched input
// falls through to the fallback. Callers reject blank descriptions before
// getting here. The category hint is ignored by the rule table.
func classifyRules(description string) Verdict {
	desc := strings.ToLower(description)
	for _, r := range ruleTable {
		for _, kw := range r.keywords {
			if strings.Contains(desc, kw) {
				v := r.verdict
				v.Engine = engineRules
				return v
			}
		}
	}
	v := fallbackVerdict
	v.Engine = engineRules
	return v
}
