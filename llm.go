package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicEngine is the hosted-model diagnosis backend. It fills the same
// contract as the rule table; a failed call surfaces as an
// ExternalServiceError which the service degrades to a visible verdict.
type AnthropicEngine struct {
	apiKey string
	model  string
}

func NewAnthropicEngine(apiKey, model string) *AnthropicEngine {
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicEngine{apiKey: apiKey, model: model}
}

type llmVerdict struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Action     string  `json:"action"`
	Severity   string  `json:"severity"`
}

func (e *AnthropicEngine) Diagnose(ctx context.Context, vehicle string, category Category, description string) (Verdict, error) {
	systemPrompt, userPrompt := buildDiagnosisPrompts(vehicle, category, description)

	log.Printf("llm diagnose provider=anthropic model=%s category=%s desc_len=%d", e.model, category, len(description))
	responseText, err := e.call(ctx, systemPrompt, userPrompt)
	if err != nil {
		return Verdict{}, &ExternalServiceError{Service: "anthropic", Err: err}
	}

	verdict, err := parseDiagnosisResponse(responseText)
	if err != nil {
		return Verdict{}, &ExternalServiceError{Service: "anthropic", Err: err}
	}
	return verdict, nil
}

func (e *AnthropicEngine) call(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(e.apiKey),
		option.WithHTTPClient(externalHTTPClient),
	)

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d",
				len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Anthropic response")
}

func buildDiagnosisPrompts(vehicle string, category Category, description string) (string, string) {
	systemPrompt := `You are a master mechanic with 30 years of workshop experience.
Given a vehicle and a symptom description, your task:
1. Identify the most probable fault (short fault name).
2. Give an estimated confidence percentage (0-100).
3. Say briefly what to check or do next.
4. Say whether continued driving is dangerous.

Respond with JSON only (no markdown):
{"label": "Worn brake pads", "confidence": 90, "action": "Inspect pads and brake fluid", "severity": "caution"}

severity must be one of: "caution", "dangerous", "unknown".`

	userPrompt := fmt.Sprintf("Vehicle: %s\nReported problem area: %s\nSymptom description: %q",
		strings.TrimSpace(vehicle), category, strings.TrimSpace(description))
	return systemPrompt, userPrompt
}

func parseDiagnosisResponse(responseText string) (Verdict, error) {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var parsed llmVerdict
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		return Verdict{}, fmt.Errorf("parsing LLM diagnosis response: %w (response: %s)", err, responseText)
	}
	if strings.TrimSpace(parsed.Label) == "" {
		return Verdict{}, fmt.Errorf("LLM diagnosis response missing label (response: %s)", responseText)
	}

	confidence := int(parsed.Confidence)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	severity := Severity(strings.ToLower(strings.TrimSpace(parsed.Severity)))
	switch severity {
	case SeverityCaution, SeverityDangerous, SeverityUnknown:
	default:
		severity = SeverityUnknown
	}

	return Verdict{
		Label:         strings.TrimSpace(parsed.Label),
		Confidence:    confidence,
		HasConfidence: true,
		Action:        strings.TrimSpace(parsed.Action),
		Severity:      severity,
		Engine:        engineAnthropic,
	}, nil
}
