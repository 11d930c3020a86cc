package generation

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/provider"
)

// Keyword policy tables for the deterministic fallback. These are tuned
// for English phrasing and deliberately conservative: an ambiguous signal
// leaves the hint empty rather than guessing, because hints drive trigger
// selection downstream.
var (
	// platformKeywords maps a canonical platform hint to the words that
	// imply it.
	platformKeywords = map[string][]string{
		"slack":    {"slack"},
		"google":   {"google", "sheets", "gmail"},
		"discord":  {"discord"},
		"twitter":  {"twitter", "tweet"},
		"github":   {"github"},
		"database": {"database", "sql", "postgres", "mysql"},
		"email":    {"email", "e-mail", "gmail"},
		"form":     {"form", "survey", "questionnaire"},
		"webhook":  {"webhook"},
	}

	// scheduleKeywords only count when co-occurring with an automation
	// verb; a bare mention of "daily" is not a scheduling request.
	scheduleKeywords = []string{
		"every morning", "every evening", "every day", "every hour", "every week",
		"daily", "hourly", "weekly", "monthly", "each morning", "on a schedule", "cron",
	}

	automationVerbs = []string{
		"run", "execute", "automate", "send", "sync", "post", "generate",
		"update", "check", "fetch", "pull", "publish",
	}

	credentialKeywords = []string{"api key", "token", "credential", "password", "secret", "oauth"}

	urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)
)

// Extractor turns a raw prompt plus optional clarification answers into a
// normalized Requirements record. It never fails: provider errors and
// unusable responses fall back to deterministic keyword heuristics.
type Extractor struct {
	provider provider.Provider
	logger   *slog.Logger
}

// NewExtractor creates a requirements extractor backed by the given
// completion provider.
func NewExtractor(completions provider.Provider, logger *slog.Logger) *Extractor {
	return &Extractor{
		provider: completions,
		logger:   logger.With("module", "requirements_extractor"),
	}
}

type requirementsPayload struct {
	PrimaryGoal string   `json:"primaryGoal"`
	KeySteps    []string `json:"keySteps"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
	Constraints []string `json:"constraints"`
	Complexity  string   `json:"complexity"`
	URLs        []string `json:"urls"`
	APIs        []string `json:"apis"`
	Credentials []string `json:"credentials"`
	Schedules   []string `json:"schedules"`
	Platforms   []string `json:"platforms"`
}

// Extract produces Requirements for the prompt. priorUnderstanding carries
// context from an earlier clarification round; answers are structured
// replies to clarification questions. Always returns a usable value.
func (e *Extractor) Extract(ctx context.Context, userPrompt, priorUnderstanding string, answers map[string]string) *models.Requirements {
	extractionPrompt := e.buildPrompt(userPrompt, priorUnderstanding, answers)

	raw, err := e.provider.Generate(ctx, extractionPrompt, provider.Options{Temperature: 0.2})
	if err != nil {
		e.logger.WarnContext(ctx, "Provider failed, using heuristic extraction", "error", err)

		return e.heuristics(userPrompt)
	}

	var payload requirementsPayload

	err = provider.ExtractJSON(raw, &payload)
	if err != nil {
		e.logger.WarnContext(ctx, "Unparseable requirements response, using heuristics", "error", err)

		return e.heuristics(userPrompt)
	}

	err = checkSchema(requirementsSchema, payloadDocument(payload))
	if err != nil {
		e.logger.WarnContext(ctx, "Requirements payload rejected by schema, using heuristics", "error", err)

		return e.heuristics(userPrompt)
	}

	return normalizeRequirements(userPrompt, payload)
}

func (e *Extractor) buildPrompt(userPrompt, priorUnderstanding string, answers map[string]string) string {
	var builder strings.Builder

	builder.WriteString("Analyze the automation request below and respond with a single JSON object ")
	builder.WriteString("with these keys: primaryGoal (string), keySteps (array of strings), ")
	builder.WriteString("inputs, outputs, constraints (arrays of strings), ")
	builder.WriteString(`complexity ("simple"|"medium"|"complex"), `)
	builder.WriteString("urls, apis, credentials, schedules, platforms (arrays of strings, empty when not mentioned).\n")
	builder.WriteString("Only include schedules when the user explicitly asks for recurring automatic execution.\n\n")

	if priorUnderstanding != "" {
		builder.WriteString("Prior understanding:\n" + priorUnderstanding + "\n\n")
	}

	if len(answers) > 0 {
		builder.WriteString("Clarification answers:\n")

		keys := make([]string, 0, len(answers))
		for key := range answers {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			builder.WriteString(fmt.Sprintf("- %s: %s\n", key, answers[key]))
		}

		builder.WriteString("\n")
	}

	builder.WriteString("Request:\n" + userPrompt)

	return builder.String()
}

// heuristics is the deterministic fallback: keyword scans over the raw
// prompt. The primary goal is always the prompt verbatim.
func (e *Extractor) heuristics(userPrompt string) *models.Requirements {
	lowered := strings.ToLower(userPrompt)

	requirements := &models.Requirements{
		PrimaryGoal: userPrompt,
		KeySteps:    splitSteps(userPrompt),
		Complexity:  models.ComplexitySimple,
	}

	for platform, words := range platformKeywords {
		for _, word := range words {
			if strings.Contains(lowered, word) {
				requirements.Platforms = append(requirements.Platforms, platform)

				break
			}
		}
	}

	sort.Strings(requirements.Platforms)

	if hasScheduleSignal(lowered) {
		requirements.Schedules = append(requirements.Schedules, scheduleHint(lowered))
	}

	for _, keyword := range credentialKeywords {
		if strings.Contains(lowered, keyword) {
			requirements.Credentials = append(requirements.Credentials, keyword)
		}
	}

	requirements.URLs = urlPattern.FindAllString(userPrompt, -1)

	if len(requirements.KeySteps) > 4 || len(requirements.Platforms) > 2 {
		requirements.Complexity = models.ComplexityComplex
	} else if len(requirements.KeySteps) > 2 || len(requirements.Platforms) > 0 {
		requirements.Complexity = models.ComplexityMedium
	}

	return requirements
}

// hasScheduleSignal requires a scheduling keyword AND an automation verb;
// either alone is not enough.
func hasScheduleSignal(lowered string) bool {
	keywordFound := false

	for _, keyword := range scheduleKeywords {
		if strings.Contains(lowered, keyword) {
			keywordFound = true

			break
		}
	}

	if !keywordFound {
		return false
	}

	for _, verb := range automationVerbs {
		if containsWord(lowered, verb) {
			return true
		}
	}

	return false
}

func scheduleHint(lowered string) string {
	for _, keyword := range scheduleKeywords {
		if strings.Contains(lowered, keyword) {
			return keyword
		}
	}

	return "recurring"
}

func containsWord(text, word string) bool {
	index := 0

	for {
		found := strings.Index(text[index:], word)
		if found < 0 {
			return false
		}

		start := index + found
		end := start + len(word)

		beforeOK := start == 0 || !isLetter(text[start-1])
		afterOK := end == len(text) || !isLetter(text[end])

		if beforeOK && afterOK {
			return true
		}

		index = end
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func splitSteps(prompt string) []string {
	replaced := strings.NewReplacer(", then ", "\n", " then ", "\n", "; ", "\n").Replace(prompt)
	parts := strings.Split(replaced, "\n")

	steps := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			steps = append(steps, trimmed)
		}
	}

	if len(steps) == 0 {
		steps = append(steps, strings.TrimSpace(prompt))
	}

	return steps
}

func normalizeRequirements(userPrompt string, payload requirementsPayload) *models.Requirements {
	goal := strings.TrimSpace(payload.PrimaryGoal)
	if goal == "" {
		goal = userPrompt
	}

	complexity := models.Complexity(payload.Complexity)

	switch complexity {
	case models.ComplexitySimple, models.ComplexityMedium, models.ComplexityComplex:
	default:
		complexity = models.ComplexityMedium
	}

	return &models.Requirements{
		PrimaryGoal: goal,
		KeySteps:    cleanList(payload.KeySteps),
		Inputs:      cleanList(payload.Inputs),
		Outputs:     cleanList(payload.Outputs),
		Constraints: cleanList(payload.Constraints),
		Complexity:  complexity,
		URLs:        cleanList(payload.URLs),
		APIs:        cleanList(payload.APIs),
		Credentials: cleanList(payload.Credentials),
		Schedules:   cleanList(payload.Schedules),
		Platforms:   lowercaseList(cleanList(payload.Platforms)),
	}
}

func cleanList(values []string) []string {
	cleaned := make([]string, 0, len(values))

	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	return cleaned
}

func lowercaseList(values []string) []string {
	lowered := make([]string, 0, len(values))
	for _, value := range values {
		lowered = append(lowered, strings.ToLower(value))
	}

	return lowered
}

func payloadDocument(payload requirementsPayload) map[string]any {
	document := map[string]any{"primaryGoal": payload.PrimaryGoal}

	// Absent optional keys are omitted rather than sent as null, which the
	// schema would reject.
	lists := map[string][]string{
		"keySteps":    payload.KeySteps,
		"inputs":      payload.Inputs,
		"outputs":     payload.Outputs,
		"constraints": payload.Constraints,
		"urls":        payload.URLs,
		"apis":        payload.APIs,
		"credentials": payload.Credentials,
		"schedules":   payload.Schedules,
		"platforms":   payload.Platforms,
	}

	for key, list := range lists {
		if list != nil {
			document[key] = list
		}
	}

	if payload.Complexity != "" {
		document["complexity"] = payload.Complexity
	}

	return document
}
