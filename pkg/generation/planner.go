package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/provider"
	"github.com/go-playground/validator/v10"
)

// plannerScheduleContext gates schedule-trigger selection a second time at
// planning: the hint itself must look like scheduling language.
var plannerScheduleContext = []string{
	"daily", "hourly", "weekly", "monthly", "every", "morning", "evening", "cron", "recurring", "schedule",
}

// Planner turns Requirements into an abstract GenerationStructure. The
// completion provider is asked first; unusable answers fall through to
// deterministic keyword inference. The only hard failure is a structurally
// invalid plan, which cannot safely continue.
type Planner struct {
	provider  provider.Provider
	catalogue *catalogue.Catalogue
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewPlanner creates a structure planner over the given catalogue.
func NewPlanner(completions provider.Provider, cat *catalogue.Catalogue, logger *slog.Logger) *Planner {
	return &Planner{
		provider:  completions,
		catalogue: cat,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.With("module", "structure_planner"),
	}
}

type structurePayload struct {
	Trigger string `json:"trigger"`
	Steps   []struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"steps,omitempty"`
	Outputs []struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Description string `json:"description"`
		Required    bool   `json:"required"`
		Format      string `json:"format"`
	} `json:"outputs,omitempty"`
}

// Plan produces the generation structure for the given requirements.
func (p *Planner) Plan(ctx context.Context, requirements *models.Requirements) (*models.GenerationStructure, error) {
	structure := p.planWithProvider(ctx, requirements)
	if structure == nil {
		structure = p.inferStructure(requirements)
	}

	err := p.validate.Struct(structure)
	if err != nil {
		return nil, fmt.Errorf("planned structure is invalid: %w", err)
	}

	return structure, nil
}

func (p *Planner) planWithProvider(ctx context.Context, requirements *models.Requirements) *models.GenerationStructure {
	raw, err := p.provider.Generate(ctx, p.buildPrompt(requirements), provider.Options{Temperature: 0.2})
	if err != nil {
		p.logger.WarnContext(ctx, "Provider failed, using deterministic planning", "error", err)

		return nil
	}

	var payload structurePayload

	err = provider.ExtractJSON(raw, &payload)
	if err != nil {
		p.logger.WarnContext(ctx, "Unparseable structure response, using deterministic planning", "error", err)

		return nil
	}

	err = checkSchema(structureSchema, payload)
	if err != nil {
		p.logger.WarnContext(ctx, "Structure payload rejected by schema, using deterministic planning", "error", err)

		return nil
	}

	// Reject plans whose trigger is not a registered trigger type; the
	// deterministic path never produces one.
	if !p.catalogue.IsTriggerType(payload.Trigger) {
		p.logger.WarnContext(ctx, "Proposed trigger type not in catalogue, using deterministic planning",
			"trigger", payload.Trigger)

		return nil
	}

	structure := &models.GenerationStructure{Trigger: payload.Trigger}

	for i, step := range payload.Steps {
		stepType := step.Type
		if _, known := p.catalogue.Lookup(stepType); !known {
			stepType = p.scoreStepType(step.Description)
		}

		structure.Steps = append(structure.Steps, models.PlannedStep{
			ID:          fmt.Sprintf("step-%d", i+1),
			Description: step.Description,
			Type:        stepType,
		})
	}

	for _, output := range payload.Outputs {
		structure.Outputs = append(structure.Outputs, models.OutputDefinition{
			Name:        output.Name,
			Type:        normalizeOutputType(output.Type),
			Description: output.Description,
			Required:    output.Required,
			Format:      normalizeOutputFormat(output.Format),
		})
	}

	p.fillDefaults(structure, requirements)

	return structure
}

func (p *Planner) buildPrompt(requirements *models.Requirements) string {
	var builder strings.Builder

	builder.WriteString("Plan a workflow as a single JSON object with keys: ")
	builder.WriteString(`trigger (one of: `)
	builder.WriteString(strings.Join(p.catalogue.TriggerTypes(), ", "))
	builder.WriteString("), steps (array of {description, type}), outputs (array of {name, type, description, required, format}).\n")
	builder.WriteString("Step types must come from this list:\n")

	for _, definition := range p.catalogue.Definitions() {
		if definition.Category == models.CategoryTypeTrigger {
			continue
		}

		builder.WriteString(fmt.Sprintf("- %s: %s\n", definition.Type, definition.Description))
	}

	builder.WriteString("\nGoal: " + requirements.PrimaryGoal + "\n")

	if len(requirements.KeySteps) > 0 {
		builder.WriteString("Steps:\n")

		for _, step := range requirements.KeySteps {
			builder.WriteString("- " + step + "\n")
		}
	}

	if len(requirements.Schedules) > 0 {
		builder.WriteString("Schedule hints: " + strings.Join(requirements.Schedules, ", ") + "\n")
	}

	if len(requirements.Platforms) > 0 {
		builder.WriteString("Platforms: " + strings.Join(requirements.Platforms, ", ") + "\n")
	}

	return builder.String()
}

// inferStructure is the deterministic fallback planner.
func (p *Planner) inferStructure(requirements *models.Requirements) *models.GenerationStructure {
	structure := &models.GenerationStructure{
		Trigger: p.chooseTrigger(requirements),
	}

	steps := requirements.KeySteps
	if len(steps) == 0 {
		steps = []string{requirements.PrimaryGoal}
	}

	for i, description := range steps {
		structure.Steps = append(structure.Steps, models.PlannedStep{
			ID:          fmt.Sprintf("step-%d", i+1),
			Description: description,
			Type:        p.scoreStepType(description),
		})
	}

	p.coverPlatforms(structure, requirements)

	for _, description := range requirements.Outputs {
		structure.Outputs = append(structure.Outputs, models.OutputDefinition{
			Name:        outputName(description),
			Type:        inferOutputType(description),
			Description: description,
			Required:    true,
			Format:      inferOutputFormat(description),
		})
	}

	p.fillDefaults(structure, requirements)

	return structure
}

// chooseTrigger encodes a strict precedence: schedule only on an explicit,
// verb-gated schedule hint; then webhook; then form; manual as the safe
// default. Under-triggering is recoverable, silently running on a timer is
// not.
func (p *Planner) chooseTrigger(requirements *models.Requirements) string {
	if len(requirements.Schedules) > 0 && hasScheduleContext(requirements.Schedules) {
		return catalogue.NodeTypeTriggerSchedule
	}

	for _, url := range requirements.URLs {
		if strings.Contains(strings.ToLower(url), "webhook") {
			return catalogue.NodeTypeTriggerWebhook
		}
	}

	if requirements.HasPlatform("webhook") {
		return catalogue.NodeTypeTriggerWebhook
	}

	if requirements.HasPlatform("form") {
		return catalogue.NodeTypeTriggerForm
	}

	return catalogue.NodeTypeTriggerManual
}

func hasScheduleContext(hints []string) bool {
	for _, hint := range hints {
		lowered := strings.ToLower(hint)

		for _, keyword := range plannerScheduleContext {
			if strings.Contains(lowered, keyword) {
				return true
			}
		}
	}

	return false
}

// platformNodeTypes maps extracted platform hints to the node type that
// serves them.
var platformNodeTypes = map[string]string{
	"slack":    catalogue.NodeTypeSlackMessage,
	"database": catalogue.NodeTypeDatabaseQuery,
	"email":    catalogue.NodeTypeEmailSend,
	"google":   catalogue.NodeTypeHTTPRequest,
	"discord":  catalogue.NodeTypeHTTPRequest,
	"twitter":  catalogue.NodeTypeHTTPRequest,
	"github":   catalogue.NodeTypeHTTPRequest,
}

// coverPlatforms appends a step for every mentioned platform that the
// scored steps did not already cover, so a prompt naming both a data
// source and a destination yields nodes for both.
func (p *Planner) coverPlatforms(structure *models.GenerationStructure, requirements *models.Requirements) {
	present := make(map[string]bool, len(structure.Steps))
	for _, step := range structure.Steps {
		present[step.Type] = true
	}

	for _, platform := range requirements.Platforms {
		nodeType, ok := platformNodeTypes[platform]
		if !ok || present[nodeType] {
			continue
		}

		if _, known := p.catalogue.Lookup(nodeType); !known {
			continue
		}

		present[nodeType] = true
		structure.Steps = append(structure.Steps, models.PlannedStep{
			ID:          fmt.Sprintf("step-%d", len(structure.Steps)+1),
			Description: platform + " integration for: " + requirements.PrimaryGoal,
			Type:        nodeType,
		})
	}
}

// scoreStepType picks the catalogue type whose label, description, type
// name, or keywords best overlap the step text. Nothing scoring above zero
// falls back to the generic data-assignment node.
func (p *Planner) scoreStepType(description string) string {
	lowered := strings.ToLower(description)

	bestType := catalogue.NodeTypeSet
	bestScore := 0

	for _, definition := range p.catalogue.Definitions() {
		if definition.Category == models.CategoryTypeTrigger {
			continue
		}

		score := 0

		for _, keyword := range definition.Keywords {
			if strings.Contains(lowered, keyword) {
				score += 2
			}
		}

		if strings.Contains(lowered, strings.ToLower(definition.Label)) {
			score += 2
		}

		if strings.Contains(lowered, strings.TrimPrefix(definition.Type, "trigger:")) {
			score++
		}

		if score > bestScore {
			bestScore = score
			bestType = definition.Type
		}
	}

	return bestType
}

// fillDefaults guarantees at least one step and one output.
func (p *Planner) fillDefaults(structure *models.GenerationStructure, requirements *models.Requirements) {
	if len(structure.Steps) == 0 {
		structure.Steps = append(structure.Steps, models.PlannedStep{
			ID:          "step-1",
			Description: requirements.PrimaryGoal,
			Type:        p.scoreStepType(requirements.PrimaryGoal),
		})
	}

	if len(structure.Outputs) == 0 {
		structure.Outputs = append(structure.Outputs, models.OutputDefinition{
			Name:        "result",
			Type:        "string",
			Description: "Workflow result",
			Required:    true,
		})
	}
}

var outputTypeKeywords = map[string][]string{
	"object":  {"object", "record", "report", "summary", "details"},
	"array":   {"array", "list", "items", "rows", "collection"},
	"number":  {"number", "count", "total", "amount", "score"},
	"boolean": {"boolean", "flag", "yes/no", "true", "whether"},
	"file":    {"file", "document", "attachment", "pdf", "spreadsheet"},
}

var outputFormatKeywords = map[string][]string{
	"json":     {"json"},
	"csv":      {"csv", "spreadsheet", "comma-separated"},
	"xml":      {"xml"},
	"html":     {"html", "web page"},
	"markdown": {"markdown"},
}

func inferOutputType(description string) string {
	lowered := strings.ToLower(description)

	for outputType, keywords := range outputTypeKeywords {
		for _, keyword := range keywords {
			if strings.Contains(lowered, keyword) {
				return outputType
			}
		}
	}

	return "string"
}

func inferOutputFormat(description string) string {
	lowered := strings.ToLower(description)

	for format, keywords := range outputFormatKeywords {
		for _, keyword := range keywords {
			if strings.Contains(lowered, keyword) {
				return format
			}
		}
	}

	return ""
}

func normalizeOutputType(outputType string) string {
	switch outputType {
	case "string", "number", "boolean", "object", "array", "file":
		return outputType
	default:
		return "string"
	}
}

func normalizeOutputFormat(format string) string {
	switch format {
	case "json", "csv", "xml", "html", "markdown":
		return format
	default:
		return ""
	}
}

func outputName(description string) string {
	words := strings.Fields(strings.ToLower(description))

	kept := make([]string, 0, 3)

	for _, word := range words {
		cleaned := strings.Trim(word, ".,:;!?-*#")
		if cleaned == "" || isStopWord(cleaned) {
			continue
		}

		kept = append(kept, cleaned)
		if len(kept) == 3 {
			break
		}
	}

	if len(kept) == 0 {
		return "result"
	}

	return strings.Join(kept, "_")
}
