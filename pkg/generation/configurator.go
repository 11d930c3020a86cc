package generation

import (
	"fmt"
	"strings"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/template"
	"github.com/robfig/cron/v3"
)

// placeholderFragments mark values that are recognizably stand-ins rather
// than real data. Environment references are exempt.
var placeholderFragments = []string{
	"todo", "tbd", "fill this", "fill in", "changeme", "change me",
	"your_", "your-", "example value", "<", ">", "xxx",
}

// isPlaceholder reports whether a config value is empty or a recognizable
// stand-in. The configurator and the repair engine share this detection so
// neither ever emits what the other would reject.
func isPlaceholder(value any) bool {
	text, ok := value.(string)
	if !ok {
		return value == nil
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}

	if template.IsEnvReference(trimmed) {
		return false
	}

	lowered := strings.ToLower(trimmed)
	if lowered == "placeholder" || lowered == "example" || lowered == "sample" {
		return true
	}

	for _, fragment := range placeholderFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}

	return false
}

// envKeyOverrides gives well-known fields a conventional environment
// variable name instead of the mechanical "<type>_<field>" derivation.
var envKeyOverrides = map[string]string{
	catalogue.NodeTypeDatabaseQuery + "/connection": "DATABASE_URL",
	catalogue.NodeTypeSlackMessage + "/token":       "SLACK_TOKEN",
	catalogue.NodeTypeEmailSend + "/password":       "SMTP_PASSWORD",
}

// knownServiceURLs anchor URL synthesis for recognized platforms.
var knownServiceURLs = map[string]string{
	"slack":   "https://slack.com/api/chat.postMessage",
	"discord": "https://discord.com/api/webhooks",
	"github":  "https://api.github.com/repos",
	"twitter": "https://api.twitter.com/2/tweets",
	"google":  "https://www.googleapis.com",
}

// Configurator fills node configuration from, in priority order: caller
// supplied values, requirement-derived values, catalogue defaults, and
// synthesized safe values. Its core invariant: no required field is ever
// left empty or holding a placeholder.
type Configurator struct {
	catalogue *catalogue.Catalogue
	cron      cron.Parser
}

// NewConfigurator creates a configurator over the given catalogue.
func NewConfigurator(cat *catalogue.Catalogue) *Configurator {
	return &Configurator{
		catalogue: cat,
		cron:      cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
	}
}

// Configure returns a copy of the node with its config filled in. Errors
// in a type rule degrade to a minimal safe config instead of failing the
// generation.
func (c *Configurator) Configure(node *models.WorkflowNode, requirements *models.Requirements, supplied map[string]any) *models.WorkflowNode {
	configured := node.CloneConfig()

	definition, known := c.catalogue.Lookup(node.Type)
	if !known {
		// Unknown/custom type: apply caller values verbatim, nothing else.
		applyCallerValues(configured.Data.Config, nil, supplied)

		return configured
	}

	err := c.buildConfig(configured, definition, requirements, supplied)
	if err != nil {
		configured.Data.Config = map[string]any{"prompt": requirements.PrimaryGoal}
	}

	return configured
}

func (c *Configurator) buildConfig(node *models.WorkflowNode, definition catalogue.NodeDefinition, requirements *models.Requirements, supplied map[string]any) error {
	config := node.Data.Config

	required := make(map[string]bool, len(definition.RequiredFields))
	for _, field := range definition.RequiredFields {
		required[field] = true
	}

	// Catalogue defaults first, then the first common pattern on top.
	// Required fields are left for synthesis, which consults the extracted
	// requirements before falling back to these same defaults.
	for field, spec := range definition.OptionalFields {
		if _, exists := config[field]; !exists && !required[field] && spec.Default != nil {
			config[field] = spec.Default
		}
	}

	if len(definition.CommonPatterns) > 0 {
		for field, value := range definition.CommonPatterns[0] {
			if _, exists := config[field]; !exists && !required[field] {
				config[field] = value
			}
		}
	}

	fieldNames := knownFields(definition)
	applyCallerValues(config, fieldNames, supplied)

	// Required fields last: anything still empty or placeholder-shaped
	// gets a synthesized value.
	for _, field := range definition.RequiredFields {
		if isPlaceholder(config[field]) {
			value, err := c.synthesize(node, definition, field, requirements)
			if err != nil {
				return err
			}

			config[field] = value
		}
	}

	if definition.RequiresCredentials {
		c.ensureCredential(node.Type, config, requirements)
	}

	return nil
}

// ensureCredential guarantees credential-requiring types carry at least
// one populated credential-like field. The value is always an environment
// reference, never a literal secret.
func (c *Configurator) ensureCredential(nodeType string, config map[string]any, requirements *models.Requirements) {
	for field, value := range config {
		if isSecretField(field) && !isPlaceholder(value) {
			return
		}
	}

	field := "token"

	for _, mentioned := range requirements.Credentials {
		if strings.Contains(strings.ToLower(mentioned), "password") {
			field = "password"

			break
		}
	}

	config[field] = template.EnvReference(envKey(nodeType, field))
}

func knownFields(definition catalogue.NodeDefinition) map[string]bool {
	fields := make(map[string]bool, len(definition.RequiredFields)+len(definition.OptionalFields))

	for _, field := range definition.RequiredFields {
		fields[field] = true
	}

	for field := range definition.OptionalFields {
		fields[field] = true
	}

	return fields
}

// applyCallerValues copies caller-supplied values in, matching keys
// exactly first and case-insensitively second. A nil fields set accepts
// every key (unknown node types).
func applyCallerValues(config map[string]any, fields map[string]bool, supplied map[string]any) {
	for key, value := range supplied {
		target := key

		if fields != nil && !fields[key] {
			target = ""

			for field := range fields {
				if strings.EqualFold(field, key) {
					target = field

					break
				}
			}

			if target == "" {
				continue
			}
		}

		if value != nil {
			config[target] = value
		}
	}
}

// synthesize produces a safe, non-placeholder value for one required
// field, keyed on the field name's semantic category.
func (c *Configurator) synthesize(node *models.WorkflowNode, definition catalogue.NodeDefinition, field string, requirements *models.Requirements) (any, error) {
	switch {
	case field == "cron":
		return c.cronExpression(requirements), nil
	case field == "path":
		return "/hooks/" + slug(requirements.PrimaryGoal), nil
	case field == "name":
		return slug(node.Data.Label), nil
	case isSecretField(field):
		return template.EnvReference(envKey(node.Type, field)), nil
	case isURLField(field):
		return c.synthesizeURL(requirements), nil
	case isPromptField(field):
		if strings.TrimSpace(requirements.PrimaryGoal) == "" {
			return nil, fmt.Errorf("no goal available for field %q", field)
		}

		return requirements.PrimaryGoal, nil
	default:
		if spec, ok := definition.OptionalFields[field]; ok && spec.Default != nil {
			return spec.Default, nil
		}

		return template.Passthrough(), nil
	}
}

func isSecretField(field string) bool {
	lowered := strings.ToLower(field)

	for _, marker := range []string{"key", "token", "secret", "credential", "password", "auth", "connection"} {
		if strings.Contains(lowered, marker) {
			return true
		}
	}

	return false
}

func isURLField(field string) bool {
	lowered := strings.ToLower(field)

	return strings.Contains(lowered, "url") || strings.Contains(lowered, "endpoint") || strings.Contains(lowered, "host")
}

func isPromptField(field string) bool {
	lowered := strings.ToLower(field)

	for _, marker := range []string{"prompt", "message", "body", "text", "subject", "title", "description", "goal"} {
		if strings.Contains(lowered, marker) {
			return true
		}
	}

	return false
}

func envKey(nodeType, field string) string {
	if override, ok := envKeyOverrides[nodeType+"/"+field]; ok {
		return override
	}

	return strings.TrimPrefix(nodeType, "trigger:") + "_" + field
}

// synthesizeURL prefers an extracted URL, then a recognized platform's
// service URL, and finally a template expression resolved at execution
// time. Never a literal placeholder domain.
func (c *Configurator) synthesizeURL(requirements *models.Requirements) string {
	for _, url := range requirements.URLs {
		if !isPlaceholder(url) {
			return url
		}
	}

	for _, platform := range requirements.Platforms {
		if serviceURL, ok := knownServiceURLs[platform]; ok {
			return serviceURL
		}
	}

	return "{{input.url}}"
}

// cronExpression derives a standard 5-field expression from schedule
// hints, validating every candidate before use.
func (c *Configurator) cronExpression(requirements *models.Requirements) string {
	const defaultCron = "0 9 * * *"

	for _, hint := range requirements.Schedules {
		if expression, ok := cronFromHint(hint); ok {
			if _, err := c.cron.Parse(expression); err == nil {
				return expression
			}
		}
	}

	return defaultCron
}

func cronFromHint(hint string) (string, bool) {
	lowered := strings.ToLower(hint)

	switch {
	case strings.Contains(lowered, "hourly") || strings.Contains(lowered, "every hour"):
		return "0 * * * *", true
	case strings.Contains(lowered, "weekly") || strings.Contains(lowered, "every week"):
		return "0 9 * * 1", true
	case strings.Contains(lowered, "monthly"):
		return "0 9 1 * *", true
	case strings.Contains(lowered, "daily") || strings.Contains(lowered, "morning") || strings.Contains(lowered, "every day"):
		return "0 9 * * *", true
	case strings.Contains(lowered, "evening"):
		return "0 18 * * *", true
	default:
		// The hint may itself be a cron expression.
		if strings.Count(lowered, " ") == 4 {
			return lowered, true
		}

		return "", false
	}
}

func slug(text string) string {
	var builder strings.Builder

	lastDash := true

	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)

			lastDash = false
		default:
			if !lastDash {
				builder.WriteRune('-')

				lastDash = true
			}
		}
	}

	result := strings.Trim(builder.String(), "-")
	if result == "" {
		return "workflow"
	}

	if len(result) > 40 {
		result = strings.Trim(result[:40], "-")
	}

	return result
}
