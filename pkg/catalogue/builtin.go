package catalogue

import "github.com/dukex/flowgen/pkg/models"

// Built-in node types.
const (
	NodeTypeTriggerManual   = "trigger:manual"
	NodeTypeTriggerSchedule = "trigger:schedule"
	NodeTypeTriggerWebhook  = "trigger:webhook"
	NodeTypeTriggerForm     = "trigger:form"

	NodeTypeHTTPRequest   = "http_request"
	NodeTypeAIChat        = "ai_chat"
	NodeTypeAIAgent       = "ai_agent"
	NodeTypeDatabaseQuery = "database_query"
	NodeTypeSlackMessage  = "slack_message"
	NodeTypeEmailSend     = "email_send"
	NodeTypeTransform     = "transform"
	NodeTypeFilter        = "filter"
	NodeTypeCondition     = "condition"
	NodeTypeDelay         = "delay"
	NodeTypeSet           = "set"
	NodeTypeOutput        = "output"
)

// Default returns the built-in catalogue. Tests that need a minimal
// fixture construct their own catalogue with New instead.
func Default() *Catalogue {
	return New(
		NodeDefinition{
			Type:        NodeTypeTriggerManual,
			Label:       "Manual Trigger",
			Description: "Starts the workflow on explicit user invocation",
			Category:    models.CategoryTypeTrigger,
			Keywords:    []string{"manual", "button", "on demand", "start"},
		},
		NodeDefinition{
			Type:           NodeTypeTriggerSchedule,
			Label:          "Schedule Trigger",
			Description:    "Starts the workflow on a recurring cron schedule",
			Category:       models.CategoryTypeTrigger,
			RequiredFields: []string{"cron"},
			OptionalFields: map[string]FieldSpec{
				"cron":     {Default: "0 9 * * *", Description: "Standard 5-field cron expression"},
				"timezone": {Default: "UTC", Description: "IANA timezone name"},
			},
			Keywords: []string{"schedule", "cron", "daily", "hourly", "recurring", "every"},
		},
		NodeDefinition{
			Type:           NodeTypeTriggerWebhook,
			Label:          "Webhook Trigger",
			Description:    "Starts the workflow when an HTTP request hits the webhook endpoint",
			Category:       models.CategoryTypeTrigger,
			RequiredFields: []string{"path"},
			OptionalFields: map[string]FieldSpec{
				"path":   {Default: "/webhook", Description: "Relative endpoint path"},
				"method": {Default: "POST", Description: "Accepted HTTP method"},
			},
			Keywords: []string{"webhook", "callback", "incoming", "endpoint"},
		},
		NodeDefinition{
			Type:           NodeTypeTriggerForm,
			Label:          "Form Trigger",
			Description:    "Starts the workflow when a hosted form is submitted",
			Category:       models.CategoryTypeTrigger,
			RequiredFields: []string{"title"},
			OptionalFields: map[string]FieldSpec{
				"title": {Default: "Workflow Form", Description: "Form title shown to submitters"},
			},
			Keywords: []string{"form", "submission", "survey", "input form"},
		},
		NodeDefinition{
			Type:           NodeTypeHTTPRequest,
			Label:          "HTTP Request",
			Description:    "Calls an external HTTP API and exposes the response",
			Category:       models.CategoryTypeAction,
			RequiredFields: []string{"url", "method"},
			OptionalFields: map[string]FieldSpec{
				"method":  {Default: "GET", Description: "HTTP method"},
				"headers": {Default: map[string]any{}, Description: "Request headers"},
				"timeout": {Default: 30, Description: "Request timeout in seconds"},
			},
			CommonPatterns: []map[string]any{
				{"method": "GET", "headers": map[string]any{"Accept": "application/json"}},
				{"method": "POST", "headers": map[string]any{"Content-Type": "application/json"}},
			},
			Keywords: []string{"http", "api", "request", "fetch", "rest", "call", "endpoint"},
		},
		NodeDefinition{
			Type:           NodeTypeAIChat,
			Label:          "AI Chat",
			Description:    "Sends a prompt to a language model and returns the completion",
			Category:       models.CategoryTypeAI,
			RequiredFields: []string{"prompt"},
			OptionalFields: map[string]FieldSpec{
				"model":       {Default: "llama3", Description: "Model name"},
				"temperature": {Default: 0.7, Description: "Sampling temperature"},
			},
			Keywords: []string{"ai", "chat", "llm", "generate", "summarize", "sentiment", "analyze", "classify"},
		},
		NodeDefinition{
			Type:           NodeTypeAIAgent,
			Label:          "AI Agent",
			Description:    "Runs an agent loop with tool, memory, and model inputs",
			Category:       models.CategoryTypeAI,
			RequiredFields: []string{"prompt"},
			OptionalFields: map[string]FieldSpec{
				"model": {Default: "llama3", Description: "Model name"},
				"tools": {Default: []any{}, Description: "Tool identifiers available to the agent"},
			},
			MultiInput: true,
			Keywords:   []string{"agent", "tool", "autonomous", "assistant"},
		},
		NodeDefinition{
			Type:                NodeTypeDatabaseQuery,
			Label:               "Database Query",
			Description:         "Runs a query against a configured database connection",
			Category:            models.CategoryTypeIntegration,
			RequiredFields:      []string{"query", "connection"},
			RequiresCredentials: true,
			OptionalFields: map[string]FieldSpec{
				"timeout": {Default: 30, Description: "Query timeout in seconds"},
			},
			Keywords: []string{"database", "sql", "query", "table", "postgres", "mysql", "records", "sales"},
		},
		NodeDefinition{
			Type:                NodeTypeSlackMessage,
			Label:               "Slack Message",
			Description:         "Posts a message to a Slack channel",
			Category:            models.CategoryTypeIntegration,
			RequiredFields:      []string{"channel", "message"},
			RequiresCredentials: true,
			OptionalFields: map[string]FieldSpec{
				"channel": {Default: "#general", Description: "Target channel"},
			},
			Keywords: []string{"slack", "message", "notify", "channel", "post"},
		},
		NodeDefinition{
			Type:                NodeTypeEmailSend,
			Label:               "Send Email",
			Description:         "Sends an email through a configured provider",
			Category:            models.CategoryTypeIntegration,
			RequiredFields:      []string{"to", "subject", "body"},
			RequiresCredentials: true,
			OptionalFields: map[string]FieldSpec{
				"subject": {Default: "Workflow notification", Description: "Email subject line"},
			},
			Keywords: []string{"email", "mail", "send", "gmail", "notify"},
		},
		NodeDefinition{
			Type:           NodeTypeTransform,
			Label:          "Transform",
			Description:    "Reshapes input data with a template expression",
			Category:       models.CategoryTypeLogic,
			RequiredFields: []string{"expression"},
			OptionalFields: map[string]FieldSpec{
				"expression": {Default: "{{input}}", Description: "Transformation expression"},
			},
			Keywords: []string{"transform", "map", "convert", "format", "reshape", "parse"},
		},
		NodeDefinition{
			Type:           NodeTypeFilter,
			Label:          "Filter",
			Description:    "Passes through only items matching a condition",
			Category:       models.CategoryTypeLogic,
			RequiredFields: []string{"condition"},
			Keywords:       []string{"filter", "exclude", "only", "match"},
		},
		NodeDefinition{
			Type:           NodeTypeCondition,
			Label:          "Condition",
			Description:    "Branches the workflow on a boolean condition",
			Category:       models.CategoryTypeLogic,
			RequiredFields: []string{"condition"},
			Keywords:       []string{"if", "condition", "branch", "when", "check", "validate"},
		},
		NodeDefinition{
			Type:           NodeTypeDelay,
			Label:          "Delay",
			Description:    "Waits a fixed duration before continuing",
			Category:       models.CategoryTypeLogic,
			RequiredFields: []string{"duration"},
			OptionalFields: map[string]FieldSpec{
				"duration": {Default: "5s", Description: "Wait duration"},
			},
			Keywords: []string{"delay", "wait", "sleep", "pause", "rate limit", "throttle"},
		},
		NodeDefinition{
			Type:        NodeTypeSet,
			Label:       "Set Data",
			Description: "Assigns static or derived values to the execution data",
			Category:    models.CategoryTypeLogic,
			OptionalFields: map[string]FieldSpec{
				"values": {Default: map[string]any{}, Description: "Key/value assignments"},
			},
			Keywords: []string{"set", "assign", "store", "variable", "data"},
		},
		NodeDefinition{
			Type:           NodeTypeOutput,
			Label:          "Output",
			Description:    "Emits a named workflow result",
			Category:       models.CategoryTypeOutput,
			RequiredFields: []string{"name"},
			OptionalFields: map[string]FieldSpec{
				"format": {Default: "json", Description: "Serialization format"},
			},
			Keywords: []string{"output", "result", "return", "export", "report"},
		},
	)
}
