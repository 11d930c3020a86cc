package generation

import (
	"testing"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"whitespace", "   ", true},
		{"todo marker", "TODO: fill this", true},
		{"your prefix", "YOUR_API_KEY", true},
		{"angle brackets", "<channel name>", true},
		{"literal placeholder", "placeholder", true},
		{"env reference", "{{ENV.SLACK_TOKEN}}", false},
		{"real value", "#general", false},
		{"expression", "{{input.items}}", false},
		{"number", 42, false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, isPlaceholder(testCase.value))
		})
	}
}

func TestConfiguratorScheduleCron(t *testing.T) {
	t.Parallel()

	configurator := NewConfigurator(catalogue.Default())

	tests := []struct {
		name     string
		hints    []string
		expected string
	}{
		{"weekly", []string{"weekly"}, "0 9 * * 1"},
		{"hourly", []string{"every hour"}, "0 * * * *"},
		{"morning", []string{"every morning"}, "0 9 * * *"},
		{"evening", []string{"evening"}, "0 18 * * *"},
		{"literal cron", []string{"*/15 * * * *"}, "*/15 * * * *"},
		{"unusable hint", []string{"whenever"}, "0 9 * * *"},
		{"no hints", nil, "0 9 * * *"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			node := testNode("t", catalogue.NodeTypeTriggerSchedule, models.CategoryTypeTrigger, nil)
			requirements := &models.Requirements{PrimaryGoal: "sync", Schedules: testCase.hints}

			configured := configurator.Configure(node, requirements, nil)

			assert.Equal(t, testCase.expected, configured.Data.Config["cron"])
		})
	}
}

func TestConfiguratorWebhookPath(t *testing.T) {
	t.Parallel()

	configurator := NewConfigurator(catalogue.Default())

	node := testNode("t", catalogue.NodeTypeTriggerWebhook, models.CategoryTypeTrigger, nil)
	requirements := &models.Requirements{PrimaryGoal: "Receive new GitHub issues!"}

	configured := configurator.Configure(node, requirements, nil)

	assert.Equal(t, "/hooks/receive-new-github-issues", configured.Data.Config["path"])
}

func TestConfiguratorURLSynthesis(t *testing.T) {
	t.Parallel()

	configurator := NewConfigurator(catalogue.Default())

	tests := []struct {
		name         string
		requirements *models.Requirements
		expected     string
	}{
		{
			"extracted url wins",
			&models.Requirements{PrimaryGoal: "fetch", URLs: []string{"https://api.example.com/v1"}},
			"https://api.example.com/v1",
		},
		{
			"platform service url",
			&models.Requirements{PrimaryGoal: "notify", Platforms: []string{"slack"}},
			"https://slack.com/api/chat.postMessage",
		},
		{
			"expression fallback",
			&models.Requirements{PrimaryGoal: "fetch"},
			"{{input.url}}",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			node := testNode("h", catalogue.NodeTypeHTTPRequest, models.CategoryTypeAction, nil)

			configured := configurator.Configure(node, testCase.requirements, nil)

			assert.Equal(t, testCase.expected, configured.Data.Config["url"])
		})
	}
}

func TestConfiguratorCredentialsAreEnvReferences(t *testing.T) {
	t.Parallel()

	configurator := NewConfigurator(catalogue.Default())

	node := testNode("db", catalogue.NodeTypeDatabaseQuery, models.CategoryTypeIntegration, nil)
	requirements := &models.Requirements{PrimaryGoal: "pull the monthly totals"}

	configured := configurator.Configure(node, requirements, nil)

	connection, ok := configured.Data.Config["connection"].(string)
	require.True(t, ok)
	assert.True(t, template.IsEnvReference(connection))
	assert.Equal(t, "DATABASE_URL", template.EnvReferenceKey(connection))
}

func TestConfiguratorEnsuresCredentialField(t *testing.T) {
	t.Parallel()

	configurator := NewConfigurator(catalogue.Default())

	node := testNode("s", catalogue.NodeTypeSlackMessage, models.CategoryTypeIntegration, nil)
	requirements := &models.Requirements{PrimaryGoal: "announce the release"}

	configured := configurator.Configure(node, requirements, nil)

	token, ok := configured.Data.Config["token"].(string)
	require.True(t, ok)
	assert.True(t, template.IsEnvReference(token))
}

func TestConfiguratorCallerValues(t *testing.T) {
	t.Parallel()

	configurator := NewConfigurator(catalogue.Default())

	node := testNode("s", catalogue.NodeTypeSlackMessage, models.CategoryTypeIntegration, nil)
	requirements := &models.Requirements{PrimaryGoal: "announce"}

	configured := configurator.Configure(node, requirements, map[string]any{
		"Channel":  "#release",
		"homepage": "https://example.com",
	})

	// Keys match case-insensitively; unknown keys are dropped.
	assert.Equal(t, "#release", configured.Data.Config["channel"])
	assert.NotContains(t, configured.Data.Config, "homepage")
	assert.NotContains(t, configured.Data.Config, "Channel")
}

func TestConfiguratorUnknownTypeKeepsCallerValues(t *testing.T) {
	t.Parallel()

	configurator := NewConfigurator(catalogue.Default())

	node := testNode("x", "custom_widget", models.CategoryTypeAction, nil)
	requirements := &models.Requirements{PrimaryGoal: "do custom things"}

	configured := configurator.Configure(node, requirements, map[string]any{"mode": "fast"})

	assert.Equal(t, map[string]any{"mode": "fast"}, configured.Data.Config)
}

func TestConfiguratorDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	configurator := NewConfigurator(catalogue.Default())

	node := testNode("h", catalogue.NodeTypeHTTPRequest, models.CategoryTypeAction, nil)
	requirements := &models.Requirements{PrimaryGoal: "fetch"}

	configured := configurator.Configure(node, requirements, nil)

	assert.NotEmpty(t, configured.Data.Config)
	assert.Empty(t, node.Data.Config)
}

func TestSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "receive-new-orders", slug("Receive New Orders"))
	assert.Equal(t, "workflow", slug("!!!"))
	assert.Equal(t, "a-b", slug("  a  b  "))
}
