package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBalanced(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "plain string", value: "hello", want: true},
		{name: "single expression", value: "{{input}}", want: true},
		{name: "expression in url", value: "https://api.example.com/{{steps.fetch.id}}", want: true},
		{name: "unclosed expression", value: "{{input", want: false},
		{name: "closing before opening", value: "}}input{{", want: false},
		{name: "nested expressions", value: "{{a{{b}}}}", want: true},
		{name: "two expressions", value: "{{a}} and {{b}}", want: true},
		{name: "empty string", value: "", want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Balanced(tc.value))
		})
	}
}

func TestIsEnvReference(t *testing.T) {
	assert.True(t, IsEnvReference("{{ENV.SERVICE_API_KEY}}"))
	assert.True(t, IsEnvReference("{{ ENV.TOKEN }}"))
	assert.False(t, IsEnvReference("{{env.token}}"))
	assert.False(t, IsEnvReference("ENV.TOKEN"))
	assert.False(t, IsEnvReference("{{ENV.}}"))
	assert.False(t, IsEnvReference("placeholder"))
}

func TestEnvReference(t *testing.T) {
	assert.Equal(t, "{{ENV.API_KEY}}", EnvReference("api key"))
	assert.Equal(t, "{{ENV.SLACK_TOKEN}}", EnvReference("slack-token"))
	assert.Equal(t, "{{ENV.VALUE}}", EnvReference("---"))

	// Every synthesized reference must itself pass the acceptance check.
	assert.True(t, IsEnvReference(EnvReference("database password")))
}

func TestEnvReferenceKey(t *testing.T) {
	assert.Equal(t, "SLACK_TOKEN", EnvReferenceKey("{{ENV.SLACK_TOKEN}}"))
	assert.Equal(t, "TOKEN", EnvReferenceKey("{{ ENV.TOKEN }}"))
	assert.Equal(t, "", EnvReferenceKey("{{input}}"))
	assert.Equal(t, "", EnvReferenceKey("plain"))
}

func TestIsExpression(t *testing.T) {
	assert.True(t, IsExpression("{{input}}"))
	assert.True(t, IsExpression("prefix {{a}} suffix"))
	assert.False(t, IsExpression("no braces"))
	assert.False(t, IsExpression("{{only open"))
}
