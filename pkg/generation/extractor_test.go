package generation

import (
	"context"
	"testing"

	"github.com/dukex/flowgen/pkg/mocks"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExtractorFallsBackToHeuristics(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(offlineProvider(), discardLogger())

	prompt := "Every morning fetch sales records from the database and post a summary to Slack"
	requirements := extractor.Extract(context.Background(), prompt, "", nil)

	assert.Equal(t, prompt, requirements.PrimaryGoal)
	assert.Contains(t, requirements.Platforms, "database")
	assert.Contains(t, requirements.Platforms, "slack")
	assert.NotEmpty(t, requirements.Schedules)
}

func TestExtractorScheduleSignalRequiresVerb(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		prompt   string
		expected bool
	}{
		{"keyword with verb", "run the report every morning", true},
		{"keyword without verb", "my daily coffee routine", false},
		{"verb without keyword", "fetch the latest numbers", false},
		{"cron with verb", "execute the sync on a cron", true},
	}

	extractor := NewExtractor(offlineProvider(), discardLogger())

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			requirements := extractor.Extract(context.Background(), testCase.prompt, "", nil)

			if testCase.expected {
				assert.NotEmpty(t, requirements.Schedules)
			} else {
				assert.Empty(t, requirements.Schedules)
			}
		})
	}
}

func TestExtractorUsesProviderPayload(t *testing.T) {
	t.Parallel()

	completions := &mocks.MockProvider{}
	completions.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("```json\n{\"primaryGoal\":\"Sync invoices nightly\",\"keySteps\":[\"pull invoices\",\"store them\"],\"complexity\":\"medium\",\"platforms\":[\"Slack\"]}\n```", nil)

	extractor := NewExtractor(completions, discardLogger())

	requirements := extractor.Extract(context.Background(), "sync my invoices", "", nil)

	assert.Equal(t, "Sync invoices nightly", requirements.PrimaryGoal)
	assert.Equal(t, []string{"pull invoices", "store them"}, requirements.KeySteps)
	assert.Equal(t, models.ComplexityMedium, requirements.Complexity)
	// Platform hints are normalized to lowercase.
	assert.Equal(t, []string{"slack"}, requirements.Platforms)
}

func TestExtractorRejectsPayloadFailingSchema(t *testing.T) {
	t.Parallel()

	completions := &mocks.MockProvider{}
	completions.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"primaryGoal": ""}`, nil)

	extractor := NewExtractor(completions, discardLogger())

	prompt := "archive old tickets"
	requirements := extractor.Extract(context.Background(), prompt, "", nil)

	// Schema rejection falls back to heuristics: prompt kept verbatim.
	assert.Equal(t, prompt, requirements.PrimaryGoal)
}

func TestExtractorFindsURLsAndCredentials(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(offlineProvider(), discardLogger())

	requirements := extractor.Extract(context.Background(),
		"Send my api key protected request to https://internal.example.com/v2/report", "", nil)

	require.Len(t, requirements.URLs, 1)
	assert.Equal(t, "https://internal.example.com/v2/report", requirements.URLs[0])
	assert.NotEmpty(t, requirements.Credentials)
}

func TestSplitSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		prompt   string
		expected []string
	}{
		{
			"then separated",
			"fetch the data then clean it then store it",
			[]string{"fetch the data", "clean it", "store it"},
		},
		{
			"semicolon separated",
			"fetch the data; store it",
			[]string{"fetch the data", "store it"},
		},
		{
			"single clause",
			"just one thing",
			[]string{"just one thing"},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, splitSteps(testCase.prompt))
		})
	}
}

func TestContainsWord(t *testing.T) {
	t.Parallel()

	assert.True(t, containsWord("run the report", "run"))
	assert.True(t, containsWord("please run", "run"))
	assert.False(t, containsWord("running late", "run"))
	assert.False(t, containsWord("rerun it", "run"))
}
