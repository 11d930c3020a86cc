package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	type payload struct {
		Goal  string   `json:"goal"`
		Steps []string `json:"steps"`
	}

	testCases := []struct {
		name string
		raw  string
		want payload
	}{
		{
			name: "bare object",
			raw:  `{"goal":"sync data","steps":["fetch","store"]}`,
			want: payload{Goal: "sync data", Steps: []string{"fetch", "store"}},
		},
		{
			name: "fenced markdown",
			raw:  "Here is the plan:\n```json\n{\"goal\":\"notify\",\"steps\":[\"post\"]}\n```\nDone.",
			want: payload{Goal: "notify", Steps: []string{"post"}},
		},
		{
			name: "surrounding prose",
			raw:  `Sure! {"goal":"report","steps":[]} hope that helps`,
			want: payload{Goal: "report", Steps: []string{}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got payload

			err := ExtractJSON(tc.raw, &got)
			require.NoError(t, err)
			assert.Equal(t, tc.want.Goal, got.Goal)
			assert.Equal(t, tc.want.Steps, got.Steps)
		})
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	var got map[string]any

	err := ExtractJSON("the model refused to answer", &got)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractJSON_MalformedObject(t *testing.T) {
	var got map[string]any

	err := ExtractJSON(`{"goal": , "steps"}`, &got)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoJSON)
}
