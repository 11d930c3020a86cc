package provider

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when no JSON object could be located in a
// completion response.
var ErrNoJSON = errors.New("no JSON object found in response")

// ExtractJSON locates and decodes the outermost JSON object in free-form
// model output. Markdown code fences are stripped and text surrounding the
// first '{' and last '}' is ignored, since models routinely wrap their
// answer in prose.
func ExtractJSON(raw string, target any) error {
	cleaned := stripCodeFences(raw)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")

	if start < 0 || end < start {
		return ErrNoJSON
	}

	return json.Unmarshal([]byte(cleaned[start:end+1]), target)
}

func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if !strings.Contains(trimmed, "```") {
		return trimmed
	}

	var builder strings.Builder

	for line := range strings.Lines(trimmed) {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}

		builder.WriteString(line)
	}

	return builder.String()
}
