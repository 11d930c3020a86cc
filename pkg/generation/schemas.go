// Package generation implements the workflow generation, validation, and
// auto-repair pipeline: prompt in, structurally guaranteed execution graph
// out.
package generation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// JSON Schemas guarding everything parsed out of completion-provider
// responses. A payload that fails its schema is treated exactly like a
// parse failure: the stage falls back to its deterministic path.

const requirementsSchema = `{
	"type": "object",
	"required": ["primaryGoal"],
	"properties": {
		"primaryGoal": {"type": "string", "minLength": 1},
		"keySteps":    {"type": "array", "items": {"type": "string"}},
		"inputs":      {"type": "array", "items": {"type": "string"}},
		"outputs":     {"type": "array", "items": {"type": "string"}},
		"constraints": {"type": "array", "items": {"type": "string"}},
		"complexity":  {"type": "string", "enum": ["simple", "medium", "complex"]},
		"urls":        {"type": "array", "items": {"type": "string"}},
		"apis":        {"type": "array", "items": {"type": "string"}},
		"credentials": {"type": "array", "items": {"type": "string"}},
		"schedules":   {"type": "array", "items": {"type": "string"}},
		"platforms":   {"type": "array", "items": {"type": "string"}}
	}
}`

const structureSchema = `{
	"type": "object",
	"required": ["trigger", "steps"],
	"properties": {
		"trigger": {"type": "string", "minLength": 1},
		"steps": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["type"],
				"properties": {
					"type":        {"type": "string", "minLength": 1},
					"description": {"type": "string"}
				}
			}
		},
		"outputs": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name":        {"type": "string", "minLength": 1},
					"type":        {"type": "string"},
					"description": {"type": "string"},
					"required":    {"type": "boolean"},
					"format":      {"type": "string"}
				}
			}
		}
	}
}`

func checkSchema(schema string, document any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed to run: %w", err)
	}

	if !result.Valid() {
		return fmt.Errorf("payload does not match schema: %v", result.Errors())
	}

	return nil
}
