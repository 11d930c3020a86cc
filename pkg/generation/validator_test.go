package generation

import (
	"testing"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNode(id, nodeType string, category models.CategoryType, config map[string]any) *models.WorkflowNode {
	if config == nil {
		config = map[string]any{}
	}

	return &models.WorkflowNode{
		ID:   id,
		Type: nodeType,
		Data: models.NodeData{
			Label:    id,
			Type:     nodeType,
			Category: category,
			Config:   config,
		},
	}
}

func testEdge(id, source, target string) *models.WorkflowEdge {
	return &models.WorkflowEdge{ID: id, Source: source, Target: target, Type: models.EdgeTypeDefault}
}

func errorTypes(result models.ValidationResult) []models.ValidationErrorType {
	types := make([]models.ValidationErrorType, 0, len(result.Errors))
	for _, validationError := range result.Errors {
		types = append(types, validationError.Type)
	}

	return types
}

func TestValidatorMissingTrigger(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("a", catalogue.NodeTypeSet, models.CategoryTypeLogic, nil),
		},
		Edges: []*models.WorkflowEdge{},
	}

	result := v.Validate(workflow)

	assert.False(t, result.Valid)
	assert.Contains(t, errorTypes(result), models.ValidationMissingTrigger)
}

func TestValidatorMultipleTriggers(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("t1", catalogue.NodeTypeTriggerManual, models.CategoryTypeTrigger, nil),
			testNode("t2", catalogue.NodeTypeTriggerManual, models.CategoryTypeTrigger, nil),
			testNode("a", catalogue.NodeTypeSet, models.CategoryTypeLogic, nil),
		},
		Edges: []*models.WorkflowEdge{
			testEdge("e1", "t1", "a"),
			testEdge("e2", "t2", "a"),
		},
	}

	result := v.Validate(workflow)

	assert.False(t, result.Valid)
	assert.Contains(t, errorTypes(result), models.ValidationMultipleTriggers)
}

func TestValidatorOrphanedNode(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("t1", catalogue.NodeTypeTriggerManual, models.CategoryTypeTrigger, nil),
			testNode("a", catalogue.NodeTypeSet, models.CategoryTypeLogic, nil),
			testNode("island", catalogue.NodeTypeSet, models.CategoryTypeLogic, nil),
		},
		Edges: []*models.WorkflowEdge{
			testEdge("e1", "t1", "a"),
		},
	}

	result := v.Validate(workflow)

	require.False(t, result.Valid)

	found := false

	for _, validationError := range result.Errors {
		if validationError.Type == models.ValidationOrphanedNode {
			found = true

			assert.Equal(t, "island", validationError.NodeID)
			assert.True(t, validationError.Fixable)
		}
	}

	assert.True(t, found)
}

func TestValidatorCircularDependency(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("t1", catalogue.NodeTypeTriggerManual, models.CategoryTypeTrigger, nil),
			testNode("a", catalogue.NodeTypeSet, models.CategoryTypeLogic, nil),
			testNode("b", catalogue.NodeTypeSet, models.CategoryTypeLogic, nil),
		},
		Edges: []*models.WorkflowEdge{
			testEdge("e1", "t1", "a"),
			testEdge("e2", "a", "b"),
			testEdge("e3", "b", "a"),
		},
	}

	result := v.Validate(workflow)

	require.False(t, result.Valid)

	found := false

	for _, validationError := range result.Errors {
		if validationError.Type == models.ValidationCircularDependency {
			found = true

			assert.Equal(t, models.SeverityCritical, validationError.Severity)
			assert.False(t, validationError.Fixable)
		}
	}

	assert.True(t, found)
}

func TestValidatorDanglingEdge(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("t1", catalogue.NodeTypeTriggerManual, models.CategoryTypeTrigger, nil),
		},
		Edges: []*models.WorkflowEdge{
			testEdge("e1", "t1", "ghost"),
		},
	}

	result := v.Validate(workflow)

	assert.False(t, result.Valid)
	assert.Contains(t, errorTypes(result), models.ValidationDanglingEdge)
}

func TestValidatorDuplicateNodeID(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("t1", catalogue.NodeTypeTriggerManual, models.CategoryTypeTrigger, nil),
			testNode("dup", catalogue.NodeTypeSet, models.CategoryTypeLogic, nil),
			testNode("dup", catalogue.NodeTypeSet, models.CategoryTypeLogic, nil),
		},
		Edges: []*models.WorkflowEdge{
			testEdge("e1", "t1", "dup"),
		},
	}

	result := v.Validate(workflow)

	assert.False(t, result.Valid)
	assert.Contains(t, errorTypes(result), models.ValidationDuplicateID)
}

func TestValidatorMissingRequiredField(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	tests := []struct {
		name     string
		config   map[string]any
		expected bool
	}{
		{"empty url", map[string]any{"method": "GET"}, true},
		{"placeholder url", map[string]any{"url": "YOUR_URL_HERE", "method": "GET"}, true},
		{"literal url", map[string]any{"url": "https://api.example.com/v1", "method": "GET"}, false},
		{"expression url", map[string]any{"url": "{{input.url}}", "method": "GET"}, false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			workflow := &models.Workflow{
				Nodes: []*models.WorkflowNode{
					testNode("t1", catalogue.NodeTypeTriggerManual, models.CategoryTypeTrigger, nil),
					testNode("http", catalogue.NodeTypeHTTPRequest, models.CategoryTypeAction, testCase.config),
				},
				Edges: []*models.WorkflowEdge{
					testEdge("e1", "t1", "http"),
				},
			}

			result := v.Validate(workflow)

			if testCase.expected {
				assert.Contains(t, errorTypes(result), models.ValidationMissingRequiredField)
			} else {
				assert.NotContains(t, errorTypes(result), models.ValidationMissingRequiredField)
			}
		})
	}
}

func TestValidatorEnvReferenceSatisfiesRequiredField(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("t1", catalogue.NodeTypeTriggerManual, models.CategoryTypeTrigger, nil),
			testNode("db", catalogue.NodeTypeDatabaseQuery, models.CategoryTypeIntegration, map[string]any{
				"query":      "SELECT 1",
				"connection": "{{ENV.DATABASE_URL}}",
			}),
		},
		Edges: []*models.WorkflowEdge{
			testEdge("e1", "t1", "db"),
		},
	}

	result := v.Validate(workflow)

	assert.True(t, result.Valid, "errors: %v", result.Errors)
}

func TestValidatorInvalidURLNotFixable(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("t1", catalogue.NodeTypeTriggerManual, models.CategoryTypeTrigger, nil),
			testNode("http", catalogue.NodeTypeHTTPRequest, models.CategoryTypeAction, map[string]any{
				"url":    "not a real url",
				"method": "GET",
			}),
		},
		Edges: []*models.WorkflowEdge{
			testEdge("e1", "t1", "http"),
		},
	}

	result := v.Validate(workflow)

	require.False(t, result.Valid)

	found := false

	for _, validationError := range result.Errors {
		if validationError.Type == models.ValidationInvalidURL {
			found = true

			assert.False(t, validationError.Fixable)
		}
	}

	assert.True(t, found)
}

func TestValidatorUnbalancedExpressionIsMedium(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("t1", catalogue.NodeTypeTriggerManual, models.CategoryTypeTrigger, nil),
			testNode("tr", catalogue.NodeTypeTransform, models.CategoryTypeLogic, map[string]any{
				"expression": "{{input.items",
			}),
		},
		Edges: []*models.WorkflowEdge{
			testEdge("e1", "t1", "tr"),
		},
	}

	result := v.Validate(workflow)

	assert.Contains(t, errorTypes(result), models.ValidationInvalidExpression)
	// Medium severity alone never invalidates the workflow.
	assert.True(t, result.Valid)
}

func TestValidatorMissingCredentials(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("t1", catalogue.NodeTypeTriggerManual, models.CategoryTypeTrigger, nil),
			testNode("slack", catalogue.NodeTypeSlackMessage, models.CategoryTypeIntegration, map[string]any{
				"channel": "#alerts",
				"message": "done",
			}),
		},
		Edges: []*models.WorkflowEdge{
			testEdge("e1", "t1", "slack"),
		},
	}

	result := v.Validate(workflow)

	require.False(t, result.Valid)

	found := false

	for _, validationError := range result.Errors {
		if validationError.Type == models.ValidationMissingCredentials {
			found = true

			assert.False(t, validationError.Fixable)
		}
	}

	assert.True(t, found)
}

func TestValidatorInvalidCron(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("t1", catalogue.NodeTypeTriggerSchedule, models.CategoryTypeTrigger, map[string]any{
				"cron": "99 99 * * *",
			}),
			testNode("a", catalogue.NodeTypeSet, models.CategoryTypeLogic, nil),
		},
		Edges: []*models.WorkflowEdge{
			testEdge("e1", "t1", "a"),
		},
	}

	result := v.Validate(workflow)

	assert.Contains(t, errorTypes(result), models.ValidationInvalidExpression)
}

func TestValidatorWarnings(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("t1", catalogue.NodeTypeTriggerSchedule, models.CategoryTypeTrigger, map[string]any{
				"cron": "0 9 * * *",
			}),
			testNode("http", catalogue.NodeTypeHTTPRequest, models.CategoryTypeAction, map[string]any{
				"url":    "https://api.example.com/data",
				"method": "GET",
			}),
		},
		Edges: []*models.WorkflowEdge{
			testEdge("e1", "t1", "http"),
		},
	}

	result := v.Validate(workflow)

	require.True(t, result.Valid, "errors: %v", result.Errors)

	warningTypes := make([]string, 0, len(result.Warnings))
	for _, warning := range result.Warnings {
		warningTypes = append(warningTypes, warning.Type)
	}

	assert.Contains(t, warningTypes, "no_error_handling")
	assert.Contains(t, warningTypes, "no_rate_limiting")
}

func TestValidatorCleanWorkflow(t *testing.T) {
	t.Parallel()

	v := NewValidator(catalogue.Default())

	workflow := &models.Workflow{
		Nodes: []*models.WorkflowNode{
			testNode("t1", catalogue.NodeTypeTriggerManual, models.CategoryTypeTrigger, nil),
			testNode("a", catalogue.NodeTypeTransform, models.CategoryTypeLogic, map[string]any{
				"expression": "{{input}}",
			}),
			testNode("out", catalogue.NodeTypeOutput, models.CategoryTypeOutput, map[string]any{
				"name": "result",
			}),
		},
		Edges: []*models.WorkflowEdge{
			testEdge("e1", "t1", "a"),
			testEdge("e2", "a", "out"),
		},
	}

	result := v.Validate(workflow)

	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
}
