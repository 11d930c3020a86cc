package generation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/template"
	"github.com/robfig/cron/v3"
)

// Validator checks an assembled workflow graph against structural and
// per-node-type invariants. Pure function of the graph: no side effects,
// safe to re-run, all checks independent (never short-circuited).
type Validator struct {
	catalogue *catalogue.Catalogue
	cron      cron.Parser
}

// NewValidator creates a graph validator over the given catalogue.
func NewValidator(cat *catalogue.Catalogue) *Validator {
	return &Validator{
		catalogue: cat,
		cron:      cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
	}
}

// Validate runs every check and aggregates errors and warnings. The
// workflow is valid iff no remaining error is critical or high severity.
func (v *Validator) Validate(workflow *models.Workflow) models.ValidationResult {
	result := models.ValidationResult{
		Errors:   []models.ValidationError{},
		Warnings: []models.ValidationWarning{},
	}

	v.checkUniqueIDs(workflow, &result)
	v.checkEdgeReferences(workflow, &result)
	v.checkTriggerCardinality(workflow, &result)
	v.checkReachability(workflow, &result)
	v.checkCycles(workflow, &result)
	v.checkRequiredFields(workflow, &result)
	v.checkURLs(workflow, &result)
	v.checkExpressions(workflow, &result)
	v.checkCredentials(workflow, &result)
	v.collectWarnings(workflow, &result)

	result.Valid = true

	for _, validationError := range result.Errors {
		if validationError.Severity == models.SeverityCritical || validationError.Severity == models.SeverityHigh {
			result.Valid = false

			break
		}
	}

	return result
}

func (v *Validator) checkUniqueIDs(workflow *models.Workflow, result *models.ValidationResult) {
	seenNodes := make(map[string]bool, len(workflow.Nodes))

	for _, node := range workflow.Nodes {
		if seenNodes[node.ID] {
			result.Errors = append(result.Errors, models.ValidationError{
				Type:     models.ValidationDuplicateID,
				Severity: models.SeverityCritical,
				Message:  fmt.Sprintf("node id %q appears more than once", node.ID),
				NodeID:   node.ID,
				Fixable:  false,
			})
		}

		seenNodes[node.ID] = true
	}

	seenEdges := make(map[string]bool, len(workflow.Edges))

	for _, edge := range workflow.Edges {
		if seenEdges[edge.ID] {
			result.Errors = append(result.Errors, models.ValidationError{
				Type:     models.ValidationDuplicateID,
				Severity: models.SeverityCritical,
				Message:  fmt.Sprintf("edge id %q appears more than once", edge.ID),
				EdgeID:   edge.ID,
				Fixable:  false,
			})
		}

		seenEdges[edge.ID] = true
	}
}

func (v *Validator) checkEdgeReferences(workflow *models.Workflow, result *models.ValidationResult) {
	nodeIDs := make(map[string]bool, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		nodeIDs[node.ID] = true
	}

	for _, edge := range workflow.Edges {
		if !nodeIDs[edge.Source] || !nodeIDs[edge.Target] {
			result.Errors = append(result.Errors, models.ValidationError{
				Type:         models.ValidationDanglingEdge,
				Severity:     models.SeverityHigh,
				Message:      fmt.Sprintf("edge %q references a non-existent node", edge.ID),
				EdgeID:       edge.ID,
				Fixable:      true,
				SuggestedFix: "remove the edge",
			})
		}
	}
}

func (v *Validator) checkTriggerCardinality(workflow *models.Workflow, result *models.ValidationResult) {
	triggers := workflow.TriggerNodes()

	switch {
	case len(triggers) == 0:
		result.Errors = append(result.Errors, models.ValidationError{
			Type:         models.ValidationMissingTrigger,
			Severity:     models.SeverityCritical,
			Message:      "workflow has no trigger node",
			Fixable:      true,
			SuggestedFix: "add a manual trigger and connect it to the first node",
		})
	case len(triggers) > 1:
		for _, extra := range triggers[1:] {
			result.Errors = append(result.Errors, models.ValidationError{
				Type:         models.ValidationMultipleTriggers,
				Severity:     models.SeverityCritical,
				Message:      fmt.Sprintf("workflow has %d trigger nodes; only one is allowed", len(triggers)),
				NodeID:       extra.ID,
				Fixable:      true,
				SuggestedFix: "keep the first trigger and remove the rest",
			})
		}
	}
}

func (v *Validator) checkReachability(workflow *models.Workflow, result *models.ValidationResult) {
	triggers := workflow.TriggerNodes()
	if len(triggers) == 0 {
		return
	}

	reached := make(map[string]bool, len(workflow.Nodes))

	for _, trigger := range triggers {
		v.traverse(trigger.ID, workflow, reached)
	}

	for _, node := range workflow.Nodes {
		if node.IsTriggerNode() || reached[node.ID] {
			continue
		}

		result.Errors = append(result.Errors, models.ValidationError{
			Type:         models.ValidationOrphanedNode,
			Severity:     models.SeverityHigh,
			Message:      fmt.Sprintf("node %q (%s) is not reachable from the trigger", node.Data.Label, node.ID),
			NodeID:       node.ID,
			Fixable:      true,
			SuggestedFix: "connect the node to the graph",
		})
	}
}

func (v *Validator) traverse(nodeID string, workflow *models.Workflow, reached map[string]bool) {
	if reached[nodeID] {
		return
	}

	reached[nodeID] = true

	for _, edge := range workflow.Edges {
		if edge.Source == nodeID {
			v.traverse(edge.Target, workflow, reached)
		}
	}
}

// checkCycles runs a DFS with a recursion stack. Cycles require semantic
// judgment to resolve, so they are never marked fixable.
func (v *Validator) checkCycles(workflow *models.Workflow, result *models.ValidationResult) {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)

	state := make(map[string]int, len(workflow.Nodes))
	reported := make(map[string]bool)

	var visit func(nodeID string, path []string)

	visit = func(nodeID string, path []string) {
		state[nodeID] = inStack
		path = append(path, nodeID)

		for _, edge := range workflow.Edges {
			if edge.Source != nodeID {
				continue
			}

			switch state[edge.Target] {
			case inStack:
				if !reported[edge.Target] {
					reported[edge.Target] = true

					result.Errors = append(result.Errors, models.ValidationError{
						Type:     models.ValidationCircularDependency,
						Severity: models.SeverityCritical,
						Message:  "circular dependency: " + cycleMessage(path, edge.Target),
						NodeID:   edge.Target,
						Fixable:  false,
					})
				}
			case unvisited:
				visit(edge.Target, path)
			}
		}

		state[nodeID] = done
	}

	for _, node := range workflow.Nodes {
		if state[node.ID] == unvisited {
			visit(node.ID, nil)
		}
	}
}

func cycleMessage(path []string, repeated string) string {
	start := 0

	for i, nodeID := range path {
		if nodeID == repeated {
			start = i

			break
		}
	}

	return strings.Join(append(path[start:], repeated), " -> ")
}

func (v *Validator) checkRequiredFields(workflow *models.Workflow, result *models.ValidationResult) {
	for _, node := range workflow.Nodes {
		definition, known := v.catalogue.Lookup(node.Type)
		if !known {
			continue
		}

		for _, field := range definition.RequiredFields {
			if isPlaceholder(node.Data.Config[field]) {
				result.Errors = append(result.Errors, models.ValidationError{
					Type:         models.ValidationMissingRequiredField,
					Severity:     models.SeverityHigh,
					Message:      fmt.Sprintf("node %q is missing required field %q", node.Data.Label, field),
					NodeID:       node.ID,
					Field:        field,
					Fixable:      true,
					SuggestedFix: "fill the field with a safe default",
				})
			}
		}
	}
}

// checkURLs validates URL-bearing fields. Template expressions are
// accepted without parsing; a malformed literal URL is not fixable since
// a wrong URL cannot be safely guessed.
func (v *Validator) checkURLs(workflow *models.Workflow, result *models.ValidationResult) {
	for _, node := range workflow.Nodes {
		for field, value := range node.Data.Config {
			if !isURLField(field) {
				continue
			}

			text, ok := value.(string)
			if !ok || text == "" {
				continue
			}

			if template.IsExpression(text) {
				continue
			}

			parsed, err := url.Parse(text)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				result.Errors = append(result.Errors, models.ValidationError{
					Type:     models.ValidationInvalidURL,
					Severity: models.SeverityHigh,
					Message:  fmt.Sprintf("node %q has a malformed URL in field %q: %s", node.Data.Label, field, text),
					NodeID:   node.ID,
					Field:    field,
					Fixable:  false,
				})
			}
		}
	}
}

// checkExpressions verifies template-expression balance and, for schedule
// triggers, cron well-formedness.
func (v *Validator) checkExpressions(workflow *models.Workflow, result *models.ValidationResult) {
	for _, node := range workflow.Nodes {
		for field, value := range node.Data.Config {
			text, ok := value.(string)
			if !ok {
				continue
			}

			if (strings.Contains(text, "{{") || strings.Contains(text, "}}")) && !template.Balanced(text) {
				result.Errors = append(result.Errors, models.ValidationError{
					Type:     models.ValidationInvalidExpression,
					Severity: models.SeverityMedium,
					Message:  fmt.Sprintf("node %q has an unbalanced expression in field %q", node.Data.Label, field),
					NodeID:   node.ID,
					Field:    field,
					Fixable:  false,
				})
			}
		}

		if node.Type == catalogue.NodeTypeTriggerSchedule {
			if expression, ok := node.Data.Config["cron"].(string); ok && expression != "" && !template.IsExpression(expression) {
				if _, err := v.cron.Parse(expression); err != nil {
					result.Errors = append(result.Errors, models.ValidationError{
						Type:     models.ValidationInvalidExpression,
						Severity: models.SeverityMedium,
						Message:  fmt.Sprintf("schedule trigger has an invalid cron expression: %s", expression),
						NodeID:   node.ID,
						Field:    "cron",
						Fixable:  false,
					})
				}
			}
		}
	}
}

// checkCredentials reports credential-requiring nodes with no populated
// credential-like field. Credentials are never synthesized by repair, so
// these are not fixable.
func (v *Validator) checkCredentials(workflow *models.Workflow, result *models.ValidationResult) {
	for _, node := range workflow.Nodes {
		definition, known := v.catalogue.Lookup(node.Type)
		if !known || !definition.RequiresCredentials {
			continue
		}

		populated := false

		for field, value := range node.Data.Config {
			if isSecretField(field) && !isPlaceholder(value) {
				populated = true

				break
			}
		}

		if !populated {
			result.Errors = append(result.Errors, models.ValidationError{
				Type:     models.ValidationMissingCredentials,
				Severity: models.SeverityHigh,
				Message:  fmt.Sprintf("node %q (%s) requires credentials but none are configured", node.Data.Label, node.Type),
				NodeID:   node.ID,
				Fixable:  false,
			})
		}
	}
}

// collectWarnings adds non-blocking business-logic observations.
func (v *Validator) collectWarnings(workflow *models.Workflow, result *models.ValidationResult) {
	var (
		hasHTTP      bool
		hasCondition bool
		hasDelay     bool
		hasFilter    bool
		triggerType  string
	)

	for _, node := range workflow.Nodes {
		switch node.Type {
		case catalogue.NodeTypeHTTPRequest:
			hasHTTP = true
		case catalogue.NodeTypeCondition:
			hasCondition = true
		case catalogue.NodeTypeDelay:
			hasDelay = true
		case catalogue.NodeTypeFilter:
			hasFilter = true
		}

		if node.IsTriggerNode() {
			triggerType = node.Type
		}
	}

	if hasHTTP && !hasCondition {
		result.Warnings = append(result.Warnings, models.ValidationWarning{
			Type:    "no_error_handling",
			Message: "HTTP calls have no condition node checking their outcome",
		})
	}

	if hasHTTP && triggerType == catalogue.NodeTypeTriggerSchedule && !hasDelay {
		result.Warnings = append(result.Warnings, models.ValidationWarning{
			Type:    "no_rate_limiting",
			Message: "scheduled workflow calls HTTP APIs without a delay node to pace requests",
		})
	}

	if (triggerType == catalogue.NodeTypeTriggerWebhook || triggerType == catalogue.NodeTypeTriggerForm) && !hasCondition && !hasFilter {
		result.Warnings = append(result.Warnings, models.ValidationWarning{
			Type:    "no_input_validation",
			Message: "user-supplied input flows through the workflow without validation logic",
		})
	}

	if len(workflow.Nodes) > 8 {
		result.Warnings = append(result.Warnings, models.ValidationWarning{
			Type:    "large_workflow",
			Message: "large workflows benefit from intermediate output nodes for observability",
		})
	}
}
