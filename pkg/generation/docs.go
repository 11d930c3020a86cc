package generation

import (
	"fmt"
	"strings"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/template"
)

// Documenter renders markdown documentation and improvement suggestions
// for a generated workflow. Deterministic and side-effect free.
type Documenter struct {
	catalogue *catalogue.Catalogue
}

// NewDocumenter creates a documentation renderer over the given catalogue.
func NewDocumenter(cat *catalogue.Catalogue) *Documenter {
	return &Documenter{catalogue: cat}
}

// Document renders a markdown summary of the workflow: overview, trigger,
// step-by-step walkthrough in execution order, and required setup.
func (d *Documenter) Document(workflow *models.Workflow, requirements *models.Requirements) string {
	var builder strings.Builder

	title := "Workflow"
	if workflow.Metadata != nil && workflow.Metadata.Name != "" {
		title = workflow.Metadata.Name
	}

	builder.WriteString("# " + title + "\n\n")

	if requirements != nil && requirements.PrimaryGoal != "" {
		builder.WriteString(requirements.PrimaryGoal + "\n\n")
	}

	d.writeTriggerSection(&builder, workflow)
	d.writeStepsSection(&builder, workflow)
	d.writeSetupSection(&builder, workflow)

	return strings.TrimRight(builder.String(), "\n") + "\n"
}

func (d *Documenter) writeTriggerSection(builder *strings.Builder, workflow *models.Workflow) {
	triggers := workflow.TriggerNodes()
	if len(triggers) == 0 {
		return
	}

	builder.WriteString("## Trigger\n\n")

	trigger := triggers[0]
	if definition, ok := d.catalogue.Lookup(trigger.Type); ok {
		builder.WriteString(fmt.Sprintf("**%s**: %s\n", definition.Label, definition.Description))
	} else {
		builder.WriteString(fmt.Sprintf("**%s**\n", trigger.Data.Label))
	}

	if cron, ok := trigger.Data.Config["cron"].(string); ok && cron != "" {
		builder.WriteString(fmt.Sprintf("Schedule: `%s`\n", cron))
	}

	if path, ok := trigger.Data.Config["path"].(string); ok && path != "" {
		builder.WriteString(fmt.Sprintf("Endpoint: `%s`\n", path))
	}

	builder.WriteString("\n")
}

// writeStepsSection walks nodes in execution order starting at the
// trigger, falling back to declaration order when the graph is not a
// simple chain.
func (d *Documenter) writeStepsSection(builder *strings.Builder, workflow *models.Workflow) {
	ordered := executionOrder(workflow)
	if len(ordered) == 0 {
		return
	}

	builder.WriteString("## Steps\n\n")

	index := 1

	for _, node := range ordered {
		if node.IsTriggerNode() {
			continue
		}

		label := node.Data.Label
		description := ""

		if definition, ok := d.catalogue.Lookup(node.Type); ok {
			label = definition.Label
			description = definition.Description
		}

		if description != "" {
			builder.WriteString(fmt.Sprintf("%d. **%s** (%s): %s\n", index, label, node.Type, description))
		} else {
			builder.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", index, label, node.Type))
		}

		index++
	}

	builder.WriteString("\n")
}

func (d *Documenter) writeSetupSection(builder *strings.Builder, workflow *models.Workflow) {
	references := envReferences(workflow)
	if len(references) == 0 {
		return
	}

	builder.WriteString("## Required setup\n\n")
	builder.WriteString("Set these environment variables before running the workflow:\n\n")

	for _, reference := range references {
		builder.WriteString("- `" + reference + "`\n")
	}

	builder.WriteString("\n")
}

// Suggest proposes improvements derived from the validation warnings and
// the graph's shape. Suggestions never block; they ride along the result.
func (d *Documenter) Suggest(workflow *models.Workflow, result models.ValidationResult) []string {
	suggestions := make([]string, 0, len(result.Warnings))

	for _, warning := range result.Warnings {
		switch warning.Type {
		case "no_error_handling":
			suggestions = append(suggestions, "Add a condition node after HTTP calls to handle failed responses")
		case "no_rate_limiting":
			suggestions = append(suggestions, "Add a delay node between scheduled API calls to avoid rate limits")
		case "no_input_validation":
			suggestions = append(suggestions, "Validate incoming data with a filter or condition node before processing")
		case "large_workflow":
			suggestions = append(suggestions, "Split this workflow or add intermediate output nodes for easier debugging")
		default:
			suggestions = append(suggestions, warning.Message)
		}
	}

	for _, node := range workflow.Nodes {
		if node.Type == catalogue.NodeTypeAIChat || node.Type == catalogue.NodeTypeAIAgent {
			suggestions = append(suggestions, "Review the generated AI prompt and tighten it for your use case")

			break
		}
	}

	return suggestions
}

// RequiredCredentials lists the environment references the workflow
// expects, deduplicated in first-appearance order.
func RequiredCredentials(workflow *models.Workflow) []string {
	return envReferences(workflow)
}

func envReferences(workflow *models.Workflow) []string {
	seen := map[string]bool{}
	references := []string{}

	for _, node := range workflow.Nodes {
		for _, value := range node.Data.Config {
			text, ok := value.(string)
			if !ok || !template.IsEnvReference(text) {
				continue
			}

			key := template.EnvReferenceKey(text)
			if key == "" || seen[key] {
				continue
			}

			seen[key] = true
			references = append(references, key)
		}
	}

	return references
}

// executionOrder follows the edge chain from the trigger. Unreached nodes
// are appended in declaration order so nothing disappears from the docs.
func executionOrder(workflow *models.Workflow) []*models.WorkflowNode {
	ordered := make([]*models.WorkflowNode, 0, len(workflow.Nodes))
	visited := map[string]bool{}

	var follow func(node *models.WorkflowNode)

	follow = func(node *models.WorkflowNode) {
		if visited[node.ID] {
			return
		}

		visited[node.ID] = true
		ordered = append(ordered, node)

		for _, edge := range workflow.Edges {
			if edge.Source != node.ID {
				continue
			}

			if next := workflow.NodeByID(edge.Target); next != nil {
				follow(next)
			}
		}
	}

	for _, trigger := range workflow.TriggerNodes() {
		follow(trigger)
	}

	for _, node := range workflow.Nodes {
		if !visited[node.ID] {
			visited[node.ID] = true
			ordered = append(ordered, node)
		}
	}

	return ordered
}
