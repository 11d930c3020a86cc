package generation

import (
	"fmt"
	"log/slog"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/log"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/google/uuid"
)

// maxRepairIterations bounds the validate-fix loop. Three passes are
// enough for any fix cascade the engine can produce (a new trigger can
// expose an orphan, which can expose nothing further).
const maxRepairIterations = 3

// Repairer drives the bounded auto-repair loop. Each iteration works on a
// fresh copy of the previous snapshot; the input workflow is never
// mutated and unfixable errors are carried through untouched.
type Repairer struct {
	validator    *Validator
	configurator *Configurator
	logger       *slog.Logger
}

// RepairOutcome is the result of one repair run.
type RepairOutcome struct {
	Workflow   *models.Workflow
	Result     models.ValidationResult
	Fixes      []models.Fix
	Iterations int
}

// NewRepairer creates a repair engine sharing the given validator and
// configurator.
func NewRepairer(validator *Validator, configurator *Configurator) *Repairer {
	return &Repairer{
		validator:    validator,
		configurator: configurator,
		logger:       log.WithModule("repairer"),
	}
}

// Repair validates and fixes the workflow until it is clean, no progress
// can be made, or the iteration bound is hit. The returned workflow is
// always a copy of the input.
func (r *Repairer) Repair(workflow *models.Workflow) RepairOutcome {
	current := workflow.Clone()
	applied := []models.Fix{}

	result := r.validator.Validate(current)
	iterations := 0

	for iterations < maxRepairIterations {
		fixable := result.FixableErrors()
		if len(fixable) == 0 {
			break
		}

		iterations++

		next := current.Clone()
		fixes := r.applyFixes(next, fixable)

		if len(fixes) == 0 {
			r.logger.Warn("repair made no progress", "iteration", iterations, "fixable", len(fixable))

			break
		}

		applied = append(applied, fixes...)
		current = next
		result = r.validator.Validate(current)
	}

	result.AppliedFixes = applied

	return RepairOutcome{
		Workflow:   current,
		Result:     result,
		Fixes:      applied,
		Iterations: iterations,
	}
}

// applyFixes mutates the snapshot in place, one fix per error. Trigger
// surplus is handled once per pass regardless of how many errors report it.
func (r *Repairer) applyFixes(workflow *models.Workflow, errors []models.ValidationError) []models.Fix {
	fixes := []models.Fix{}
	triggersTrimmed := false

	for _, validationError := range errors {
		switch validationError.Type {
		case models.ValidationMissingTrigger:
			if fix, ok := r.addManualTrigger(workflow); ok {
				fixes = append(fixes, fix)
			}
		case models.ValidationMultipleTriggers:
			if triggersTrimmed {
				continue
			}

			triggersTrimmed = true

			if fix, ok := r.removeExtraTriggers(workflow); ok {
				fixes = append(fixes, fix)
			}
		case models.ValidationOrphanedNode:
			if fix, ok := r.connectOrphan(workflow, validationError.NodeID); ok {
				fixes = append(fixes, fix)
			}
		case models.ValidationMissingRequiredField:
			if fix, ok := r.fillField(workflow, validationError.NodeID, validationError.Field); ok {
				fixes = append(fixes, fix)
			}
		case models.ValidationDanglingEdge:
			if fix, ok := removeEdge(workflow, validationError.EdgeID); ok {
				fixes = append(fixes, fix)
			}
		}
	}

	return fixes
}

// addManualTrigger prepends a manual trigger and wires it to the first
// existing node, when any exists.
func (r *Repairer) addManualTrigger(workflow *models.Workflow) (models.Fix, bool) {
	trigger := &models.WorkflowNode{
		ID:       uuid.New().String(),
		Type:     catalogue.NodeTypeTriggerManual,
		Position: models.Position{X: layoutStartX - layoutSpacing, Y: layoutRowY},
		Data: models.NodeData{
			Label:    "Manual Trigger",
			Type:     catalogue.NodeTypeTriggerManual,
			Category: models.CategoryTypeTrigger,
			Config:   map[string]any{},
		},
	}

	var first *models.WorkflowNode
	if len(workflow.Nodes) > 0 {
		first = workflow.Nodes[0]
	}

	workflow.Nodes = append([]*models.WorkflowNode{trigger}, workflow.Nodes...)

	if first != nil {
		workflow.Edges = append(workflow.Edges, &models.WorkflowEdge{
			ID:     uuid.New().String(),
			Source: trigger.ID,
			Target: first.ID,
			Type:   models.EdgeTypeDefault,
		})
	}

	return models.Fix{
		Type:        models.FixAddTrigger,
		Description: "added a manual trigger as the workflow entry point",
		NodeID:      trigger.ID,
	}, true
}

// removeExtraTriggers keeps the first trigger in node order and drops the
// rest together with every edge touching a removed node.
func (r *Repairer) removeExtraTriggers(workflow *models.Workflow) (models.Fix, bool) {
	removed := map[string]bool{}
	kept := make([]*models.WorkflowNode, 0, len(workflow.Nodes))
	triggerSeen := false

	for _, node := range workflow.Nodes {
		if node.IsTriggerNode() {
			if triggerSeen {
				removed[node.ID] = true

				continue
			}

			triggerSeen = true
		}

		kept = append(kept, node)
	}

	if len(removed) == 0 {
		return models.Fix{}, false
	}

	workflow.Nodes = kept

	edges := make([]*models.WorkflowEdge, 0, len(workflow.Edges))
	for _, edge := range workflow.Edges {
		if removed[edge.Source] || removed[edge.Target] {
			continue
		}

		edges = append(edges, edge)
	}

	workflow.Edges = edges

	return models.Fix{
		Type:        models.FixRemoveDuplicates,
		Description: fmt.Sprintf("removed %d surplus trigger node(s), keeping the first", len(removed)),
	}, true
}

// connectOrphan wires the orphaned node from the trigger so it becomes
// reachable. The orphan's own outgoing edges are left alone.
func (r *Repairer) connectOrphan(workflow *models.Workflow, nodeID string) (models.Fix, bool) {
	orphan := workflow.NodeByID(nodeID)
	if orphan == nil {
		return models.Fix{}, false
	}

	triggers := workflow.TriggerNodes()
	if len(triggers) == 0 {
		return models.Fix{}, false
	}

	edge := &models.WorkflowEdge{
		ID:     uuid.New().String(),
		Source: triggers[0].ID,
		Target: orphan.ID,
		Type:   models.EdgeTypeDefault,
	}
	workflow.Edges = append(workflow.Edges, edge)

	return models.Fix{
		Type:        models.FixConnectOrphan,
		Description: fmt.Sprintf("connected orphaned node %q to the trigger", orphan.Data.Label),
		NodeID:      orphan.ID,
		EdgeID:      edge.ID,
	}, true
}

// fillField synthesizes a safe value for one missing required field using
// the same rules the configurator applies during initial generation.
func (r *Repairer) fillField(workflow *models.Workflow, nodeID, field string) (models.Fix, bool) {
	node := workflow.NodeByID(nodeID)
	if node == nil {
		return models.Fix{}, false
	}

	definition, known := r.configurator.catalogue.Lookup(node.Type)
	if !known {
		return models.Fix{}, false
	}

	requirements := &models.Requirements{}
	if workflow.Metadata != nil {
		requirements.PrimaryGoal = workflow.Metadata.Description
	}

	value, err := r.configurator.synthesize(node, definition, field, requirements)
	if err != nil || isPlaceholder(value) {
		return models.Fix{}, false
	}

	if node.Data.Config == nil {
		node.Data.Config = map[string]any{}
	}

	node.Data.Config[field] = value

	return models.Fix{
		Type:        models.FixFillField,
		Description: fmt.Sprintf("filled required field %q on node %q", field, node.Data.Label),
		NodeID:      node.ID,
		Field:       field,
		Changes:     map[string]any{field: value},
	}, true
}

func removeEdge(workflow *models.Workflow, edgeID string) (models.Fix, bool) {
	for i, edge := range workflow.Edges {
		if edge.ID == edgeID {
			workflow.Edges = append(workflow.Edges[:i], workflow.Edges[i+1:]...)

			return models.Fix{
				Type:        models.FixRemoveEdge,
				Description: "removed edge referencing a non-existent node",
				EdgeID:      edgeID,
			}, true
		}
	}

	return models.Fix{}, false
}
