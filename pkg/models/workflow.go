// Package models defines the core domain models for AI-assisted workflow generation.
package models

import "time"

// CategoryType represents the category of a node within the catalogue.
type CategoryType string

const (
	CategoryTypeTrigger     CategoryType = "trigger"     // Entry points (manual, schedule, webhook, form)
	CategoryTypeAction      CategoryType = "action"      // Regular action nodes (http, database, slack, etc.)
	CategoryTypeAI          CategoryType = "ai"          // AI model invocations (chat, agent)
	CategoryTypeLogic       CategoryType = "logic"       // Flow control (condition, filter, delay, set)
	CategoryTypeOutput      CategoryType = "output"      // Terminal nodes emitting results
	CategoryTypeIntegration CategoryType = "integration" // Third-party service integrations
)

// Edge type tags. Most edges use the default tag; targets that fan in from
// labeled ports (agent-style nodes) get a distinguishing tag.
const (
	EdgeTypeDefault = "default"
	EdgeTypePort    = "port"
)

// Position is the layout coordinate of a node on the canvas. Presentation
// only, never semantically load-bearing.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NodeData carries the display and configuration payload of a node. The
// type/category duplication with the outer node is part of the artifact
// wire contract and must be preserved.
type NodeData struct {
	Label    string         `json:"label"    validate:"required"`
	Type     string         `json:"type"     validate:"required"`
	Category CategoryType   `json:"category"`
	Config   map[string]any `json:"config"`
}

// WorkflowNode represents a vertex in the generated execution graph. The ID
// is assigned once at creation and never reused; Config is the only part
// mutated after creation (by the configurator and the repair engine).
type WorkflowNode struct {
	ID       string   `json:"id"       validate:"required"`
	Type     string   `json:"type"     validate:"required"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// IsTriggerNode reports whether the node belongs to the trigger category.
func (n *WorkflowNode) IsTriggerNode() bool {
	return n.Data.Category == CategoryTypeTrigger
}

// CloneConfig returns a shallow copy of the node with a freshly copied
// config map, so repair passes can rewrite configuration without mutating
// the snapshot they were handed.
func (n *WorkflowNode) CloneConfig() *WorkflowNode {
	clone := *n
	clone.Data.Config = make(map[string]any, len(n.Data.Config))

	for k, v := range n.Data.Config {
		clone.Data.Config[k] = v
	}

	return &clone
}

// WorkflowEdge is a directed arc between two nodes. Source and Target must
// reference existing node ids whenever the graph is accepted as valid.
type WorkflowEdge struct {
	ID     string `json:"id"     validate:"required"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Type   string `json:"type,omitempty"`
}

// Workflow is the emitted artifact: nodes, edges, and generation metadata.
// It is a value type; regeneration always produces a new Workflow.
type Workflow struct {
	Nodes    []*WorkflowNode   `json:"nodes"`
	Edges    []*WorkflowEdge   `json:"edges"`
	Metadata *WorkflowMetadata `json:"metadata,omitempty"`
}

// WorkflowMetadata describes how and when the artifact was produced.
type WorkflowMetadata struct {
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
	Generator   string    `json:"generator,omitempty"`
	Complexity  string    `json:"complexity,omitempty"`
}

// NodeByID returns the node with the given id, or nil when absent.
func (w *Workflow) NodeByID(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// TriggerNodes returns the trigger-category nodes in original order.
func (w *Workflow) TriggerNodes() []*WorkflowNode {
	triggers := make([]*WorkflowNode, 0, 1)

	for _, node := range w.Nodes {
		if node.IsTriggerNode() {
			triggers = append(triggers, node)
		}
	}

	return triggers
}

// Clone produces a deep copy of the workflow. The repair loop folds over
// immutable snapshots, so every fix pass starts from a clone.
func (w *Workflow) Clone() *Workflow {
	clone := &Workflow{
		Nodes: make([]*WorkflowNode, 0, len(w.Nodes)),
		Edges: make([]*WorkflowEdge, 0, len(w.Edges)),
	}

	for _, node := range w.Nodes {
		clone.Nodes = append(clone.Nodes, node.CloneConfig())
	}

	for _, edge := range w.Edges {
		edgeCopy := *edge
		clone.Edges = append(clone.Edges, &edgeCopy)
	}

	if w.Metadata != nil {
		metaCopy := *w.Metadata
		clone.Metadata = &metaCopy
	}

	return clone
}
