// Package catalogue provides the static registry of known node types and
// their configuration schemas. A catalogue is constructed explicitly and
// passed into the generation pipeline; it is read-only and safe for
// unsynchronized concurrent reads.
package catalogue

import (
	"sort"

	"github.com/dukex/flowgen/pkg/models"
)

// FieldSpec describes one optional configuration field of a node type.
type FieldSpec struct {
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

// NodeDefinition is the catalogue entry for one node type.
type NodeDefinition struct {
	Type        string              `json:"type"`
	Label       string              `json:"label"`
	Description string              `json:"description"`
	Category    models.CategoryType `json:"category"`

	// RequiredFields must be present, non-empty, and placeholder-free in
	// every generated config for this type.
	RequiredFields []string             `json:"required_fields,omitempty"`
	OptionalFields map[string]FieldSpec `json:"optional_fields,omitempty"`

	// CommonPatterns are ready-made config fragments for typical uses of
	// the node, consulted by the configurator before synthesizing values.
	CommonPatterns []map[string]any `json:"common_patterns,omitempty"`

	// RequiresCredentials marks types that cannot run without an
	// authenticated connection. The validator reports their absence; the
	// repair engine never synthesizes credentials.
	RequiresCredentials bool `json:"requires_credentials,omitempty"`

	// MultiInput marks types that fan in from labeled ports; edges
	// targeting them carry a distinguishing type tag.
	MultiInput bool `json:"multi_input,omitempty"`

	// Keywords feed the planner's step-type scoring.
	Keywords []string `json:"keywords,omitempty"`
}

// Catalogue is an immutable lookup of node definitions keyed by type.
type Catalogue struct {
	definitions map[string]NodeDefinition
}

// New builds a catalogue from the given definitions. Later duplicates of a
// type override earlier ones.
func New(definitions ...NodeDefinition) *Catalogue {
	byType := make(map[string]NodeDefinition, len(definitions))

	for _, definition := range definitions {
		byType[definition.Type] = definition
	}

	return &Catalogue{definitions: byType}
}

// Lookup returns the definition for a node type. Absence is a valid
// outcome: unknown or custom node types simply skip catalogue-driven
// defaulting.
func (c *Catalogue) Lookup(nodeType string) (NodeDefinition, bool) {
	definition, ok := c.definitions[nodeType]

	return definition, ok
}

// Definitions returns all entries sorted by type for stable iteration.
func (c *Catalogue) Definitions() []NodeDefinition {
	definitions := make([]NodeDefinition, 0, len(c.definitions))

	for _, definition := range c.definitions {
		definitions = append(definitions, definition)
	}

	sort.Slice(definitions, func(i, j int) bool {
		return definitions[i].Type < definitions[j].Type
	})

	return definitions
}

// TriggerTypes returns the types in the trigger category, sorted.
func (c *Catalogue) TriggerTypes() []string {
	types := make([]string, 0, 4)

	for nodeType, definition := range c.definitions {
		if definition.Category == models.CategoryTypeTrigger {
			types = append(types, nodeType)
		}
	}

	sort.Strings(types)

	return types
}

// IsTriggerType reports whether the type is a registered trigger type.
func (c *Catalogue) IsTriggerType(nodeType string) bool {
	definition, ok := c.definitions[nodeType]

	return ok && definition.Category == models.CategoryTypeTrigger
}

// CredentialTypes returns the types flagged as requiring credentials.
func (c *Catalogue) CredentialTypes() []string {
	types := make([]string, 0, 4)

	for nodeType, definition := range c.definitions {
		if definition.RequiresCredentials {
			types = append(types, nodeType)
		}
	}

	sort.Strings(types)

	return types
}
