package generation

import (
	"strings"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/google/uuid"
)

// Layout constants. Positions are presentation only.
const (
	layoutStartX  = 100
	layoutSpacing = 280
	layoutRowY    = 200
)

const maxLabelLength = 35

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "to": true, "of": true, "for": true,
	"and": true, "or": true, "in": true, "on": true, "with": true, "from": true,
	"that": true, "this": true, "is": true, "be": true, "will": true,
	"should": true, "it": true, "as": true, "by": true, "at": true,
	"then": true, "me": true, "my": true, "our": true, "your": true,
}

func isStopWord(word string) bool {
	return stopWords[word]
}

// Selector instantiates an abstract structure into concrete, positioned
// workflow nodes with fresh unique ids. Deterministic apart from id
// generation; never fails.
type Selector struct {
	catalogue *catalogue.Catalogue
}

// NewSelector creates a node selector over the given catalogue.
func NewSelector(cat *catalogue.Catalogue) *Selector {
	return &Selector{catalogue: cat}
}

// Select emits one trigger node, one node per planned step, and one node
// per planned output, in that order, laid out left to right.
func (s *Selector) Select(structure *models.GenerationStructure) []*models.WorkflowNode {
	nodes := make([]*models.WorkflowNode, 0, 1+len(structure.Steps)+len(structure.Outputs))
	x := layoutStartX

	triggerType := structure.Trigger
	if triggerType == "" {
		triggerType = catalogue.NodeTypeTriggerManual
	}

	nodes = append(nodes, s.newNode(triggerType, "", x))
	x += layoutSpacing

	for _, step := range structure.Steps {
		nodes = append(nodes, s.newNode(step.Type, step.Description, x))
		x += layoutSpacing
	}

	for _, output := range structure.Outputs {
		description := output.Description
		if description == "" {
			description = output.Name
		}

		nodes = append(nodes, s.newNode(catalogue.NodeTypeOutput, description, x))
		x += layoutSpacing
	}

	return nodes
}

func (s *Selector) newNode(nodeType, description string, x int) *models.WorkflowNode {
	definition, known := s.catalogue.Lookup(nodeType)

	category := definition.Category
	if !known {
		category = models.CategoryTypeAction
	}

	label := deriveLabel(description)
	if label == "" {
		if known {
			label = definition.Label
		} else {
			label = titleCaseType(nodeType)
		}
	}

	return &models.WorkflowNode{
		ID:       uuid.New().String(),
		Type:     nodeType,
		Position: models.Position{X: x, Y: layoutRowY},
		Data: models.NodeData{
			Label:    label,
			Type:     nodeType,
			Category: category,
			Config:   map[string]any{},
		},
	}
}

// deriveLabel distills a short human label from a step or output
// description: decoration stripped, stop words dropped, first few
// meaningful words kept, truncated and capitalized. Empty when the
// description carries no usable words.
func deriveLabel(description string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(description), "-*#0123456789. \t")
	if trimmed == "" {
		return ""
	}

	kept := make([]string, 0, 3)

	for _, word := range strings.Fields(trimmed) {
		cleaned := strings.Trim(strings.ToLower(word), ".,:;!?\"'()")
		if cleaned == "" || isStopWord(cleaned) {
			continue
		}

		kept = append(kept, capitalize(cleaned))
		if len(kept) == 3 {
			break
		}
	}

	label := strings.Join(kept, " ")
	if len(label) > maxLabelLength {
		label = strings.TrimSpace(label[:maxLabelLength])
	}

	return label
}

func capitalize(word string) string {
	if word == "" {
		return word
	}

	return strings.ToUpper(word[:1]) + word[1:]
}

// titleCaseType turns a type tag like "http_request" or "trigger:webhook"
// into a display label.
func titleCaseType(nodeType string) string {
	cleaned := strings.NewReplacer(":", " ", "_", " ", "-", " ").Replace(nodeType)

	words := strings.Fields(cleaned)
	for i, word := range words {
		words[i] = capitalize(word)
	}

	return strings.Join(words, " ")
}
