package generation

import (
	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/google/uuid"
)

// ConnectionBuilder wires nodes into edges. Default behavior is a strict
// linear chain in node order; no error paths.
type ConnectionBuilder struct {
	catalogue *catalogue.Catalogue
}

// NewConnectionBuilder creates a connection builder over the given
// catalogue.
func NewConnectionBuilder(cat *catalogue.Catalogue) *ConnectionBuilder {
	return &ConnectionBuilder{catalogue: cat}
}

// Connect chains adjacent nodes with freshly identified edges. Targets
// that fan in from labeled ports get the distinguishing edge type tag.
// Empty and singleton node lists yield zero edges.
func (b *ConnectionBuilder) Connect(nodes []*models.WorkflowNode) []*models.WorkflowEdge {
	if len(nodes) < 2 {
		return []*models.WorkflowEdge{}
	}

	edges := make([]*models.WorkflowEdge, 0, len(nodes)-1)

	for i := 0; i < len(nodes)-1; i++ {
		target := nodes[i+1]

		edgeType := models.EdgeTypeDefault
		if definition, ok := b.catalogue.Lookup(target.Type); ok && definition.MultiInput {
			edgeType = models.EdgeTypePort
		}

		edges = append(edges, &models.WorkflowEdge{
			ID:     uuid.New().String(),
			Source: nodes[i].ID,
			Target: target.ID,
			Type:   edgeType,
		})
	}

	return edges
}
