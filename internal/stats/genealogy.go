package stats

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"gpsymreg/internal/model"
)

type genealogyNode struct {
	id    int64
	dotID string
	label string
}

func (n genealogyNode) ID() int64 {
	return n.id
}

func (n genealogyNode) DOTID() string {
	return strconv.Quote(n.dotID)
}

func (n genealogyNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: strconv.Quote(n.label)}}
}

// GenealogyDOT renders the lineage log as a DOT digraph: one node per
// individual labelled with its generation and producing operation, one
// edge per parent link. Plotting collaborators consume the output
// read-only.
func GenealogyDOT(name string, lineage []model.LineageRecord) ([]byte, error) {
	g := simple.NewDirectedGraph()

	nodes := make(map[string]genealogyNode, len(lineage))
	next := int64(0)
	ensure := func(individualID, label string) genealogyNode {
		if node, ok := nodes[individualID]; ok {
			return node
		}
		node := genealogyNode{id: next, dotID: individualID, label: label}
		next++
		nodes[individualID] = node
		g.AddNode(node)
		return node
	}

	for _, record := range lineage {
		label := fmt.Sprintf("g%d %s (size %d)", record.Generation, record.Operation, record.Size)
		child := ensure(record.IndividualID, label)
		for _, parentID := range record.ParentIDs {
			if parentID == record.IndividualID {
				// Elite clones keep their ID; a self-edge adds nothing.
				continue
			}
			parent := ensure(parentID, parentID[:min(8, len(parentID))])
			g.SetEdge(g.NewEdge(parent, child))
		}
	}

	return dot.Marshal(g, name, "", "  ")
}
