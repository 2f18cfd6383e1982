package layout

import (
	"github.com/blueprint-graph/compiler/internal/blueprint"
)

// Node is a resource placed on the canvas.
type Node struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	Label       string             `json:"label"`
	Category    blueprint.Category `json:"category"`
	Constraints []string           `json:"constraints,omitempty"`
	Tier        int                `json:"tier"`
	Rank        int                `json:"rank"`
	Order       int                `json:"order"`
	Position    Position           `json:"position"`
	Width       float64            `json:"width"`
	Height      float64            `json:"height"`
}

// Position holds the x,y coordinates of the top-left corner of a node.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Nodes returns one unplaced node per resource, in declaration order.
func Nodes(bp *blueprint.Blueprint) []Node {
	nodes := make([]Node, len(bp.Resources))
	for i := range bp.Resources {
		r := &bp.Resources[i]
		nodes[i] = Node{
			ID:          r.Name,
			Type:        r.Type,
			Label:       r.Label(),
			Category:    r.Category(),
			Constraints: r.Constraints(),
		}
	}
	return nodes
}

// TierOf returns the band a category is drawn in; lower is upstream.
func TierOf(c blueprint.Category) int {
	switch c {
	case blueprint.CategoryNetwork:
		return 0
	case blueprint.CategorySecurity:
		return 1
	case blueprint.CategoryStorage:
		return 3
	default:
		return 2
	}
}
