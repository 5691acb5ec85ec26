// Package response builds a minimal node/edge view of the triple graph for
// visualization clients, omitting fields a graph-rendering UI never reads.
package response

import (
	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

// SlimGraph is a minimal node/edge graph suitable for rendering.
type SlimGraph struct {
	Nodes map[string]SlimNode `json:"nodes"`
	Edges []SlimEdge          `json:"edges"`
}

// SlimNode carries only the fields a graph view needs per entity name.
type SlimNode struct {
	Label string `json:"label"`
}

// SlimEdge carries only the fields a graph view needs per triple.
type SlimEdge struct {
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Type       string   `json:"type"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// FromTriples builds a SlimGraph from a set of triples, deriving nodes from
// the distinct subjects and objects encountered.
func FromTriples(triples []store.Triple) *SlimGraph {
	sg := &SlimGraph{
		Nodes: make(map[string]SlimNode, len(triples)*2),
		Edges: make([]SlimEdge, 0, len(triples)),
	}
	for _, t := range triples {
		if _, ok := sg.Nodes[t.Subject]; !ok {
			sg.Nodes[t.Subject] = SlimNode{Label: t.Subject}
		}
		if _, ok := sg.Nodes[t.Object]; !ok {
			sg.Nodes[t.Object] = SlimNode{Label: t.Object}
		}
		sg.Edges = append(sg.Edges, SlimEdge{
			Source:     t.Subject,
			Target:     t.Object,
			Type:       t.Predicate,
			Confidence: t.Confidence,
		})
	}
	return sg
}
