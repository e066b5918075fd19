// Package coauthor derives a co-authorship network from a publication list.
//
// Nodes are authors keyed by name; edges join every pair of authors that share at
// least one publication and are weighted by the number of publications they share.
package coauthor

import (
	"github.com/matsen/labsite/internal/publication"
)

// Node is an author in the co-authorship graph.
type Node struct {
	Name             string `json:"name"`
	Affiliation      string `json:"affiliation,omitempty"`
	PublicationCount int    `json:"publication_count"`
	Highlighted      bool   `json:"highlighted"`
}

// Edge links two co-authors. Source sorts before Target, so a pair has exactly one edge
// no matter which order the names appear in on a paper.
type Edge struct {
	Source       string                    `json:"source"`
	Target       string                    `json:"target"`
	Weight       int                       `json:"weight"`
	Publications []publication.Publication `json:"publications"`
}

// Graph is the full co-authorship network.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Stats summarizes a graph.
type Stats struct {
	Nodes     int `json:"nodes"`
	Edges     int `json:"edges"`
	MaxWeight int `json:"max_weight"`
}

// IsEmpty returns true if the graph has no nodes.
func (g Graph) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// Node returns the node for an author name.
func (g Graph) Node(name string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge between two authors, in either order.
func (g Graph) Edge(a, b string) (Edge, bool) {
	source, target := orderPair(a, b)
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			return e, true
		}
	}
	return Edge{}, false
}

// Highlighted returns the first highlighted author, if any.
func (g Graph) Highlighted() (Node, bool) {
	for _, n := range g.Nodes {
		if n.Highlighted {
			return n, true
		}
	}
	return Node{}, false
}

// Stats returns node and edge counts and the heaviest edge weight.
func (g Graph) Stats() Stats {
	s := Stats{Nodes: len(g.Nodes), Edges: len(g.Edges)}
	for _, e := range g.Edges {
		if e.Weight > s.MaxWeight {
			s.MaxWeight = e.Weight
		}
	}
	return s
}
