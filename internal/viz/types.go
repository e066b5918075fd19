// Package viz shapes the co-authorship graph for the vis-network widget and renders
// the HTML that mounts it.
package viz

import (
	"github.com/matsen/labsite/internal/coauthor"
)

// Shape values accepted by the widget for nodes.
const (
	ShapeDot    = "dot"
	ShapeCircle = "circle"
)

// UnknownGroup is the group of authors with no affiliation.
const UnknownGroup = "Unknown"

// Highlight palette for highlighted authors.
const (
	HighlightBorderColor     = "#B7410E"
	HighlightBackgroundColor = "#F9F5EA"
)

// Model is the widget-ready view of a co-authorship graph.
type Model struct {
	Graph coauthor.Graph `json:"-"`
	Nodes []Node         `json:"nodes"`
	Edges []Edge         `json:"edges"`
}

// Node is an author in the widget's node format.
type Node struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Value       int        `json:"value"` // Sizing: publication count
	Group       string     `json:"group"` // Affiliation
	Title       string     `json:"title"` // Hover text
	Shape       string     `json:"shape"`
	BorderWidth int        `json:"borderWidth"`
	Color       *NodeColor `json:"color,omitempty"`
}

// NodeColor overrides the group color for a node.
type NodeColor struct {
	Border     string     `json:"border"`
	Background string     `json:"background"`
	Highlight  ColorPair  `json:"highlight"`
	Hover      *ColorPair `json:"hover,omitempty"`
}

// ColorPair is a border/background color pair for a node state.
type ColorPair struct {
	Border     string `json:"border"`
	Background string `json:"background"`
}

// Edge is a co-authorship link in the widget's edge format.
type Edge struct {
	ID    string   `json:"id"`
	From  string   `json:"from"`
	To    string   `json:"to"`
	Value int      `json:"value"` // Sizing: shared publication count
	Title string   `json:"title"` // Hover text, also what gets copied on click
	Font  EdgeFont `json:"font"`
}

// EdgeFont enables multi-line labels on an edge.
type EdgeFont struct {
	Multi bool `json:"multi"`
}

// IsEmpty returns true if the model has no nodes.
func (m *Model) IsEmpty() bool {
	return m == nil || len(m.Nodes) == 0
}

// EdgeByID looks up an edge by its widget ID.
func (m *Model) EdgeByID(id string) (Edge, bool) {
	if m == nil {
		return Edge{}, false
	}
	for _, e := range m.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}
