// Package view holds the stateful co-authorship graph view: it gates rendering on
// mount, feeds the graph model to a rendering widget, and turns edge selection into
// a clipboard copy with a short-lived confirmation.
package view

import (
	"context"

	"github.com/matsen/labsite/internal/viz"
)

// EventKind identifies a widget interaction.
type EventKind int

const (
	// EventSelectEdge fires when the user selects one or more edges.
	EventSelectEdge EventKind = iota
	// EventClick fires on any click on the canvas; Edges lists the edges under the pointer.
	EventClick
)

func (k EventKind) String() string {
	switch k {
	case EventSelectEdge:
		return "selectEdge"
	case EventClick:
		return "click"
	default:
		return "unknown"
	}
}

// Event is an interaction reported by a Renderer.
type Event struct {
	Kind  EventKind
	Edges []string // Edge IDs
}

// Renderer is a graph-rendering widget. The view hands it nodes, edges and the static
// widget options once per model, and receives interaction events back.
type Renderer interface {
	Render(nodes []viz.Node, edges []viz.Edge, opts viz.Options) error
	UnselectAll()
	Subscribe(handler func(Event)) (unsubscribe func())
}

// Clipboard is a write-only text clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}
