// Package tui browses the co-author network in the terminal.
package tui

import (
	"sort"
	"sync"

	"github.com/matsen/labsite/internal/view"
	"github.com/matsen/labsite/internal/viz"
)

// Widget is the terminal rendering widget for a view. It keeps the last rendered
// graph and forwards key presses to the view as widget events.
type Widget struct {
	mu       sync.Mutex
	nodes    []viz.Node
	edges    []viz.Edge
	selected string
	renders  int
	handlers map[int]func(view.Event)
	nextID   int
}

// NewWidget creates an empty widget.
func NewWidget() *Widget {
	return &Widget{handlers: make(map[int]func(view.Event))}
}

// Render stores the graph. Edges are kept heaviest first, ties by ID.
func (w *Widget) Render(nodes []viz.Node, edges []viz.Edge, _ viz.Options) error {
	sorted := append([]viz.Edge(nil), edges...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].ID < sorted[j].ID
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	w.nodes = nodes
	w.edges = sorted
	w.selected = ""
	w.renders++
	return nil
}

// UnselectAll clears the selected edge.
func (w *Widget) UnselectAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = ""
}

// Subscribe registers an event handler.
func (w *Widget) Subscribe(handler func(view.Event)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.handlers[id] = handler
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.handlers, id)
	}
}

// SelectEdge selects an edge and reports it to subscribers.
func (w *Widget) SelectEdge(id string) {
	w.mu.Lock()
	w.selected = id
	w.mu.Unlock()
	w.emit(view.Event{Kind: view.EventSelectEdge, Edges: []string{id}})
}

// ClickBackground reports a click that hit no edge.
func (w *Widget) ClickBackground() {
	w.emit(view.Event{Kind: view.EventClick})
}

func (w *Widget) emit(e view.Event) {
	w.mu.Lock()
	handlers := make([]func(view.Event), 0, len(w.handlers))
	for _, h := range w.handlers {
		handlers = append(handlers, h)
	}
	w.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}

// Edges returns the rendered edges, heaviest first.
func (w *Widget) Edges() []viz.Edge {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.edges
}

// NodeCount returns the number of rendered nodes.
func (w *Widget) NodeCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.nodes)
}

// Selected returns the selected edge ID, or "" when nothing is selected.
func (w *Widget) Selected() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected
}

// Renders returns how many times the widget has been rendered.
func (w *Widget) Renders() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.renders
}
