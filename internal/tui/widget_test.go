package tui

import (
	"testing"

	"github.com/matsen/labsite/internal/view"
	"github.com/matsen/labsite/internal/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidget_RenderSortsByWeight(t *testing.T) {
	w := NewWidget()
	edges := []viz.Edge{
		{ID: "A-B", Value: 1},
		{ID: "A-C", Value: 3},
		{ID: "B-C", Value: 3},
		{ID: "C-D", Value: 2},
	}
	require.NoError(t, w.Render([]viz.Node{{ID: "A"}}, edges, viz.DefaultOptions()))

	var ids []string
	for _, e := range w.Edges() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"A-C", "B-C", "C-D", "A-B"}, ids)
	assert.Equal(t, "A-B", edges[0].ID, "input is not reordered")
	assert.Equal(t, 1, w.NodeCount())
}

func TestWidget_Events(t *testing.T) {
	w := NewWidget()
	var got []view.Event
	unsubscribe := w.Subscribe(func(e view.Event) { got = append(got, e) })

	w.SelectEdge("A-B")
	assert.Equal(t, "A-B", w.Selected())
	w.ClickBackground()

	require.Len(t, got, 2)
	assert.Equal(t, view.EventSelectEdge, got[0].Kind)
	assert.Equal(t, []string{"A-B"}, got[0].Edges)
	assert.Equal(t, view.EventClick, got[1].Kind)
	assert.Empty(t, got[1].Edges)

	w.UnselectAll()
	assert.Empty(t, w.Selected())

	unsubscribe()
	w.SelectEdge("A-C")
	assert.Len(t, got, 2, "no events after unsubscribe")
}
