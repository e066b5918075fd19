package viz

import (
	"encoding/json"
	"fmt"
)

// Widget palette.
const (
	ThemeColor    = "#607d8b"
	LinkBaseColor = "#C2C2C2"
)

// Options is the static vis-network configuration. It is passed to the widget once
// and never changes at runtime.
type Options struct {
	Layout      LayoutOptions      `json:"layout"`
	Physics     PhysicsOptions     `json:"physics"`
	Nodes       NodeOptions        `json:"nodes"`
	Edges       EdgeOptions        `json:"edges"`
	Interaction InteractionOptions `json:"interaction"`
}

type LayoutOptions struct {
	RandomSeed     int  `json:"randomSeed"`
	ImprovedLayout bool `json:"improvedLayout"`
}

type PhysicsOptions struct {
	Enabled     bool            `json:"enabled"`
	BarnesHut   BarnesHutConfig `json:"barnesHut"`
	MinVelocity float64         `json:"minVelocity"`
	Solver      string          `json:"solver"`
}

type BarnesHutConfig struct {
	GravitationalConstant float64 `json:"gravitationalConstant"`
	CentralGravity        float64 `json:"centralGravity"`
	SpringLength          float64 `json:"springLength"`
	SpringConstant        float64 `json:"springConstant"`
}

type NodeOptions struct {
	Scaling NodeScaling `json:"scaling"`
	Font    FontOptions `json:"font"`
}

type NodeScaling struct {
	Min   float64      `json:"min"`
	Max   float64      `json:"max"`
	Label LabelScaling `json:"label"`
}

type LabelScaling struct {
	Enabled bool    `json:"enabled"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

type FontOptions struct {
	Size  int    `json:"size"`
	Face  string `json:"face"`
	Color string `json:"color"`
}

type EdgeOptions struct {
	Smooth  SmoothOptions `json:"smooth"`
	Scaling EdgeScaling   `json:"scaling"`
	Width   float64       `json:"width"`
	Arrows  ArrowOptions  `json:"arrows"`
	Color   EdgeColor     `json:"color"`
}

type SmoothOptions struct {
	Enabled bool   `json:"enabled"`
	Type    string `json:"type"`
}

type EdgeScaling struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ArrowOptions struct {
	To   bool `json:"to"`
	From bool `json:"from"`
}

type EdgeColor struct {
	Color     string `json:"color"`
	Highlight string `json:"highlight"`
	Hover     string `json:"hover"`
}

type InteractionOptions struct {
	DragNodes    bool `json:"dragNodes"`
	ZoomView     bool `json:"zoomView"`
	Hover        bool `json:"hover"`
	TooltipDelay int  `json:"tooltipDelay"`
}

// DefaultOptions returns the layout and styling used on every page.
func DefaultOptions() Options {
	return Options{
		Layout: LayoutOptions{
			RandomSeed:     42,
			ImprovedLayout: true,
		},
		Physics: PhysicsOptions{
			Enabled: true,
			BarnesHut: BarnesHutConfig{
				GravitationalConstant: -2000,
				CentralGravity:        0.8,
				SpringLength:          20,
				SpringConstant:        0.001,
			},
			MinVelocity: 0.75,
			Solver:      "barnesHut",
		},
		Nodes: NodeOptions{
			Scaling: NodeScaling{
				Min:   10,
				Max:   15,
				Label: LabelScaling{Enabled: true, Min: 14, Max: 18},
			},
			Font: FontOptions{Size: 16, Face: "Sedan SC", Color: "#333333"},
		},
		Edges: EdgeOptions{
			Smooth:  SmoothOptions{Enabled: true, Type: "dynamic"},
			Scaling: EdgeScaling{Min: 0.5, Max: 5},
			Width:   1,
			Color: EdgeColor{
				Color:     LinkBaseColor,
				Highlight: ThemeColor,
				Hover:     ThemeColor,
			},
		},
		Interaction: InteractionOptions{
			DragNodes:    true,
			ZoomView:     true,
			Hover:        true,
			TooltipDelay: 100,
		},
	}
}

// JSON returns the options encoded for the widget.
func (o Options) JSON() (string, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("marshaling widget options: %w", err)
	}
	return string(data), nil
}
