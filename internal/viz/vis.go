package viz

import (
	"fmt"
	"strings"

	"github.com/matsen/labsite/internal/coauthor"
	"github.com/matsen/labsite/internal/publication"
)

// MaxTooltipPublications caps the example publications listed in an edge tooltip.
const MaxTooltipPublications = 5

// Markup used in tooltips. The widget shows these as line breaks; CopyText turns
// them into plain text.
const (
	lineBreak = "<br>"
	separator = "<hr>"
)

// Build derives the widget model straight from a publication list.
func Build(pubs []publication.Publication) *Model {
	return ToVis(coauthor.Build(pubs))
}

// ToVis maps a co-authorship graph into the widget's node and edge format.
func ToVis(g coauthor.Graph) *Model {
	m := &Model{
		Graph: g,
		Nodes: make([]Node, 0, len(g.Nodes)),
		Edges: make([]Edge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		m.Nodes = append(m.Nodes, newNode(n))
	}
	used := make(map[string]int, len(g.Edges))
	for _, e := range g.Edges {
		edge := newEdge(e)
		edge.ID = uniqueID(used, edge.ID)
		m.Edges = append(m.Edges, edge)
	}
	return m
}

// uniqueID returns id, or id with a "#n" suffix if an earlier edge already took it.
// Names containing "-" can collide: ("A-B", "C") and ("A", "B-C") both give "A-B-C".
func uniqueID(used map[string]int, id string) string {
	n := used[id]
	used[id] = n + 1
	if n == 0 {
		return id
	}
	for {
		n++
		candidate := fmt.Sprintf("%s#%d", id, n)
		if used[candidate] == 0 {
			used[candidate] = 1
			return candidate
		}
	}
}

func newNode(n coauthor.Node) Node {
	group := n.Affiliation
	if group == "" {
		group = UnknownGroup
	}

	node := Node{
		ID:          n.Name,
		Label:       n.Name,
		Value:       n.PublicationCount,
		Group:       group,
		Title:       NodeTitle(n.Name, n.PublicationCount, group),
		Shape:       ShapeDot,
		BorderWidth: 1,
	}
	if n.Highlighted {
		node.BorderWidth = 4
		node.Color = &NodeColor{
			Border:     HighlightBorderColor,
			Background: HighlightBackgroundColor,
			Highlight: ColorPair{
				Border:     HighlightBorderColor,
				Background: HighlightBackgroundColor,
			},
		}
	}
	return node
}

func newEdge(e coauthor.Edge) Edge {
	return Edge{
		ID:    EdgeID(e.Source, e.Target),
		From:  e.Source,
		To:    e.Target,
		Value: e.Weight,
		Title: EdgeTitle(e.Weight, e.Publications),
		Font:  EdgeFont{Multi: true},
	}
}

// EdgeID is the widget ID of the edge between source and target.
func EdgeID(source, target string) string {
	return source + "-" + target
}

// NodeTitle formats the hover text for an author.
func NodeTitle(name string, count int, group string) string {
	return fmt.Sprintf("Author: %s%sPaper: %d%sAffiliation: %s", name, lineBreak, count, lineBreak, group)
}

// EdgeTitle formats the hover text for a co-authorship link: the shared publication
// count followed by at most MaxTooltipPublications example titles.
func EdgeTitle(weight int, pubs []publication.Publication) string {
	if len(pubs) > MaxTooltipPublications {
		pubs = pubs[:MaxTooltipPublications]
	}
	lines := make([]string, len(pubs))
	for i, p := range pubs {
		lines[i] = fmt.Sprintf("- %s (%d)", p.Title, p.Year)
	}
	return fmt.Sprintf("Paper Numbers: %d%s%s", weight, separator, strings.Join(lines, lineBreak))
}

// copyReplacer converts tooltip markup into plain text for the clipboard.
var copyReplacer = strings.NewReplacer(lineBreak, "\n", separator, "—")

// CopyText converts an edge tooltip into the plain text that is copied on click.
func CopyText(title string) string {
	return copyReplacer.Replace(title)
}
