package coauthor

import (
	"github.com/matsen/labsite/internal/publication"
)

// keySep joins the two names of an edge key. Author names never contain NUL.
const keySep = "\x00"

// Build derives the co-authorship graph from a publication list.
//
// An author's publication count is the number of publications listing them. An edge's
// weight is the number of publications listing both of its authors, and its evidence
// list holds those publications in input order. A name repeated within one author list
// counts once, so no author is ever linked to themselves.
//
// The first non-empty affiliation seen for an author is kept. Nodes and edges come out
// in first-seen order. Build never mutates pubs; empty input yields an empty graph.
func Build(pubs []publication.Publication) Graph {
	var (
		nodeIdx = make(map[string]int)
		edgeIdx = make(map[string]int)
		nodes   = make([]Node, 0)
		edges   = make([]Edge, 0)
	)

	for _, pub := range pubs {
		names := distinctAuthors(pub.Authors)

		for _, a := range names {
			i, ok := nodeIdx[a.Name]
			if !ok {
				i = len(nodes)
				nodeIdx[a.Name] = i
				nodes = append(nodes, Node{Name: a.Name})
			}
			n := &nodes[i]
			n.PublicationCount++
			if a.Highlighted {
				n.Highlighted = true
			}
			if n.Affiliation == "" {
				n.Affiliation = a.Affiliation
			}
		}

		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				source, target := orderPair(names[i].Name, names[j].Name)
				key := source + keySep + target

				k, ok := edgeIdx[key]
				if !ok {
					k = len(edges)
					edgeIdx[key] = k
					edges = append(edges, Edge{Source: source, Target: target})
				}
				e := &edges[k]
				e.Weight++
				e.Publications = append(e.Publications, pub)
			}
		}
	}

	return Graph{Nodes: nodes, Edges: edges}
}

// distinctAuthors collapses repeated names in one author list, keeping the first
// position and OR-ing the highlight flag across the repeats.
func distinctAuthors(authors []publication.Author) []publication.Author {
	seen := make(map[string]int, len(authors))
	out := make([]publication.Author, 0, len(authors))
	for _, a := range authors {
		if i, ok := seen[a.Name]; ok {
			if a.Highlighted {
				out[i].Highlighted = true
			}
			if out[i].Affiliation == "" {
				out[i].Affiliation = a.Affiliation
			}
			continue
		}
		seen[a.Name] = len(out)
		out = append(out, a)
	}
	return out
}

// orderPair returns the two names in lexicographic order.
func orderPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
