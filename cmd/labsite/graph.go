package main

import (
	"fmt"

	"github.com/matsen/labsite/internal/coauthor"
	"github.com/spf13/cobra"
)

var graphWithPublications bool

func init() {
	graphCmd.Flags().BoolVar(&graphWithPublications, "publications", false, "Include each edge's shared publications")
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the co-authorship graph",
	Long: `Print the co-authorship graph built from the publication list.

Nodes are authors; edges join authors who share a publication and are weighted
by the number of shared publications.`,
	Args: cobra.NoArgs,
	RunE: runGraph,
}

// GraphResponse is the response for the graph command.
type GraphResponse struct {
	Stats       coauthor.Stats  `json:"stats"`
	Highlighted string          `json:"highlighted,omitempty"`
	Nodes       []coauthor.Node `json:"nodes"`
	Edges       []coauthor.Edge `json:"edges"`
}

func runGraph(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	pubs := mustLoadPublications(repoRoot, cfg)

	g := coauthor.Build(pubs)
	resp := newGraphResponse(g, graphWithPublications)

	if humanOutput {
		printGraphHuman(resp)
	} else {
		outputJSON(resp)
	}
	return nil
}

func newGraphResponse(g coauthor.Graph, withPublications bool) GraphResponse {
	resp := GraphResponse{
		Stats: g.Stats(),
		Nodes: g.Nodes,
		Edges: g.Edges,
	}
	if n, ok := g.Highlighted(); ok {
		resp.Highlighted = n.Name
	}
	if !withPublications {
		resp.Edges = make([]coauthor.Edge, len(g.Edges))
		for i, e := range g.Edges {
			e.Publications = nil
			resp.Edges[i] = e
		}
	}
	return resp
}

func printGraphHuman(resp GraphResponse) {
	fmt.Printf("%d authors, %d links (max weight %d)\n", resp.Stats.Nodes, resp.Stats.Edges, resp.Stats.MaxWeight)
	if resp.Highlighted != "" {
		fmt.Printf("Highlighted: %s\n", resp.Highlighted)
	}
	if len(resp.Edges) == 0 {
		return
	}
	fmt.Println()
	for _, e := range resp.Edges {
		fmt.Printf("  %-*s -- %-*s %d\n",
			GraphNameMaxLen, truncateString(e.Source, GraphNameMaxLen),
			GraphNameMaxLen, truncateString(e.Target, GraphNameMaxLen),
			e.Weight)
		for _, p := range e.Publications {
			fmt.Printf("      - %s (%d)\n", p.Title, p.Year)
		}
	}
}
