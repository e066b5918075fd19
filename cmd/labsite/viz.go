package main

import (
	"fmt"
	"os"

	"github.com/matsen/labsite/internal/viz"
	"github.com/spf13/cobra"
)

var (
	vizOutput    string
	vizScriptSrc string
)

func init() {
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().StringVar(&vizScriptSrc, "script-src", "", "vis-network script URL or path (default: CDN)")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Generate a standalone co-author network page",
	Long: `Generate a single self-contained HTML page with the co-author network.

Authors are sized by paper count and colored by affiliation; edges are sized by
shared papers. Clicking an edge copies its paper list to the clipboard.

Examples:
  # Generate HTML to stdout
  labsite viz > network.html

  # Generate to file with a local copy of vis-network
  labsite viz --output network.html --script-src vis-network.min.js`,
	Args: cobra.NoArgs,
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	pubs := mustLoadPublications(repoRoot, cfg)

	html, err := viz.GenerateHTML(viz.Build(pubs), viz.HTMLOptions{
		Title:       cfg.Graph.Title,
		Description: cfg.Graph.Description,
		ScriptSrc:   vizScriptSrc,
	})
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	if vizOutput == "" {
		fmt.Print(html)
		return nil
	}
	if err := os.WriteFile(vizOutput, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if humanOutput {
		fmt.Printf("Visualization written to %s\n", vizOutput)
	} else {
		outputJSON(StatusResponse{Status: "written", Path: vizOutput})
	}
	return nil
}
