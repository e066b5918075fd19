package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matsen/labsite/internal/clipboard"
	"github.com/matsen/labsite/internal/tui"
	"github.com/matsen/labsite/internal/view"
	"github.com/spf13/cobra"
)

var browseEmbedded bool

func init() {
	browseCmd.Flags().BoolVar(&browseEmbedded, "embedded", false, "Use the compact layout")
	rootCmd.AddCommand(browseCmd)
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the co-author network in the terminal",
	Long: `Browse the co-author network in the terminal.

Links are listed heaviest first. Press enter on a link to copy its shared
papers to the clipboard, esc to clear the selection and q to quit.

Copying needs xclip, xsel or wl-clipboard on Linux.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	pubs := mustLoadPublications(repoRoot, cfg)

	if !clipboard.IsAvailable() {
		logger.Warn("clipboard unavailable; selecting a link will not copy it")
	}

	title := cfg.Graph.Title
	if title == "" {
		title = cfg.Title
	}
	widget := tui.NewWidget()
	v := view.New(
		view.PageConfig{Title: title, Description: cfg.Graph.Description},
		pubs,
		widget,
		clipboard.System{},
		view.WithLogger(logger),
		view.WithEmbedded(browseEmbedded),
	)

	if err := tui.Run(v, widget, tea.WithAltScreen()); err != nil {
		exitWithError(ExitError, "running browser: %v", err)
	}
	return nil
}
