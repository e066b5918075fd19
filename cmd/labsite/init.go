package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/labsite/internal/config"
	"github.com/spf13/cobra"
)

var initTitle string

func init() {
	initCmd.Flags().StringVar(&initTitle, "title", "", "Site title (default: directory name)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new labsite repository",
	Long: `Initialize a new labsite repository in the current directory.

Creates:
  .labsite/
  ├── site.yml        # Default site config
  └── cache/          # Graph cache (gitignored)`,
	RunE: runInit,
}

// InitResponse is the response for the init command.
type InitResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Config string `json:"config"`
}

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a labsite repository")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating .labsite directory: %v", err)
	}

	title := initTitle
	if title == "" {
		title = filepath.Base(root)
	}
	cfg := config.Default(title)
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "creating site.yml: %v", err)
	}

	// Keep the cache out of git
	gitignore := filepath.Join(config.SitePath(root), ".gitignore")
	if err := os.WriteFile(gitignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		exitWithError(ExitError, "creating .gitignore: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized labsite repository in %s\n", config.SitePath(root))
		fmt.Printf("Edit %s, then run 'labsite build'.\n", config.ConfigPath(root))
	} else {
		outputJSON(InitResponse{
			Status: "initialized",
			Path:   root,
			Config: config.ConfigPath(root),
		})
	}
	return nil
}
