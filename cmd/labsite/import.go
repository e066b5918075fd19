package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/labsite/internal/config"
	"github.com/matsen/labsite/internal/publication"
	"github.com/matsen/labsite/internal/site"
	"github.com/matsen/labsite/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importDryRun bool

// importAuthorsShown is how many authors the human listing names before "et al.".
const importAuthorsShown = 3

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import publications from BibTeX or JSONL",
	Long: `Import publications into .labsite/publications.jsonl.

Entries are matched to existing publications by citation key: matches are
updated in place, the rest appended. Every imported record is validated and
nothing is written if any record is invalid. The site config is pointed at the
imported list.

Usage:
  labsite import publications.bib
  labsite import export.jsonl --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	New           int    `json:"new"`
	Updated       int    `json:"updated"`
	Total         int    `json:"total"`
	Path          string `json:"path"`
	DryRun        bool   `json:"dry_run,omitempty"`
	ConfigUpdated bool   `json:"config_updated,omitempty"`
}

// ImportError lists every invalid record in an import.
type ImportError struct {
	Error   string   `json:"error"`
	Invalid []string `json:"invalid"`
}

func runImport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	incoming, err := site.LoadPublications(args[0])
	if err != nil {
		if errors.Is(err, site.ErrUnsupportedFormat) {
			exitWithError(ExitError, "%v", err)
		}
		exitWithError(ExitDataError, "parsing %s: %v", args[0], err)
	}

	if invalid := validationMessages(publication.ValidateAll(incoming)); len(invalid) > 0 {
		reportInvalid(args[0], invalid)
		return nil
	}

	path := config.PublicationsPath(repoRoot)
	existing, err := storage.ReadAll(path)
	if err != nil {
		exitWithError(ExitDataError, "reading existing publications: %v", err)
	}

	merged, added, updated := storage.Merge(existing, incoming)
	result := ImportResult{
		New:     added,
		Updated: updated,
		Total:   len(merged),
		Path:    path,
		DryRun:  importDryRun,
	}

	if !importDryRun {
		if err := storage.WriteAll(path, merged); err != nil {
			exitWithError(ExitError, "writing publications: %v", err)
		}
		updatedCfg, err := pointConfigAt(repoRoot, path)
		if err != nil {
			exitWithError(ExitConfigError, "updating config: %v", err)
		}
		result.ConfigUpdated = updatedCfg
		logger.Info("imported publications",
			zap.String("source", args[0]), zap.Int("new", added), zap.Int("updated", updated))
	}

	if humanOutput {
		verb := "Imported"
		if importDryRun {
			verb = "Would import"
		}
		outputHuman("%s %d new, %d updated (%d total)\n", verb, result.New, result.Updated, result.Total)
		for _, p := range incoming {
			outputHuman("  %s (%d)\n", truncateString(p.Title, ImportTitleMaxLen), p.Year)
			outputHuman("    %s\n", formatAuthorsShort(p.Authors, importAuthorsShown))
		}
		if result.ConfigUpdated {
			outputHuman("Site config now reads publications from %s\n", path)
		}
	} else {
		outputJSON(result)
	}
	return nil
}

// validationMessages flattens a ValidateAll error into one message per record.
func validationMessages(err error) []string {
	if err == nil {
		return nil
	}
	var msgs []string
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}

func reportInvalid(source string, invalid []string) {
	msg := fmt.Sprintf("%d invalid record(s) in %s; nothing imported", len(invalid), source)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		for _, m := range invalid {
			fmt.Fprintf(os.Stderr, "  %s\n", m)
		}
	} else {
		outputJSON(ImportError{Error: msg, Invalid: invalid})
	}
	_ = logger.Sync()
	os.Exit(ExitDataError)
}

// pointConfigAt makes site.yml read publications from path, relative to the root.
// Reports whether the config changed.
func pointConfigAt(repoRoot, path string) (bool, error) {
	cfg, err := config.Read(repoRoot)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(repoRoot, path)
	if err != nil {
		return false, err
	}
	if cfg.PublicationsSource(repoRoot) == path {
		return false, nil
	}
	cfg.Publications = rel
	return true, cfg.Save(repoRoot)
}
