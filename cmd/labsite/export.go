package main

import (
	"fmt"
	"strings"

	"github.com/matsen/labsite/internal/bibtex"
	"github.com/matsen/labsite/internal/publication"
	"github.com/matsen/labsite/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportBibtex bool
	exportKeys   string
)

func init() {
	exportCmd.Flags().BoolVar(&exportBibtex, "bibtex", false, "Export to BibTeX format")
	exportCmd.Flags().StringVar(&exportKeys, "keys", "", "Export only specified IDs (comma-separated)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export publications to BibTeX format",
	Long: `Export publications to BibTeX format.

Examples:
  labsite export --bibtex
  labsite export --bibtex --keys Smith2020,Jones2021
  labsite export --bibtex > publications.bib`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	if !exportBibtex {
		exitWithError(ExitError, "--bibtex flag is required")
	}

	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	pubs := mustLoadPublications(repoRoot, cfg)

	if exportKeys != "" {
		selected, err := selectByKeys(pubs, strings.Split(exportKeys, ","))
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		pubs = selected
	}

	// BibTeX is always text output, never JSON
	fmt.Print(bibtex.ToBibTeXList(pubs))
	return nil
}

// selectByKeys returns the publications with the given citation keys, in key order.
func selectByKeys(pubs []publication.Publication, keys []string) ([]publication.Publication, error) {
	var out []publication.Publication
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		i, found := storage.FindByID(pubs, key)
		if !found {
			return nil, fmt.Errorf("unknown key: %s", key)
		}
		out = append(out, pubs[i])
	}
	return out, nil
}
