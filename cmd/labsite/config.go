package main

import (
	"errors"
	"fmt"

	"github.com/matsen/labsite/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set values in .labsite/site.yml.

Usage:
  labsite config                         # Show all settable values
  labsite config title                   # Get specific value
  labsite config title "Matsen Lab"      # Set value

Keys:
  title              Site title
  description        Site description (HTML meta)
  publications       Publication list, .bib or .jsonl, relative to the repository
  output             Export directory
  base_path          URL prefix for links, e.g. /lab
  graph.title        Heading above the co-author network
  graph.description  Text below the heading

Lists and pages (highlight, affiliations, pages) are edited in site.yml directly.
Values shown are as stored; LABSITE_OUTPUT and LABSITE_BASE_PATH apply at build time.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg, err := config.Read(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		values := make(map[string]string)
		for _, key := range config.Keys() {
			v, _ := cfg.Get(key)
			values[key] = v
		}
		if humanOutput {
			for _, key := range config.Keys() {
				fmt.Printf("%-18s %s\n", key+":", values[key])
			}
		} else {
			outputJSON(values)
		}
		return nil
	}

	key := args[0]

	// One arg: get specific value
	if len(args) == 1 {
		v, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(v)
		} else {
			outputJSON(map[string]string{key: v})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			exitWithError(ExitError, "%v", err)
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}
