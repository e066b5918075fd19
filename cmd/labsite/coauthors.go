package main

import (
	"fmt"
	"strings"

	"github.com/matsen/labsite/internal/author"
	"github.com/matsen/labsite/internal/storage"
	"github.com/spf13/cobra"
)

var coauthorsLimit int

func init() {
	coauthorsCmd.Flags().IntVarP(&coauthorsLimit, "limit", "n", DefaultCoauthorLimit, "Maximum collaborators to list (0 for all)")
	rootCmd.AddCommand(coauthorsCmd)
}

var coauthorsCmd = &cobra.Command{
	Use:   "coauthors <name>",
	Short: "List an author's most frequent collaborators",
	Long: `List an author's collaborators ranked by shared publications.

Reads the graph cache written by 'labsite build'. Names match like this:
  "Yu"           any author with last name Yu
  "Tim Yu"       first name starting with Tim, last name Yu
  "Yu, Tim"      same as above

Examples:
  labsite coauthors Matsen
  labsite coauthors "Frederick Matsen" -n 0 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runCoauthors,
}

// CoauthorsResponse is the response for the coauthors command.
type CoauthorsResponse struct {
	Author    storage.AuthorRow     `json:"author"`
	Coauthors []storage.CoauthorRow `json:"coauthors"`
}

func runCoauthors(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	authors, err := db.Authors(0)
	if err != nil {
		exitWithError(ExitError, "listing authors: %v", err)
	}
	if len(authors) == 0 {
		exitWithError(ExitConfigError, "graph cache is empty\n\nRun 'labsite build' to populate it.")
	}

	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Name
	}
	matches := author.ParseQuery(args[0]).Resolve(args[0], names)
	switch len(matches) {
	case 0:
		exitWithError(ExitError, "no author matches %q", args[0])
	case 1:
	default:
		exitWithError(ExitError, "%q matches several authors: %s", args[0], strings.Join(matches, ", "))
	}

	a, err := db.GetAuthor(matches[0])
	if err != nil || a == nil {
		exitWithError(ExitError, "getting author %s: %v", matches[0], err)
	}
	coauthors, err := db.TopCoauthors(a.Name, coauthorsLimit)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if coauthors == nil {
		coauthors = []storage.CoauthorRow{}
	}

	if humanOutput {
		fmt.Printf("%s (%d papers)\n", a.Name, a.PublicationCount)
		if a.Affiliation != "" {
			fmt.Printf("  %s\n", a.Affiliation)
		}
		if len(coauthors) == 0 {
			fmt.Println("No co-authors.")
			return nil
		}
		fmt.Println()
		for i, c := range coauthors {
			fmt.Printf("%3d. %-*s %d\n", i+1, GraphNameMaxLen, truncateString(c.Name, GraphNameMaxLen), c.Weight)
		}
	} else {
		outputJSON(CoauthorsResponse{Author: *a, Coauthors: coauthors})
	}
	return nil
}
