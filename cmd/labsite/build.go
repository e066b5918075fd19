package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/matsen/labsite/internal/coauthor"
	"github.com/matsen/labsite/internal/config"
	"github.com/matsen/labsite/internal/site"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	buildOutput    string
	buildScriptSrc string
)

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output directory (default: from site.yml)")
	buildCmd.Flags().StringVar(&buildScriptSrc, "script-src", "", "vis-network script URL or path (default: CDN)")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Export the static site",
	Long: `Export the static site and refresh the graph cache.

Writes index.html, one <slug>/index.html per configured page, 404.html,
publications.bib and graph.json. The output directory is recreated on every
build.

Environment:
  LABSITE_OUTPUT     Override the output directory
  LABSITE_BASE_PATH  Override the URL prefix for links`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

// BuildResponse is the response for the build command.
type BuildResponse struct {
	*site.Result
	Elapsed string `json:"elapsed"`
}

func runBuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	start := time.Now()
	res, err := buildSite(cmd.Context(), repoRoot, buildOutput, buildScriptSrc)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	elapsed := time.Since(start)

	if humanOutput {
		fmt.Printf("Built %d files in %s (%s)\n", len(res.Files), res.OutputDir, formatDuration(elapsed))
		fmt.Printf("  %d authors, %d co-author links\n", res.Stats.Nodes, res.Stats.Edges)
	} else {
		outputJSON(BuildResponse{Result: res, Elapsed: formatDuration(elapsed)})
	}
	return nil
}

// buildSite loads config and publications, exports the site and rebuilds the graph
// cache. It returns errors rather than exiting so watch mode can keep going.
func buildSite(ctx context.Context, repoRoot, output, scriptSrc string) (*site.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	pubs, err := loadPublications(repoRoot, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading publications: %w", err)
	}

	outDir := output
	if outDir == "" {
		outDir = cfg.OutputDir(repoRoot)
	}
	res, err := site.Export(ctx, cfg, pubs, site.Options{
		OutputDir: outDir,
		RepoRoot:  repoRoot,
		ScriptSrc: scriptSrc,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("exporting site: %w", err)
	}

	if err := refreshCache(repoRoot, coauthor.Build(pubs)); err != nil {
		return nil, err
	}
	return res, nil
}

func refreshCache(repoRoot string, g coauthor.Graph) error {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := openDB(repoRoot)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RebuildFromGraph(g); err != nil {
		return fmt.Errorf("rebuilding graph cache: %w", err)
	}
	edges, err := db.EdgeCount()
	if err != nil {
		return fmt.Errorf("counting cached edges: %w", err)
	}
	logger.Debug("graph cache rebuilt", zap.Int("nodes", len(g.Nodes)), zap.Int("edges", edges))
	return nil
}
