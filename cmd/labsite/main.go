// Package main provides the labsite CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/matsen/labsite/internal/config"
	"github.com/matsen/labsite/internal/publication"
	"github.com/matsen/labsite/internal/site"
	"github.com/matsen/labsite/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
	logger      = zap.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "labsite",
	Short: "Static site generator for a lab's publications and co-author network",
	Long: `labsite builds a static website for an academic lab from its publication list.

Core features:
  - BibTeX or JSONL publication lists, validated on import
  - Co-authorship network: authors as nodes, shared papers as weighted edges
  - Static export with an interactive network widget and a 404 page
  - Terminal browser where selecting an edge copies its papers to the clipboard

Site configuration lives in .labsite/site.yml; the graph cache in .labsite/cache/ is
rebuilt on every build. All commands output JSON by default.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Version = Version
}

// setupLogging builds the process logger. Logs go to stderr so stdout stays
// machine-readable.
func setupLogging(cmd *cobra.Command, args []string) error {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if humanOutput {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.OutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logger = l.Named("labsite")
	return nil
}

// getStartingDirectory returns the directory to start searching for a repository.
func getStartingDirectory() (string, int) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds the site repository and loads its .env, exits on error.
// Falls back to the global site_path when run outside a repository.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.ResolveRoot(start)
	if err != nil {
		// Show helpful message if no global config exists
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}

	if err := config.LoadDotEnv(repoRoot); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	logger.Debug("using repository", zap.String("root", repoRoot))
	return repoRoot
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.SiteConfig {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// openDB opens the SQLite graph cache.
func openDB(repoRoot string) (*storage.DB, error) {
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// mustOpenDatabase opens the SQLite graph cache, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := openDB(repoRoot)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return db
}

// loadPublications reads and validates the configured publication list, with
// highlight and affiliation settings applied.
func loadPublications(repoRoot string, cfg *config.SiteConfig) ([]publication.Publication, error) {
	path := cfg.PublicationsSource(repoRoot)
	pubs, err := site.LoadPublications(path)
	if err != nil {
		return nil, err
	}
	if err := publication.ValidateAll(pubs); err != nil {
		return nil, fmt.Errorf("invalid publications in %s:\n%w", path, err)
	}
	logger.Debug("loaded publications", zap.String("path", path), zap.Int("count", len(pubs)))
	return publication.Annotate(pubs, cfg.Highlight, cfg.Affiliations), nil
}

// mustLoadPublications is loadPublications that exits on error.
func mustLoadPublications(repoRoot string, cfg *config.SiteConfig) []publication.Publication {
	pubs, err := loadPublications(repoRoot, cfg)
	if err != nil {
		exitWithError(ExitDataError, "loading publications: %v", err)
	}
	return pubs
}
