package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matsen/labsite/internal/config"
	"github.com/matsen/labsite/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchOutput    string
	watchScriptSrc string
)

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Output directory (default: from site.yml)")
	watchCmd.Flags().StringVar(&watchScriptSrc, "script-src", "", "vis-network script URL or path (default: CDN)")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the site whenever its sources change",
	Long: `Build the site, then rebuild it whenever site.yml or the publication list changes.

Bursts of saves are coalesced into one rebuild. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rebuild := func(ctx context.Context) error {
		res, err := buildSite(ctx, repoRoot, watchOutput, watchScriptSrc)
		if err != nil {
			return err
		}
		if humanOutput {
			fmt.Printf("Rebuilt %d files in %s\n", len(res.Files), res.OutputDir)
		} else {
			outputJSON(res)
		}
		return nil
	}

	if err := rebuild(ctx); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	// The publication source is fixed for the session; changing it in site.yml
	// needs a restart.
	files := []string{config.ConfigPath(repoRoot), cfg.PublicationsSource(repoRoot)}
	w, err := watch.New(files, rebuild, watch.WithLogger(logger))
	if err != nil {
		exitWithError(ExitError, "starting watcher: %v", err)
	}
	if humanOutput {
		fmt.Println("Watching for changes (Ctrl-C to stop)")
	}

	if err := w.Run(ctx); err != nil {
		return err
	}
	logger.Debug("watch stopped", zap.Any("stats", w.Stats()))
	return nil
}
