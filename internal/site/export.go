package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matsen/labsite/internal/bibtex"
	"github.com/matsen/labsite/internal/coauthor"
	"github.com/matsen/labsite/internal/config"
	"github.com/matsen/labsite/internal/publication"
	"github.com/matsen/labsite/internal/viz"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Output file names.
const (
	IndexFile    = "index.html"
	NotFoundFile = "404.html"
	BibTeXFile   = "publications.bib"
	ManifestFile = "graph.json"
)

const (
	defaultWorkers    = 4
	notFoundTitle     = "Page not found"
	defaultGraphTitle = "Co-author Network"
)

// ErrUnsafeOutputDir is returned when clearing the output directory could destroy
// something other than a previous build.
var ErrUnsafeOutputDir = errors.New("unsafe output directory")

// Options configures an export.
type Options struct {
	OutputDir string           // Defaults to cfg.Output
	RepoRoot  string           // Site repository; the output may not contain or be inside its .labsite
	ScriptSrc string           // vis-network script; empty uses the CDN
	Logger    *zap.Logger      // nil disables logging
	Now       func() time.Time // Build timestamp source; nil uses time.Now
	Workers   int              // Concurrent file writers; 0 uses a default
}

// Result summarizes an export.
type Result struct {
	BuildID     string         `json:"build_id"`
	OutputDir   string         `json:"output_dir"`
	Files       []string       `json:"files"`
	Stats       coauthor.Stats `json:"stats"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Manifest is the machine-readable graph written to graph.json.
type Manifest struct {
	BuildID     string          `json:"build_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Title       string          `json:"title"`
	Stats       coauthor.Stats  `json:"stats"`
	Nodes       []coauthor.Node `json:"nodes"`
	Edges       []ManifestEdge  `json:"edges"`
}

// ManifestEdge is an edge without its publication evidence.
type ManifestEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// file is one output file and a function producing its bytes.
type file struct {
	path   string
	render func() ([]byte, error)
}

// Export writes the static site for cfg and pubs. The output directory is
// recreated on each run.
func Export(ctx context.Context, cfg *config.SiteConfig, pubs []publication.Publication, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = cfg.Output
	}
	if err := prepareOutputDir(outDir, opts.RepoRoot); err != nil {
		return nil, err
	}

	pubs = publication.Annotate(pubs, cfg.Highlight, cfg.Affiliations)
	graph := coauthor.Build(pubs)
	model := viz.ToVis(graph)

	result := &Result{
		BuildID:     uuid.NewString(),
		OutputDir:   outDir,
		Stats:       graph.Stats(),
		GeneratedAt: now().UTC(),
	}
	logger.Debug("exporting site",
		zap.String("build_id", result.BuildID),
		zap.String("output", outDir),
		zap.Int("publications", len(pubs)),
		zap.Int("nodes", result.Stats.Nodes),
		zap.Int("edges", result.Stats.Edges))

	l := newLayout(cfg, opts.ScriptSrc, result.BuildID)
	years := groupByYear(pubs)

	var files []file
	for _, p := range cfg.Pages {
		files = append(files, file{
			path: pagePath(p.Slug),
			render: func() ([]byte, error) {
				return l.renderPage(p, model, years)
			},
		})
	}
	files = append(files,
		file{path: NotFoundFile, render: l.renderNotFound},
		file{path: BibTeXFile, render: func() ([]byte, error) {
			return []byte(bibtex.ToBibTeXList(pubs)), nil
		}},
		file{path: ManifestFile, render: func() ([]byte, error) {
			return manifestJSON(cfg.Title, result, graph)
		}},
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := f.render()
			if err != nil {
				return fmt.Errorf("rendering %s: %w", f.path, err)
			}
			return writeFile(filepath.Join(outDir, f.path), data)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, f := range files {
		result.Files = append(result.Files, f.path)
	}
	sort.Strings(result.Files)
	logger.Info("site exported", zap.String("output", outDir), zap.Int("files", len(result.Files)))
	return result, nil
}

// pagePath maps a slug to its file. Every page is a directory with an index file so
// URLs end in a slash.
func pagePath(slug string) string {
	if slug == "" {
		return IndexFile
	}
	return filepath.Join(slug, IndexFile)
}

// pageURL is the link to a page under basePath.
func pageURL(basePath, slug string) string {
	base := strings.TrimSuffix(basePath, "/")
	if slug == "" {
		return base + "/"
	}
	return base + "/" + slug + "/"
}

// prepareOutputDir empties dir for a fresh build. It refuses the filesystem root,
// the home directory, any site repository, the repository's ancestors and anything
// inside its .labsite directory. An existing non-empty directory is only cleared
// when it holds the manifest of an earlier build.
func prepareOutputDir(dir, repoRoot string) error {
	if dir == "" {
		return fmt.Errorf("output directory not set")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving output directory: %w", err)
	}
	if err := checkOutputDir(abs, repoRoot); err != nil {
		return err
	}

	entries, err := os.ReadDir(abs)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("reading output directory: %w", err)
	case len(entries) > 0:
		if _, err := os.Stat(filepath.Join(abs, ManifestFile)); err != nil {
			return fmt.Errorf("%w: %s is not empty and holds no previous build (%s missing)",
				ErrUnsafeOutputDir, abs, ManifestFile)
		}
	}

	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("clearing output directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}

func checkOutputDir(abs, repoRoot string) error {
	refuse := func(why string) error {
		return fmt.Errorf("%w: %s is %s", ErrUnsafeOutputDir, abs, why)
	}
	if abs == filepath.Dir(abs) {
		return refuse("the filesystem root")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		if h, err := filepath.Abs(home); err == nil && h == abs {
			return refuse("the home directory")
		}
	}
	if config.IsRepository(abs) {
		return refuse("a site repository")
	}
	if repoRoot == "" {
		return nil
	}
	root, err := filepath.Abs(repoRoot)
	if err != nil {
		return fmt.Errorf("resolving repository root: %w", err)
	}
	if within(abs, root) {
		return refuse("the site repository or one of its parents")
	}
	if within(config.SitePath(root), abs) {
		return refuse("inside " + config.SiteDir)
	}
	return nil
}

// within reports whether path is dir or lies below it. Both must be absolute.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func manifestJSON(title string, result *Result, g coauthor.Graph) ([]byte, error) {
	edges := make([]ManifestEdge, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = ManifestEdge{Source: e.Source, Target: e.Target, Weight: e.Weight}
	}
	m := Manifest{
		BuildID:     result.BuildID,
		GeneratedAt: result.GeneratedAt,
		Title:       title,
		Stats:       result.Stats,
		Nodes:       g.Nodes,
		Edges:       edges,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// YearGroup is the publications of one year, in list order.
type YearGroup struct {
	Year         int
	Publications []publication.Publication
}

// groupByYear groups publications by year, most recent first.
func groupByYear(pubs []publication.Publication) []YearGroup {
	index := make(map[int]int)
	var groups []YearGroup
	for _, p := range pubs {
		i, ok := index[p.Year]
		if !ok {
			i = len(groups)
			index[p.Year] = i
			groups = append(groups, YearGroup{Year: p.Year})
		}
		groups[i].Publications = append(groups[i].Publications, p)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Year > groups[j].Year
	})
	return groups
}

// authorList joins author names for display.
func authorList(authors []publication.Author) template.HTML {
	parts := make([]string, len(authors))
	for i, a := range authors {
		name := template.HTMLEscapeString(a.Name)
		if a.Highlighted {
			name = "<strong>" + name + "</strong>"
		}
		parts[i] = name
	}
	return template.HTML(strings.Join(parts, ", "))
}
