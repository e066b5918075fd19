package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/labsite/internal/coauthor"
	"github.com/matsen/labsite/internal/config"
	"github.com/matsen/labsite/internal/publication"
	"github.com/matsen/labsite/internal/site"
)

func testPubs() []publication.Publication {
	return []publication.Publication{
		{ID: "A2020", Title: "Paper A", Year: 2020, Authors: []publication.Author{{Name: "X", Highlighted: true}, {Name: "Y"}}},
		{ID: "B2021", Title: "Paper B", Year: 2021, Authors: []publication.Author{{Name: "X"}, {Name: "Y"}}},
	}
}

func TestSelectByKeys(t *testing.T) {
	pubs := testPubs()

	got, err := selectByKeys(pubs, []string{"B2021", " A2020 ", ""})
	if err != nil {
		t.Fatalf("selectByKeys() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "B2021" || got[1].ID != "A2020" {
		t.Errorf("selectByKeys() = %+v, want B2021 then A2020", got)
	}

	if _, err := selectByKeys(pubs, []string{"Missing"}); err == nil {
		t.Error("selectByKeys() should fail on an unknown key")
	}
}

func TestValidationMessages(t *testing.T) {
	if msgs := validationMessages(nil); msgs != nil {
		t.Errorf("validationMessages(nil) = %v, want nil", msgs)
	}

	err := publication.ValidateAll([]publication.Publication{
		{Title: "", Year: 2020, Authors: []publication.Author{{Name: "X"}}},
		{Title: "Fine", Year: 2020, Authors: []publication.Author{{Name: "X"}}},
		{Title: "No authors", Year: 2020},
	})
	if got := validationMessages(err); len(got) != 2 {
		t.Errorf("validationMessages() = %v, want 2 messages", got)
	}

	if got := validationMessages(errors.New("single")); len(got) != 1 {
		t.Errorf("validationMessages(single) = %v", got)
	}
}

func TestPointConfigAt(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(config.SitePath(root), 0755); err != nil {
		t.Fatal(err)
	}
	if err := config.Default("Lab").Save(root); err != nil {
		t.Fatal(err)
	}

	path := config.PublicationsPath(root)
	changed, err := pointConfigAt(root, path)
	if err != nil {
		t.Fatalf("pointConfigAt() error = %v", err)
	}
	if !changed {
		t.Error("pointConfigAt() should report a change the first time")
	}

	cfg, err := config.Read(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Publications != filepath.Join(config.SiteDir, config.PublicationsFile) {
		t.Errorf("Publications = %q", cfg.Publications)
	}

	changed, err = pointConfigAt(root, path)
	if err != nil {
		t.Fatalf("pointConfigAt() error = %v", err)
	}
	if changed {
		t.Error("pointConfigAt() should be a no-op once pointed")
	}
}

func TestNewGraphResponse(t *testing.T) {
	g := coauthor.Build(testPubs())

	resp := newGraphResponse(g, false)
	if resp.Highlighted != "X" {
		t.Errorf("Highlighted = %q, want X", resp.Highlighted)
	}
	if len(resp.Edges) != 1 || resp.Edges[0].Weight != 2 {
		t.Fatalf("Edges = %+v", resp.Edges)
	}
	if resp.Edges[0].Publications != nil {
		t.Error("publications should be dropped by default")
	}
	if g.Edges[0].Publications == nil {
		t.Error("newGraphResponse() mutated the graph")
	}

	if full := newGraphResponse(g, true); len(full.Edges[0].Publications) != 2 {
		t.Errorf("with publications: %d, want 2", len(full.Edges[0].Publications))
	}
}

func TestBuildSite(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(config.SitePath(root), 0755); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default("Lab")
	cfg.Publications = "pubs.bib"
	if err := cfg.Save(root); err != nil {
		t.Fatal(err)
	}
	bib := `@article{A2020,
  author = {X and Y},
  title = {Paper A},
  year = {2020},
}
@article{B2021,
  author = {X and Y and Z},
  title = {Paper B},
  year = {2021},
}`
	if err := os.WriteFile(filepath.Join(root, "pubs.bib"), []byte(bib), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvOutput, "")
	t.Setenv(config.EnvBasePath, "")

	out := filepath.Join(t.TempDir(), "public")
	res, err := buildSite(context.Background(), root, out, "")
	if err != nil {
		t.Fatalf("buildSite() error = %v", err)
	}
	if res.Stats.Nodes != 3 || res.Stats.Edges != 3 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if _, err := os.Stat(filepath.Join(out, "404.html")); err != nil {
		t.Errorf("404.html missing: %v", err)
	}

	db, err := openDB(root)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	n, err := db.EdgeCount()
	if err != nil || n != 3 {
		t.Errorf("cached edges = %d, %v; want 3", n, err)
	}
}

func TestBuildSite_RefusesSiteDirectoryOutput(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(config.SitePath(root), 0755); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default("Lab")
	cfg.Publications = "pubs.bib"
	if err := cfg.Save(root); err != nil {
		t.Fatal(err)
	}
	bib := "@article{A2020,\n  author = {X and Y},\n  title = {Paper A},\n  year = {2020},\n}\n"
	if err := os.WriteFile(filepath.Join(root, "pubs.bib"), []byte(bib), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvOutput, "")
	t.Setenv(config.EnvBasePath, "")

	for _, out := range []string{config.SitePath(root), filepath.Join(root, "..")} {
		if _, err := buildSite(context.Background(), root, out, ""); !errors.Is(err, site.ErrUnsafeOutputDir) {
			t.Errorf("buildSite(%s) error = %v, want ErrUnsafeOutputDir", out, err)
		}
		if _, err := os.Stat(config.ConfigPath(root)); err != nil {
			t.Fatalf("site.yml removed after building into %s: %v", out, err)
		}
	}
}
