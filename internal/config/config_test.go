package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/root"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"SitePath", SitePath, "/test/root/.labsite"},
		{"ConfigPath", ConfigPath, "/test/root/.labsite/site.yml"},
		{"PublicationsPath", PublicationsPath, "/test/root/.labsite/publications.jsonl"},
		{"CachePath", CachePath, "/test/root/.labsite/cache"},
		{"DBPath", DBPath, "/test/root/.labsite/cache/graph.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(root); got != tt.want {
				t.Errorf("%s() = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsRepository(t *testing.T) {
	tmpDir := t.TempDir()

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true for empty dir")
	}

	if err := os.MkdirAll(SitePath(tmpDir), 0755); err != nil {
		t.Fatalf("Failed to create .labsite: %v", err)
	}
	if !IsRepository(tmpDir) {
		t.Error("IsRepository() = false after creating .labsite")
	}
}

func TestIsRepository_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(SitePath(tmpDir), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true when .labsite is a file")
	}
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(SitePath(tmpDir), 0755); err != nil {
		t.Fatalf("Failed to create .labsite: %v", err)
	}
	subDir := filepath.Join(tmpDir, "content", "posts")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	got, err := FindRepository(subDir)
	if err != nil {
		t.Fatalf("FindRepository() error = %v", err)
	}

	want, _ := filepath.Abs(tmpDir)
	if got != want {
		t.Errorf("FindRepository() = %v, want %v", got, want)
	}
}

func TestFindRepository_NotFound(t *testing.T) {
	_, err := FindRepository(t.TempDir())
	if !errors.Is(err, ErrNotRepository) {
		t.Errorf("FindRepository() error = %v, want ErrNotRepository", err)
	}
}

func setupRepo(t *testing.T, cfg *SiteConfig) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(SitePath(root), 0755); err != nil {
		t.Fatalf("Failed to create .labsite: %v", err)
	}
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return root
}

func TestSiteConfig_SaveAndLoad(t *testing.T) {
	t.Setenv(EnvOutput, "")
	t.Setenv(EnvBasePath, "")

	cfg := Default("Matsen Lab")
	cfg.Highlight = []string{"Frederick Matsen"}
	cfg.Affiliations = map[string]string{"Frederick Matsen": "Fred Hutch"}
	root := setupRepo(t, cfg)

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Title != "Matsen Lab" {
		t.Errorf("Title = %q, want Matsen Lab", loaded.Title)
	}
	if len(loaded.Pages) != 2 || loaded.Pages[1].Slug != "publications" {
		t.Errorf("Pages = %+v", loaded.Pages)
	}
	if loaded.Affiliations["Frederick Matsen"] != "Fred Hutch" {
		t.Errorf("Affiliations = %v", loaded.Affiliations)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	root := setupRepo(t, Default("Lab"))
	t.Setenv(EnvOutput, "/tmp/public")
	t.Setenv(EnvBasePath, "/lab")

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Output != "/tmp/public" {
		t.Errorf("Output = %q, want /tmp/public", loaded.Output)
	}
	if loaded.BasePath != "/lab" {
		t.Errorf("BasePath = %q, want /lab", loaded.BasePath)
	}

	raw, err := Read(root)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if raw.Output != DefaultOutput {
		t.Errorf("Read() Output = %q, want %q", raw.Output, DefaultOutput)
	}
}

func TestLoad_NotFound(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load() should fail without site.yml")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	root := t.TempDir()
	os.MkdirAll(SitePath(root), 0755)
	if err := os.WriteFile(ConfigPath(root), []byte("title: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	_, err := Load(root)
	if err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("Load() error = %v, want parsing error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *SiteConfig)
		wantErr string
	}{
		{"default is valid", func(c *SiteConfig) {}, ""},
		{"missing title", func(c *SiteConfig) { c.Title = "" }, "Title"},
		{"missing publications", func(c *SiteConfig) { c.Publications = "" }, "Publications"},
		{"relative base path", func(c *SiteConfig) { c.BasePath = "lab" }, "BasePath"},
		{"bad slug", func(c *SiteConfig) { c.Pages[1].Slug = "Bad Slug" }, "Slug"},
		{"page without title", func(c *SiteConfig) { c.Pages[0].Title = "" }, "Title"},
		{"duplicate slug", func(c *SiteConfig) {
			c.Pages = append(c.Pages, Page{Slug: "publications", Title: "Again"})
		}, "duplicate page slug"},
		{"two home pages", func(c *SiteConfig) {
			c.Pages = append(c.Pages, Page{Title: "Another home"})
		}, "more than one home page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("Lab")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default("Lab")

	if err := cfg.Set("graph.title", "Collaborators"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := cfg.Get("graph.title")
	if err != nil || got != "Collaborators" {
		t.Errorf("Get(graph.title) = %q, %v", got, err)
	}

	if err := cfg.Set("title", ""); err == nil {
		t.Error("Set(title, \"\") should fail validation")
	}
	if cfg.Title != "Lab" {
		t.Errorf("Title = %q after rejected Set, want Lab", cfg.Title)
	}

	if _, err := cfg.Get("nope"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Get(nope) error = %v, want ErrUnknownKey", err)
	}
}

func TestResolvePaths(t *testing.T) {
	cfg := Default("Lab")
	if got := cfg.PublicationsSource("/site"); got != "/site/publications.bib" {
		t.Errorf("PublicationsSource() = %q", got)
	}
	cfg.Output = "/abs/out"
	if got := cfg.OutputDir("/site"); got != "/abs/out" {
		t.Errorf("OutputDir() = %q, want absolute path kept", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got := ExpandPath("~/site"); got != filepath.Join(home, "site") {
		t.Errorf("ExpandPath(~/site) = %q", got)
	}
	if got := ExpandPath("/abs"); got != "/abs" {
		t.Errorf("ExpandPath(/abs) = %q", got)
	}
}
