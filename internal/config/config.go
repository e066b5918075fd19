// Package config handles site configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	SiteDir          = ".labsite"
	ConfigFile       = "site.yml"
	PublicationsFile = "publications.jsonl"
	CacheDir         = "cache"
	DBFile           = "graph.db"
	EnvFile          = ".env"

	// DefaultOutput is the export directory used when none is configured.
	DefaultOutput = "out"
)

// Environment variables that override values from site.yml.
const (
	EnvOutput   = "LABSITE_OUTPUT"
	EnvBasePath = "LABSITE_BASE_PATH"
)

// ErrNotRepository is returned when no .labsite directory can be found.
var ErrNotRepository = errors.New("not in a labsite repository (no .labsite directory found)")

// SiteConfig is the site configuration stored in .labsite/site.yml.
type SiteConfig struct {
	Title        string            `yaml:"title" validate:"required"`
	Description  string            `yaml:"description,omitempty"`
	Publications string            `yaml:"publications" validate:"required"` // .bib or .jsonl, relative to the repository root
	Output       string            `yaml:"output" validate:"required"`
	BasePath     string            `yaml:"base_path,omitempty" validate:"omitempty,startswith=/"`
	Highlight    []string          `yaml:"highlight,omitempty" validate:"dive,required"`
	Affiliations map[string]string `yaml:"affiliations,omitempty"`
	Graph        GraphConfig       `yaml:"graph"`
	Pages        []Page            `yaml:"pages,omitempty" validate:"dive"`
}

// GraphConfig is the heading shown above the co-author network.
type GraphConfig struct {
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Page is one exported page. The empty slug is the home page.
type Page struct {
	Slug     string `yaml:"slug,omitempty" validate:"omitempty,slug"`
	Title    string `yaml:"title" validate:"required"`
	Body     string `yaml:"body,omitempty"`     // HTML
	Graph    bool   `yaml:"graph,omitempty"`    // show the co-author network
	Embedded bool   `yaml:"embedded,omitempty"` // compact graph sizing
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// Default returns the configuration written by `labsite init`.
func Default(title string) *SiteConfig {
	return &SiteConfig{
		Title:        title,
		Publications: "publications.bib",
		Output:       DefaultOutput,
		Graph: GraphConfig{
			Title:       "Co-author Network",
			Description: "Click an edge to copy the shared papers.",
		},
		Pages: []Page{
			{Title: "Home", Body: "<p>Welcome.</p>", Graph: true, Embedded: true},
			{Slug: "publications", Title: "Publications", Graph: true},
		},
	}
}

// SitePath returns the path to the .labsite directory from a root path.
func SitePath(root string) string {
	return filepath.Join(root, SiteDir)
}

// ConfigPath returns the path to site.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, SiteDir, ConfigFile)
}

// PublicationsPath returns the path to the imported publications.jsonl from a root path.
func PublicationsPath(root string) string {
	return filepath.Join(root, SiteDir, PublicationsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, SiteDir, CacheDir)
}

// DBPath returns the path to graph.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, SiteDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a labsite repository.
func IsRepository(root string) bool {
	info, err := os.Stat(SitePath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a labsite repository.
// Returns the repository root path or ErrNotRepository if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotRepository
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root,
// applies environment overrides and validates the result.
func Load(root string) (*SiteConfig, error) {
	cfg, err := Read(root)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read parses site.yml as stored, without environment overrides or validation.
func Read(root string) (*SiteConfig, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg SiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *SiteConfig) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ApplyEnv overrides the output directory and base path from the environment.
func (c *SiteConfig) ApplyEnv() {
	c.Output = GetConfigValue(EnvOutput, c.Output)
	c.BasePath = GetConfigValue(EnvBasePath, c.BasePath)
}

// Validate checks field constraints and that page slugs are unique.
func (c *SiteConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(c.Pages))
	for _, p := range c.Pages {
		if seen[p.Slug] {
			if p.Slug == "" {
				return fmt.Errorf("invalid config: more than one home page")
			}
			return fmt.Errorf("invalid config: duplicate page slug %q", p.Slug)
		}
		seen[p.Slug] = true
	}
	return nil
}

// PublicationsSource returns the absolute path of the configured publication file.
func (c *SiteConfig) PublicationsSource(root string) string {
	return resolve(root, c.Publications)
}

// OutputDir returns the absolute path of the export directory.
func (c *SiteConfig) OutputDir(root string) string {
	return resolve(root, c.Output)
}

func resolve(root, path string) string {
	path = ExpandPath(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
