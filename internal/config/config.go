// Package config loads the project configuration file (.paranoid.yaml)
// and applies it to a settings store.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/unbound-force/paranoid/pkg/settings"
)

// FileName is the configuration file looked up by Find.
const FileName = ".paranoid.yaml"

// Config is the parsed configuration file.
type Config struct {
	Settings Settings `yaml:"settings"`
	Report   Report   `yaml:"report"`
}

// Settings mirrors the keys of pkg/settings. Nil fields leave the
// store's current value alone.
type Settings struct {
	Enabled    *bool          `yaml:"enabled,omitempty"`
	MaxRuntime *float64       `yaml:"max_runtime,omitempty"`
	MaxCache   *int           `yaml:"max_cache,omitempty"`
	Namespace  map[string]any `yaml:"namespace,omitempty"`
}

// Report controls how verify results are rendered.
type Report struct {
	// Format is "text" or "json".
	Format string `yaml:"format"`

	// ShowPassed lists passing functions in the text report. When
	// false only failed and untested functions get a row.
	ShowPassed bool `yaml:"show_passed"`

	// Functions restricts verification to these function names.
	// Empty means every registered function.
	Functions []string `yaml:"functions,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	enabled := true
	maxRuntime := 2.0
	maxCache := 2
	return &Config{
		Settings: Settings{
			Enabled:    &enabled,
			MaxRuntime: &maxRuntime,
			MaxCache:   &maxCache,
		},
		Report: Report{
			Format:     "text",
			ShowPassed: true,
		},
	}
}

// Load reads a configuration file. Fields absent from the file keep
// their DefaultConfig values. An empty path yields DefaultConfig.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Find looks for FileName in dir and its parents and returns the first
// match. It returns "" when no file exists.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		p := filepath.Join(dir, FileName)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("checking %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Validate checks the report section and every setting value.
func (c *Config) Validate() error {
	switch c.Report.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid report format %q (want text or json)", c.Report.Format)
	}
	return c.Apply(settings.NewStore())
}

// Values returns the configured settings keyed by setting name.
func (c *Config) Values() map[string]any {
	v := make(map[string]any)
	s := c.Settings
	if s.Enabled != nil {
		v[settings.Enabled] = *s.Enabled
	}
	if s.MaxRuntime != nil {
		v[settings.MaxRuntime] = *s.MaxRuntime
	}
	if s.MaxCache != nil {
		v[settings.MaxCache] = *s.MaxCache
	}
	if s.Namespace != nil {
		v[settings.Namespace] = s.Namespace
	}
	return v
}

// Apply pushes the configured settings into store through its
// validating setter.
func (c *Config) Apply(store *settings.Store) error {
	return store.SetAll(c.Values())
}

// Marshal renders cfg as YAML with a leading comment.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	header := "# paranoid configuration. max_runtime is in seconds; 0 disables the limit.\n"
	return append([]byte(header), data...), nil
}
