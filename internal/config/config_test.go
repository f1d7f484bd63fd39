package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/unbound-force/paranoid/pkg/settings"
)

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, FileName)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", p, err)
	}
	return p
}

func TestDefaultConfig_MatchesSettingsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	store := settings.NewStore()
	if err := cfg.Apply(store); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	snap := store.Resolve(settings.Overlay{})
	if !snap.Enabled || snap.MaxRuntime != 2*time.Second || snap.MaxCache != 2 {
		t.Errorf("defaults = %+v, want enabled, 2s, cache 2", snap)
	}
	if cfg.Report.Format != "text" {
		t.Errorf("Report.Format = %q, want text", cfg.Report.Format)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if *cfg.Settings.MaxCache != 2 {
		t.Errorf("MaxCache = %d, want 2", *cfg.Settings.MaxCache)
	}
}

func TestLoad_Overrides(t *testing.T) {
	p := writeFile(t, t.TempDir(), `
settings:
  max_cache: 10
  namespace:
    limit: 3
report:
  format: json
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *cfg.Settings.MaxCache != 10 {
		t.Errorf("MaxCache = %d, want 10", *cfg.Settings.MaxCache)
	}
	// Absent keys keep their defaults.
	if *cfg.Settings.MaxRuntime != 2 {
		t.Errorf("MaxRuntime = %v, want 2", *cfg.Settings.MaxRuntime)
	}
	if cfg.Report.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Report.Format)
	}

	store := settings.NewStore()
	if err := cfg.Apply(store); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	snap := store.Resolve(settings.Overlay{})
	if snap.MaxCache != 10 {
		t.Errorf("store max_cache = %d, want 10", snap.MaxCache)
	}
	if snap.Namespace["limit"] != 3 {
		t.Errorf("store namespace[limit] = %v, want 3", snap.Namespace["limit"])
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"negative cache", "settings:\n  max_cache: -1\n", "max_cache"},
		{"negative runtime", "settings:\n  max_runtime: -0.5\n", "max_runtime"},
		{"bad format", "report:\n  format: xml\n", "report format"},
		{"bad yaml", "settings: [\n", "parsing config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), tt.content)
			_, err := Load(p)
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_InvalidSettingIsTyped(t *testing.T) {
	p := writeFile(t, t.TempDir(), "settings:\n  max_cache: -1\n")
	_, err := Load(p)
	var ise *settings.InvalidSettingError
	if !errors.As(err, &ise) {
		t.Errorf("Load() error = %v, want *settings.InvalidSettingError", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want ErrNotExist", err)
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "settings: {}\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(nested)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if got != want {
		t.Errorf("Find() = %q, want %q", got, want)
	}
}

func TestFind_None(t *testing.T) {
	// The temp dir's ancestors are assumed not to hold a config file.
	got, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if got != "" {
		t.Skipf("found an ancestor config at %s", got)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	data, err := Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.HasPrefix(string(data), "# paranoid configuration") {
		t.Errorf("Marshal() missing header: %s", data)
	}
	p := writeFile(t, t.TempDir(), string(data))
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load(marshalled) error: %v", err)
	}
	if *cfg.Settings.Enabled != true || cfg.Report.Format != "text" {
		t.Errorf("round trip = %+v, want defaults", cfg)
	}
}
