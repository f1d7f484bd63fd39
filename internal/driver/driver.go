// Package driver generates and runs the temporary main package that
// imports a package under verification and tests every contract it
// registers.
package driver

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/google/uuid"

	"github.com/unbound-force/paranoid/internal/taxonomy"
)

//go:embed templates/main.go.tmpl
var templates embed.FS

var mainTemplate = template.Must(template.ParseFS(templates, "templates/main.go.tmpl"))

// DirPrefix starts the name of every generated driver directory.
const DirPrefix = "paranoid-driver-"

// Options configures one driver run.
type Options struct {
	// ModuleDir is the root of the module containing the target
	// package. The driver is generated inside it so the target's
	// go.mod resolves every import.
	ModuleDir string

	// ImportPath is the package under verification.
	ImportPath string

	// ConfigPath is passed to the driver's --config flag when set.
	ConfigPath string

	// Functions restricts the run to these function names.
	Functions []string

	// Verbose enables per-function debug logging in the driver.
	Verbose bool

	// Keep leaves the generated directory in place after the run.
	Keep bool

	// Version is stamped into the generated file header.
	Version string

	// GoCmd is the go binary. Defaults to "go".
	GoCmd string

	// Stderr receives the driver's tally and log output. Defaults to
	// os.Stderr.
	Stderr io.Writer
}

// Result is the outcome of one driver run.
type Result struct {
	// Dir is the generated directory. It no longer exists unless
	// Options.Keep was set.
	Dir string

	// Results holds one entry per tested function.
	Results []taxonomy.FunctionResult

	// ExitCode is the driver process status.
	ExitCode int
}

// Render returns the source of a driver main package importing
// importPath.
func Render(importPath, version string) ([]byte, error) {
	if version == "" {
		version = "dev"
	}
	var buf bytes.Buffer
	err := mainTemplate.Execute(&buf, struct {
		ImportPath string
		Version    string
	}{importPath, version})
	if err != nil {
		return nil, fmt.Errorf("rendering driver: %w", err)
	}
	return buf.Bytes(), nil
}

// Write creates a fresh driver directory under moduleDir and writes
// main.go into it. It returns the directory.
func Write(moduleDir, importPath, version string) (string, error) {
	src, err := Render(importPath, version)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(moduleDir, DirPrefix+uuid.NewString()[:8])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.go"), src, 0o644); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("creating %s: %w", filepath.Join(dir, "main.go"), err)
	}
	return dir, nil
}

// Args returns the driver command line for opts.
func Args(opts Options) []string {
	args := []string{"--target", opts.ImportPath}
	if opts.ConfigPath != "" {
		args = append(args, "--config", opts.ConfigPath)
	}
	for _, f := range opts.Functions {
		args = append(args, "--function", f)
	}
	if opts.Verbose {
		args = append(args, "--verbose")
	}
	return args
}

// Run generates the driver, runs it with "go run" and decodes the
// results it writes to stdout. A non-zero driver status is not an
// error as long as results were produced; it is reported in
// Result.ExitCode.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.ModuleDir == "" {
		return nil, errors.New("driver: module directory is required (is the target in a Go module?)")
	}
	if opts.GoCmd == "" {
		opts.GoCmd = "go"
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	dir, err := Write(opts.ModuleDir, opts.ImportPath, opts.Version)
	if err != nil {
		return nil, err
	}
	if !opts.Keep {
		defer os.RemoveAll(dir)
	}

	args := append([]string{"run", "."}, Args(opts)...)
	cmd := exec.CommandContext(ctx, opts.GoCmd, args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = opts.Stderr

	res := &Result{Dir: dir}
	runErr := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case errors.As(runErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("running driver: %w", runErr)
	}

	results, err := Decode(stdout.Bytes())
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("driver failed (%v) without results", runErr)
		}
		return nil, err
	}
	res.Results = results
	return res, nil
}

// Decode parses the JSON array a driver writes.
func Decode(data []byte) ([]taxonomy.FunctionResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("driver produced no output")
	}
	var results []taxonomy.FunctionResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decoding driver output: %w", err)
	}
	return results, nil
}
