package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/unbound-force/paranoid/internal/complexity"
	"github.com/unbound-force/paranoid/internal/config"
	"github.com/unbound-force/paranoid/internal/driver"
	"github.com/unbound-force/paranoid/internal/loader"
	"github.com/unbound-force/paranoid/internal/report"
	"github.com/unbound-force/paranoid/internal/taxonomy"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

// exitCodeError carries a non-zero exit status that is not a tool
// failure, such as untested functions.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	root := &cobra.Command{
		Use:   "paranoid",
		Short: "Paranoid: runtime contracts and generated tests for Go",
		Long: `Paranoid verifies Go functions declared with runtime contracts.
It runs every registered function on values generated from its
argument types and reports contract violations and untested code.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVerifyCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newConfigCmd())

	if err := root.Execute(); err != nil {
		var ec *exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// driverFunc runs a generated driver; tests replace driver.Run.
type driverFunc func(ctx context.Context, opts driver.Options) (*driver.Result, error)

// verifyParams holds the parsed flags for the verify command.
type verifyParams struct {
	pkgPath     string
	format      string
	functions   []string
	configPath  string
	interactive bool
	keep        bool
	verbose     bool
	runDriver   driverFunc
	stdout      io.Writer
	stderr      io.Writer
}

// runVerify is the extracted, testable body of the verify command.
func runVerify(ctx context.Context, p verifyParams) error {
	start := time.Now()
	if p.format != "" && p.format != "text" && p.format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", p.format)
	}
	if p.runDriver == nil {
		p.runDriver = driver.Run
	}

	cfg, cfgPath, err := loadConfig(p.configPath)
	if err != nil {
		return err
	}
	format := p.format
	if format == "" {
		format = cfg.Report.Format
	}

	logger.Info("loading package", "pkg", p.pkgPath)
	res, err := loader.Load("", p.pkgPath)
	if err != nil {
		return err
	}
	if !res.ImportsContract() {
		logger.Warn("package does not import the contract package; no functions will be registered",
			"pkg", res.Pkg.PkgPath)
	}

	logger.Info("running generated tests", "pkg", res.Pkg.PkgPath)
	dres, err := p.runDriver(ctx, driver.Options{
		ModuleDir:  res.ModuleDir(),
		ImportPath: res.Pkg.PkgPath,
		ConfigPath: cfgPath,
		Functions:  p.functions,
		Verbose:    p.verbose,
		Keep:       p.keep,
		Version:    version,
		Stderr:     p.stderr,
	})
	if err != nil {
		return err
	}
	if p.keep {
		logger.Info("kept driver", "dir", dres.Dir)
	}

	results := dres.Results
	attributePackage(results, res.Pkg.Name, res.Pkg.PkgPath)
	ix := complexity.FromFiles(res.Fset, res.Pkg.Syntax, complexity.DefaultOptions())
	complexity.Annotate(results, ix)

	rpt := report.Build(results, p.pkgPath, version, start)
	if len(results) == 0 {
		rpt.Metadata.Warnings = append(rpt.Metadata.Warnings, "no contract-wrapped functions were registered")
	}
	logger.Info("verification complete", "functions", rpt.Summary.Functions,
		"failed", rpt.Summary.Failed, "untested", rpt.Summary.Untested)

	if p.interactive {
		if err := runInteractiveVerify(rpt); err != nil {
			return err
		}
	} else if err := writeVerifyReport(p.stdout, format, rpt, cfg.Report.ShowPassed); err != nil {
		return err
	}

	if code := taxonomy.ExitCode(rpt.Results); code != 0 {
		return &exitCodeError{code: code}
	}
	return nil
}

// loadConfig reads the explicit config file or, when none is given,
// the nearest .paranoid.yaml above the working directory. It returns
// the path it used ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			return nil, "", err
		}
		path = found
	}
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, "", err
		}
		path = abs
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// attributePackage records pkgPath on results whose function belongs
// to the verified package. Contracts registered by its dependencies
// keep an empty package.
func attributePackage(results []taxonomy.FunctionResult, pkgName, pkgPath string) {
	for i := range results {
		if strings.HasPrefix(results[i].Target.Function, pkgName+".") {
			results[i].Target.Package = pkgPath
		}
	}
}

// writeVerifyReport outputs the report in the requested format.
func writeVerifyReport(w io.Writer, format string, rpt taxonomy.Report, showPassed bool) error {
	switch format {
	case "json":
		return report.WriteJSON(w, rpt)
	default:
		return report.WriteText(w, rpt, report.TextOptions{ShowPassed: showPassed})
	}
}

func newVerifyCmd() *cobra.Command {
	var (
		format      string
		functions   []string
		configPath  string
		interactive bool
		keep        bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "verify [package]",
		Short: "Run generated tests on every contract in a package",
		Long: `Load a Go package, build a temporary driver that imports it, and
call every contract-wrapped function it registers with values
generated from the declared argument types.

Exit status is 0 when every function executed at least one case,
2 when some function was untested, and 1 on contract failures.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg := "."
			if len(args) == 1 {
				pkg = args[0]
			}
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}
			return runVerify(cmd.Context(), verifyParams{
				pkgPath:     pkg,
				format:      format,
				functions:   functions,
				configPath:  configPath,
				interactive: interactive,
				keep:        keep,
				verbose:     verbose,
				stdout:      os.Stdout,
				stderr:      os.Stderr,
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "",
		"output format: text or json (default: from config, else text)")
	cmd.Flags().StringSliceVarP(&functions, "function", "f", nil,
		"verify only these functions (repeatable)")
	cmd.Flags().StringVar(&configPath, "config", "",
		"path to .paranoid.yaml (default: nearest one above the working directory)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"launch interactive TUI for browsing results")
	cmd.Flags().BoolVar(&keep, "keep", false,
		"keep the generated driver directory")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"log each function as it is tested")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for paranoid verify output",
		Long: `Print the JSON Schema (Draft 2020-12) that documents the
structure of paranoid verify --format=json output. Useful for
validating output or generating client types.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Schema)
			return err
		},
	}
}

// configParams holds the parsed flags for the config command.
type configParams struct {
	write  bool
	force  bool
	dir    string
	stdout io.Writer
}

// runConfig prints the default configuration or writes it to
// dir/.paranoid.yaml. An existing file is kept unless force is set.
func runConfig(p configParams) error {
	data, err := config.Marshal(config.DefaultConfig())
	if err != nil {
		return err
	}
	if !p.write {
		_, err := p.stdout.Write(data)
		return err
	}

	path := filepath.Join(p.dir, config.FileName)
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if exists && !p.force {
		fmt.Fprintf(p.stdout, "skipped: %s (already exists, use --force to overwrite)\n", path)
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if exists {
		fmt.Fprintf(p.stdout, "overwritten: %s\n", path)
	} else {
		fmt.Fprintf(p.stdout, "created: %s\n", path)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	var write, force bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or write the default .paranoid.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			return runConfig(configParams{
				write:  write,
				force:  force,
				dir:    dir,
				stdout: cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false,
		"write .paranoid.yaml to the working directory")
	cmd.Flags().BoolVar(&force, "force", false,
		"overwrite an existing .paranoid.yaml")

	return cmd
}
