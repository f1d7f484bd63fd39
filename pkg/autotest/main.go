package autotest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/unbound-force/paranoid/internal/config"
	"github.com/unbound-force/paranoid/internal/taxonomy"
	"github.com/unbound-force/paranoid/pkg/contract"
	"github.com/unbound-force/paranoid/pkg/settings"
)

// Main is the entry point of a generated test driver. A driver
// blank-imports the packages under test, so their wrapped functions
// are in contract.DefaultRegistry, and then calls
//
//	os.Exit(autotest.Main(os.Args[1:], os.Stdout, os.Stderr))
//
// Results are written to stdout as a JSON array; the tally and
// warnings go to stderr. The exit status is 1 when a function failed,
// 2 when some function executed no case and 0 otherwise.
func Main(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return runMain(ctx, mainParams{
		args:     args,
		registry: contract.DefaultRegistry,
		store:    settings.Global,
		stdout:   stdout,
		stderr:   stderr,
	})
}

// mainParams holds the inputs of one driver run.
type mainParams struct {
	args     []string
	registry *contract.Registry
	store    *settings.Store
	stdout   io.Writer
	stderr   io.Writer
}

// runMain is the extracted, testable body of Main.
func runMain(ctx context.Context, p mainParams) int {
	var (
		configPath string
		functions  []string
		target     string
		verbose    bool
		code       int
	)
	logger := charmlog.NewWithOptions(p.stderr, charmlog.Options{
		ReportTimestamp: false,
	})

	cmd := &cobra.Command{
		Use:           "paranoid-driver",
		Short:         "Run generated tests on every registered contract",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Apply(p.store); err != nil {
				return err
			}
			if len(functions) == 0 {
				functions = cfg.Report.Functions
			}
			fns, err := selectFunctions(p.registry, functions)
			if err != nil {
				return err
			}

			results := Run(ctx, fns, Options{Logger: logger, Out: p.stderr, Target: target})
			enc := json.NewEncoder(p.stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return fmt.Errorf("encoding results: %w", err)
			}
			code = taxonomy.ExitCode(results)
			return nil
		},
	}
	cmd.SetArgs(p.args)
	cmd.SetOut(p.stdout)
	cmd.SetErr(p.stderr)
	cmd.Flags().StringVar(&configPath, "config", "",
		"path to a .paranoid.yaml file (default: built-in settings)")
	cmd.Flags().StringSliceVar(&functions, "function", nil,
		"test only these functions (repeatable)")
	cmd.Flags().StringVar(&target, "target", "registry",
		"name of the tested package, used in the summary line")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"log each function as it is tested")

	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error("driver failed", "err", err)
		return 1
	}
	return code
}

// selectFunctions returns the registered functions, restricted to the
// given names when any are given. Every name must exist.
func selectFunctions(reg *contract.Registry, names []string) ([]*contract.Function, error) {
	if len(names) == 0 {
		return reg.Functions(), nil
	}
	fns := make([]*contract.Function, 0, len(names))
	for _, n := range names {
		f, ok := reg.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("function %q is not registered", n)
		}
		fns = append(fns, f)
	}
	return fns, nil
}
