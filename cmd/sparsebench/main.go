// Command sparsebench exercises the sparsekit solver pipeline on
// MatrixMarket files: symbolic analysis, numeric factorization, solve, and
// refactorization, with timing and accuracy reporting.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sparsekit/sparsekit/lu"
)

type rootOptions struct {
	verbose bool
	config  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "sparsebench",
		Short:        "Benchmark the sparsekit direct solver on MatrixMarket matrices",
		Long:         "sparsebench loads a sparse matrix in MatrixMarket coordinate format,\nruns the analyze/factor/solve pipeline against it, and reports structure,\ntiming, and accuracy statistics.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVarP(&opts.config, "config", "c", "", "YAML file with solver options")

	cmd.AddCommand(newInfoCommand(opts))
	cmd.AddCommand(newSolveCommand(opts))

	return cmd
}

// logger builds the stderr text logger; --verbose lowers the level to debug.
func (o *rootOptions) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// solverOptions loads the optional YAML config into lu options.
func (o *rootOptions) solverOptions() ([]lu.Option, error) {
	if o.config == "" {
		return nil, nil
	}
	cfg, err := loadConfig(o.config)
	if err != nil {
		return nil, err
	}

	return cfg.options()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
