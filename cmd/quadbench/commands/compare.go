package commands

import (
	"errors"

	"github.com/alexshd/quadbench"
	"github.com/spf13/cobra"
)

func newCompareCommand() *cobra.Command {
	var (
		tolerance float64
		samples   int
		seed      uint64
		rules     []string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Integrate once with every method and report the errors",
		Long: `Integrate the configured function with each quadrature rule at one
tolerance and with Monte Carlo sampling, then report each estimate with its
absolute and relative error against the exact reference value.

A method that fails (for example, does not converge within the iteration
bound) is reported with a diagnostic; the other methods still run.`,
		Example: `  # Reference scenario: x^2·sin(x) on [0, 5] at 1e-6
  quadbench compare

  # Only the fast rules, looser tolerance
  quadbench compare --rules midpoint,trapezoid,simpson --tolerance 1e-4

  # Machine-readable output
  quadbench compare --json --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := newRunEnv(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, env.close(cmd)) }()

			flags := cmd.Flags()
			if flags.Changed("tolerance") {
				env.cfg.Tolerance = tolerance
			}
			if flags.Changed("samples") {
				env.cfg.MonteCarlo.Samples = samples
			}
			if flags.Changed("seed") {
				env.cfg.MonteCarlo.Seed = seed
			}
			if flags.Changed("rules") {
				env.cfg.Rules = rules
			}
			if err := env.cfg.Validate(); err != nil {
				return err
			}

			opts, err := env.cfg.CompareOptions(env.logger, env.metrics)
			if err != nil {
				return err
			}

			ctx, cancel := env.runContext(cmd)
			defer cancel()

			report, err := quadbench.Compare(ctx, opts)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "convergence tolerance (overrides config)")
	cmd.Flags().IntVar(&samples, "samples", 0, "Monte Carlo sample count (overrides config)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Monte Carlo seed (overrides config)")
	cmd.Flags().StringSliceVar(&rules, "rules", nil, "rules to run: left, midpoint, trapezoid, simpson")

	return cmd
}
