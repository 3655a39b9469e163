package commands

import (
	"errors"

	"github.com/alexshd/quadbench"
	"github.com/spf13/cobra"
)

func newScalingCommand() *cobra.Command {
	var (
		levels   []int
		repeats  int
		maxProcs int
	)

	cmd := &cobra.Command{
		Use:   "scaling",
		Short: "Measure sweep throughput at several worker counts",
		Long: `Run the configured sweep once per worker count and report wall time,
cells per second, speedup and efficiency relative to the first level.`,
		Example: `  # Default levels 1, 2, 4, 8
  quadbench scaling --rules midpoint,trapezoid,simpson

  # Best of three runs, pinned to 4 CPUs
  quadbench scaling --levels 1,2,4 --repeats 3 --max-procs 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := newRunEnv(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, env.close(cmd)) }()

			if cmd.Flags().Changed("rules") {
				env.cfg.Rules, _ = cmd.Flags().GetStringSlice("rules")
			}
			if err := env.cfg.Validate(); err != nil {
				return err
			}

			tols, err := env.cfg.Tolerances()
			if err != nil {
				return err
			}
			opts, err := env.cfg.SweepOptions(env.logger, env.metrics)
			if err != nil {
				return err
			}

			cfg := quadbench.DefaultScalingConfig()
			if len(levels) > 0 {
				cfg.Levels = levels
			}
			cfg.Repeats = repeats
			cfg.MaxProcs = maxProcs

			ctx, cancel := env.runContext(cmd)
			defer cancel()

			results, err := quadbench.MeasureScaling(ctx, env.cfg.Interval(), env.cfg.Integrand, tols, opts, cfg)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), newScalingOutput(results))
			}
			renderScaling(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&levels, "levels", nil, "worker counts to test (default 1,2,4,8)")
	cmd.Flags().IntVar(&repeats, "repeats", 1, "sweeps per level; the fastest is kept")
	cmd.Flags().IntVar(&maxProcs, "max-procs", 0, "GOMAXPROCS limit (0 = runtime default)")
	cmd.Flags().StringSlice("rules", nil, "rules to run: left, midpoint, trapezoid, simpson")

	return cmd
}

type scalingOutput struct {
	Workers    int     `json:"workers"`
	Seconds    float64 `json:"seconds"`
	Cells      int     `json:"cells"`
	Failed     int     `json:"failed"`
	Throughput float64 `json:"cells_per_second"`
	Speedup    float64 `json:"speedup"`
	Efficiency float64 `json:"efficiency"`
}

func newScalingOutput(results []quadbench.ScalingResult) []scalingOutput {
	speedup := quadbench.Speedup(results)
	out := make([]scalingOutput, len(results))
	for i, r := range results {
		out[i] = scalingOutput{
			Workers:    r.Workers,
			Seconds:    r.Duration.Seconds(),
			Cells:      r.Cells,
			Failed:     r.Failed,
			Throughput: r.Throughput,
			Speedup:    speedup[i],
			Efficiency: r.Efficiency(results[0]),
		}
	}
	return out
}
