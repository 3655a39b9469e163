package commands

import (
	"errors"

	"github.com/alexshd/quadbench"
	"github.com/spf13/cobra"
)

func newSweepCommand() *cobra.Command {
	var (
		start   float64
		stop    float64
		step    float64
		workers int
		rules   []string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Record partition counts over a tolerance grid",
		Long: `Run every rule at every tolerance in [start, stop) with spacing step and
record the partition count each rule needed to converge.

Cells run in parallel. A cell that does not converge is shown as a gap
and the sweep carries on.`,
		Example: `  # Default grid: 1e-5 to 1e-2 in steps of 2.5e-5
  quadbench sweep

  # Coarse grid, Simpson only
  quadbench sweep --start 1e-4 --stop 1e-2 --step 1e-3 --rules simpson

  # Curves as JSON for plotting
  quadbench sweep --json > curves.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := newRunEnv(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, env.close(cmd)) }()

			flags := cmd.Flags()
			if flags.Changed("start") {
				env.cfg.Sweep.Start = start
			}
			if flags.Changed("stop") {
				env.cfg.Sweep.Stop = stop
			}
			if flags.Changed("step") {
				env.cfg.Sweep.Step = step
			}
			if flags.Changed("workers") {
				env.cfg.Sweep.Workers = workers
			}
			if flags.Changed("rules") {
				env.cfg.Rules = rules
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

			ctx, cancel := env.runContext(cmd)
			defer cancel()

			env.logger.Info("sweep starting",
				"tolerances", len(tols),
				"rules", len(opts.Rules),
				"workers", opts.Workers)

			res, err := quadbench.Sweep(ctx, env.cfg.Interval(), env.cfg.Integrand, tols, opts)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), newSweepOutput(res))
			}
			renderSweep(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().Float64Var(&start, "start", 0, "first tolerance (overrides config)")
	cmd.Flags().Float64Var(&stop, "stop", 0, "tolerance bound, excluded (overrides config)")
	cmd.Flags().Float64Var(&step, "step", 0, "tolerance spacing (overrides config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent engine runs (0 = number of CPUs)")
	cmd.Flags().StringSliceVar(&rules, "rules", nil, "rules to run: left, midpoint, trapezoid, simpson")

	return cmd
}

// sweepOutput is the JSON form of a sweep; failed cells carry their error.
type sweepOutput struct {
	Interval   quadbench.Interval `json:"interval"`
	Tolerances []float64          `json:"tolerances"`
	Failed     int                `json:"failed"`
	Curves     []curveOutput      `json:"curves"`
}

type curveOutput struct {
	Rule   quadbench.RuleKind `json:"rule"`
	Title  string             `json:"title"`
	Points []pointOutput      `json:"points"`
}

type pointOutput struct {
	Tolerance  float64 `json:"tolerance"`
	N          int     `json:"n,omitempty"`
	Iterations int     `json:"iterations,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func newSweepOutput(res quadbench.SweepResult) sweepOutput {
	out := sweepOutput{
		Interval:   res.Interval,
		Tolerances: res.Tolerances,
		Failed:     res.Failures(),
		Curves:     make([]curveOutput, 0, len(res.Curves)),
	}
	for _, c := range res.Curves {
		co := curveOutput{Rule: c.Rule, Title: c.Title, Points: make([]pointOutput, len(c.Points))}
		for i, p := range c.Points {
			po := pointOutput{Tolerance: p.Tolerance, N: p.N, Iterations: p.Iterations}
			if p.Err != nil {
				po.Error = p.Err.Error()
			}
			co.Points[i] = po
		}
		out.Curves = append(out.Curves, co)
	}
	return out
}
