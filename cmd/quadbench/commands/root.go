package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alexshd/quadbench"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	// Global flags
	configPath  string
	jsonOutput  bool
	logLevel    string
	timeout     time.Duration
	showMetrics bool
	traceSpans  bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quadbench",
		Short: "Compare how numerical integration rules converge",
		Long: `quadbench integrates a function with left rectangles, midpoint rectangles,
trapezoids, Simpson's rule and Monte Carlo sampling, and measures each
estimate against an exact reference value.

Commands:
  - compare: one tolerance, every method, absolute and relative error
  - sweep:   partition count needed by each rule over a tolerance grid
  - scaling: sweep throughput at several worker counts
  - config:  print the effective configuration`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "abort the run after this long (0 = no limit)")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print collected metrics after the run")
	rootCmd.PersistentFlags().BoolVar(&traceSpans, "trace", false, "export trace spans to stderr")

	rootCmd.AddCommand(newCompareCommand())
	rootCmd.AddCommand(newSweepCommand())
	rootCmd.AddCommand(newScalingCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// runEnv is the per-command runtime: configuration, logger and telemetry.
type runEnv struct {
	cfg      quadbench.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *quadbench.Metrics
	tp       *sdktrace.TracerProvider
}

func newRunEnv(cmd *cobra.Command) (*runEnv, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	logger := slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(cmd.ErrOrStderr()),
	}))

	cfg, err := quadbench.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	env := &runEnv{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	env.metrics = quadbench.NewMetrics(env.registry)

	if traceSpans {
		exp, err := stdouttrace.New(
			stdouttrace.WithWriter(cmd.ErrOrStderr()),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf("trace exporter: %w", err)
		}
		env.tp = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		otel.SetTracerProvider(env.tp)
	}

	logger.Debug("configuration loaded",
		"config", configPath,
		"interval", cfg.Interval(),
		"tolerance", cfg.Tolerance,
		"integrand", cfg.Integrand.String())
	return env, nil
}

// runContext applies --timeout to the command context.
func (e *runEnv) runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// close flushes spans and prints metrics when requested.
func (e *runEnv) close(cmd *cobra.Command) error {
	var errs []error
	if showMetrics {
		if err := writeMetrics(cmd.ErrOrStderr(), e.registry); err != nil {
			errs = append(errs, err)
		}
	}
	if e.tp != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("trace shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
