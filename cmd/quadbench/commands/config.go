package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the --config file and
QUADBENCH_* environment overrides are applied. The output is valid input
for --config.`,
		Example: `  # Start a new config file from the defaults
  quadbench config > quadbench.yaml

  # Check what an environment override does
  QUADBENCH_TOLERANCE=1e-4 quadbench config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newRunEnv(cmd)
			if err != nil {
				return err
			}
			defer env.close(cmd)

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), env.cfg)
			}

			out, err := yaml.Marshal(env.cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	return cmd
}
