package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pytemplate/pytemplate/internal/creator"
)

var (
	configOutput string
	configForce  bool
)

func init() {
	createConfigCmd.Flags().StringVarP(&configOutput, "output", "o", creator.DefaultConfigFile, "Where to write the configuration")
	createConfigCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(createConfigCmd)
}

var createConfigCmd = &cobra.Command{
	Use:   "create-config <type>",
	Short: "Write a configuration file for a project type",
	Long: `Write the configuration skeleton for a project type (lib, service or
workspace) so it can be edited and passed to create-project.

Example:
  pytemplate create-config service --output orders-api.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		base, reg, err := loadRegistry(out)
		if err != nil {
			return err
		}

		path, err := creator.WriteConfigSpec(reg, base, args[0], configOutput, configForce)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s configuration to %s\n", args[0], path)
		fmt.Fprintf(out, "Edit it, then run: pytemplate create-project %s\n", configOutput)
		return nil
	},
}
