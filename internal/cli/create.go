package cli

import (
	"github.com/spf13/cobra"

	"github.com/pytemplate/pytemplate/internal/creator"
)

var (
	createTemplate  string
	createNoInput   bool
	createForce     bool
	createOutputDir string
)

func init() {
	createCmd.Flags().StringVarP(&createTemplate, "template", "t", "lib", "Project template to use (lib, service or workspace)")
	createCmd.Flags().BoolVarP(&createNoInput, "no-input", "y", false, "Never prompt; use the defaults")
	createCmd.Flags().BoolVarP(&createForce, "force", "f", false, "Replace an existing project directory")
	createCmd.Flags().StringVar(&createOutputDir, "output-dir", ".", "Directory the project is created in")
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project from a template with default options",
	Long: `Create a project named <name> from a registered template without writing
a configuration file first. Every option takes the default of the template's
project type; use create-config and create-project to change them.

With --force an existing directory is replaced. Unless --no-input is given,
you are asked to confirm first.

Example:
  pytemplate create orders-api --template service
  pytemplate create toolkit -y --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		base, reg, err := loadRegistry(out)
		if err != nil {
			return err
		}

		res, err := newCreator(base, reg).CreateFromTemplate(cmd.Context(), createTemplate, args[0], creator.Options{
			Force:       createForce,
			Interactive: !createNoInput,
			Debug:       settings.Debug,
			OutputDir:   createOutputDir,
		})
		if err != nil {
			return err
		}

		printCreated(out, res)
		return nil
	},
}
