package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pytemplate/pytemplate/internal/userdata"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Install the built-in templates",
	Long: `Install the built-in template registry, project templates, configuration
skeletons and coding rules into the template base directory
($PYTEMPLATE_HOME, the base_dir setting, or ~/.pytemplate/share).

Files that already exist are kept, so local edits survive re-running init.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		base, err := userdata.BaseDir(settings)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Installing templates into %s\n", base)
		res, err := userdata.Install(out, base)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nDone: %d created, %d kept.\n", res.Created, res.Skipped)
		return nil
	},
}
