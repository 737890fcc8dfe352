package cli

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/pytemplate/pytemplate/internal/config"
	"github.com/pytemplate/pytemplate/internal/hosting"
	"github.com/pytemplate/pytemplate/internal/platform"
	"github.com/pytemplate/pytemplate/internal/userdata"
)

var doctorFix bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Install the built-in templates when they are missing")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the pytemplate installation",
	Long:  `Run diagnostic checks on the template base directory, the user settings and the external tools used for publishing.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		problems := 0

		fmt.Fprintln(out, "Settings:")
		if platform.Exists(config.FilePath()) {
			fmt.Fprintf(out, "  [ OK ] %s\n", config.FilePath())
		} else {
			fmt.Fprintf(out, "  [INFO] %s not found, using defaults\n", config.FilePath())
		}
		fmt.Fprintf(out, "  [INFO] default branch %s, publish timeout %s\n", settings.DefaultBranch, settings.PublishTimeout)

		base, err := userdata.BaseDir(settings)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		problems += userdata.CheckBaseDir(out, base, doctorFix)

		fmt.Fprintln(out, "\nTools:")
		gh := hosting.NewGitHub(settings.GHPath, hosting.ExecRunner{}, logger.Logger)
		if v, err := gh.Version(cmd.Context()); err != nil {
			fmt.Fprintf(out, "  [WARN] %s not usable, publishing will fail: %v\n", settings.GHPath, err)
		} else {
			fmt.Fprintf(out, "  [ OK ] %s\n", v)
		}
		if path, err := exec.LookPath("git"); err != nil {
			fmt.Fprintln(out, "  [INFO] git not found (not required)")
		} else {
			fmt.Fprintf(out, "  [ OK ] git found at %s\n", path)
		}

		if problems > 0 {
			return fmt.Errorf("%d problem(s) found", problems)
		}
		fmt.Fprintln(out, "\nNo problems found.")
		return nil
	},
}
