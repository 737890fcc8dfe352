package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pytemplate/pytemplate/internal/apperr"
	"github.com/pytemplate/pytemplate/internal/branding"
	"github.com/pytemplate/pytemplate/internal/config"
	"github.com/pytemplate/pytemplate/internal/logging"
	"github.com/pytemplate/pytemplate/internal/registry"
	"github.com/pytemplate/pytemplate/internal/userdata"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	debugFlag bool

	settings config.Settings
	logger   *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` creates Python projects (libraries, services and workspaces)
from a declarative YAML configuration: it validates the configuration, expands
the matching template, initializes a git repository, optionally publishes it
to GitHub and copies shared coding rules for your AI assistants.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		settings = config.Current()
		if debugFlag {
			settings.Debug = true
		}

		opts := logging.Options{Debug: settings.Debug, Console: cmd.ErrOrStderr()}
		if settings.Debug {
			dir, err := userdata.LogDir(settings)
			if err != nil {
				return err
			}
			opts.Dir = dir
		}
		logger = logging.Setup(opts)
		logger.Debug("starting", "command", cmd.CommandPath(), "version", buildVersion)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Verbose logging and a rotating debug log file")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		// Post-run hooks are skipped on error.
		if logger != nil {
			logger.Debug("command failed", "kind", apperr.KindOf(err), "err", err)
			logger.Close()
		}
	}
	return err
}

// printError reports a fatal error and its corrective hint. Classified
// errors already lead with their kind.
func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(w, "error: ")
	fmt.Fprintln(w, err)
	if hint := apperr.Hint(err); hint != "" {
		fmt.Fprintf(w, "hint: %s\n", hint)
	}
}

// templateBase returns the template base directory, installing the
// built-in bundle first when it holds no registry.
func templateBase(w io.Writer) (string, error) {
	base, err := userdata.BaseDir(settings)
	if err != nil {
		return "", err
	}
	installed, err := userdata.EnsureInstalled(io.Discard, base)
	if err != nil {
		return "", err
	}
	if installed {
		fmt.Fprintf(w, "Installed the built-in templates into %s\n", base)
	}
	return base, nil
}

// loadRegistry resolves the base directory and parses its registry.
func loadRegistry(w io.Writer) (string, *registry.Registry, error) {
	base, err := templateBase(w)
	if err != nil {
		return "", nil, err
	}
	reg, err := registry.Load(base)
	if err != nil {
		return "", nil, apperr.New(apperr.KindInvalidLocation, "load template registry", err).
			WithSubject(base).
			WithHint("run 'pytemplate doctor' to check the template base directory")
	}
	logger.Debug("template registry loaded", "base", base)
	return base, reg, nil
}
