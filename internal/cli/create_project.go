package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pytemplate/pytemplate/internal/creator"
	"github.com/pytemplate/pytemplate/internal/hosting"
	"github.com/pytemplate/pytemplate/internal/linker"
	"github.com/pytemplate/pytemplate/internal/registry"
	"github.com/pytemplate/pytemplate/internal/scaffold"
	"github.com/pytemplate/pytemplate/internal/vcs"
)

var (
	projectForce       bool
	projectInteractive bool
	projectOutputDir   string
)

func init() {
	createProjectCmd.Flags().BoolVar(&projectForce, "force", false, "Replace an existing project directory")
	createProjectCmd.Flags().BoolVarP(&projectInteractive, "interactive", "i", false, "Ask before replacing an existing directory")
	createProjectCmd.Flags().StringVar(&projectOutputDir, "output-dir", ".", "Directory the project is created in")
	rootCmd.AddCommand(createProjectCmd)
}

var createProjectCmd = &cobra.Command{
	Use:   "create-project <config>",
	Short: "Create a project from a configuration file",
	Long: `Validate a project configuration, expand the matching template into
<output-dir>/<project name>, initialize a git repository with one commit,
optionally publish it to GitHub, and copy the shared coding rules for every
listed AI assistant.

Publishing and rules copies that fail are reported as warnings; the project
itself is still created.

Example:
  pytemplate create-config service
  pytemplate create-project project_config.yaml --output-dir ~/src`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		base, reg, err := loadRegistry(out)
		if err != nil {
			return err
		}

		res, err := newCreator(base, reg).CreateProject(cmd.Context(), args[0], creator.Options{
			Force:       projectForce,
			Interactive: projectInteractive,
			Debug:       settings.Debug,
			OutputDir:   projectOutputDir,
		})
		if err != nil {
			return err
		}

		printCreated(out, res)
		return nil
	},
}

// newCreator wires the pipeline to the real engine, git, gh and prompts.
func newCreator(base string, reg *registry.Registry) *creator.Creator {
	log := logger.Logger
	return creator.New(creator.Deps{
		Registry:    reg,
		BaseDir:     base,
		Engine:      scaffold.NewDirEngine(scaffold.GitCloner{}, log),
		Repository:  vcs.New(settings.DefaultBranch, log),
		Publisher:   hosting.NewGitHub(settings.GHPath, hosting.ExecRunner{}, log),
		Distributor: linker.NewDistributor(settings.MaxParallelCopies, log),
		Confirmer:   creator.SurveyConfirmer{},
		Settings:    settings,
		Logger:      log,
	})
}

func printCreated(w io.Writer, res *creator.Result) {
	green := color.New(color.FgGreen, color.Bold)
	green.Fprint(w, "Created ")
	fmt.Fprintf(w, "%s (%s) at %s\n", res.Project.Name, res.Config.Project.Type, res.Project.Root)
	fmt.Fprintf(w, "  files:      %d\n", len(res.Files))
	fmt.Fprintf(w, "  repository: %s\n", repoLine(res))
	for _, d := range res.Distributed {
		if d.OK() {
			fmt.Fprintf(w, "  rules:      %s -> %s\n", d.Assistant, d.Path)
		}
	}

	if res.Partial() {
		yellow := color.New(color.FgYellow)
		fmt.Fprintln(w)
		yellow.Fprintf(w, "Completed with %d warning(s):\n", len(res.Warnings))
		for _, warn := range res.Warnings {
			yellow.Fprintf(w, "  - [%s] %v\n", warn.Kind, warn)
			if hint := warn.HintText(); hint != "" {
				fmt.Fprintf(w, "    hint: %s\n", hint)
			}
		}
	}

	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintf(w, "  cd %s\n", res.Project.Root)
	fmt.Fprintln(w, "  uv sync")
}

func repoLine(res *creator.Result) string {
	line := "initialized"
	if !res.Committed {
		line = "already initialized"
	}
	if res.RemoteURL != "" {
		line += ", published to " + res.RemoteURL
	}
	return line
}
