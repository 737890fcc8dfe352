package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pytemplate/pytemplate/internal/registry"
)

func init() {
	rootCmd.AddCommand(templatesCmd)
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List registered templates and AI assistants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		base, reg, err := loadRegistry(out)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Template base: %s\n", base)
		for _, k := range registry.Kinds {
			fmt.Fprintf(out, "\n%s:\n", k.Section())
			entries := reg.Entries(k)
			if len(entries) == 0 {
				fmt.Fprintln(out, "  (none)")
				continue
			}
			for _, e := range entries {
				where := "local"
				if e.Location.IsRemote() {
					where = "remote"
				}
				fmt.Fprintf(out, "  %-12s %-7s %s\n", e.Name, where, e.Location)
			}
		}

		fmt.Fprintln(out, "\nai_assistants:")
		for _, id := range reg.AssistantIDs() {
			a, _ := reg.Assistant(id)
			var flags []string
			if a.KeepFrontmatter {
				flags = append(flags, "keeps front matter")
			}
			line := fmt.Sprintf("  %-12s %s", id, a.Path)
			if len(flags) > 0 {
				line += " (" + strings.Join(flags, ", ") + ")"
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}
