package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/configloader"
)

func newConfigCommand(a *app) *cobra.Command {
	var sources bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Show the configuration gomdedit runs with after merging system, user,
project and explicit config files, environment variables, and flags.`,
		Example: `  gomdedit config
  gomdedit config --sources
  gomdedit --flavor commonmark config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sources {
				return printSources(cmd.OutOrStdout(), a)
			}
			data, err := a.cfg.ToYAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&sources, "sources", false, "list the configuration files that were merged instead")

	cmd.AddCommand(&cobra.Command{
		Use:         "env",
		Short:       "List the environment variables gomdedit reads",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			styles := a.styles(out)
			vars := configloader.ListEnvVars()
			width := 0
			for _, v := range vars {
				width = max(width, len(v.Name))
			}
			for _, v := range vars {
				name := v.Name + strings.Repeat(" ", width-len(v.Name))
				if _, err := fmt.Fprintf(out, "%s  %s\n", styles.Kind.Render(name), v.Description); err != nil {
					return err
				}
			}
			return nil
		},
	})

	return cmd
}

func printSources(out io.Writer, a *app) error {
	if len(a.sources) == 0 {
		_, err := fmt.Fprintln(out, "no configuration files; using defaults")
		return err
	}
	styles := a.styles(out)
	for _, source := range a.sources {
		if _, err := fmt.Fprintf(out, "%-8s  %s\n", source.Scope, styles.Source.Render(source.Path)); err != nil {
			return err
		}
	}
	return nil
}
