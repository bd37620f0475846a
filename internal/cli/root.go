// Package cli provides the Cobra command structure for gomdedit.
package cli

import (
	"github.com/spf13/cobra"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root gomdedit command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "gomdedit",
		Short: "A collaborative Markdown editing core",
		Long: `gomdedit keeps a Markdown document in sync with its collaborators while
presenting it as rich text: list markers and titles are hidden, images become
attachments, and syntax delimiters fold away around the cursor.

The commands drive the same editor core a graphical client would embed.
They render documents, inspect how blocks map onto the presentation,
replay recorded operation logs, and join a live editing session.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&a.flags.debug, "debug", false, "enable debug logging and fail fast on reentrant edits")
	flags.StringVar(&a.flags.configPath, "config", "", "path to config file")
	flags.StringVar(&a.flags.color, "color", "auto", "colorize output: auto, always, never")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.flags.flavor, "flavor", "", "Markdown flavor: commonmark, gfm")
	flags.StringVar(&a.flags.unit, "offset-unit", "", "operation offset unit: utf16, rune, byte")

	rootCmd.AddCommand(newRenderCommand(a))
	rootCmd.AddCommand(newInspectCommand(a))
	rootCmd.AddCommand(newToggleCommand(a))
	rootCmd.AddCommand(newReplayCommand(a))
	rootCmd.AddCommand(newConnectCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	NewHelpFormatter(&a.flags.color).ApplyToCommand(rootCmd)

	return rootCmd
}
