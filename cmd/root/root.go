package root

import (
	"github.com/spf13/cobra"

	"github.com/verneri/obsidian-export/cmd/export"
	"github.com/verneri/obsidian-export/cmd/watch"
)

// NewRootCommand creates the root command for obsidian-export.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obsidian-export",
		Short: "Export an Obsidian vault to standard Markdown",
		Long: `obsidian-export converts an Obsidian vault into a regular Markdown tree.

Wiki-style links ([[Note]]), embeds (![[Note]]), and heading or block
references are resolved into CommonMark links, inlined content, or copied
assets, so the result renders anywhere ordinary Markdown does.`,
		Version: "1.0.0",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().Bool("verbose", false, "Detailed output; prints every exported file")
	cmd.PersistentFlags().Bool("quiet", false, "Suppress all output except errors and warnings; overrides --verbose")
	cmd.PersistentFlags().String("config", "", "Config file (default: .obsidian-export.yaml)")

	cmd.AddCommand(export.NewExportCommand())
	cmd.AddCommand(watch.NewWatchCommand())

	return cmd
}
