package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for flattener
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flattener",
		Short: "Flatten #include trees into a single text file",
		Long: `Flattener follows #include "file" and #include <file> directives from a
root file and writes one output file with every included file expanded in place.

Quoted includes are looked up next to the including file first, then in each
search directory in order. Angled includes only use the search directories.
Nothing else is interpreted: macros, conditionals and comments pass through.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the returned error once
		SilenceErrors: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewWhichCommand())

	return cmd
}
