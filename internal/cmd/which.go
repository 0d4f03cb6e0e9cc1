package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/harrison/flattener/internal/config"
	"github.com/harrison/flattener/internal/display"
	"github.com/harrison/flattener/internal/models"
	"github.com/harrison/flattener/internal/resolver"
	"github.com/spf13/cobra"
)

// NewWhichCommand creates the which subcommand
func NewWhichCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "which <target>",
		Short: "Show which file an include directive resolves to",
		Long: `Resolve a single include target with the same search order a run uses and
print the file it resolves to, followed by any copies it shadows.

The target may be written "name" or <name> to pick the include form; a bare
name is treated as quoted unless --angled is given. Quoted targets are first
looked up next to the --from file (default: the current directory).

Examples:
  flattener which std1.h -I include1 -I include2
  flattener which '<std2.h>' -I include1 -I lib/include2
  flattener which c.h --from dir1/b.h`,
		Args: cobra.ExactArgs(1),
		RunE: whichCommand,
	}

	addSearchFlags(cmd)
	cmd.Flags().String("from", "", "File containing the directive (its directory is searched first for quoted targets)")
	cmd.Flags().Bool("angled", false, "Treat a bare target as #include <target>")
	cmd.Flags().Bool("candidates", false, "List every location tried, in order")

	return cmd
}

func whichCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, config.Flags{})
	if err != nil {
		return err
	}

	kind := models.KindQuoted
	if angled, _ := cmd.Flags().GetBool("angled"); angled {
		kind = models.KindAngled
	}
	d := resolver.ParseTarget(args[0], kind)
	if d.Target == "" {
		return fmt.Errorf("empty include target")
	}

	currentDir := "."
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		currentDir = filepath.Dir(from)
	}

	r := resolver.New(cfg.SearchPaths)
	out := cmd.OutOrStdout()
	matches := r.Matches(d, currentDir)
	display.Resolution(out, d, matches)

	showAll, _ := cmd.Flags().GetBool("candidates")
	if showAll || len(matches) == 0 {
		fmt.Fprintln(out, "Tried:")
		display.Candidates(out, r.Candidates(d, currentDir))
	}

	if len(matches) == 0 {
		return fmt.Errorf("%w: %s", resolver.ErrNotFound, d)
	}
	return nil
}
