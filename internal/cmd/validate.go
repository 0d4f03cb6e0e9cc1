package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/harrison/flattener/internal/config"
	"github.com/harrison/flattener/internal/display"
	"github.com/harrison/flattener/internal/expander"
	"github.com/harrison/flattener/internal/fileutil"
	"github.com/harrison/flattener/internal/resolver"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <root-file>",
		Short: "Check that a root file and all of its includes resolve",
		Long: `Check a flattening setup without writing any output:
  - The root file exists and is a regular file
  - Every search directory exists
  - Every include in the tree resolves (and no include cycle exists)

Headers provided by more than one search directory are reported as
warnings, since only the first directory's copy is ever used.

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, config.Flags{})
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			opts := expander.Options{
				SearchPaths: cfg.SearchPaths,
				AllowCycles: !cfg.DetectCycles,
				MaxDepth:    cfg.MaxDepth,
				Diagnostics: io.Discard,
			}
			return validateRoot(ctx, args[0], opts, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	addSearchFlags(cmd)
	return cmd
}

// validateRoot runs every check and reports all problems before failing.
func validateRoot(ctx context.Context, rootPath string, opts expander.Options, output io.Writer) error {
	var errors []string

	// 1. Root file
	if f, err := resolver.OpenRegular(rootPath); err != nil {
		fmt.Fprintf(output, "✗ Cannot open root file %s\n", rootPath)
		errors = append(errors, fmt.Sprintf("root file: %v", err))
	} else {
		f.Close()
		fmt.Fprintf(output, "✓ Root file %s\n", rootPath)
	}

	// 2. Search directories
	var existing []string
	for _, dir := range opts.SearchPaths {
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			display.Warning{
				Title:   fmt.Sprintf("Search directory %s not found", dir),
				Message: "Includes will skip it",
			}.Display(output)
		case !info.IsDir():
			errors = append(errors, fmt.Sprintf("search path %s is not a directory", dir))
		default:
			existing = append(existing, dir)
		}
	}
	fmt.Fprintf(output, "✓ %d of %d search directories present\n", len(existing), len(opts.SearchPaths))

	// 3. Shadowed headers
	shadows, results, err := fileutil.FindShadowed(existing, fileutil.ScanOptions{Recursive: true})
	if err != nil {
		errors = append(errors, err.Error())
	}
	for _, res := range results {
		for _, scanErr := range res.Errors {
			fmt.Fprintf(output, "  ! %v\n", scanErr)
		}
	}
	for _, w := range display.WarnShadowedHeaders(shadows) {
		w.Display(output)
	}

	// 4. Include tree
	if len(errors) == 0 {
		result, err := expander.DryRun(ctx, rootPath, opts)
		if err != nil {
			fmt.Fprintf(output, "✗ Include tree does not resolve\n")
			errors = append(errors, err.Error())
		} else {
			fmt.Fprintf(output, "✓ %d include(s) across %d file(s) resolve, depth %d\n",
				result.IncludeCount(), result.FilesExpanded, result.MaxDepth)
		}
	}

	if len(errors) == 0 {
		fmt.Fprintf(output, "\n✓ %s is valid!\n", rootPath)
		return nil
	}

	fmt.Fprintf(output, "\n✗ Validation failed for %s\n", rootPath)
	for _, msg := range errors {
		fmt.Fprintf(output, "  ✗ %s\n", msg)
	}
	fmt.Fprintf(output, "\nFound %d validation error(s)!\n", len(errors))

	return fmt.Errorf("validation failed with %d error(s)", len(errors))
}
