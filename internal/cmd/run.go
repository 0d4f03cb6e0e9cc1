package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/harrison/flattener/internal/config"
	"github.com/harrison/flattener/internal/display"
	"github.com/harrison/flattener/internal/expander"
	"github.com/harrison/flattener/internal/logger"
	"github.com/harrison/flattener/internal/models"
	"github.com/spf13/cobra"
)

// progressLogger forwards progress events to the console. Failures are left
// to the returned error so the message is printed once.
type progressLogger struct {
	*logger.ConsoleLogger
}

func (progressLogger) LogFailure(error) {}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <root-file>",
		Short: "Flatten a root file and its includes into one output file",
		Long: `Flatten a root file by expanding every #include directive, depth first,
into a single output file.

Search directories come from search_paths in the config file followed by
every -I flag, in order. Configuration is loaded from .flattener/config.yaml
if present. CLI flags override configuration file settings.

An include that cannot be resolved stops the run. The diagnostic names the
target, the including file and its line number. What happens to the output
then depends on --on-failure:
  keep    leave the lines written before the failure (default)
  remove  delete the output file
  atomic  write to a temp file and only replace the output on success

Examples:
  flattener run a.cpp -o a.in -I include1 -I lib/include2
  flattener run a.cpp -o a.in --on-failure atomic
  flattener run a.cpp --dry-run -I include1      # Print the include tree only
  flattener run a.cpp -o a.in --max-depth 16 --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: runCommand,
	}

	addSearchFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output file (required unless --dry-run)")
	cmd.Flags().String("on-failure", "", "Output handling when the run fails: keep, remove or atomic")
	cmd.Flags().Int("max-depth", 0, "Maximum include nesting (0 = unlimited)")
	cmd.Flags().Bool("no-cycle-check", false, "Allow a file to include itself through the include stack")
	cmd.Flags().Bool("no-lock", false, "Do not lock the output file during the run")
	cmd.Flags().Duration("lock-timeout", 0, "Wait this long for another run's output lock (0 = fail at once)")
	cmd.Flags().Bool("dry-run", false, "Resolve every include and print the include tree without writing output")
	cmd.Flags().Bool("verbose", false, "Show every file as it is expanded")
	cmd.Flags().String("log-level", "", "Console and file log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for run log files")
	cmd.Flags().Bool("no-log-file", false, "Do not write a run log file")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	rootPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if outputPath == "" && !dryRun {
		return fmt.Errorf("an output file is required (use -o <file>, or --dry-run)")
	}

	// Build flag pointers for merge (only flags the user set)
	var flags config.Flags
	if cmd.Flags().Changed("on-failure") {
		v, _ := cmd.Flags().GetString("on-failure")
		flags.OnFailure = &v
	}
	if cmd.Flags().Changed("max-depth") {
		v, _ := cmd.Flags().GetInt("max-depth")
		flags.MaxDepth = &v
	}
	if cmd.Flags().Changed("no-cycle-check") {
		v, _ := cmd.Flags().GetBool("no-cycle-check")
		detect := !v
		flags.DetectCycles = &detect
	}
	if cmd.Flags().Changed("no-lock") {
		v, _ := cmd.Flags().GetBool("no-lock")
		lock := !v
		flags.LockOutput = &lock
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		flags.LogLevel = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		flags.LogDir = &v
	}

	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	policy, err := cfg.FailurePolicy()
	if err != nil {
		return err
	}

	// Determine log level: verbose flag overrides config
	logLevel := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && !cmd.Flags().Changed("log-level") {
		logLevel = "debug"
	}

	events := []logger.EventLogger{progressLogger{logger.NewConsoleLogger(cmd.OutOrStdout(), logLevel)}}
	noLogFile, _ := cmd.Flags().GetBool("no-log-file")
	if !noLogFile && !dryRun && cfg.LogDir != "" {
		fileLog, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, logLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		events = append(events, fileLog)
	}

	lockTimeout, _ := cmd.Flags().GetDuration("lock-timeout")
	opts := expander.Options{
		SearchPaths: cfg.SearchPaths,
		OnFailure:   policy,
		AllowCycles: !cfg.DetectCycles,
		MaxDepth:    cfg.MaxDepth,
		LockOutput:  cfg.LockOutput,
		LockTimeout: lockTimeout,
		Logger:      logger.NewMultiLogger(events...),
		Diagnostics: cmd.ErrOrStderr(),
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if dryRun {
		result, err := expander.DryRun(ctx, rootPath, opts)
		if result != nil {
			display.IncludeTree(cmd.OutOrStdout(), result)
		}
		if err != nil {
			return fmt.Errorf("dry run failed: %w", err)
		}
		return nil
	}

	result, err := expander.Run(ctx, rootPath, outputPath, opts)
	if err != nil {
		reportPartialOutput(cmd.OutOrStdout(), result, policy)
		if errors.Is(err, expander.ErrOutputLocked) {
			return fmt.Errorf("%s is being written by another run: %w", outputPath, err)
		}
		return fmt.Errorf("flatten failed: %w", err)
	}
	return nil
}

// reportPartialOutput warns when a failed run left a partial output behind.
// A nil result means the output was never opened.
func reportPartialOutput(out io.Writer, result *models.FlattenResult, policy models.FailurePolicy) {
	if result == nil || result.OutputPath == "" {
		return
	}
	if w, ok := display.WarnPartialOutput(result.OutputPath, policy, result.LinesWritten); ok {
		w.Display(out)
	}
}
