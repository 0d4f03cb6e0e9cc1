package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/harrison/flattener/internal/config"
	"github.com/spf13/cobra"
)

// addSearchFlags registers the flags shared by every command that resolves includes.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("include-dir", "I", nil, "Add a search directory (repeatable, searched in order)")
	cmd.Flags().String("config", "", "Path to config file (default: $FLATTENER_HOME/config.yaml or the nearest .flattener/config.yaml)")
	cmd.Flags().Bool("no-config-paths", false, "Ignore search_paths from the config file")
}

// loadConfig reads the config file named by --config, or the default one,
// and merges the search flags into it. Callers add their own overrides
// through extra before validation.
func loadConfig(cmd *cobra.Command, extra config.Flags) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config: %w", err)
		}
		cfg, err = config.LoadConfig(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	extra.SearchPaths, _ = cmd.Flags().GetStringArray("include-dir")
	extra.NoConfigPaths, _ = cmd.Flags().GetBool("no-config-paths")
	cfg.MergeWithFlags(extra)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// commandContext returns a context canceled on interrupt.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}
