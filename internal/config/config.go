package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/flattener/internal/logger"
	"github.com/harrison/flattener/internal/models"
	"gopkg.in/yaml.v3"
)

// Config represents flattener configuration options
type Config struct {
	// SearchPaths is the ordered list of include directories
	SearchPaths []string `yaml:"search_paths"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs will be written
	LogDir string `yaml:"log_dir"`

	// OnFailure decides what happens to the output when a run fails (keep, remove, atomic)
	OnFailure string `yaml:"on_failure"`

	// DetectCycles rejects includes of a file already being expanded
	DetectCycles bool `yaml:"detect_cycles"`

	// MaxDepth limits include nesting (0 = unlimited)
	MaxDepth int `yaml:"max_depth"`

	// LockOutput holds an advisory lock on the output while a run writes it
	LockOutput bool `yaml:"lock_output"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		SearchPaths:  nil,
		LogLevel:     "info",
		LogDir:       filepath.Join(HomeDirName, "logs"),
		OnFailure:    string(models.FailureKeep),
		DetectCycles: true,
		MaxDepth:     0, // Unlimited
		LockOutput:   true,
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A second pass tells explicit keys apart from zero values, so
	// "detect_cycles: false" overrides the true default.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	set := func(key string) bool {
		_, exists := rawMap[key]
		return exists
	}

	if set("search_paths") {
		cfg.SearchPaths = fileCfg.SearchPaths
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}
	if fileCfg.OnFailure != "" {
		cfg.OnFailure = fileCfg.OnFailure
	}
	if set("detect_cycles") {
		cfg.DetectCycles = fileCfg.DetectCycles
	}
	if set("max_depth") {
		cfg.MaxDepth = fileCfg.MaxDepth
	}
	if set("lock_output") {
		cfg.LockOutput = fileCfg.LockOutput
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .flattener/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, HomeDirName, "config.yaml"))
}

// Flags carries command-line overrides. Nil fields leave the configuration untouched.
type Flags struct {
	SearchPaths   []string
	NoConfigPaths bool
	LogLevel      *string
	LogDir        *string
	OnFailure     *string
	DetectCycles  *bool
	MaxDepth      *int
	LockOutput    *bool
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values. Search directories from
// the command line are appended after the configured ones, or replace them
// when NoConfigPaths is set.
func (c *Config) MergeWithFlags(f Flags) {
	if f.NoConfigPaths {
		c.SearchPaths = nil
	}
	if len(f.SearchPaths) > 0 {
		paths := make([]string, 0, len(c.SearchPaths)+len(f.SearchPaths))
		paths = append(paths, c.SearchPaths...)
		c.SearchPaths = append(paths, f.SearchPaths...)
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.OnFailure != nil {
		c.OnFailure = *f.OnFailure
	}
	if f.DetectCycles != nil {
		c.DetectCycles = *f.DetectCycles
	}
	if f.MaxDepth != nil {
		c.MaxDepth = *f.MaxDepth
	}
	if f.LockOutput != nil {
		c.LockOutput = *f.LockOutput
	}
}

// FailurePolicy returns the parsed on_failure value.
func (c *Config) FailurePolicy() (models.FailurePolicy, error) {
	return models.ParseFailurePolicy(c.OnFailure)
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if _, err := c.FailurePolicy(); err != nil {
		return fmt.Errorf("invalid on_failure: %w", err)
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}

	for i, dir := range c.SearchPaths {
		if dir == "" {
			return fmt.Errorf("search_paths[%d] is empty", i)
		}
	}

	return nil
}
