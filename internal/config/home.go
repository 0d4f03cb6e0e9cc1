package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeDirName is the per-project directory holding config.yaml and logs.
const HomeDirName = ".flattener"

// GetFlattenerHome returns the flattener home directory.
// Priority order:
//  1. FLATTENER_HOME environment variable (if set)
//  2. The nearest existing .flattener directory in the working directory or a parent
//  3. .flattener under the current working directory (fallback, not created)
func GetFlattenerHome() (string, error) {
	if home := os.Getenv("FLATTENER_HOME"); home != "" {
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	if home, ok := findHome(cwd); ok {
		return home, nil
	}
	return filepath.Join(cwd, HomeDirName), nil
}

// findHome walks from dir towards the filesystem root looking for a .flattener directory.
func findHome(dir string) (string, bool) {
	current := dir
	for {
		candidate := filepath.Join(current, HomeDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// DefaultConfigPath returns $FLATTENER_HOME/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := GetFlattenerHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}
