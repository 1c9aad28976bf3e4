package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
)

// FileName is the configuration file name searched on disk.
const FileName = "linekit.yaml"

// Resolve returns a sorted list of module IDs from the configuration.
// The deterministic order ensures consistent module loading.
func Resolve(cfg *Config) []string {
	ids := make([]string, 0, len(cfg.Modules))
	for id := range cfg.Modules {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// FindPath returns the first configuration file that exists, in order:
// explicit (when non-empty), $XDG_CONFIG_HOME/linekit/linekit.yaml and
// ./linekit.yaml. An empty result with a nil error means no file was found
// and the built-in template applies. An explicit path that does not exist
// is an error.
func FindPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}

	for _, p := range SearchPaths() {
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

// SearchPaths lists the implicit configuration locations in lookup order.
func SearchPaths() []string {
	var paths []string
	if dir := XDGDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, FileName))
	}
	return append(paths, FileName)
}

// XDGDir returns the linekit directory under the user config home, or ""
// when it cannot be determined.
func XDGDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "linekit")
}

// LoadResolved loads the file found by FindPath, or the built-in template
// when none exists. The returned path is "" for the template.
func LoadResolved(explicit string) (*Config, string, error) {
	path, err := FindPath(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		cfg, err := LoadDefault()
		return cfg, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}
