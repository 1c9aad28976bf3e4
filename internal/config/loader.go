package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} and ${VAR:-default}.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// DefaultTemplate is used when no configuration file is found. It reads
// every setting from the environment.
//
//go:embed default.yaml
var DefaultTemplate []byte

// UnresolvedError lists the variables referenced without a default that
// are not set in the environment.
type UnresolvedError struct {
	Names []string
}

func (e *UnresolvedError) Error() string {
	return "unresolved variables: " + strings.Join(e.Names, ", ")
}

// Load reads the file at path and parses it with Parse.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault parses the embedded template.
func LoadDefault() (*Config, error) {
	cfg, err := Parse(DefaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("config: built-in template: %w", err)
	}
	return cfg, nil
}

// Parse expands environment references in raw and decodes the result.
// Unknown top-level keys are rejected; module sections are decoded by
// their modules.
func Parse(raw []byte) (*Config, error) {
	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	return &cfg, nil
}

// expandEnv substitutes environment references in raw. All unresolved
// names are reported together in an *UnresolvedError.
func expandEnv(raw []byte) ([]byte, error) {
	var missing []string
	out := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		name := string(subs[1])
		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		if subs[2] != nil {
			return subs[2]
		}
		missing = append(missing, name)
		return match
	})
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, &UnresolvedError{Names: slices.Compact(missing)}
	}
	return out, nil
}
