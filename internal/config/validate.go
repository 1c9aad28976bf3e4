package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flemzord/linekit/internal/core"
)

// SupportedVersion is the only accepted value of the version field.
const SupportedVersion = "1"

// Validate checks cfg against the compiled modules. Every problem found
// is reported in one joined error. Module sections themselves are checked
// by their modules during LoadModules.
func Validate(cfg *Config) error {
	var errs []error
	switch cfg.Version {
	case SupportedVersion:
	case "":
		errs = append(errs, errors.New("config: version field is required"))
	default:
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: %q)", cfg.Version, SupportedVersion))
	}
	errs = append(errs, validateModules(cfg)...)
	errs = append(errs, validateTelemetry(cfg.Telemetry)...)
	return errors.Join(errs...)
}

func validateModules(cfg *Config) []error {
	if len(cfg.Modules) == 0 {
		return []error{errors.New("config: at least one module must be configured")}
	}

	var errs []error
	for _, id := range Resolve(cfg) {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}
	// A compiled module that takes configuration must have a section, so a
	// missing channel.line block fails here instead of at the first webhook.
	for _, info := range core.GetModules() {
		if _, ok := info.New().(core.Configurable); !ok {
			continue
		}
		if _, exists := cfg.Modules[string(info.ID)]; !exists {
			errs = append(errs, fmt.Errorf("config: module %q requires configuration but has no entry", info.ID))
		}
	}
	return errs
}

func validateTelemetry(t *TelemetryConfig) []error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.SampleRatio < 0 || t.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("config: telemetry.sample_ratio must be in [0, 1], got %v", t.SampleRatio))
	}
	if strings.Contains(t.Endpoint, "://") {
		errs = append(errs, fmt.Errorf("config: telemetry.endpoint must be host:port without a scheme, got %q", t.Endpoint))
	}
	return errs
}
