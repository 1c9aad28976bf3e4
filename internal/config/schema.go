// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for linekit.
package config

import "gopkg.in/yaml.v3"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "channel.line").
	Modules map[string]yaml.Node `yaml:"modules"`

	// Telemetry configures trace export. Nil disables tracing.
	Telemetry *TelemetryConfig `yaml:"telemetry,omitempty"`
}

// TelemetryConfig holds OpenTelemetry exporter settings.
type TelemetryConfig struct {
	// Endpoint is the OTLP/HTTP collector address (host:port).
	// Empty disables export.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" json:"insecure"`

	// ServiceName overrides the service.name resource attribute.
	ServiceName string `yaml:"service_name" json:"service_name"`

	// SampleRatio is the fraction of batches traced, in [0, 1].
	// Zero means always sample.
	SampleRatio float64 `yaml:"sample_ratio" json:"sample_ratio"`
}
