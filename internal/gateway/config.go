package gateway

import (
	"strings"
	"time"

	"github.com/flemzord/linekit/internal/tunnel"
)

// Credential names the gateway registers in the credential store.
const (
	CredentialTunnelToken   = "ngrok.authtoken"
	CredentialAdminToken    = "gateway.bearer_token"
	CredentialAdminPassword = "gateway.basic_pass"
)

// Config holds HTTP gateway configuration.
type Config struct {
	Bind string `yaml:"bind"`

	// BaseURL is the public URL of this server. When empty, a tunnel is
	// opened and its URL is used instead.
	BaseURL string        `yaml:"base_url"`
	Tunnel  tunnel.Config `yaml:"tunnel"`

	// StaticDir is served under /static. Empty disables the mount.
	StaticDir string `yaml:"static_dir"`

	Auth            AuthConfig    `yaml:"auth"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.Bind == "" {
		c.Bind = "0.0.0.0:3000"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	// Media replies download and transcode before answering.
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

// AuthConfig configures authentication for admin endpoints.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token"`
	BasicUser   string `yaml:"basic_user"`
	BasicPass   string `yaml:"basic_pass"`
}

// IsConfigured returns true if any auth method is configured.
func (a AuthConfig) IsConfigured() bool {
	return a.BearerToken != "" || (a.BasicUser != "" && a.BasicPass != "")
}
