package line

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/flemzord/linekit/internal/cron"
)

// Defaults.
const (
	DefaultWebhookPath = "/callback"
	DefaultDownloadDir = "downloaded"
	DefaultMaxAge      = 24 * time.Hour
)

// Config holds the LINE channel configuration.
type Config struct {
	ChannelAccessToken string      `yaml:"channel_access_token"`
	ChannelSecret      string      `yaml:"channel_secret"`
	WebhookPath        string      `yaml:"webhook_path"`
	DownloadDir        string      `yaml:"download_dir"`
	CatalogFile        string      `yaml:"catalog_file"`
	Media              MediaConfig `yaml:"media"`

	// APIEndpoint and DataEndpoint override the platform hosts; empty uses
	// the SDK defaults.
	APIEndpoint  string `yaml:"api_endpoint"`
	DataEndpoint string `yaml:"data_endpoint"`
}

// MediaConfig configures preview generation and retention of downloads.
type MediaConfig struct {
	Converter string          `yaml:"converter"`
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls the purge of downloaded media. A zero MaxAge
// disables purging.
type RetentionConfig struct {
	MaxAge   *time.Duration `yaml:"max_age"`
	Schedule string         `yaml:"schedule"`
}

// maxAge returns the effective retention window.
func (r RetentionConfig) maxAge() time.Duration {
	if r.MaxAge == nil {
		return DefaultMaxAge
	}
	return *r.MaxAge
}

func (c *Config) defaults() {
	if c.WebhookPath == "" {
		c.WebhookPath = DefaultWebhookPath
	}
	if c.DownloadDir == "" {
		c.DownloadDir = DefaultDownloadDir
	}
}

// validate checks field constraints. It is called from Line.Validate after
// defaults have been applied.
func (c *Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.ChannelAccessToken) == "" {
		errs = append(errs, errors.New("line: channel_access_token is required"))
	}
	if strings.TrimSpace(c.ChannelSecret) == "" {
		errs = append(errs, errors.New("line: channel_secret is required"))
	}
	if !strings.HasPrefix(c.WebhookPath, "/") {
		errs = append(errs, fmt.Errorf("line: webhook_path must start with '/', got %q", c.WebhookPath))
	}
	for name, v := range map[string]string{"api_endpoint": c.APIEndpoint, "data_endpoint": c.DataEndpoint} {
		if v == "" {
			continue
		}
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("line: %s must be a valid http/https URL, got %q", name, v))
		}
	}
	if c.Media.Retention.maxAge() < 0 {
		errs = append(errs, fmt.Errorf("line: media.retention.max_age must not be negative"))
	}
	if s := c.Media.Retention.Schedule; s != "" {
		if err := cron.ValidateSchedule(s); err != nil {
			errs = append(errs, fmt.Errorf("line: media.retention.schedule: %w", err))
		}
	}
	return errors.Join(errs...)
}
