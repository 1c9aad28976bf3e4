// Package tunnel exposes the local webhook server on a public HTTPS URL
// through ngrok when no base URL is configured.
package tunnel

import (
	"context"
	"fmt"
	"net"

	"golang.ngrok.com/ngrok"
	"golang.ngrok.com/ngrok/config"
)

// Listener is a net.Listener reachable from the internet at URL.
type Listener interface {
	net.Listener
	URL() string
}

// Config holds tunnel settings.
type Config struct {
	// AuthToken authenticates the ngrok agent. Empty falls back to the
	// NGROK_AUTHTOKEN environment variable.
	AuthToken string `yaml:"authtoken"`

	// Domain requests a reserved domain instead of a random one.
	Domain string `yaml:"domain"`
}

// Opener opens a tunnel. Open is the production implementation.
type Opener func(ctx context.Context, cfg Config) (Listener, error)

// Open starts an ngrok agent session and an HTTP endpoint on it. Closing the
// returned listener tears both down.
func Open(ctx context.Context, cfg Config) (Listener, error) {
	auth := ngrok.WithAuthtokenFromEnv()
	if cfg.AuthToken != "" {
		auth = ngrok.WithAuthtoken(cfg.AuthToken)
	}

	var opts []config.HTTPEndpointOption
	if cfg.Domain != "" {
		opts = append(opts, config.WithDomain(cfg.Domain))
	}

	tun, err := ngrok.Listen(ctx, config.HTTPEndpoint(opts...), auth)
	if err != nil {
		return nil, fmt.Errorf("tunnel: %w", err)
	}
	return tun, nil
}

var _ Opener = Open
