// Package gateway provides the HTTP server: webhook endpoints, static file
// mounts, health, metrics and admin endpoints. It follows the module system
// pattern.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/flemzord/linekit/internal/core"
	"github.com/flemzord/linekit/internal/security"
	"github.com/flemzord/linekit/internal/tunnel"
	"gopkg.in/yaml.v3"
)

// StaticPrefix is where Config.StaticDir is served.
const StaticPrefix = "/static"

func init() {
	core.RegisterModule(&Gateway{})
}

type mount struct {
	prefix string
	dir    string
}

// Gateway is the HTTP gateway module. Other modules reach it through the
// "gateway.http" service and must register webhooks and mounts before
// Start.
type Gateway struct {
	config     Config
	appCtx     *core.AppContext
	logger     *slog.Logger
	metrics    *Metrics
	dispatcher *WebhookDispatcher
	audit      *security.AuditLogger
	redactor   *security.Redactor
	openTunnel tunnel.Opener

	mu        sync.Mutex
	mounts    []mount
	listeners []net.Listener
	baseURL   string
	server    *http.Server
	startedAt time.Time
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.metrics = NewMetrics()
	g.dispatcher = NewWebhookDispatcher(g.logger, g.metrics)
	if g.openTunnel == nil {
		g.openTunnel = tunnel.Open
	}

	if audit, ok := core.ServiceAs[*security.AuditLogger](ctx, "security.audit"); ok {
		g.audit = audit
	}
	if r, ok := core.ServiceAs[*security.Redactor](ctx, "security.redactor"); ok {
		g.redactor = r
	} else {
		g.redactor = security.NewRedactor()
	}
	if store, ok := core.ServiceAs[*security.CredentialStore](ctx, "security.credentials"); ok {
		store.Set(CredentialTunnelToken, g.config.Tunnel.AuthToken)
		store.Set(CredentialAdminToken, g.config.Auth.BearerToken)
		store.Set(CredentialAdminPassword, g.config.Auth.BasicPass)
		g.redactor.SyncCredentials(store)
	}

	if g.config.StaticDir != "" {
		g.Mount(StaticPrefix, g.config.StaticDir)
	}

	// Register services for cross-module discovery.
	ctx.RegisterService("gateway.http", g)
	ctx.RegisterService("gateway.metrics", g.metrics)
	ctx.RegisterService("gateway.webhook_dispatcher", g.dispatcher)

	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	if g.config.BaseURL != "" &&
		!strings.HasPrefix(g.config.BaseURL, "https://") &&
		!strings.HasPrefix(g.config.BaseURL, "http://") {
		return fmt.Errorf("gateway: base_url %q must be an http(s) URL", g.config.BaseURL)
	}
	return nil
}

// Metrics returns the gateway's metrics collector.
func (g *Gateway) Metrics() *Metrics { return g.metrics }

// Dispatcher returns the webhook dispatcher.
func (g *Gateway) Dispatcher() *WebhookDispatcher { return g.dispatcher }

// Mount serves the files under dir at prefix. It must be called before
// Start.
func (g *Gateway) Mount(prefix, dir string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mounts = append(g.mounts, mount{prefix: strings.TrimRight(prefix, "/"), dir: dir})
}

// Listen binds the local address and, when no base URL is configured, opens
// a tunnel. It returns the public base URL without a trailing slash.
// Calling it again returns the same URL.
func (g *Gateway) Listen(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.listenLocked(ctx)
}

func (g *Gateway) listenLocked(ctx context.Context) (string, error) {
	if g.baseURL != "" {
		return g.baseURL, nil
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.config.Bind)
	if err != nil {
		return "", fmt.Errorf("gateway: listen failed: %w", err)
	}
	listeners := []net.Listener{ln}

	base := g.config.BaseURL
	if base == "" {
		tun, err := g.openTunnel(ctx, g.config.Tunnel)
		if err != nil {
			_ = ln.Close()
			return "", fmt.Errorf("gateway: opening tunnel: %w", err)
		}
		listeners = append(listeners, tun)
		base = strings.TrimRight(tun.URL(), "/")
		g.logger.Info("tunnel established", "url", base)
	}

	g.listeners = listeners
	g.baseURL = base
	return base, nil
}

// BaseURL returns the URL resolved by Listen, or "" before it.
func (g *Gateway) BaseURL() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.baseURL
}

// Start implements core.Starter. It listens if Listen was not called yet
// and serves on every listener.
func (g *Gateway) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.listenLocked(context.Background()); err != nil {
		return err
	}

	g.startedAt = time.Now()
	g.server = &http.Server{
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	for _, ln := range g.listeners {
		go func() {
			g.logger.Info("gateway listening", "addr", ln.Addr().String())
			if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				g.logger.Error("gateway serve error", "addr", ln.Addr().String(), "error", err)
			}
		}()
	}

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	server := g.server
	listeners := g.listeners
	g.mu.Unlock()

	if server == nil {
		// Listen may have run without Start.
		var errs []error
		for _, ln := range listeners {
			if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return server.Shutdown(shutdownCtx)
}
