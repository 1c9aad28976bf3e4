package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flemzord/linekit/internal/core"
	"github.com/flemzord/linekit/internal/gateway"
)

// GatewayID is the module that serves every channel.
const GatewayID = "gateway.http"

// Binder is implemented by channel modules that need the public base URL
// and the gateway before they start.
type Binder interface {
	Bind(baseURL string, gw *gateway.Gateway) error
}

// appModules is the part of core.App used for wiring.
type appModules interface {
	Module(id string) (core.Module, bool)
}

// wireChannels opens the gateway listener, resolves the public base URL and
// binds every loaded Binder to it. Must be called after LoadModules and
// before Start.
func wireChannels(ctx context.Context, app appModules, ids []string, logger *slog.Logger) error {
	mod, ok := app.Module(GatewayID)
	if !ok {
		return errors.New("app: module " + GatewayID + " is required")
	}
	gw, ok := mod.(*gateway.Gateway)
	if !ok {
		return fmt.Errorf("app: %s is %T, not *gateway.Gateway", GatewayID, mod)
	}

	var binders []string
	for _, id := range ids {
		if m, ok := app.Module(id); ok {
			if _, ok := m.(Binder); ok {
				binders = append(binders, id)
			}
		}
	}
	if len(binders) == 0 {
		logger.Warn("app: no channel module loaded, only static files will be served")
	}

	baseURL, err := gw.Listen(ctx)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	logger.Info("app: public base URL resolved", "base_url", baseURL)

	for _, id := range binders {
		m, _ := app.Module(id)
		if err := m.(Binder).Bind(baseURL, gw); err != nil {
			_ = gw.Stop(ctx)
			return fmt.Errorf("app: binding %s: %w", id, err)
		}
		logger.Info("app: channel bound", "channel", id)
	}
	return nil
}
