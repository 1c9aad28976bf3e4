package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/flemzord/linekit/internal/config"
	"github.com/flemzord/linekit/internal/core"
	"github.com/flemzord/linekit/internal/security"
)

// moduleJSON is a serializable module info snapshot.
type moduleJSON struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// handleGetAllModules lists all compiled modules (for /api/modules).
func (g *Gateway) handleGetAllModules() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		mods := core.GetModules()
		out := make([]moduleJSON, 0, len(mods))
		for _, m := range mods {
			out = append(out, moduleJSON{
				ID:        string(m.ID),
				Namespace: m.ID.Namespace(),
				Name:      m.ID.Name(),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleGetConfig returns the active configuration with secrets redacted.
// The "config.path" service names the file; an empty path means the
// built-in template.
func (g *Gateway) handleGetConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, _ := core.ServiceAs[string](g.appCtx, "config.path")

		var (
			cfg *config.Config
			err error
		)
		if path == "" {
			cfg, err = config.LoadDefault()
		} else {
			cfg, err = config.Load(path)
		}
		if err != nil {
			g.logger.Error("config load failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load config"})
			return
		}

		generic, err := configMap(cfg)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to serialize config"})
			return
		}
		g.redactor.RedactMap(generic)

		if g.audit != nil {
			g.audit.Log(security.AuditEvent{
				Type:    security.EventConfigAccess,
				Channel: "gateway.http",
				Remote:  r.RemoteAddr,
				Detail:  path,
			})
		}

		writeJSON(w, http.StatusOK, generic)
	}
}

// configMap converts cfg into plain maps so it can be redacted and encoded.
func configMap(cfg *config.Config) (map[string]any, error) {
	modules := make(map[string]any, len(cfg.Modules))
	for id, node := range cfg.Modules {
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		modules[id] = v
	}
	out := map[string]any{
		"version": cfg.Version,
		"modules": modules,
	}
	if cfg.Telemetry != nil {
		raw, err := json.Marshal(cfg.Telemetry)
		if err != nil {
			return nil, err
		}
		var t map[string]any
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, err
		}
		out["telemetry"] = t
	}
	return out, nil
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
