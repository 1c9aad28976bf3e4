package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flemzord/linekit/internal/core"
	"github.com/flemzord/linekit/internal/security/securitytest"
	"github.com/flemzord/linekit/internal/tunnel"
	"gopkg.in/yaml.v3"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGateway_ModuleInfo(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	info := g.ModuleInfo()

	if info.ID != "gateway.http" {
		t.Errorf("ID = %q, want %q", info.ID, "gateway.http")
	}
	if info.New == nil {
		t.Fatal("New func is nil")
	}

	mod := info.New()
	if _, ok := mod.(*Gateway); !ok {
		t.Error("New() should return *Gateway")
	}
}

func TestGateway_ConfigureDefaults(t *testing.T) {
	t.Parallel()

	g := &Gateway{}

	node := mustYAMLNode(t, "{}")
	if err := g.Configure(node); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if g.config.Bind != "0.0.0.0:3000" {
		t.Errorf("Bind = %q, want default", g.config.Bind)
	}
	if g.config.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want 10s", g.config.ReadTimeout)
	}
	if g.config.WriteTimeout != 60*time.Second {
		t.Errorf("WriteTimeout = %v, want 60s", g.config.WriteTimeout)
	}
	if g.config.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", g.config.ShutdownTimeout)
	}
}

func TestGateway_ConfigureCustom(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	node := mustYAMLNode(t, `
bind: "0.0.0.0:9090"
base_url: "https://bot.example.com/"
static_dir: assets
read_timeout: 5s
write_timeout: 15s
shutdown_timeout: 10s
tunnel:
  authtoken: "tok"
auth:
  bearer_token: "my-token"
`)

	if err := g.Configure(node); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if g.config.Bind != "0.0.0.0:9090" {
		t.Errorf("Bind = %q, want custom", g.config.Bind)
	}
	if g.config.BaseURL != "https://bot.example.com" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", g.config.BaseURL)
	}
	if g.config.StaticDir != "assets" {
		t.Errorf("StaticDir = %q", g.config.StaticDir)
	}
	if g.config.Tunnel.AuthToken != "tok" {
		t.Errorf("Tunnel.AuthToken = %q", g.config.Tunnel.AuthToken)
	}
	if g.config.Auth.BearerToken != "my-token" {
		t.Errorf("BearerToken = %q", g.config.Auth.BearerToken)
	}
}

func TestGateway_Provision(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	g.config.defaults()

	appCtx := core.NewAppContext(testLogger(), t.TempDir())

	if err := g.Provision(appCtx); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	if g.metrics == nil {
		t.Error("metrics should be initialized")
	}
	if g.dispatcher == nil {
		t.Error("dispatcher should be initialized")
	}

	for _, name := range []string{"gateway.http", "gateway.metrics", "gateway.webhook_dispatcher"} {
		if _, ok := appCtx.Service(name); !ok {
			t.Errorf("%s not registered", name)
		}
	}
	if got, ok := core.ServiceAs[*Gateway](appCtx, "gateway.http"); !ok || got != g {
		t.Error("gateway.http should resolve to the gateway itself")
	}
}

func TestGateway_ProvisionRegistersCredentials(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	g.config.defaults()
	g.config.Tunnel.AuthToken = "2abcdefghijklmnopqrstuvwxyz_tunnelsecret0123456789"
	g.config.Auth.BearerToken = "admin-bearer-secret"

	store := securitytest.NewTestCredentialStore()
	redactor := securitytest.NewTestRedactor()
	appCtx := core.NewAppContext(testLogger(), t.TempDir())
	appCtx.RegisterService("security.credentials", store)
	appCtx.RegisterService("security.redactor", redactor)

	if err := g.Provision(appCtx); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if v, _ := store.Get(CredentialTunnelToken); v != g.config.Tunnel.AuthToken {
		t.Errorf("tunnel token = %q", v)
	}
	if got := redactor.Redact("auth admin-bearer-secret"); strings.Contains(got, "admin-bearer-secret") {
		t.Errorf("admin token not redacted: %q", got)
	}
}

func TestGateway_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		bind    string
		baseURL string
		wantErr bool
	}{
		{name: "good address", bind: "127.0.0.1:8080"},
		{name: "bad address", bind: "not a valid address::", wantErr: true},
		{name: "https base", bind: "127.0.0.1:8080", baseURL: "https://x.example"},
		{name: "bare host base", bind: "127.0.0.1:8080", baseURL: "x.example", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := &Gateway{}
			g.config.Bind = tt.bind
			g.config.BaseURL = tt.baseURL
			err := g.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// doGet makes a GET request with context.
func doGet(t *testing.T, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// doGetWithBearer makes a GET request with a bearer token.
func doGetWithBearer(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// newTestGateway provisions a gateway bound to a random local port.
func newTestGateway(t *testing.T, cfg Config) *Gateway {
	t.Helper()
	if cfg.Bind == "" {
		cfg.Bind = "127.0.0.1:0"
	}
	cfg.defaults()
	cfg.ShutdownTimeout = 2 * time.Second

	g := &Gateway{config: cfg}
	if err := g.Provision(core.NewAppContext(testLogger(), t.TempDir())); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	t.Cleanup(func() { _ = g.Stop(context.Background()) })
	return g
}

// localURL returns the http URL of the gateway's local listener.
func localURL(t *testing.T, g *Gateway) string {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.listeners) == 0 {
		t.Fatal("gateway is not listening")
	}
	return "http://" + g.listeners[0].Addr().String()
}

func TestGateway_StartStop(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{BaseURL: "https://bot.example.com"})

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp := doGet(t, localURL(t, g)+"/health")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("health.Status = %q, want %q", health.Status, "ok")
	}

	if err := g.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestGateway_ListenUsesBaseURL(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{BaseURL: "https://bot.example.com"})
	g.openTunnel = func(context.Context, tunnel.Config) (tunnel.Listener, error) {
		t.Error("tunnel must not be opened when base_url is set")
		return nil, errors.New("unexpected")
	}

	base, err := g.Listen(t.Context())
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if base != "https://bot.example.com" {
		t.Errorf("base = %q", base)
	}

	again, err := g.Listen(t.Context())
	if err != nil || again != base {
		t.Errorf("second Listen = %q, %v", again, err)
	}
}

// fakeTunnel is a local listener posing as a public tunnel.
type fakeTunnel struct {
	net.Listener
	url string
}

func (f *fakeTunnel) URL() string { return f.url }

func TestGateway_ListenOpensTunnel(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{Tunnel: tunnel.Config{AuthToken: "tok"}})

	var gotToken string
	var tun *fakeTunnel
	g.openTunnel = func(ctx context.Context, cfg tunnel.Config) (tunnel.Listener, error) {
		gotToken = cfg.AuthToken
		var lc net.ListenConfig
		ln, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
		if err != nil {
			return nil, err
		}
		tun = &fakeTunnel{Listener: ln, url: "https://abc.ngrok.app/"}
		return tun, nil
	}

	base, err := g.Listen(t.Context())
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if base != "https://abc.ngrok.app" {
		t.Errorf("base = %q", base)
	}
	if gotToken != "tok" {
		t.Errorf("authtoken = %q", gotToken)
	}

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Both the local listener and the tunnel serve the same routes.
	resp := doGet(t, "http://"+tun.Addr().String()+"/health")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("tunnel health = %d", resp.StatusCode)
	}
}

func TestGateway_ListenTunnelFailure(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{})
	g.openTunnel = func(context.Context, tunnel.Config) (tunnel.Listener, error) {
		return nil, errors.New("no authtoken")
	}

	if _, err := g.Listen(t.Context()); err == nil || !strings.Contains(err.Error(), "tunnel") {
		t.Fatalf("Listen error = %v, want tunnel failure", err)
	}
	if g.BaseURL() != "" {
		t.Errorf("BaseURL = %q, want empty after failure", g.BaseURL())
	}
}

func TestGateway_WebhookAndMounts(t *testing.T) {
	t.Parallel()

	static := t.TempDir()
	if err := os.MkdirAll(filepath.Join(static, "buttons"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(static, "buttons", "1040.jpg"), []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}
	downloaded := t.TempDir()
	if err := os.WriteFile(filepath.Join(downloaded, "42.jpg"), []byte("img"), 0o600); err != nil {
		t.Fatal(err)
	}

	g := newTestGateway(t, Config{BaseURL: "https://bot.example.com", StaticDir: static})
	g.Mount("/downloaded", downloaded)

	var calls atomic.Int32
	g.Dispatcher().Register("/callback", WebhookHandlerFunc(func(context.Context, []byte, http.Header) error {
		calls.Add(1)
		return nil
	}))

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	base := localURL(t, g)

	resp := doGet(t, base+"/callback")
	text, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(text) != listeningText {
		t.Errorf("GET /callback = %q", text)
	}

	req, _ := http.NewRequestWithContext(t.Context(), http.MethodPost, base+"/callback", bytes.NewReader([]byte(`{"events":[]}`)))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || calls.Load() != 1 {
		t.Errorf("POST /callback = %d, calls = %d", resp.StatusCode, calls.Load())
	}

	for path, want := range map[string]string{
		"/static/buttons/1040.jpg": "jpeg",
		"/downloaded/42.jpg":       "img",
	} {
		resp := doGet(t, base+path)
		got, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK || string(got) != want {
			t.Errorf("GET %s = %d %q, want %q", path, resp.StatusCode, got, want)
		}
	}
}

func TestGateway_MetricsPublicWithoutAuth(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{BaseURL: "https://bot.example.com"})
	g.Metrics().RecordReply(2)
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp := doGet(t, localURL(t, g)+"/metrics")
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "linekit_reply_messages_total 2") {
		t.Errorf("metrics output missing reply counter:\n%s", body)
	}
}

func TestGateway_AdminNotMountedWithoutAuth(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{BaseURL: "https://bot.example.com"})
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	base := localURL(t, g)

	for _, path := range []string{"/status", "/api/modules"} {
		resp := doGet(t, base+path)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s code = %d, want 404 or 405 (not mounted)", path, resp.StatusCode)
		}
	}
}

func TestGateway_AdminWithAuth(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{
		BaseURL: "https://bot.example.com",
		Auth:    AuthConfig{BearerToken: "test-token"},
	})
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	base := localURL(t, g)

	for _, path := range []string{"/status", "/metrics"} {
		resp := doGet(t, base+path)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s no-auth status = %d, want %d", path, resp.StatusCode, http.StatusUnauthorized)
		}

		resp2 := doGetWithBearer(t, base+path, "test-token")
		_ = resp2.Body.Close()
		if resp2.StatusCode != http.StatusOK {
			t.Errorf("%s auth status = %d, want %d", path, resp2.StatusCode, http.StatusOK)
		}
	}
}

func TestGateway_StopNilServer(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	if err := g.Stop(context.Background()); err != nil {
		t.Errorf("Stop on nil server should not error: %v", err)
	}
}

// mustYAMLNode parses YAML text into a *yaml.Node for Configure calls.
func mustYAMLNode(t *testing.T, text string) *yaml.Node {
	t.Helper()
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		t.Fatalf("YAML parse: %v", err)
	}
	if len(node.Content) > 0 {
		return node.Content[0]
	}
	return &node
}
