package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/linekit/internal/core"
	"github.com/flemzord/linekit/internal/gateway"
	"github.com/flemzord/linekit/internal/security"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func quietParams(t *testing.T, cfgPath string) RunParams {
	t.Helper()
	return RunParams{
		ConfigPath:  cfgPath,
		EnvFile:     filepath.Join(t.TempDir(), ".env"),
		DataDir:     t.TempDir(),
		LogOutput:   io.Discard,
		AuditOutput: io.Discard,
	}
}

func TestLoadEnv_Missing(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadEnv on missing file: %v", err)
	}
}

func TestLoadEnv_SetsUnsetVariables(t *testing.T) {
	t.Setenv("LINEKIT_TEST_NEW", "")
	_ = os.Unsetenv("LINEKIT_TEST_NEW")
	t.Setenv("LINEKIT_TEST_KEPT", "original")

	path := writeFile(t, ".env", "LINEKIT_TEST_NEW=loaded\nLINEKIT_TEST_KEPT=overridden\n")
	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("LINEKIT_TEST_NEW"); got != "loaded" {
		t.Errorf("LINEKIT_TEST_NEW = %q, want loaded", got)
	}
	if got := os.Getenv("LINEKIT_TEST_KEPT"); got != "original" {
		t.Errorf("LINEKIT_TEST_KEPT = %q, want original", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultDataDir(t *testing.T) {
	t.Parallel()

	cwd, _ := os.Getwd()
	if got := DefaultDataDir(); got != cwd {
		t.Errorf("got %q, want %q", got, cwd)
	}
}

func TestRun_InvalidConfigPath(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), quietParams(t, "/nonexistent/config.yaml"))
	if err == nil {
		t.Error("expected error for invalid config path")
	}
}

func TestRun_InvalidConfigContent(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "bad.yaml", "not: valid: yaml: [")
	if err := Run(context.Background(), quietParams(t, path)); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestRun_ValidationFailure(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "noversion.yaml", "modules:\n  gateway.http: {}")
	if err := Run(context.Background(), quietParams(t, path)); err == nil {
		t.Error("expected validation error")
	}
}

func TestRun_StartsAndStops(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "linekit.yaml", `version: "1"
modules:
  gateway.http:
    bind: "127.0.0.1:0"
    base_url: "https://bot.example.com"
    static_dir: ""
`)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	params := quietParams(t, path)
	done := make(chan error, 1)
	go func() { done <- Run(ctx, params) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

// fakeApp serves modules from a map.
type fakeApp map[string]core.Module

func (f fakeApp) Module(id string) (core.Module, bool) {
	m, ok := f[id]
	return m, ok
}

type fakeBinder struct {
	baseURL string
	err     error
}

func (b *fakeBinder) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: "channel.fake"}
}

func (b *fakeBinder) Bind(baseURL string, _ *gateway.Gateway) error {
	b.baseURL = baseURL
	return b.err
}

func newGateway(t *testing.T) *gateway.Gateway {
	t.Helper()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte("bind: \"127.0.0.1:0\"\nbase_url: \"https://bot.example.com/\"\n"), &doc); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	gw := &gateway.Gateway{}
	if err := gw.Configure(doc.Content[0]); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := gw.Provision(core.NewAppContext(discardLogger(), t.TempDir())); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	t.Cleanup(func() { _ = gw.Stop(context.Background()) })
	return gw
}

func TestWireChannels(t *testing.T) {
	t.Parallel()

	b := &fakeBinder{}
	app := fakeApp{GatewayID: newGateway(t), "channel.fake": b}

	if err := wireChannels(context.Background(), app, []string{"channel.fake", GatewayID}, discardLogger()); err != nil {
		t.Fatalf("wireChannels: %v", err)
	}
	if b.baseURL != "https://bot.example.com" {
		t.Errorf("bound base URL = %q", b.baseURL)
	}
}

func TestWireChannels_BindError(t *testing.T) {
	t.Parallel()

	want := errors.New("boom")
	app := fakeApp{GatewayID: newGateway(t), "channel.fake": &fakeBinder{err: want}}

	err := wireChannels(context.Background(), app, []string{"channel.fake", GatewayID}, discardLogger())
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

func TestWireChannels_NoGateway(t *testing.T) {
	t.Parallel()

	app := fakeApp{"channel.fake": &fakeBinder{}}
	if err := wireChannels(context.Background(), app, []string{"channel.fake"}, discardLogger()); err == nil {
		t.Error("expected error without gateway")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestReportAuditFailures(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	healthy := security.NewAuditLogger(security.AuditLoggerConfig{Writer: io.Discard})
	healthy.Log(security.AuditEvent{Type: security.EventConfigAccess})
	reportAuditFailures(logger, healthy)
	if logs.Len() != 0 {
		t.Fatalf("logs = %q, want nothing for a healthy writer", logs.String())
	}

	broken := security.NewAuditLogger(security.AuditLoggerConfig{Writer: failingWriter{}})
	broken.Log(security.AuditEvent{Type: security.EventConfigAccess})
	broken.Log(security.AuditEvent{Type: security.EventLeave})
	reportAuditFailures(logger, broken)
	if !bytes.Contains(logs.Bytes(), []byte("audit events not written")) || !bytes.Contains(logs.Bytes(), []byte("count=2")) {
		t.Errorf("logs = %q, want a warning with count=2", logs.String())
	}
}
