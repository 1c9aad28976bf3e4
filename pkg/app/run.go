// Package app provides the entry point shared by the linekit commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/flemzord/linekit/internal/config"
	"github.com/flemzord/linekit/internal/core"
	"github.com/flemzord/linekit/internal/security"
	"github.com/flemzord/linekit/internal/telemetry"
)

// DefaultEnvFile is loaded into the environment before the configuration.
const DefaultEnvFile = ".env"

const telemetryShutdownTimeout = 5 * time.Second

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file. If
	// empty, the standard locations are searched and the built-in template
	// applies when none exists.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// DataDir is where relative module paths such as the download
	// directory are resolved. Defaults to the working directory.
	DataDir string

	// EnvFile is a dotenv file loaded before the configuration. A missing
	// file is ignored. Defaults to DefaultEnvFile.
	EnvFile string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level

	// LogOutput and AuditOutput default to os.Stderr.
	LogOutput   io.Writer
	AuditOutput io.Writer
}

// Run loads configuration, starts all modules, and blocks until ctx is done
// or a shutdown signal is received.
func Run(ctx context.Context, params RunParams) error {
	if err := LoadEnv(params.EnvFile); err != nil {
		return err
	}

	cfg, cfgPath, err := config.LoadResolved(params.ConfigPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	credStore := security.NewCredentialStore()
	redactor := security.NewRedactor()

	logOut := params.LogOutput
	if logOut == nil {
		logOut = os.Stderr
	}
	// Wrap the text handler in a redacting handler to prevent secret leakage in logs.
	innerHandler := slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: params.LogLevel,
	})
	logger := slog.New(security.NewRedactingHandler(innerHandler, redactor))

	auditOut := params.AuditOutput
	if auditOut == nil {
		auditOut = os.Stderr
	}
	auditLogger := security.NewAuditLogger(security.AuditLoggerConfig{
		Writer:   auditOut,
		Redactor: redactor,
	})
	defer reportAuditFailures(logger, auditLogger)

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetryConfig(cfg.Telemetry, params.Version))
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	appCtx := core.NewAppContext(logger, dataDir)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)

	// Register security services for cross-module discovery.
	appCtx.RegisterService("security.credentials", credStore)
	appCtx.RegisterService("security.redactor", redactor)
	appCtx.RegisterService("security.audit", auditLogger)

	// Register the config path so the gateway can serve it. Empty means the
	// built-in template.
	appCtx.RegisterService("config.path", cfgPath)

	if cfgPath == "" {
		logger.Info("no configuration file found, using built-in template")
	} else {
		logger.Info("configuration loaded", "path", cfgPath)
	}

	application := core.NewApp(appCtx)
	ids := config.Resolve(cfg)
	if err := application.LoadModules(ids); err != nil {
		return err
	}

	// Resolve the public base URL and bind the channels between LoadModules
	// and Start.
	if err := wireChannels(ctx, application, ids, logger); err != nil {
		return err
	}

	return application.Run(ctx)
}

// reportAuditFailures warns when audit events were lost to a failing writer.
func reportAuditFailures(logger *slog.Logger, audit *security.AuditLogger) {
	if n := audit.WriteErrors(); n > 0 {
		logger.Warn("audit events not written", "count", n)
	}
}

// LoadEnv loads a dotenv file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// DefaultDataDir returns the current working directory.
func DefaultDataDir() string {
	dir, _ := os.Getwd()
	return dir
}

func telemetryConfig(t *config.TelemetryConfig, version string) telemetry.Config {
	if t == nil {
		return telemetry.Config{Version: version}
	}
	return telemetry.Config{
		Endpoint:    t.Endpoint,
		Insecure:    t.Insecure,
		ServiceName: t.ServiceName,
		SampleRatio: t.SampleRatio,
		Version:     version,
	}
}
