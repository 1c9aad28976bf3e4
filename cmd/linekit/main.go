// Package main is the entry point for the linekit CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/flemzord/linekit/internal/config"
	"github.com/flemzord/linekit/internal/core"
	"github.com/flemzord/linekit/pkg/app"

	// Compiled modules.
	_ "github.com/flemzord/linekit/internal/gateway"
	_ "github.com/flemzord/linekit/modules/channel/line"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command that loads the configuration.
type globalFlags struct {
	configPath string
	logLevel   string
	envFile    string
	dataDir    string
}

func (g *globalFlags) runParams() (app.RunParams, error) {
	level, err := app.ParseLogLevel(g.logLevel)
	if err != nil {
		return app.RunParams{}, err
	}
	return app.RunParams{
		ConfigPath: g.configPath,
		Version:    version,
		Commit:     commit,
		Date:       date,
		DataDir:    g.dataDir,
		EnvFile:    g.envFile,
		LogLevel:   level,
	}, nil
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "linekit",
		Short:         "A webhook-driven LINE chat bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to configuration file")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.envFile, "env-file", app.DefaultEnvFile, "Dotenv file loaded before the configuration")
	pf.StringVar(&flags.dataDir, "data-dir", "", "Directory relative paths are resolved against (default: working directory)")

	root.AddCommand(
		versionCmd(),
		startCmd(flags),
		configCmd(flags),
		initCmd(),
		serviceCmd(flags),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled modules",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "linekit %s (commit: %s, built: %s)\n", version, commit, date)
	mods := core.GetModules()
	if len(mods) == 0 {
		fmt.Fprintln(w, "\nNo compiled modules.")
		return
	}
	fmt.Fprintln(w, "\nCompiled modules:")
	for _, mod := range mods {
		fmt.Fprintf(w, "  %s\n", mod.ID)
	}
}

func startCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start linekit with all configured modules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := flags.runParams()
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), params)
		},
	}
}

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration and provision every module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := app.LoadEnv(flags.envFile); err != nil {
				return err
			}
			return checkConfig(cmd.OutOrStdout(), path)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "paths",
		Short: "List the configuration search paths",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, p := range config.SearchPaths() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
		},
	})
	return cmd
}

// checkConfig loads, validates and provisions the configuration at path
// without starting anything.
func checkConfig(w io.Writer, path string) error {
	cfg, resolved, err := config.LoadResolved(path)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := core.NewAppContext(logger, app.DefaultDataDir())
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)

	application := core.NewApp(appCtx)
	ids := config.Resolve(cfg)
	if err := application.LoadModules(ids); err != nil {
		return err
	}
	defer application.Stop()

	if resolved == "" {
		resolved = "built-in template"
	}
	fmt.Fprintf(w, "Configuration OK: %s (%d modules)\n", resolved, len(ids))
	for _, id := range ids {
		fmt.Fprintf(w, "  %s\n", id)
	}
	return nil
}
