package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/linekit/internal/config"
)

// initAnswers holds the values collected by the init wizard. Empty
// credentials are written as environment references.
type initAnswers struct {
	AccessToken string
	Secret      string
	BaseURL     string
	NgrokToken  string
	Port        string
}

func initCmd() *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively write a configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				dir := config.XDGDir()
				if dir == "" {
					dir = "."
				}
				output = filepath.Join(dir, config.FileName)
			}
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", output)
			}

			answers := initAnswers{Port: "3000"}
			if err := initForm(&answers).Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}

			raw, err := renderConfig(answers)
			if err != nil {
				return err
			}
			if err := writeConfig(output, raw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: user config dir)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func initForm(a *initAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Channel access token").
				Description("Leave empty to read LINE_ACCESS_TOKEN at startup.").
				EchoMode(huh.EchoModePassword).
				Value(&a.AccessToken),
			huh.NewInput().
				Title("Channel secret").
				Description("Leave empty to read CHANNEL_SECRET at startup.").
				EchoMode(huh.EchoModePassword).
				Value(&a.Secret),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Public base URL").
				Description("Leave empty to open an ngrok tunnel.").
				Value(&a.BaseURL).
				Validate(validateBaseURL),
			huh.NewInput().
				Title("ngrok authtoken").
				Description("Leave empty to read NGROK_AUTH_TOKEN at startup.").
				EchoMode(huh.EchoModePassword).
				Value(&a.NgrokToken),
			huh.NewInput().
				Title("Listen port").
				Value(&a.Port).
				Validate(validatePort),
		),
	)
}

func validateBaseURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http(s) URL")
	}
	return nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return errors.New("must be a number between 1 and 65535")
	}
	return nil
}

func orEnv(value, env string) string {
	if value != "" {
		return value
	}
	return "${" + env + "}"
}

// renderConfig produces a configuration file for a.
func renderConfig(a initAnswers) ([]byte, error) {
	if err := validatePort(a.Port); err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	if err := validateBaseURL(a.BaseURL); err != nil {
		return nil, fmt.Errorf("base URL: %w", err)
	}

	gw := map[string]any{
		"bind":       "0.0.0.0:" + a.Port,
		"static_dir": "static",
	}
	if a.BaseURL != "" {
		gw["base_url"] = a.BaseURL
	} else {
		gw["tunnel"] = map[string]any{"authtoken": orEnv(a.NgrokToken, "NGROK_AUTH_TOKEN")}
	}

	doc := map[string]any{
		"version": "1",
		"modules": map[string]any{
			"gateway.http": gw,
			"channel.line": map[string]any{
				"channel_access_token": orEnv(a.AccessToken, "LINE_ACCESS_TOKEN"),
				"channel_secret":       orEnv(a.Secret, "CHANNEL_SECRET"),
				"webhook_path":         "/callback",
				"download_dir":         "downloaded",
			},
		},
	}
	return yaml.Marshal(doc)
}

// writeConfig writes raw with owner-only permissions since it may hold
// credentials.
func writeConfig(path string, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
