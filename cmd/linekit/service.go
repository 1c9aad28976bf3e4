package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/flemzord/linekit/pkg/app"
)

const serviceName = "linekit"

// program runs the application under the system service manager.
type program struct {
	params app.RunParams
	logger service.Logger
	cancel context.CancelFunc
	done   chan error
}

// Start implements service.Interface. It must not block.
func (p *program) Start(_ service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	go func() {
		err := app.Run(ctx, p.params)
		if err != nil && p.logger != nil {
			_ = p.logger.Error(err)
		}
		p.done <- err
	}()
	return nil
}

// Stop implements service.Interface.
func (p *program) Stop(_ service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	return <-p.done
}

// serviceConfig describes the service. The service manager starts the
// binary with "service run" and the same configuration flags.
func serviceConfig(params app.RunParams, logLevel string) (*service.Config, error) {
	args := []string{"service", "run", "--log-level", logLevel}
	if params.ConfigPath != "" {
		abs, err := filepath.Abs(params.ConfigPath)
		if err != nil {
			return nil, err
		}
		args = append(args, "--config", abs)
	}

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = app.DefaultDataDir()
	}
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, err
	}
	args = append(args, "--data-dir", abs)
	if params.EnvFile != "" {
		env := params.EnvFile
		if !filepath.IsAbs(env) {
			env = filepath.Join(abs, env)
		}
		args = append(args, "--env-file", env)
	}

	return &service.Config{
		Name:             serviceName,
		DisplayName:      "linekit",
		Description:      "LINE webhook chat bot",
		Arguments:        args,
		WorkingDirectory: abs,
	}, nil
}

func serviceCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage linekit as a system service",
	}

	newService := func() (service.Service, *program, error) {
		params, err := flags.runParams()
		if err != nil {
			return nil, nil, err
		}
		cfg, err := serviceConfig(params, flags.logLevel)
		if err != nil {
			return nil, nil, err
		}
		prg := &program{params: params}
		s, err := service.New(prg, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("service: %w", err)
		}
		return s, prg, nil
	}

	for _, action := range service.ControlAction {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: action + " the system service",
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, _, err := newService()
				if err != nil {
					return err
				}
				if err := service.Control(s, action); err != nil {
					return fmt.Errorf("service %s: %w", action, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "service %s: ok\n", action)
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the service status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, _, err := newService()
			if err != nil {
				return err
			}
			st, err := s.Status()
			if err != nil {
				return fmt.Errorf("service status: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), statusText(st))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager",
		Hidden: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, prg, err := newService()
			if err != nil {
				return err
			}
			logger, err := s.Logger(nil)
			if err == nil {
				prg.logger = logger
			} else {
				fmt.Fprintf(os.Stderr, "service logger unavailable: %v\n", err)
			}
			return s.Run()
		},
	})
	return cmd
}

func statusText(st service.Status) string {
	switch st {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
