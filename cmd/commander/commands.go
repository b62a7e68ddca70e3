package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Cyclone1070/commander/internal/config"
	"github.com/Cyclone1070/commander/internal/logging"
	"github.com/Cyclone1070/commander/internal/transport/mcp"
	"github.com/Cyclone1070/commander/internal/workflow/session"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	root       string
	logLevel   string
}

func newRootCmd(backends func(*slog.Logger) BackendFactory) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "commander",
		Short:         "Autonomous coding agent confined to a mission sandbox",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a config file (.json, .toml or .yaml)")
	root.PersistentFlags().StringVar(&flags.root, "root", "", "sandbox root directory (overrides sandbox.root)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	// setup loads config and wires the application for a subcommand.
	setup := func(cmd *cobra.Command) (*Dependencies, error) {
		cfg, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		if flags.root != "" {
			cfg.Sandbox.Root = flags.root
		}
		if flags.logLevel != "" {
			cfg.Log.Level = flags.logLevel
		}
		logger, _, err := logging.New(cfg.Log, cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		return buildDependencies(cmd.Context(), cfg, logger, backends(logger))
	}

	root.AddCommand(
		newRunCmd(setup),
		newServeCmd(setup),
		newHeartbeatCmd(setup),
		newToolsCmd(setup),
	)
	return root
}

type setupFunc func(cmd *cobra.Command) (*Dependencies, error)

func newRunCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "run [objective...]",
		Short: "Run one objective and print the agent's report",
		Long: `Run one objective to completion. The objective is taken from the
arguments, or read from stdin when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			objective, err := argsOrStdin(cmd, args)
			if err != nil {
				return err
			}
			deps, err := setup(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := deps.Pool.Submit(ctx, session.NewSessionID(), objective)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Answer)
			fmt.Fprintln(out)
			fmt.Fprintln(out, deps.Ledger.Summary())
			return nil
		},
	}
}

func newServeCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the agent as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := setup(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()
			return mcp.New(deps.Pool, deps.Ledger, deps.Logger).ServeStdio()
		},
	}
}

func newHeartbeatCmd(setup setupFunc) *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "heartbeat",
		Short: "Run one watchdog check and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if state == "" {
				s, err := argsOrStdin(cmd, nil)
				if err != nil {
					return err
				}
				state = s
			}
			deps, err := setup(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			rep := deps.Heartbeat.Tick(cmd.Context(), state)
			fmt.Fprintln(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "system state for the watchdog (read from stdin when empty)")
	return cmd
}

func newToolsCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool declarations offered to the reasoning model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := setup(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(deps.Tools.Declarations())
		},
	}
}

func argsOrStdin(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("no input: pass it as arguments or on stdin")
	}
	return text, nil
}
