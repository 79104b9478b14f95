package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/claude-supervisor/internal/cli"
	"github.com/CodexForgeBR/claude-supervisor/internal/config"
	"github.com/CodexForgeBR/claude-supervisor/internal/exitcode"
	"github.com/CodexForgeBR/claude-supervisor/internal/logging"
	"github.com/CodexForgeBR/claude-supervisor/internal/replay"
	sighandler "github.com/CodexForgeBR/claude-supervisor/internal/signal"
)

// version vars injected via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cfg := config.NewDefaultConfig()
	code := exitcode.Success

	rootCmd := &cobra.Command{
		Use:     "claude-supervisor [flags] [--] [args...]",
		Short:   "Run a command and retry it on transient failures",
		Long:    "claude-supervisor runs a child command, replays piped input to every attempt and retries with exponential backoff when the output shows a transient error.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.ValidateFlags(cmd, cfg); err != nil {
				code = exitcode.Error
				return err
			}
			var err error
			code, err = runSupervisor(cmd, cfg, args)
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.BindFlags(rootCmd, cfg)
	cli.SetCustomHelp(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		logging.Error(err.Error())
		if code == exitcode.Success {
			code = exitcode.Error
		}
	}
	os.Exit(code)
}

// runSupervisor assembles the final configuration and runs the retry loop
// against the process's real standard streams.
func runSupervisor(cmd *cobra.Command, flagCfg *config.Config, args []string) (int, error) {
	cfg, err := config.LoadWithPrecedence(config.GlobalPath(), flagCfg.ConfigFile, config.LoadEnv(), cli.Overrides(cmd, flagCfg))
	if err != nil {
		return exitcode.Error, fmt.Errorf("load config: %w", err)
	}
	cfg.Args = args

	logging.SetVerbose(cfg.Verbose)
	if !replay.IsInteractive(os.Stderr) {
		color.NoColor = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sighandler.SetupSignalHandler(ctx, cancel, func(sig os.Signal) {
		logging.Warnf("received %s, stopping", sig)
	})

	return supervise(ctx, cfg, stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
}
