package main

import (
	"context"
	"errors"
	"os"

	"github.com/CodexForgeBR/claude-supervisor/internal/attempt"
	"github.com/CodexForgeBR/claude-supervisor/internal/backoff"
	"github.com/CodexForgeBR/claude-supervisor/internal/banner"
	"github.com/CodexForgeBR/claude-supervisor/internal/config"
	"github.com/CodexForgeBR/claude-supervisor/internal/exitcode"
	"github.com/CodexForgeBR/claude-supervisor/internal/logging"
	"github.com/CodexForgeBR/claude-supervisor/internal/pattern"
	"github.com/CodexForgeBR/claude-supervisor/internal/replay"
	"github.com/CodexForgeBR/claude-supervisor/internal/supervisor"
	"github.com/CodexForgeBR/claude-supervisor/internal/tee"
)

// stdio holds the streams the supervisor and its child share.
type stdio struct {
	In  *os.File
	Out *os.File
	Err *os.File
}

// interactive reports whether the child should own the terminal: stdin is a
// terminal, no arguments are forwarded and capture was not forced.
func interactive(stdinTTY bool, args []string, forceCapture bool) bool {
	return stdinTTY && len(args) == 0 && !forceCapture
}

// supervise validates cfg, wires the components and runs the retry loop.
// It returns the exit code to propagate. The error is non-nil only when the
// run could not start (bad configuration, missing command, oversized input);
// child failures are reported through banners and the exit code.
func supervise(ctx context.Context, cfg *config.Config, s stdio) (int, error) {
	if err := cfg.Validate(); err != nil {
		return exitcode.Error, err
	}
	retryCodes, err := cfg.ExitCodes()
	if err != nil {
		return exitcode.Error, err
	}

	path, err := attempt.Resolve(cfg.Command)
	if err != nil {
		return attempt.SpawnExitCode(err), &config.ConfigurationError{Field: "cmd", Reason: err.Error()}
	}

	stdinTTY := replay.IsInteractive(s.In)
	cfg.Interactive = interactive(stdinTTY, cfg.Args, cfg.ForceCapture)

	var rp *replay.Replay
	if !stdinTTY {
		rp = replay.New(s.In, cfg.MaxInputBytes)
		if snap, err := rp.CaptureOnce(); err == nil && len(snap) == 0 && len(cfg.Args) == 0 {
			logging.Warn("no stdin and no child args. To run interactive mode, invoke from a terminal without a pipe. " +
				"To run non-interactive mode, pass child args after -- (e.g. -- -p).")
		}
	}

	mode := tee.Select(cfg.Interactive, cfg.ForceCapture, s.Out, s.Err)
	logging.Debugf("command=%s args=%q mode=%s max-retries=%d", path, cfg.Args, mode.Name(), cfg.MaxRetries)

	extra := pattern.SplitList(cfg.Patterns)
	matcher, warnings := pattern.New(extra...)
	for _, w := range warnings {
		logging.Warnf("skipping pattern: %v", w)
	}
	if logging.Verbose() {
		for _, p := range extra {
			logging.Debugf("extra retry pattern %q", p)
		}
	}

	sup := &supervisor.Supervisor{
		Runner: &attempt.ProcessRunner{
			Command:           path,
			Args:              cfg.Args,
			Mode:              mode,
			Stdin:             s.In,
			InactivityTimeout: cfg.Inactivity(),
		},
		Policy: supervisor.Policy{
			Classifier:      matcher,
			RetryOnAnyError: cfg.RetryOnAnyError,
			RetryExitCodes:  retryCodes,
			RetrySignals:    cfg.RetrySignals,
			RetryUncaptured: !mode.Captures(),
		},
		Planner:    backoff.NewPlanner(cfg.BaseDelay(), cfg.MaxDelay()),
		Replay:     rp,
		MaxRetries: cfg.MaxRetries,
	}

	res, err := sup.Run(ctx)
	logging.Debugf("finished state=%s attempts=%d waited=%s exit=%d (%s)",
		res.State, res.Attempts, logging.FormatDuration(res.TotalWait), res.ExitCode, exitcode.Name(res.ExitCode))

	var tooLarge *replay.InputTooLargeError
	if errors.As(err, &tooLarge) {
		return res.ExitCode, err
	}
	report(res, err)
	return res.ExitCode, nil
}

// report prints the banner matching how the run ended.
func report(res supervisor.Result, err error) {
	var fatal *supervisor.FatalProcessError
	switch {
	case err == nil:
		banner.PrintSuccessBanner(res.Attempts, res.Elapsed)
	case res.Interrupted:
		banner.PrintInterruptedBanner(res.Attempts)
	case errors.As(err, &fatal) && fatal.Exhausted:
		banner.PrintGaveUpBanner(fatal.Attempts, fatal.ExitCode, fatal.Reason)
	case errors.As(err, &fatal):
		banner.PrintFatalBanner(fatal.Attempts, fatal.ExitCode, fatal.Reason)
	default:
		logging.Error(err.Error())
	}
}
