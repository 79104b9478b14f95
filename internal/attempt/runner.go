// Package attempt runs one execution of the supervised child process.
package attempt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/CodexForgeBR/claude-supervisor/internal/exitcode"
	"github.com/CodexForgeBR/claude-supervisor/internal/logging"
	"github.com/CodexForgeBR/claude-supervisor/internal/tee"
)

// DefaultKillGrace is how long a child gets to exit after being asked to
// terminate before it is killed.
const DefaultKillGrace = 5 * time.Second

// Attempt is the record of one child execution.
type Attempt struct {
	Index     int
	StartedAt time.Time
	Elapsed   time.Duration

	// Output is the combined stdout+stderr in arrival order. It is nil
	// when the output mode does not capture.
	Output []byte

	// ExitCode is the child's exit code, the shell-style 128+N code for a
	// signal-terminated child, or 126/127 when the child could not be spawned.
	ExitCode int
	Signaled bool
	Signal   string

	// SpawnErr is set when the child could not be started at all.
	SpawnErr error

	// Stalled is set when the inactivity watchdog terminated the child.
	Stalled bool

	// Interrupted is set when the supervisor itself was cancelled.
	Interrupted bool
}

// Runner executes a single attempt. input, when non-nil, replaces the
// supervisor's own stdin for this attempt.
type Runner interface {
	Run(ctx context.Context, index int, input io.Reader) Attempt
}

// ProcessRunner runs the child as an operating system process.
type ProcessRunner struct {
	Command string
	Args    []string
	Mode    tee.Mode

	// Stdin is used when Run receives no input view. Defaults to os.Stdin.
	Stdin io.Reader

	// Env is the child environment; nil inherits the supervisor's.
	Env []string

	// KillGrace overrides DefaultKillGrace when positive.
	KillGrace time.Duration

	// InactivityTimeout terminates a child that produced no output for
	// this long. Zero disables the watchdog. Only effective when the mode
	// captures output.
	InactivityTimeout time.Duration
}

// Run spawns the child, wires its streams and blocks until it exits and all
// of its output has been drained.
func (r *ProcessRunner) Run(ctx context.Context, index int, input io.Reader) Attempt {
	a := Attempt{Index: index, StartedAt: time.Now()}

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(attemptCtx, r.Command, r.Args...)
	cmd.Env = r.Env
	cmd.Stdin = r.stdin(input)

	// A captured child does not own the terminal, so it gets its own process
	// group and termination reaches everything it spawned. A passthrough
	// child stays in the foreground group to keep job control working.
	group := r.Mode.Captures()
	if group {
		isolate(cmd)
	}
	cmd.Cancel = func() error {
		if group {
			return terminateGroup(cmd.Process)
		}
		return terminate(cmd.Process)
	}
	cmd.WaitDelay = r.KillGrace
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultKillGrace
	}

	var lastOutput atomic.Int64
	lastOutput.Store(time.Now().UnixNano())
	touch := func() { lastOutput.Store(time.Now().UnixNano()) }

	sess, err := r.Mode.Attach(cmd, touch)
	if err != nil {
		a.SpawnErr = fmt.Errorf("attach output: %w", err)
		a.ExitCode = exitcode.Error
		a.Elapsed = time.Since(a.StartedAt)
		return a
	}

	if err := cmd.Start(); err != nil {
		sess.Abort()
		a.SpawnErr = fmt.Errorf("failed to spawn %q: %w", r.Command, err)
		a.ExitCode = SpawnExitCode(err)
		a.Elapsed = time.Since(a.StartedAt)
		return a
	}
	sess.Started()
	logging.Debugf("attempt=%d started pid=%d mode=%s", index+1, cmd.Process.Pid, r.Mode.Name())

	var stalled atomic.Bool
	if r.InactivityTimeout > 0 && r.Mode.Captures() {
		go watchInactivity(attemptCtx, cancel, watchConfig{
			Timeout:    r.InactivityTimeout,
			LastOutput: &lastOutput,
			OnStall:    func() { stalled.Store(true) },
		})
	}

	out, waitErr := sess.Run(cmd.Wait)
	a.Output = out
	a.Elapsed = time.Since(a.StartedAt)
	a.Stalled = stalled.Load()
	a.Interrupted = ctx.Err() != nil

	r.recordExit(&a, cmd.ProcessState, waitErr)
	return a
}

func (r *ProcessRunner) stdin(input io.Reader) io.Reader {
	if input != nil {
		return input
	}
	if r.Stdin != nil {
		return r.Stdin
	}
	return os.Stdin
}

func (r *ProcessRunner) recordExit(a *Attempt, ps *os.ProcessState, waitErr error) {
	if ps == nil {
		// Wait failed before the process was reaped.
		a.ExitCode = exitcode.Error
		if waitErr != nil {
			logging.Warnf("attempt=%d wait failed: %v", a.Index+1, waitErr)
		}
		return
	}

	if sig, ok := exitSignal(ps); ok {
		a.Signaled = true
		a.Signal = sig.String()
		a.ExitCode = exitcode.FromSignal(int(sig))
		return
	}

	a.ExitCode = ps.ExitCode()
	if waitErr != nil && !isExitError(waitErr) {
		// The child exited but an I/O copy (e.g. stdin) failed or WaitDelay
		// expired; the exit status still stands.
		logging.Debugf("attempt=%d wait: %v", a.Index+1, waitErr)
	}
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// SpawnExitCode maps a start or lookup failure to the shell convention:
// 126 when the binary exists but cannot be executed, 127 otherwise.
func SpawnExitCode(err error) int {
	if errors.Is(err, os.ErrPermission) {
		return exitcode.CannotExecute
	}
	return exitcode.NotFound
}

// Resolve looks name up in PATH (or checks it directly when it contains a
// path separator) and returns the path that will be executed.
func Resolve(name string) (string, error) {
	return exec.LookPath(name)
}
