// Package tee wires a child process's output streams to the supervisor.
//
// Two strategies exist, selected once per run:
//
//   - Passthrough hands the supervisor's own stdout/stderr files to the
//     child. Nothing is intercepted, so terminal rendering (cursor control,
//     colors, raw mode) behaves exactly as if the child ran directly.
//   - Capture gives the child pipes, forwards every chunk live to the
//     supervisor's streams and keeps a combined copy for classification.
package tee

import (
	"os"
	"os/exec"
)

// Mode is an output wiring strategy.
type Mode interface {
	// Name identifies the strategy in diagnostics.
	Name() string

	// Captures reports whether output is observed and accumulated.
	Captures() bool

	// Attach configures cmd's output streams. It must be called before
	// cmd.Start. onOutput, if non-nil, is called whenever the child
	// produces output and the strategy can observe it.
	Attach(cmd *exec.Cmd, onOutput func()) (Session, error)
}

// Session is the per-attempt half of a Mode.
type Session interface {
	// Started is called once cmd.Start has succeeded.
	Started()

	// Abort releases resources when cmd.Start failed.
	Abort()

	// Run drains the child's output concurrently with wait, which must
	// block until the child exits. It returns the accumulated output (nil
	// when nothing is captured) and wait's error.
	Run(wait func() error) ([]byte, error)
}

// Select picks the strategy for a run. Interactive runs pass the terminal
// through untouched unless forceCapture is set.
func Select(interactive, forceCapture bool, stdout, stderr *os.File) Mode {
	if interactive && !forceCapture {
		return &Passthrough{Stdout: stdout, Stderr: stderr}
	}
	return &Capture{Stdout: stdout, Stderr: stderr}
}

// Passthrough connects the child directly to the given files.
type Passthrough struct {
	Stdout *os.File
	Stderr *os.File
}

// Name implements Mode.
func (p *Passthrough) Name() string { return "passthrough" }

// Captures implements Mode.
func (p *Passthrough) Captures() bool { return false }

// Attach implements Mode. onOutput is never called: output is not observed.
func (p *Passthrough) Attach(cmd *exec.Cmd, _ func()) (Session, error) {
	if p.Stdout != nil {
		cmd.Stdout = p.Stdout
	}
	if p.Stderr != nil {
		cmd.Stderr = p.Stderr
	}
	return passthroughSession{}, nil
}

type passthroughSession struct{}

func (passthroughSession) Started() {}

func (passthroughSession) Abort() {}

func (passthroughSession) Run(wait func() error) ([]byte, error) {
	return nil, wait()
}
