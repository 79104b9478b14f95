// Package supervisor drives the retry loop around the child process.
//
// The loop is a small state machine:
//
//	Idle -> Running(i) -> Deciding -> Sleeping -> Running(i+1)
//	                               -> DoneSuccess
//	                               -> DoneFatal
//
// Each iteration runs one attempt, classifies it, and either stops or waits
// for the planned delay before the next attempt. Piped input is captured once
// before the first attempt and replayed unchanged to every attempt.
package supervisor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/CodexForgeBR/claude-supervisor/internal/attempt"
	"github.com/CodexForgeBR/claude-supervisor/internal/backoff"
	"github.com/CodexForgeBR/claude-supervisor/internal/exitcode"
	"github.com/CodexForgeBR/claude-supervisor/internal/logging"
	"github.com/CodexForgeBR/claude-supervisor/internal/replay"
)

// State is a supervisor loop state.
type State int

const (
	Idle State = iota
	Running
	Deciding
	Sleeping
	DoneSuccess
	DoneFatal
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Deciding:
		return "deciding"
	case Sleeping:
		return "sleeping"
	case DoneSuccess:
		return "done(success)"
	case DoneFatal:
		return "done(fatal)"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether s is a Done state.
func (s State) Terminal() bool {
	return s == DoneSuccess || s == DoneFatal
}

// RetryState is the mutable loop state, owned by a single Run call.
type RetryState struct {
	Attempt       int // 0-based index of the current attempt
	TotalWait     time.Duration
	LastSuggested time.Duration
}

// DelayPlanner computes the wait after a failed attempt.
type DelayPlanner interface {
	NextDelay(attempt int, suggested time.Duration, hasSuggestion bool) time.Duration
}

// Result summarizes a finished run.
type Result struct {
	State       State
	ExitCode    int
	Attempts    int
	Outcome     Outcome
	Exhausted   bool
	Interrupted bool
	TotalWait   time.Duration
	Elapsed     time.Duration
}

// Supervisor runs attempts until success, a fatal failure, or exhaustion.
type Supervisor struct {
	Runner  attempt.Runner
	Policy  Policy
	Planner DelayPlanner

	// Replay, when set, supplies every attempt with the same captured input.
	Replay *replay.Replay

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// Sleep defaults to backoff.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error

	// Now resolves announced reset times. Defaults to time.Now.
	Now func() time.Time

	// OnTransition, if set, observes every state change.
	OnTransition func(State, RetryState)
}

// Run executes the loop. The returned error is nil only on success; it is a
// *replay.InputTooLargeError (no attempt ran), a *FatalProcessError, or a
// wrapped context error when the supervisor was interrupted. Result is always
// populated, including the exit code to propagate.
func (s *Supervisor) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var st RetryState
	s.transition(Idle, st)

	if s.Replay != nil {
		snap, err := s.Replay.CaptureOnce()
		if err != nil {
			return Result{State: DoneFatal, ExitCode: exitcode.Error}, err
		}
		logging.Debugf("captured %d bytes of stdin for replay", len(snap))
	}

	sleep := s.Sleep
	if sleep == nil {
		sleep = backoff.Sleep
	}

	for {
		input, err := s.input()
		if err != nil {
			return Result{State: DoneFatal, ExitCode: exitcode.Error, Attempts: st.Attempt}, err
		}

		s.transition(Running, st)
		a := s.Runner.Run(ctx, st.Attempt, input)
		attempts := st.Attempt + 1

		if a.Interrupted || ctx.Err() != nil {
			return s.interrupted(ctx, st, attempts, start)
		}

		s.transition(Deciding, st)
		out := s.Policy.Classify(a)
		res := Result{
			ExitCode:  out.ExitCode,
			Attempts:  attempts,
			Outcome:   out,
			TotalWait: st.TotalWait,
			Elapsed:   time.Since(start),
		}

		switch out.Kind {
		case Success:
			res.State = DoneSuccess
			s.transition(DoneSuccess, st)
			if attempts > 1 {
				logging.Success(fmt.Sprintf("attempt=%d succeeded after %s", attempts, logging.FormatDuration(a.Elapsed)))
			} else {
				logging.Debugf("attempt=%d succeeded after %s", attempts, logging.FormatDuration(a.Elapsed))
			}
			return res, nil

		case FatalFailure:
			res.State = DoneFatal
			s.transition(DoneFatal, st)
			logging.Errorf("attempt=%d failed (code=%d): non-retryable: %s", attempts, out.ExitCode, out.Reason)
			return res, &FatalProcessError{Attempts: attempts, ExitCode: out.ExitCode, Reason: out.Reason}
		}

		transient := &TransientError{Attempt: attempts, ExitCode: out.ExitCode, Reason: out.Reason}
		if st.Attempt >= s.MaxRetries {
			res.State = DoneFatal
			res.Exhausted = true
			s.transition(DoneFatal, st)
			logging.Errorf("attempt=%d failed (code=%d): retries exhausted (%d/%d): %s",
				attempts, out.ExitCode, st.Attempt, s.MaxRetries, out.Reason)
			return res, &FatalProcessError{
				Attempts:  attempts,
				ExitCode:  out.ExitCode,
				Reason:    out.Reason,
				Exhausted: true,
				Cause:     transient,
			}
		}

		suggested, hasSuggestion := s.suggestion(out)
		delay := s.Planner.NextDelay(st.Attempt, suggested, hasSuggestion)
		if hasSuggestion {
			st.LastSuggested = suggested
		}
		logging.Warnf("attempt=%d failed (code=%d): %s; retrying in %s",
			attempts, out.ExitCode, out.Reason, logging.FormatDuration(delay))

		s.transition(Sleeping, st)
		if err := sleep(ctx, delay); err != nil {
			return s.interrupted(ctx, st, attempts, start)
		}
		st.TotalWait += delay
		st.Attempt++
	}
}

// suggestion returns the delay the output asked for, resolving an announced
// reset time against the clock.
func (s *Supervisor) suggestion(out Outcome) (time.Duration, bool) {
	if out.HasSuggestion || !out.HasReset {
		return out.SuggestedDelay, out.HasSuggestion
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	wait := out.Reset.Until(now())
	logging.Infof("limit resets at %s, %s from now", out.Reset, logging.FormatDuration(wait))
	return wait, true
}

func (s *Supervisor) input() (io.Reader, error) {
	if s.Replay == nil {
		return nil, nil
	}
	return s.Replay.StreamForAttempt()
}

func (s *Supervisor) interrupted(ctx context.Context, st RetryState, attempts int, start time.Time) (Result, error) {
	s.transition(DoneFatal, st)
	logging.Warnf("interrupted during attempt=%d", attempts)
	err := ctx.Err()
	if err == nil {
		err = context.Canceled
	}
	return Result{
		State:       DoneFatal,
		ExitCode:    exitcode.Interrupted,
		Attempts:    attempts,
		Interrupted: true,
		TotalWait:   st.TotalWait,
		Elapsed:     time.Since(start),
	}, fmt.Errorf("interrupted after %d attempts: %w", attempts, err)
}

func (s *Supervisor) transition(to State, st RetryState) {
	if to.Terminal() {
		logging.Debugf("state=%s attempt=%d waited=%s", to, st.Attempt+1, logging.FormatDuration(st.TotalWait))
	} else {
		logging.Debugf("state=%s attempt=%d", to, st.Attempt+1)
	}
	if s.OnTransition != nil {
		s.OnTransition(to, st)
	}
}
