package supervisor

import (
	"fmt"
	"slices"
	"time"

	"github.com/CodexForgeBR/claude-supervisor/internal/attempt"
	"github.com/CodexForgeBR/claude-supervisor/internal/logging"
	"github.com/CodexForgeBR/claude-supervisor/internal/pattern"
)

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	Success OutcomeKind = iota
	RetryableFailure
	FatalFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case RetryableFailure:
		return "retryable"
	case FatalFailure:
		return "fatal"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the classification of one attempt.
type Outcome struct {
	Kind     OutcomeKind
	ExitCode int
	Reason   string

	// Suggested delay extracted from the output; only meaningful for
	// RetryableFailure.
	SuggestedDelay time.Duration
	HasSuggestion  bool

	// Reset is an announced limit reset, resolved against the clock by the
	// Supervisor when there is no explicit suggestion.
	Reset    pattern.Reset
	HasReset bool
}

// Policy holds the rules that turn an Attempt into an Outcome.
type Policy struct {
	Classifier pattern.Classifier

	// RetryOnAnyError makes every non-zero exit retryable.
	RetryOnAnyError bool

	// RetryExitCodes are exit codes that are retryable without a pattern match.
	RetryExitCodes []int

	// RetrySignals makes a signal-terminated child retryable.
	RetrySignals bool

	// RetryUncaptured makes every non-zero exit retryable when the output
	// mode passes the terminal through and there is no text to classify.
	RetryUncaptured bool
}

// Classify decides the Outcome of a finished attempt. Rules are applied in
// order; the first that applies wins.
func (p Policy) Classify(a attempt.Attempt) Outcome {
	switch {
	case a.SpawnErr != nil:
		return Outcome{Kind: FatalFailure, ExitCode: a.ExitCode, Reason: a.SpawnErr.Error()}

	case a.ExitCode == 0 && !a.Signaled:
		return Outcome{Kind: Success, ExitCode: 0}

	// A stalled child was stopped by the watchdog and is usually Signaled too.
	case a.Stalled:
		return Outcome{Kind: RetryableFailure, ExitCode: a.ExitCode, Reason: "no output before the inactivity timeout"}

	case a.Signaled:
		reason := fmt.Sprintf("terminated by signal (%s)", a.Signal)
		if p.RetrySignals {
			return Outcome{Kind: RetryableFailure, ExitCode: a.ExitCode, Reason: reason}
		}
		return Outcome{Kind: FatalFailure, ExitCode: a.ExitCode, Reason: reason}
	}

	if p.Classifier != nil && len(a.Output) > 0 {
		v := p.Classifier.Classify(string(a.Output))
		if v.Retryable {
			logging.Debugf("attempt=%d matched pattern %s", a.Index+1, v.Pattern)
			return Outcome{
				Kind:           RetryableFailure,
				ExitCode:       a.ExitCode,
				Reason:         fmt.Sprintf("output matched %s", v.Pattern),
				SuggestedDelay: v.SuggestedDelay,
				HasSuggestion:  v.HasSuggestion,
				Reset:          v.Reset,
				HasReset:       v.HasReset,
			}
		}
	}

	if slices.Contains(p.RetryExitCodes, a.ExitCode) {
		return Outcome{Kind: RetryableFailure, ExitCode: a.ExitCode, Reason: fmt.Sprintf("exit code %d is retryable", a.ExitCode)}
	}

	if p.RetryUncaptured {
		return Outcome{Kind: RetryableFailure, ExitCode: a.ExitCode, Reason: fmt.Sprintf("exit code %d (interactive)", a.ExitCode)}
	}

	if p.RetryOnAnyError {
		return Outcome{Kind: RetryableFailure, ExitCode: a.ExitCode, Reason: fmt.Sprintf("exit code %d (retry on any error)", a.ExitCode)}
	}

	return Outcome{Kind: FatalFailure, ExitCode: a.ExitCode, Reason: fmt.Sprintf("exit code %d with no retryable pattern", a.ExitCode)}
}
