package supervisor

import "fmt"

// TransientError describes an attempt classified as retryable.
type TransientError struct {
	Attempt  int // 1-based
	ExitCode int
	Reason   string
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("attempt %d: transient failure (code=%d): %s", e.Attempt, e.ExitCode, e.Reason)
}

// FatalProcessError is the final failure of a run: a non-retryable attempt
// or an exhausted retry budget.
type FatalProcessError struct {
	Attempts  int
	ExitCode  int
	Reason    string
	Exhausted bool

	// Cause is the last TransientError when Exhausted.
	Cause error
}

func (e *FatalProcessError) Error() string {
	if e.Exhausted {
		return fmt.Sprintf("gave up after %d attempts (code=%d): %s", e.Attempts, e.ExitCode, e.Reason)
	}
	return fmt.Sprintf("non-retryable error on attempt %d (code=%d): %s", e.Attempts, e.ExitCode, e.Reason)
}

func (e *FatalProcessError) Unwrap() error {
	return e.Cause
}
