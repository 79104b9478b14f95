// Package banner provides colored banner display functions for the supervisor.
//
// Banners summarize how a run ended. They are written to stderr so the
// child's stdout stays clean for pipelines.
package banner

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/CodexForgeBR/claude-supervisor/internal/logging"
)

var (
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
	warnColor    = color.New(color.FgYellow, color.Bold).SprintFunc()
)

const rule = "═══════════════════════════════════════════════════"

func line(args ...any) {
	fmt.Fprintln(os.Stderr, args...)
}

func linef(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

// PrintSuccessBanner reports a run that succeeded after retrying. Nothing is
// printed when the first attempt succeeded, so a clean run stays silent.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ✓ Succeeded on attempt 3
//	  Elapsed:  12.4s
//	═══════════════════════════════════════════════════
func PrintSuccessBanner(attempts int, elapsed time.Duration) {
	if attempts <= 1 {
		return
	}
	sep := successColor(rule)
	line(sep)
	line(successColor(fmt.Sprintf("  ✓ Succeeded on attempt %d", attempts)))
	linef("  Elapsed:  %s\n", logging.FormatDuration(elapsed))
	line(sep)
}

// PrintGaveUpBanner reports an exhausted retry budget.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ✗ Gave up after 7 attempts
//	═══════════════════════════════════════════════════
//	  Exit code: 1
//	  Last error: output matched (?i)overloaded
//	═══════════════════════════════════════════════════
func PrintGaveUpBanner(attempts int, code int, reason string) {
	sep := errorColor(rule)
	line(sep)
	line(errorColor(fmt.Sprintf("  ✗ Gave up after %d attempts", attempts)))
	line(sep)
	linef("  Exit code: %d\n", code)
	printReason("Last error", reason)
	line(sep)
}

// PrintFatalBanner reports a non-retryable failure.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ✗ Non-retryable failure on attempt 1
//	═══════════════════════════════════════════════════
//	  Exit code: 2
//	  Reason:    exit code 2 with no retryable pattern
//	═══════════════════════════════════════════════════
func PrintFatalBanner(attempt int, code int, reason string) {
	sep := errorColor(rule)
	line(sep)
	line(errorColor(fmt.Sprintf("  ✗ Non-retryable failure on attempt %d", attempt)))
	line(sep)
	linef("  Exit code: %d\n", code)
	printReason("Reason", reason)
	line(sep)
}

// PrintInterruptedBanner reports a run stopped by SIGINT or SIGTERM.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ⚠ Interrupted during attempt 2
//	═══════════════════════════════════════════════════
func PrintInterruptedBanner(attempt int) {
	sep := warnColor(rule)
	line(sep)
	line(warnColor(fmt.Sprintf("  ⚠ Interrupted during attempt %d", attempt)))
	line(sep)
}

func printReason(label, reason string) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	linef("  %-10s %s\n", label+":", reason)
}
