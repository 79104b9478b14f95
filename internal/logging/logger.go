// Package logging provides colored, leveled diagnostics for claude-supervisor.
//
// Every line is written to stderr: stdout belongs to the supervised child
// and must carry nothing but the child's own output. Debug output is
// suppressed unless verbose mode is enabled via SetVerbose(true).
package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
)

// Tag prefixes every diagnostic line so it can be told apart from child output.
const Tag = "[claude-supervisor]"

// verbose controls whether Debug() produces output.
var verbose bool

// Color printers for each log level.
var (
	tagPrefix     = color.New(color.Faint).SprintFunc()
	infoPrefix    = color.New(color.FgBlue).SprintFunc()
	successPrefix = color.New(color.FgGreen).SprintFunc()
	warnPrefix    = color.New(color.FgYellow).SprintFunc()
	errorPrefix   = color.New(color.FgRed).SprintFunc()
	debugPrefix   = color.New(color.FgBlue).SprintFunc()
)

// SetVerbose enables or disables Debug output.
func SetVerbose(v bool) {
	verbose = v
}

// Verbose reports whether Debug output is enabled.
func Verbose() bool {
	return verbose
}

func emit(level string, msg string) {
	fmt.Fprintln(os.Stderr, tagPrefix(Tag)+" "+level+" "+msg)
}

// Info prints an informational message in blue.
func Info(msg string) {
	emit(infoPrefix("[INFO]"), msg)
}

// Infof is Info with fmt.Sprintf formatting.
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Success prints a success message in green.
func Success(msg string) {
	emit(successPrefix("[SUCCESS]"), msg)
}

// Warn prints a warning message in yellow.
func Warn(msg string) {
	emit(warnPrefix("[WARN]"), msg)
}

// Warnf is Warn with fmt.Sprintf formatting.
func Warnf(format string, args ...any) {
	Warn(fmt.Sprintf(format, args...))
}

// Error prints an error message in red.
func Error(msg string) {
	emit(errorPrefix("[ERROR]"), msg)
}

// Errorf is Error with fmt.Sprintf formatting.
func Errorf(format string, args ...any) {
	Error(fmt.Sprintf(format, args...))
}

// Debug prints a debug message in blue, only when verbose mode is enabled.
func Debug(msg string) {
	if !verbose {
		return
	}
	emit(debugPrefix("[DEBUG]"), msg)
}

// Debugf is Debug with fmt.Sprintf formatting.
func Debugf(format string, args ...any) {
	if !verbose {
		return
	}
	Debug(fmt.Sprintf(format, args...))
}

// FormatDuration renders a duration for humans.
//
// Examples:
//
//	FormatDuration(0)                      => "0ms"
//	FormatDuration(750*time.Millisecond)   => "750ms"
//	FormatDuration(1500*time.Millisecond)  => "1.5s"
//	FormatDuration(90*time.Second)         => "1m 30s"
//	FormatDuration(3661*time.Second)       => "1h 1m 1s"
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		ms := d.Milliseconds()
		if ms%1000 == 0 {
			return fmt.Sprintf("%ds", ms/1000)
		}
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	seconds := int(d / time.Second)
	if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
