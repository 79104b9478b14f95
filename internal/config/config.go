// Package config defines the claude-supervisor configuration model and default values.
//
// Configuration is assembled from multiple sources with a strict precedence
// chain: built-in defaults < global config file < explicit config file <
// environment < CLI flag overrides.
package config

import (
	"runtime"
	"time"
)

// Environment and config-file keys.
const (
	KeyCmd               = "CLAUDE_SUPERVISOR_CMD"
	KeyMaxRetries        = "CLAUDE_SUPERVISOR_MAX_RETRIES"
	KeyBaseMs            = "CLAUDE_SUPERVISOR_BASE_MS"
	KeyCapMs             = "CLAUDE_SUPERVISOR_CAP_MS"
	KeyPatterns          = "CLAUDE_SUPERVISOR_PATTERNS"
	KeyForceTee          = "CLAUDE_SUPERVISOR_FORCE_TEE"
	KeyRetryOnAnyError   = "CLAUDE_SUPERVISOR_RETRY_ON_ANY_ERROR"
	KeyRetryExitCodes    = "CLAUDE_SUPERVISOR_RETRY_EXIT_CODES"
	KeyRetrySignals      = "CLAUDE_SUPERVISOR_RETRY_SIGNALS"
	KeyMaxInputBytes     = "CLAUDE_SUPERVISOR_MAX_INPUT_BYTES"
	KeyInactivityTimeout = "CLAUDE_SUPERVISOR_INACTIVITY_TIMEOUT"
	KeyVerbose           = "CLAUDE_SUPERVISOR_VERBOSE"
)

// WhitelistedVars lists every configuration variable name that may appear in
// config files or the environment. Anything else is silently ignored.
var WhitelistedVars = [12]string{
	KeyCmd,
	KeyMaxRetries,
	KeyBaseMs,
	KeyCapMs,
	KeyPatterns,
	KeyForceTee,
	KeyRetryOnAnyError,
	KeyRetryExitCodes,
	KeyRetrySignals,
	KeyMaxInputBytes,
	KeyInactivityTimeout,
	KeyVerbose,
}

// Built-in defaults.
const (
	DefaultMaxRetries    = 6
	DefaultBaseDelayMs   = 500
	DefaultMaxDelayMs    = 20000
	DefaultMaxInputBytes = 64 << 20
)

// Config holds every setting of one supervisor run.
type Config struct {
	// Child process.
	Command string
	Args    []string

	// Retry budget and backoff.
	MaxRetries  int
	BaseDelayMs int
	MaxDelayMs  int

	// Classification.
	Patterns        string // extra pipe-separated regexes, added to the defaults
	RetryOnAnyError bool
	RetryExitCodes  string // comma-separated
	RetrySignals    bool

	// I/O.
	ForceCapture  bool
	MaxInputBytes int64

	// Seconds without output before an attempt is killed; 0 disables.
	InactivityTimeout int

	Verbose bool

	// CLI-only.
	ConfigFile string

	// Derived at startup from the terminal state and arguments.
	Interactive bool
}

// DefaultCommand is the child executable used when none is configured.
func DefaultCommand() string {
	if runtime.GOOS == "windows" {
		return "claude.exe"
	}
	return "claude"
}

// NewDefaultConfig returns a Config populated with all built-in default values.
func NewDefaultConfig() *Config {
	return &Config{
		Command:       DefaultCommand(),
		MaxRetries:    DefaultMaxRetries,
		BaseDelayMs:   DefaultBaseDelayMs,
		MaxDelayMs:    DefaultMaxDelayMs,
		MaxInputBytes: DefaultMaxInputBytes,
	}
}

// BaseDelay returns BaseDelayMs as a Duration.
func (c *Config) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMs) * time.Millisecond
}

// MaxDelay returns MaxDelayMs as a Duration.
func (c *Config) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelayMs) * time.Millisecond
}

// Inactivity returns InactivityTimeout as a Duration.
func (c *Config) Inactivity() time.Duration {
	return time.Duration(c.InactivityTimeout) * time.Second
}
