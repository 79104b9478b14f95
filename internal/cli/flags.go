// Package cli provides flag binding and validation for the claude-supervisor CLI.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/claude-supervisor/internal/config"
)

// BindFlags registers the supervisor flags on the given cobra command.
// The flags directly modify fields in the provided config pointer.
//
// Interspersed parsing is disabled: the first positional argument ends flag
// parsing, so everything from there on (and everything after "--") is
// forwarded to the child verbatim.
func BindFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	flags.SetInterspersed(false)

	// Child process
	flags.StringVar(&cfg.Command, "cmd", cfg.Command, "Executable to supervise")

	// Retry budget and backoff
	flags.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "Retries after the first attempt")
	flags.IntVar(&cfg.BaseDelayMs, "base-delay-ms", cfg.BaseDelayMs, "Base backoff delay in milliseconds")
	flags.IntVar(&cfg.MaxDelayMs, "max-delay-ms", cfg.MaxDelayMs, "Backoff cap in milliseconds")

	// Classification
	flags.StringVar(&cfg.Patterns, "patterns", "", "Extra pipe-separated regexes that mark output as retryable")
	flags.BoolVar(&cfg.RetryOnAnyError, "retry-on-any-error", false, "Retry every non-zero exit")
	flags.StringVar(&cfg.RetryExitCodes, "retry-exit-codes", "", "Comma-separated exit codes that are always retryable")
	flags.BoolVar(&cfg.RetrySignals, "retry-signals", false, "Retry when the child is killed by a signal")

	// I/O
	flags.BoolVar(&cfg.ForceCapture, "force-tee", false, "Capture and tee output even on an interactive terminal")
	flags.Int64Var(&cfg.MaxInputBytes, "max-input-bytes", cfg.MaxInputBytes, "Largest piped stdin accepted for replay")
	flags.IntVar(&cfg.InactivityTimeout, "inactivity-timeout", cfg.InactivityTimeout, "Seconds without output before an attempt is killed (0 disables)")

	// Misc
	flags.StringVar(&cfg.ConfigFile, "config", "", "Path to additional config file")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log state transitions and classification details")
}

// ValidateFlags checks flag values that can be rejected before any config
// file is read. Must be called after cmd.Execute() or cmd.ParseFlags().
func ValidateFlags(cmd *cobra.Command, cfg *config.Config) error {
	// --config must exist if provided
	if cfg.ConfigFile != "" {
		if _, err := os.Stat(cfg.ConfigFile); err != nil {
			return fmt.Errorf("--config: %w", err)
		}
	}

	if cmd.Flags().Changed("cmd") && cfg.Command == "" {
		return fmt.Errorf("--cmd must not be empty")
	}

	return nil
}

// Overrides creates a map of CLI flag overrides from the config.
// Only flags explicitly set by the user are included, so config file and
// environment values are not overridden by flag defaults.
func Overrides(cmd *cobra.Command, cfg *config.Config) map[string]string {
	overrides := make(map[string]string)
	changed := cmd.Flags().Changed

	stringFlags := map[string]struct {
		key string
		val string
	}{
		"cmd":              {config.KeyCmd, cfg.Command},
		"patterns":         {config.KeyPatterns, cfg.Patterns},
		"retry-exit-codes": {config.KeyRetryExitCodes, cfg.RetryExitCodes},
	}
	for flag, mapping := range stringFlags {
		if changed(flag) {
			overrides[mapping.key] = mapping.val
		}
	}

	intFlags := map[string]struct {
		key string
		val int64
	}{
		"max-retries":        {config.KeyMaxRetries, int64(cfg.MaxRetries)},
		"base-delay-ms":      {config.KeyBaseMs, int64(cfg.BaseDelayMs)},
		"max-delay-ms":       {config.KeyCapMs, int64(cfg.MaxDelayMs)},
		"max-input-bytes":    {config.KeyMaxInputBytes, cfg.MaxInputBytes},
		"inactivity-timeout": {config.KeyInactivityTimeout, int64(cfg.InactivityTimeout)},
	}
	for flag, mapping := range intFlags {
		if changed(flag) {
			overrides[mapping.key] = strconv.FormatInt(mapping.val, 10)
		}
	}

	boolFlags := map[string]struct {
		key string
		val bool
	}{
		"force-tee":          {config.KeyForceTee, cfg.ForceCapture},
		"retry-on-any-error": {config.KeyRetryOnAnyError, cfg.RetryOnAnyError},
		"retry-signals":      {config.KeyRetrySignals, cfg.RetrySignals},
		"verbose":            {config.KeyVerbose, cfg.Verbose},
	}
	for flag, mapping := range boolFlags {
		if changed(flag) {
			overrides[mapping.key] = strconv.FormatBool(mapping.val)
		}
	}

	return overrides
}
