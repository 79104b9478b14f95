package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfigurationError reports an invalid setting. It is fatal before any
// attempt runs.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Validate checks the bounds that the retry engine relies on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Command) == "" {
		return &ConfigurationError{Field: "cmd", Reason: "must not be empty"}
	}
	if c.MaxRetries < 0 {
		return &ConfigurationError{Field: "max-retries", Reason: fmt.Sprintf("must be >= 0, got %d", c.MaxRetries)}
	}
	if c.BaseDelayMs < 0 {
		return &ConfigurationError{Field: "base-delay-ms", Reason: fmt.Sprintf("must be >= 0, got %d", c.BaseDelayMs)}
	}
	if c.BaseDelayMs > c.MaxDelayMs {
		return &ConfigurationError{
			Field:  "base-delay-ms",
			Reason: fmt.Sprintf("%d exceeds max-delay-ms %d", c.BaseDelayMs, c.MaxDelayMs),
		}
	}
	if c.MaxInputBytes <= 0 {
		return &ConfigurationError{Field: "max-input-bytes", Reason: fmt.Sprintf("must be > 0, got %d", c.MaxInputBytes)}
	}
	if c.InactivityTimeout < 0 {
		return &ConfigurationError{Field: "inactivity-timeout", Reason: fmt.Sprintf("must be >= 0, got %d", c.InactivityTimeout)}
	}
	if _, err := c.ExitCodes(); err != nil {
		return err
	}
	return nil
}

// ExitCodes parses RetryExitCodes. Empty entries are skipped.
func (c *Config) ExitCodes() ([]int, error) {
	var codes []int
	for _, field := range strings.Split(c.RetryExitCodes, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 || n > 255 {
			return nil, &ConfigurationError{
				Field:  "retry-exit-codes",
				Reason: fmt.Sprintf("%q is not an exit code (0-255)", field),
			}
		}
		codes = append(codes, n)
	}
	return codes, nil
}
