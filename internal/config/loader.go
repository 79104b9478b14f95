package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// whitelistSet is a precomputed lookup table for fast whitelist membership checks.
var whitelistSet map[string]bool

func init() {
	whitelistSet = make(map[string]bool, len(WhitelistedVars))
	for _, v := range WhitelistedVars {
		whitelistSet[v] = true
	}
}

// GlobalPath returns the per-user config file location, or "" when no config
// directory can be determined.
func GlobalPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "claude-supervisor", "config")
}

// LoadFile parses a KEY=VALUE config file at the given path.
//
// The file uses dotenv syntax: comments, blank lines, optional quoting and
// an optional "export " prefix are accepted. Keys not present in
// WhitelistedVars are silently ignored.
func LoadFile(path string) (map[string]string, error) {
	raw, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return filterWhitelisted(raw), nil
}

// LoadEnv collects whitelisted variables from the process environment.
// Variables that are set but empty are skipped.
func LoadEnv() map[string]string {
	m := make(map[string]string)
	for _, key := range WhitelistedVars {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			m[key] = v
		}
	}
	return m
}

func filterWhitelisted(raw map[string]string) map[string]string {
	result := make(map[string]string, len(raw))
	for k, v := range raw {
		k = strings.TrimSpace(k)
		if !whitelistSet[k] {
			continue
		}
		result[k] = strings.TrimSpace(v)
	}
	return result
}

// LoadWithPrecedence assembles a Config by merging sources in order of
// increasing priority:
//
//  1. Built-in defaults
//  2. Global config file (globalPath)
//  3. Explicit config file (explicitPath)
//  4. Environment (env)
//  5. CLI overrides (cliOverrides map)
//
// Any path that is empty is skipped. A missing global file is not an error;
// an explicit file must exist.
func LoadWithPrecedence(globalPath, explicitPath string, env, cliOverrides map[string]string) (*Config, error) {
	cfg := NewDefaultConfig()

	if globalPath != "" {
		m, err := LoadFile(globalPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("global config: %w", err)
			}
		} else {
			ApplyMapToConfig(cfg, m)
		}
	}

	if explicitPath != "" {
		m, err := LoadFile(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("explicit config: %w", err)
		}
		ApplyMapToConfig(cfg, m)
		cfg.ConfigFile = explicitPath
	}

	if len(env) > 0 {
		ApplyMapToConfig(cfg, env)
	}

	if len(cliOverrides) > 0 {
		ApplyMapToConfig(cfg, cliOverrides)
	}

	return cfg, nil
}

// ApplyMapToConfig sets fields on cfg from the key-value pairs in m.
// Unknown keys are silently ignored. Numeric fields that fail to parse
// are silently ignored (the previous value is preserved).
func ApplyMapToConfig(cfg *Config, m map[string]string) {
	for key, value := range m {
		switch key {
		case KeyCmd:
			if value != "" {
				cfg.Command = value
			}
		case KeyMaxRetries:
			if v, err := strconv.Atoi(value); err == nil {
				cfg.MaxRetries = v
			}
		case KeyBaseMs:
			if v, err := strconv.Atoi(value); err == nil {
				cfg.BaseDelayMs = v
			}
		case KeyCapMs:
			if v, err := strconv.Atoi(value); err == nil {
				cfg.MaxDelayMs = v
			}
		case KeyPatterns:
			cfg.Patterns = value
		case KeyForceTee:
			cfg.ForceCapture = parseBool(value)
		case KeyRetryOnAnyError:
			cfg.RetryOnAnyError = parseBool(value)
		case KeyRetryExitCodes:
			cfg.RetryExitCodes = value
		case KeyRetrySignals:
			cfg.RetrySignals = parseBool(value)
		case KeyMaxInputBytes:
			if v, err := strconv.ParseInt(value, 10, 64); err == nil {
				cfg.MaxInputBytes = v
			}
		case KeyInactivityTimeout:
			if v, err := strconv.Atoi(value); err == nil {
				cfg.InactivityTimeout = v
			}
		case KeyVerbose:
			cfg.Verbose = parseBool(value)
		}
	}
}

// parseBool interprets common boolean representations.
// "true", "1", "yes" (case-insensitive) return true; everything else returns false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
