package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/claude-supervisor/internal/config"
)

func TestHelpTemplate_NotEmpty(t *testing.T) {
	assert.NotEmpty(t, helpTemplate)
}

func TestHelpTemplate_ListsEveryBoundFlag(t *testing.T) {
	cmd := newTestCommand(config.NewDefaultConfig())

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		assert.Contains(t, helpTemplate, "--"+f.Name, "Help template should contain flag: %s", f.Name)
	})
	assert.Contains(t, helpTemplate, "--help")
	assert.Contains(t, helpTemplate, "--version")
}

func TestHelpTemplate_ListsEveryEnvironmentVariable(t *testing.T) {
	for _, key := range config.WhitelistedVars {
		assert.Contains(t, helpTemplate, key, "Help template should contain env var: %s", key)
	}
}

func TestHelpTemplate_ContainsExitCodes(t *testing.T) {
	exitCodes := []string{
		"Success",
		"Error",
		"CannotExecute",
		"NotFound",
		"Interrupted",
		"128+N",
	}

	for _, code := range exitCodes {
		assert.Contains(t, helpTemplate, code, "Help template should contain exit code: %s", code)
	}
}

func TestHelpTemplate_ContainsSections(t *testing.T) {
	sections := []string{
		"USAGE",
		"FLAGS",
		"ENVIRONMENT",
		"EXIT CODES",
		"EXAMPLES",
	}

	for _, section := range sections {
		assert.Contains(t, helpTemplate, section, "Help template should contain section: %s", section)
	}
}

func TestSetCustomHelp(t *testing.T) {
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	SetCustomHelp(cmd)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "claude-supervisor - run a command and retry it on transient failures")
}
