// Package cli provides help text and usage formatting for the claude-supervisor CLI.
package cli

import (
	"github.com/spf13/cobra"
)

const helpTemplate = `claude-supervisor - run a command and retry it on transient failures

USAGE
  claude-supervisor [flags] [--] [args for the child...]

  Piped stdin is captured once and replayed to every attempt. When stdin is
  a terminal and no arguments are given, the child runs interactively with
  direct access to the terminal.

FLAGS
  Child Process:
    --cmd <path>                  Executable to supervise (default: claude)

  Retry & Backoff:
    --max-retries <int>           Retries after the first attempt (default: 6)
    --base-delay-ms <int>         Base backoff delay (default: 500)
    --max-delay-ms <int>          Backoff cap (default: 20000)

  Classification:
    --patterns <re|re|...>        Extra regexes that mark output as retryable
    --retry-exit-codes <n,n,...>  Exit codes that are always retryable
    --retry-on-any-error          Retry every non-zero exit
    --retry-signals               Retry when the child is killed by a signal

  Input & Output:
    --force-tee                   Capture and tee output even on a terminal
    --max-input-bytes <int>       Largest piped stdin accepted (default: 67108864)
    --inactivity-timeout <sec>    Kill an attempt after this long without output (default: 0, off)

  Misc:
    --config <path>               Path to additional config file
    -v, --verbose                 Log state transitions and classification details
    -h, --help                    Show this help text
    --version                     Show version, commit, build date

ENVIRONMENT
  CLAUDE_SUPERVISOR_CMD                  Same as --cmd
  CLAUDE_SUPERVISOR_MAX_RETRIES          Same as --max-retries
  CLAUDE_SUPERVISOR_BASE_MS              Same as --base-delay-ms
  CLAUDE_SUPERVISOR_CAP_MS               Same as --max-delay-ms
  CLAUDE_SUPERVISOR_PATTERNS             Same as --patterns
  CLAUDE_SUPERVISOR_FORCE_TEE            Same as --force-tee
  CLAUDE_SUPERVISOR_RETRY_ON_ANY_ERROR   Same as --retry-on-any-error
  CLAUDE_SUPERVISOR_RETRY_EXIT_CODES     Same as --retry-exit-codes
  CLAUDE_SUPERVISOR_RETRY_SIGNALS        Same as --retry-signals
  CLAUDE_SUPERVISOR_MAX_INPUT_BYTES      Same as --max-input-bytes
  CLAUDE_SUPERVISOR_INACTIVITY_TIMEOUT   Same as --inactivity-timeout
  CLAUDE_SUPERVISOR_VERBOSE              Same as --verbose

  The same keys may be set in $XDG_CONFIG_HOME/claude-supervisor/config or
  in the file given with --config. Flags win over the environment, which
  wins over config files.

EXIT CODES
  0     Success              The child succeeded
  1     Error                Invalid configuration or piped input too large
  126   CannotExecute        The command exists but could not be executed
  127   NotFound             The command was not found
  130   Interrupted          SIGINT or SIGTERM received
  128+N                      The child was killed by signal N
  other                      The child's own exit code after the last attempt

EXAMPLES
  # Interactive session, retried on transient errors
  claude-supervisor

  # One-shot prompt, replayed on every attempt
  echo "summarize this repo" | claude-supervisor -- -p

  # Supervise a different command and retry exit code 75
  claude-supervisor --cmd ./deploy.sh --retry-exit-codes 75 -- --env staging

For more information, see: https://github.com/CodexForgeBR/claude-supervisor
`

// SetCustomHelp configures the cobra command to use our custom help template.
func SetCustomHelp(cmd *cobra.Command) {
	cmd.SetHelpTemplate(helpTemplate)
}
