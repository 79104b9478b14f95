// Package exitcode defines the exit codes claude-supervisor produces itself.
//
// On success and on a final child failure the supervisor exits with the
// child's own code, so scripts see the same semantics as running the child
// directly. The constants below cover the cases where no child code exists.
package exitcode

// Exit code constants.
const (
	Success       = 0   // Child succeeded
	Error         = 1   // Invalid configuration or input too large
	CannotExecute = 126 // Child binary found but not executable
	NotFound      = 127 // Child binary not found
	SignalBase    = 128 // Added to the signal number of a signal-terminated child
	Interrupted   = 130 // SIGINT/SIGTERM received by the supervisor
)

// FromSignal returns the shell-style exit code for a child killed by signal n.
func FromSignal(n int) int {
	return SignalBase + n
}

// Name returns the human-readable name for the given exit code.
// Unknown codes return "unknown".
func Name(code int) string {
	switch code {
	case Success:
		return "Success"
	case Error:
		return "Error"
	case CannotExecute:
		return "CannotExecute"
	case NotFound:
		return "NotFound"
	case Interrupted:
		return "Interrupted"
	default:
		return "unknown"
	}
}
