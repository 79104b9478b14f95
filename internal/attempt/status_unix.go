//go:build unix

package attempt

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// terminate asks the child to exit. The kill after the grace period is
// handled by exec.Cmd.WaitDelay.
func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}

// isolate starts the child as the leader of a new process group.
func isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// terminateGroup sends SIGTERM to the child's whole process group.
func terminateGroup(p *os.Process) error {
	err := syscall.Kill(-p.Pid, syscall.SIGTERM)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}

func exitSignal(ps *os.ProcessState) (syscall.Signal, bool) {
	ws, ok := ps.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return 0, false
	}
	return ws.Signal(), true
}
