//go:build !unix

package attempt

import (
	"os"
	"os/exec"
	"syscall"
)

// terminate kills the child: signals other than Kill are not deliverable here.
func terminate(p *os.Process) error {
	return p.Kill()
}

func isolate(*exec.Cmd) {}

func terminateGroup(p *os.Process) error {
	return p.Kill()
}

func exitSignal(*os.ProcessState) (syscall.Signal, bool) {
	return 0, false
}
