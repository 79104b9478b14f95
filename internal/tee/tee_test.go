package tee

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

// runScript runs script under /bin/sh with the given mode, the same way the
// attempt runner drives a session.
func runScript(t *testing.T, mode Mode, script string, onOutput func()) ([]byte, error) {
	t.Helper()
	cmd := exec.Command("/bin/sh", "-c", script)
	sess, err := mode.Attach(cmd, onOutput)
	require.NoError(t, err)
	if err := cmd.Start(); err != nil {
		sess.Abort()
		t.Fatalf("start: %v", err)
	}
	sess.Started()
	return sess.Run(cmd.Wait)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed terminal")
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name        string
		interactive bool
		force       bool
		expected    string
	}{
		{"interactive passes through", true, false, "passthrough"},
		{"interactive forced to capture", true, true, "capture"},
		{"non-interactive captures", false, false, "capture"},
		{"non-interactive forced", false, true, "capture"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Select(tt.interactive, tt.force, os.Stdout, os.Stderr)
			assert.Equal(t, tt.expected, m.Name())
			assert.Equal(t, tt.expected == "capture", m.Captures())
		})
	}
}

func TestPassthrough_WiresFilesDirectly(t *testing.T) {
	requireShell(t)

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	mode := &Passthrough{Stdout: f, Stderr: f}
	called := false
	out, err := runScript(t, mode, "echo direct; exit 3", func() { called = true })

	assert.Nil(t, out, "passthrough never accumulates")
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
	assert.False(t, called)

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "direct\n", string(data))
}

func TestCapture_ForwardsAndAccumulates(t *testing.T) {
	requireShell(t)

	var stdout, stderr bytes.Buffer
	mode := &Capture{Stdout: &stdout, Stderr: &stderr}

	out, err := runScript(t, mode, "printf 'to stdout'; printf 'API Error: 500 Overloaded' >&2", nil)
	require.NoError(t, err)

	assert.Equal(t, "to stdout", stdout.String())
	assert.Equal(t, "API Error: 500 Overloaded", stderr.String())
	assert.Contains(t, string(out), "to stdout")
	assert.Contains(t, string(out), "API Error: 500 Overloaded")
	assert.Len(t, out, len("to stdout")+len("API Error: 500 Overloaded"))
}

func TestCapture_PreservesPerStreamOrder(t *testing.T) {
	requireShell(t)

	var stdout bytes.Buffer
	mode := &Capture{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	_, err := runScript(t, mode, "i=0; while [ $i -lt 200 ]; do echo line$i; echo err$i >&2; i=$((i+1)); done", nil)
	require.NoError(t, err)

	var expected strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&expected, "line%d\n", i)
	}
	assert.Equal(t, expected.String(), stdout.String())
}

func TestCapture_LargeOutputDoesNotDeadlock(t *testing.T) {
	requireShell(t)

	var stdout bytes.Buffer
	mode := &Capture{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	// Both streams exceed the pipe buffer; draining only one of them, or
	// waiting before draining, would hang here.
	out, err := runScript(t, mode, "head -c 1048576 /dev/zero; head -c 1048576 /dev/zero >&2", nil)
	require.NoError(t, err)
	assert.Equal(t, 1<<20, stdout.Len())
	assert.Len(t, out, 2<<20)
}

func TestCapture_FailingDestinationStillDrains(t *testing.T) {
	requireShell(t)

	mode := &Capture{Stdout: failingWriter{}, Stderr: failingWriter{}}
	out, err := runScript(t, mode, "head -c 200000 /dev/zero; echo overloaded >&2", nil)
	require.NoError(t, err)
	assert.Len(t, out, 200000+len("overloaded\n"))
}

func TestCapture_ReportsActivity(t *testing.T) {
	requireShell(t)

	var calls atomic.Int32
	mode := &Capture{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	_, err := runScript(t, mode, "echo a; echo b >&2", func() { calls.Add(1) })
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestCapture_ExitErrorReturned(t *testing.T) {
	requireShell(t)

	mode := &Capture{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	out, err := runScript(t, mode, "echo partial; exit 7", nil)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 7, exitErr.ExitCode())
	assert.Equal(t, "partial\n", string(out))
}

func TestCapture_GrandchildHoldingPipeIsCutOff(t *testing.T) {
	requireShell(t)

	var stdout bytes.Buffer
	mode := &Capture{Stdout: &stdout, Stderr: &bytes.Buffer{}, DrainGrace: 100 * time.Millisecond}

	start := time.Now()
	out, err := runScript(t, mode, "sleep 5 & echo hi", nil)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 4*time.Second)
	assert.Equal(t, "hi\n", string(out))
}

func TestCapture_AbortClosesPipes(t *testing.T) {
	mode := &Capture{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	cmd := exec.Command("/definitely/not/here")
	sess, err := mode.Attach(cmd, nil)
	require.NoError(t, err)

	require.Error(t, cmd.Start())
	sess.Abort()

	cs := sess.(*captureSession)
	for _, st := range cs.streams {
		_, err := st.r.Read(make([]byte, 1))
		assert.ErrorIs(t, err, os.ErrClosed)
	}
}
