package banner

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// captureStderr captures stderr output during function execution
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stderr
	defer func() { os.Stderr = old }()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	w.Close()
	os.Stderr = old

	return <-outC
}

// captureStdout captures stdout output during function execution
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	defer func() { os.Stdout = old }()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	w.Close()
	os.Stdout = old

	return <-outC
}

func TestPrintSuccessBanner(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		elapsed  time.Duration
		want     []string
	}{
		{
			name:     "second attempt",
			attempts: 2,
			elapsed:  1500 * time.Millisecond,
			want:     []string{"Succeeded on attempt 2", "Elapsed:  1.5s"},
		},
		{
			name:     "many attempts",
			attempts: 7,
			elapsed:  90 * time.Second,
			want:     []string{"Succeeded on attempt 7", "1m 30s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureStderr(t, func() {
				PrintSuccessBanner(tt.attempts, tt.elapsed)
			})

			for _, want := range tt.want {
				assert.Contains(t, output, want)
			}
			assert.Equal(t, 2, strings.Count(output, rule), "banner should be framed by two rules")
		})
	}
}

func TestPrintSuccessBanner_SilentOnFirstAttempt(t *testing.T) {
	output := captureStderr(t, func() {
		PrintSuccessBanner(1, time.Second)
	})
	assert.Empty(t, output)
}

func TestPrintGaveUpBanner(t *testing.T) {
	output := captureStderr(t, func() {
		PrintGaveUpBanner(7, 1, "output matched (?i)overloaded")
	})

	assert.Contains(t, output, "Gave up after 7 attempts")
	assert.Contains(t, output, "Exit code: 1")
	assert.Contains(t, output, "Last error: output matched (?i)overloaded")
	assert.Equal(t, 3, strings.Count(output, rule))
}

func TestPrintFatalBanner(t *testing.T) {
	output := captureStderr(t, func() {
		PrintFatalBanner(1, 2, "  exit code 2 with no retryable pattern\n")
	})

	assert.Contains(t, output, "Non-retryable failure on attempt 1")
	assert.Contains(t, output, "Exit code: 2")
	assert.Contains(t, output, "Reason:    exit code 2 with no retryable pattern\n")
}

func TestPrintFatalBanner_EmptyReasonOmitted(t *testing.T) {
	output := captureStderr(t, func() {
		PrintFatalBanner(3, 127, "   ")
	})

	assert.Contains(t, output, "attempt 3")
	assert.NotContains(t, output, "Reason:")
}

func TestPrintInterruptedBanner(t *testing.T) {
	output := captureStderr(t, func() {
		PrintInterruptedBanner(2)
	})

	assert.Contains(t, output, "Interrupted during attempt 2")
	assert.Equal(t, 2, strings.Count(output, rule))
}

func TestBanners_NeverWriteStdout(t *testing.T) {
	fns := map[string]func(){
		"success":     func() { PrintSuccessBanner(3, time.Second) },
		"gave up":     func() { PrintGaveUpBanner(7, 1, "r") },
		"fatal":       func() { PrintFatalBanner(1, 2, "r") },
		"interrupted": func() { PrintInterruptedBanner(1) },
	}

	for name, fn := range fns {
		t.Run(name, func(t *testing.T) {
			var stderr string
			stdout := captureStdout(t, func() {
				stderr = captureStderr(t, fn)
			})
			assert.Empty(t, stdout)
			assert.NotEmpty(t, stderr)
		})
	}
}

func TestBanners_NoColorCodes(t *testing.T) {
	output := captureStderr(t, func() {
		PrintGaveUpBanner(2, 1, "r")
	})
	assert.NotContains(t, output, "\x1b[")
}
