//go:build unix

package signal

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the signals passed to onInterrupt.
type recorder struct {
	mu   sync.Mutex
	sigs []os.Signal
}

func (r *recorder) onInterrupt(sig os.Signal) {
	r.mu.Lock()
	r.sigs = append(r.sigs, sig)
	r.mu.Unlock()
}

func (r *recorder) received() []os.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]os.Signal(nil), r.sigs...)
}

func sendSelf(t *testing.T, sig syscall.Signal) {
	t.Helper()
	err := syscall.Kill(os.Getpid(), sig)
	require.NoError(t, err, "failed to send %s", sig)
}

func TestSetupSignalHandler_SignalCallsCallbackAndCancels(t *testing.T) {
	tests := []struct {
		name string
		sig  syscall.Signal
	}{
		{"SIGINT", syscall.SIGINT},
		{"SIGTERM", syscall.SIGTERM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			rec := &recorder{}
			SetupSignalHandler(ctx, cancel, rec.onInterrupt)

			sendSelf(t, tt.sig)

			select {
			case <-ctx.Done():
				assert.Equal(t, context.Canceled, ctx.Err())
			case <-time.After(time.Second):
				t.Fatal("context was not cancelled within timeout")
			}

			assert.Eventually(t, func() bool { return len(rec.received()) == 1 }, time.Second, 10*time.Millisecond)
			assert.Equal(t, []os.Signal{tt.sig}, rec.received())
		})
	}
}

// TestSetupSignalHandler_ContextCancellation verifies that the handler responds to context cancellation
func TestSetupSignalHandler_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	rec := &recorder{}
	SetupSignalHandler(ctx, cancel, rec.onInterrupt)

	cancel()

	// Give the goroutine time to observe cancellation.
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, rec.received(), "onInterrupt should not be called for context cancellation")
}

// TestSetupSignalHandler_NilCallback verifies handler works even with nil callback
func TestSetupSignalHandler_NilCallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	SetupSignalHandler(ctx, cancel, nil)

	sendSelf(t, syscall.SIGINT)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled within timeout")
	}
}

// TestSetupSignalHandler_CallbackRunsBeforeCancel verifies ordering between
// the callback and cancellation.
func TestSetupSignalHandler_CallbackRunsBeforeCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sawCancelled bool
	done := make(chan struct{})
	SetupSignalHandler(ctx, cancel, func(os.Signal) {
		sawCancelled = ctx.Err() != nil
		close(done)
	})

	sendSelf(t, syscall.SIGTERM)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("onInterrupt was not called within timeout")
	}
	<-ctx.Done()
	assert.False(t, sawCancelled, "context should still be live inside onInterrupt")
}
