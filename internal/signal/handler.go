// Package signal provides signal handling for graceful shutdown of the supervisor.
//
// SetupSignalHandler registers handlers for SIGINT and SIGTERM. The first
// signal cancels the run context, which terminates the current attempt and
// stops the retry loop. The handler then stops listening, so a second signal
// falls through to the default action and ends the process immediately.
package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler registers SIGINT and SIGTERM handlers.
// When a signal is received, it calls the onInterrupt callback (if non-nil)
// with the signal, then cancels the context.
//
// The listening goroutine terminates when either a signal is received or the
// context is canceled.
//
// Example usage:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	signal.SetupSignalHandler(ctx, cancel, func(sig os.Signal) {
//	    logging.Warnf("received %s, stopping", sig)
//	})
func SetupSignalHandler(ctx context.Context, cancel context.CancelFunc, onInterrupt func(os.Signal)) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			if onInterrupt != nil {
				onInterrupt(sig)
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}()
}
