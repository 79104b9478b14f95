package attempt

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/CodexForgeBR/claude-supervisor/internal/logging"
)

// watchConfig configures the inactivity watchdog.
type watchConfig struct {
	Timeout    time.Duration
	LastOutput *atomic.Int64 // unix nanos of the most recent output chunk
	OnStall    func()

	// TickInterval between checks; defaults to a tenth of Timeout, at most 2s.
	TickInterval time.Duration
}

// watchInactivity cancels the attempt when the child produced no output for
// cfg.Timeout. It returns when ctx is done or after cancelling.
func watchInactivity(ctx context.Context, cancel context.CancelFunc, cfg watchConfig) {
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = min(cfg.Timeout/10, 2*time.Second)
		if tick <= 0 {
			tick = time.Millisecond
		}
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			idle := now.Sub(time.Unix(0, cfg.LastOutput.Load()))
			if idle < cfg.Timeout {
				continue
			}
			logging.Warnf("no output for %s; terminating child", logging.FormatDuration(idle.Truncate(time.Millisecond)))
			if cfg.OnStall != nil {
				cfg.OnStall()
			}
			cancel()
			return
		}
	}
}
