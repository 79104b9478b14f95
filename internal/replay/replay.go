// Package replay captures the supervisor's standard input once and hands an
// identical copy of it to every attempt.
//
// A piped stdin can only be read once, but each retry of the child needs the
// same bytes again. Replay reads the source into a bounded in-memory snapshot
// on first use; every attempt then gets a fresh reader positioned at offset 0.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// DefaultLimit is the default maximum snapshot size (64 MiB).
const DefaultLimit int64 = 64 << 20

// InputTooLargeError is returned when stdin exceeds the replay buffer bound.
type InputTooLargeError struct {
	Limit int64
}

func (e *InputTooLargeError) Error() string {
	return fmt.Sprintf("piped input exceeds the %d byte replay limit", e.Limit)
}

// Snapshot is the captured input. It must not be modified.
type Snapshot []byte

// Replay owns the one-time capture of an input source.
type Replay struct {
	src   io.Reader
	limit int64

	once sync.Once
	snap Snapshot
	err  error
}

// New returns a Replay reading from src, bounded by limit bytes.
// A non-positive limit selects DefaultLimit.
func New(src io.Reader, limit int64) *Replay {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Replay{src: src, limit: limit}
}

// CaptureOnce reads the whole source on the first call. Later calls return
// the same snapshot, or the same error, without touching the source again.
func (r *Replay) CaptureOnce() (Snapshot, error) {
	r.once.Do(func() {
		r.snap, r.err = capture(r.src, r.limit)
	})
	return r.snap, r.err
}

// StreamForAttempt returns a fresh reader over the snapshot, starting at
// offset 0. The snapshot is captured first if needed.
func (r *Replay) StreamForAttempt() (io.Reader, error) {
	snap, err := r.CaptureOnce()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(snap), nil
}

// Len returns the snapshot size, or 0 before a successful capture.
func (r *Replay) Len() int {
	return len(r.snap)
}

func capture(src io.Reader, limit int64) (Snapshot, error) {
	if src == nil {
		return Snapshot{}, nil
	}

	// One extra byte tells "exactly at the limit" apart from "over it".
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, &InputTooLargeError{Limit: limit}
	}
	return Snapshot(data), nil
}

// IsInteractive reports whether f is a terminal, including Cygwin/MSYS
// pseudo terminals on Windows.
func IsInteractive(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
