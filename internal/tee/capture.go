package tee

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CodexForgeBR/claude-supervisor/internal/logging"
)

// DefaultDrainGrace bounds how long output is still read after the child
// exited. A grandchild that inherited the pipes could otherwise keep the
// attempt open forever.
const DefaultDrainGrace = 2 * time.Second

const chunkSize = 32 * 1024

// Capture forwards output live and keeps a combined copy.
type Capture struct {
	Stdout io.Writer
	Stderr io.Writer

	// DrainGrace overrides DefaultDrainGrace when positive.
	DrainGrace time.Duration
}

// Name implements Mode.
func (c *Capture) Name() string { return "capture" }

// Captures implements Mode.
func (c *Capture) Captures() bool { return true }

// Attach implements Mode. The child writes into pipes owned by the session.
func (c *Capture) Attach(cmd *exec.Cmd, onOutput func()) (Session, error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	cmd.Stdout = outW
	cmd.Stderr = errW

	grace := c.DrainGrace
	if grace <= 0 {
		grace = DefaultDrainGrace
	}

	return &captureSession{
		streams: []stream{
			{name: "stdout", r: outR, w: outW, dst: c.Stdout},
			{name: "stderr", r: errR, w: errW, dst: c.Stderr},
		},
		onOutput: onOutput,
		grace:    grace,
	}, nil
}

type stream struct {
	name string
	r    *os.File
	w    *os.File
	dst  io.Writer
}

type captureSession struct {
	streams  []stream
	onOutput func()
	grace    time.Duration

	mu       sync.Mutex
	combined bytes.Buffer
}

// Started closes the parent's copies of the write ends so that the pumps
// see EOF once the child, the only remaining writer, exits.
func (s *captureSession) Started() {
	for _, st := range s.streams {
		st.w.Close()
	}
}

func (s *captureSession) Abort() {
	for _, st := range s.streams {
		st.w.Close()
		st.r.Close()
	}
}

func (s *captureSession) Run(wait func() error) ([]byte, error) {
	var g errgroup.Group
	pumpsDone := make(chan struct{})

	var pumps sync.WaitGroup
	for _, st := range s.streams {
		pumps.Add(1)
		g.Go(func() error {
			defer pumps.Done()
			return s.pump(st)
		})
	}
	go func() {
		pumps.Wait()
		close(pumpsDone)
	}()

	var waitErr error
	g.Go(func() error {
		waitErr = wait()
		timer := time.NewTimer(s.grace)
		defer timer.Stop()
		select {
		case <-pumpsDone:
		case <-timer.C:
			logging.Debugf("output still open %s after exit; closing", logging.FormatDuration(s.grace))
			for _, st := range s.streams {
				st.r.Close()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logging.Debugf("output capture: %v", err)
	}
	for _, st := range s.streams {
		st.r.Close()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.combined.Bytes()), waitErr
}

// pump copies one stream chunk by chunk to its live destination and to the
// combined buffer. A failing destination does not stop the draining: the
// child would block on a full pipe otherwise.
func (s *captureSession) pump(st stream) error {
	buf := make([]byte, chunkSize)
	dst := st.dst
	var dstErr error

	for {
		n, err := st.r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if dst != nil {
				if _, werr := dst.Write(chunk); werr != nil {
					dstErr = fmt.Errorf("forward %s: %w", st.name, werr)
					dst = nil
				}
			}
			s.mu.Lock()
			s.combined.Write(chunk)
			s.mu.Unlock()
			if s.onOutput != nil {
				s.onOutput()
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return dstErr
			}
			return fmt.Errorf("read %s: %w", st.name, err)
		}
	}
}
