// Package console is the host side of the board's serial console: it reads
// the mini UART stream in the background and offers banner detection, echo
// probing and an interactive pass-through.
package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"bmrp/host/serial"
	"bmrp/protocol"
)

// ErrClosed is returned once the console or its read loop has stopped
var ErrClosed = errors.New("console closed")

// Console represents a connection to the board's serial console
type Console struct {
	port serial.Port

	// Bytes received and not yet consumed
	mu      sync.Mutex
	input   *protocol.FifoBuffer
	pending []byte // consumed too eagerly, handed out again first
	dropped int
	readErr error

	// Coalesced "data arrived" signal
	notify chan struct{}

	// Stop channel for graceful shutdown
	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once
}

// Open opens the serial port described by cfg and starts reading
func Open(cfg *serial.Config) (*Console, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open console: %w", err)
	}
	return New(port), nil
}

// New wraps an already open port and starts the background reader
func New(port serial.Port) *Console {
	c := &Console{
		port:     port,
		input:    protocol.NewFifoBuffer(4096),
		notify:   make(chan struct{}, 1),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Close stops the reader and closes the port
func (c *Console) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopChan)
		err = c.port.Close()
		<-c.doneChan
	})
	return err
}

// Dropped returns how many received bytes were lost to a full buffer
func (c *Console) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// readLoop continuously reads from the serial port into the input buffer
func (c *Console) readLoop() {
	defer close(c.doneChan)

	buffer := make([]byte, 256)

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		n, err := c.port.Read(buffer)
		if n > 0 {
			c.mu.Lock()
			written := c.input.Write(buffer[:n])
			c.dropped += n - written
			c.mu.Unlock()

			select {
			case c.notify <- struct{}{}:
			default:
			}
		}

		if err != nil {
			// A read timeout surfaces as io.EOF with nothing read
			if err == io.EOF {
				continue
			}
			select {
			case <-c.stopChan:
				return
			default:
			}
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}
	}
}

// next blocks until received data is available and returns all of it
func (c *Console) next(ctx context.Context) ([]byte, error) {
	for {
		c.mu.Lock()
		if len(c.pending) > 0 {
			data := c.pending
			c.pending = nil
			c.mu.Unlock()
			return data, nil
		}
		if !c.input.IsEmpty() {
			data := append([]byte(nil), c.input.Data()...)
			c.input.Reset()
			c.mu.Unlock()
			return data, nil
		}
		c.mu.Unlock()

		select {
		case <-c.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.doneChan:
			c.mu.Lock()
			err := c.readErr
			empty := c.input.IsEmpty() && len(c.pending) == 0
			c.mu.Unlock()
			if !empty {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrClosed, err)
			}
			return nil, ErrClosed
		}
	}
}

// unread hands data back so the next read returns it first
func (c *Console) unread(data []byte) {
	if len(data) == 0 {
		return
	}
	c.mu.Lock()
	c.pending = append(append([]byte(nil), data...), c.pending...)
	c.mu.Unlock()
}

// Send writes all of data to the board
func (c *Console) Send(data []byte) error {
	n, err := c.port.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: %d/%d bytes", n, len(data))
	}
	return nil
}

// WaitFor consumes received data up to and including the first occurrence
// of pattern. Anything after it stays buffered.
func (c *Console) WaitFor(ctx context.Context, pattern []byte) error {
	if len(pattern) == 0 {
		return nil
	}
	var window []byte
	for {
		data, err := c.next(ctx)
		if err != nil {
			return fmt.Errorf("waiting for %q: %w", pattern, err)
		}
		window = append(window, data...)
		if i := bytes.Index(window, pattern); i >= 0 {
			c.unread(window[i+len(pattern):])
			return nil
		}
		// Keep just enough to catch a pattern split across reads
		if keep := len(pattern) - 1; len(window) > keep {
			window = window[len(window)-keep:]
		}
	}
}

// WaitBanner waits for the board's welcome line and the prompt after it
func (c *Console) WaitBanner(ctx context.Context) error {
	if err := c.WaitFor(ctx, []byte(protocol.Welcome)); err != nil {
		return err
	}
	return c.WaitFor(ctx, []byte(protocol.Prompt))
}

// Probe sends text and requires the board to echo it back unchanged
func (c *Console) Probe(ctx context.Context, text []byte) error {
	m := protocol.NewEchoMatcher(text)

	if err := c.Send(text); err != nil {
		return err
	}

	for !m.Done() {
		data, err := c.next(ctx)
		if err != nil {
			return fmt.Errorf("echo incomplete after %d/%d bytes: %w", m.Matched(), len(text), err)
		}
		used, err := m.Feed(data)
		if err != nil {
			return err
		}
		c.unread(data[used:])
	}
	return nil
}

// ProbeTimeout is Probe with a deadline
func (c *Console) ProbeTimeout(text []byte, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Probe(ctx, text)
}

// Stream copies received data to w until ctx is done or the console stops
func (c *Console) Stream(ctx context.Context, w io.Writer) error {
	for {
		data, err := c.next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
}

// Attach forwards in to the board and everything received to out. It
// returns nil when in reaches EOF.
func (c *Console) Attach(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	streamErr := make(chan error, 1)
	go func() {
		streamErr <- c.Stream(ctx, out)
	}()

	buf := make([]byte, 256)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if serr := c.Send(buf[:n]); serr != nil {
				return serr
			}
		}
		if err == io.EOF {
			cancel()
			<-streamErr
			return nil
		}
		if err != nil {
			return err
		}
		select {
		case err := <-streamErr:
			return err
		default:
		}
	}
}
